package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

func TestRecordPaymentAllocatesOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newBillingFixture()

	first, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)
	second, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 50}},
	})
	require.NoError(t, err)

	result, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: "c1",
		Amount:     120,
		Method:     "upi",
	})
	require.NoError(t, err)
	require.Equal(t, 120.0, result.Allocated)
	require.Equal(t, 0.0, result.Unallocated)
	require.Len(t, result.Entries, 2)

	firstCredit, err := repo.CreditByInvoice(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, firstCredit.Status)
	require.Equal(t, 0.0, firstCredit.RemainingAmount)

	secondCredit, err := repo.CreditByInvoice(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, secondCredit.Status)
	require.Equal(t, 30.0, secondCredit.RemainingAmount)

	settled, err := repo.GetInvoice(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, settled.Status)
	require.Equal(t, 0.0, settled.RemainingAmount)
	require.NotNil(t, settled.PaymentMethod)
	require.Equal(t, "upi", *settled.PaymentMethod)

	stillPending, err := repo.GetInvoice(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stillPending.Status)
}

func TestRecordPaymentDiscardsOverpayment(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)

	result, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: "c1",
		Amount:     150,
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, result.Allocated)
	require.Equal(t, 50.0, result.Unallocated)

	outstanding, err := svc.Outstanding(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 0.0, outstanding)
}

func TestRecordPaymentRequiresCustomer(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{Amount: 100})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRecordPaymentRequiresPositiveAmount(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{CustomerID: "c1", Amount: 0})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestOutstandingSumsPendingCredits(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 40,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)
	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 50}},
	})
	require.NoError(t, err)

	outstanding, err := svc.Outstanding(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 110.0, outstanding)
}

func TestAgingBuckets(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newBillingFixture()

	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	due := func(daysAgo int) *time.Time {
		d := asOf.AddDate(0, 0, -daysAgo)
		return &d
	}
	entries := []*CreditEntry{
		{CustomerID: "c1", InvoiceID: "a", Amount: 10, RemainingAmount: 10, Status: StatusPending},
		{CustomerID: "c1", InvoiceID: "b", Amount: 20, RemainingAmount: 20, Status: StatusPending, DueDate: due(15)},
		{CustomerID: "c1", InvoiceID: "c", Amount: 30, RemainingAmount: 30, Status: StatusPending, DueDate: due(45)},
		{CustomerID: "c1", InvoiceID: "d", Amount: 40, RemainingAmount: 40, Status: StatusPending, DueDate: due(75)},
		{CustomerID: "c1", InvoiceID: "e", Amount: 50, RemainingAmount: 50, Status: StatusPending, DueDate: due(150)},
		{CustomerID: "c1", InvoiceID: "f", Amount: 60, RemainingAmount: 0, Status: StatusPaid, DueDate: due(150)},
	}
	for _, e := range entries {
		_, err := repo.SaveCredit(ctx, e)
		require.NoError(t, err)
	}

	bucket, err := svc.Aging(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, 10.0, bucket.Current)
	require.Equal(t, 20.0, bucket.Bucket30)
	require.Equal(t, 30.0, bucket.Bucket60)
	require.Equal(t, 40.0, bucket.Bucket90)
	require.Equal(t, 50.0, bucket.Bucket120)
}
