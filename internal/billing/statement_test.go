package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(day int) time.Time {
	return time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(day int) *time.Time {
	d := date(day)
	return &d
}

func statementFixture(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:  "c1",
		Status:      StatusPending,
		InvoiceDate: datePtr(10),
		Items:       []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)
	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:  "c1",
		Status:      StatusPending,
		InvoiceDate: datePtr(20),
		Items:       []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 50}},
	})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: "c1",
		Amount:     60,
		Date:       datePtr(25),
	})
	require.NoError(t, err)
	return svc
}

func TestStatementComputesBalances(t *testing.T) {
	ctx := context.Background()
	svc := statementFixture(t)

	statement, err := svc.Statement(ctx, "c1", date(15), date(31))
	require.NoError(t, err)

	require.Equal(t, 100.0, statement.Summary.OpeningBalance)
	require.Equal(t, 50.0, statement.Summary.TotalDebits)
	require.Equal(t, 60.0, statement.Summary.TotalCredits)
	require.Equal(t, 90.0, statement.Summary.ClosingBalance)

	require.Len(t, statement.Transactions, 2)
	require.Equal(t, "invoice", statement.Transactions[0].Type)
	require.Equal(t, 150.0, statement.Transactions[0].Balance)
	require.Equal(t, "payment", statement.Transactions[1].Type)
	require.Equal(t, 90.0, statement.Transactions[1].Balance)
}

func TestStatementContinuityAcrossPeriods(t *testing.T) {
	ctx := context.Background()
	svc := statementFixture(t)

	first, err := svc.Statement(ctx, "c1", date(1), date(15))
	require.NoError(t, err)
	second, err := svc.Statement(ctx, "c1", date(16), date(31))
	require.NoError(t, err)

	require.Equal(t, first.Summary.ClosingBalance, second.Summary.OpeningBalance)
}

func TestStatementOrdersInvoiceBeforeSameDayPayment(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:  "c1",
		Status:      StatusPending,
		InvoiceDate: datePtr(10),
		Items:       []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: "c1",
		Amount:     100,
		Date:       datePtr(10),
	})
	require.NoError(t, err)

	statement, err := svc.Statement(ctx, "c1", date(1), date(31))
	require.NoError(t, err)
	require.Len(t, statement.Transactions, 2)
	require.Equal(t, "invoice", statement.Transactions[0].Type)
	require.Equal(t, "payment", statement.Transactions[1].Type)
	require.Equal(t, 0.0, statement.Summary.ClosingBalance)
}

func TestStatementEndOfDayInclusive(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	late := time.Date(2026, 1, 10, 21, 30, 0, 0, time.UTC)
	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:  "c1",
		Status:      StatusPending,
		InvoiceDate: &late,
		Items:       []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)

	statement, err := svc.Statement(ctx, "c1", date(1), date(10))
	require.NoError(t, err)
	require.Len(t, statement.Transactions, 1)
	require.Equal(t, 100.0, statement.Summary.TotalDebits)
}

func TestParseDateUsesServerLocation(t *testing.T) {
	got, ok := parseDate("2026-01-10")
	require.True(t, ok)
	require.Equal(t, time.Local, got.Location())
	require.True(t, got.Equal(time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local)))

	_, ok = parseDate("not-a-date")
	require.False(t, ok)
}
