package billing

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CodingBreaker07/nema-traders/internal/customers"
	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
	"github.com/CodingBreaker07/nema-traders/internal/products"
)

type memoryRepo struct {
	invoices map[string]*Invoice
	credits  map[string]*CreditEntry
	seq      uint64
	counter  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices: make(map[string]*Invoice),
		credits:  make(map[string]*CreditEntry),
		counter:  1000,
	}
}

func (r *memoryRepo) nextSeq() uint64 {
	r.seq++
	return r.seq
}

func (r *memoryRepo) ListInvoices(ctx context.Context) ([]*Invoice, error) {
	out := make([]*Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *memoryRepo) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", httpx.ErrNotFound, id)
	}
	return inv, nil
}

func (r *memoryRepo) SaveInvoice(ctx context.Context, invoice *Invoice) (*Invoice, error) {
	if invoice.ID == "" {
		invoice.Seq = r.nextSeq()
		invoice.ID = fmt.Sprintf("inv-%d", invoice.Seq)
		invoice.CreatedAt = time.Now()
	}
	invoice.UpdatedAt = time.Now()
	r.invoices[invoice.ID] = invoice
	return invoice, nil
}

func (r *memoryRepo) DeleteInvoice(ctx context.Context, id string) error {
	delete(r.invoices, id)
	return nil
}

func (r *memoryRepo) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	n := r.counter
	r.counter++
	return fmt.Sprintf("INV-%d", n), nil
}

func (r *memoryRepo) ListCredits(ctx context.Context) ([]*CreditEntry, error) {
	out := make([]*CreditEntry, 0, len(r.credits))
	for _, c := range r.credits {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *memoryRepo) CreditByInvoice(ctx context.Context, invoiceID string) (*CreditEntry, error) {
	all, _ := r.ListCredits(ctx)
	for _, c := range all {
		if c.InvoiceID == invoiceID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) SaveCredit(ctx context.Context, credit *CreditEntry) (*CreditEntry, error) {
	if credit.ID == "" {
		credit.Seq = r.nextSeq()
		credit.ID = fmt.Sprintf("cr-%d", credit.Seq)
		credit.CreatedAt = time.Now()
	}
	credit.UpdatedAt = time.Now()
	r.credits[credit.ID] = credit
	return credit, nil
}

func (r *memoryRepo) DeleteCredit(ctx context.Context, id string) error {
	delete(r.credits, id)
	return nil
}

type memoryCustomerRepo struct {
	customers map[string]*customers.Customer
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[string]*customers.Customer)}
}

func (r *memoryCustomerRepo) List(ctx context.Context) ([]*customers.Customer, error) {
	out := make([]*customers.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryCustomerRepo) Get(ctx context.Context, id string) (*customers.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", httpx.ErrNotFound, id)
	}
	return c, nil
}

func (r *memoryCustomerRepo) Save(ctx context.Context, c *customers.Customer) (*customers.Customer, error) {
	r.customers[c.ID] = c
	return c, nil
}

func (r *memoryCustomerRepo) Delete(ctx context.Context, id string) error {
	delete(r.customers, id)
	return nil
}

type memoryProductRepo struct {
	products map[string]*products.Product
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[string]*products.Product)}
}

func (r *memoryProductRepo) List(ctx context.Context) ([]*products.Product, error) {
	out := make([]*products.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryProductRepo) Get(ctx context.Context, id string) (*products.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", httpx.ErrNotFound, id)
	}
	return p, nil
}

func (r *memoryProductRepo) Save(ctx context.Context, p *products.Product) (*products.Product, error) {
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryProductRepo) Delete(ctx context.Context, id string) error {
	delete(r.products, id)
	return nil
}

func newBillingFixture() (*memoryRepo, *memoryProductRepo, *Service) {
	repo := newMemoryRepo()
	custRepo := newMemoryCustomerRepo()
	prodRepo := newMemoryProductRepo()
	custRepo.customers["c1"] = &customers.Customer{Meta: kv.Meta{ID: "c1"}, Name: "Sharma Traders", Phone: "9812345670"}
	prodRepo.products["p1"] = &products.Product{Meta: kv.Meta{ID: "p1"}, Name: "Cement Bag", CurrentStock: 50, SellingPrice: 100}
	prodRepo.products["p2"] = &products.Product{Meta: kv.Meta{ID: "p2"}, Name: "Steel Rod", CurrentStock: 20, SellingPrice: 250}
	svc := NewService(repo, custRepo, prodRepo)
	return repo, prodRepo, svc
}

func TestSaveInvoiceCreatesPendingWithCredit(t *testing.T) {
	ctx := context.Background()
	repo, prodRepo, svc := newBillingFixture()

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 50,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, "INV-1000", inv.InvoiceNumber)
	require.Equal(t, 200.0, inv.Total)
	require.Equal(t, 150.0, inv.RemainingAmount)
	require.Equal(t, StatusPending, inv.Status)

	credit, err := repo.CreditByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, credit)
	require.Equal(t, 200.0, credit.Amount)
	require.Equal(t, 150.0, credit.RemainingAmount)
	require.Equal(t, StatusPending, credit.Status)
	require.Len(t, credit.Payments, 1)
	require.Equal(t, MethodAdvance, credit.Payments[0].Method)
	require.Equal(t, 50.0, credit.Payments[0].Amount)

	require.Equal(t, 48, prodRepo.products["p1"].CurrentStock)
}

func TestSaveInvoiceRequiresCustomer(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		Status: StatusPending,
		Items:  []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "customer is required")
}

func TestSaveInvoiceDropsEmptyItemLines(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "", Quantity: 3, Rate: 100}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "at least one item")
}

func TestSaveInvoiceRejectsPendingFullyReceived(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	_, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 500,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 5, Rate: 100}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 499,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 5, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, 1.0, inv.RemainingAmount)
}

func TestSaveInvoiceEditReversesStock(t *testing.T) {
	ctx := context.Background()
	_, prodRepo, svc := newBillingFixture()

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, 48, prodRepo.products["p1"].CurrentStock)

	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		ID:         inv.ID,
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p2", Quantity: 3, Rate: 250}},
	})
	require.NoError(t, err)
	require.Equal(t, 50, prodRepo.products["p1"].CurrentStock)
	require.Equal(t, 17, prodRepo.products["p2"].CurrentStock)
}

func TestSaveInvoiceKeepsNumberOnEdit(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)

	edited, err := svc.SaveInvoice(ctx, DraftInvoice{
		ID:         inv.ID,
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, inv.InvoiceNumber, edited.InvoiceNumber)
	require.Equal(t, inv.ID, edited.ID)
}

func TestSaveInvoiceNewPaymentRecordsPartial(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newBillingFixture()

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 150,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)

	// A new payment that covers the total is rejected: a pending invoice
	// must always have something left to pay.
	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		ID:             inv.ID,
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 150,
		NewPayment:     50,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		ID:             inv.ID,
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 150,
		NewPayment:     40,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)

	credit, err := repo.CreditByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, credit.Status)
	require.Equal(t, 10.0, credit.RemainingAmount)
	require.Len(t, credit.Payments, 2)
	require.Equal(t, MethodPartial, credit.Payments[1].Method)
	require.Equal(t, 40.0, credit.Payments[1].Amount)

	updated, err := repo.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, updated.Status)
	require.Equal(t, 10.0, updated.RemainingAmount)
	require.Nil(t, updated.PaymentDate)
}

func TestSaveInvoiceEditKeepsCreditAmount(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newBillingFixture()

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 50,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)

	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		ID:             inv.ID,
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 50,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 3, Rate: 100}},
	})
	require.NoError(t, err)

	// The credit amount records the originally extended credit; only the
	// remaining balance follows the new total.
	credit, err := repo.CreditByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, 200.0, credit.Amount)
	require.Equal(t, 250.0, credit.RemainingAmount)
}

func TestSaveInvoicePaidCreatesSettledCredit(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newBillingFixture()

	method := "upi"
	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:    "c1",
		Status:        StatusPaid,
		PaymentMethod: &method,
		Items:         []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)
	require.Equal(t, 0.0, inv.RemainingAmount)
	require.NotNil(t, inv.PaymentDate)

	credit, err := repo.CreditByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, credit)
	require.Equal(t, StatusPaid, credit.Status)
	require.Equal(t, 0.0, credit.RemainingAmount)
	require.Len(t, credit.Payments, 1)
	require.Equal(t, "upi", credit.Payments[0].Method)
	require.Equal(t, 200.0, credit.Payments[0].Amount)
}

func TestSaveInvoicePaidForcesCreditSettlement(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newBillingFixture()

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID:     "c1",
		Status:         StatusPending,
		PartialPayment: 50,
		Items:          []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)

	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		ID:         inv.ID,
		CustomerID: "c1",
		Status:     StatusPaid,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)

	credit, err := repo.CreditByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, credit.Status)
	require.Equal(t, 0.0, credit.RemainingAmount)
	require.Len(t, credit.Payments, 1)
	require.Equal(t, MethodSettlement, credit.Payments[0].Method)
	require.Equal(t, credit.Amount, credit.Payments[0].Amount)
}

func TestDeleteInvoiceCascadesCreditKeepsStock(t *testing.T) {
	ctx := context.Background()
	repo, prodRepo, svc := newBillingFixture()

	inv, err := svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 2, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, 48, prodRepo.products["p1"].CurrentStock)

	require.NoError(t, svc.DeleteInvoice(ctx, inv.ID))

	_, err = repo.GetInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	credit, err := repo.CreditByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Nil(t, credit)
	require.Equal(t, 48, prodRepo.products["p1"].CurrentStock)
}

func TestCreateFromQuotationSkipsStockAndCredit(t *testing.T) {
	ctx := context.Background()
	repo, prodRepo, svc := newBillingFixture()

	inv, err := svc.CreateFromQuotation(ctx, FromQuotationInput{
		QuotationID:     "q1",
		QuotationNumber: "QUO-2000",
		CustomerID:      "c1",
		Items:           []InvoiceItem{{ProductID: "p1", Quantity: 2, Rate: 100, Amount: 200}},
		Total:           200,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, inv.Status)
	require.Equal(t, 200.0, inv.RemainingAmount)
	require.NotNil(t, inv.ConvertedFrom)
	require.Equal(t, "q1", *inv.ConvertedFrom)
	require.Contains(t, *inv.Notes, "Converted from Quotation #QUO-2000")

	require.Equal(t, 50, prodRepo.products["p1"].CurrentStock)
	credit, err := repo.CreditByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Nil(t, credit)
}

func TestHasDocuments(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newBillingFixture()

	has, err := svc.HasDocuments(ctx, "c1")
	require.NoError(t, err)
	require.False(t, has)

	_, err = svc.SaveInvoice(ctx, DraftInvoice{
		CustomerID: "c1",
		Status:     StatusPending,
		Items:      []DraftItem{{ProductID: "p1", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)

	has, err = svc.HasDocuments(ctx, "c1")
	require.NoError(t, err)
	require.True(t, has)
}
