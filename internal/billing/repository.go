package billing

import (
	"context"
	"fmt"

	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
	"github.com/CodingBreaker07/nema-traders/internal/settings"
)

// Repository defines data access for invoices and credit entries.
type Repository interface {
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	SaveInvoice(ctx context.Context, invoice *Invoice) (*Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	GenerateInvoiceNumber(ctx context.Context) (string, error)

	ListCredits(ctx context.Context) ([]*CreditEntry, error)
	CreditByInvoice(ctx context.Context, invoiceID string) (*CreditEntry, error)
	SaveCredit(ctx context.Context, credit *CreditEntry) (*CreditEntry, error)
	DeleteCredit(ctx context.Context, id string) error
}

type boltRepository struct {
	store *kv.Store
}

// NewRepository builds a record-store backed Repository.
func NewRepository(store *kv.Store) Repository {
	return &boltRepository{store: store}
}

func (r *boltRepository) ListInvoices(ctx context.Context) ([]*Invoice, error) {
	return kv.List[*Invoice](r.store, InvoiceCollection)
}

func (r *boltRepository) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return kv.Get[*Invoice](r.store, InvoiceCollection, id)
}

func (r *boltRepository) SaveInvoice(ctx context.Context, invoice *Invoice) (*Invoice, error) {
	return kv.Save(r.store, InvoiceCollection, invoice)
}

func (r *boltRepository) DeleteInvoice(ctx context.Context, id string) error {
	return r.store.Delete(InvoiceCollection, id)
}

// GenerateInvoiceNumber composes the configured prefix with the next value of
// the invoice counter.
func (r *boltRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	cfg := settings.Defaults()
	if _, err := r.store.GetSettings(&cfg); err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}
	n, err := r.store.NextNumber(settings.InvoiceCounter)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", cfg.InvoicePrefix, n), nil
}

func (r *boltRepository) ListCredits(ctx context.Context) ([]*CreditEntry, error) {
	return kv.List[*CreditEntry](r.store, CreditCollection)
}

// CreditByInvoice returns the credit entry linked to an invoice, or nil when
// none exists. The lookup-before-create in Service relies on this.
func (r *boltRepository) CreditByInvoice(ctx context.Context, invoiceID string) (*CreditEntry, error) {
	all, err := kv.List[*CreditEntry](r.store, CreditCollection)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.InvoiceID == invoiceID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *boltRepository) SaveCredit(ctx context.Context, credit *CreditEntry) (*CreditEntry, error) {
	return kv.Save(r.store, CreditCollection, credit)
}

func (r *boltRepository) DeleteCredit(ctx context.Context, id string) error {
	return r.store.Delete(CreditCollection, id)
}
