package quotations

import (
	"context"
	"fmt"

	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
	"github.com/CodingBreaker07/nema-traders/internal/settings"
)

// Repository defines data access for quotations.
type Repository interface {
	List(ctx context.Context) ([]*Quotation, error)
	Get(ctx context.Context, id string) (*Quotation, error)
	Save(ctx context.Context, quotation *Quotation) (*Quotation, error)
	Delete(ctx context.Context, id string) error
	GenerateNumber(ctx context.Context) (string, error)
}

type boltRepository struct {
	store *kv.Store
}

// NewRepository builds a record-store backed Repository.
func NewRepository(store *kv.Store) Repository {
	return &boltRepository{store: store}
}

func (r *boltRepository) List(ctx context.Context) ([]*Quotation, error) {
	return kv.List[*Quotation](r.store, Collection)
}

func (r *boltRepository) Get(ctx context.Context, id string) (*Quotation, error) {
	return kv.Get[*Quotation](r.store, Collection, id)
}

func (r *boltRepository) Save(ctx context.Context, quotation *Quotation) (*Quotation, error) {
	return kv.Save(r.store, Collection, quotation)
}

func (r *boltRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(Collection, id)
}

// GenerateNumber composes the configured prefix with the next value of the
// quotation counter.
func (r *boltRepository) GenerateNumber(ctx context.Context) (string, error) {
	cfg := settings.Defaults()
	if _, err := r.store.GetSettings(&cfg); err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}
	n, err := r.store.NextNumber(settings.QuotationCounter)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", cfg.QuotationPrefix, n), nil
}
