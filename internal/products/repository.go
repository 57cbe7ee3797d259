package products

import (
	"context"

	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
)

// Repository defines data access for products.
type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Save(ctx context.Context, product *Product) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type boltRepository struct {
	store *kv.Store
}

// NewRepository builds a record-store backed Repository.
func NewRepository(store *kv.Store) Repository {
	return &boltRepository{store: store}
}

func (r *boltRepository) List(ctx context.Context) ([]*Product, error) {
	return kv.List[*Product](r.store, Collection)
}

func (r *boltRepository) Get(ctx context.Context, id string) (*Product, error) {
	return kv.Get[*Product](r.store, Collection, id)
}

func (r *boltRepository) Save(ctx context.Context, product *Product) (*Product, error) {
	return kv.Save(r.store, Collection, product)
}

func (r *boltRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(Collection, id)
}
