package customers

import (
	"context"

	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
)

// Repository defines data access for customers.
type Repository interface {
	List(ctx context.Context) ([]*Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) (*Customer, error)
	Delete(ctx context.Context, id string) error
}

type boltRepository struct {
	store *kv.Store
}

// NewRepository builds a record-store backed Repository.
func NewRepository(store *kv.Store) Repository {
	return &boltRepository{store: store}
}

func (r *boltRepository) List(ctx context.Context) ([]*Customer, error) {
	return kv.List[*Customer](r.store, Collection)
}

func (r *boltRepository) Get(ctx context.Context, id string) (*Customer, error) {
	return kv.Get[*Customer](r.store, Collection, id)
}

func (r *boltRepository) Save(ctx context.Context, customer *Customer) (*Customer, error) {
	return kv.Save(r.store, Collection, customer)
}

func (r *boltRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(Collection, id)
}
