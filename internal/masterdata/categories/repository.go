package categories

import (
	"context"
	"fmt"

	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/platform/store"
)

// Repository reads and writes the category list. Mutations also see the
// product catalogue for in-use checks and rename cascades.
type Repository interface {
	List(ctx context.Context) ([]string, bool, error)
	WithTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the working set of one category mutation.
type Tx interface {
	Categories() ([]string, bool, error)
	SaveCategories(categories []string) error
	Products() ([]inventory.Product, error)
	SaveProducts(products []inventory.Product) error
	Records() *store.Records
}

type repository struct {
	store store.Store
}

// NewRepository builds a store backed repository.
func NewRepository(s store.Store) Repository {
	return &repository{store: s}
}

func (r *repository) List(ctx context.Context) ([]string, bool, error) {
	categories, ok, err := store.Load[[]string](ctx, r.store, store.KeyCategories)
	if err != nil {
		return nil, ok, fmt.Errorf("categories: list: %w", err)
	}
	return categories, ok, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(Tx) error) error {
	keys := []string{store.KeyCategories, store.KeyProducts, store.KeyActivityLogs}
	return r.store.Update(ctx, keys, func(recs *store.Records) error {
		return fn(&tx{recs: recs})
	})
}

type tx struct {
	recs *store.Records
}

func (t *tx) Categories() ([]string, bool, error) {
	categories, ok, err := store.Decode[[]string](t.recs, store.KeyCategories)
	if err != nil {
		return nil, ok, fmt.Errorf("categories: decode: %w", err)
	}
	return categories, ok, nil
}

func (t *tx) SaveCategories(categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	return store.Encode(t.recs, store.KeyCategories, categories)
}

func (t *tx) Products() ([]inventory.Product, error) {
	products, _, err := inventory.DecodeProducts(t.recs)
	return products, err
}

func (t *tx) SaveProducts(products []inventory.Product) error {
	return inventory.StageProducts(t.recs, products)
}

func (t *tx) Records() *store.Records {
	return t.recs
}
