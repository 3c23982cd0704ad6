package inventory

import (
	"context"
	"fmt"

	"github.com/stockdesk/stockdesk/internal/platform/store"
)

// Repository persists products in the record store.
type Repository struct {
	store store.Store
}

// NewRepository constructs Repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// TxRepository exposes the working set of one atomic inventory mutation.
type TxRepository interface {
	Products() ([]Product, error)
	SaveProducts(products []Product) error
	Categories() ([]string, error)
	Records() *store.Records
}

type txRepo struct {
	recs *store.Records
}

// WithTx runs fn over products, categories and the stock log in one atomic update.
func (r *Repository) WithTx(ctx context.Context, fn func(TxRepository) error) error {
	keys := []string{store.KeyProducts, store.KeyCategories, store.KeyStockLogs}
	return r.store.Update(ctx, keys, func(recs *store.Records) error {
		return fn(&txRepo{recs: recs})
	})
}

// ListProducts returns all products in stored order.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	products, _, err := store.Load[[]Product](ctx, r.store, store.KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("inventory: list products: %w", err)
	}
	return products, nil
}

func (t *txRepo) Products() ([]Product, error) {
	products, _, err := DecodeProducts(t.recs)
	return products, err
}

func (t *txRepo) SaveProducts(products []Product) error {
	return StageProducts(t.recs, products)
}

func (t *txRepo) Categories() ([]string, error) {
	categories, _, err := store.Decode[[]string](t.recs, store.KeyCategories)
	if err != nil {
		return nil, fmt.Errorf("inventory: decode categories: %w", err)
	}
	return categories, nil
}

func (t *txRepo) Records() *store.Records {
	return t.recs
}

// DecodeProducts reads the product collection inside an update declaring store.KeyProducts.
func DecodeProducts(recs *store.Records) ([]Product, bool, error) {
	products, ok, err := store.Decode[[]Product](recs, store.KeyProducts)
	if err != nil {
		return nil, ok, fmt.Errorf("inventory: decode products: %w", err)
	}
	return products, ok, nil
}

// StageProducts writes the product collection inside an update declaring store.KeyProducts.
func StageProducts(recs *store.Records, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	return store.Encode(recs, store.KeyProducts, products)
}
