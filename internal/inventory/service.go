package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(TxRepository) error) error
	ListProducts(ctx context.Context) ([]Product, error)
}

// MutationObserver receives the action label of every committed mutation.
type MutationObserver interface {
	ObserveInventoryMutation(action string)
}

// Service coordinates inventory operations.
type Service struct {
	repo     RepositoryPort
	audit    *audit.Writer
	ids      *shared.IDGenerator
	logger   *slog.Logger
	observer MutationObserver
	now      func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, writer *audit.Writer, ids *shared.IDGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = shared.NewIDGenerator(nil)
	}
	return &Service{repo: repo, audit: writer, ids: ids, logger: logger, now: time.Now}
}

// WithObserver attaches a mutation observer.
func (s *Service) WithObserver(o MutationObserver) *Service {
	s.observer = o
	return s
}

// Create adds a product with an initial history entry.
func (s *Service) Create(ctx context.Context, actor shared.Principal, form ProductForm) (Product, error) {
	fields, err := form.parse()
	if err != nil {
		return Product{}, err
	}
	var created Product
	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		if err := s.checkCategory(tx, fields.category); err != nil {
			return err
		}
		products, err := tx.Products()
		if err != nil {
			return err
		}
		now := s.now()
		p := Product{ID: s.ids.Next(), Sales: 0}
		fields.apply(&p)
		p.Record(HistoryEntry{Date: now, Action: ActionCreated, Staff: actor.Name, Details: "New product added"})
		if err := tx.SaveProducts(append(products, p)); err != nil {
			return err
		}
		if err := s.stageStock(tx, actor, ActionCreated, p.Name, nil, audit.Qty(p.Quantity), "New product added"); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("inventory: create product: %w", err)
	}
	s.committed(ActionCreated, created.ID)
	return created, nil
}

// Update merges the form into an existing product. Id, sales and prior history are kept.
func (s *Service) Update(ctx context.Context, actor shared.Principal, id int64, form ProductForm) (Product, error) {
	fields, err := form.parse()
	if err != nil {
		return Product{}, err
	}
	var updated Product
	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		i := indexOf(products, id)
		if i < 0 {
			return shared.NotFoundf("product %d not found", id)
		}
		before := products[i]
		if fields.category != before.Category {
			if err := s.checkCategory(tx, fields.category); err != nil {
				return err
			}
		}
		p := before
		fields.apply(&p)
		details := describeChanges(before, p)
		p.History = before.History
		p.Record(HistoryEntry{Date: s.now(), Action: ActionEdited, Staff: actor.Name, Details: details})

		next := slices.Clone(products)
		next[i] = p
		if err := tx.SaveProducts(next); err != nil {
			return err
		}
		var oldQty, newQty *int
		if before.Quantity != p.Quantity {
			oldQty, newQty = audit.Qty(before.Quantity), audit.Qty(p.Quantity)
		}
		if err := s.stageStock(tx, actor, ActionEdited, p.Name, oldQty, newQty, details); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("inventory: update product: %w", err)
	}
	s.committed(ActionEdited, updated.ID)
	return updated, nil
}

// UpdateStock sets the quantity of a product.
func (s *Service) UpdateStock(ctx context.Context, actor shared.Principal, id int64, quantity int) (Product, error) {
	if quantity < 0 {
		return Product{}, shared.Validationf("quantity must not be negative")
	}
	var updated Product
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		i := indexOf(products, id)
		if i < 0 {
			return shared.NotFoundf("product %d not found", id)
		}
		p := products[i]
		old := p.Quantity
		details := fmt.Sprintf("Quantity changed from %d to %d", old, quantity)
		p.Quantity = quantity
		p.Record(HistoryEntry{Date: s.now(), Action: ActionStockUpdated, Staff: actor.Name, Details: details})

		next := slices.Clone(products)
		next[i] = p
		if err := tx.SaveProducts(next); err != nil {
			return err
		}
		if err := s.stageStock(tx, actor, ActionStockUpdated, p.Name, audit.Qty(old), audit.Qty(quantity), details); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("inventory: update stock: %w", err)
	}
	s.committed(ActionStockUpdated, updated.ID)
	return updated, nil
}

// Delete removes a product permanently together with its history.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, id int64) error {
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		i := indexOf(products, id)
		if i < 0 {
			return shared.NotFoundf("product %d not found", id)
		}
		p := products[i]
		next := slices.Delete(slices.Clone(products), i, i+1)
		if err := tx.SaveProducts(next); err != nil {
			return err
		}
		return s.stageStock(tx, actor, ActionDeleted, p.Name, audit.Qty(p.Quantity), nil, "Product removed from inventory")
	})
	if err != nil {
		return fmt.Errorf("inventory: delete product: %w", err)
	}
	s.committed(ActionDeleted, id)
	return nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	if i := indexOf(products, id); i >= 0 {
		return products[i], nil
	}
	return Product{}, shared.NotFoundf("product %d not found", id)
}

// History returns the change history of a product, newest first.
func (s *Service) History(ctx context.Context, id int64) ([]HistoryEntry, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.History == nil {
		return []HistoryEntry{}, nil
	}
	return p.History, nil
}

// List returns the products matching f in stored order.
func (s *Service) List(ctx context.Context, f ProductFilter) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(products))
	term := strings.ToLower(f.Search)
	for _, p := range products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		if f.Category != "" && f.Category != "all" && p.Category != f.Category {
			continue
		}
		switch f.Status {
		case "low":
			if p.Quantity >= p.MinStock {
				continue
			}
		case "ok":
			if p.Quantity < p.MinStock {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// EnsureSeeded stores the demo catalogue when no products exist.
func (s *Service) EnsureSeeded(ctx context.Context) (bool, error) {
	seeded := false
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		seeded = false
		products, err := tx.Products()
		if err != nil {
			return err
		}
		if len(products) > 0 {
			return nil
		}
		seeded = true
		return tx.SaveProducts(demoProducts())
	})
	if err != nil {
		return false, fmt.Errorf("inventory: seed: %w", err)
	}
	if seeded {
		s.logger.Info("seeded demo products")
	}
	return seeded, nil
}

func (s *Service) checkCategory(tx TxRepository, category string) error {
	if category == "" {
		return nil
	}
	categories, err := tx.Categories()
	if err != nil {
		return err
	}
	if !slices.Contains(categories, category) {
		return shared.Validationf("category %q does not exist", category)
	}
	return nil
}

func (s *Service) stageStock(tx TxRepository, actor shared.Principal, action, product string, oldQty, newQty *int, details string) error {
	if s.audit == nil {
		return nil
	}
	_, err := s.audit.StageStock(tx.Records(), audit.StockEntry{
		User:     actor.Name,
		Action:   action,
		Product:  product,
		OldValue: oldQty,
		NewValue: newQty,
		Details:  details,
	})
	return err
}

func (s *Service) committed(action string, id int64) {
	s.logger.Info("inventory mutation", slog.String("action", action), slog.Int64("product_id", id))
	if s.observer != nil {
		s.observer.ObserveInventoryMutation(action)
	}
}

func (f productFields) apply(p *Product) {
	p.Name = f.name
	p.Quantity = f.quantity
	p.MinStock = f.minStock
	p.PurchaseCost = f.purchaseCost
	p.SellingPrice = f.sellingPrice
	p.Category = f.category
	p.Supplier = f.supplier
}

// describeChanges lists edited fields as "field: old -> new".
func describeChanges(before, after Product) string {
	var changes []string
	add := func(field, from, to string) {
		if from != to {
			changes = append(changes, fmt.Sprintf("%s: %s -> %s", field, from, to))
		}
	}
	add("name", before.Name, after.Name)
	add("quantity", fmt.Sprint(before.Quantity), fmt.Sprint(after.Quantity))
	add("minStock", fmt.Sprint(before.MinStock), fmt.Sprint(after.MinStock))
	addAmount := func(field string, from, to decimal.Decimal) {
		if !from.Equal(to) {
			changes = append(changes, fmt.Sprintf("%s: %s -> %s", field, from.String(), to.String()))
		}
	}
	addAmount("purchaseCost", before.PurchaseCost, after.PurchaseCost)
	addAmount("sellingPrice", before.SellingPrice, after.SellingPrice)
	add("category", before.Category, after.Category)
	add("supplier", before.Supplier, after.Supplier)
	if len(changes) == 0 {
		return "No changes"
	}
	return strings.Join(changes, ", ")
}

func indexOf(products []Product, id int64) int {
	return slices.IndexFunc(products, func(p Product) bool { return p.ID == id })
}
