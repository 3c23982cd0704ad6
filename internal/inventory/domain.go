package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// History action labels.
const (
	ActionCreated         = "Product Created"
	ActionEdited          = "Product Edited"
	ActionStockUpdated    = "Stock Updated"
	ActionDeleted         = "Product Deleted"
	ActionCategoryRenamed = "Category Renamed"
)

// DefaultMinStock applies when a form leaves the reorder threshold blank.
const DefaultMinStock = 10

// Product is a stocked item with its embedded change history.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	MinStock     int             `json:"minStock"`
	PurchaseCost decimal.Decimal `json:"purchaseCost"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Category     string          `json:"category"`
	Supplier     string          `json:"supplier"`
	Sales        int             `json:"sales"`
	History      []HistoryEntry  `json:"history"`
}

// HistoryEntry describes one change to a product, newest first in Product.History.
type HistoryEntry struct {
	Date    time.Time `json:"date"`
	Action  string    `json:"action"`
	Staff   string    `json:"staff"`
	Details string    `json:"details"`
}

// Record prepends entry to the product history.
func (p *Product) Record(entry HistoryEntry) {
	history := make([]HistoryEntry, 0, len(p.History)+1)
	history = append(history, entry)
	p.History = append(history, p.History...)
}

// ProductFilter narrows product listings. Empty or "all" values pass.
type ProductFilter struct {
	Search   string
	Category string
	Status   string
}

// ProductView decorates a product with its derived status and margin.
type ProductView struct {
	Product
	Status string `json:"status"`
	Margin string `json:"margin"`
}

// View returns the decorated projection of p.
func View(p Product) ProductView {
	return ProductView{Product: p, Status: StatusOf(p), Margin: Margin(p)}
}
