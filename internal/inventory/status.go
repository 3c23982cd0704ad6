package inventory

import "github.com/shopspring/decimal"

// Stock statuses.
const (
	StatusLowStock = "Low Stock"
	StatusOK       = "OK"
)

var hundred = decimal.NewFromInt(100)

// StatusOf reports "Low Stock" when quantity is below the reorder threshold.
func StatusOf(p Product) string {
	if p.Quantity < p.MinStock {
		return StatusLowStock
	}
	return StatusOK
}

// Margin is the profit margin on the selling price, e.g. "50.00%", or "N/A"
// when the product has no positive selling price.
func Margin(p Product) string {
	if !p.SellingPrice.IsPositive() {
		return "N/A"
	}
	m := p.SellingPrice.Sub(p.PurchaseCost).Div(p.SellingPrice).Mul(hundred)
	return m.StringFixed(2) + "%"
}
