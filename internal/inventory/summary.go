package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryStock counts products per stock state within one category.
type CategoryStock struct {
	Category   string `json:"category"`
	InStock    int    `json:"inStock"`
	LowStock   int    `json:"lowStock"`
	OutOfStock int    `json:"outOfStock"`
	Units      int    `json:"units"`
}

// Summary is the stock report.
type Summary struct {
	ProductCount   int             `json:"productCount"`
	TotalUnits     int             `json:"totalUnits"`
	LowStock       int             `json:"lowStock"`
	OutOfStock     int             `json:"outOfStock"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	RetailValue    decimal.Decimal `json:"retailValue"`
	TotalSales     int             `json:"totalSales"`
	TopCategory    string          `json:"topCategory"`
	Categories     []CategoryStock `json:"categories"`
}

// Summary aggregates the current catalogue.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(products), nil
}

// Summarize computes the stock report. Out-of-stock products (quantity 0) are
// not also counted as low stock. Categories are ordered by units, descending.
func Summarize(products []Product) Summary {
	sum := Summary{InventoryValue: decimal.Zero, RetailValue: decimal.Zero, Categories: []CategoryStock{}}
	byCategory := make(map[string]*CategoryStock)
	for _, p := range products {
		sum.ProductCount++
		sum.TotalUnits += p.Quantity
		sum.TotalSales += p.Sales
		qty := decimal.NewFromInt(int64(p.Quantity))
		sum.InventoryValue = sum.InventoryValue.Add(p.PurchaseCost.Mul(qty))
		sum.RetailValue = sum.RetailValue.Add(p.SellingPrice.Mul(qty))

		c, ok := byCategory[p.Category]
		if !ok {
			c = &CategoryStock{Category: p.Category}
			byCategory[p.Category] = c
		}
		c.Units += p.Quantity
		switch {
		case p.Quantity == 0:
			sum.OutOfStock++
			c.OutOfStock++
		case StatusOf(p) == StatusLowStock:
			sum.LowStock++
			c.LowStock++
		default:
			c.InStock++
		}
	}
	for _, c := range byCategory {
		sum.Categories = append(sum.Categories, *c)
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		a, b := sum.Categories[i], sum.Categories[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		return a.Category < b.Category
	})
	if len(sum.Categories) > 0 {
		sum.TopCategory = sum.Categories[0].Category
	}
	return sum
}
