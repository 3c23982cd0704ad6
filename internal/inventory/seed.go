package inventory

import "github.com/shopspring/decimal"

func demoProducts() []Product {
	return []Product{
		demo(1, "Pro Gaming Mouse", 45, "29.99", "59.99", "Mouse", "TechCorp", 10, 150),
		demo(2, "Mechanical Keyboard", 8, "79.99", "129.99", "Keyboard", "GadgetGurus", 15, 80),
		demo(3, "Noise-Cancelling Headset", 120, "99.99", "199.99", "Headset", "AudioPhile", 20, 250),
		demo(4, "Studio Microphone", 5, "49.99", "99.99", "Microphone", "SoundWave", 5, 50),
		demo(5, `27" 4K Monitor`, 25, "250", "450", "Monitor", "ViewMax", 8, 75),
	}
}

func demo(id int64, name string, qty int, cost, price, category, supplier string, minStock, sales int) Product {
	return Product{
		ID:           id,
		Name:         name,
		Quantity:     qty,
		MinStock:     minStock,
		PurchaseCost: decimal.RequireFromString(cost),
		SellingPrice: decimal.RequireFromString(price),
		Category:     category,
		Supplier:     supplier,
		Sales:        sales,
		History:      []HistoryEntry{},
	}
}
