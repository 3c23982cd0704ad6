package inventory

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// FormValue is a form field submitted as text. JSON numbers are accepted and
// kept as their literal text.
type FormValue string

// UnmarshalJSON accepts a string, a number or null.
func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
	default:
		*v = FormValue(b)
	}
	return nil
}

func (v FormValue) text() string {
	return strings.TrimSpace(string(v))
}

// ProductForm is the product editor submission.
type ProductForm struct {
	Name         string    `json:"name"`
	Quantity     FormValue `json:"quantity"`
	MinStock     FormValue `json:"minStock"`
	PurchaseCost FormValue `json:"purchaseCost"`
	SellingPrice FormValue `json:"sellingPrice"`
	Category     string    `json:"category"`
	Supplier     string    `json:"supplier"`
}

type productFields struct {
	name         string
	quantity     int
	minStock     int
	purchaseCost decimal.Decimal
	sellingPrice decimal.Decimal
	category     string
	supplier     string
}

func (f ProductForm) parse() (productFields, error) {
	var problems []string
	out := productFields{
		name:     strings.TrimSpace(f.Name),
		category: strings.TrimSpace(f.Category),
		supplier: strings.TrimSpace(f.Supplier),
	}
	if out.name == "" {
		problems = append(problems, "name is required")
	}
	if n, msg := parseCount("quantity", f.Quantity.text(), -1); msg != "" {
		problems = append(problems, msg)
	} else {
		out.quantity = n
	}
	if n, msg := parseCount("minStock", f.MinStock.text(), DefaultMinStock); msg != "" {
		problems = append(problems, msg)
	} else {
		out.minStock = n
	}
	if d, msg := parseAmount("purchaseCost", f.PurchaseCost.text()); msg != "" {
		problems = append(problems, msg)
	} else {
		out.purchaseCost = d
	}
	if d, msg := parseAmount("sellingPrice", f.SellingPrice.text()); msg != "" {
		problems = append(problems, msg)
	} else {
		out.sellingPrice = d
	}
	if len(problems) > 0 {
		return productFields{}, shared.Validationf("%s", strings.Join(problems, "; "))
	}
	return out, nil
}

// parseCount parses a non-negative integer. A blank value takes def, or is
// rejected when def is negative.
func parseCount(field, raw string, def int) (int, string) {
	if raw == "" {
		if def < 0 {
			return 0, field + " is required"
		}
		return def, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, field + " must be a whole number"
	}
	if n < 0 {
		return 0, field + " must not be negative"
	}
	return n, ""
}

func parseAmount(field, raw string) (decimal.Decimal, string) {
	if raw == "" {
		return decimal.Zero, field + " is required"
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, field + " must be a number"
	}
	if d.IsNegative() {
		return decimal.Zero, field + " must not be negative"
	}
	return d, ""
}
