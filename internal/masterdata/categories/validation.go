package categories

import (
	"slices"
	"strings"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// validateName rejects empty names and names already present in categories.
func validateName(categories []string, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", shared.Validationf("Category name is empty or already exists.")
	}
	if slices.Contains(categories, name) {
		return "", shared.Validationf("Category name is empty or already exists.")
	}
	return name, nil
}
