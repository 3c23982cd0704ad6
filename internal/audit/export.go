package audit

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteActivityCSV serialises activity entries to CSV.
func WriteActivityCSV(w io.Writer, entries []ActivityEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"ID", "Timestamp", "Type", "User", "Action", "Details"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.Format(time.RFC3339),
			string(e.Type),
			e.User,
			e.Action,
			e.Details,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteStockCSV serialises stock entries to CSV. Absent quantities are blank.
func WriteStockCSV(w io.Writer, entries []StockEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"ID", "Timestamp", "User", "Action", "Product", "Old Value", "New Value", "Details"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.Format(time.RFC3339),
			e.User,
			e.Action,
			e.Product,
			formatQty(e.OldValue),
			formatQty(e.NewValue),
			e.Details,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatQty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
