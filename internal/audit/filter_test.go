package audit

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateWindowCutoff(t *testing.T) {
	now := time.Date(2024, 3, 31, 15, 4, 5, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), WindowToday.Cutoff(now))
	require.Equal(t, time.Date(2024, 3, 24, 15, 4, 5, 0, time.UTC), WindowWeek.Cutoff(now))
	// AddDate normalises Feb 31 to Mar 2.
	require.Equal(t, time.Date(2024, 3, 2, 15, 4, 5, 0, time.UTC), WindowMonth.Cutoff(now))
	require.True(t, WindowAll.Cutoff(now).IsZero())
	require.True(t, DateWindow("fortnight").Cutoff(now).IsZero())
}

func TestFilterActivity(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	entries := []ActivityEntry{
		{ID: 4, Type: TypeLogin, User: "Admin User", Action: "User logged in", Timestamp: now.Add(-time.Hour), Details: "Login from web"},
		{ID: 3, Type: TypeUser, User: "Admin User", Action: "User created", Timestamp: now.Add(-3 * 24 * time.Hour), Details: "User created for user: Zoë (zoe@company.com)"},
		{ID: 2, Type: TypeLogout, User: "Staff Member", Action: "User logged out", Timestamp: now.Add(-10 * 24 * time.Hour), Details: "Manual logout"},
		{ID: 1, Type: TypeLogin, User: "Staff Member", Action: "User logged in", Timestamp: now.Add(-60 * 24 * time.Hour)},
	}

	cases := []struct {
		name    string
		filters Filters
		want    []int64
	}{
		{"no filters", Filters{}, []int64{4, 3, 2, 1}},
		{"all passes", Filters{Type: "all", Date: WindowAll}, []int64{4, 3, 2, 1}},
		{"case insensitive search", Filters{Search: "STAFF"}, []int64{2, 1}},
		{"search details", Filters{Search: "manual"}, []int64{2}},
		{"unicode folding", Filters{Search: "ZOË"}, []int64{3}},
		{"type", Filters{Type: "login"}, []int64{4, 1}},
		{"today", Filters{Date: WindowToday}, []int64{4}},
		{"week", Filters{Date: WindowWeek}, []int64{4, 3}},
		{"month", Filters{Date: WindowMonth}, []int64{4, 3, 2}},
		{"unknown window passes", Filters{Date: "yesterday"}, []int64{4, 3, 2, 1}},
		{"combined", Filters{Search: "admin", Type: "user", Date: WindowWeek}, []int64{3}},
		{"no match", Filters{Search: "nobody"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterActivity(entries, tc.filters, now)
			var ids []int64
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			require.Equal(t, tc.want, ids)
		})
	}
}

func TestFilterStockSearchesProductAndIgnoresType(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	entries := []StockEntry{
		{ID: 2, User: "Staff Member", Action: "Stock Updated", Product: "Pro Gaming Mouse", OldValue: Qty(45), NewValue: Qty(40), Timestamp: now},
		{ID: 1, User: "Admin User", Action: "Product Created", Product: "Studio Microphone", NewValue: Qty(5), Timestamp: now.AddDate(0, 0, -2)},
	}

	got := FilterStock(entries, Filters{Search: "gaming mouse", Type: "login"}, now)
	require.Len(t, got, 1)
	require.Equal(t, int64(2), got[0].ID)

	got = FilterStock(entries, Filters{Date: WindowToday}, now)
	require.Len(t, got, 1)
	require.Len(t, FilterStock(entries, Filters{}, now), 2)
}

func TestWriteStockCSV(t *testing.T) {
	ts := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := WriteStockCSV(&buf, []StockEntry{
		{ID: 7, User: "Admin User", Action: "Product Deleted", Product: "Mouse, wireless", OldValue: Qty(3), Timestamp: ts},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, []string{"7", "2024-05-10T12:00:00Z", "Admin User", "Product Deleted", "Mouse, wireless", "3", "", ""}, records[1])
}

func TestWriteActivityCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteActivityCSV(&buf, []ActivityEntry{{ID: 1, Type: TypeLogout, User: "Viewer User", Action: "User logged out", Details: "Manual logout"}})
	require.NoError(t, err)
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, "Type", records[0][2])
	require.Equal(t, "logout", records[1][2])
}
