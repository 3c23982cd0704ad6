package audit

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DateWindow is a relative time window applied to log queries.
type DateWindow string

const (
	WindowAll   DateWindow = "all"
	WindowToday DateWindow = "today"
	WindowWeek  DateWindow = "week"
	WindowMonth DateWindow = "month"
)

// Filters menampung parameter pencarian log.
type Filters struct {
	Search string
	Type   string
	Date   DateWindow
}

// Cutoff returns the earliest timestamp admitted by the window. The zero time
// means no lower bound; unrecognised windows admit everything.
func (w DateWindow) Cutoff(now time.Time) time.Time {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	}
	return time.Time{}
}

// FilterActivity applies search, type and date filters in that order.
func FilterActivity(entries []ActivityEntry, f Filters, now time.Time) []ActivityEntry {
	m := newMatcher(f.Search)
	cutoff := f.Date.Cutoff(now)
	typ := strings.TrimSpace(f.Type)
	out := make([]ActivityEntry, 0, len(entries))
	for _, e := range entries {
		if !m.any(e.User, e.Action, e.Details) {
			continue
		}
		if typ != "" && typ != "all" && string(e.Type) != typ {
			continue
		}
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterStock applies search and date filters. Stock entries carry no type.
func FilterStock(entries []StockEntry, f Filters, now time.Time) []StockEntry {
	m := newMatcher(f.Search)
	cutoff := f.Date.Cutoff(now)
	out := make([]StockEntry, 0, len(entries))
	for _, e := range entries {
		if !m.any(e.User, e.Action, e.Details, e.Product) {
			continue
		}
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// matcher does case-insensitive substring search. cases.Caser keeps state, so
// each query gets its own.
type matcher struct {
	caser cases.Caser
	term  string
}

func newMatcher(search string) *matcher {
	m := &matcher{caser: cases.Fold()}
	if search != "" {
		m.term = m.fold(search)
	}
	return m
}

func (m *matcher) fold(s string) string {
	return m.caser.String(norm.NFC.String(s))
}

func (m *matcher) any(fields ...string) bool {
	if m.term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(m.fold(f), m.term) {
			return true
		}
	}
	return false
}
