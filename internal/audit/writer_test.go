package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/shared"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestWriter(t *testing.T) (*Writer, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	w := NewWriter(s, shared.NewIDGenerator(fixedClock(now)), nil).WithClock(fixedClock(now))
	return w, s
}

func TestAppendActivityPrependsNewest(t *testing.T) {
	w, _ := newTestWriter(t)
	ctx := context.Background()

	first, err := w.AppendActivity(ctx, ActivityEntry{Type: TypeLogin, User: "Admin User", Action: "User logged in"})
	require.NoError(t, err)
	second, err := w.AppendActivity(ctx, ActivityEntry{Type: TypeLogout, User: "Admin User", Action: "User logged out"})
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	entries, err := w.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "User logged out", entries[0].Action)
	require.Equal(t, "User logged in", entries[1].Action)
	require.False(t, entries[0].Timestamp.IsZero())
}

func TestStreamsAreCappedAtMaxEntries(t *testing.T) {
	w, _ := newTestWriter(t)
	ctx := context.Background()

	for i := 0; i < MaxEntries+5; i++ {
		_, err := w.AppendStock(ctx, StockEntry{User: "Staff Member", Action: "Stock Updated", Product: fmt.Sprintf("p-%d", i), NewValue: Qty(i)})
		require.NoError(t, err)
	}

	entries, err := w.Stock(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	require.Equal(t, fmt.Sprintf("p-%d", MaxEntries+4), entries[0].Product)
	require.Equal(t, "p-5", entries[MaxEntries-1].Product)
	for i := 1; i < len(entries); i++ {
		require.Greater(t, entries[i-1].ID, entries[i].ID)
	}
}

func TestStagedEntryCommitsWithCallerUpdate(t *testing.T) {
	w, s := newTestWriter(t)
	ctx := context.Background()

	err := s.Update(ctx, []string{store.KeyCategories, store.KeyActivityLogs}, func(r *store.Records) error {
		if err := store.Encode(r, store.KeyCategories, []string{"Mouse"}); err != nil {
			return err
		}
		_, err := w.StageActivity(r, ActivityEntry{Type: TypeSystem, User: "Admin User", Action: "Category Added"})
		return err
	})
	require.NoError(t, err)

	entries, err := w.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	err = s.Update(ctx, []string{store.KeyCategories, store.KeyActivityLogs}, func(r *store.Records) error {
		if _, err := w.StageActivity(r, ActivityEntry{Type: TypeSystem, User: "Admin User", Action: "Category Added"}); err != nil {
			return err
		}
		return shared.Validationf("category already exists")
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	entries, err = w.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStageRequiresDeclaredKey(t *testing.T) {
	w, s := newTestWriter(t)
	err := s.Update(context.Background(), []string{store.KeyProducts}, func(r *store.Records) error {
		_, err := w.StageStock(r, StockEntry{Action: "Product Deleted"})
		return err
	})
	require.ErrorIs(t, err, store.ErrUndeclaredKey)
}

func TestClearEmptiesOnlyTheNamedStream(t *testing.T) {
	w, _ := newTestWriter(t)
	ctx := context.Background()

	_, err := w.AppendActivity(ctx, ActivityEntry{Type: TypeLogin, Action: "User logged in"})
	require.NoError(t, err)
	_, err = w.AppendStock(ctx, StockEntry{Action: "Product Created"})
	require.NoError(t, err)

	require.NoError(t, w.Clear(ctx, StreamActivity))

	activity, err := w.Activity(ctx)
	require.NoError(t, err)
	require.Empty(t, activity)
	stock, err := w.Stock(ctx)
	require.NoError(t, err)
	require.Len(t, stock, 1)
}

func TestUnreadableStreamIsReset(t *testing.T) {
	w, s := newTestWriter(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, store.KeyActivityLogs, []byte("not json")))

	entries, err := w.Activity(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = w.AppendActivity(ctx, ActivityEntry{Type: TypeLogin, Action: "User logged in"})
	require.NoError(t, err)
	entries, err = w.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestParseStream(t *testing.T) {
	s, err := ParseStream("Stock")
	require.NoError(t, err)
	require.Equal(t, StreamStock, s)
	require.Equal(t, store.KeyStockLogs, s.Key())
	require.Equal(t, store.KeyActivityLogs, StreamActivity.Key())

	_, err = ParseStream("notifications")
	require.ErrorIs(t, err, shared.ErrValidation)
}
