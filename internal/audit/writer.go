package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Writer appends entries to the capped log streams.
type Writer struct {
	store  store.Store
	ids    *shared.IDGenerator
	logger *slog.Logger
	now    func() time.Time
}

// NewWriter constructs a log writer.
func NewWriter(s store.Store, ids *shared.IDGenerator, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = shared.NewIDGenerator(nil)
	}
	return &Writer{store: s, ids: ids, logger: logger, now: time.Now}
}

// WithClock overrides the timestamp source.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	if now != nil {
		w.now = now
	}
	return w
}

// StageActivity prepends entry to the activity stream inside a caller's update.
// The activity log key must be declared for that update.
func (w *Writer) StageActivity(r *store.Records, entry ActivityEntry) (ActivityEntry, error) {
	entries := decodeStream[ActivityEntry](w.logger, r, store.KeyActivityLogs)
	entry.ID = w.ids.Next()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = w.now()
	}
	if err := store.Encode(r, store.KeyActivityLogs, prepend(entries, entry)); err != nil {
		return ActivityEntry{}, err
	}
	return entry, nil
}

// StageStock prepends entry to the stock stream inside a caller's update.
func (w *Writer) StageStock(r *store.Records, entry StockEntry) (StockEntry, error) {
	entries := decodeStream[StockEntry](w.logger, r, store.KeyStockLogs)
	entry.ID = w.ids.Next()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = w.now()
	}
	if err := store.Encode(r, store.KeyStockLogs, prepend(entries, entry)); err != nil {
		return StockEntry{}, err
	}
	return entry, nil
}

// AppendActivity writes a single activity entry.
func (w *Writer) AppendActivity(ctx context.Context, entry ActivityEntry) (ActivityEntry, error) {
	var out ActivityEntry
	err := w.store.Update(ctx, []string{store.KeyActivityLogs}, func(r *store.Records) error {
		staged, err := w.StageActivity(r, entry)
		if err != nil {
			return err
		}
		out = staged
		return nil
	})
	if err != nil {
		return ActivityEntry{}, fmt.Errorf("audit: append activity: %w", err)
	}
	return out, nil
}

// AppendStock writes a single stock entry.
func (w *Writer) AppendStock(ctx context.Context, entry StockEntry) (StockEntry, error) {
	var out StockEntry
	err := w.store.Update(ctx, []string{store.KeyStockLogs}, func(r *store.Records) error {
		staged, err := w.StageStock(r, entry)
		if err != nil {
			return err
		}
		out = staged
		return nil
	})
	if err != nil {
		return StockEntry{}, fmt.Errorf("audit: append stock: %w", err)
	}
	return out, nil
}

// Clear empties a stream. It cannot be undone.
func (w *Writer) Clear(ctx context.Context, stream Stream) error {
	if err := w.store.Set(ctx, stream.Key(), []byte("[]")); err != nil {
		return fmt.Errorf("audit: clear %s: %w", stream, err)
	}
	w.logger.Info("log stream cleared", slog.String("stream", string(stream)))
	return nil
}

// Activity returns the activity stream, newest first.
func (w *Writer) Activity(ctx context.Context) ([]ActivityEntry, error) {
	return readStream[ActivityEntry](ctx, w.logger, w.store, store.KeyActivityLogs)
}

// Stock returns the stock stream, newest first.
func (w *Writer) Stock(ctx context.Context) ([]StockEntry, error) {
	return readStream[StockEntry](ctx, w.logger, w.store, store.KeyStockLogs)
}

// decodeStream treats an unreadable stream as empty so a damaged log never
// blocks the mutation that is writing to it.
func decodeStream[T any](logger *slog.Logger, r *store.Records, key string) []T {
	entries, _, err := store.Decode[[]T](r, key)
	if err != nil {
		logger.Warn("discarding unreadable log stream", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	return entries
}

func readStream[T any](ctx context.Context, logger *slog.Logger, s store.Store, key string) ([]T, error) {
	entries, _, err := store.Load[[]T](ctx, s, key)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			logger.Warn("unreadable log stream", slog.String("key", key), slog.Any("error", err))
			return []T{}, nil
		}
		return nil, fmt.Errorf("audit: read %s: %w", key, err)
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, nil
}

func prepend[T any](entries []T, entry T) []T {
	out := make([]T, 0, min(len(entries)+1, MaxEntries))
	out = append(out, entry)
	out = append(out, entries...)
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}
