package users

import (
	"context"
	"fmt"

	"github.com/stockdesk/stockdesk/internal/platform/store"
)

// Repository provides store backed persistence of the user directory.
type Repository struct {
	store store.Store
}

// NewRepository constructs a repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// ListUsers returns all users. The bool reports whether the directory was ever written.
func (r *Repository) ListUsers(ctx context.Context) ([]User, bool, error) {
	list, ok, err := store.Load[[]User](ctx, r.store, store.KeyUsers)
	if err != nil {
		return nil, false, fmt.Errorf("users: list: %w", err)
	}
	return list, ok, nil
}

// Mutate runs fn over the directory in one atomic update together with the
// activity log, and persists the directory fn returns.
func (r *Repository) Mutate(ctx context.Context, fn func(recs *store.Records, list []User) ([]User, error)) error {
	return r.store.Update(ctx, []string{store.KeyUsers, store.KeyActivityLogs}, func(recs *store.Records) error {
		list, _, err := DecodeDirectory(recs)
		if err != nil {
			return err
		}
		next, err := fn(recs, list)
		if err != nil {
			return err
		}
		return StageDirectory(recs, next)
	})
}

// DecodeDirectory reads the directory inside an update declaring store.KeyUsers.
func DecodeDirectory(recs *store.Records) ([]User, bool, error) {
	list, ok, err := store.Decode[[]User](recs, store.KeyUsers)
	if err != nil {
		return nil, ok, fmt.Errorf("users: decode directory: %w", err)
	}
	return list, ok, nil
}

// StageDirectory writes the directory inside an update declaring store.KeyUsers.
func StageDirectory(recs *store.Records, list []User) error {
	if list == nil {
		list = []User{}
	}
	return store.Encode(recs, store.KeyUsers, list)
}
