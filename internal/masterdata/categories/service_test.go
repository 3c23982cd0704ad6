package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/shared"
)

var admin = shared.Principal{ID: 1, Name: "Admin User", Role: shared.RoleAdmin}

type fixture struct {
	svc       *Service
	inventory *inventory.Service
	writer    *audit.Writer
	store     store.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := store.NewMemoryStore()
	ids := shared.NewIDGenerator(nil)
	writer := audit.NewWriter(s, ids, nil)
	svc := NewService(NewRepository(s), writer, nil)
	_, err := svc.EnsureSeeded(context.Background())
	require.NoError(t, err)
	return fixture{
		svc:       svc,
		inventory: inventory.NewService(inventory.NewRepository(s), writer, ids, nil),
		writer:    writer,
		store:     s,
	}
}

func TestEnsureSeeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultCategories, list)

	seeded, err := f.svc.EnsureSeeded(ctx)
	require.NoError(t, err)
	require.False(t, seeded)

	require.NoError(t, store.Save(ctx, f.store, store.KeyCategories, []string{}))
	seeded, err = f.svc.EnsureSeeded(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
}

func TestAddCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name, err := f.svc.Add(ctx, admin, "  Webcam ")
	require.NoError(t, err)
	require.Equal(t, "Webcam", name)

	for _, bad := range []string{"", "   ", "Mouse", "Webcam"} {
		_, err := f.svc.Add(ctx, admin, bad)
		require.ErrorIs(t, err, shared.ErrValidation, bad)
	}

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 6)
	require.Equal(t, "Webcam", list[5])

	logs, err := f.writer.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, audit.TypeSystem, logs[0].Type)
	require.Equal(t, ActionAdded, logs[0].Action)
}

func TestRenameCascadesToProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.inventory.EnsureSeeded(ctx)
	require.NoError(t, err)

	name, moved, err := f.svc.Rename(ctx, admin, "Mouse", "Mice")
	require.NoError(t, err)
	require.Equal(t, "Mice", name)
	require.Equal(t, 1, moved)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Mice", "Keyboard", "Headset", "Microphone", "Monitor"}, list)

	p, err := f.inventory.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Mice", p.Category)
	require.Len(t, p.History, 1)
	require.Equal(t, inventory.ActionCategoryRenamed, p.History[0].Action)
	require.Equal(t, "Admin User", p.History[0].Staff)

	other, err := f.inventory.Get(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, other.History)
}

func TestRenameErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Rename(ctx, admin, "Gamepad", "Controller")
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, _, err = f.svc.Rename(ctx, admin, "Mouse", "Keyboard")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, _, err = f.svc.Rename(ctx, admin, "Mouse", "")
	require.ErrorIs(t, err, shared.ErrValidation)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultCategories, list)
}

func TestDeleteCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.inventory.EnsureSeeded(ctx)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, admin, "Monitor")
	require.ErrorIs(t, err, shared.ErrValidation)
	require.ErrorIs(t, f.svc.Delete(ctx, admin, "Gamepad"), shared.ErrNotFound)

	require.NoError(t, f.inventory.Delete(ctx, admin, 5))
	require.NoError(t, f.svc.Delete(ctx, admin, "Monitor"))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.NotContains(t, list, "Monitor")
	require.Len(t, list, 4)

	logs, err := f.writer.Activity(ctx)
	require.NoError(t, err)
	require.Equal(t, ActionDeleted, logs[0].Action)
}
