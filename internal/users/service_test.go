package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/shared"
)

var admin = shared.Principal{ID: 1, Name: "Admin User", Email: "admin@company.com", Role: shared.RoleAdmin}

func seedUsers() []User {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []User{
		{ID: 1, Name: "Admin User", Email: "admin@company.com", Role: shared.RoleAdmin, Status: StatusActive, CreatedAt: created},
		{ID: 2, Name: "Staff Member", Email: "staff@company.com", Role: shared.RoleStaff, Status: StatusActive, CreatedAt: created},
		{ID: 3, Name: "Viewer User", Email: "viewer@company.com", Role: shared.RoleViewer, Status: StatusActive, CreatedAt: created},
	}
}

func newTestService(t *testing.T) (*Service, *audit.Writer) {
	t.Helper()
	s := store.NewMemoryStore()
	ids := shared.NewIDGenerator(nil)
	writer := audit.NewWriter(s, ids, nil)
	svc := NewService(NewRepository(s), writer, ids, nil)
	seeded, err := svc.EnsureSeeded(context.Background(), seedUsers())
	require.NoError(t, err)
	require.True(t, seeded)
	return svc, writer
}

func TestEnsureSeededOnlyOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, Form{Name: "Dana", Email: "dana@company.com", Role: shared.RoleStaff})
	require.NoError(t, err)

	seeded, err := svc.EnsureSeeded(ctx, seedUsers())
	require.NoError(t, err)
	require.False(t, seeded)

	list, err := svc.ListUsers(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 4)
}

func TestCreateUser(t *testing.T) {
	svc, writer := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, admin, Form{Name: " Dana ", Email: "dana@company.com", Role: shared.RoleStaff})
	require.NoError(t, err)
	require.Equal(t, "Dana", u.Name)
	require.Equal(t, StatusActive, u.Status)
	require.Nil(t, u.LastLogin)
	require.NotZero(t, u.ID)
	require.NotEmpty(t, u.Avatar)

	logs, err := writer.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, audit.TypeUser, logs[0].Type)
	require.Equal(t, "User created", logs[0].Action)
	require.Equal(t, "Admin User", logs[0].User)
	require.Equal(t, "User created for user: Dana (dana@company.com)", logs[0].Details)
}

func TestCreateUserValidation(t *testing.T) {
	svc, writer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, Form{Name: "Dup", Email: "staff@company.com", Role: shared.RoleStaff})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, admin, Form{Name: "Bad", Email: "not-an-email", Role: shared.RoleStaff})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, admin, Form{Name: "Bad", Email: "bad@company.com", Role: "Owner"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, admin, Form{Email: "bad@company.com", Role: shared.RoleViewer})
	require.ErrorIs(t, err, shared.ErrValidation)

	list, err := svc.ListUsers(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	logs, err := writer.Activity(ctx)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestUpdateUserKeepsIdentity(t *testing.T) {
	svc, writer := newTestService(t)
	ctx := context.Background()

	u, err := svc.Update(ctx, admin, 2, Form{Name: "Staff Lead", Email: "staff@company.com", Role: shared.RoleAdmin, Status: StatusActive})
	require.NoError(t, err)
	require.Equal(t, int64(2), u.ID)
	require.Equal(t, "Staff Lead", u.Name)
	require.Equal(t, seedUsers()[1].CreatedAt, u.CreatedAt)

	_, err = svc.Update(ctx, admin, 2, Form{Name: "Staff Lead", Email: "viewer@company.com", Role: shared.RoleAdmin})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(ctx, admin, 99, Form{Name: "Ghost", Email: "ghost@company.com", Role: shared.RoleViewer})
	require.ErrorIs(t, err, shared.ErrNotFound)

	logs, err := writer.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "User updated", logs[0].Action)
}

func TestProtectedAdmin(t *testing.T) {
	svc, writer := newTestService(t)
	ctx := context.Background()

	err := svc.Delete(ctx, admin, ProtectedUserID)
	require.ErrorIs(t, err, shared.ErrProtectedRecord)

	_, err = svc.ToggleStatus(ctx, admin, ProtectedUserID)
	require.ErrorIs(t, err, shared.ErrProtectedRecord)

	_, err = svc.Update(ctx, admin, ProtectedUserID, Form{Name: "Admin User", Email: "admin@company.com", Role: shared.RoleAdmin, Status: StatusInactive})
	require.ErrorIs(t, err, shared.ErrProtectedRecord)

	u, err := svc.Get(ctx, ProtectedUserID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, u.Status)
	logs, err := writer.Activity(ctx)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestToggleAndDelete(t *testing.T) {
	svc, writer := newTestService(t)
	ctx := context.Background()

	u, err := svc.ToggleStatus(ctx, admin, 3)
	require.NoError(t, err)
	require.Equal(t, StatusInactive, u.Status)
	u, err = svc.ToggleStatus(ctx, admin, 3)
	require.NoError(t, err)
	require.Equal(t, StatusActive, u.Status)

	require.NoError(t, svc.Delete(ctx, admin, 3))
	_, err = svc.Get(ctx, 3)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, admin, 3), shared.ErrNotFound)

	logs, err := writer.Activity(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.Equal(t, "User deleted", logs[0].Action)
	require.Equal(t, "User activated", logs[1].Action)
	require.Equal(t, "User deactivated", logs[2].Action)
}

func TestListUsersFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ToggleStatus(ctx, admin, 2)
	require.NoError(t, err)

	list, err := svc.ListUsers(ctx, Filter{Search: "VIEWER"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = svc.ListUsers(ctx, Filter{Role: "all", Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(2), list[0].ID)

	list, err = svc.ListUsers(ctx, Filter{Role: shared.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, list, 1)
}
