package users

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, bool, error)
	Mutate(ctx context.Context, fn func(recs *store.Records, list []User) ([]User, error)) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	audit    *audit.Writer
	ids      *shared.IDGenerator
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, writer *audit.Writer, ids *shared.IDGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = shared.NewIDGenerator(nil)
	}
	return &Service{
		repo:     repo,
		audit:    writer,
		ids:      ids,
		validate: shared.NewValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

// ListUsers returns the users matching f in directory order.
func (s *Service) ListUsers(ctx context.Context, f Filter) ([]User, error) {
	list, _, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(list))
	for _, u := range list {
		if f.match(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Get returns one user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	list, _, err := s.repo.ListUsers(ctx)
	if err != nil {
		return User{}, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], nil
	}
	return User{}, shared.NotFoundf("user %d not found", id)
}

// Create adds a new account.
func (s *Service) Create(ctx context.Context, actor shared.Principal, form Form) (User, error) {
	form = form.normalize()
	if err := shared.ValidateStruct(s.validate, form); err != nil {
		return User{}, err
	}
	var created User
	err := s.repo.Mutate(ctx, func(recs *store.Records, list []User) ([]User, error) {
		if emailTaken(list, form.Email, 0) {
			return nil, shared.Validationf("A user with this email already exists.")
		}
		id := s.ids.Next()
		u := User{
			ID:        id,
			Name:      form.Name,
			Email:     form.Email,
			Role:      form.Role,
			Status:    form.Status,
			Avatar:    placeholderAvatar(),
			CreatedAt: s.now(),
		}
		if err := s.record(recs, actor, "User created", u); err != nil {
			return nil, err
		}
		created = u
		return append(list, u), nil
	})
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	s.logger.Info("user created", slog.Int64("user_id", created.ID), slog.String("role", created.Role))
	return created, nil
}

// Update edits an existing account in place.
func (s *Service) Update(ctx context.Context, actor shared.Principal, id int64, form Form) (User, error) {
	form = form.normalize()
	if err := shared.ValidateStruct(s.validate, form); err != nil {
		return User{}, err
	}
	var updated User
	err := s.repo.Mutate(ctx, func(recs *store.Records, list []User) ([]User, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, shared.NotFoundf("user %d not found", id)
		}
		if emailTaken(list, form.Email, id) {
			return nil, shared.Validationf("A user with this email already exists.")
		}
		if id == ProtectedUserID && form.Status == StatusInactive {
			return nil, shared.Protectedf("the primary admin account cannot be deactivated")
		}
		next := cloneList(list)
		u := next[i]
		u.Name, u.Email, u.Role, u.Status = form.Name, form.Email, form.Role, form.Status
		next[i] = u
		if err := s.record(recs, actor, "User updated", u); err != nil {
			return nil, err
		}
		updated = u
		return next, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("users: update: %w", err)
	}
	return updated, nil
}

// Delete removes an account permanently.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, id int64) error {
	if id == ProtectedUserID {
		return shared.Protectedf("the primary admin account cannot be deleted")
	}
	err := s.repo.Mutate(ctx, func(recs *store.Records, list []User) ([]User, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, shared.NotFoundf("user %d not found", id)
		}
		if err := s.record(recs, actor, "User deleted", list[i]); err != nil {
			return nil, err
		}
		next := make([]User, 0, len(list)-1)
		next = append(next, list[:i]...)
		return append(next, list[i+1:]...), nil
	})
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// ToggleStatus flips an account between active and inactive.
func (s *Service) ToggleStatus(ctx context.Context, actor shared.Principal, id int64) (User, error) {
	if id == ProtectedUserID {
		return User{}, shared.Protectedf("the primary admin account cannot be deactivated")
	}
	var toggled User
	err := s.repo.Mutate(ctx, func(recs *store.Records, list []User) ([]User, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, shared.NotFoundf("user %d not found", id)
		}
		next := cloneList(list)
		u := next[i]
		action := "User deactivated"
		if u.Status == StatusInactive {
			u.Status = StatusActive
			action = "User activated"
		} else {
			u.Status = StatusInactive
		}
		next[i] = u
		if err := s.record(recs, actor, action, u); err != nil {
			return nil, err
		}
		toggled = u
		return next, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("users: toggle status: %w", err)
	}
	return toggled, nil
}

// EnsureSeeded writes seed when the directory has never been initialised.
func (s *Service) EnsureSeeded(ctx context.Context, seed []User) (bool, error) {
	seeded := false
	err := s.repo.Mutate(ctx, func(recs *store.Records, list []User) ([]User, error) {
		if _, ok := recs.Raw(store.KeyUsers); ok {
			seeded = false
			return list, nil
		}
		seeded = true
		return cloneList(seed), nil
	})
	if err != nil {
		return false, fmt.Errorf("users: seed: %w", err)
	}
	return seeded, nil
}

func (s *Service) record(recs *store.Records, actor shared.Principal, action string, u User) error {
	if s.audit == nil {
		return nil
	}
	_, err := s.audit.StageActivity(recs, audit.ActivityEntry{
		Type:    audit.TypeUser,
		User:    actor.Name,
		Action:  action,
		Details: audit.UserDetails(action, u.Name, u.Email),
	})
	return err
}

func indexOf(list []User, id int64) int {
	for i, u := range list {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func emailTaken(list []User, email string, except int64) bool {
	for _, u := range list {
		if u.Email == email && u.ID != except {
			return true
		}
	}
	return false
}

func cloneList(list []User) []User {
	out := make([]User, len(list))
	copy(out, list)
	return out
}

func placeholderAvatar() string {
	return fmt.Sprintf("https://images.unsplash.com/photo-%d?w=150&h=150&fit=crop&crop=face", rand.IntN(1_000_000_000))
}
