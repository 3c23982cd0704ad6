package users

import (
	"strings"
	"time"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// ProtectedUserID is the primary admin account; it can be neither deleted nor deactivated.
const ProtectedUserID int64 = 1

// Status is the account state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User represents a user account for management.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    Status     `json:"status"`
	Avatar    string     `json:"avatar"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Active reports whether the account may sign in.
func (u User) Active() bool {
	return u.Status != StatusInactive
}

// Principal projects the account onto a request actor.
func (u User) Principal() shared.Principal {
	return shared.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Form is the editable part of an account.
type Form struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role" validate:"required,oneof=Admin Staff Viewer"`
	Status Status `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (f Form) normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Role = strings.TrimSpace(f.Role)
	if f.Status == "" {
		f.Status = StatusActive
	}
	return f
}

// Filter narrows the directory listing. Empty or "all" values pass.
type Filter struct {
	Search string
	Role   string
	Status string
}

func (f Filter) match(u User) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) &&
			!strings.Contains(strings.ToLower(u.Role), term) {
			return false
		}
	}
	if f.Role != "" && f.Role != "all" && u.Role != f.Role {
		return false
	}
	if f.Status != "" && f.Status != "all" && string(u.Status) != f.Status {
		return false
	}
	return true
}
