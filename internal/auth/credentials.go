package auth

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/users"
)

// Credential is a sign-in identity. Only its public projection is persisted.
type Credential struct {
	ID           int64
	Name         string
	Email        string
	Role         string
	Avatar       string
	PasswordHash []byte
}

type seedCredential struct {
	id       int64
	name     string
	email    string
	role     string
	password string
	avatar   string
}

var demoCredentials = []seedCredential{
	{1, "Admin User", "admin@company.com", shared.RoleAdmin, "admin123", "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face"},
	{2, "Staff Member", "staff@company.com", shared.RoleStaff, "staff123", "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150&h=150&fit=crop&crop=face"},
	{3, "Viewer User", "viewer@company.com", shared.RoleViewer, "viewer123", "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=150&h=150&fit=crop&crop=face"},
}

// Directory holds the static credential list.
type Directory struct {
	creds []Credential
}

// NewDirectory hashes the demo credentials with the given bcrypt cost.
func NewDirectory(cost int) (*Directory, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	creds := make([]Credential, 0, len(demoCredentials))
	for _, c := range demoCredentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.password), cost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash credential %d: %w", c.id, err)
		}
		creds = append(creds, Credential{
			ID:           c.id,
			Name:         c.name,
			Email:        c.email,
			Role:         c.role,
			Avatar:       c.avatar,
			PasswordHash: hash,
		})
	}
	return &Directory{creds: creds}, nil
}

// PublicUsers returns the password-free projection used to seed the user directory.
func (d *Directory) PublicUsers(now time.Time) []users.User {
	out := make([]users.User, 0, len(d.creds))
	for _, c := range d.creds {
		out = append(out, users.User{
			ID:        c.ID,
			Name:      c.Name,
			Email:     c.Email,
			Role:      c.Role,
			Status:    users.StatusActive,
			Avatar:    c.Avatar,
			CreatedAt: now,
		})
	}
	return out
}

// match finds the account whose current directory email equals email and
// whose password verifies. Directory fields win over the static ones.
func (d *Directory) match(directory []users.User, email, password string) (users.User, bool) {
	for _, c := range d.creds {
		u, ok := findUser(directory, c.ID)
		if !ok || u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)) != nil {
			continue
		}
		return u, true
	}
	return users.User{}, false
}

func findUser(list []users.User, id int64) (users.User, bool) {
	for _, u := range list {
		if u.ID == id {
			return u, true
		}
	}
	return users.User{}, false
}
