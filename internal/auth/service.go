package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/users"
)

// Session is the single active sign-in, persisted as one record.
type Session struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

func (s Session) complete() bool {
	return s.Token != "" && s.User.ID != 0 && s.User.Name != ""
}

// LoginObserver receives login outcomes.
type LoginObserver interface {
	ObserveLogin(result string)
}

// Service wraps authentication business rules.
type Service struct {
	store    store.Store
	creds    *Directory
	tokens   *TokenIssuer
	audit    *audit.Writer
	logger   *slog.Logger
	observer LoginObserver
	now      func() time.Time

	mu      sync.RWMutex
	current *Session
}

// NewService constructs a new Service.
func NewService(s store.Store, creds *Directory, tokens *TokenIssuer, writer *audit.Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		creds:  creds,
		tokens: tokens,
		audit:  writer,
		logger: logger,
		now:    time.Now,
	}
}

// WithObserver attaches a login outcome observer.
func (s *Service) WithObserver(o LoginObserver) *Service {
	s.observer = o
	return s
}

// Login validates credentials and opens the session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	return s.LoginFrom(ctx, email, password, "api")
}

// LoginFrom is Login with the client description recorded in the activity log.
func (s *Service) LoginFrom(ctx context.Context, email, password, client string) (Session, error) {
	var opened Session
	keys := []string{store.KeyUsers, store.KeySession, store.KeyActivityLogs}
	err := s.store.Update(ctx, keys, func(recs *store.Records) error {
		directory, present, err := users.DecodeDirectory(recs)
		if err != nil {
			return err
		}
		now := s.now()
		if !present {
			directory = s.creds.PublicUsers(now)
		}
		u, ok := s.creds.match(directory, email, password)
		if !ok || !u.Active() {
			return shared.ErrInvalidCredentials
		}
		u.LastLogin = &now
		for i := range directory {
			if directory[i].ID == u.ID {
				directory[i] = u
			}
		}
		token, err := s.tokens.Issue(u.ID, u.Role)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		sess := Session{Token: token, User: u}
		if err := store.Encode(recs, store.KeySession, sess); err != nil {
			return err
		}
		if err := users.StageDirectory(recs, directory); err != nil {
			return err
		}
		if _, err := s.audit.StageActivity(recs, audit.ActivityEntry{
			Type:    audit.TypeLogin,
			User:    u.Name,
			Action:  "User logged in",
			Details: "Login from " + clientLabel(client),
		}); err != nil {
			return err
		}
		opened = sess
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			s.observe("failure")
			s.logger.Info("login rejected", slog.String("email", email))
			return Session{}, shared.ErrInvalidCredentials
		}
		s.observe("error")
		return Session{}, fmt.Errorf("auth: login: %w", err)
	}
	s.setCurrent(&opened)
	s.observe("success")
	s.logger.Info("user logged in", slog.Int64("user_id", opened.User.ID), slog.String("role", opened.User.Role))
	return opened, nil
}

// Restore reopens a persisted session at startup. An unreadable, incomplete or
// expired record is deleted and reported as no session.
func (s *Service) Restore(ctx context.Context) (*users.User, error) {
	var restored *Session
	err := s.store.Update(ctx, []string{store.KeySession, store.KeyActivityLogs}, func(recs *store.Records) error {
		restored = nil
		sess, present, err := store.Decode[Session](recs, store.KeySession)
		if !present {
			return nil
		}
		if err != nil || !sess.complete() || !s.tokenMatches(sess) {
			s.logger.Warn("discarding stored session", slog.Any("error", err))
			return recs.Remove(store.KeySession)
		}
		if _, err := s.audit.StageActivity(recs, audit.ActivityEntry{
			Type:    audit.TypeLogin,
			User:    sess.User.Name,
			Action:  "Session restored",
			Details: "User session restored from store",
		}); err != nil {
			return err
		}
		restored = &sess
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: restore: %w", err)
	}
	s.setCurrent(restored)
	if restored == nil {
		return nil, nil
	}
	u := restored.User
	return &u, nil
}

// Logout closes the active session. Without one it does nothing.
func (s *Service) Logout(ctx context.Context) error {
	var closed bool
	err := s.store.Update(ctx, []string{store.KeySession, store.KeyActivityLogs}, func(recs *store.Records) error {
		closed = false
		sess, present, err := store.Decode[Session](recs, store.KeySession)
		if !present {
			return nil
		}
		if err == nil && sess.complete() {
			if _, err := s.audit.StageActivity(recs, audit.ActivityEntry{
				Type:    audit.TypeLogout,
				User:    sess.User.Name,
				Action:  "User logged out",
				Details: "Manual logout",
			}); err != nil {
				return err
			}
			closed = true
		}
		return recs.Remove(store.KeySession)
	})
	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	s.setCurrent(nil)
	if closed {
		s.logger.Info("user logged out")
	}
	return nil
}

// Current returns the cached active session, if any.
func (s *Service) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Authenticate resolves a presented bearer token to the session user. The
// token must verify and equal the persisted session token.
func (s *Service) Authenticate(ctx context.Context, token string) (users.User, error) {
	if token == "" {
		return users.User{}, shared.ErrUnauthorized
	}
	if _, err := s.tokens.Validate(token); err != nil {
		return users.User{}, shared.ErrUnauthorized
	}
	sess, ok, err := store.Load[Session](ctx, s.store, store.KeySession)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return users.User{}, fmt.Errorf("auth: load session: %w", err)
	}
	if !ok || err != nil || sess.Token != token {
		return users.User{}, shared.ErrUnauthorized
	}
	s.setCurrent(&sess)
	return sess.User, nil
}

func (s *Service) tokenMatches(sess Session) bool {
	claims, err := s.tokens.Validate(sess.Token)
	if err != nil {
		return false
	}
	return claims.UserID == sess.User.ID
}

func (s *Service) setCurrent(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveLogin(result)
	}
}

// clientLabel keeps the product token of a user agent, e.g. "Mozilla/5.0".
func clientLabel(client string) string {
	fields := strings.Fields(client)
	if len(fields) == 0 {
		return "unknown client"
	}
	return fields[0]
}
