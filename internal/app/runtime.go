package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stockdesk/stockdesk/internal/audit"
	audithttp "github.com/stockdesk/stockdesk/internal/audit/http"
	"github.com/stockdesk/stockdesk/internal/auth"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/masterdata/categories"
	"github.com/stockdesk/stockdesk/internal/observability"
	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/users"
)

const testModeEnv = "STOCKDESK_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// detectTestMode reads the STOCKDESK_TEST_MODE flag once.
func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}

// Runtime holds the wired services of one process.
type Runtime struct {
	Config     *Config
	Logger     *slog.Logger
	Store      store.Store
	Metrics    *observability.Metrics
	Audit      *audit.Writer
	Auth       *auth.Service
	Users      *users.Service
	Inventory  *inventory.Service
	Categories *categories.Service
	directory  *auth.Directory
	router     http.Handler
}

// NewRuntime opens the configured store and wires every service on top of it.
func NewRuntime(ctx context.Context, cfg *Config, logger *slog.Logger) (*Runtime, error) {
	s, err := store.Open(ctx, logger, cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}
	rt, err := NewRuntimeWithStore(cfg, logger, s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return rt, nil
}

// NewRuntimeWithStore wires services over an already opened store.
func NewRuntimeWithStore(cfg *Config, logger *slog.Logger, s store.Store) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tokens, err := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("app: token issuer: %w", err)
	}
	directory, err := auth.NewDirectory(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("app: credential directory: %w", err)
	}

	metrics := observability.NewMetrics()
	ids := shared.NewIDGenerator(nil)
	writer := audit.NewWriter(s, ids, logger)
	rb := rbac.Middleware{Logger: logger}

	authService := auth.NewService(s, directory, tokens, writer, logger).WithObserver(metrics)
	usersService := users.NewService(users.NewRepository(s), writer, ids, logger)
	inventoryService := inventory.NewService(inventory.NewRepository(s), writer, ids, logger).WithObserver(metrics)
	categoriesService := categories.NewService(categories.NewRepository(s), writer, logger)

	rt := &Runtime{
		Config:     cfg,
		Logger:     logger,
		Store:      s,
		Metrics:    metrics,
		Audit:      writer,
		Auth:       authService,
		Users:      usersService,
		Inventory:  inventoryService,
		Categories: categoriesService,
		directory:  directory,
	}
	rt.router = NewRouter(RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       auth.NewHandler(logger, authService),
		InventoryHandler:  inventory.NewHandler(logger, inventoryService, rb),
		CategoriesHandler: categories.NewHandler(logger, categoriesService, rb),
		UsersHandler:      users.NewHandler(logger, usersService, rb),
		AuditHandler:      audithttp.NewHandler(logger, writer),
		RBACMiddleware:    rb,
		Metrics:           metrics,
		RequestLogging:    !InTestMode(),
	})
	return rt, nil
}

// Handler returns the HTTP router.
func (rt *Runtime) Handler() http.Handler {
	return rt.router
}

// Seed initialises the user directory, categories and demo products when they
// are missing. Existing data is never overwritten.
func (rt *Runtime) Seed(ctx context.Context) error {
	if _, err := rt.Users.EnsureSeeded(ctx, rt.directory.PublicUsers(time.Now())); err != nil {
		return err
	}
	if _, err := rt.Categories.EnsureSeeded(ctx); err != nil {
		return err
	}
	if _, err := rt.Inventory.EnsureSeeded(ctx); err != nil {
		return err
	}
	return nil
}

// Start seeds the store and restores a persisted session.
func (rt *Runtime) Start(ctx context.Context) error {
	if err := rt.Seed(ctx); err != nil {
		return fmt.Errorf("app: seed: %w", err)
	}
	u, err := rt.Auth.Restore(ctx)
	if err != nil {
		return fmt.Errorf("app: restore session: %w", err)
	}
	if u != nil {
		rt.Logger.Info("session restored", slog.Int64("user_id", u.ID), slog.String("role", u.Role))
	}
	return nil
}

// Close releases the store.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Store == nil {
		return nil
	}
	if err := rt.Store.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
