package categories

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/stockdesk/stockdesk/internal/audit"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Service manages the product category list.
type Service struct {
	repo   Repository
	audit  *audit.Writer
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a category service. A nil writer disables activity entries.
func NewService(repo Repository, writer *audit.Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: writer, logger: logger, now: time.Now}
}

// List returns categories in stored order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	categories, _, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []string{}, nil
	}
	return categories, nil
}

// Add appends a new category.
func (s *Service) Add(ctx context.Context, actor shared.Principal, raw string) (string, error) {
	var added string
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		categories, _, err := tx.Categories()
		if err != nil {
			return err
		}
		name, err := validateName(categories, raw)
		if err != nil {
			return err
		}
		if err := tx.SaveCategories(append(slices.Clone(categories), name)); err != nil {
			return err
		}
		added = name
		return s.stage(tx, actor, ActionAdded, fmt.Sprintf("Category %q added", name))
	})
	if err != nil {
		return "", fmt.Errorf("categories: add: %w", err)
	}
	s.logger.Info("category added", slog.String("category", added))
	return added, nil
}

// Rename replaces old with a new name in place and moves every product in old
// to the new name, recording one history entry per moved product.
func (s *Service) Rename(ctx context.Context, actor shared.Principal, old, raw string) (string, int, error) {
	var (
		renamed string
		moved   int
	)
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		moved = 0
		categories, _, err := tx.Categories()
		if err != nil {
			return err
		}
		i := slices.Index(categories, old)
		if i < 0 {
			return shared.NotFoundf("category %q not found", old)
		}
		name, err := validateName(categories, raw)
		if err != nil {
			return err
		}
		next := slices.Clone(categories)
		next[i] = name
		if err := tx.SaveCategories(next); err != nil {
			return err
		}

		products, err := tx.Products()
		if err != nil {
			return err
		}
		now := s.now()
		updated := slices.Clone(products)
		for j := range updated {
			if updated[j].Category != old {
				continue
			}
			updated[j].Category = name
			updated[j].Record(inventory.HistoryEntry{
				Date:    now,
				Action:  inventory.ActionCategoryRenamed,
				Staff:   actor.Name,
				Details: fmt.Sprintf("category: %s -> %s", old, name),
			})
			moved++
		}
		if moved > 0 {
			if err := tx.SaveProducts(updated); err != nil {
				return err
			}
		}
		renamed = name
		return s.stage(tx, actor, ActionRenamed, fmt.Sprintf("Category %q renamed to %q", old, name))
	})
	if err != nil {
		return "", 0, fmt.Errorf("categories: rename: %w", err)
	}
	s.logger.Info("category renamed", slog.String("from", old), slog.String("to", renamed), slog.Int("products", moved))
	return renamed, moved, nil
}

// Delete removes a category that no product references.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, name string) error {
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		categories, _, err := tx.Categories()
		if err != nil {
			return err
		}
		i := slices.Index(categories, name)
		if i < 0 {
			return shared.NotFoundf("category %q not found", name)
		}
		products, err := tx.Products()
		if err != nil {
			return err
		}
		var inUse []string
		for _, p := range products {
			if p.Category == name {
				inUse = append(inUse, p.Name)
			}
		}
		if len(inUse) > 0 {
			return shared.Validationf("category %q is used by %d product(s): %s", name, len(inUse), strings.Join(inUse, ", "))
		}
		if err := tx.SaveCategories(slices.Delete(slices.Clone(categories), i, i+1)); err != nil {
			return err
		}
		return s.stage(tx, actor, ActionDeleted, fmt.Sprintf("Category %q deleted", name))
	})
	if err != nil {
		return fmt.Errorf("categories: delete: %w", err)
	}
	s.logger.Info("category deleted", slog.String("category", name))
	return nil
}

// EnsureSeeded stores DefaultCategories when the list is missing or empty.
func (s *Service) EnsureSeeded(ctx context.Context) (bool, error) {
	seeded := false
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		seeded = false
		categories, _, err := tx.Categories()
		if err != nil {
			return err
		}
		if len(categories) > 0 {
			return nil
		}
		seeded = true
		return tx.SaveCategories(slices.Clone(DefaultCategories))
	})
	if err != nil {
		return false, fmt.Errorf("categories: seed: %w", err)
	}
	if seeded {
		s.logger.Info("seeded default categories")
	}
	return seeded, nil
}

func (s *Service) stage(tx Tx, actor shared.Principal, action, details string) error {
	if s.audit == nil {
		return nil
	}
	_, err := s.audit.StageActivity(tx.Records(), audit.ActivityEntry{
		Type:      audit.TypeSystem,
		User:      actor.Name,
		Action:    action,
		Timestamp: s.now(),
		Details:   details,
	})
	return err
}
