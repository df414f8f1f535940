package budget

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/models"
)

// SyncCategories replaces the cached categories of the session's user with
// what the backend lists. When the listing fails nothing is written.
func (s *Service) SyncCategories(ctx context.Context, sess models.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	remote, err := s.remote.ListCategories(ctx, sess.Token)
	if err != nil {
		s.log.Warn("category sync failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
		return &SyncFailedError{Entity: "categories", Err: err}
	}
	for _, p := range remote {
		if err := s.cache.UpsertCategory(ctx, models.CategoryFromPayload(p, sess.UserID)); err != nil {
			return err
		}
	}
	s.log.Debug("categories synced", zap.Int64("user_id", sess.UserID), zap.Int("count", len(remote)))
	return nil
}

// AddCategory creates a category on the backend and caches the result.
func (s *Service) AddCategory(ctx context.Context, sess models.Session, name string) (models.Category, error) {
	if err := requireSession(sess); err != nil {
		return models.Category{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalid("category name is empty")
	}
	p, err := s.remote.AddCategory(ctx, sess.Token, name)
	if err != nil {
		return models.Category{}, writeFailed("addCategory", err)
	}
	c := models.CategoryFromPayload(p, sess.UserID)
	if err := s.cache.UpsertCategory(ctx, c); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// UpdateCategory renames category id on the backend and caches the result.
func (s *Service) UpdateCategory(ctx context.Context, sess models.Session, id int64, name string) (models.Category, error) {
	if err := requireSession(sess); err != nil {
		return models.Category{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalid("category name is empty")
	}
	p, err := s.remote.UpdateCategory(ctx, sess.Token, id, name)
	if err != nil {
		return models.Category{}, writeFailed("updateCategory", err)
	}
	c := models.CategoryFromPayload(p, sess.UserID)
	if err := s.cache.UpsertCategory(ctx, c); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory deletes category id on the backend, then drops the cached
// row if there is one.
func (s *Service) DeleteCategory(ctx context.Context, sess models.Session, id int64) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.remote.DeleteCategory(ctx, sess.Token, id); err != nil {
		return writeFailed("deleteCategory", err)
	}
	c, ok, err := s.cache.CategoryByID(ctx, sess.UserID, id)
	if err != nil {
		return fmt.Errorf("lookup cached category: %w", err)
	}
	if !ok {
		return nil
	}
	return s.cache.DeleteCategory(ctx, c)
}

// Categories returns the cached categories of owner.
func (s *Service) Categories(ctx context.Context, owner int64) ([]models.Category, error) {
	return s.cache.Categories(ctx, owner)
}
