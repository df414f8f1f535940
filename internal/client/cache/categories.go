package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/models"
)

// UpsertCategory inserts c or fully replaces the stored row with the same id.
func (s *Store) UpsertCategory(ctx context.Context, c models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed, err := s.ownerOf(ctx, "categories", c.ID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_user_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_user_id = excluded.owner_user_id,
			name = excluded.name
	`, c.ID, c.OwnerUserID, c.Name)
	if err != nil {
		return fmt.Errorf("upsert category %d: %w", c.ID, err)
	}

	s.notifyCategories(ctx, c.OwnerUserID)
	if existed && prev != c.OwnerUserID {
		s.notifyCategories(ctx, prev)
	}
	return nil
}

// DeleteCategory removes the row with c's id. Deleting an absent row is a
// no-op.
func (s *Store) DeleteCategory(ctx context.Context, c models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, existed, err := s.ownerOf(ctx, "categories", c.ID)
	if err != nil || !existed {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, c.ID); err != nil {
		return fmt.Errorf("delete category %d: %w", c.ID, err)
	}
	s.notifyCategories(ctx, owner)
	return nil
}

// Categories returns the categories of owner ordered by id.
func (s *Store) Categories(ctx context.Context, owner int64) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_user_id, name FROM categories
		WHERE owner_user_id = ?
		ORDER BY id
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.OwnerUserID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryByID looks id up among owner's categories.
func (s *Store) CategoryByID(ctx context.Context, owner, id int64) (models.Category, bool, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name FROM categories
		WHERE owner_user_id = ? AND id = ?
	`, owner, id).Scan(&c.ID, &c.OwnerUserID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, false, nil
	}
	if err != nil {
		return models.Category{}, false, fmt.Errorf("query category %d: %w", id, err)
	}
	return c, true, nil
}

// WatchCategories emits owner's categories now and after every change to
// them, until ctx is done. The channel is closed afterwards.
func (s *Store) WatchCategories(ctx context.Context, owner int64) (<-chan []models.Category, error) {
	s.mu.Lock()
	initial, err := s.Categories(ctx, owner)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ch := s.categories.add(owner, initial)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.categories.remove(owner, ch)
	}()
	return ch, nil
}

// notifyCategories must be called with s.mu held.
func (s *Store) notifyCategories(ctx context.Context, owner int64) {
	if !s.categories.watched(owner) {
		return
	}
	// the write already committed; a cancelled caller must not starve
	// the other observers
	view, err := s.Categories(context.WithoutCancel(ctx), owner)
	if err != nil {
		s.log.Warn("refresh category view", zap.Int64("owner", owner), zap.Error(err))
		return
	}
	s.categories.publish(owner, view)
}
