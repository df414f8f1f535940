package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/ebudget/internal/models"
)

// PostgresCategoryRepository stores categories scoped by user.
type PostgresCategoryRepository struct {
	DB *sql.DB
}

// NewPostgresCategoryRepository creates a PostgresCategoryRepository over db.
func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{DB: db}
}

// ListCategories returns the live categories of userID ordered by id.
func (r *PostgresCategoryRepository) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, name FROM categories
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.OwnerUserID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory fetches one live category of userID.
func (r *PostgresCategoryRepository) GetCategory(ctx context.Context, userID, id int64) (models.Category, error) {
	var c models.Category
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, name FROM categories
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, id, userID).Scan(&c.ID, &c.OwnerUserID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("GetCategory: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category for userID.
func (r *PostgresCategoryRepository) CreateCategory(ctx context.Context, userID int64, name string) (models.Category, error) {
	c := models.Category{OwnerUserID: userID, Name: name}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO categories (user_id, name) VALUES ($1, $2) RETURNING id
	`, userID, name).Scan(&c.ID)
	if err != nil {
		return models.Category{}, fmt.Errorf("CreateCategory: %w", err)
	}
	return c, nil
}

// UpdateCategory renames a live category of userID.
func (r *PostgresCategoryRepository) UpdateCategory(ctx context.Context, userID, id int64, name string) (models.Category, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE categories SET name = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`, name, id, userID)
	if err := affectedOne(res, err); err != nil {
		return models.Category{}, err
	}
	return models.Category{ID: id, OwnerUserID: userID, Name: name}, nil
}

// DeleteCategory marks a category of userID deleted.
func (r *PostgresCategoryRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE categories SET deleted_at = now()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, id, userID)
	return affectedOne(res, err)
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
