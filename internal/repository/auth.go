// Package repository provides PostgreSQL persistence for users, categories
// and transactions. Rows of categories and transactions are soft-deleted.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/ebudget/internal/models"
)

// PostgresAuthRepository stores user accounts.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts u and returns it with its new id. A taken email yields
// ErrDuplicate.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, api_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash, u.APIToken).Scan(&u.ID)
	if isUniqueViolation(err) {
		return models.User{}, ErrDuplicate
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UserByEmail looks a user up by login.
func (r *PostgresAuthRepository) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, api_token FROM users WHERE email = $1
	`, email))
}

// UserByToken looks a user up by bearer token.
func (r *PostgresAuthRepository) UserByToken(ctx context.Context, token string) (models.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, api_token FROM users WHERE api_token = $1
	`, token))
}

func (r *PostgresAuthRepository) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.APIToken)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}
