package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/ebudget/internal/models"
)

// PostgresTransactionRepository stores transactions scoped by user.
type PostgresTransactionRepository struct {
	DB *sql.DB
}

// NewPostgresTransactionRepository creates a PostgresTransactionRepository over db.
func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{DB: db}
}

// ListTransactions returns the live transactions of userID, newest first,
// each with the current name of its category.
func (r *PostgresTransactionRepository) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.category_id, t.type, t.amount, t.date, COALESCE(c.name, '')
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id AND c.deleted_at IS NULL
		WHERE t.user_id = $1 AND t.deleted_at IS NULL
		ORDER BY t.date DESC, t.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var (
			t        models.Transaction
			category sql.NullInt64
			kind     string
		)
		if err := rows.Scan(&t.ID, &t.OwnerUserID, &category, &kind, &t.Amount, &t.OccurredOn, &t.CategoryName); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		t.CategoryID = category.Int64
		t.Kind = models.Kind(kind)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CreateTransaction inserts t and returns it with its new id.
func (r *PostgresTransactionRepository) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, category_id, type, amount, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, t.OwnerUserID, nullID(t.CategoryID), string(t.Kind), t.Amount, t.OccurredOn).Scan(&t.ID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction replaces a live transaction of t.OwnerUserID.
func (r *PostgresTransactionRepository) UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE transactions SET category_id = $1, type = $2, amount = $3, date = $4
		WHERE id = $5 AND user_id = $6 AND deleted_at IS NULL
	`, nullID(t.CategoryID), string(t.Kind), t.Amount, t.OccurredOn, t.ID, t.OwnerUserID)
	if err := affectedOne(res, err); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction marks a transaction of userID deleted.
func (r *PostgresTransactionRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = now()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, id, userID)
	return affectedOne(res, err)
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
