package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/models"
)

// UpsertTransaction inserts t or fully replaces the stored row with the same
// id. A replaced row keeps its original insertion position for ordering.
func (s *Store) UpsertTransaction(ctx context.Context, t models.Transaction) error {
	if err := t.Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed, err := s.ownerOf(ctx, "transactions", t.ID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_user_id, category_id, kind, amount, occurred_on, category_name, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions))
		ON CONFLICT(id) DO UPDATE SET
			owner_user_id = excluded.owner_user_id,
			category_id = excluded.category_id,
			kind = excluded.kind,
			amount = excluded.amount,
			occurred_on = excluded.occurred_on,
			category_name = excluded.category_name
	`, t.ID, t.OwnerUserID, t.CategoryID, string(t.Kind), t.Amount.String(), t.OccurredOn.String(), t.CategoryName)
	if err != nil {
		return fmt.Errorf("upsert transaction %d: %w", t.ID, err)
	}

	s.notifyTransactions(ctx, t.OwnerUserID)
	if existed && prev != t.OwnerUserID {
		s.notifyTransactions(ctx, prev)
	}
	return nil
}

// DeleteTransaction removes the row with t's id. Deleting an absent row is a
// no-op.
func (s *Store) DeleteTransaction(ctx context.Context, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, existed, err := s.ownerOf(ctx, "transactions", t.ID)
	if err != nil || !existed {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, t.ID); err != nil {
		return fmt.Errorf("delete transaction %d: %w", t.ID, err)
	}
	s.notifyTransactions(ctx, owner)
	return nil
}

// Transactions returns owner's transactions, newest day first; rows of the
// same day keep the order they were first inserted in.
func (s *Store) Transactions(ctx context.Context, owner int64) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_user_id, category_id, kind, amount, occurred_on, category_name
		FROM transactions
		WHERE owner_user_id = ?
		ORDER BY occurred_on DESC, seq ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		var (
			t    models.Transaction
			kind string
		)
		if err := rows.Scan(&t.ID, &t.OwnerUserID, &t.CategoryID, &kind, &t.Amount, &t.OccurredOn, &t.CategoryName); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = models.Kind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// TransactionByID looks id up among owner's transactions.
func (s *Store) TransactionByID(ctx context.Context, owner, id int64) (models.Transaction, bool, error) {
	var (
		t    models.Transaction
		kind string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, category_id, kind, amount, occurred_on, category_name
		FROM transactions
		WHERE owner_user_id = ? AND id = ?
	`, owner, id).Scan(&t.ID, &t.OwnerUserID, &t.CategoryID, &kind, &t.Amount, &t.OccurredOn, &t.CategoryName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, fmt.Errorf("query transaction %d: %w", id, err)
	}
	t.Kind = models.Kind(kind)
	return t, true, nil
}

// WatchTransactions emits owner's transactions now and after every change to
// them, until ctx is done. The channel is closed afterwards.
func (s *Store) WatchTransactions(ctx context.Context, owner int64) (<-chan []models.Transaction, error) {
	s.mu.Lock()
	initial, err := s.Transactions(ctx, owner)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ch := s.txs.add(owner, initial)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.txs.remove(owner, ch)
	}()
	return ch, nil
}

// notifyTransactions must be called with s.mu held.
func (s *Store) notifyTransactions(ctx context.Context, owner int64) {
	if !s.txs.watched(owner) {
		return
	}
	view, err := s.Transactions(context.WithoutCancel(ctx), owner)
	if err != nil {
		s.log.Warn("refresh transaction view", zap.Int64("owner", owner), zap.Error(err))
		return
	}
	s.txs.publish(owner, view)
}
