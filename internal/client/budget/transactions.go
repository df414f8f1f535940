package budget

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/models"
)

// TransactionInput is what a user enters for a new or edited transaction.
type TransactionInput struct {
	CategoryID int64
	Kind       models.Kind
	Amount     decimal.Decimal
	Date       models.Date
}

func (in TransactionInput) request() (models.TransactionRequest, error) {
	if !in.Kind.Valid() {
		return models.TransactionRequest{}, invalid("unknown transaction type %q", in.Kind)
	}
	if !in.Amount.IsPositive() {
		return models.TransactionRequest{}, invalid("amount must be greater than zero")
	}
	if in.Date.IsZero() {
		return models.TransactionRequest{}, invalid("date is not set")
	}
	return models.TransactionRequest{
		CategoryID: in.CategoryID,
		Type:       in.Kind,
		Amount:     in.Amount,
		Date:       in.Date,
	}, nil
}

// SyncTransactions refreshes the cached transactions of the session's user.
// When the listing fails nothing is written.
func (s *Service) SyncTransactions(ctx context.Context, sess models.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	remote, err := s.remote.ListTransactions(ctx, sess.Token)
	if err != nil {
		s.log.Warn("transaction sync failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
		return &SyncFailedError{Entity: "transactions", Err: err}
	}
	skipped := 0
	for _, p := range remote {
		t := models.TransactionFromPayload(p, sess.UserID)
		if err := t.Check(); err != nil {
			s.log.Warn("skipping malformed transaction", zap.Int64("user_id", sess.UserID), zap.Error(err))
			skipped++
			continue
		}
		if err := s.cache.UpsertTransaction(ctx, t); err != nil {
			return err
		}
	}
	s.log.Debug("transactions synced", zap.Int64("user_id", sess.UserID), zap.Int("count", len(remote)-skipped))
	return nil
}

// AddTransaction creates a transaction on the backend and caches the result.
func (s *Service) AddTransaction(ctx context.Context, sess models.Session, in TransactionInput) (models.Transaction, error) {
	if err := requireSession(sess); err != nil {
		return models.Transaction{}, err
	}
	req, err := in.request()
	if err != nil {
		return models.Transaction{}, err
	}
	p, err := s.remote.AddTransaction(ctx, sess.Token, req)
	if err != nil {
		return models.Transaction{}, writeFailed("addTransaction", err)
	}
	t := models.TransactionFromPayload(p, sess.UserID)
	if err := s.cache.UpsertTransaction(ctx, t); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// UpdateTransaction replaces transaction id on the backend and caches the
// result under the session's user.
func (s *Service) UpdateTransaction(ctx context.Context, sess models.Session, id int64, in TransactionInput) (models.Transaction, error) {
	if err := requireSession(sess); err != nil {
		return models.Transaction{}, err
	}
	req, err := in.request()
	if err != nil {
		return models.Transaction{}, err
	}
	p, err := s.remote.UpdateTransaction(ctx, sess.Token, id, req)
	if err != nil {
		return models.Transaction{}, writeFailed("updateTransaction", err)
	}
	t := models.TransactionFromPayload(p, sess.UserID)
	if err := s.cache.UpsertTransaction(ctx, t); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction deletes transaction id on the backend, then drops the
// cached row if there is one.
func (s *Service) DeleteTransaction(ctx context.Context, sess models.Session, id int64) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.remote.DeleteTransaction(ctx, sess.Token, id); err != nil {
		return writeFailed("deleteTransaction", err)
	}
	t, ok, err := s.cache.TransactionByID(ctx, sess.UserID, id)
	if err != nil {
		return fmt.Errorf("lookup cached transaction: %w", err)
	}
	if !ok {
		return nil
	}
	return s.cache.DeleteTransaction(ctx, t)
}

// Transactions returns the cached transactions of owner, newest first.
func (s *Service) Transactions(ctx context.Context, owner int64) ([]models.Transaction, error) {
	return s.cache.Transactions(ctx, owner)
}
