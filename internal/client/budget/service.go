// Package budget keeps the local cache in step with the backend and derives
// totals and the weekly rollup from the cached transactions.
//
// Every write goes to the backend first; the cache only ever receives what
// the backend answered.
package budget

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/models"
)

// Remote is the backend as seen by the engine.
type Remote interface {
	ListCategories(ctx context.Context, token string) ([]models.CategoryPayload, error)
	AddCategory(ctx context.Context, token, name string) (models.CategoryPayload, error)
	UpdateCategory(ctx context.Context, token string, id int64, name string) (models.CategoryPayload, error)
	DeleteCategory(ctx context.Context, token string, id int64) error

	ListTransactions(ctx context.Context, token string) ([]models.TransactionPayload, error)
	AddTransaction(ctx context.Context, token string, req models.TransactionRequest) (models.TransactionPayload, error)
	UpdateTransaction(ctx context.Context, token string, id int64, req models.TransactionRequest) (models.TransactionPayload, error)
	DeleteTransaction(ctx context.Context, token string, id int64) error
}

// Cache is the local record store as seen by the engine.
type Cache interface {
	UpsertCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, c models.Category) error
	Categories(ctx context.Context, owner int64) ([]models.Category, error)
	CategoryByID(ctx context.Context, owner, id int64) (models.Category, bool, error)

	UpsertTransaction(ctx context.Context, t models.Transaction) error
	DeleteTransaction(ctx context.Context, t models.Transaction) error
	Transactions(ctx context.Context, owner int64) ([]models.Transaction, error)
	TransactionByID(ctx context.Context, owner, id int64) (models.Transaction, bool, error)
	WatchTransactions(ctx context.Context, owner int64) (<-chan []models.Transaction, error)
}

// Service is the sync and aggregation engine.
type Service struct {
	remote Remote
	cache  Cache
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock sets the source of "today" for the weekly rollup.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the engine over remote and cache.
func NewService(remote Remote, cache Cache, opts ...Option) *Service {
	s := &Service{
		remote: remote,
		cache:  cache,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireSession(sess models.Session) error {
	if !sess.Valid() {
		return ErrNotAuthenticated
	}
	return nil
}
