package service

import (
	"context"
	"errors"
	"strings"

	"github.com/atinyakov/ebudget/internal/models"
	"github.com/atinyakov/ebudget/internal/repository"
)

// CategoryRepository defines the persistence operations on categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context, userID int64) ([]models.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, userID int64, name string) (models.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error
}

// TransactionRepository defines the persistence operations on transactions.
type TransactionRepository interface {
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
}

// BudgetService implements the category and transaction endpoints for one
// user at a time.
type BudgetService struct {
	categories   CategoryRepository
	transactions TransactionRepository
}

// NewBudgetService constructs a BudgetService.
func NewBudgetService(categories CategoryRepository, transactions TransactionRepository) *BudgetService {
	return &BudgetService{categories: categories, transactions: transactions}
}

// ListCategories returns the categories of userID.
func (s *BudgetService) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	return s.categories.ListCategories(ctx, userID)
}

// CreateCategory adds a category for userID.
func (s *BudgetService) CreateCategory(ctx context.Context, userID int64, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalid("The name field is required.")
	}
	return s.categories.CreateCategory(ctx, userID, name)
}

// UpdateCategory renames category id of userID.
func (s *BudgetService) UpdateCategory(ctx context.Context, userID, id int64, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalid("The name field is required.")
	}
	c, err := s.categories.UpdateCategory(ctx, userID, id, name)
	return c, notFound(err)
}

// DeleteCategory removes category id of userID.
func (s *BudgetService) DeleteCategory(ctx context.Context, userID, id int64) error {
	return notFound(s.categories.DeleteCategory(ctx, userID, id))
}

// ListTransactions returns the transactions of userID, newest first.
func (s *BudgetService) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return s.transactions.ListTransactions(ctx, userID)
}

// CreateTransaction validates req and stores it for userID.
func (s *BudgetService) CreateTransaction(ctx context.Context, userID int64, req models.TransactionRequest) (models.Transaction, error) {
	t, err := s.transaction(ctx, userID, req)
	if err != nil {
		return models.Transaction{}, err
	}
	return s.transactions.CreateTransaction(ctx, t)
}

// UpdateTransaction validates req and replaces transaction id of userID.
func (s *BudgetService) UpdateTransaction(ctx context.Context, userID, id int64, req models.TransactionRequest) (models.Transaction, error) {
	t, err := s.transaction(ctx, userID, req)
	if err != nil {
		return models.Transaction{}, err
	}
	t.ID = id
	t, err = s.transactions.UpdateTransaction(ctx, t)
	return t, notFound(err)
}

// DeleteTransaction removes transaction id of userID.
func (s *BudgetService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return notFound(s.transactions.DeleteTransaction(ctx, userID, id))
}

// transaction checks req and resolves its category name.
func (s *BudgetService) transaction(ctx context.Context, userID int64, req models.TransactionRequest) (models.Transaction, error) {
	switch {
	case !req.Type.Valid():
		return models.Transaction{}, invalid("The selected type is invalid.")
	case !req.Amount.IsPositive():
		return models.Transaction{}, invalid("The amount must be greater than 0.")
	case req.Date.IsZero():
		return models.Transaction{}, invalid("The date field is required.")
	}

	t := models.Transaction{
		OwnerUserID: userID,
		CategoryID:  req.CategoryID,
		Kind:        req.Type,
		Amount:      req.Amount.Round(2),
		OccurredOn:  req.Date,
	}
	if req.CategoryID != 0 {
		c, err := s.categories.GetCategory(ctx, userID, req.CategoryID)
		if errors.Is(err, repository.ErrNotFound) {
			return models.Transaction{}, invalid("The selected category id is invalid.")
		}
		if err != nil {
			return models.Transaction{}, err
		}
		t.CategoryName = c.Name
	}
	return t, nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
