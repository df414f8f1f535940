package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atinyakov/ebudget/internal/models"
	"github.com/atinyakov/ebudget/internal/repository"
)

type mockCategoryRepo struct {
	ListCategoriesFunc func(ctx context.Context, userID int64) ([]models.Category, error)
	GetCategoryFunc    func(ctx context.Context, userID, id int64) (models.Category, error)
	CreateCategoryFunc func(ctx context.Context, userID int64, name string) (models.Category, error)
	UpdateCategoryFunc func(ctx context.Context, userID, id int64, name string) (models.Category, error)
	DeleteCategoryFunc func(ctx context.Context, userID, id int64) error
}

func (m *mockCategoryRepo) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	return m.ListCategoriesFunc(ctx, userID)
}
func (m *mockCategoryRepo) GetCategory(ctx context.Context, userID, id int64) (models.Category, error) {
	return m.GetCategoryFunc(ctx, userID, id)
}
func (m *mockCategoryRepo) CreateCategory(ctx context.Context, userID int64, name string) (models.Category, error) {
	return m.CreateCategoryFunc(ctx, userID, name)
}
func (m *mockCategoryRepo) UpdateCategory(ctx context.Context, userID, id int64, name string) (models.Category, error) {
	return m.UpdateCategoryFunc(ctx, userID, id, name)
}
func (m *mockCategoryRepo) DeleteCategory(ctx context.Context, userID, id int64) error {
	return m.DeleteCategoryFunc(ctx, userID, id)
}

type mockTransactionRepo struct {
	ListTransactionsFunc  func(ctx context.Context, userID int64) ([]models.Transaction, error)
	CreateTransactionFunc func(ctx context.Context, t models.Transaction) (models.Transaction, error)
	UpdateTransactionFunc func(ctx context.Context, t models.Transaction) (models.Transaction, error)
	DeleteTransactionFunc func(ctx context.Context, userID, id int64) error
}

func (m *mockTransactionRepo) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return m.ListTransactionsFunc(ctx, userID)
}
func (m *mockTransactionRepo) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	return m.CreateTransactionFunc(ctx, t)
}
func (m *mockTransactionRepo) UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	return m.UpdateTransactionFunc(ctx, t)
}
func (m *mockTransactionRepo) DeleteTransaction(ctx context.Context, userID, id int64) error {
	return m.DeleteTransactionFunc(ctx, userID, id)
}

func foodCategory() *mockCategoryRepo {
	return &mockCategoryRepo{
		GetCategoryFunc: func(_ context.Context, userID, id int64) (models.Category, error) {
			if id != 1 {
				return models.Category{}, repository.ErrNotFound
			}
			return models.Category{ID: 1, OwnerUserID: userID, Name: "Food"}, nil
		},
	}
}

func TestCreateCategory_TrimsAndValidates(t *testing.T) {
	repo := &mockCategoryRepo{
		CreateCategoryFunc: func(_ context.Context, userID int64, name string) (models.Category, error) {
			return models.Category{ID: 3, OwnerUserID: userID, Name: name}, nil
		},
	}
	svc := NewBudgetService(repo, &mockTransactionRepo{})

	c, err := svc.CreateCategory(context.Background(), 7, "  Food ")
	if err != nil || c.Name != "Food" {
		t.Fatalf("CreateCategory = %+v, %v", c, err)
	}
	var verr *ValidationError
	if _, err := svc.CreateCategory(context.Background(), 7, "  "); !errors.As(err, &verr) {
		t.Errorf("empty name: got %v", err)
	}
}

func TestDeleteCategory_NotFound(t *testing.T) {
	repo := &mockCategoryRepo{
		DeleteCategoryFunc: func(context.Context, int64, int64) error { return repository.ErrNotFound },
	}
	svc := NewBudgetService(repo, &mockTransactionRepo{})
	if err := svc.DeleteCategory(context.Background(), 7, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTransaction_ResolvesCategory(t *testing.T) {
	txRepo := &mockTransactionRepo{
		CreateTransactionFunc: func(_ context.Context, t models.Transaction) (models.Transaction, error) {
			t.ID = 12
			return t, nil
		},
	}
	svc := NewBudgetService(foodCategory(), txRepo)

	got, err := svc.CreateTransaction(context.Background(), 7, models.TransactionRequest{
		CategoryID: 1,
		Type:       models.Expense,
		Amount:     decimal.RequireFromString("9.999"),
		Date:       models.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateTransaction returned error: %v", err)
	}
	if got.ID != 12 || got.OwnerUserID != 7 || got.CategoryName != "Food" {
		t.Errorf("CreateTransaction = %+v", got)
	}
	if got.Amount.String() != "10" {
		t.Errorf("amount = %s; want rounded to cents", got.Amount)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	svc := NewBudgetService(foodCategory(), &mockTransactionRepo{})
	valid := models.TransactionRequest{
		CategoryID: 1, Type: models.Income, Amount: decimal.NewFromInt(5), Date: models.NewDate(2024, 1, 1),
	}
	cases := []struct {
		name string
		mod  func(*models.TransactionRequest)
		want string
	}{
		{"type", func(r *models.TransactionRequest) { r.Type = "x" }, "The selected type is invalid."},
		{"amount", func(r *models.TransactionRequest) { r.Amount = decimal.Zero }, "The amount must be greater than 0."},
		{"date", func(r *models.TransactionRequest) { r.Date = models.Date{} }, "The date field is required."},
		{"category", func(r *models.TransactionRequest) { r.CategoryID = 5 }, "The selected category id is invalid."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mod(&req)
			_, err := svc.CreateTransaction(context.Background(), 7, req)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Message != tc.want {
				t.Errorf("got %v; want %q", err, tc.want)
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	var seen models.Transaction
	txRepo := &mockTransactionRepo{
		UpdateTransactionFunc: func(_ context.Context, t models.Transaction) (models.Transaction, error) {
			seen = t
			if t.ID == 404 {
				return models.Transaction{}, repository.ErrNotFound
			}
			return t, nil
		},
	}
	svc := NewBudgetService(foodCategory(), txRepo)
	req := models.TransactionRequest{Type: models.Income, Amount: decimal.NewFromInt(5), Date: models.NewDate(2024, 1, 1)}

	got, err := svc.UpdateTransaction(context.Background(), 7, 3, req)
	if err != nil {
		t.Fatalf("UpdateTransaction returned error: %v", err)
	}
	if seen.ID != 3 || seen.OwnerUserID != 7 || got.CategoryID != 0 {
		t.Errorf("UpdateTransaction stored %+v", seen)
	}
	if _, err := svc.UpdateTransaction(context.Background(), 7, 404, req); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTransactions_PassesThrough(t *testing.T) {
	want := []models.Transaction{{ID: 1}, {ID: 2}}
	txRepo := &mockTransactionRepo{
		ListTransactionsFunc: func(_ context.Context, userID int64) ([]models.Transaction, error) {
			if userID != 7 {
				t.Errorf("userID = %d; want 7", userID)
			}
			return want, nil
		},
	}
	got, err := NewBudgetService(&mockCategoryRepo{}, txRepo).ListTransactions(context.Background(), 7)
	if err != nil || len(got) != 2 {
		t.Errorf("ListTransactions = %v, %v", got, err)
	}
}
