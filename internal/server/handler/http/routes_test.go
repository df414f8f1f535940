package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/client/api"
	"github.com/atinyakov/ebudget/internal/models"
	"github.com/atinyakov/ebudget/internal/service"
)

// memBackend serves every handler interface from memory for a single
// account.
type memBackend struct {
	mu   sync.Mutex
	next int64
	cats map[int64]models.Category
	txs  map[int64]models.Transaction
}

func newMemBackend() *memBackend {
	return &memBackend{cats: map[int64]models.Category{}, txs: map[int64]models.Transaction{}}
}

func (m *memBackend) id() int64 { m.next++; return m.next }

func (m *memBackend) Register(ctx context.Context, name, email, password string) (models.User, error) {
	return models.User{ID: 1, Name: name, Email: email, APIToken: "secret"}, nil
}

func (m *memBackend) Login(ctx context.Context, email, password string) (models.User, error) {
	if password != "pw" {
		return models.User{}, service.ErrInvalidCredentials
	}
	return models.User{ID: 1, Email: email, APIToken: "secret"}, nil
}

func (m *memBackend) Authenticate(ctx context.Context, token string) (int64, error) {
	if token != "secret" {
		return 0, errors.New("unknown token")
	}
	return 1, nil
}

func (m *memBackend) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Category
	for _, c := range m.cats {
		out = append(out, c)
	}
	return out, nil
}

func (m *memBackend) CreateCategory(ctx context.Context, userID int64, name string) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.Category{ID: m.id(), OwnerUserID: userID, Name: name}
	m.cats[c.ID] = c
	return c, nil
}

func (m *memBackend) UpdateCategory(ctx context.Context, userID, id int64, name string) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cats[id]
	if !ok {
		return models.Category{}, service.ErrNotFound
	}
	c.Name = name
	m.cats[id] = c
	return c, nil
}

func (m *memBackend) DeleteCategory(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cats[id]; !ok {
		return service.ErrNotFound
	}
	delete(m.cats, id)
	return nil
}

func (m *memBackend) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.txs {
		out = append(out, t)
	}
	return out, nil
}

func (m *memBackend) CreateTransaction(ctx context.Context, userID int64, req models.TransactionRequest) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := models.Transaction{
		ID: m.id(), OwnerUserID: userID, CategoryID: req.CategoryID, Kind: req.Type,
		Amount: req.Amount, OccurredOn: req.Date, CategoryName: m.cats[req.CategoryID].Name,
	}
	m.txs[t.ID] = t
	return t, nil
}

func (m *memBackend) UpdateTransaction(ctx context.Context, userID, id int64, req models.TransactionRequest) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[id]; !ok {
		return models.Transaction{}, service.ErrNotFound
	}
	t := models.Transaction{
		ID: id, OwnerUserID: userID, CategoryID: req.CategoryID, Kind: req.Type,
		Amount: req.Amount, OccurredOn: req.Date, CategoryName: m.cats[req.CategoryID].Name,
	}
	m.txs[id] = t
	return t, nil
}

func (m *memBackend) DeleteTransaction(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[id]; !ok {
		return service.ErrNotFound
	}
	delete(m.txs, id)
	return nil
}

func newTestServer(t *testing.T) (*api.Client, *httptest.Server) {
	t.Helper()
	b := newMemBackend()
	router := NewRouter(
		&AuthHandler{AuthService: b},
		&CategoryHandler{Service: b},
		&TransactionHandler{Service: b},
		b,
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return api.New(srv.URL+"/api", srv.Client()), srv
}

func TestRouter_WithAPIClient(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := context.Background()

	if _, err := client.Login(ctx, models.LoginRequest{Email: "a@x.io", Password: "bad"}); !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	u, err := client.Login(ctx, models.LoginRequest{Email: "a@x.io", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	token := u.APIToken

	cat, err := client.AddCategory(ctx, token, "Food")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if _, err := client.UpdateCategory(ctx, token, cat.ID, "Groceries"); err != nil {
		t.Fatalf("update category: %v", err)
	}

	req := models.TransactionRequest{
		CategoryID: cat.ID,
		Type:       models.Expense,
		Amount:     decimal.RequireFromString("12.30"),
		Date:       models.NewDate(2024, time.March, 10),
	}
	tx, err := client.AddTransaction(ctx, token, req)
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if tx.Category == nil || tx.Category.Name != "Groceries" {
		t.Errorf("unexpected category %+v", tx.Category)
	}

	req.Type = models.Income
	if _, err := client.UpdateTransaction(ctx, token, tx.ID, req); err != nil {
		t.Fatalf("update transaction: %v", err)
	}
	txs, err := client.ListTransactions(ctx, token)
	if err != nil || len(txs) != 1 || txs[0].Type != models.Income {
		t.Fatalf("list transactions = %+v, %v", txs, err)
	}

	if err := client.DeleteTransaction(ctx, token, tx.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := client.DeleteCategory(ctx, token, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	cats, err := client.ListCategories(ctx, token)
	if err != nil || len(cats) != 0 {
		t.Fatalf("list categories = %+v, %v", cats, err)
	}

	var rej *api.RejectionError
	if err := client.DeleteCategory(ctx, token, cat.ID); !errors.As(err, &rej) || rej.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 rejection, got %v", err)
	}
}

func TestRouter_RequiresBearer(t *testing.T) {
	client, srv := newTestServer(t)
	if _, err := client.ListCategories(context.Background(), "wrong"); !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	resp, err := http.Post(srv.URL+"/api/categories", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", resp.StatusCode)
	}
}
