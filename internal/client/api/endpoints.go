package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/ebudget/internal/models"
)

// Register creates an account and returns it together with its token.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/register", "", req, &u)
	return u, err
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/login", "", req, &u)
	return u, err
}

// ListCategories returns every category visible to token.
func (c *Client) ListCategories(ctx context.Context, token string) ([]models.CategoryPayload, error) {
	var out []models.CategoryPayload
	err := c.do(ctx, http.MethodGet, "/categories", token, nil, &out)
	return out, err
}

// AddCategory creates a category.
func (c *Client) AddCategory(ctx context.Context, token, name string) (models.CategoryPayload, error) {
	var out models.CategoryPayload
	err := c.do(ctx, http.MethodPost, "/categories", token, models.CategoryRequest{Name: name}, &out)
	return out, err
}

// UpdateCategory replaces the name of category id.
func (c *Client) UpdateCategory(ctx context.Context, token string, id int64, name string) (models.CategoryPayload, error) {
	var out models.CategoryPayload
	body := models.CategoryRequest{Method: models.MethodPut, Name: name}
	err := c.do(ctx, http.MethodPost, idPath("categories", id), token, body, &out)
	return out, err
}

// DeleteCategory removes category id.
func (c *Client) DeleteCategory(ctx context.Context, token string, id int64) error {
	body := models.MethodOverride{Method: models.MethodDelete}
	return c.do(ctx, http.MethodPost, idPath("categories", id), token, body, nil)
}

// ListTransactions returns every transaction visible to token.
func (c *Client) ListTransactions(ctx context.Context, token string) ([]models.TransactionPayload, error) {
	var out []models.TransactionPayload
	err := c.do(ctx, http.MethodGet, "/transactions", token, nil, &out)
	return out, err
}

// AddTransaction creates a transaction.
func (c *Client) AddTransaction(ctx context.Context, token string, req models.TransactionRequest) (models.TransactionPayload, error) {
	var out models.TransactionPayload
	req.Method = ""
	err := c.do(ctx, http.MethodPost, "/transactions", token, req, &out)
	return out, err
}

// UpdateTransaction replaces transaction id.
func (c *Client) UpdateTransaction(ctx context.Context, token string, id int64, req models.TransactionRequest) (models.TransactionPayload, error) {
	var out models.TransactionPayload
	req.Method = models.MethodPut
	err := c.do(ctx, http.MethodPost, idPath("transactions", id), token, req, &out)
	return out, err
}

// DeleteTransaction removes transaction id.
func (c *Client) DeleteTransaction(ctx context.Context, token string, id int64) error {
	body := models.MethodOverride{Method: models.MethodDelete}
	return c.do(ctx, http.MethodPost, idPath("transactions", id), token, body, nil)
}
