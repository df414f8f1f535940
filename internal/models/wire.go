package models

import "github.com/shopspring/decimal"

// Method overrides carried in the request body of POST /{resource}/{id}.
const (
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
)

// MethodOverride is the body of delete calls.
type MethodOverride struct {
	Method string `json:"_method"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CategoryRequest is the body of category create, update and delete calls.
type CategoryRequest struct {
	Method string `json:"_method,omitempty"`
	Name   string `json:"name,omitempty"`
}

// CategoryPayload is a category as the backend returns it.
type CategoryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TransactionRequest is the body of transaction create, update and delete calls.
type TransactionRequest struct {
	Method     string          `json:"_method,omitempty"`
	CategoryID int64           `json:"category_id,omitempty"`
	Type       Kind            `json:"type,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Date       Date            `json:"date"`
}

// TransactionPayload is a transaction as the backend returns it.
type TransactionPayload struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"user_id"`
	Category     *CategoryPayload `json:"category"`
	Type         Kind             `json:"type"`
	Amount       decimal.Decimal  `json:"amount"`
	Date         Date             `json:"date"`
	CategoryName string           `json:"categoryName"`
}

// ErrorResponse is the JSON error body of the backend.
type ErrorResponse struct {
	Message string `json:"message"`
}

// CategoryFromPayload maps a backend category onto a cached row of owner.
func CategoryFromPayload(p CategoryPayload, owner int64) Category {
	return Category{ID: p.ID, OwnerUserID: owner, Name: p.Name}
}

// TransactionFromPayload maps a backend transaction onto a cached row of
// owner. The nested category wins over the flat categoryName field; a
// missing category maps to id 0.
func TransactionFromPayload(p TransactionPayload, owner int64) Transaction {
	tx := Transaction{
		ID:           p.ID,
		OwnerUserID:  owner,
		Kind:         p.Type,
		Amount:       p.Amount,
		OccurredOn:   p.Date,
		CategoryName: p.CategoryName,
	}
	if p.Category != nil {
		tx.CategoryID = p.Category.ID
		tx.CategoryName = p.Category.Name
	}
	return tx
}

// PayloadFromTransaction is the inverse used by the backend.
func PayloadFromTransaction(t Transaction) TransactionPayload {
	p := TransactionPayload{
		ID:           t.ID,
		UserID:       t.OwnerUserID,
		Type:         t.Kind,
		Amount:       t.Amount,
		Date:         t.OccurredOn,
		CategoryName: t.CategoryName,
	}
	if t.CategoryID != 0 {
		p.Category = &CategoryPayload{ID: t.CategoryID, Name: t.CategoryName}
	}
	return p
}
