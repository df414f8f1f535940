package http

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/middleware"
	"github.com/atinyakov/ebudget/internal/models"
)

// TransactionService defines the transaction operations required by
// TransactionHandler.
type TransactionService interface {
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, userID int64, req models.TransactionRequest) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id int64, req models.TransactionRequest) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
}

// TransactionHandler serves /api/transactions.
type TransactionHandler struct {
	Service TransactionService
	Log     *zap.Logger
}

// List handles GET /transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Service.ListTransactions(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out := make([]models.TransactionPayload, 0, len(txs))
	for _, t := range txs {
		out = append(out, models.PayloadFromTransaction(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TransactionRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.Service.CreateTransaction(r.Context(), middleware.GetUserIDFromContext(r.Context()), req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.PayloadFromTransaction(t))
}

// Update handles PUT /transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.TransactionRequest
	if !decode(w, r, &req) {
		return
	}
	h.update(w, r, id, req)
}

// Delete handles DELETE /transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.delete(w, r, id)
}

// Override handles POST /transactions/{id} with a _method of PUT or DELETE.
func (h *TransactionHandler) Override(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.TransactionRequest
	if !decode(w, r, &req) {
		return
	}
	switch strings.ToUpper(req.Method) {
	case models.MethodPut, http.MethodPatch:
		h.update(w, r, id, req)
	case models.MethodDelete:
		h.delete(w, r, id)
	default:
		writeMessage(w, http.StatusMethodNotAllowed, "The POST method is not supported for this route.")
	}
}

func (h *TransactionHandler) update(w http.ResponseWriter, r *http.Request, id int64, req models.TransactionRequest) {
	t, err := h.Service.UpdateTransaction(r.Context(), middleware.GetUserIDFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PayloadFromTransaction(t))
}

func (h *TransactionHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.Service.DeleteTransaction(r.Context(), middleware.GetUserIDFromContext(r.Context()), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
