package http

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/middleware"
	"github.com/atinyakov/ebudget/internal/models"
)

// CategoryService defines the category operations required by CategoryHandler.
type CategoryService interface {
	ListCategories(ctx context.Context, userID int64) ([]models.Category, error)
	CreateCategory(ctx context.Context, userID int64, name string) (models.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error
}

// CategoryHandler serves /api/categories.
type CategoryHandler struct {
	Service CategoryService
	Log     *zap.Logger
}

func categoryPayload(c models.Category) models.CategoryPayload {
	return models.CategoryPayload{ID: c.ID, Name: c.Name}
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Service.ListCategories(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out := make([]models.CategoryPayload, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryPayload(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Service.CreateCategory(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Name)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryPayload(c))
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.CategoryRequest
	if !decode(w, r, &req) {
		return
	}
	h.update(w, r, id, req)
}

// Delete handles DELETE /categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.delete(w, r, id)
}

// Override handles POST /categories/{id}, dispatching on the _method field
// of the body.
func (h *CategoryHandler) Override(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.CategoryRequest
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

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request, id int64, req models.CategoryRequest) {
	c, err := h.Service.UpdateCategory(r.Context(), middleware.GetUserIDFromContext(r.Context()), id, req.Name)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryPayload(c))
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.Service.DeleteCategory(r.Context(), middleware.GetUserIDFromContext(r.Context()), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
