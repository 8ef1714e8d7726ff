package http

import (
	"log/slog"
	"net/http"

	"github.com/nimbusmart/catalog/internal/repository"
	"github.com/nimbusmart/catalog/pkg/httputil"
)

// CategoryHandler handles HTTP requests for the read-only category surface.
type CategoryHandler struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(repo repository.CategoryRepository, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		repo:   repo,
		logger: logger,
	}
}

// ListCategories handles GET /api/v1/categories
// @Summary List categories
// @Description Returns all categories ordered by name
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}
