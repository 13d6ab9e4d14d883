package handler

import (
	"log/slog"
	"net/http"

	"github.com/evanmoss/sharelist/internal/model"
	"github.com/evanmoss/sharelist/internal/store"
)

type CategoryHandler struct {
	items  *store.ItemStore
	logger *slog.Logger
}

func NewCategoryHandler(items *store.ItemStore, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{items: items, logger: logger}
}

// List returns the fixed category reference table.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.items.Categories()
	if err != nil {
		h.logger.Error("list categories failed", "error", err)
		writeError(w, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"categories": categories})
}
