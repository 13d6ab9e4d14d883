package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evanmoss/sharelist/internal/grocery"
	"github.com/evanmoss/sharelist/internal/reconcile"
	"github.com/evanmoss/sharelist/internal/role"
	"github.com/evanmoss/sharelist/internal/store"
)

type ItemHandler struct {
	db     *sql.DB
	lists  *store.ListStore
	items  *store.ItemStore
	recon  *reconcile.ItemReconciler
	logger *slog.Logger
}

func NewItemHandler(db *sql.DB, lists *store.ListStore, items *store.ItemStore, recon *reconcile.ItemReconciler, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{db: db, lists: lists, items: items, recon: recon, logger: logger}
}

type addItemRequest struct {
	ListID int64                `json:"listId"`
	Item   reconcile.ItemFields `json:"item"`
}

// Add puts an item on a list. Editors and above.
func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ListID == 0 || strings.TrimSpace(req.Item.Name) == "" {
		writeFail(w, http.StatusBadRequest, "List ID and item name are required.")
		return
	}

	if _, ok := requireListRole(w, h.lists, req.ListID, act.UserID, role.ActionEditItems); !ok {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	itemID, err := h.recon.WithTx(tx).Add(act, req.ListID, req.Item)
	if err != nil {
		h.logger.Error("add item failed", "list_id", req.ListID, "error", err)
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"itemId": itemID})
}

type editItemRequest struct {
	ListID  int64                `json:"listId"`
	OldItem reconcile.ItemFields `json:"oldItem"`
	NewItem reconcile.ItemFields `json:"newItem"`
}

// Edit applies an item change: quantity in place, name or category by
// re-pointing the list at another item row. Editors and above.
func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req editItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ListID == 0 {
		writeFail(w, http.StatusBadRequest, "List ID is required.")
		return
	}

	if _, ok := requireListRole(w, h.lists, req.ListID, act.UserID, role.ActionEditItems); !ok {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	if err := h.recon.WithTx(tx).Edit(act, req.ListID, req.OldItem, req.NewItem); err != nil {
		h.logger.Error("edit item failed", "list_id", req.ListID, "error", err)
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Item updated successfully!"})
}

type deleteItemRequest struct {
	CurrentListID int64 `json:"currentListId"`
	ItemID        int64 `json:"itemId"`
}

// Delete takes an item off a list. Editors and above.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req deleteItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CurrentListID == 0 || req.ItemID == 0 {
		writeFail(w, http.StatusBadRequest, "List ID and item ID are required.")
		return
	}

	if _, ok := requireListRole(w, h.lists, req.CurrentListID, act.UserID, role.ActionEditItems); !ok {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	if err := h.recon.WithTx(tx).Delete(act, req.CurrentListID, req.ItemID); err != nil {
		h.logger.Error("delete item failed", "list_id", req.CurrentListID, "error", err)
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Item deleted successfully!"})
}

// Suggestions returns known items matching the query, with their
// categories, for typeahead. Exact matches are excluded since they are
// already what the user typed. For names not in the catalog a guessed
// category is included so the client can pre-fill the picker.
func (h *ItemHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(r); !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	if query == "" {
		writeSuccess(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}

	matches, err := h.items.Search(query)
	if err != nil {
		h.logger.Error("item suggestions failed", "error", err)
		writeError(w, err)
		return
	}

	type suggestion struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	items := make([]suggestion, 0, len(matches))
	for _, m := range matches {
		items = append(items, suggestion{ID: m.ID, Name: m.Name, Category: m.Category})
	}

	fields := map[string]any{"items": items}
	if guess := grocery.Categorize(query); guess != "" {
		fields["suggestedCategory"] = guess
	}
	writeSuccess(w, http.StatusOK, fields)
}
