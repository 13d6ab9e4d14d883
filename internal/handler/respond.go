package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evanmoss/sharelist/internal/notify"
	"github.com/evanmoss/sharelist/internal/reconcile"
	"github.com/evanmoss/sharelist/internal/role"
	"github.com/evanmoss/sharelist/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// writeError maps typed domain errors to an HTTP status and the standard
// {success:false, error} envelope. Anything unrecognized is a 500 with a
// generic message; the caller logs the detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrListNotFound):
		writeFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, reconcile.ErrNoChanges),
		errors.Is(err, reconcile.ErrImmutableID),
		errors.Is(err, reconcile.ErrUnknownCategory),
		errors.Is(err, reconcile.ErrInsufficientMembers),
		errors.Is(err, store.ErrItemInList),
		errors.Is(err, role.ErrInvalidRole),
		errors.Is(err, notify.ErrInvalidKind),
		errors.Is(err, notify.ErrInvalidActionType),
		errors.Is(err, notify.ErrRoleCountMismatch):
		writeFail(w, http.StatusBadRequest, err.Error())
	default:
		writeFail(w, http.StatusInternalServerError, "internal error")
	}
}
