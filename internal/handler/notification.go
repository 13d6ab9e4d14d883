package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evanmoss/sharelist/internal/model"
	"github.com/evanmoss/sharelist/internal/notify"
)

type NotificationHandler struct {
	engine *notify.Engine
	logger *slog.Logger
}

func NewNotificationHandler(engine *notify.Engine, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{engine: engine, logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	notifications, err := h.engine.List(act.UserID, notify.DefaultLimit)
	if err != nil {
		h.logger.Error("list notifications failed", "error", err)
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	writeSuccess(w, http.StatusOK, map[string]any{"notifications": notifications})
}

type notificationIDsRequest struct {
	NotificationIDs []int64 `json:"notificationIds"`
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req notificationIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.engine.MarkRead(act.UserID, req.NotificationIDs); err != nil {
		h.logger.Error("mark notifications read failed", "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Notifications successfully marked as read!"})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req notificationIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.engine.Delete(act.UserID, req.NotificationIDs); err != nil {
		h.logger.Error("delete notifications failed", "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Deleted notifications successfully!"})
}
