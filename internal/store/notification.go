package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/evanmoss/sharelist/internal/model"
)

type NotificationStore struct {
	db DBTX
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) WithTx(tx *sql.Tx) *NotificationStore {
	return &NotificationStore{db: tx}
}

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var actionable, unread int
	var actionType sql.NullString
	var requestedListID sql.NullInt64
	var data sql.NullString

	err := scanner.Scan(
		&n.ID, &n.UserID, &n.Icon, &n.Message, &actionable,
		&actionType, &requestedListID, &unread, &n.CreatedAt, &data,
	)
	if err != nil {
		return nil, err
	}

	n.Actionable = actionable != 0
	n.Unread = unread != 0
	if actionType.Valid {
		n.ActionType = &actionType.String
	}
	if requestedListID.Valid {
		n.RequestedListID = &requestedListID.Int64
	}
	if data.Valid {
		n.Data = []byte(data.String)
	}
	return &n, nil
}

const notificationCols = `id, user_id, icon, message, actionable, action_type, requested_list_id, unread, created_at, data`

// Insert appends a notification row with a server-assigned timestamp and
// unread set, returning its ID.
func (s *NotificationStore) Insert(userID int64, icon, message string, actionable bool, actionType *string, requestedListID *int64, data []byte) (int64, error) {
	var at sql.NullString
	if actionType != nil {
		at = sql.NullString{String: *actionType, Valid: true}
	}
	var listID sql.NullInt64
	if requestedListID != nil {
		listID = sql.NullInt64{Int64: *requestedListID, Valid: true}
	}
	var d sql.NullString
	if data != nil {
		d = sql.NullString{String: string(data), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO notifications (user_id, icon, message, actionable, action_type, requested_list_id, unread, created_at, data)
		 VALUES (?, ?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP, ?)`,
		userID, icon, message, actionable, at, listID, d,
	)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListForUser returns up to limit notifications for a user, unread first,
// then newest first, with the row ID breaking ties deterministically.
func (s *NotificationStore) ListForUser(userID int64, limit int) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM notifications
		 WHERE user_id = ?
		 ORDER BY unread DESC, created_at DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkRead flips unread off for the given IDs, touching only rows owned by
// userID. Unknown or foreign IDs are ignored.
func (s *NotificationStore) MarkRead(userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE notifications SET unread = 0 WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	_, err := s.db.Exec(query, args(userID, ids)...)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// Delete removes the given notifications, touching only rows owned by
// userID. Unknown or foreign IDs are ignored.
func (s *NotificationStore) Delete(userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM notifications WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	_, err := s.db.Exec(query, args(userID, ids)...)
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func args(userID int64, ids []int64) []any {
	out := make([]any, 0, len(ids)+1)
	out = append(out, userID)
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}
