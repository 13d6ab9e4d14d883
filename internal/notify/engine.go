// Package notify creates and serves user notifications. Notifications are
// plain rows collected by the client; nothing here pushes.
package notify

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evanmoss/sharelist/internal/model"
	"github.com/evanmoss/sharelist/internal/role"
	"github.com/evanmoss/sharelist/internal/store"
)

// DefaultLimit caps how many notifications are returned at once.
const DefaultLimit = 50

// Kind selects the icon shown for a notification.
type Kind string

const (
	KindInvite Kind = "invite"
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
	KindNone   Kind = "none"
)

func (k Kind) Valid() bool {
	switch k {
	case KindInvite, KindEdit, KindDelete, KindNone:
		return true
	}
	return false
}

// ActionType names the action a recipient can take on an actionable
// notification.
type ActionType string

const ActionJoinListRequest ActionType = "join_list_request"

func (a ActionType) Valid() bool {
	return a == ActionJoinListRequest
}

var (
	ErrInvalidKind       = errors.New("invalid notification kind")
	ErrInvalidActionType = errors.New("invalid actionable notification type")
	ErrRoleCountMismatch = errors.New("role count does not match recipient count")
)

// Options are the optional parts of a notification.
type Options struct {
	Actionable      bool
	ActionType      ActionType
	RequestedListID *int64

	// Roles carries per-recipient invited roles for CreateForUsers; when
	// set it must be the same length as the recipient slice and is zipped
	// positionally into each notification's data payload.
	Roles []role.Role
}

type rolePayload struct {
	UserRole string `json:"user_role"`
}

// Engine creates, lists, and resolves notifications. Bind it onto the
// transaction of the mutation it accompanies with WithTx.
type Engine struct {
	notifications *store.NotificationStore
	lists         *store.ListStore
	logger        *slog.Logger
}

func NewEngine(notifications *store.NotificationStore, lists *store.ListStore, logger *slog.Logger) *Engine {
	return &Engine{notifications: notifications, lists: lists, logger: logger}
}

func (e *Engine) WithTx(tx *sql.Tx) *Engine {
	return &Engine{
		notifications: e.notifications.WithTx(tx),
		lists:         e.lists.WithTx(tx),
		logger:        e.logger,
	}
}

// Create appends one notification for userID and returns its ID.
func (e *Engine) Create(userID int64, message string, kind Kind, opts Options) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	var actionType *string
	if opts.Actionable {
		if !opts.ActionType.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidActionType, opts.ActionType)
		}
		at := string(opts.ActionType)
		actionType = &at
	}

	var data []byte
	if len(opts.Roles) > 0 {
		if len(opts.Roles) != 1 {
			return 0, ErrRoleCountMismatch
		}
		var err error
		data, err = json.Marshal(rolePayload{UserRole: string(opts.Roles[0])})
		if err != nil {
			return 0, fmt.Errorf("marshal payload: %w", err)
		}
	}

	id, err := e.notifications.Insert(userID, string(kind), message, opts.Actionable, actionType, opts.RequestedListID, data)
	if err != nil {
		return 0, err
	}
	e.logger.Info("notification created", "user_id", userID, "kind", string(kind))
	return id, nil
}

// CreateForUsers creates one notification per recipient, in input order.
// When opts.Roles is set it must parallel userIDs; each recipient gets
// their own role in the payload.
func (e *Engine) CreateForUsers(userIDs []int64, message string, kind Kind, opts Options) ([]int64, error) {
	if len(opts.Roles) > 0 && len(opts.Roles) != len(userIDs) {
		return nil, ErrRoleCountMismatch
	}

	ids := make([]int64, 0, len(userIDs))
	for i, userID := range userIDs {
		perUser := opts
		if len(opts.Roles) > 0 {
			perUser.Roles = opts.Roles[i : i+1]
		}
		id, err := e.Create(userID, message, kind, perUser)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateForListMembers notifies every member of a list except
// excludeUserID, the actor. The actor never notifies themselves.
func (e *Engine) CreateForListMembers(listID, excludeUserID int64, message string, kind Kind, opts Options) ([]int64, error) {
	members, err := e.lists.Members(listID, excludeUserID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	return e.CreateForUsers(userIDs, message, kind, opts)
}

// List returns a user's notifications, unread first then newest first.
// A non-positive limit means DefaultLimit.
func (e *Engine) List(userID int64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return e.notifications.ListForUser(userID, limit)
}

// MarkRead flips the given notifications to read. Only the owner's rows
// are touched; marking an already-read or unknown ID is a no-op.
func (e *Engine) MarkRead(userID int64, ids []int64) error {
	return e.notifications.MarkRead(userID, ids)
}

// Delete removes the given notifications, again only the owner's rows.
func (e *Engine) Delete(userID int64, ids []int64) error {
	return e.notifications.Delete(userID, ids)
}
