package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanmoss/sharelist/internal/model"
	"github.com/evanmoss/sharelist/internal/notify"
	"github.com/evanmoss/sharelist/internal/reconcile"
	"github.com/evanmoss/sharelist/internal/role"
	"github.com/evanmoss/sharelist/internal/store"
)

type ListHandler struct {
	db      *sql.DB
	lists   *store.ListStore
	users   *store.UserStore
	items   *store.ItemStore
	engine  *notify.Engine
	members *reconcile.MemberReconciler
	logger  *slog.Logger
}

func NewListHandler(db *sql.DB, lists *store.ListStore, users *store.UserStore, items *store.ItemStore, engine *notify.Engine, members *reconcile.MemberReconciler, logger *slog.Logger) *ListHandler {
	return &ListHandler{db: db, lists: lists, users: users, items: items, engine: engine, members: members, logger: logger}
}

// requireListRole loads the user's role on the list and checks it grants
// the action. Writes the 403 itself and returns ok=false when it doesn't.
func requireListRole(w http.ResponseWriter, lists *store.ListStore, listID, userID int64, action role.Action) (role.Role, bool) {
	raw, err := lists.GetRole(listID, userID)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	if raw == "" {
		writeFail(w, http.StatusForbidden, "User does not have access to this list")
		return "", false
	}
	r, err := role.Parse(raw)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	if !r.Allows(action) {
		writeFail(w, http.StatusForbidden, "User does not have permission for this action")
		return "", false
	}
	return r, true
}

type otherUser struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

func parseMembers(others []otherUser) ([]reconcile.Member, error) {
	members := make([]reconcile.Member, 0, len(others))
	for _, u := range others {
		r, err := role.Parse(u.Role)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", u.UserID, err)
		}
		members = append(members, reconcile.Member{UserID: u.UserID, Role: r})
	}
	return members, nil
}

// Dashboard returns every list the user belongs to, with roles in display
// form and the other members of each list.
func (h *ListHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	summaries, err := h.lists.ListForUser(act.UserID)
	if err != nil {
		h.logger.Error("list dashboard failed", "error", err)
		writeError(w, err)
		return
	}

	for i := range summaries {
		summaries[i].Role = displayRole(summaries[i].Role)
		for j := range summaries[i].OtherUsers {
			summaries[i].OtherUsers[j].Role = displayRole(summaries[i].OtherUsers[j].Role)
		}
	}
	if summaries == nil {
		summaries = []model.ListSummary{}
	}

	writeSuccess(w, http.StatusOK, map[string]any{"lists": summaries})
}

func displayRole(raw string) string {
	r, err := role.Parse(raw)
	if err != nil {
		return raw
	}
	return r.Display()
}

type createListRequest struct {
	ListName   string      `json:"listName"`
	OtherUsers []otherUser `json:"otherUsers"`
}

// Create makes a new list with the actor as owner and fans out invite
// notifications to the proposed collaborators, all in one transaction.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.ListName) == "" {
		req.ListName = "New List"
	}

	invited, err := parseMembers(req.OtherUsers)
	if err != nil {
		writeError(w, err)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	lists := h.lists.WithTx(tx)
	engine := h.engine.WithTx(tx)

	list, err := lists.Create(req.ListName)
	if err != nil {
		h.logger.Error("create list failed", "error", err)
		writeError(w, err)
		return
	}
	if err := lists.AddMember(list.ID, act.UserID, string(role.Owner)); err != nil {
		h.logger.Error("add owner failed", "error", err)
		writeError(w, err)
		return
	}

	userIDs := make([]int64, 0, len(invited))
	roles := make([]role.Role, 0, len(invited))
	for _, m := range invited {
		userIDs = append(userIDs, m.UserID)
		roles = append(roles, m.Role)
	}
	_, err = engine.CreateForUsers(
		userIDs,
		fmt.Sprintf("%s invites you to grocery list '%s'.", act.Username, list.Name),
		notify.KindInvite,
		notify.Options{
			Actionable:      true,
			ActionType:      notify.ActionJoinListRequest,
			RequestedListID: &list.ID,
			Roles:           roles,
		},
	)
	if err != nil {
		h.logger.Error("invite notifications failed", "error", err)
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"listId": list.ID})
}

type deleteListRequest struct {
	ListID int64 `json:"listId"`
}

// Delete removes a list after notifying its other members. Owners and
// admins only.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req deleteListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ListID == 0 {
		writeFail(w, http.StatusBadRequest, "listId parameter is required")
		return
	}

	if _, ok := requireListRole(w, h.lists, req.ListID, act.UserID, role.ActionDeleteList); !ok {
		return
	}

	list, err := h.lists.GetByID(req.ListID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		writeError(w, reconcile.ErrListNotFound)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	engine := h.engine.WithTx(tx)
	_, err = engine.CreateForListMembers(
		list.ID, act.UserID,
		fmt.Sprintf("%s has deleted grocery list %s.", act.Username, list.Name),
		notify.KindDelete,
		notify.Options{},
	)
	if err != nil {
		h.logger.Error("delete notifications failed", "error", err)
		writeError(w, err)
		return
	}
	if err := h.lists.WithTx(tx).Delete(list.ID); err != nil {
		h.logger.Error("delete list failed", "error", err)
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

type editListRequest struct {
	ListID     int64       `json:"listId"`
	ListName   string      `json:"listName"`
	OtherUsers []otherUser `json:"otherUsers"`
}

// Edit renames a list and reconciles its membership to the proposed set.
// Owners and admins only.
func (h *ListHandler) Edit(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req editListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ListID == 0 || strings.TrimSpace(req.ListName) == "" {
		writeFail(w, http.StatusBadRequest, "Missing list ID or name")
		return
	}

	actorRole, ok := requireListRole(w, h.lists, req.ListID, act.UserID, role.ActionManageMembers)
	if !ok {
		return
	}

	proposed, err := parseMembers(req.OtherUsers)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.GetByID(req.ListID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		writeError(w, reconcile.ErrListNotFound)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	lists := h.lists.WithTx(tx)
	engine := h.engine.WithTx(tx)

	if list.Name != req.ListName {
		if err := lists.Rename(list.ID, req.ListName); err != nil {
			h.logger.Error("rename list failed", "error", err)
			writeError(w, err)
			return
		}
		_, err = engine.CreateForListMembers(
			list.ID, act.UserID,
			fmt.Sprintf("%s changed the name of grocery list from '%s' to '%s'.", act.Username, list.Name, req.ListName),
			notify.KindEdit,
			notify.Options{},
		)
		if err != nil {
			h.logger.Error("rename notifications failed", "error", err)
			writeError(w, err)
			return
		}
	}

	renamed := *list
	renamed.Name = req.ListName
	if err := h.members.WithTx(tx).Reconcile(act, &renamed, actorRole, proposed); err != nil {
		h.logger.Error("membership reconcile failed", "list_id", list.ID, "error", err)
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Successfully updated list!"})
}

// GetListData returns a list's items, name, last-modified time, and the
// other members, plus the caller's own role in display form.
func (h *ListHandler) GetListData(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	listID, err := strconv.ParseInt(r.URL.Query().Get("list_id"), 10, 64)
	if err != nil || listID == 0 {
		writeFail(w, http.StatusBadRequest, "list_id parameter is required")
		return
	}

	userRole, ok := requireListRole(w, h.lists, listID, act.UserID, role.ActionView)
	if !ok {
		return
	}

	list, err := h.lists.GetByID(listID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		writeError(w, reconcile.ErrListNotFound)
		return
	}

	items, err := h.items.ListItems(listID)
	if err != nil {
		h.logger.Error("list items failed", "error", err)
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.ListItem{}
	}

	others, err := h.lists.Members(listID, act.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	for i := range others {
		others[i].Role = displayRole(others[i].Role)
	}
	if others == nil {
		others = []model.ListMember{}
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"userRole":   userRole.Display(),
		"items":      items,
		"listName":   list.Name,
		"modified":   list.UpdateDate,
		"otherUsers": others,
	})
}

type manageUsersRequest struct {
	CurrentListID int64       `json:"currentListId"`
	OtherUsers    []otherUser `json:"otherUsers"`
}

// ManageUsers reconciles the list's membership to the proposed set.
// Owners and admins only.
func (h *ListHandler) ManageUsers(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req manageUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CurrentListID == 0 {
		writeFail(w, http.StatusBadRequest, "List ID is required.")
		return
	}

	actorRole, ok := requireListRole(w, h.lists, req.CurrentListID, act.UserID, role.ActionManageMembers)
	if !ok {
		return
	}

	proposed, err := parseMembers(req.OtherUsers)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.GetByID(req.CurrentListID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		writeError(w, reconcile.ErrListNotFound)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	if err := h.members.WithTx(tx).Reconcile(act, list, actorRole, proposed); err != nil {
		h.logger.Error("membership reconcile failed", "list_id", list.ID, "error", err)
		writeError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Successfully updated users!"})
}

type acceptInviteRequest struct {
	CurrentListID int64  `json:"currentListId"`
	Data          string `json:"data"`
}

type invitePayload struct {
	UserRole string `json:"user_role"`
}

// AcceptInvite inserts the membership row for the accepting user with the
// role carried in the invite notification's payload. Accepting twice is a
// no-op.
func (h *ListHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	var req acceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CurrentListID == 0 {
		writeFail(w, http.StatusBadRequest, "List ID is required.")
		return
	}

	memberRole := role.Viewer
	if req.Data != "" {
		var payload invitePayload
		if err := json.Unmarshal([]byte(req.Data), &payload); err == nil && payload.UserRole != "" {
			parsed, err := role.Parse(payload.UserRole)
			if err != nil {
				writeError(w, err)
				return
			}
			memberRole = parsed
		}
	}

	if err := h.lists.AddMember(req.CurrentListID, act.UserID, string(memberRole)); err != nil {
		h.logger.Error("accept invite failed", "list_id", req.CurrentListID, "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully added user %s to list with id %d", act.Username, req.CurrentListID),
	})
}

// UserSuggestions returns usernames starting with the query, excluding the
// caller, each paired with the default invite role.
func (h *ListHandler) UserSuggestions(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "User not logged in")
		return
	}

	query := strings.ToLower(r.URL.Query().Get("query"))
	users, err := h.users.SearchByPrefix(query, act.Username)
	if err != nil {
		h.logger.Error("user suggestions failed", "error", err)
		writeError(w, err)
		return
	}

	suggestions := make([]otherUser, 0, len(users))
	for _, u := range users {
		suggestions = append(suggestions, otherUser{
			UserID:   u.ID,
			Username: u.Username,
			Role:     role.Viewer.Display(),
		})
	}

	writeSuccess(w, http.StatusOK, map[string]any{"users": suggestions})
}
