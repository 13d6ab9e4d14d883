// Package reconcile computes the delta between a list's current state and
// a proposed state, then applies the minimal mutations together with their
// notification fan-out. Callers are expected to run each reconcile inside
// one transaction; the row changes and the notifications commit or roll
// back together.
package reconcile

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/evanmoss/sharelist/internal/auth"
	"github.com/evanmoss/sharelist/internal/model"
	"github.com/evanmoss/sharelist/internal/notify"
	"github.com/evanmoss/sharelist/internal/role"
	"github.com/evanmoss/sharelist/internal/store"
)

// ErrInsufficientMembers is returned when a membership change would leave
// the list without an owner.
var ErrInsufficientMembers = errors.New("list must keep at least one owner")

// Member is a proposed (user, role) pair. The actor is never part of the
// proposed set.
type Member struct {
	UserID int64
	Role   role.Role
}

// RoleChange records a member whose role differs between old and proposed.
type RoleChange struct {
	UserID int64
	Old    role.Role
	New    role.Role
}

// MemberDelta is the outcome of diffing old membership against a proposed
// membership.
type MemberDelta struct {
	Added   []Member
	Removed []int64
	Changed []RoleChange
}

// DiffMembers computes added, removed, and role-changed members. Both
// inputs exclude the actor. Roles are already normalized to lowercase by
// role.Parse, so comparison is effectively case-insensitive.
func DiffMembers(old map[int64]role.Role, proposed []Member) MemberDelta {
	var delta MemberDelta

	seen := make(map[int64]bool, len(proposed))
	for _, m := range proposed {
		seen[m.UserID] = true
		oldRole, ok := old[m.UserID]
		if !ok {
			delta.Added = append(delta.Added, m)
			continue
		}
		if oldRole != m.Role {
			delta.Changed = append(delta.Changed, RoleChange{UserID: m.UserID, Old: oldRole, New: m.Role})
		}
	}
	for userID := range old {
		if !seen[userID] {
			delta.Removed = append(delta.Removed, userID)
		}
	}
	return delta
}

// MemberReconciler applies membership deltas with notification fan-out.
type MemberReconciler struct {
	lists  *store.ListStore
	notify *notify.Engine
}

func NewMemberReconciler(lists *store.ListStore, engine *notify.Engine) *MemberReconciler {
	return &MemberReconciler{lists: lists, notify: engine}
}

func (r *MemberReconciler) WithTx(tx *sql.Tx) *MemberReconciler {
	return &MemberReconciler{
		lists:  r.lists.WithTx(tx),
		notify: r.notify.WithTx(tx),
	}
}

// Reconcile drives the list's membership (minus the actor) to the proposed
// set. Added users get an actionable invite carrying their proposed role;
// their membership row is only inserted when they accept. Removed users
// are notified and their row deleted. Role changes are notified and
// applied. A proposal that would leave the list ownerless is rejected
// before anything is touched: unless the actor is an owner, some current
// member must hold the owner role after the change. A pending invite does
// not count — the invitee has no membership row until they accept.
func (r *MemberReconciler) Reconcile(actor auth.Actor, list *model.GroceryList, actorRole role.Role, proposed []Member) error {
	current, err := r.lists.Members(list.ID, actor.UserID)
	if err != nil {
		return err
	}
	old := make(map[int64]role.Role, len(current))
	for _, m := range current {
		parsed, err := role.Parse(m.Role)
		if err != nil {
			return fmt.Errorf("member %d: %w", m.UserID, err)
		}
		old[m.UserID] = parsed
	}

	if actorRole != role.Owner {
		hasOwner := false
		for _, m := range proposed {
			if m.Role != role.Owner {
				continue
			}
			if _, member := old[m.UserID]; member {
				hasOwner = true
				break
			}
		}
		if !hasOwner {
			return ErrInsufficientMembers
		}
	}

	delta := DiffMembers(old, proposed)

	for _, added := range delta.Added {
		_, err := r.notify.Create(
			added.UserID,
			fmt.Sprintf("%s invites you to grocery list '%s'.", actor.Username, list.Name),
			notify.KindInvite,
			notify.Options{
				Actionable:      true,
				ActionType:      notify.ActionJoinListRequest,
				RequestedListID: &list.ID,
				Roles:           []role.Role{added.Role},
			},
		)
		if err != nil {
			return err
		}
	}

	for _, userID := range delta.Removed {
		_, err := r.notify.Create(
			userID,
			fmt.Sprintf("%s removed you from grocery list '%s'.", actor.Username, list.Name),
			notify.KindDelete,
			notify.Options{},
		)
		if err != nil {
			return err
		}
		if err := r.lists.RemoveMember(list.ID, userID); err != nil {
			return err
		}
	}

	for _, change := range delta.Changed {
		_, err := r.notify.Create(
			change.UserID,
			fmt.Sprintf("%s changed your role from '%s' to '%s' in grocery list '%s'.",
				actor.Username, change.Old.Display(), change.New.Display(), list.Name),
			notify.KindEdit,
			notify.Options{},
		)
		if err != nil {
			return err
		}
		if err := r.lists.UpdateMemberRole(list.ID, change.UserID, string(change.New)); err != nil {
			return err
		}
	}

	return nil
}
