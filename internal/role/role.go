package role

import (
	"errors"
	"strings"
)

// Role is a member's permission level on a list. Stored lowercase;
// Display returns the capitalized form shown to users.
type Role string

const (
	Owner     Role = "owner"
	Admin     Role = "admin"
	Editor    Role = "editor"
	Viewer    Role = "viewer"
	Temporary Role = "temporary"
)

var ErrInvalidRole = errors.New("invalid role")

// Action is something a member can attempt on a list.
type Action int

const (
	ActionView Action = iota
	ActionEditItems
	ActionManageMembers
	ActionDeleteList
)

// Parse converts a role string to a Role, case-insensitively.
func Parse(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case Owner:
		return Owner, nil
	case Admin:
		return Admin, nil
	case Editor:
		return Editor, nil
	case Viewer:
		return Viewer, nil
	case Temporary:
		return Temporary, nil
	}
	return "", ErrInvalidRole
}

// Display returns the capitalized form, e.g. "Owner".
func (r Role) Display() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Allows reports whether the role grants the given action.
// Temporary members are view-only.
func (r Role) Allows(a Action) bool {
	switch a {
	case ActionView:
		return true
	case ActionEditItems:
		return r == Owner || r == Admin || r == Editor
	case ActionManageMembers, ActionDeleteList:
		return r == Owner || r == Admin
	}
	return false
}
