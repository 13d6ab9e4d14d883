package reconcile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/evanmoss/sharelist/internal/auth"
	"github.com/evanmoss/sharelist/internal/database"
	"github.com/evanmoss/sharelist/internal/notify"
	"github.com/evanmoss/sharelist/internal/role"
	"github.com/evanmoss/sharelist/internal/store"
)

func setupMemberReconciler(t *testing.T) (*MemberReconciler, *notify.Engine, *store.ListStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	lists := store.NewListStore(db)
	users := store.NewUserStore(db)
	engine := notify.NewEngine(store.NewNotificationStore(db), lists, slog.Default())
	return NewMemberReconciler(lists, engine), engine, lists, users
}

func TestDiffMembers(t *testing.T) {
	old := map[int64]role.Role{
		2: role.Editor,
		3: role.Viewer,
	}
	proposed := []Member{
		{UserID: 2, Role: role.Admin},
		{UserID: 4, Role: role.Viewer},
	}

	delta := DiffMembers(old, proposed)

	if len(delta.Added) != 1 || delta.Added[0].UserID != 4 || delta.Added[0].Role != role.Viewer {
		t.Errorf("added = %+v, want user 4 as viewer", delta.Added)
	}
	if len(delta.Removed) != 1 || delta.Removed[0] != 3 {
		t.Errorf("removed = %+v, want user 3", delta.Removed)
	}
	if len(delta.Changed) != 1 || delta.Changed[0] != (RoleChange{UserID: 2, Old: role.Editor, New: role.Admin}) {
		t.Errorf("changed = %+v, want user 2 editor to admin", delta.Changed)
	}
}

func TestDiffMembersNoChanges(t *testing.T) {
	old := map[int64]role.Role{2: role.Editor}
	delta := DiffMembers(old, []Member{{UserID: 2, Role: role.Editor}})
	if len(delta.Added)+len(delta.Removed)+len(delta.Changed) != 0 {
		t.Errorf("delta = %+v, want empty", delta)
	}
}

func TestReconcileMembers(t *testing.T) {
	recon, engine, lists, users := setupMemberReconciler(t)

	alice, _ := users.Create("alice", "h")
	bob, _ := users.Create("bob", "h")
	carol, _ := users.Create("carol", "h")
	dave, _ := users.Create("dave", "h")

	list, _ := lists.Create("Family List")
	lists.AddMember(list.ID, alice.ID, "owner")
	lists.AddMember(list.ID, bob.ID, "editor")
	lists.AddMember(list.ID, dave.ID, "viewer")

	// Bob gets promoted, carol gets invited, dave gets dropped.
	proposed := []Member{
		{UserID: bob.ID, Role: role.Admin},
		{UserID: carol.ID, Role: role.Viewer},
	}
	actor := auth.Actor{UserID: alice.ID, Username: "alice"}
	if err := recon.Reconcile(actor, list, role.Owner, proposed); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	// Carol got an actionable invite carrying her proposed role; her
	// membership row waits for the acceptance.
	carolNotifs, _ := engine.List(carol.ID, 0)
	if len(carolNotifs) != 1 {
		t.Fatalf("carol notifications = %d, want 1", len(carolNotifs))
	}
	n := carolNotifs[0]
	if !n.Actionable || n.ActionType == nil || *n.ActionType != "join_list_request" {
		t.Errorf("invite = %+v, want actionable join_list_request", n)
	}
	if n.RequestedListID == nil || *n.RequestedListID != list.ID {
		t.Errorf("requested_list_id = %v, want %d", n.RequestedListID, list.ID)
	}
	var payload map[string]string
	json.Unmarshal(n.Data, &payload)
	if payload["user_role"] != "viewer" {
		t.Errorf("user_role = %q, want %q", payload["user_role"], "viewer")
	}
	if r, _ := lists.GetRole(list.ID, carol.ID); r != "" {
		t.Errorf("carol already a member with role %q, want pending invite", r)
	}

	// Bob's role changed in place with a notification naming both roles.
	if r, _ := lists.GetRole(list.ID, bob.ID); r != "admin" {
		t.Errorf("bob role = %q, want admin", r)
	}
	bobNotifs, _ := engine.List(bob.ID, 0)
	if len(bobNotifs) != 1 {
		t.Fatalf("bob notifications = %d, want 1", len(bobNotifs))
	}
	wantMsg := "alice changed your role from 'Editor' to 'Admin' in grocery list 'Family List'."
	if bobNotifs[0].Message != wantMsg {
		t.Errorf("message = %q, want %q", bobNotifs[0].Message, wantMsg)
	}

	// Dave was removed and told about it.
	if r, _ := lists.GetRole(list.ID, dave.ID); r != "" {
		t.Errorf("dave still a member with role %q", r)
	}
	daveNotifs, _ := engine.List(dave.ID, 0)
	if len(daveNotifs) != 1 || daveNotifs[0].Message != "alice removed you from grocery list 'Family List'." {
		t.Errorf("dave notifications = %+v, want removal notice", daveNotifs)
	}

	// The actor heard nothing.
	if aliceNotifs, _ := engine.List(alice.ID, 0); len(aliceNotifs) != 0 {
		t.Errorf("actor received %d notifications, want 0", len(aliceNotifs))
	}
}

func TestReconcileKeepsAnOwner(t *testing.T) {
	recon, engine, lists, users := setupMemberReconciler(t)

	alice, _ := users.Create("alice", "h")
	bob, _ := users.Create("bob", "h")

	list, _ := lists.Create("Shared")
	lists.AddMember(list.ID, alice.ID, "owner")
	lists.AddMember(list.ID, bob.ID, "admin")

	// Bob, an admin, tries to demote the only owner.
	actor := auth.Actor{UserID: bob.ID, Username: "bob"}
	err := recon.Reconcile(actor, list, role.Admin, []Member{{UserID: alice.ID, Role: role.Viewer}})
	if !errors.Is(err, ErrInsufficientMembers) {
		t.Fatalf("error = %v, want ErrInsufficientMembers", err)
	}

	// Nothing was touched.
	if r, _ := lists.GetRole(list.ID, alice.ID); r != "owner" {
		t.Errorf("alice role = %q, want owner", r)
	}
	if notifs, _ := engine.List(alice.ID, 0); len(notifs) != 0 {
		t.Errorf("alice received %d notifications, want 0", len(notifs))
	}

	// The same proposal is fine when it hands ownership to someone else.
	err = recon.Reconcile(actor, list, role.Admin, []Member{{UserID: alice.ID, Role: role.Owner}})
	if err != nil {
		t.Fatalf("reconcile with owner kept: %v", err)
	}

	// An owner actor can always reshape the rest.
	actor = auth.Actor{UserID: alice.ID, Username: "alice"}
	if err := recon.Reconcile(actor, list, role.Owner, nil); err != nil {
		t.Fatalf("owner removing everyone else: %v", err)
	}
	if r, _ := lists.GetRole(list.ID, bob.ID); r != "" {
		t.Errorf("bob role = %q, want removed", r)
	}
}

func TestReconcilePendingOwnerInviteDoesNotCount(t *testing.T) {
	recon, engine, lists, users := setupMemberReconciler(t)

	alice, _ := users.Create("alice", "h")
	bob, _ := users.Create("bob", "h")
	carol, _ := users.Create("carol", "h")

	list, _ := lists.Create("Shared")
	lists.AddMember(list.ID, alice.ID, "owner")
	lists.AddMember(list.ID, bob.ID, "admin")

	// Bob drops the sole owner while inviting carol as owner. Carol has no
	// membership row until she accepts, so this would leave the list
	// ownerless and must be rejected.
	actor := auth.Actor{UserID: bob.ID, Username: "bob"}
	err := recon.Reconcile(actor, list, role.Admin, []Member{{UserID: carol.ID, Role: role.Owner}})
	if !errors.Is(err, ErrInsufficientMembers) {
		t.Fatalf("error = %v, want ErrInsufficientMembers", err)
	}

	if r, _ := lists.GetRole(list.ID, alice.ID); r != "owner" {
		t.Errorf("alice role = %q, want owner", r)
	}
	if notifs, _ := engine.List(carol.ID, 0); len(notifs) != 0 {
		t.Errorf("carol received %d notifications, want 0", len(notifs))
	}

	// Promoting a current member to owner satisfies the invariant, even
	// combined with the same invite.
	err = recon.Reconcile(actor, list, role.Admin, []Member{
		{UserID: alice.ID, Role: role.Owner},
		{UserID: carol.ID, Role: role.Viewer},
	})
	if err != nil {
		t.Fatalf("reconcile with surviving owner: %v", err)
	}
	if notifs, _ := engine.List(carol.ID, 0); len(notifs) != 1 {
		t.Errorf("carol received %d notifications, want 1 invite", len(notifs))
	}
}
