package store

import (
	"database/sql"
	"testing"

	"github.com/evanmoss/sharelist/internal/database"
)

func setupListTestDB(t *testing.T) (*sql.DB, *ListStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, NewListStore(db), NewUserStore(db)
}

func TestListCRUD(t *testing.T) {
	_, ls, _ := setupListTestDB(t)

	list, err := ls.Create("Weekly Groceries")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if list.Name != "Weekly Groceries" {
		t.Errorf("name = %q, want %q", list.Name, "Weekly Groceries")
	}
	if list.CreationDate.IsZero() || list.UpdateDate.IsZero() {
		t.Error("expected creation and update dates to be set")
	}

	got, err := ls.GetByID(list.ID)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if got == nil || got.Name != "Weekly Groceries" {
		t.Errorf("got = %+v, want name %q", got, "Weekly Groceries")
	}

	if err := ls.Rename(list.ID, "Party Supplies"); err != nil {
		t.Fatalf("rename list: %v", err)
	}
	got, _ = ls.GetByID(list.ID)
	if got.Name != "Party Supplies" {
		t.Errorf("name after rename = %q, want %q", got.Name, "Party Supplies")
	}

	if err := ls.Delete(list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	got, err = ls.GetByID(list.ID)
	if err != nil {
		t.Fatalf("get deleted list: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestListTouch(t *testing.T) {
	_, ls, _ := setupListTestDB(t)

	list, err := ls.Create("Touched")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	ok, err := ls.Touch(list.ID)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if !ok {
		t.Error("touch on existing list = false, want true")
	}

	ok, err = ls.Touch(9999)
	if err != nil {
		t.Fatalf("touch missing: %v", err)
	}
	if ok {
		t.Error("touch on missing list = true, want false")
	}
}

func TestListMembership(t *testing.T) {
	_, ls, us := setupListTestDB(t)

	alice, _ := us.Create("alice", "hash")
	bob, _ := us.Create("bob", "hash")
	list, _ := ls.Create("Shared")

	if err := ls.AddMember(list.ID, alice.ID, "owner"); err != nil {
		t.Fatalf("add owner: %v", err)
	}
	if err := ls.AddMember(list.ID, bob.ID, "editor"); err != nil {
		t.Fatalf("add editor: %v", err)
	}

	// Adding an existing member again is a no-op and keeps the old role.
	if err := ls.AddMember(list.ID, bob.ID, "owner"); err != nil {
		t.Fatalf("re-add member: %v", err)
	}
	r, err := ls.GetRole(list.ID, bob.ID)
	if err != nil {
		t.Fatalf("get role: %v", err)
	}
	if r != "editor" {
		t.Errorf("role after re-add = %q, want %q", r, "editor")
	}

	r, _ = ls.GetRole(list.ID, 9999)
	if r != "" {
		t.Errorf("role for non-member = %q, want empty", r)
	}

	members, err := ls.Members(list.ID, alice.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != bob.ID || members[0].Username != "bob" {
		t.Errorf("members excluding alice = %+v, want just bob", members)
	}

	if err := ls.UpdateMemberRole(list.ID, bob.ID, "admin"); err != nil {
		t.Fatalf("update role: %v", err)
	}
	r, _ = ls.GetRole(list.ID, bob.ID)
	if r != "admin" {
		t.Errorf("role after update = %q, want %q", r, "admin")
	}

	if err := ls.RemoveMember(list.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	r, _ = ls.GetRole(list.ID, bob.ID)
	if r != "" {
		t.Errorf("role after removal = %q, want empty", r)
	}
}

func TestListForUser(t *testing.T) {
	_, ls, us := setupListTestDB(t)

	alice, _ := us.Create("alice", "hash")
	bob, _ := us.Create("bob", "hash")

	private, _ := ls.Create("Private")
	ls.AddMember(private.ID, alice.ID, "owner")

	shared, _ := ls.Create("Shared")
	ls.AddMember(shared.ID, alice.ID, "owner")
	ls.AddMember(shared.ID, bob.ID, "viewer")

	summaries, err := ls.ListForUser(alice.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}

	byName := map[string]struct {
		typ    string
		others int
	}{}
	for _, s := range summaries {
		if s.Role != "owner" {
			t.Errorf("role = %q, want %q", s.Role, "owner")
		}
		byName[s.Name] = struct {
			typ    string
			others int
		}{s.Type, len(s.OtherUsers)}
	}
	if byName["Private"].typ != "private" || byName["Private"].others != 0 {
		t.Errorf("private list = %+v, want type private with no others", byName["Private"])
	}
	if byName["Shared"].typ != "shared" || byName["Shared"].others != 1 {
		t.Errorf("shared list = %+v, want type shared with one other", byName["Shared"])
	}

	// Bob only sees the shared list.
	summaries, _ = ls.ListForUser(bob.ID)
	if len(summaries) != 1 || summaries[0].Name != "Shared" || summaries[0].Role != "viewer" {
		t.Errorf("bob's lists = %+v, want just Shared as viewer", summaries)
	}
}

func TestRecentListID(t *testing.T) {
	db, ls, us := setupListTestDB(t)

	alice, _ := us.Create("alice", "hash")

	id, err := ls.RecentListID(alice.ID)
	if err != nil {
		t.Fatalf("recent list: %v", err)
	}
	if id != nil {
		t.Errorf("recent list with no lists = %v, want nil", id)
	}

	older, _ := ls.Create("Older")
	newer, _ := ls.Create("Newer")
	ls.AddMember(older.ID, alice.ID, "owner")
	ls.AddMember(newer.ID, alice.ID, "owner")

	// CURRENT_TIMESTAMP has one-second resolution; force a later update date.
	if _, err := db.Exec(
		`UPDATE grocery_lists SET update_date = datetime('now', '+1 hour') WHERE list_id = ?`,
		newer.ID,
	); err != nil {
		t.Fatalf("bump update date: %v", err)
	}

	id, err = ls.RecentListID(alice.ID)
	if err != nil {
		t.Fatalf("recent list: %v", err)
	}
	if id == nil || *id != newer.ID {
		t.Errorf("recent list = %v, want %d", id, newer.ID)
	}
}

func TestDeleteListCascades(t *testing.T) {
	db, ls, us := setupListTestDB(t)

	alice, _ := us.Create("alice", "hash")
	list, _ := ls.Create("Doomed")
	ls.AddMember(list.ID, alice.ID, "owner")

	if err := ls.Delete(list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}

	var count int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM grocery_list_users WHERE list_id = ?`, list.ID,
	).Scan(&count); err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if count != 0 {
		t.Errorf("membership rows after delete = %d, want 0", count)
	}
}
