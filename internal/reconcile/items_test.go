package reconcile

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/evanmoss/sharelist/internal/auth"
	"github.com/evanmoss/sharelist/internal/database"
	"github.com/evanmoss/sharelist/internal/notify"
	"github.com/evanmoss/sharelist/internal/store"
)

func setupItemReconciler(t *testing.T) (*ItemReconciler, *notify.Engine, *store.ListStore, *store.ItemStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	lists := store.NewListStore(db)
	items := store.NewItemStore(db)
	users := store.NewUserStore(db)
	engine := notify.NewEngine(store.NewNotificationStore(db), lists, slog.Default())
	return NewItemReconciler(lists, items, engine), engine, lists, items, users
}

func TestDiffItem(t *testing.T) {
	base := ItemFields{ID: 1, Name: "Milk", Category: "dairy", Quantity: 1}

	_, err := DiffItem(base, base)
	if !errors.Is(err, ErrNoChanges) {
		t.Errorf("identical items error = %v, want ErrNoChanges", err)
	}

	changedID := base
	changedID.ID = 2
	_, err = DiffItem(base, changedID)
	if !errors.Is(err, ErrImmutableID) {
		t.Errorf("changed id error = %v, want ErrImmutableID", err)
	}

	// A zero ID on the new side means "unassigned", not a change.
	unassigned := base
	unassigned.ID = 0
	unassigned.Quantity = 3
	diff, err := DiffItem(base, unassigned)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if diff.Name || diff.Category || !diff.Quantity {
		t.Errorf("diff = %+v, want quantity only", diff)
	}

	renamed := base
	renamed.Name = "Oat Milk"
	diff, _ = DiffItem(base, renamed)
	if !diff.Name || diff.Category || diff.Quantity {
		t.Errorf("diff = %+v, want name only", diff)
	}
}

func TestAddItem(t *testing.T) {
	recon, engine, lists, items, users := setupItemReconciler(t)

	alice, _ := users.Create("alice", "h")
	bob, _ := users.Create("bob", "h")
	list, _ := lists.Create("Groceries")
	lists.AddMember(list.ID, alice.ID, "owner")
	lists.AddMember(list.ID, bob.ID, "viewer")

	actor := auth.Actor{UserID: alice.ID, Username: "alice"}
	itemID, err := recon.Add(actor, list.ID, ItemFields{Name: "Milk", Category: "dairy", Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if itemID == 0 {
		t.Fatal("expected a non-zero item id")
	}

	li, _ := items.GetListItem(list.ID, itemID)
	if li == nil || li.Quantity != 2 {
		t.Errorf("list item = %+v, want Milk with quantity 2", li)
	}

	notifs, _ := engine.List(bob.ID, 0)
	if len(notifs) != 1 || notifs[0].Message != "alice added 'Milk' to list 'Groceries'." {
		t.Errorf("bob notifications = %+v, want add notice", notifs)
	}
	if notifs[0].Icon != "none" {
		t.Errorf("icon = %q, want %q", notifs[0].Icon, "none")
	}

	// Re-adding an existing item on the list is rejected.
	_, err = recon.Add(actor, list.ID, ItemFields{Name: "Milk", Category: "dairy", Quantity: 1})
	if !errors.Is(err, store.ErrItemInList) {
		t.Errorf("duplicate add error = %v, want ErrItemInList", err)
	}

	// An unknown category never creates anything.
	_, err = recon.Add(actor, list.ID, ItemFields{Name: "Widget", Category: "electronics"})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("unknown category error = %v, want ErrUnknownCategory", err)
	}

	// A missing list fails before any writes.
	_, err = recon.Add(actor, 9999, ItemFields{Name: "Milk", Category: "dairy"})
	if !errors.Is(err, ErrListNotFound) {
		t.Errorf("missing list error = %v, want ErrListNotFound", err)
	}
}

func TestAddItemReusesExistingRow(t *testing.T) {
	recon, _, lists, items, users := setupItemReconciler(t)

	alice, _ := users.Create("alice", "h")
	listA, _ := lists.Create("List A")
	listB, _ := lists.Create("List B")
	lists.AddMember(listA.ID, alice.ID, "owner")
	lists.AddMember(listB.ID, alice.ID, "owner")

	dairy, _ := items.CategoryByName("dairy")
	existing, _ := items.ResolveOrCreate("Milk", dairy.ID)

	actor := auth.Actor{UserID: alice.ID, Username: "alice"}
	gotA, err := recon.Add(actor, listA.ID, ItemFields{Name: "Milk", Category: "dairy"})
	if err != nil {
		t.Fatalf("add to list A: %v", err)
	}
	gotB, err := recon.Add(actor, listB.ID, ItemFields{Name: "Milk", Category: "dairy"})
	if err != nil {
		t.Fatalf("add to list B: %v", err)
	}
	if gotA != existing || gotB != existing {
		t.Errorf("item ids = %d, %d, want both %d (shared row)", gotA, gotB, existing)
	}
}

func TestEditItemQuantityOnly(t *testing.T) {
	recon, engine, lists, items, users := setupItemReconciler(t)

	alice, _ := users.Create("alice", "h")
	bob, _ := users.Create("bob", "h")
	list, _ := lists.Create("Groceries")
	lists.AddMember(list.ID, alice.ID, "owner")
	lists.AddMember(list.ID, bob.ID, "viewer")

	actor := auth.Actor{UserID: alice.ID, Username: "alice"}
	itemID, _ := recon.Add(actor, list.ID, ItemFields{Name: "Milk", Category: "dairy", Quantity: 1})

	oldItem := ItemFields{ID: itemID, Name: "Milk", Category: "dairy", Quantity: 1}
	newItem := oldItem
	newItem.Quantity = 4
	if err := recon.Edit(actor, list.ID, oldItem, newItem); err != nil {
		t.Fatalf("edit: %v", err)
	}

	// Quantity changed in place: same item row, no new items created.
	li, _ := items.GetListItem(list.ID, itemID)
	if li == nil || li.Quantity != 4 {
		t.Errorf("list item = %+v, want quantity 4", li)
	}
	matches, _ := items.Search("milk")
	if len(matches) != 0 {
		t.Errorf("unexpected extra item rows: %+v", matches)
	}

	notifs, _ := engine.List(bob.ID, 0)
	if len(notifs) != 2 {
		t.Fatalf("bob notifications = %d, want 2", len(notifs))
	}
	want := "alice updated the quantity of 'Milk' to 4."
	if notifs[0].Message != want {
		t.Errorf("message = %q, want %q", notifs[0].Message, want)
	}

	// Identical old and new is rejected before touching the list.
	if err := recon.Edit(actor, list.ID, newItem, newItem); !errors.Is(err, ErrNoChanges) {
		t.Errorf("error = %v, want ErrNoChanges", err)
	}
}

func TestEditItemIdentityChange(t *testing.T) {
	recon, engine, lists, items, users := setupItemReconciler(t)

	alice, _ := users.Create("alice", "h")
	bob, _ := users.Create("bob", "h")
	list, _ := lists.Create("Groceries")
	lists.AddMember(list.ID, alice.ID, "owner")
	lists.AddMember(list.ID, bob.ID, "viewer")

	actor := auth.Actor{UserID: alice.ID, Username: "alice"}
	oldID, _ := recon.Add(actor, list.ID, ItemFields{Name: "Milk", Category: "dairy", Quantity: 2})

	oldItem := ItemFields{ID: oldID, Name: "Milk", Category: "dairy", Quantity: 2}
	newItem := ItemFields{Name: "Oat Milk", Category: "dairy", Quantity: 2}
	if err := recon.Edit(actor, list.ID, oldItem, newItem); err != nil {
		t.Fatalf("edit: %v", err)
	}

	// The list now points at a different item row; the old pairing is gone.
	if li, _ := items.GetListItem(list.ID, oldID); li != nil {
		t.Errorf("old pairing still present: %+v", li)
	}
	onList, _ := items.ListItems(list.ID)
	if len(onList) != 1 || onList[0].Name != "Oat Milk" || onList[0].Quantity != 2 {
		t.Errorf("list items = %+v, want just Oat Milk x2", onList)
	}

	notifs, _ := engine.List(bob.ID, 0)
	want := "alice updated the name of 'Milk' to 'Oat Milk' in list 'Groceries'."
	if notifs[0].Message != want {
		t.Errorf("message = %q, want %q", notifs[0].Message, want)
	}

	// Changing category to something unknown fails.
	current := ItemFields{ID: onList[0].ItemID, Name: "Oat Milk", Category: "dairy", Quantity: 2}
	changed := current
	changed.Category = "electronics"
	if err := recon.Edit(actor, list.ID, current, changed); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("error = %v, want ErrUnknownCategory", err)
	}
}

func TestDeleteItem(t *testing.T) {
	recon, engine, lists, items, users := setupItemReconciler(t)

	alice, _ := users.Create("alice", "h")
	bob, _ := users.Create("bob", "h")
	list, _ := lists.Create("Groceries")
	lists.AddMember(list.ID, alice.ID, "owner")
	lists.AddMember(list.ID, bob.ID, "viewer")

	actor := auth.Actor{UserID: alice.ID, Username: "alice"}
	itemID, _ := recon.Add(actor, list.ID, ItemFields{Name: "Milk", Category: "dairy", Quantity: 1})

	if err := recon.Delete(actor, list.ID, itemID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if li, _ := items.GetListItem(list.ID, itemID); li != nil {
		t.Errorf("list item still present: %+v", li)
	}

	notifs, _ := engine.List(bob.ID, 0)
	if len(notifs) != 2 {
		t.Fatalf("bob notifications = %d, want 2", len(notifs))
	}
	want := "alice deleted 'Milk' from list 'Groceries'."
	if notifs[0].Message != want {
		t.Errorf("message = %q, want %q", notifs[0].Message, want)
	}
	if notifs[0].Icon != "delete" {
		t.Errorf("icon = %q, want %q", notifs[0].Icon, "delete")
	}

	if err := recon.Delete(actor, 9999, itemID); !errors.Is(err, ErrListNotFound) {
		t.Errorf("missing list error = %v, want ErrListNotFound", err)
	}
}
