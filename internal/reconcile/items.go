package reconcile

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/evanmoss/sharelist/internal/auth"
	"github.com/evanmoss/sharelist/internal/notify"
	"github.com/evanmoss/sharelist/internal/store"
)

var (
	// ErrNoChanges rejects an edit where old and new are identical.
	ErrNoChanges = errors.New("no changes detected")
	// ErrImmutableID rejects an edit that tries to change the item ID.
	ErrImmutableID = errors.New("item id cannot change")
	// ErrUnknownCategory rejects an item whose category is not in the
	// reference table.
	ErrUnknownCategory = errors.New("category does not exist")
	// ErrListNotFound means the update-date bump matched no list; it gates
	// every other write.
	ErrListNotFound = errors.New("list not found")
)

// ItemFields is the wire shape of an item on a list: the fields a
// collaborator can see and edit.
type ItemFields struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
}

// ItemDiff marks which editable fields differ between old and new.
type ItemDiff struct {
	Name     bool
	Category bool
	Quantity bool
}

func (d ItemDiff) identityChanged() bool {
	return d.Name || d.Category
}

// DiffItem compares old and new over the fixed editable field set.
func DiffItem(oldItem, newItem ItemFields) (ItemDiff, error) {
	if oldItem.ID != newItem.ID && newItem.ID != 0 {
		return ItemDiff{}, ErrImmutableID
	}
	diff := ItemDiff{
		Name:     oldItem.Name != newItem.Name,
		Category: oldItem.Category != newItem.Category,
		Quantity: oldItem.Quantity != newItem.Quantity,
	}
	if !diff.Name && !diff.Category && !diff.Quantity {
		return ItemDiff{}, ErrNoChanges
	}
	return diff, nil
}

// ItemReconciler applies item additions, edits, and removals on a list,
// each gated by the list's update-date bump and followed by notification
// fan-out to the other members.
type ItemReconciler struct {
	lists  *store.ListStore
	items  *store.ItemStore
	notify *notify.Engine
}

func NewItemReconciler(lists *store.ListStore, items *store.ItemStore, engine *notify.Engine) *ItemReconciler {
	return &ItemReconciler{lists: lists, items: items, notify: engine}
}

func (r *ItemReconciler) WithTx(tx *sql.Tx) *ItemReconciler {
	return &ItemReconciler{
		lists:  r.lists.WithTx(tx),
		items:  r.items.WithTx(tx),
		notify: r.notify.WithTx(tx),
	}
}

// touch bumps the list's update date, the gate for every content write.
func (r *ItemReconciler) touch(listID int64) (string, error) {
	list, err := r.lists.GetByID(listID)
	if err != nil {
		return "", err
	}
	if list == nil {
		return "", ErrListNotFound
	}
	ok, err := r.lists.Touch(listID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrListNotFound
	}
	return list.Name, nil
}

// Add puts an item on the list, resolving or creating the item row by
// (name, category), and notifies the other members. Returns the item ID.
func (r *ItemReconciler) Add(actor auth.Actor, listID int64, item ItemFields) (int64, error) {
	listName, err := r.touch(listID)
	if err != nil {
		return 0, err
	}

	category, err := r.items.CategoryByName(item.Category)
	if err != nil {
		return 0, err
	}
	if category == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, item.Category)
	}

	itemID := item.ID
	if itemID == 0 {
		itemID, err = r.items.ResolveOrCreate(item.Name, category.ID)
		if err != nil {
			return 0, err
		}
	}

	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if err := r.items.AddListItem(listID, itemID, quantity); err != nil {
		return 0, err
	}

	_, err = r.notify.CreateForListMembers(
		listID, actor.UserID,
		fmt.Sprintf("%s added '%s' to list '%s'.", actor.Username, item.Name, listName),
		notify.KindNone,
		notify.Options{},
	)
	if err != nil {
		return 0, err
	}
	return itemID, nil
}

// Edit applies the minimal mutation for an item change. A quantity-only
// change updates the existing list-item row; a name or category change
// re-points the list at a (possibly new) item row. The notification text
// describes exactly what changed.
func (r *ItemReconciler) Edit(actor auth.Actor, listID int64, oldItem, newItem ItemFields) error {
	diff, err := DiffItem(oldItem, newItem)
	if err != nil {
		return err
	}

	listName, err := r.touch(listID)
	if err != nil {
		return err
	}

	if !diff.identityChanged() {
		// Quantity is the only difference; update in place.
		if err := r.items.UpdateQuantity(listID, oldItem.ID, newItem.Quantity); err != nil {
			return err
		}
		_, err = r.notify.CreateForListMembers(
			listID, actor.UserID,
			fmt.Sprintf("%s updated the quantity of '%s' to %d.", actor.Username, oldItem.Name, newItem.Quantity),
			notify.KindEdit,
			notify.Options{},
		)
		return err
	}

	category, err := r.items.CategoryByName(newItem.Category)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, newItem.Category)
	}

	newItemID, err := r.items.ResolveOrCreate(newItem.Name, category.ID)
	if err != nil {
		return err
	}

	quantity := newItem.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if err := r.items.RemoveListItem(listID, oldItem.ID); err != nil {
		return err
	}
	if err := r.items.AddListItem(listID, newItemID, quantity); err != nil {
		return err
	}

	var changeDesc string
	switch {
	case diff.Name && diff.Category:
		changeDesc = fmt.Sprintf("name of '%s' to '%s' and category to '%s'", oldItem.Name, newItem.Name, newItem.Category)
	case diff.Category:
		changeDesc = fmt.Sprintf("category of '%s' to '%s'", oldItem.Name, newItem.Category)
	default:
		changeDesc = fmt.Sprintf("name of '%s' to '%s'", oldItem.Name, newItem.Name)
	}

	_, err = r.notify.CreateForListMembers(
		listID, actor.UserID,
		fmt.Sprintf("%s updated the %s in list '%s'.", actor.Username, changeDesc, listName),
		notify.KindEdit,
		notify.Options{},
	)
	return err
}

// Delete removes an item from the list and notifies the other members with
// the removed item's name.
func (r *ItemReconciler) Delete(actor auth.Actor, listID, itemID int64) error {
	listName, err := r.touch(listID)
	if err != nil {
		return err
	}

	item, err := r.items.GetItemByID(itemID)
	if err != nil {
		return err
	}
	itemName := ""
	if item != nil {
		itemName = item.Name
	}

	if err := r.items.RemoveListItem(listID, itemID); err != nil {
		return err
	}

	_, err = r.notify.CreateForListMembers(
		listID, actor.UserID,
		fmt.Sprintf("%s deleted '%s' from list '%s'.", actor.Username, itemName, listName),
		notify.KindDelete,
		notify.Options{},
	)
	return err
}
