package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/evanmoss/sharelist/internal/model"
)

// ErrItemInList is returned when adding an item that is already on the list.
var ErrItemInList = errors.New("item already exists in the list")

type ItemStore struct {
	db DBTX
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) WithTx(tx *sql.Tx) *ItemStore {
	return &ItemStore{db: tx}
}

// --- Category methods ---

func (s *ItemStore) Categories() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT category_id, name FROM categories ORDER BY category_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategoryByName returns the category with the given name, or nil if it
// does not exist. Categories are fixed reference data.
func (s *ItemStore) CategoryByName(name string) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRow(`SELECT category_id, name FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// --- Item methods ---

func (s *ItemStore) GetItemByID(id int64) (*model.Item, error) {
	var it model.Item
	err := s.db.QueryRow(`SELECT item_id, name, category_id FROM items WHERE item_id = ?`, id).
		Scan(&it.ID, &it.Name, &it.CategoryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// ResolveOrCreate returns the ID of the item with the given name and
// category, inserting it first if it does not exist. Items are unique per
// (name, category).
func (s *ItemStore) ResolveOrCreate(name string, categoryID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT item_id FROM items WHERE name = ? AND category_id = ?`,
		name, categoryID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup item: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO items (name, category_id) VALUES (?, ?)`,
		name, categoryID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ItemMatch pairs an item with its category name, for typeahead.
type ItemMatch struct {
	ID       int64
	Name     string
	Category string
}

// Search returns items whose name contains the query, case-insensitively,
// excluding exact matches (those need no suggestion).
func (s *ItemStore) Search(query string) ([]ItemMatch, error) {
	rows, err := s.db.Query(
		`SELECT i.item_id, i.name, c.name
		 FROM items i
		 JOIN categories c ON i.category_id = c.category_id
		 WHERE LOWER(i.name) LIKE ? AND LOWER(i.name) != ?
		 ORDER BY i.name ASC`,
		"%"+query+"%", query,
	)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	var items []ItemMatch
	for rows.Next() {
		var m ItemMatch
		if err := rows.Scan(&m.ID, &m.Name, &m.Category); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// --- List item methods ---

// ListItems returns the items on a list joined with names and category names.
func (s *ItemStore) ListItems(listID int64) ([]model.ListItem, error) {
	rows, err := s.db.Query(
		`SELECT i.item_id, i.name, c.name AS category, gli.quantity
		 FROM grocery_list_items gli
		 JOIN items i ON gli.item_id = i.item_id
		 JOIN categories c ON i.category_id = c.category_id
		 WHERE gli.list_id = ?
		 ORDER BY i.name ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ListItem
	for rows.Next() {
		var li model.ListItem
		if err := rows.Scan(&li.ItemID, &li.Name, &li.Category, &li.Quantity); err != nil {
			return nil, fmt.Errorf("scan list item: %w", err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// GetListItem returns the list-item row for (listID, itemID), or nil.
func (s *ItemStore) GetListItem(listID, itemID int64) (*model.ListItem, error) {
	var li model.ListItem
	err := s.db.QueryRow(
		`SELECT i.item_id, i.name, c.name, gli.quantity
		 FROM grocery_list_items gli
		 JOIN items i ON gli.item_id = i.item_id
		 JOIN categories c ON i.category_id = c.category_id
		 WHERE gli.list_id = ? AND gli.item_id = ?`,
		listID, itemID,
	).Scan(&li.ItemID, &li.Name, &li.Category, &li.Quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list item: %w", err)
	}
	return &li, nil
}

// AddListItem puts an item on a list. Each item appears at most once per
// list; a duplicate returns ErrItemInList.
func (s *ItemStore) AddListItem(listID, itemID, quantity int64) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT 1 FROM grocery_list_items WHERE list_id = ? AND item_id = ?`,
		listID, itemID,
	).Scan(&exists)
	if err == nil {
		return ErrItemInList
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check list item: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO grocery_list_items (list_id, item_id, quantity) VALUES (?, ?, ?)`,
		listID, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("insert list item: %w", err)
	}
	return nil
}

func (s *ItemStore) UpdateQuantity(listID, itemID, quantity int64) error {
	_, err := s.db.Exec(
		`UPDATE grocery_list_items SET quantity = ? WHERE list_id = ? AND item_id = ?`,
		quantity, listID, itemID,
	)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return nil
}

func (s *ItemStore) RemoveListItem(listID, itemID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM grocery_list_items WHERE list_id = ? AND item_id = ?`,
		listID, itemID,
	)
	if err != nil {
		return fmt.Errorf("remove list item: %w", err)
	}
	return nil
}
