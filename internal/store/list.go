package store

import (
	"database/sql"
	"fmt"

	"github.com/evanmoss/sharelist/internal/model"
)

type ListStore struct {
	db DBTX
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

func (s *ListStore) WithTx(tx *sql.Tx) *ListStore {
	return &ListStore{db: tx}
}

func scanList(scanner interface{ Scan(...any) error }) (*model.GroceryList, error) {
	var l model.GroceryList
	err := scanner.Scan(&l.ID, &l.Name, &l.CreationDate, &l.UpdateDate)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `list_id, name, creation_date, update_date`

func (s *ListStore) Create(name string) (*model.GroceryList, error) {
	result, err := s.db.Exec(
		`INSERT INTO grocery_lists (name, creation_date, update_date) VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ListStore) GetByID(id int64) (*model.GroceryList, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM grocery_lists WHERE list_id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// Rename sets a new name and bumps the update date in one statement.
func (s *ListStore) Rename(id int64, name string) error {
	_, err := s.db.Exec(
		`UPDATE grocery_lists SET name = ?, update_date = CURRENT_TIMESTAMP WHERE list_id = ?`,
		name, id,
	)
	if err != nil {
		return fmt.Errorf("rename list: %w", err)
	}
	return nil
}

// Touch bumps the list's update date. It returns false when no such list
// exists; content mutations treat that as their gate.
func (s *ListStore) Touch(id int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE grocery_lists SET update_date = CURRENT_TIMESTAMP WHERE list_id = ?`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("touch list: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes the list; memberships and list items cascade.
func (s *ListStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_lists WHERE list_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// ListForUser returns every list the user belongs to, most recently
// updated first, with the user's role and the other members of each list.
func (s *ListStore) ListForUser(userID int64) ([]model.ListSummary, error) {
	rows, err := s.db.Query(
		`SELECT gl.list_id, gl.name, glu.role, gl.update_date
		 FROM grocery_lists gl
		 JOIN grocery_list_users glu ON gl.list_id = glu.list_id
		 WHERE glu.user_id = ?
		 ORDER BY gl.update_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var summaries []model.ListSummary
	for rows.Next() {
		var ls model.ListSummary
		if err := rows.Scan(&ls.ID, &ls.Name, &ls.Role, &ls.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan list summary: %w", err)
		}
		summaries = append(summaries, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range summaries {
		others, err := s.Members(summaries[i].ID, userID)
		if err != nil {
			return nil, err
		}
		summaries[i].OtherUsers = others
		if len(others) > 0 {
			summaries[i].Type = "shared"
		} else {
			summaries[i].Type = "private"
		}
	}
	return summaries, nil
}

// RecentListID returns the ID of the user's most recently updated list,
// or nil if they have none.
func (s *ListStore) RecentListID(userID int64) (*int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT gl.list_id
		 FROM grocery_lists gl
		 JOIN grocery_list_users glu ON gl.list_id = glu.list_id
		 WHERE glu.user_id = ?
		 ORDER BY gl.update_date DESC
		 LIMIT 1`,
		userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recent list: %w", err)
	}
	return &id, nil
}

// --- Membership methods ---

// GetRole returns the user's role on the list, or "" if they are not a member.
func (s *ListStore) GetRole(listID, userID int64) (string, error) {
	var r string
	err := s.db.QueryRow(
		`SELECT role FROM grocery_list_users WHERE list_id = ? AND user_id = ?`,
		listID, userID,
	).Scan(&r)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get role: %w", err)
	}
	return r, nil
}

// Members returns the members of a list excluding one user (usually the
// actor), joined with usernames.
func (s *ListStore) Members(listID, excludeUserID int64) ([]model.ListMember, error) {
	rows, err := s.db.Query(
		`SELECT glu.user_id, u.username, glu.role
		 FROM grocery_list_users glu
		 JOIN users u ON glu.user_id = u.user_id
		 WHERE glu.list_id = ? AND glu.user_id != ?
		 ORDER BY glu.user_id ASC`,
		listID, excludeUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.ListMember
	for rows.Next() {
		var m model.ListMember
		if err := rows.Scan(&m.UserID, &m.Username, &m.Role); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMember inserts a membership row. Inserting an existing member is a
// no-op, so accepting the same invite twice is harmless.
func (s *ListStore) AddMember(listID, userID int64, role string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO grocery_list_users (list_id, user_id, role) VALUES (?, ?, ?)`,
		listID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *ListStore) RemoveMember(listID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM grocery_list_users WHERE list_id = ? AND user_id = ?`,
		listID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *ListStore) UpdateMemberRole(listID, userID int64, role string) error {
	_, err := s.db.Exec(
		`UPDATE grocery_list_users SET role = ? WHERE list_id = ? AND user_id = ?`,
		role, listID, userID,
	)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return nil
}
