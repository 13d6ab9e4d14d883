package store

import "database/sql"

// DBTX is the subset of database/sql methods the stores use. Both *sql.DB
// and *sql.Tx satisfy it, so a store can be rebound onto a transaction
// with WithTx when an operation must be atomic.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
