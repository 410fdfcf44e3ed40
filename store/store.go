// Package store implements relational data access for the storefront.
// Every store is a thin struct around the shared *sql.DB pool; methods that
// must participate in the checkout transaction accept a Querier so they run
// against either the pool or an open *sql.Tx.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a referenced row does not exist, or exists
// but belongs to a different owner.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional update matched the row by id
// but the row's state no longer satisfied the condition, i.e. a concurrent
// writer got there first.
var ErrConflict = errors.New("conflicting update")

// Querier is the subset of database/sql satisfied by both *sql.DB and
// *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
