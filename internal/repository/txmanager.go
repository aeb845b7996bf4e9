// Package repository provides the sqlite persistence layer behind the
// port interfaces. Each repository resolves its executor from the
// context so calls made inside TxManager.WithTransaction join the same
// transaction transparently.
package repository

import (
	"context"
	"database/sql"

	"github.com/YEYOLABS/boundless-fleet/pkg/database"
)

type txKey struct{}

// executor is the subset of sql.DB and sql.Tx the repositories use.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func exec(ctx context.Context, db *database.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// TxManager implements port.TransactionManager over the sqlite
// connection.
type TxManager struct {
	db *database.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *database.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTransaction runs fn inside one transaction. Repository calls made
// with the context fn receives are executed on that transaction.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
