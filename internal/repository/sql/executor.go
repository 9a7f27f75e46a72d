package sql

import (
	"context"
	"database/sql"
)

// dbExecutor prepares statements on either *sql.DB or *sql.Tx.
type dbExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}
