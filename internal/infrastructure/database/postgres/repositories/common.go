// Package repositories holds the PostgreSQL implementations of the domain
// repository contracts.
package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
)

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

type baseRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// executor returns the transaction carried by ctx when present, otherwise
// the pool. This is what keeps repository calls made inside TxManager.InTx
// on the same transaction.
func (r *baseRepo) executor(ctx context.Context) queryExecutor {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}
	return r.conn.DB()
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
