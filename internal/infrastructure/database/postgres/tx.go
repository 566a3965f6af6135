package postgres

import (
	"context"
	"database/sql"

	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

type txKey struct{}

// TxFromContext returns the transaction carried by ctx, if any.
// Repositories use it so that work started through InTx stays on the
// same transaction.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// TxManager runs units of work in a single database transaction.
type TxManager struct {
	conn *Connection
	log  logging.Logger
}

// NewTxManager returns a TxManager bound to conn.
func NewTxManager(conn *Connection, log logging.Logger) *TxManager {
	return &TxManager{conn: conn, log: log.Named("tx")}
}

// InTx begins a transaction, stores it in the context passed to fn, and
// commits when fn returns nil. Any error from fn rolls the transaction
// back and is returned unchanged, so callers can still inspect its code.
func (m *TxManager) InTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	tx, err := m.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.log.Error("transaction rollback failed", logging.Err(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}
