package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// WithTx runs fn inside a transaction.
// It commits if fn returns nil, otherwise it rolls back. A panic in fn
// rolls the transaction back before it is re-raised.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil) // default isolation level (READ COMMITTED)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false

	defer func() {
		if committed {
			return
		}

		rbErr := tx.Rollback()
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}

		p := recover()
		if p != nil {
			panic(p)
		}
	}()

	err = fn(tx)
	if err != nil {
		return fmt.Errorf("fn: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	committed = true

	return nil
}

// TxRunner is the transaction-scope factory handed to services. Every
// transaction it opens gets a bounded lock wait.
type TxRunner struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

func NewTxRunner(db *sqlx.DB, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{db: db, lockTimeout: lockTimeout}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if r.lockTimeout > 0 {
			_, err := tx.ExecContext(ctx,
				`SELECT set_config('lock_timeout', $1, true)`,
				fmt.Sprintf("%dms", r.lockTimeout.Milliseconds()),
			)
			if err != nil {
				return fmt.Errorf("set lock timeout: %w", err)
			}
		}

		return fn(tx)
	})
}
