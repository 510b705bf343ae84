// Package wallet is the seamless wallet engine: it answers provider
// balance, debit, credit and rollback callbacks, each inside one database
// transaction holding the player's account row lock.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/seamlesswallet/internal/infra/pgutils"
	"github.com/fastprodman/seamlesswallet/internal/repos/accounts"
	"github.com/fastprodman/seamlesswallet/internal/repos/replays"
	"github.com/fastprodman/seamlesswallet/internal/repos/sessions"
	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/jmoiron/sqlx"
)

// TxScope opens a transaction, runs fn and commits when fn returns nil.
// Any error or panic rolls the transaction back.
type TxScope interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

type Deps struct {
	Tx       TxScope
	Accounts accounts.Accounts
	Sessions sessions.Sessions
	Ledger   transactions.Transactions
	// Replays is optional; nil disables the replay cache.
	Replays replays.Replays
	// Now is optional and defaults to time.Now.
	Now func() time.Time
}

type Engine struct {
	tx       TxScope
	accounts accounts.Accounts
	sessions sessions.Sessions
	ledger   transactions.Transactions
	replays  replays.Replays
	now      func() time.Time
}

func New(d Deps) *Engine {
	e := &Engine{
		tx:       d.Tx,
		accounts: d.Accounts,
		sessions: d.Sessions,
		ledger:   d.Ledger,
		replays:  d.Replays,
		now:      d.Now,
	}

	if e.replays == nil {
		e.replays = replays.Nop{}
	}

	if e.now == nil {
		e.now = time.Now
	}

	return e
}

// Balance reports the player's current balance. It writes no ledger row.
func (e *Engine) Balance(ctx context.Context, req BalanceRequest) (Result, error) {
	err := req.Validate()
	if err != nil {
		return Result{}, err
	}

	var res Result

	err = e.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		sess, err := e.resolveSession(ctx, tx, req.Caller)
		if err != nil {
			return err
		}

		balance, err := e.accounts.GetBalance(ctx, tx, sess.AccountID)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}

		res = Result{Status: transactions.StatusSuccess, Balance: balance}

		return nil
	})
	if err != nil {
		return Result{}, classify(err)
	}

	return res, nil
}

// classify folds lock and contention failures into ErrTransient. A unique
// violation on insert means a concurrent callback with the same id won the
// race; the provider's retry replays it.
func classify(err error) error {
	if pgutils.IsTransient(err) || errors.Is(err, transactions.ErrDuplicateTransaction) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}

	return err
}
