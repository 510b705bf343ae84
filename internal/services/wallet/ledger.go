package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"github.com/fastprodman/seamlesswallet/internal/repos/replays"
	"github.com/fastprodman/seamlesswallet/internal/repos/sessions"
	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// movement is a balance-affecting callback identified by its provider id.
type movement struct {
	typ     transactions.Type
	caller  Caller
	txID    string
	roundID string
}

func (m movement) replayKey() replays.Key {
	return replays.Key{Type: string(m.typ), RemoteID: m.caller.RemoteID, ProviderTxID: m.txID}
}

// lockedAccount is the account row as seen under its row lock.
type lockedAccount struct {
	id      int64
	balance decimal.Decimal
}

// draft is what an effect decided. With skip set the callback is answered
// with status and after but no ledger row is written, and ref is reported
// as the transaction id.
type draft struct {
	status  transactions.Status
	amount  decimal.Decimal
	after   decimal.Decimal
	related uuid.NullUUID
	skip    bool
	ref     uuid.UUID
}

// effect applies a new callback to the locked account inside the open
// transaction.
type effect func(ctx context.Context, q sqlx.ExtContext, acc lockedAccount) (draft, error)

// apply runs a movement end to end: replay cache, then one transaction that
// resolves the session, locks the account and records or replays the
// callback. Only results backed by a ledger row are cached.
func (e *Engine) apply(ctx context.Context, m movement, fx effect) (Result, error) {
	key := m.replayKey()

	cached, ok := e.cachedResult(ctx, key)
	if ok {
		return cached, nil
	}

	var (
		res      Result
		recorded bool
	)

	err := e.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		sess, err := e.resolveSession(ctx, tx, m.caller)
		if err != nil {
			return err
		}

		// The row lock is taken before the ledger lookup so that concurrent
		// duplicates queue up and the later one sees the committed row.
		balance, err := e.accounts.LockAndGetBalance(ctx, tx, sess.AccountID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		res, recorded, err = e.recordOrReplay(ctx, tx, m, sess, lockedAccount{id: sess.AccountID, balance: balance}, fx)

		return err
	})
	if err != nil {
		return Result{}, classify(err)
	}

	if recorded {
		e.remember(ctx, key, res)
	}

	return res, nil
}

// recordOrReplay answers a callback from its existing ledger row, or runs fx
// and records the outcome. The bool reports whether the result is backed by
// a ledger row.
func (e *Engine) recordOrReplay(
	ctx context.Context,
	q sqlx.ExtContext,
	m movement,
	sess sessions.Session,
	acc lockedAccount,
	fx effect,
) (Result, bool, error) {
	existing, err := e.ledger.FindByProviderID(ctx, q, m.typ, m.txID)
	switch {
	case err == nil:
		if existing.AccountID != acc.id {
			return Result{}, false, ErrTransactionConflict
		}

		return replayOf(existing), true, nil
	case !errors.Is(err, transactions.ErrTransactionNotFound):
		return Result{}, false, fmt.Errorf("find transaction: %w", err)
	}

	d, err := fx(ctx, q, acc)
	if err != nil {
		return Result{}, false, err
	}

	if d.skip {
		return Result{Status: d.status, Balance: d.after, TransactionID: d.ref}, false, nil
	}

	sessionID := sess.ID

	rec, err := e.ledger.Insert(ctx, q, transactions.Record{
		ID:                    uuid.New(),
		AccountID:             acc.id,
		SessionID:             &sessionID,
		ProviderTransactionID: m.txID,
		Type:                  m.typ,
		Amount:                d.amount,
		BalanceBefore:         acc.balance,
		BalanceAfter:          d.after,
		Status:                d.status,
		RelatedTransactionID:  d.related,
		RoundID:               m.roundID,
		GameRef:               firstNonEmpty(m.caller.GameRef, sess.GameRef),
	})
	if err != nil {
		return Result{}, false, fmt.Errorf("insert transaction: %w", err)
	}

	return Result{Status: rec.Status, Balance: rec.BalanceAfter, TransactionID: rec.ID}, true, nil
}

// replayOf answers with what the row answered the first time. A debit or
// credit rolled back since then still replays as the success it was.
func replayOf(rec transactions.Record) Result {
	status := rec.Status
	if status == transactions.StatusRolledBack {
		status = transactions.StatusSuccess
	}

	return Result{
		Status:        status,
		Balance:       rec.BalanceAfter,
		TransactionID: rec.ID,
		Replayed:      true,
	}
}

func (e *Engine) cachedResult(ctx context.Context, key replays.Key) (Result, bool) {
	entry, err := e.replays.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, replays.ErrMiss) {
			logging.FromContext(ctx).Warn("replay cache read failed", "error", err)
		}

		return Result{}, false
	}

	return Result{
		Status:        transactions.Status(entry.Status),
		Balance:       entry.Balance,
		TransactionID: entry.TransactionID,
		Replayed:      true,
	}, true
}

func (e *Engine) remember(ctx context.Context, key replays.Key, res Result) {
	err := e.replays.Put(ctx, key, replays.Entry{
		Status:        string(res.Status),
		Balance:       res.Balance,
		TransactionID: res.TransactionID,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("replay cache write failed", "error", err)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
