package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Rollback reverses the newest debit or credit sent with req.TransactionID.
// The rollback row reuses that provider id, so a repeated rollback replays
// the first one.
func (e *Engine) Rollback(ctx context.Context, req RollbackRequest) (Result, error) {
	err := req.Validate()
	if err != nil {
		return Result{}, err
	}

	m := movement{typ: transactions.TypeRollback, caller: req.Caller, txID: req.TransactionID, roundID: req.RoundID}

	return e.apply(ctx, m, func(ctx context.Context, q sqlx.ExtContext, acc lockedAccount) (draft, error) {
		orig, err := e.ledger.FindReversible(ctx, q, req.TransactionID)
		if err != nil {
			if errors.Is(err, transactions.ErrTransactionNotFound) {
				return draft{}, ErrOriginalNotFound
			}

			return draft{}, fmt.Errorf("find original: %w", err)
		}

		if orig.AccountID != acc.id {
			return draft{}, ErrTransactionConflict
		}

		switch orig.Status {
		case transactions.StatusFailed:
			// A rejected debit moved no money.
			return draft{skip: true, status: transactions.StatusSuccess, after: acc.balance, ref: orig.ID}, nil
		case transactions.StatusRolledBack:
			prev, err := e.ledger.FindRollbackOf(ctx, q, orig.ID)
			if err != nil {
				return draft{}, fmt.Errorf("find previous rollback: %w", err)
			}

			return draft{skip: true, status: transactions.StatusSuccess, after: prev.BalanceAfter, ref: prev.ID}, nil
		}

		after, ok, err := e.reverse(ctx, q, acc, orig)
		if err != nil {
			return draft{}, err
		}

		if !ok {
			logging.FromContext(ctx).Info("rollback rejected: insufficient funds",
				"account_id", acc.id,
				"transaction_id", req.TransactionID,
				"balance", acc.balance.StringFixed(MoneyPlaces),
				"amount", orig.Amount.StringFixed(MoneyPlaces),
			)

			return draft{skip: true, status: transactions.StatusFailed, after: acc.balance, ref: orig.ID}, nil
		}

		err = e.ledger.MarkRolledBack(ctx, q, orig.ID)
		if err != nil {
			return draft{}, fmt.Errorf("mark original rolled back: %w", err)
		}

		return draft{
			status:  transactions.StatusSuccess,
			amount:  orig.Amount,
			after:   after,
			related: uuid.NullUUID{UUID: orig.ID, Valid: true},
		}, nil
	})
}
