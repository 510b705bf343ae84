package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"github.com/fastprodman/seamlesswallet/internal/repos/accounts"
	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Debit takes a bet. A bet larger than the balance is recorded as failed
// with the balance unchanged, and replays as failed.
func (e *Engine) Debit(ctx context.Context, req DebitRequest) (Result, error) {
	err := req.Validate()
	if err != nil {
		return Result{}, err
	}

	m := movement{typ: transactions.TypeDebit, caller: req.Caller, txID: req.TransactionID, roundID: req.RoundID}

	return e.apply(ctx, m, func(ctx context.Context, q sqlx.ExtContext, acc lockedAccount) (draft, error) {
		rejected := draft{status: transactions.StatusFailed, amount: req.Amount, after: acc.balance}

		if acc.balance.LessThan(req.Amount) {
			logging.FromContext(ctx).Info("debit rejected: insufficient funds",
				"account_id", acc.id,
				"transaction_id", req.TransactionID,
				"balance", acc.balance.StringFixed(MoneyPlaces),
				"amount", req.Amount.StringFixed(MoneyPlaces),
			)

			return rejected, nil
		}

		after, err := e.accounts.DecreaseBalance(ctx, q, acc.id, req.Amount)
		if err != nil {
			if errors.Is(err, accounts.ErrInsufficientFunds) {
				return rejected, nil
			}

			return draft{}, fmt.Errorf("decrease balance: %w", err)
		}

		return draft{status: transactions.StatusSuccess, amount: req.Amount, after: after}, nil
	})
}

// Credit pays a win. Credits always apply.
func (e *Engine) Credit(ctx context.Context, req CreditRequest) (Result, error) {
	err := req.Validate()
	if err != nil {
		return Result{}, err
	}

	m := movement{typ: transactions.TypeCredit, caller: req.Caller, txID: req.TransactionID, roundID: req.RoundID}

	return e.apply(ctx, m, func(ctx context.Context, q sqlx.ExtContext, acc lockedAccount) (draft, error) {
		after, err := e.accounts.IncreaseBalance(ctx, q, acc.id, req.Amount)
		if err != nil {
			return draft{}, fmt.Errorf("increase balance: %w", err)
		}

		return draft{status: transactions.StatusSuccess, amount: req.Amount, after: after}, nil
	})
}

// reverse applies the inverse of orig to the locked account. ok is false
// when reversing a credit would take the balance below zero.
func (e *Engine) reverse(ctx context.Context, q sqlx.ExtContext, acc lockedAccount, orig transactions.Record) (after decimal.Decimal, ok bool, err error) {
	switch orig.Type {
	case transactions.TypeDebit:
		after, err = e.accounts.IncreaseBalance(ctx, q, acc.id, orig.Amount)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("increase balance: %w", err)
		}

		return after, true, nil
	case transactions.TypeCredit:
		if acc.balance.LessThan(orig.Amount) {
			return acc.balance, false, nil
		}

		after, err = e.accounts.DecreaseBalance(ctx, q, acc.id, orig.Amount)
		if err != nil {
			if errors.Is(err, accounts.ErrInsufficientFunds) {
				return acc.balance, false, nil
			}

			return decimal.Zero, false, fmt.Errorf("decrease balance: %w", err)
		}

		return after, true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("reverse %s transaction %s: not reversible", orig.Type, orig.ID)
	}
}
