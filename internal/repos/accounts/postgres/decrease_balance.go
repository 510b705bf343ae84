package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/repos/accounts"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// DecreaseBalance never drives the balance below zero: a missing row and an
// insufficient balance both surface as accounts.ErrInsufficientFunds.
func (r *accountsRepo) DecreaseBalance(ctx context.Context, q sqlx.ExtContext, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := sqlx.GetContext(ctx, q, &balance, `
		UPDATE accounts
		SET wallet_balance = wallet_balance - $2,
		    updated_at = now()
		WHERE id = $1
		  AND wallet_balance >= $2
		RETURNING wallet_balance
	`, accountID, amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, accounts.ErrInsufficientFunds
		}

		return decimal.Zero, fmt.Errorf("decrease balance: %w", err)
	}

	return balance, nil
}
