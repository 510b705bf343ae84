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

// LockAndGetBalance takes the row lock that serializes every balance
// mutation of one account. It must run inside a transaction.
func (r *accountsRepo) LockAndGetBalance(ctx context.Context, q sqlx.ExtContext, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := sqlx.GetContext(ctx, q, &balance, `
		SELECT wallet_balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, accounts.ErrAccountNotFound
		}

		return decimal.Zero, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}
