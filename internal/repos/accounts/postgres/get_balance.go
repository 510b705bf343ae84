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

func (r *accountsRepo) GetBalance(ctx context.Context, q sqlx.ExtContext, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := sqlx.GetContext(ctx, q, &balance, `
		SELECT wallet_balance
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, accounts.ErrAccountNotFound
		}

		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
