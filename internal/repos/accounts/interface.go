package accounts

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
)

// Accounts owns wallet_balance. Every method taking q runs on whatever the
// caller passes: the pool for plain reads, the open transaction otherwise.
type Accounts interface {
	GetBalance(ctx context.Context, q sqlx.ExtContext, accountID int64) (decimal.Decimal, error)
	LockAndGetBalance(ctx context.Context, q sqlx.ExtContext, accountID int64) (decimal.Decimal, error)
	IncreaseBalance(ctx context.Context, q sqlx.ExtContext, accountID int64, amount decimal.Decimal) (decimal.Decimal, error)
	DecreaseBalance(ctx context.Context, q sqlx.ExtContext, accountID int64, amount decimal.Decimal) (decimal.Decimal, error)
}
