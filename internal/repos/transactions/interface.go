package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

type Type string

const (
	TypeBalance  Type = "balance"
	TypeDebit    Type = "debit"
	TypeCredit   Type = "credit"
	TypeRollback Type = "rollback"
)

type Status string

const (
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusRolledBack Status = "rolledback"
)

// Record is one ledger row. Rows are append-only; only Status may later move
// from success to rolledback.
type Record struct {
	ID                    uuid.UUID       `db:"id"`
	AccountID             int64           `db:"account_id"`
	SessionID             *int64          `db:"session_id"`
	ProviderTransactionID string          `db:"provider_transaction_id"`
	Type                  Type            `db:"type"`
	Amount                decimal.Decimal `db:"amount"`
	BalanceBefore         decimal.Decimal `db:"balance_before"`
	BalanceAfter          decimal.Decimal `db:"balance_after"`
	Status                Status          `db:"status"`
	RelatedTransactionID  uuid.NullUUID   `db:"related_transaction_id"`
	RoundID               string          `db:"round_id"`
	GameRef               string          `db:"game_ref"`
	CreatedAt             time.Time       `db:"created_at"`
}

type Transactions interface {
	// Insert stores rec and returns it with CreatedAt filled in. A row with
	// the same (type, provider id) yields ErrDuplicateTransaction.
	Insert(ctx context.Context, q sqlx.ExtContext, rec Record) (Record, error)
	FindByProviderID(ctx context.Context, q sqlx.ExtContext, typ Type, providerTxID string) (Record, error)
	// FindReversible locks and returns the newest debit or credit carrying
	// the provider id.
	FindReversible(ctx context.Context, q sqlx.ExtContext, providerTxID string) (Record, error)
	FindRollbackOf(ctx context.Context, q sqlx.ExtContext, originalID uuid.UUID) (Record, error)
	MarkRolledBack(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error
}
