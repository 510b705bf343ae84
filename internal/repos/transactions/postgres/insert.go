package transactions

import (
	"context"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/infra/pgutils"
	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/jmoiron/sqlx"
)

func (r *transactionsRepo) Insert(ctx context.Context, q sqlx.ExtContext, rec transactions.Record) (transactions.Record, error) {
	err := sqlx.GetContext(ctx, q, &rec.CreatedAt, `
		INSERT INTO wallet_transactions (
			id, account_id, session_id, provider_transaction_id, type, amount,
			balance_before, balance_after, status, related_transaction_id,
			round_id, game_ref
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`,
		rec.ID, rec.AccountID, rec.SessionID, rec.ProviderTransactionID, rec.Type, rec.Amount,
		rec.BalanceBefore, rec.BalanceAfter, rec.Status, rec.RelatedTransactionID,
		rec.RoundID, rec.GameRef,
	)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return transactions.Record{}, transactions.ErrDuplicateTransaction
		}

		return transactions.Record{}, fmt.Errorf("insert transaction: %w", err)
	}

	return rec, nil
}
