package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (r *transactionsRepo) FindByProviderID(ctx context.Context, q sqlx.ExtContext, typ transactions.Type, providerTxID string) (transactions.Record, error) {
	return getRecord(ctx, q, "find by provider id", `
		SELECT `+recordColumns+`
		FROM wallet_transactions
		WHERE type = $1
		  AND provider_transaction_id = $2
	`, typ, providerTxID)
}

func (r *transactionsRepo) FindReversible(ctx context.Context, q sqlx.ExtContext, providerTxID string) (transactions.Record, error) {
	return getRecord(ctx, q, "find reversible", `
		SELECT `+recordColumns+`
		FROM wallet_transactions
		WHERE provider_transaction_id = $1
		  AND type IN ('debit', 'credit')
		ORDER BY created_at DESC, type DESC
		LIMIT 1
		FOR UPDATE
	`, providerTxID)
}

func (r *transactionsRepo) FindRollbackOf(ctx context.Context, q sqlx.ExtContext, originalID uuid.UUID) (transactions.Record, error) {
	return getRecord(ctx, q, "find rollback", `
		SELECT `+recordColumns+`
		FROM wallet_transactions
		WHERE related_transaction_id = $1
		  AND type = 'rollback'
	`, originalID)
}

func getRecord(ctx context.Context, q sqlx.ExtContext, op, query string, args ...any) (transactions.Record, error) {
	var rec transactions.Record

	err := sqlx.GetContext(ctx, q, &rec, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transactions.Record{}, transactions.ErrTransactionNotFound
		}

		return transactions.Record{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}
