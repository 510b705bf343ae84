package transactions

import (
	"context"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MarkRolledBack flips a successful row to rolledback. Rows in any other
// state are left alone and reported as ErrTransactionNotFound.
func (r *transactionsRepo) MarkRolledBack(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `
		UPDATE wallet_transactions
		SET status = 'rolledback'
		WHERE id = $1
		  AND status = 'success'
	`, id)
	if err != nil {
		return fmt.Errorf("mark rolled back: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return transactions.ErrTransactionNotFound
	}

	return nil
}
