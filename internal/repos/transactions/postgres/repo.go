package transactions

import "github.com/fastprodman/seamlesswallet/internal/repos/transactions"

var _ transactions.Transactions = (*transactionsRepo)(nil)

const recordColumns = `
	id, account_id, session_id, provider_transaction_id, type, amount,
	balance_before, balance_after, status, related_transaction_id,
	round_id, game_ref, created_at`

type transactionsRepo struct{}

func New() *transactionsRepo {
	return &transactionsRepo{}
}
