package accounts

import "github.com/fastprodman/seamlesswallet/internal/repos/accounts"

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{}

func New() *accountsRepo {
	return &accountsRepo{}
}
