package domain

import "context"

// LedgerRepository is the abstraction for any kind of database intended to
// persist the balances of accounts.
type LedgerRepository interface {
	// GetBalance returns the amount of asset owned by account. Unknown accounts
	// have zero balance.
	GetBalance(ctx context.Context, account, asset Address) (uint64, error)
	// GetBalances returns all the non-zero balances of account.
	GetBalances(ctx context.Context, account Address) ([]Balance, error)
	// Credit adds amount of asset to the balance of account.
	Credit(ctx context.Context, account, asset Address, amount uint64) error
	// Transfer moves amount of asset between the given accounts. It returns
	// ErrInsufficientFunds if from does not own enough of asset.
	Transfer(ctx context.Context, from, to, asset Address, amount uint64) error
}
