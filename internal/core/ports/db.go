package ports

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// RepoManager interface defines the methods for offers, vaults and ledger
// balances, all persisted in the same storage so that they can be updated
// within a single transaction.
type RepoManager interface {
	OfferRepository() domain.OfferRepository
	VaultRepository() domain.VaultRepository
	LedgerRepository() domain.LedgerRepository

	// RunTransaction invokes handler within a transaction. Every repository
	// method called with the context passed to handler joins the transaction.
	// The changes are committed only if handler returns no error, otherwise
	// they're all discarded. Implementations may run handler more than once in
	// case of conflicts with concurrent transactions.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
