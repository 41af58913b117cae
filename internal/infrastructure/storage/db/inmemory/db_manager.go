package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

type txKey struct{}

type balanceKey struct {
	account domain.Address
	asset   domain.Address
}

// store holds the committed state of every repository.
type store struct {
	offers   map[domain.Address]domain.Offer
	vaults   map[domain.Address]domain.Vault
	balances map[balanceKey]uint64
}

// RepoManager is an in-memory implementation of ports.RepoManager.
// Transactions are serialized by a store-wide lock: read-only ones can run
// concurrently, read-write ones run exclusively. Writes are staged in the
// transaction and applied to the store only on commit.
type RepoManager struct {
	lock  *sync.RWMutex
	store *store

	offerRepository  domain.OfferRepository
	vaultRepository  domain.VaultRepository
	ledgerRepository domain.LedgerRepository
}

func NewRepoManager() ports.RepoManager {
	rm := &RepoManager{
		lock: &sync.RWMutex{},
		store: &store{
			offers:   make(map[domain.Address]domain.Offer),
			vaults:   make(map[domain.Address]domain.Vault),
			balances: make(map[balanceKey]uint64),
		},
	}
	rm.offerRepository = offerRepositoryImpl{rm}
	rm.vaultRepository = vaultRepositoryImpl{rm}
	rm.ledgerRepository = ledgerRepositoryImpl{rm}
	return rm
}

func (r *RepoManager) OfferRepository() domain.OfferRepository {
	return r.offerRepository
}

func (r *RepoManager) VaultRepository() domain.VaultRepository {
	return r.vaultRepository
}

func (r *RepoManager) LedgerRepository() domain.LedgerRepository {
	return r.ledgerRepository
}

func (r *RepoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	// Nested calls join the ongoing transaction.
	if tx, ok := ctx.Value(txKey{}).(*transaction); ok {
		if tx.readOnly && !readOnly {
			return nil, fmt.Errorf("cannot run read-write transaction within a read-only one")
		}
		return handler(ctx)
	}

	tx := r.begin(readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *RepoManager) Close() {}

func (r *RepoManager) begin(readOnly bool) *transaction {
	if readOnly {
		r.lock.RLock()
	} else {
		r.lock.Lock()
	}
	return &transaction{
		rm:       r,
		readOnly: readOnly,
		offers:   make(map[domain.Address]*domain.Offer),
		vaults:   make(map[domain.Address]*domain.Vault),
		balances: make(map[balanceKey]uint64),
	}
}

// withTx runs fn within the transaction carried by ctx, if any, otherwise in
// a new one that is committed right after.
func (r *RepoManager) withTx(
	ctx context.Context, readOnly bool, fn func(tx *transaction) error,
) error {
	if tx, ok := ctx.Value(txKey{}).(*transaction); ok {
		if tx.readOnly && !readOnly {
			return fmt.Errorf("cannot write within a read-only transaction")
		}
		return fn(tx)
	}

	tx := r.begin(readOnly)
	defer tx.Discard()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
