package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type vaultRepositoryImpl struct {
	rm *repoManager
}

func (r vaultRepositoryImpl) AddVault(
	ctx context.Context, vault domain.Vault,
) error {
	record := newVaultRecord(vault)
	return r.rm.withTx(ctx, false, func(tx *badger.Txn) error {
		// Reading the account record makes a concurrent credit to the
		// address conflict with this transaction.
		var account accountRecord
		err := r.rm.store.TxGet(tx, record.Address, &account)
		if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}

		funded, err := r.hasFunds(tx, record.Address)
		if err != nil {
			return err
		}
		if funded {
			return domain.ErrVaultAlreadyExists
		}

		err = r.rm.store.TxInsert(tx, record.Address, record)
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrVaultAlreadyExists
		}
		return err
	})
}

func (r vaultRepositoryImpl) GetVault(
	ctx context.Context, address domain.Address,
) (*domain.Vault, error) {
	var record vaultRecord
	if err := r.rm.withTx(ctx, true, func(tx *badger.Txn) error {
		return r.getVault(tx, address, &record)
	}); err != nil {
		return nil, err
	}
	return record.toDomain()
}

func (r vaultRepositoryImpl) IsVault(
	ctx context.Context, address domain.Address,
) (bool, error) {
	var found bool
	if err := r.rm.withTx(ctx, true, func(tx *badger.Txn) error {
		var record vaultRecord
		err := r.getVault(tx, address, &record)
		if err != nil {
			if errors.Is(err, domain.ErrVaultNotFound) {
				return nil
			}
			return err
		}
		found = true
		return nil
	}); err != nil {
		return false, err
	}
	return found, nil
}

func (r vaultRepositoryImpl) DeleteVault(
	ctx context.Context, address domain.Address,
) error {
	return r.rm.withTx(ctx, false, func(tx *badger.Txn) error {
		var record vaultRecord
		if err := r.getVault(tx, address, &record); err != nil {
			return err
		}

		funded, err := r.hasFunds(tx, record.Address)
		if err != nil {
			return err
		}
		if funded {
			return domain.ErrVaultNotEmpty
		}
		if err := r.rm.store.TxDeleteMatching(
			tx, balanceRecord{}, badgerhold.Where("Account").Eq(record.Address),
		); err != nil {
			return err
		}
		err = r.rm.store.TxDelete(tx, record.Address, accountRecord{})
		if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}

		return r.rm.store.TxDelete(tx, record.Address, vaultRecord{})
	})
}

func (r vaultRepositoryImpl) hasFunds(
	tx *badger.Txn, address string,
) (bool, error) {
	var balances []balanceRecord
	if err := r.rm.store.TxFind(
		tx, &balances, badgerhold.Where("Account").Eq(address),
	); err != nil {
		return false, err
	}
	for _, b := range balances {
		if b.Amount > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r vaultRepositoryImpl) getVault(
	tx *badger.Txn, address domain.Address, record *vaultRecord,
) error {
	err := r.rm.store.TxGet(tx, address.String(), record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return domain.ErrVaultNotFound
	}
	return err
}
