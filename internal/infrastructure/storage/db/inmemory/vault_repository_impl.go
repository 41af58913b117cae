package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type vaultRepositoryImpl struct {
	rm *RepoManager
}

func (r vaultRepositoryImpl) AddVault(
	ctx context.Context, vault domain.Vault,
) error {
	return r.rm.withTx(ctx, false, func(tx *transaction) error {
		if _, ok := tx.getVault(vault.Address); ok {
			return domain.ErrVaultAlreadyExists
		}
		for _, b := range tx.listBalances(vault.Address) {
			if b.Amount > 0 {
				return domain.ErrVaultAlreadyExists
			}
		}
		tx.putVault(vault)
		return nil
	})
}

func (r vaultRepositoryImpl) GetVault(
	ctx context.Context, address domain.Address,
) (*domain.Vault, error) {
	var vault domain.Vault
	if err := r.rm.withTx(ctx, true, func(tx *transaction) error {
		v, ok := tx.getVault(address)
		if !ok {
			return domain.ErrVaultNotFound
		}
		vault = v
		return nil
	}); err != nil {
		return nil, err
	}
	return &vault, nil
}

func (r vaultRepositoryImpl) IsVault(
	ctx context.Context, address domain.Address,
) (bool, error) {
	var found bool
	if err := r.rm.withTx(ctx, true, func(tx *transaction) error {
		_, found = tx.getVault(address)
		return nil
	}); err != nil {
		return false, err
	}
	return found, nil
}

func (r vaultRepositoryImpl) DeleteVault(
	ctx context.Context, address domain.Address,
) error {
	return r.rm.withTx(ctx, false, func(tx *transaction) error {
		if _, ok := tx.getVault(address); !ok {
			return domain.ErrVaultNotFound
		}
		for _, balance := range tx.listBalances(address) {
			if balance.Amount > 0 {
				return domain.ErrVaultNotEmpty
			}
		}
		tx.deleteVault(address)
		return nil
	})
}
