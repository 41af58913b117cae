package postgresdb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const (
	insertVaultQuery = `INSERT INTO vaults (address, asset, offer)
VALUES ($1, $2, $3)`
	selectVaultQuery = `SELECT address, asset, offer FROM vaults
WHERE address = $1`
	existsVaultQuery = `SELECT EXISTS (SELECT 1 FROM vaults WHERE address = $1)`
	vaultFundsQuery  = `SELECT EXISTS (
SELECT 1 FROM balances WHERE account = $1 AND amount > 0)`
	deleteVaultBalancesQuery = `DELETE FROM balances WHERE account = $1`
	deleteVaultQuery         = `DELETE FROM vaults WHERE address = $1`
)

type vaultRepositoryImpl struct {
	rm *repoManager
}

func (r vaultRepositoryImpl) AddVault(
	ctx context.Context, vault domain.Vault,
) error {
	return r.rm.withTx(ctx, func(q querier) error {
		var hasFunds bool
		if err := q.QueryRowContext(
			ctx, vaultFundsQuery, vault.Address.String(),
		).Scan(&hasFunds); err != nil {
			return err
		}
		if hasFunds {
			return domain.ErrVaultAlreadyExists
		}

		if _, err := q.ExecContext(
			ctx, insertVaultQuery,
			vault.Address.String(), vault.Asset.String(), vault.Offer.String(),
		); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrVaultAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (r vaultRepositoryImpl) GetVault(
	ctx context.Context, address domain.Address,
) (*domain.Vault, error) {
	var addr, asset, offer string
	if err := r.rm.conn(ctx).QueryRowContext(
		ctx, selectVaultQuery, address.String(),
	).Scan(&addr, &asset, &offer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVaultNotFound
		}
		return nil, err
	}

	addresses, err := parseAddresses(addr, asset, offer)
	if err != nil {
		return nil, err
	}
	return &domain.Vault{
		Address: addresses[0],
		Asset:   addresses[1],
		Offer:   addresses[2],
	}, nil
}

func (r vaultRepositoryImpl) IsVault(
	ctx context.Context, address domain.Address,
) (bool, error) {
	var exists bool
	if err := r.rm.conn(ctx).QueryRowContext(
		ctx, existsVaultQuery, address.String(),
	).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r vaultRepositoryImpl) DeleteVault(
	ctx context.Context, address domain.Address,
) error {
	return r.rm.withTx(ctx, func(q querier) error {
		var hasFunds bool
		if err := q.QueryRowContext(
			ctx, vaultFundsQuery, address.String(),
		).Scan(&hasFunds); err != nil {
			return err
		}
		if hasFunds {
			return domain.ErrVaultNotEmpty
		}

		if _, err := q.ExecContext(
			ctx, deleteVaultBalancesQuery, address.String(),
		); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, deleteVaultQuery, address.String())
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrVaultNotFound
		}
		return nil
	})
}
