package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type ledgerRepositoryImpl struct {
	rm *RepoManager
}

func (r ledgerRepositoryImpl) GetBalance(
	ctx context.Context, account, asset domain.Address,
) (uint64, error) {
	var amount uint64
	if err := r.rm.withTx(ctx, true, func(tx *transaction) error {
		amount = tx.getBalance(account, asset)
		return nil
	}); err != nil {
		return 0, err
	}
	return amount, nil
}

func (r ledgerRepositoryImpl) GetBalances(
	ctx context.Context, account domain.Address,
) ([]domain.Balance, error) {
	var balances []domain.Balance
	if err := r.rm.withTx(ctx, true, func(tx *transaction) error {
		balances = tx.listBalances(account)
		return nil
	}); err != nil {
		return nil, err
	}
	return balances, nil
}

func (r ledgerRepositoryImpl) Credit(
	ctx context.Context, account, asset domain.Address, amount uint64,
) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	return r.rm.withTx(ctx, false, func(tx *transaction) error {
		balance := domain.Balance{
			Account: account,
			Asset:   asset,
			Amount:  tx.getBalance(account, asset),
		}
		if err := balance.Credit(amount); err != nil {
			return err
		}
		tx.setBalance(account, asset, balance.Amount)
		return nil
	})
}

func (r ledgerRepositoryImpl) Transfer(
	ctx context.Context, from, to, asset domain.Address, amount uint64,
) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	return r.rm.withTx(ctx, false, func(tx *transaction) error {
		src := domain.Balance{
			Account: from, Asset: asset, Amount: tx.getBalance(from, asset),
		}
		if err := src.Debit(amount); err != nil {
			return err
		}
		tx.setBalance(from, asset, src.Amount)

		dst := domain.Balance{
			Account: to, Asset: asset, Amount: tx.getBalance(to, asset),
		}
		if err := dst.Credit(amount); err != nil {
			return err
		}
		tx.setBalance(to, asset, dst.Amount)
		return nil
	})
}
