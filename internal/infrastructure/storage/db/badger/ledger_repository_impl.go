package dbbadger

import (
	"context"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type ledgerRepositoryImpl struct {
	rm *repoManager
}

func (r ledgerRepositoryImpl) GetBalance(
	ctx context.Context, account, asset domain.Address,
) (uint64, error) {
	var amount uint64
	if err := r.rm.withTx(ctx, true, func(tx *badger.Txn) error {
		balance, err := r.getBalance(tx, account, asset)
		if err != nil {
			return err
		}
		amount = balance.Amount
		return nil
	}); err != nil {
		return 0, err
	}
	return amount, nil
}

func (r ledgerRepositoryImpl) GetBalances(
	ctx context.Context, account domain.Address,
) ([]domain.Balance, error) {
	var records []balanceRecord
	if err := r.rm.withTx(ctx, true, func(tx *badger.Txn) error {
		return r.rm.store.TxFind(
			tx, &records, badgerhold.Where("Account").Eq(account.String()),
		)
	}); err != nil {
		return nil, err
	}

	balances := make([]domain.Balance, 0, len(records))
	for _, record := range records {
		if record.Amount == 0 {
			continue
		}
		balance, err := record.toDomain()
		if err != nil {
			return nil, err
		}
		balances = append(balances, *balance)
	}
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Asset.String() < balances[j].Asset.String()
	})
	return balances, nil
}

func (r ledgerRepositoryImpl) Credit(
	ctx context.Context, account, asset domain.Address, amount uint64,
) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	return r.rm.withTx(ctx, false, func(tx *badger.Txn) error {
		balance, err := r.getBalance(tx, account, asset)
		if err != nil {
			return err
		}
		if err := balance.Credit(amount); err != nil {
			return err
		}
		return r.putBalance(tx, *balance)
	})
}

func (r ledgerRepositoryImpl) Transfer(
	ctx context.Context, from, to, asset domain.Address, amount uint64,
) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	return r.rm.withTx(ctx, false, func(tx *badger.Txn) error {
		src, err := r.getBalance(tx, from, asset)
		if err != nil {
			return err
		}
		if err := src.Debit(amount); err != nil {
			return err
		}
		if err := r.putBalance(tx, *src); err != nil {
			return err
		}

		dst, err := r.getBalance(tx, to, asset)
		if err != nil {
			return err
		}
		if err := dst.Credit(amount); err != nil {
			return err
		}
		return r.putBalance(tx, *dst)
	})
}

func (r ledgerRepositoryImpl) getBalance(
	tx *badger.Txn, account, asset domain.Address,
) (*domain.Balance, error) {
	balance := &domain.Balance{Account: account, Asset: asset}

	var record balanceRecord
	err := r.rm.store.TxGet(tx, balanceKey(account, asset), &record)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return balance, nil
		}
		return nil, err
	}
	balance.Amount = record.Amount
	return balance, nil
}

// putBalance stores the given balance, or removes its record if empty.
// Funding an account also touches its account record.
func (r ledgerRepositoryImpl) putBalance(
	tx *badger.Txn, balance domain.Balance,
) error {
	key := balanceKey(balance.Account, balance.Asset)
	if balance.Amount == 0 {
		err := r.rm.store.TxDelete(tx, key, balanceRecord{})
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := r.rm.store.TxUpsert(tx, key, balanceRecord{
		Account: balance.Account.String(),
		Asset:   balance.Asset.String(),
		Amount:  balance.Amount,
	}); err != nil {
		return err
	}
	account := balance.Account.String()
	return r.rm.store.TxUpsert(tx, account, accountRecord{account})
}
