package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const (
	selectBalanceQuery = `SELECT amount FROM balances
WHERE account = $1 AND asset = $2`
	selectBalanceForUpdateQuery = selectBalanceQuery + " FOR UPDATE"
	selectBalancesQuery         = `SELECT asset, amount FROM balances
WHERE account = $1 ORDER BY asset`
	upsertBalanceQuery = `INSERT INTO balances (account, asset, amount)
VALUES ($1, $2, $3)
ON CONFLICT (account, asset) DO UPDATE SET amount = EXCLUDED.amount`
	deleteBalanceQuery = `DELETE FROM balances WHERE account = $1 AND asset = $2`
)

type ledgerRepositoryImpl struct {
	rm *repoManager
}

func (r ledgerRepositoryImpl) GetBalance(
	ctx context.Context, account, asset domain.Address,
) (uint64, error) {
	balance, err := getBalance(ctx, r.rm.conn(ctx), selectBalanceQuery, account, asset)
	if err != nil {
		return 0, err
	}
	return balance.Amount, nil
}

func (r ledgerRepositoryImpl) GetBalances(
	ctx context.Context, account domain.Address,
) ([]domain.Balance, error) {
	rows, err := r.rm.conn(ctx).QueryContext(
		ctx, selectBalancesQuery, account.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]domain.Balance, 0)
	for rows.Next() {
		var assetStr, amountStr string
		if err := rows.Scan(&assetStr, &amountStr); err != nil {
			return nil, err
		}
		asset, err := domain.ParseAddress(assetStr)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			return nil, err
		}
		balances = append(balances, domain.Balance{
			Account: account,
			Asset:   asset,
			Amount:  amount,
		})
	}
	return balances, rows.Err()
}

func (r ledgerRepositoryImpl) Credit(
	ctx context.Context, account, asset domain.Address, amount uint64,
) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	return r.rm.withTx(ctx, func(q querier) error {
		balance, err := getBalance(ctx, q, selectBalanceForUpdateQuery, account, asset)
		if err != nil {
			return err
		}
		if err := balance.Credit(amount); err != nil {
			return err
		}
		return putBalance(ctx, q, *balance)
	})
}

func (r ledgerRepositoryImpl) Transfer(
	ctx context.Context, from, to, asset domain.Address, amount uint64,
) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	return r.rm.withTx(ctx, func(q querier) error {
		src, err := getBalance(ctx, q, selectBalanceForUpdateQuery, from, asset)
		if err != nil {
			return err
		}
		if err := src.Debit(amount); err != nil {
			return err
		}
		if err := putBalance(ctx, q, *src); err != nil {
			return err
		}

		dst, err := getBalance(ctx, q, selectBalanceForUpdateQuery, to, asset)
		if err != nil {
			return err
		}
		if err := dst.Credit(amount); err != nil {
			return err
		}
		return putBalance(ctx, q, *dst)
	})
}

func getBalance(
	ctx context.Context, q querier, query string, account, asset domain.Address,
) (*domain.Balance, error) {
	balance := &domain.Balance{Account: account, Asset: asset}

	var amountStr string
	if err := q.QueryRowContext(
		ctx, query, account.String(), asset.String(),
	).Scan(&amountStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return balance, nil
		}
		return nil, err
	}

	amount, err := parseAmount(amountStr)
	if err != nil {
		return nil, err
	}
	balance.Amount = amount
	return balance, nil
}

// putBalance stores the given balance, or removes its row if empty.
func putBalance(ctx context.Context, q querier, balance domain.Balance) error {
	account, asset := balance.Account.String(), balance.Asset.String()
	if balance.Amount == 0 {
		_, err := q.ExecContext(ctx, deleteBalanceQuery, account, asset)
		return err
	}
	_, err := q.ExecContext(
		ctx, upsertBalanceQuery,
		account, asset, strconv.FormatUint(balance.Amount, 10),
	)
	return err
}

func parseAmount(str string) (uint64, error) {
	amount, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", str, err)
	}
	return amount, nil
}
