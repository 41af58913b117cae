package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestRepoManagerTransactions(t *testing.T) {
	for _, rm := range newRepoManagers(t) {
		rm := rm
		t.Run(rm.Name, func(t *testing.T) {
			t.Parallel()

			t.Run("testCommit", func(t *testing.T) {
				t.Parallel()
				testCommit(t, rm)
			})

			t.Run("testRollback", func(t *testing.T) {
				t.Parallel()
				testRollback(t, rm)
			})

			t.Run("testReadOnly", func(t *testing.T) {
				t.Parallel()
				testReadOnly(t, rm)
			})

			t.Run("testConcurrentTransfers", func(t *testing.T) {
				t.Parallel()
				testConcurrentTransfers(t, rm)
			})
		})
	}
}

func testCommit(t *testing.T, rm repoManager) {
	offer := randomOffer(t)

	res, err := write(rm, func(ctx context.Context) (interface{}, error) {
		if err := rm.OfferRepository().AddOffer(ctx, *offer); err != nil {
			return nil, err
		}
		if err := rm.VaultRepository().AddVault(ctx, *offer.NewVault()); err != nil {
			return nil, err
		}
		// Writes are visible within the transaction.
		return rm.OfferRepository().GetOffer(ctx, offer.Address)
	})
	require.NoError(t, err)
	require.Equal(t, offer, res)

	isVault, err := rm.VaultRepository().IsVault(ctx, offer.Vault)
	require.NoError(t, err)
	require.True(t, isVault)
}

func testRollback(t *testing.T, rm repoManager) {
	offer := randomOffer(t)
	failure := errors.New("failure")

	err := rm.LedgerRepository().Credit(ctx, offer.Maker, offer.AssetA, 100)
	require.NoError(t, err)

	_, err = write(rm, func(ctx context.Context) (interface{}, error) {
		if err := rm.OfferRepository().AddOffer(ctx, *offer); err != nil {
			return nil, err
		}
		if err := rm.VaultRepository().AddVault(ctx, *offer.NewVault()); err != nil {
			return nil, err
		}
		if err := rm.LedgerRepository().Transfer(
			ctx, offer.Maker, offer.Vault, offer.AssetA, 100,
		); err != nil {
			return nil, err
		}
		return nil, failure
	})
	require.ErrorIs(t, err, failure)

	_, err = rm.OfferRepository().GetOffer(ctx, offer.Address)
	require.ErrorIs(t, err, domain.ErrOfferNotFound)

	isVault, err := rm.VaultRepository().IsVault(ctx, offer.Vault)
	require.NoError(t, err)
	require.False(t, isVault)

	balance, err := rm.LedgerRepository().GetBalance(ctx, offer.Maker, offer.AssetA)
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance)

	balance, err = rm.LedgerRepository().GetBalance(ctx, offer.Vault, offer.AssetA)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func testReadOnly(t *testing.T, rm repoManager) {
	offer := randomOffer(t)

	_, err := read(rm, func(ctx context.Context) (interface{}, error) {
		return nil, rm.OfferRepository().AddOffer(ctx, *offer)
	})
	require.Error(t, err)

	_, err = rm.OfferRepository().GetOffer(ctx, offer.Address)
	require.ErrorIs(t, err, domain.ErrOfferNotFound)
}

func testConcurrentTransfers(t *testing.T, rm repoManager) {
	from, to, asset := randomAddress(), randomAddress(), randomAddress()
	numOfTransfers := 10

	err := rm.LedgerRepository().Credit(ctx, from, asset, 5)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		errs []error
	)
	for i := 0; i < numOfTransfers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := write(rm, func(ctx context.Context) (interface{}, error) {
				return nil, rm.LedgerRepository().Transfer(ctx, from, to, asset, 1)
			})
			lock.Lock()
			errs = append(errs, err)
			lock.Unlock()
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.LessOrEqual(t, succeeded, 5)

	fromBalance, err := rm.LedgerRepository().GetBalance(ctx, from, asset)
	require.NoError(t, err)
	toBalance, err := rm.LedgerRepository().GetBalance(ctx, to, asset)
	require.NoError(t, err)
	require.Equal(t, uint64(5), fromBalance+toBalance)
	require.Equal(t, uint64(succeeded), toBalance)
}
