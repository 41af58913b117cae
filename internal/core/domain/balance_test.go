package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestBalance(t *testing.T) {
	t.Parallel()

	b := domain.Balance{Account: maker, Asset: assetA}
	require.NoError(t, b.Credit(100))
	require.NoError(t, b.Debit(40))
	require.Equal(t, uint64(60), b.Amount)

	require.ErrorIs(t, b.Debit(61), domain.ErrInsufficientFunds)
	require.Equal(t, uint64(60), b.Amount)

	require.ErrorIs(t, b.Credit(math.MaxUint64), domain.ErrAmountOverflow)
	require.Equal(t, uint64(60), b.Amount)

	require.NoError(t, b.Debit(60))
	require.Zero(t, b.Amount)
}
