package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

var (
	maker  = domain.DeriveAddress([]byte("maker"))
	taker  = domain.DeriveAddress([]byte("taker"))
	assetA = domain.DeriveAddress([]byte("asset a"))
	assetB = domain.DeriveAddress([]byte("asset b"))
)

func TestNewOffer(t *testing.T) {
	t.Parallel()

	offerID := domain.OfferID(42)
	offer, err := domain.NewOffer(maker, offerID, assetA, assetB, 1000)
	require.NoError(t, err)
	require.NotNil(t, offer)
	require.Equal(t, domain.OfferAddress(maker, offerID), offer.Address)
	require.Equal(t, domain.VaultAddress(assetA, offer.Address), offer.Vault)
	require.Equal(t, maker, offer.Maker)
	require.Equal(t, assetA, offer.AssetA)
	require.Equal(t, assetB, offer.AssetB)
	require.Equal(t, uint64(1000), offer.WantedAmount)
	require.NotZero(t, offer.CreatedAt)

	vault := offer.NewVault()
	require.Equal(t, offer.Vault, vault.Address)
	require.Equal(t, assetA, vault.Asset)
	require.Equal(t, offer.Address, vault.Offer)
}

func TestFailingNewOffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		maker         domain.Address
		assetA        domain.Address
		assetB        domain.Address
		wantedAmount  uint64
		expectedError error
	}{
		{
			name:          "zero_wanted_amount",
			maker:         maker,
			assetA:        assetA,
			assetB:        assetB,
			wantedAmount:  0,
			expectedError: domain.ErrInvalidAmount,
		},
		{
			name:          "missing_maker",
			assetA:        assetA,
			assetB:        assetB,
			wantedAmount:  10,
			expectedError: domain.ErrInvalidAddress,
		},
		{
			name:          "missing_asset_a",
			maker:         maker,
			assetB:        assetB,
			wantedAmount:  10,
			expectedError: domain.ErrInvalidAddress,
		},
		{
			name:          "missing_asset_b",
			maker:         maker,
			assetA:        assetA,
			wantedAmount:  10,
			expectedError: domain.ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			offer, err := domain.NewOffer(tt.maker, 1, tt.assetA, tt.assetB, tt.wantedAmount)
			require.ErrorIs(t, err, tt.expectedError)
			require.Nil(t, offer)
		})
	}
}

func TestOfferSettle(t *testing.T) {
	t.Parallel()

	offer, err := domain.NewOffer(maker, 7, assetA, assetB, 500)
	require.NoError(t, err)

	settlement := offer.Settle(taker, 300)
	require.Equal(t, *offer, settlement.Offer)
	require.Equal(t, taker, settlement.Taker)
	require.Equal(t, uint64(300), settlement.ReleasedAmount)
	require.Equal(t, uint64(500), settlement.PaidAmount)
	require.NotZero(t, settlement.SettledAt)
}

func TestOfferID(t *testing.T) {
	t.Parallel()

	id, err := domain.NewOfferID()
	require.NoError(t, err)
	require.Len(t, id.Bytes(), domain.OfferIDLength)

	parsed, err := domain.ParseOfferID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, domain.OfferID(1).Bytes())

	_, err = domain.ParseOfferID("-1")
	require.Error(t, err)
}

func TestOfferFilter(t *testing.T) {
	t.Parallel()

	offer, err := domain.NewOffer(maker, 1, assetA, assetB, 1)
	require.NoError(t, err)

	require.True(t, domain.OfferFilter{}.Match(*offer))
	require.True(t, domain.OfferFilter{Maker: maker}.Match(*offer))
	require.True(t, domain.OfferFilter{AssetA: assetA, AssetB: assetB}.Match(*offer))
	require.False(t, domain.OfferFilter{Maker: taker}.Match(*offer))
	require.False(t, domain.OfferFilter{AssetA: assetB}.Match(*offer))
	require.False(t, domain.OfferFilter{AssetB: assetA}.Match(*offer))
}
