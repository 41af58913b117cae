package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestDeriveAddress(t *testing.T) {
	t.Parallel()

	a := domain.DeriveAddress([]byte("offer"), []byte("maker"))
	b := domain.DeriveAddress([]byte("offer"), []byte("maker"))
	require.Equal(t, a, b)
	require.False(t, a.IsZero())

	// Concatenating seeds differently must not produce the same address.
	c := domain.DeriveAddress([]byte("offe"), []byte("rmaker"))
	require.NotEqual(t, a, c)
	d := domain.DeriveAddress([]byte("offermaker"))
	require.NotEqual(t, a, d)
}

func TestOfferAndVaultAddress(t *testing.T) {
	t.Parallel()

	maker := domain.DeriveAddress([]byte("alice"))
	otherMaker := domain.DeriveAddress([]byte("bob"))
	asset := domain.DeriveAddress([]byte("mint a"))

	offer := domain.OfferAddress(maker, 1)
	require.Equal(t, offer, domain.OfferAddress(maker, 1))
	require.NotEqual(t, offer, domain.OfferAddress(maker, 2))
	require.NotEqual(t, offer, domain.OfferAddress(otherMaker, 1))

	vault := domain.VaultAddress(asset, offer)
	require.NotEqual(t, offer, vault)
	require.Equal(t, vault, domain.VaultAddress(asset, offer))
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	addr := domain.DeriveAddress([]byte("alice"))
	parsed, err := domain.ParseAddress(addr.String())
	require.NoError(t, err)
	require.Equal(t, addr, parsed)

	tests := []struct {
		name string
		str  string
	}{
		{"empty", ""},
		{"not_base58", "0OIl"},
		{"too_short", "3yZe7d"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ParseAddress(tt.str)
			require.ErrorIs(t, err, domain.ErrInvalidAddress)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Account domain.Address `json:"account"`
	}
	addr := domain.DeriveAddress([]byte("alice"))

	buf, err := json.Marshal(wrapper{addr})
	require.NoError(t, err)
	require.JSONEq(t, `{"account":"`+addr.String()+`"}`, string(buf))

	var w wrapper
	require.NoError(t, json.Unmarshal(buf, &w))
	require.Equal(t, addr, w.Account)

	err = json.Unmarshal([]byte(`{"account":"invalid"}`), &w)
	require.Error(t, err)
}
