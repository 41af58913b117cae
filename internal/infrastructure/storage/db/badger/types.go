package dbbadger

import (
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// Records are stored with base58 string fields so that they can be queried
// by badgerhold.

type offerRecord struct {
	Address      string
	ID           uint64
	Maker        string `badgerhold:"index"`
	AssetA       string
	AssetB       string
	WantedAmount uint64
	Vault        string
	CreatedAt    int64
}

func newOfferRecord(o domain.Offer) offerRecord {
	return offerRecord{
		Address:      o.Address.String(),
		ID:           uint64(o.ID),
		Maker:        o.Maker.String(),
		AssetA:       o.AssetA.String(),
		AssetB:       o.AssetB.String(),
		WantedAmount: o.WantedAmount,
		Vault:        o.Vault.String(),
		CreatedAt:    o.CreatedAt,
	}
}

func (r offerRecord) toDomain() (*domain.Offer, error) {
	addresses, err := parseAddresses(
		r.Address, r.Maker, r.AssetA, r.AssetB, r.Vault,
	)
	if err != nil {
		return nil, err
	}
	return &domain.Offer{
		Address:      addresses[0],
		ID:           domain.OfferID(r.ID),
		Maker:        addresses[1],
		AssetA:       addresses[2],
		AssetB:       addresses[3],
		WantedAmount: r.WantedAmount,
		Vault:        addresses[4],
		CreatedAt:    r.CreatedAt,
	}, nil
}

type vaultRecord struct {
	Address string
	Asset   string
	Offer   string
}

func newVaultRecord(v domain.Vault) vaultRecord {
	return vaultRecord{
		Address: v.Address.String(),
		Asset:   v.Asset.String(),
		Offer:   v.Offer.String(),
	}
}

func (r vaultRecord) toDomain() (*domain.Vault, error) {
	addresses, err := parseAddresses(r.Address, r.Asset, r.Offer)
	if err != nil {
		return nil, err
	}
	return &domain.Vault{
		Address: addresses[0],
		Asset:   addresses[1],
		Offer:   addresses[2],
	}, nil
}

// accountRecord is written whenever an account is funded.
type accountRecord struct {
	Address string
}

type balanceRecord struct {
	Account string `badgerhold:"index"`
	Asset   string
	Amount  uint64
}

func balanceKey(account, asset domain.Address) string {
	return account.String() + "/" + asset.String()
}

func (r balanceRecord) toDomain() (*domain.Balance, error) {
	addresses, err := parseAddresses(r.Account, r.Asset)
	if err != nil {
		return nil, err
	}
	return &domain.Balance{
		Account: addresses[0],
		Asset:   addresses[1],
		Amount:  r.Amount,
	}, nil
}

func parseAddresses(strs ...string) ([]domain.Address, error) {
	addresses := make([]domain.Address, 0, len(strs))
	for _, str := range strs {
		addr, err := domain.ParseAddress(str)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}
