package domain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"
)

// OfferIDLength is the size in bytes of an offer id.
const OfferIDLength = 8

// OfferID is the caller-chosen identifier that, together with the maker,
// determines the address of an offer.
type OfferID uint64

// NewOfferID returns a random offer id.
func NewOfferID() (OfferID, error) {
	var buf [OfferIDLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to generate offer id: %w", err)
	}
	return OfferID(binary.LittleEndian.Uint64(buf[:])), nil
}

// ParseOfferID parses a base-10 offer id.
func ParseOfferID(str string) (OfferID, error) {
	id, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offer id %q: %w", str, err)
	}
	return OfferID(id), nil
}

// Bytes returns the little-endian serialization of the id.
func (id OfferID) Bytes() []byte {
	buf := make([]byte, OfferIDLength)
	binary.LittleEndian.PutUint64(buf, uint64(id))
	return buf
}

func (id OfferID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Offer is the record of an open swap: the maker deposited some amount of
// AssetA into Vault and wants WantedAmount of AssetB in return.
// The deposited amount is not part of the record, it is the balance of AssetA
// held by the vault.
type Offer struct {
	Address      Address
	ID           OfferID
	Maker        Address
	AssetA       Address
	AssetB       Address
	WantedAmount uint64
	Vault        Address
	CreatedAt    int64
}

// NewOffer returns a new offer with its record and vault addresses derived
// from the maker, the offer id and the offered asset.
func NewOffer(
	maker Address, id OfferID, assetA, assetB Address, wantedAmount uint64,
) (*Offer, error) {
	if maker.IsZero() || assetA.IsZero() || assetB.IsZero() {
		return nil, ErrInvalidAddress
	}
	if wantedAmount == 0 {
		return nil, ErrInvalidAmount
	}

	addr := OfferAddress(maker, id)
	return &Offer{
		Address:      addr,
		ID:           id,
		Maker:        maker,
		AssetA:       assetA,
		AssetB:       assetB,
		WantedAmount: wantedAmount,
		Vault:        VaultAddress(assetA, addr),
		CreatedAt:    time.Now().Unix(),
	}, nil
}

// NewVault returns the custody account of the offer.
func (o *Offer) NewVault() *Vault {
	return &Vault{
		Address: o.Vault,
		Asset:   o.AssetA,
		Offer:   o.Address,
	}
}

// Settle returns the record of the settlement of the offer by the given
// taker, who received the released amount of AssetA from the vault.
func (o *Offer) Settle(taker Address, releasedAmount uint64) *Settlement {
	return &Settlement{
		Offer:          *o,
		Taker:          taker,
		ReleasedAmount: releasedAmount,
		PaidAmount:     o.WantedAmount,
		SettledAt:      time.Now().Unix(),
	}
}

// Settlement describes a taken offer: the taker paid PaidAmount of AssetB to
// the maker and received ReleasedAmount of AssetA from the vault.
type Settlement struct {
	Offer          Offer
	Taker          Address
	ReleasedAmount uint64
	PaidAmount     uint64
	SettledAt      int64
}

// OfferFilter restricts the offers returned by a listing. Zero-valued fields
// match any offer.
type OfferFilter struct {
	Maker  Address
	AssetA Address
	AssetB Address
}

// Match returns whether the given offer satisfies the filter.
func (f OfferFilter) Match(o Offer) bool {
	if !f.Maker.IsZero() && f.Maker != o.Maker {
		return false
	}
	if !f.AssetA.IsZero() && f.AssetA != o.AssetA {
		return false
	}
	if !f.AssetB.IsZero() && f.AssetB != o.AssetB {
		return false
	}
	return true
}
