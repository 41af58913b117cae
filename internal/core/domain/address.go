package domain

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// AddressLength is the size in bytes of any address handled by the escrow.
const AddressLength = 32

var (
	derivationTag = []byte("tdex-escrow/derive/v1")

	offerSeed = []byte("offer")
	vaultSeed = []byte("vault")
)

// Address identifies accounts, assets, offers and vaults. Its text
// representation is base58.
type Address [AddressLength]byte

// ParseAddress decodes the given base58 string into an Address.
func ParseAddress(str string) (Address, error) {
	buf, err := base58.Decode(str)
	if err != nil || len(buf) != AddressLength {
		return Address{}, ErrInvalidAddress
	}

	var addr Address
	copy(addr[:], buf)
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(str string) Address {
	addr, err := ParseAddress(str)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// DeriveAddress deterministically derives an address from the given seeds.
// Every seed is length-prefixed before hashing so that different seed lists
// never produce the same preimage. The result is the blake2b-256 digest of the
// preimage, which makes collisions computationally infeasible; storage layers
// still reject the creation of a record at an already used address.
func DeriveAddress(seeds ...[]byte) Address {
	h, _ := blake2b.New256(nil)
	//nolint
	h.Write(derivationTag)

	prefix := make([]byte, binary.MaxVarintLen64)
	for _, seed := range seeds {
		n := binary.PutUvarint(prefix, uint64(len(seed)))
		//nolint
		h.Write(prefix[:n])
		//nolint
		h.Write(seed)
	}

	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// OfferAddress returns the address of the offer record identified by the
// given maker and offer id.
func OfferAddress(maker Address, id OfferID) Address {
	return DeriveAddress(offerSeed, maker[:], id.Bytes())
}

// VaultAddress returns the address of the custody account holding the asset
// deposited for the given offer.
func VaultAddress(asset, offer Address) Address {
	return DeriveAddress(vaultSeed, asset[:], offer[:])
}
