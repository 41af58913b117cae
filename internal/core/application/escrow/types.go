package escrow

import "github.com/tdex-network/tdex-escrow/internal/core/domain"

const (
	opMakeOffer = "make_offer"
	opTakeOffer = "take_offer"
)

// MakeOfferArgs are the inputs of a make_offer operation.
type MakeOfferArgs struct {
	Maker         domain.Address
	OfferID       domain.OfferID
	OfferedAmount uint64
	WantedAmount  uint64
	AssetA        domain.Address
	AssetB        domain.Address
}

// OfferInfo is an open offer along with the amount of AssetA held by its
// vault.
type OfferInfo struct {
	domain.Offer
	DepositedAmount uint64
}

type noopMetrics struct{}

func (noopMetrics) OfferMade(uint64, uint64)      {}
func (noopMetrics) OfferTaken(uint64, uint64)     {}
func (noopMetrics) OperationFailed(string, error) {}
