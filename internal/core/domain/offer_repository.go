package domain

import "context"

// OfferRepository is the abstraction for any kind of database intended to
// persist Offers. Records are addressed by the offer address, hence any party
// knowing the maker and the offer id can locate an offer.
type OfferRepository interface {
	// AddOffer stores a new offer. It returns ErrOfferAlreadyExists if the
	// offer address is already taken.
	AddOffer(ctx context.Context, offer Offer) error
	// GetOffer returns the offer with the given address or ErrOfferNotFound.
	GetOffer(ctx context.Context, address Address) (*Offer, error)
	// ListOffers returns all the open offers matching the given filter.
	ListOffers(ctx context.Context, filter OfferFilter) ([]Offer, error)
	// DeleteOffer removes the offer with the given address. It must be called
	// only once the offer's vault has been drained.
	DeleteOffer(ctx context.Context, address Address) error
}
