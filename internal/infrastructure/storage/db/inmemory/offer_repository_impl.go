package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type offerRepositoryImpl struct {
	rm *RepoManager
}

func (r offerRepositoryImpl) AddOffer(
	ctx context.Context, offer domain.Offer,
) error {
	return r.rm.withTx(ctx, false, func(tx *transaction) error {
		if _, ok := tx.getOffer(offer.Address); ok {
			return domain.ErrOfferAlreadyExists
		}
		tx.putOffer(offer)
		return nil
	})
}

func (r offerRepositoryImpl) GetOffer(
	ctx context.Context, address domain.Address,
) (*domain.Offer, error) {
	var offer domain.Offer
	if err := r.rm.withTx(ctx, true, func(tx *transaction) error {
		o, ok := tx.getOffer(address)
		if !ok {
			return domain.ErrOfferNotFound
		}
		offer = o
		return nil
	}); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r offerRepositoryImpl) ListOffers(
	ctx context.Context, filter domain.OfferFilter,
) ([]domain.Offer, error) {
	offers := make([]domain.Offer, 0)
	if err := r.rm.withTx(ctx, true, func(tx *transaction) error {
		for _, offer := range tx.listOffers() {
			if filter.Match(offer) {
				offers = append(offers, offer)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return offers, nil
}

func (r offerRepositoryImpl) DeleteOffer(
	ctx context.Context, address domain.Address,
) error {
	return r.rm.withTx(ctx, false, func(tx *transaction) error {
		if _, ok := tx.getOffer(address); !ok {
			return domain.ErrOfferNotFound
		}
		tx.deleteOffer(address)
		return nil
	})
}
