package escrow

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

// Service implements the settlement protocol of the escrow. MakeOffer and
// TakeOffer are the only operations mutating offers, vaults and balances, and
// each one of them runs as a single storage transaction: either every change
// is committed or none is.
type Service struct {
	repoManager ports.RepoManager
	pubsub      *pubsub.Service
	metrics     ports.Metrics
}

func NewService(
	repoManager ports.RepoManager,
	pubsubSvc *pubsub.Service,
	metrics ports.Metrics,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if pubsubSvc == nil {
		pubsubSvc = pubsub.NewService(nil)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{repoManager, pubsubSvc, metrics}, nil
}

// MakeOffer creates a new offer and moves the offered amount of AssetA from
// the maker to the offer's vault.
func (s *Service) MakeOffer(
	ctx context.Context, args MakeOfferArgs,
) (*domain.Offer, error) {
	offer, err := s.makeOffer(ctx, args)
	if err != nil {
		s.metrics.OperationFailed(opMakeOffer, err)
		return nil, err
	}

	s.metrics.OfferMade(args.OfferedAmount, offer.WantedAmount)
	log.WithFields(log.Fields{
		"offer":  offer.Address.String(),
		"maker":  offer.Maker.String(),
		"amount": args.OfferedAmount,
	}).Info("offer made")

	go func() {
		if err := s.pubsub.PublishOfferMadeEvent(
			*offer, args.OfferedAmount,
		); err != nil {
			log.WithError(err).Warn("failed to publish offer made event")
		}
	}()

	return offer, nil
}

// TakeOffer settles the offer with the given address: the taker pays the
// wanted amount of AssetB to the maker and receives the whole vault balance of
// AssetA. The vault and the offer are then removed.
func (s *Service) TakeOffer(
	ctx context.Context, taker, offerAddress domain.Address,
) (*domain.Settlement, error) {
	settlement, err := s.takeOffer(ctx, taker, offerAddress)
	if err != nil {
		s.metrics.OperationFailed(opTakeOffer, err)
		return nil, err
	}

	s.metrics.OfferTaken(settlement.ReleasedAmount, settlement.PaidAmount)
	log.WithFields(log.Fields{
		"offer": settlement.Offer.Address.String(),
		"taker": settlement.Taker.String(),
	}).Info("offer taken")

	go func() {
		if err := s.pubsub.PublishOfferTakenEvent(*settlement); err != nil {
			log.WithError(err).Warn("failed to publish offer taken event")
		}
	}()

	return settlement, nil
}

// GetOffer returns the open offer with the given address.
func (s *Service) GetOffer(
	ctx context.Context, offerAddress domain.Address,
) (*OfferInfo, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			offer, err := s.repoManager.OfferRepository().GetOffer(
				ctx, offerAddress,
			)
			if err != nil {
				return nil, err
			}
			return s.offerInfo(ctx, *offer)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*OfferInfo), nil
}

// ListOffers returns the open offers matching the given filter.
func (s *Service) ListOffers(
	ctx context.Context, filter domain.OfferFilter,
) ([]OfferInfo, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			offers, err := s.repoManager.OfferRepository().ListOffers(ctx, filter)
			if err != nil {
				return nil, err
			}

			list := make([]OfferInfo, 0, len(offers))
			for _, offer := range offers {
				info, err := s.offerInfo(ctx, offer)
				if err != nil {
					return nil, err
				}
				list = append(list, *info)
			}
			return list, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return res.([]OfferInfo), nil
}

// GetVaultBalance returns the amount of AssetA held by the vault of the offer
// with the given address.
func (s *Service) GetVaultBalance(
	ctx context.Context, offerAddress domain.Address,
) (uint64, error) {
	info, err := s.GetOffer(ctx, offerAddress)
	if err != nil {
		return 0, err
	}
	return info.DepositedAmount, nil
}

// OfferAddress returns the address of the offer made by maker with the given
// id, whether it exists or not.
func (s *Service) OfferAddress(
	maker domain.Address, offerID domain.OfferID,
) domain.Address {
	return domain.OfferAddress(maker, offerID)
}

func (s *Service) makeOffer(
	ctx context.Context, args MakeOfferArgs,
) (*domain.Offer, error) {
	if args.OfferedAmount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	offer, err := domain.NewOffer(
		args.Maker, args.OfferID, args.AssetA, args.AssetB, args.WantedAmount,
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			ledger := s.repoManager.LedgerRepository()
			vaults := s.repoManager.VaultRepository()

			isVault, err := vaults.IsVault(ctx, offer.Maker)
			if err != nil {
				return nil, err
			}
			if isVault {
				return nil, domain.ErrVaultCustody
			}

			balance, err := ledger.GetBalance(ctx, offer.Maker, offer.AssetA)
			if err != nil {
				return nil, err
			}
			if balance < args.OfferedAmount {
				return nil, domain.ErrInsufficientFunds
			}

			if err := s.repoManager.OfferRepository().AddOffer(
				ctx, *offer,
			); err != nil {
				return nil, err
			}
			if err := vaults.AddVault(ctx, *offer.NewVault()); err != nil {
				return nil, err
			}
			if err := ledger.Transfer(
				ctx, offer.Maker, offer.Vault, offer.AssetA, args.OfferedAmount,
			); err != nil {
				return nil, err
			}
			return nil, nil
		},
	); err != nil {
		return nil, err
	}

	return offer, nil
}

func (s *Service) takeOffer(
	ctx context.Context, taker, offerAddress domain.Address,
) (*domain.Settlement, error) {
	if taker.IsZero() {
		return nil, domain.ErrInvalidAddress
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			ledger := s.repoManager.LedgerRepository()
			vaults := s.repoManager.VaultRepository()
			offers := s.repoManager.OfferRepository()

			offer, err := offers.GetOffer(ctx, offerAddress)
			if err != nil {
				return nil, err
			}

			isVault, err := vaults.IsVault(ctx, taker)
			if err != nil {
				return nil, err
			}
			if isVault {
				return nil, domain.ErrVaultCustody
			}

			balance, err := ledger.GetBalance(ctx, taker, offer.AssetB)
			if err != nil {
				return nil, err
			}
			if balance < offer.WantedAmount {
				return nil, domain.ErrInsufficientFunds
			}

			deposited, err := ledger.GetBalance(ctx, offer.Vault, offer.AssetA)
			if err != nil {
				return nil, err
			}
			if deposited == 0 {
				return nil, domain.ErrVaultEmpty
			}

			if err := ledger.Transfer(
				ctx, taker, offer.Maker, offer.AssetB, offer.WantedAmount,
			); err != nil {
				return nil, err
			}
			if err := ledger.Transfer(
				ctx, offer.Vault, taker, offer.AssetA, deposited,
			); err != nil {
				return nil, err
			}
			if err := vaults.DeleteVault(ctx, offer.Vault); err != nil {
				return nil, err
			}
			if err := offers.DeleteOffer(ctx, offer.Address); err != nil {
				return nil, err
			}

			return offer.Settle(taker, deposited), nil
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*domain.Settlement), nil
}

func (s *Service) offerInfo(
	ctx context.Context, offer domain.Offer,
) (*OfferInfo, error) {
	deposited, err := s.repoManager.LedgerRepository().GetBalance(
		ctx, offer.Vault, offer.AssetA,
	)
	if err != nil {
		return nil, err
	}
	return &OfferInfo{offer, deposited}, nil
}
