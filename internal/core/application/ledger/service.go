package ledger

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

// Service is the boundary of the asset ledger. It lets users fund their
// accounts and move assets between them, but never in or out of a vault.
type Service struct {
	repoManager ports.RepoManager
}

func NewService(repoManager ports.RepoManager) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	return &Service{repoManager}, nil
}

func (s *Service) GetBalance(
	ctx context.Context, account, asset domain.Address,
) (uint64, error) {
	if account.IsZero() || asset.IsZero() {
		return 0, domain.ErrInvalidAddress
	}
	return s.repoManager.LedgerRepository().GetBalance(ctx, account, asset)
}

func (s *Service) GetBalances(
	ctx context.Context, account domain.Address,
) ([]domain.Balance, error) {
	if account.IsZero() {
		return nil, domain.ErrInvalidAddress
	}
	return s.repoManager.LedgerRepository().GetBalances(ctx, account)
}

// Deposit credits amount of asset to account from outside of the escrow.
func (s *Service) Deposit(
	ctx context.Context, account, asset domain.Address, amount uint64,
) error {
	if account.IsZero() || asset.IsZero() {
		return domain.ErrInvalidAddress
	}
	if amount == 0 {
		return domain.ErrInvalidAmount
	}

	if _, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.checkCustody(ctx, account); err != nil {
				return nil, err
			}
			return nil, s.repoManager.LedgerRepository().Credit(
				ctx, account, asset, amount,
			)
		},
	); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account": account.String(),
		"asset":   asset.String(),
		"amount":  amount,
	}).Debug("deposit")
	return nil
}

// Transfer moves amount of asset between two non-vault accounts.
func (s *Service) Transfer(
	ctx context.Context, from, to, asset domain.Address, amount uint64,
) error {
	if from.IsZero() || to.IsZero() || asset.IsZero() {
		return domain.ErrInvalidAddress
	}
	if amount == 0 {
		return domain.ErrInvalidAmount
	}

	if _, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.checkCustody(ctx, from); err != nil {
				return nil, err
			}
			if err := s.checkCustody(ctx, to); err != nil {
				return nil, err
			}
			return nil, s.repoManager.LedgerRepository().Transfer(
				ctx, from, to, asset, amount,
			)
		},
	); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"from":   from.String(),
		"to":     to.String(),
		"asset":  asset.String(),
		"amount": amount,
	}).Debug("transfer")
	return nil
}

// DeriveAddress returns the address deterministically derived from seeds.
func (s *Service) DeriveAddress(seeds ...[]byte) domain.Address {
	return domain.DeriveAddress(seeds...)
}

func (s *Service) checkCustody(ctx context.Context, account domain.Address) error {
	isVault, err := s.repoManager.VaultRepository().IsVault(ctx, account)
	if err != nil {
		return err
	}
	if isVault {
		return domain.ErrVaultCustody
	}
	return nil
}
