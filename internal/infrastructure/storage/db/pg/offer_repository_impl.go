package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const (
	insertOfferQuery = `INSERT INTO offers
(address, offer_id, maker, asset_a, asset_b, wanted_amount, vault, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	selectOffersQuery = `SELECT address, offer_id, maker, asset_a, asset_b,
wanted_amount, vault, created_at FROM offers`
	deleteOfferQuery = `DELETE FROM offers WHERE address = $1`
)

type offerRepositoryImpl struct {
	rm *repoManager
}

func (r offerRepositoryImpl) AddOffer(
	ctx context.Context, offer domain.Offer,
) error {
	_, err := r.rm.conn(ctx).ExecContext(
		ctx, insertOfferQuery,
		offer.Address.String(),
		offer.ID.String(),
		offer.Maker.String(),
		offer.AssetA.String(),
		offer.AssetB.String(),
		strconv.FormatUint(offer.WantedAmount, 10),
		offer.Vault.String(),
		offer.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOfferAlreadyExists
		}
		return err
	}
	return nil
}

func (r offerRepositoryImpl) GetOffer(
	ctx context.Context, address domain.Address,
) (*domain.Offer, error) {
	row := r.rm.conn(ctx).QueryRowContext(
		ctx, selectOffersQuery+" WHERE address = $1", address.String(),
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, err
	}
	return offer, nil
}

func (r offerRepositoryImpl) ListOffers(
	ctx context.Context, filter domain.OfferFilter,
) ([]domain.Offer, error) {
	conditions := make([]string, 0)
	args := make([]interface{}, 0)
	for column, addr := range map[string]domain.Address{
		"maker":   filter.Maker,
		"asset_a": filter.AssetA,
		"asset_b": filter.AssetB,
	} {
		if addr.IsZero() {
			continue
		}
		args = append(args, addr.String())
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	query := selectOffersQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, address"

	rows, err := r.rm.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]domain.Offer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

func (r offerRepositoryImpl) DeleteOffer(
	ctx context.Context, address domain.Address,
) error {
	res, err := r.rm.conn(ctx).ExecContext(
		ctx, deleteOfferQuery, address.String(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row scanner) (*domain.Offer, error) {
	var (
		address, id, maker, assetA, assetB, wanted, vault string
		createdAt                                         int64
	)
	if err := row.Scan(
		&address, &id, &maker, &assetA, &assetB, &wanted, &vault, &createdAt,
	); err != nil {
		return nil, err
	}

	offerID, err := domain.ParseOfferID(id)
	if err != nil {
		return nil, err
	}
	wantedAmount, err := strconv.ParseUint(wanted, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid wanted amount %q: %w", wanted, err)
	}
	addresses, err := parseAddresses(address, maker, assetA, assetB, vault)
	if err != nil {
		return nil, err
	}

	return &domain.Offer{
		Address:      addresses[0],
		ID:           offerID,
		Maker:        addresses[1],
		AssetA:       addresses[2],
		AssetB:       addresses[3],
		WantedAmount: wantedAmount,
		Vault:        addresses[4],
		CreatedAt:    createdAt,
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
