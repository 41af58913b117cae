package dbbadger

import (
	"context"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type offerRepositoryImpl struct {
	rm *repoManager
}

func (r offerRepositoryImpl) AddOffer(
	ctx context.Context, offer domain.Offer,
) error {
	record := newOfferRecord(offer)
	return r.rm.withTx(ctx, false, func(tx *badger.Txn) error {
		err := r.rm.store.TxInsert(tx, record.Address, record)
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrOfferAlreadyExists
		}
		return err
	})
}

func (r offerRepositoryImpl) GetOffer(
	ctx context.Context, address domain.Address,
) (*domain.Offer, error) {
	var record offerRecord
	if err := r.rm.withTx(ctx, true, func(tx *badger.Txn) error {
		err := r.rm.store.TxGet(tx, address.String(), &record)
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrOfferNotFound
		}
		return err
	}); err != nil {
		return nil, err
	}
	return record.toDomain()
}

func (r offerRepositoryImpl) ListOffers(
	ctx context.Context, filter domain.OfferFilter,
) ([]domain.Offer, error) {
	query := offerQuery(filter)

	var records []offerRecord
	if err := r.rm.withTx(ctx, true, func(tx *badger.Txn) error {
		return r.rm.store.TxFind(tx, &records, query)
	}); err != nil {
		return nil, err
	}

	offers := make([]domain.Offer, 0, len(records))
	for _, record := range records {
		offer, err := record.toDomain()
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].CreatedAt != offers[j].CreatedAt {
			return offers[i].CreatedAt < offers[j].CreatedAt
		}
		return offers[i].Address.String() < offers[j].Address.String()
	})
	return offers, nil
}

func (r offerRepositoryImpl) DeleteOffer(
	ctx context.Context, address domain.Address,
) error {
	return r.rm.withTx(ctx, false, func(tx *badger.Txn) error {
		err := r.rm.store.TxDelete(tx, address.String(), offerRecord{})
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrOfferNotFound
		}
		return err
	})
}

func offerQuery(filter domain.OfferFilter) *badgerhold.Query {
	var query *badgerhold.Query
	and := func(field string, addr domain.Address) {
		if addr.IsZero() {
			return
		}
		if query == nil {
			query = badgerhold.Where(field).Eq(addr.String())
			return
		}
		query = query.And(field).Eq(addr.String())
	}

	and("Maker", filter.Maker)
	and("AssetA", filter.AssetA)
	and("AssetB", filter.AssetB)
	return query
}
