package dbbadger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const defaultMaxRetries = 10

type txKey struct{}

type repoManager struct {
	store      *badgerhold.Store
	maxRetries int

	offerRepository  domain.OfferRepository
	vaultRepository  domain.VaultRepository
	ledgerRepository domain.LedgerRepository
}

// NewRepoManager opens (or creates if not exists) the badger store in the
// given directory. An empty directory makes the store live in memory.
// Transactions that fail to commit because of a conflict with a concurrent
// one are re-run up to maxRetries times.
func NewRepoManager(
	baseDbDir string, maxRetries int, logger badger.Logger,
) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = baseDbDir + "/escrow"
	}
	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening escrow db: %w", err)
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	rm := &repoManager{store: store, maxRetries: maxRetries}
	rm.offerRepository = offerRepositoryImpl{rm}
	rm.vaultRepository = vaultRepositoryImpl{rm}
	rm.ledgerRepository = ledgerRepositoryImpl{rm}
	return rm, nil
}

func (r *repoManager) OfferRepository() domain.OfferRepository {
	return r.offerRepository
}

func (r *repoManager) VaultRepository() domain.VaultRepository {
	return r.vaultRepository
}

func (r *repoManager) LedgerRepository() domain.LedgerRepository {
	return r.ledgerRepository
}

func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if _, ok := ctx.Value(txKey{}).(*badger.Txn); ok {
		return handler(ctx)
	}

	for attempt := 1; ; attempt++ {
		res, err := r.runTransaction(ctx, readOnly, handler)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, badger.ErrConflict) || attempt >= r.maxRetries {
			return nil, err
		}
		log.WithField("attempt", attempt).Debug(
			"transaction conflict, retrying",
		)
	}
}

func (r *repoManager) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close escrow db")
	}
}

func (r *repoManager) runTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	tx := r.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// withTx runs fn with the transaction carried by ctx, if any, otherwise with
// a new one that is committed right after.
func (r *repoManager) withTx(
	ctx context.Context, readOnly bool, fn func(tx *badger.Txn) error,
) error {
	if tx, ok := ctx.Value(txKey{}).(*badger.Txn); ok {
		return fn(tx)
	}
	if readOnly {
		return r.store.Badger().View(fn)
	}
	return r.store.Badger().Update(fn)
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.Compression = options.ZSTD
	if len(dbDir) <= 0 {
		opts = opts.WithInMemory(true)
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
