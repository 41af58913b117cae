package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const (
	postgresDriver = "postgres"

	uniqueViolation      = "23505"
	serializationFailure = "40001"

	defaultMaxRetries = 10
)

const schema = `
CREATE TABLE IF NOT EXISTS offers (
	address       TEXT PRIMARY KEY,
	offer_id      NUMERIC(20, 0) NOT NULL,
	maker         TEXT NOT NULL,
	asset_a       TEXT NOT NULL,
	asset_b       TEXT NOT NULL,
	wanted_amount NUMERIC(20, 0) NOT NULL,
	vault         TEXT NOT NULL,
	created_at    BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS offers_maker_idx ON offers (maker);
CREATE TABLE IF NOT EXISTS vaults (
	address TEXT PRIMARY KEY,
	asset   TEXT NOT NULL,
	offer   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS balances (
	account TEXT NOT NULL,
	asset   TEXT NOT NULL,
	amount  NUMERIC(20, 0) NOT NULL CHECK (amount > 0),
	PRIMARY KEY (account, asset)
);
`

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type repoManager struct {
	db         *sql.DB
	maxRetries int

	offerRepository  domain.OfferRepository
	vaultRepository  domain.VaultRepository
	ledgerRepository domain.LedgerRepository
}

// NewRepoManager connects to the postgres database at the given address and
// creates the schema if missing. Transactions run with serializable
// isolation and are re-run up to maxRetries times on serialization failures.
func NewRepoManager(
	connectAddr string, maxRetries int,
) (ports.RepoManager, error) {
	db, err := sql.Open(postgresDriver, connectAddr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating db schema: %w", err)
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	rm := &repoManager{db: db, maxRetries: maxRetries}
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
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return handler(ctx)
	}

	for attempt := 1; ; attempt++ {
		res, err := r.execTx(ctx, readOnly, handler)
		if err == nil {
			return res, nil
		}
		if !isSerializationFailure(err) || attempt >= r.maxRetries {
			return nil, err
		}
		log.WithField("attempt", attempt).Debug(
			"serialization failure, retrying transaction",
		)
	}
}

func (r *repoManager) Close() {
	if err := r.db.Close(); err != nil {
		log.WithError(err).Warn("failed to close postgres db")
	}
}

func (r *repoManager) execTx(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
		ReadOnly:  readOnly,
	})
	if err != nil {
		return nil, err
	}

	// Rollback is a no-op if the tx has already been committed.
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.WithError(err).Error("unable to rollback db tx")
		}
	}()

	res, err := handler(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// conn returns the transaction carried by ctx, if any, or the db handle.
func (r *repoManager) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.db
}

// withTx runs fn within the transaction carried by ctx, if any, otherwise
// within a new one.
func (r *repoManager) withTx(
	ctx context.Context, fn func(q querier) error,
) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(tx)
	}
	_, err := r.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return nil, fn(r.conn(ctx))
		},
	)
	return err
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == serializationFailure
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
