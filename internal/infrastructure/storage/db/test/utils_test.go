package db_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/pg"
	"github.com/thanhpk/randstr"
)

const pgDsnEnvVar = "ESCROW_PG_TEST_DSN"

var (
	readOnly = true
	ctx      = context.Background()
)

type repoManager struct {
	ports.RepoManager
	Name string
}

// newRepoManagers returns an instance of every RepoManager implementation.
// Postgres is included only if a test database is configured.
func newRepoManagers(t *testing.T) []repoManager {
	t.Helper()

	badgerRepoManager, err := dbbadger.NewRepoManager("", 0, nil)
	require.NoError(t, err)

	managers := []repoManager{
		{inmemory.NewRepoManager(), "inmemory"},
		{badgerRepoManager, "badger"},
	}

	if dsn := os.Getenv(pgDsnEnvVar); len(dsn) > 0 {
		pgRepoManager, err := postgresdb.NewRepoManager(dsn, 0)
		require.NoError(t, err)
		managers = append(managers, repoManager{pgRepoManager, "postgres"})
	}

	t.Cleanup(func() {
		for _, rm := range managers {
			rm.Close()
		}
	})
	return managers
}

func randomAddress() domain.Address {
	return domain.DeriveAddress([]byte(randstr.Hex(16)))
}

func randomOffer(t *testing.T) *domain.Offer {
	t.Helper()

	id, err := domain.NewOfferID()
	require.NoError(t, err)
	offer, err := domain.NewOffer(
		randomAddress(), id, randomAddress(), randomAddress(), 1000,
	)
	require.NoError(t, err)
	return offer
}

// write runs fn within a read-write transaction.
func write(
	rm ports.RepoManager, fn func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	return rm.RunTransaction(ctx, !readOnly, fn)
}

// read runs fn within a read-only transaction.
func read(
	rm ports.RepoManager, fn func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	return rm.RunTransaction(ctx, readOnly, fn)
}
