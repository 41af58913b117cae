package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/config"
	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
	"github.com/tdex-network/tdex-escrow/internal/core/application/ledger"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/metrics"
	natspubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/nats"
	webhookpubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/webhook"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/pg"
	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	if err := run(); err != nil {
		log.WithError(err).Fatal("daemon exited with error")
	}
}

// run opens the stores and serves the api until a termination signal is
// received. Every resource opened is released before returning.
func run() error {
	dbType := strings.ToLower(config.GetString(config.DBTypeKey))
	repoManager, err := newRepoManager(dbType)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer repoManager.Close()
	log.Debugf("opened %s db", dbType)

	webhookDatadir := config.GetDatadir()
	if dbType == config.DBInMemory {
		webhookDatadir = ""
	}
	webhookSvc, err := webhookpubsub.NewWebhookPubSubService(webhookpubsub.Config{
		Datadir:        webhookDatadir,
		RequestTimeout: config.GetDuration(config.WebhookRequestTimeoutKey),
		RateLimit:      config.GetInt(config.WebhookRateLimitKey),
		Logger:         log.StandardLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to start webhook pubsub: %w", err)
	}

	publishers := make([]ports.EventPublisher, 0, 1)
	if natsURL := config.GetString(config.NatsURLKey); natsURL != "" {
		natsPublisher, err := natspubsub.NewPublisher(
			natsURL, config.GetString(config.NatsSubjectPrefixKey),
		)
		if err != nil {
			if err := webhookSvc.Close(); err != nil {
				log.WithError(err).Warn("failed to close webhook store")
			}
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		publishers = append(publishers, natsPublisher)
		log.Debugf("publishing events to nats server %s", natsURL)
	}
	pubsubSvc := pubsub.NewService(webhookSvc, publishers...)
	defer pubsubSvc.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsSvc, err := metrics.NewService(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	escrowSvc, err := escrow.NewService(repoManager, pubsubSvc, metricsSvc)
	if err != nil {
		return fmt.Errorf("failed to init escrow service: %w", err)
	}
	ledgerSvc, err := ledger.NewService(repoManager)
	if err != nil {
		return fmt.Errorf("failed to init ledger service: %w", err)
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:   fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey)),
		EscrowSvc: escrowSvc,
		LedgerSvc: ledgerSvc,
		PubSubSvc: pubsubSvc,
		Gatherer:  registry,
	})
	if err != nil {
		return fmt.Errorf("failed to init http interface: %w", err)
	}

	log.Info("starting daemon")
	defer log.Info("shutdown")

	if err := svc.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	defer svc.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	<-sigChan

	log.Info("shutting down daemon")
	return nil
}

func newRepoManager(dbType string) (ports.RepoManager, error) {
	maxRetries := config.GetInt(config.TxMaxRetriesKey)

	switch dbType {
	case config.DBInMemory:
		return inmemory.NewRepoManager(), nil
	case config.DBPostgres:
		return postgresdb.NewRepoManager(
			config.GetString(config.PgConnectAddrKey), maxRetries,
		)
	default:
		return dbbadger.NewRepoManager(
			config.GetDbDir(), maxRetries, log.StandardLogger(),
		)
	}
}
