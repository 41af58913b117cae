// Package httpinterface serves the escrow and ledger services over a JSON
// HTTP api.
//
// The api does not authenticate its callers and must be exposed only to a
// trusted client, such as a wallet backend that signs on behalf of its users.
// Deposits mint funds into any account, transfers move funds out of any
// account that is not a vault, and offers are made and taken on behalf of the
// maker and taker addresses carried by the request bodies.
package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
	"github.com/tdex-network/tdex-escrow/internal/core/application/ledger"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/interfaces"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type ServiceOpts struct {
	Address string

	EscrowSvc *escrow.Service
	LedgerSvc *ledger.Service
	PubSubSvc *pubsub.Service
	// Gatherer, if defined, exposes the collected metrics at /metrics.
	Gatherer prometheus.Gatherer
}

func (o ServiceOpts) validate() error {
	if o.Address == "" {
		return fmt.Errorf("missing listening address")
	}
	if o.EscrowSvc == nil {
		return fmt.Errorf("escrow app service must not be null")
	}
	if o.LedgerSvc == nil {
		return fmt.Errorf("ledger app service must not be null")
	}
	if o.PubSubSvc == nil {
		return fmt.Errorf("pubsub app service must not be null")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

// NewRouter returns the handler serving the escrow API.
func NewRouter(opts ServiceOpts) http.Handler {
	h := &handler{
		escrowSvc: opts.EscrowSvc,
		ledgerSvc: opts.LedgerSvc,
		pubsubSvc: opts.PubSubSvc,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimw.RealIP)
	r.Use(logger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.healthz)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(
			opts.Gatherer, promhttp.HandlerOpts{},
		))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/offers", func(r chi.Router) {
			r.Post("/", h.makeOffer)
			r.Get("/", h.listOffers)
			r.Get("/{address}", h.getOffer)
			r.Post("/{address}/take", h.takeOffer)
		})
		r.Get("/addresses/offer", h.offerAddress)

		r.Route("/accounts/{account}/balances", func(r chi.Router) {
			r.Get("/", h.listBalances)
			r.Get("/{asset}", h.getBalance)
		})
		r.Post("/deposits", h.deposit)
		r.Post("/transfers", h.transfer)

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/", h.addWebhook)
			r.Get("/", h.listWebhooks)
			r.Delete("/{id}", h.removeWebhook)
		})
	})

	return r
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server stopped unexpectedly")
		}
	}()

	log.Infof("http interface listening on %s", lis.Addr())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
	}
	log.Debug("disabled http interface")
}
