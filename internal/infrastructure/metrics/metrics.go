package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const namespace = "escrow"

var errorKinds = []struct {
	err  error
	kind string
}{
	{domain.ErrInvalidAmount, "invalid_amount"},
	{domain.ErrInvalidAddress, "invalid_address"},
	{domain.ErrInsufficientFunds, "insufficient_funds"},
	{domain.ErrOfferAlreadyExists, "already_exists"},
	{domain.ErrOfferNotFound, "not_found"},
	{domain.ErrVaultAlreadyExists, "already_exists"},
	{domain.ErrVaultCustody, "vault_custody"},
	{domain.ErrVaultEmpty, "vault_empty"},
	{domain.ErrVaultNotEmpty, "vault_not_empty"},
}

type service struct {
	offersMade     prometheus.Counter
	offersTaken    prometheus.Counter
	amountOffered  prometheus.Counter
	amountReleased prometheus.Counter
	amountPaid     prometheus.Counter
	failures       *prometheus.CounterVec
}

// NewService registers the escrow metrics with the given registerer and
// returns the ports.Metrics recording them.
func NewService(registerer prometheus.Registerer) (ports.Metrics, error) {
	svc := &service{
		offersMade: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_made_total",
			Help:      "Number of offers made.",
		}),
		offersTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_taken_total",
			Help:      "Number of offers settled.",
		}),
		amountOffered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offered_amount_total",
			Help:      "Sum of the amounts deposited into vaults, in base units.",
		}),
		amountReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "released_amount_total",
			Help:      "Sum of the amounts released from vaults, in base units.",
		}),
		amountPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paid_amount_total",
			Help:      "Sum of the amounts paid by takers to makers, in base units.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Number of failed operations by operation and error kind.",
		}, []string{"operation", "kind"}),
	}

	for _, c := range []prometheus.Collector{
		svc.offersMade,
		svc.offersTaken,
		svc.amountOffered,
		svc.amountReleased,
		svc.amountPaid,
		svc.failures,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func (s *service) OfferMade(offeredAmount, _ uint64) {
	s.offersMade.Inc()
	s.amountOffered.Add(float64(offeredAmount))
}

func (s *service) OfferTaken(releasedAmount, paidAmount uint64) {
	s.offersTaken.Inc()
	s.amountReleased.Add(float64(releasedAmount))
	s.amountPaid.Add(float64(paidAmount))
}

func (s *service) OperationFailed(operation string, err error) {
	s.failures.WithLabelValues(operation, errorKind(err)).Inc()
}

func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
