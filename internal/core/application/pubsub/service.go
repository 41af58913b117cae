package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

var (
	// ErrWebhooksNotEnabled is returned when managing webhooks without a
	// SecurePubSub configured.
	ErrWebhooksNotEnabled = errors.New("webhooks are not enabled")
	// ErrInvalidTopic ...
	ErrInvalidTopic = errors.New("topic must be one of OFFER_MADE, OFFER_TAKEN or *")
)

// Service publishes the escrow events to every configured publisher and
// manages the webhook subscriptions.
type Service struct {
	pubsub     ports.SecurePubSub
	publishers []ports.EventPublisher
}

// NewService returns a service publishing on the given SecurePubSub, if any,
// and on the additional publishers.
func NewService(
	pubsub ports.SecurePubSub, publishers ...ports.EventPublisher,
) *Service {
	all := make([]ports.EventPublisher, 0, len(publishers)+1)
	if pubsub != nil {
		all = append(all, pubsub)
	}
	for _, p := range publishers {
		if p != nil {
			all = append(all, p)
		}
	}
	return &Service{pubsub, all}
}

func (s *Service) AddWebhook(
	_ context.Context, topic, endpoint, secret string,
) (string, error) {
	if s.pubsub == nil {
		return "", ErrWebhooksNotEnabled
	}
	if !isValidTopic(topic) {
		return "", ErrInvalidTopic
	}
	return s.pubsub.Subscribe(topic, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if s.pubsub == nil {
		return ErrWebhooksNotEnabled
	}
	return s.pubsub.Unsubscribe(id)
}

func (s *Service) ListWebhooks(
	_ context.Context, topic string,
) ([]WebhookInfo, error) {
	if s.pubsub == nil {
		return nil, ErrWebhooksNotEnabled
	}
	if topic == "" {
		topic = ports.AnyTopic
	}
	if !isValidTopic(topic) {
		return nil, ErrInvalidTopic
	}

	subs := s.pubsub.ListSubscriptionsForTopic(topic)
	webhooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, newWebhookInfo(sub))
	}
	return webhooks, nil
}

func (s *Service) PublishOfferMadeEvent(
	offer domain.Offer, depositedAmount uint64,
) error {
	event := ports.OfferMadeTopic
	payload := map[string]interface{}{
		"event":            event,
		"offer":            getOfferPayload(offer),
		"deposited_amount": strconv.FormatUint(depositedAmount, 10),
	}
	message, _ := json.Marshal(payload)
	return s.publish(event, string(message))
}

func (s *Service) PublishOfferTakenEvent(settlement domain.Settlement) error {
	event := ports.OfferTakenTopic
	payload := map[string]interface{}{
		"event":                event,
		"offer":                getOfferPayload(settlement.Offer),
		"taker":                settlement.Taker.String(),
		"released_amount":      strconv.FormatUint(settlement.ReleasedAmount, 10),
		"paid_amount":          strconv.FormatUint(settlement.PaidAmount, 10),
		"settlement_timestamp": settlement.SettledAt,
		"settlement_date":      time.Unix(settlement.SettledAt, 0).Format(time.RFC3339),
	}
	message, _ := json.Marshal(payload)
	return s.publish(event, string(message))
}

func (s *Service) Close() {
	for _, p := range s.publishers {
		if err := p.Close(); err != nil {
			log.WithError(err).Warn("failed to close event publisher")
		}
	}
}

func (s *Service) publish(topic, message string) error {
	errs := make([]error, 0)
	for _, p := range s.publishers {
		if err := p.Publish(topic, message); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to publish %s event: %w", topic, errors.Join(errs...))
	}
	return nil
}

func isValidTopic(topic string) bool {
	switch topic {
	case ports.OfferMadeTopic, ports.OfferTakenTopic, ports.AnyTopic:
		return true
	default:
		return false
	}
}
