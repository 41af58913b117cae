package webhookpubsub

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

var topics = map[string]struct{}{
	ports.OfferMadeTopic:  {},
	ports.OfferTakenTopic: {},
	ports.AnyTopic:        {},
}

// Webhook is a subscription to a topic. Messages are POSTed to Endpoint and,
// if Secret is set, they're authenticated with a JWT signed with it.
type Webhook struct {
	ID       string `json:"id"`
	Event    string `json:"event" badgerhold:"index"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

func NewWebhook(topic, endpoint, secret string) (*Webhook, error) {
	if _, ok := topics[topic]; !ok {
		return nil, ErrInvalidTopic
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, ErrInvalidEndpoint
	}
	id := uuid.New().String()
	return &Webhook{id, topic, endpoint, secret}, nil
}

func (h *Webhook) Topic() string {
	return h.Event
}

func (h *Webhook) Id() string {
	return h.ID
}

func (h *Webhook) NotifyAt() string {
	return h.Endpoint
}

func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}

type webhooks []Webhook

func (w webhooks) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(w))
	for i := range w {
		hook := w[i]
		subs = append(subs, &hook)
	}
	return subs
}
