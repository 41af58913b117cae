package webhookpubsub

import (
	"errors"

	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

var (
	// ErrInvalidTopic is returned whenever attempting to subscribe to an unknown
	// topic.
	ErrInvalidTopic = errors.New("topic is invalid")
	// ErrInvalidEndpoint is returned when the endpoint of a webhook is not a
	// valid URI.
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid URI")
	// ErrWebhookNotFound ...
	ErrWebhookNotFound = ports.ErrSubscriptionNotFound
)
