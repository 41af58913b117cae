package ports

import "errors"

// ErrSubscriptionNotFound is returned when unsubscribing with an unknown id.
var ErrSubscriptionNotFound = errors.New("subscription not found")

const (
	AnyTopic        = "*"
	OfferMadeTopic  = "OFFER_MADE"
	OfferTakenTopic = "OFFER_TAKEN"
)

// EventPublisher delivers the messages of a topic to some external consumer.
type EventPublisher interface {
	// Publish publishes a message for a certain topic.
	Publish(topic string, message string) error
	// Close releases the resources held by the publisher.
	Close() error
}

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// SecurePubSub defines the methods of a pubsub service that, along with
// publishing messages, lets clients subscribe to topics. Subscriptions can be
// secured with a secret shared with the subscriber.
type SecurePubSub interface {
	EventPublisher
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed for
	// a certain topic.
	ListSubscriptionsForTopic(topic string) []Subscription
}
