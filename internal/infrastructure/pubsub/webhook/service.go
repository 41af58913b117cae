package webhookpubsub

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultRateLimit      = 100

	tokenLifetime = 5 * time.Minute
)

type Config struct {
	// Datadir is where webhooks are persisted. Leave empty to keep them in
	// memory.
	Datadir string
	// RequestTimeout is the timeout of every outgoing request.
	RequestTimeout time.Duration
	// RateLimit is the max number of outgoing requests per second.
	RateLimit int
	Logger    badger.Logger
}

type service struct {
	store      *store
	httpClient *client
	limiter    ratelimit.Limiter

	lock     *sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a SecurePubSub that notifies the
// subscribers of a topic by POSTing the message to their endpoints.
func NewWebhookPubSubService(cfg Config) (ports.SecurePubSub, error) {
	var dbDir string
	if len(cfg.Datadir) > 0 {
		dbDir = cfg.Datadir + "/webhooks"
	}
	store, err := newStore(dbDir, cfg.Logger)
	if err != nil {
		return nil, err
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	return &service{
		store:      store,
		httpClient: newHTTPClient(requestTimeout),
		limiter:    ratelimit.New(rateLimit),
		lock:       &sync.RWMutex{},
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	hook, err := NewWebhook(topic, endpoint, secret)
	if err != nil {
		return "", err
	}
	if err := ws.store.add(*hook); err != nil {
		return "", err
	}
	return hook.ID, nil
}

func (ws *service) Unsubscribe(id string) error {
	if err := ws.store.remove(id); err != nil {
		return err
	}

	ws.lock.Lock()
	defer ws.lock.Unlock()
	delete(ws.breakers, id)
	return nil
}

// ListSubscriptionsForTopic returns the webhooks for the given topic, along
// with those for any topic. For the any topic itself, all webhooks are
// returned.
func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	hooks, err := ws.listForTopic(topic)
	if err != nil {
		log.WithError(err).Warn("failed to list webhooks")
		return nil
	}
	return hooks.toPortable()
}

func (ws *service) Publish(topic, message string) error {
	hooks, err := ws.listForTopic(topic)
	if err != nil {
		return err
	}

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return ws.doRequest(hook, topic, message) })
	}
	return eg.Wait()
}

func (ws *service) Close() error {
	return ws.store.close()
}

func (ws *service) listForTopic(topic string) (webhooks, error) {
	if topic == ports.AnyTopic {
		return ws.store.listForTopic("")
	}

	hooks, err := ws.store.listForTopic(topic)
	if err != nil {
		return nil, err
	}
	hooksForAnyTopic, err := ws.store.listForTopic(ports.AnyTopic)
	if err != nil {
		return nil, err
	}
	return append(hooks, hooksForAnyTopic...), nil
}

func (ws *service) doRequest(hook Webhook, topic, payload string) error {
	ws.limiter.Take()

	_, err := ws.breaker(hook.ID).Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if hook.IsSecured() {
			tokenString, err := newToken(hook.Secret, topic)
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(hook.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(
				"webhook %s responded with status %d: %s", hook.ID, status, resp,
			)
		}
		return nil, nil
	})
	return err
}

// breaker returns the circuit breaker of the given webhook so that an
// unresponsive endpoint does not affect the others.
func (ws *service) breaker(id string) *gobreaker.CircuitBreaker {
	ws.lock.RLock()
	cb, ok := ws.breakers[id]
	ws.lock.RUnlock()
	if ok {
		return cb
	}

	ws.lock.Lock()
	defer ws.lock.Unlock()
	if cb, ok := ws.breakers[id]; ok {
		return cb
	}
	cb = newCircuitBreaker(id)
	ws.breakers[id] = cb
	return cb
}

func newToken(secret, topic string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(tokenLifetime).Unix(),
		Subject:   topic,
	})
	return token.SignedString([]byte(secret))
}
