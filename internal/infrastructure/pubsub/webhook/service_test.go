package webhookpubsub_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	webhookpubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/webhook"
	"github.com/thanhpk/randstr"
)

const testMessage = `{"event":"OFFER_TAKEN","taker":"11111111111111111111111111111111"}`

type request struct {
	path    string
	payload string
	token   string
}

type testServer struct {
	*httptest.Server
	lock     sync.Mutex
	requests []request
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Bad method", http.StatusMethodNotAllowed)
				return
			}
			if r.Header.Get("Content-Type") == "" {
				http.Error(w, "Missing Content-Type header", http.StatusUnsupportedMediaType)
				return
			}
			if r.URL.Path == "/failing" {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}

			defer r.Body.Close()
			payload, _ := io.ReadAll(r.Body)
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

			ts.lock.Lock()
			ts.requests = append(ts.requests, request{r.URL.Path, string(payload), token})
			ts.lock.Unlock()

			fmt.Fprintf(w, "Done")
		},
	))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) requestsFor(path string) []request {
	ts.lock.Lock()
	defer ts.lock.Unlock()

	reqs := make([]request, 0)
	for _, r := range ts.requests {
		if r.path == path {
			reqs = append(reqs, r)
		}
	}
	return reqs
}

func newTestService(t *testing.T) ports.SecurePubSub {
	svc, err := webhookpubsub.NewWebhookPubSubService(webhookpubsub.Config{
		Datadir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint
		svc.Close()
	})
	return svc
}

func TestPubSubService(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	svc := newTestService(t)
	secret := randstr.Hex(32)

	takenID, err := svc.Subscribe(ports.OfferTakenTopic, server.URL+"/taken", secret)
	require.NoError(t, err)
	require.NotEmpty(t, takenID)

	madeID, err := svc.Subscribe(ports.OfferMadeTopic, server.URL+"/made", "")
	require.NoError(t, err)

	anyID, err := svc.Subscribe(ports.AnyTopic, server.URL+"/all", "")
	require.NoError(t, err)

	subs := svc.ListSubscriptionsForTopic(ports.OfferTakenTopic)
	require.Len(t, subs, 2)
	ids := []string{subs[0].Id(), subs[1].Id()}
	require.ElementsMatch(t, []string{takenID, anyID}, ids)

	subs = svc.ListSubscriptionsForTopic(ports.AnyTopic)
	require.Len(t, subs, 3)

	err = svc.Publish(ports.OfferTakenTopic, testMessage)
	require.NoError(t, err)

	reqs := server.requestsFor("/taken")
	require.Len(t, reqs, 1)
	require.Equal(t, testMessage, reqs[0].payload)

	token, err := jwt.Parse(reqs[0].token, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	require.Equal(t, jwt.SigningMethodHS256, token.Method)

	reqs = server.requestsFor("/all")
	require.Len(t, reqs, 1)
	require.Empty(t, reqs[0].token)
	require.Empty(t, server.requestsFor("/made"))

	err = svc.Unsubscribe(madeID)
	require.NoError(t, err)
	err = svc.Unsubscribe(madeID)
	require.ErrorIs(t, err, webhookpubsub.ErrWebhookNotFound)

	subs = svc.ListSubscriptionsForTopic(ports.OfferMadeTopic)
	require.Len(t, subs, 1)
	require.Equal(t, anyID, subs[0].Id())
}

func TestFailingSubscribe(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.Subscribe("TRADE_SETTLED", "http://localhost/hook", "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidTopic)

	_, err = svc.Subscribe(ports.AnyTopic, "not an endpoint", "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidEndpoint)
}

func TestFailingPublish(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	svc := newTestService(t)

	_, err := svc.Subscribe(ports.OfferMadeTopic, server.URL+"/failing", "")
	require.NoError(t, err)
	_, err = svc.Subscribe(ports.OfferMadeTopic, server.URL+"/made", "")
	require.NoError(t, err)

	err = svc.Publish(ports.OfferMadeTopic, testMessage)
	require.Error(t, err)

	// A failing endpoint does not prevent delivery to the others.
	require.Len(t, server.requestsFor("/made"), 1)

	// Nothing to deliver.
	err = svc.Publish(ports.OfferTakenTopic, testMessage)
	require.NoError(t, err)
}

func TestWebhooksArePersisted(t *testing.T) {
	datadir := t.TempDir()

	svc, err := webhookpubsub.NewWebhookPubSubService(webhookpubsub.Config{
		Datadir: datadir,
	})
	require.NoError(t, err)

	id, err := svc.Subscribe(ports.OfferMadeTopic, "http://localhost/hook", "secret")
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	svc, err = webhookpubsub.NewWebhookPubSubService(webhookpubsub.Config{
		Datadir: datadir,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint
		svc.Close()
	})

	subs := svc.ListSubscriptionsForTopic(ports.OfferMadeTopic)
	require.Len(t, subs, 1)
	require.Equal(t, id, subs[0].Id())
	require.True(t, subs[0].IsSecured())
}
