package natspubsub_test

import (
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	natspubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/nats"
)

const natsURLEnvVar = "ESCROW_NATS_TEST_URL"

func TestSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, topic, expected string
	}{
		{"escrow.events", ports.OfferMadeTopic, "escrow.events.offer_made"},
		{"escrow.events", ports.OfferTakenTopic, "escrow.events.offer_taken"},
		{"dex", ports.OfferTakenTopic, "dex.offer_taken"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, natspubsub.Subject(tt.prefix, tt.topic))
	}
}

func TestFailingNewPublisher(t *testing.T) {
	t.Parallel()

	_, err := natspubsub.NewPublisher("", "")
	require.Error(t, err)
}

func TestPublish(t *testing.T) {
	url := os.Getenv(natsURLEnvVar)
	if len(url) <= 0 {
		t.Skipf("%s not set", natsURLEnvVar)
	}

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	sub, err := nc.SubscribeSync("test.escrow.>")
	require.NoError(t, err)

	publisher, err := natspubsub.NewPublisher(url, "test.escrow")
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint
		publisher.Close()
	})

	err = publisher.Publish(ports.OfferMadeTopic, `{"event":"OFFER_MADE"}`)
	require.NoError(t, err)

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	require.Equal(t, "test.escrow.offer_made", msg.Subject)
	require.Equal(t, `{"event":"OFFER_MADE"}`, string(msg.Data))
}
