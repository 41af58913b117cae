package natspubsub

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const (
	DefaultSubjectPrefix = "escrow.events"

	connectTimeout = 5 * time.Second
	flushTimeout   = 5 * time.Second
)

type publisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewPublisher connects to the NATS server at the given url and returns an
// EventPublisher that publishes every message on the subject
// <subjectPrefix>.<topic>.
func NewPublisher(url, subjectPrefix string) (ports.EventPublisher, error) {
	if len(url) <= 0 {
		return nil, fmt.Errorf("missing nats url")
	}
	if len(subjectPrefix) <= 0 {
		subjectPrefix = DefaultSubjectPrefix
	}

	conn, err := nats.Connect(
		url,
		nats.Name("tdex-escrow"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("disconnected from nats server")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("reconnected to nats server %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats server: %w", err)
	}

	return &publisher{conn, strings.TrimSuffix(subjectPrefix, ".")}, nil
}

func (p *publisher) Publish(topic, message string) error {
	subject := Subject(p.subjectPrefix, topic)
	if err := p.conn.Publish(subject, []byte(message)); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return p.conn.FlushTimeout(flushTimeout)
}

func (p *publisher) Close() error {
	return p.conn.Drain()
}

// Subject returns the subject where messages of the given topic are
// published.
func Subject(prefix, topic string) string {
	return fmt.Sprintf("%s.%s", prefix, strings.ToLower(topic))
}
