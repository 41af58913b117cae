package escrow_test

import (
	"github.com/stretchr/testify/mock"
)

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) OfferMade(offeredAmount, wantedAmount uint64) {
	m.Called(offeredAmount, wantedAmount)
}

func (m *mockMetrics) OfferTaken(releasedAmount, paidAmount uint64) {
	m.Called(releasedAmount, paidAmount)
}

func (m *mockMetrics) OperationFailed(operation string, err error) {
	m.Called(operation, err)
}

type message struct {
	topic   string
	payload string
}

// chanPublisher forwards every published message to a channel.
type chanPublisher struct {
	messages chan message
}

func newChanPublisher() *chanPublisher {
	return &chanPublisher{make(chan message, 100)}
}

func (p *chanPublisher) Publish(topic, payload string) error {
	p.messages <- message{topic, payload}
	return nil
}

func (p *chanPublisher) Close() error {
	return nil
}
