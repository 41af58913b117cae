package webhookpubsub

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// store persists the webhooks in a dedicated badger db. An empty directory
// makes the store live in memory.
type store struct {
	db *badgerhold.Store
}

func newStore(dbDir string, logger badger.Logger) (*store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if len(dbDir) <= 0 {
		opts = opts.WithInMemory(true)
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("opening webhook db: %w", err)
	}
	return &store{db}, nil
}

func (s *store) add(hook Webhook) error {
	return s.db.Insert(hook.ID, hook)
}

func (s *store) remove(id string) error {
	err := s.db.Delete(id, Webhook{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return ErrWebhookNotFound
	}
	return err
}

// listForTopic returns the webhooks subscribed to the given topic, sorted by
// id. The any topic matches every webhook.
func (s *store) listForTopic(topic string) (webhooks, error) {
	var query *badgerhold.Query
	if topic != "" {
		query = badgerhold.Where("Event").Eq(topic).Index("Event")
	}

	var hooks []Webhook
	if err := s.db.Find(&hooks, query); err != nil {
		return nil, err
	}
	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].ID < hooks[j].ID
	})
	return hooks, nil
}

func (s *store) close() error {
	return s.db.Close()
}
