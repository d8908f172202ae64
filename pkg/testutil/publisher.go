package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/progression/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mu        sync.Mutex
	published []PublishedPack
}

type PublishedPack struct {
	Topic string
	Pack  *pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	m.mu.Lock()
	m.published = append(m.published, PublishedPack{Topic: topic, Pack: pack})
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return nil
}

// Published returns all packs passed to Publish.
func (m *MockPublisher) Published() []PublishedPack {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]PublishedPack(nil), m.published...)
}
