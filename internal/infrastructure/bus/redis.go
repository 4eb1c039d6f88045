package bus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/yuzvak/retail-coordination-service/internal/application/ports"
	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// RedisBus carries the event fabric over redis pub/sub channels, one
// channel per topic. Redis delivers channel messages in publish order, so
// FIFO per publisher per topic holds.
type RedisBus struct {
	client *redis.Client
	log    *logger.Logger

	mu     sync.Mutex
	subs   map[*redis.PubSub]struct{}
	closed bool
}

func NewRedisBus(client *redis.Client, log *logger.Logger) *RedisBus {
	return &RedisBus{
		client: client,
		log:    log.WithField("component", "redis-bus"),
		subs:   make(map[*redis.PubSub]struct{}),
	}
}

func (b *RedisBus) Publish(ctx context.Context, env events.Envelope) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return domainErrors.ErrBusClosed
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, env.Topic, data).Err(); err != nil {
		return err
	}
	monitoring.ObserveEvent(env)
	return nil
}

func (b *RedisBus) Subscribe(topic string, h ports.Handler) func() {
	ps := b.client.Subscribe(context.Background(), topic)

	b.mu.Lock()
	b.subs[ps] = struct{}{}
	b.mu.Unlock()

	go func() {
		for msg := range ps.Channel() {
			var env events.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Error("Dropping malformed envelope", "topic", topic, "error", err)
				continue
			}
			h(context.Background(), env)
		}
	}()

	return func() {
		b.mu.Lock()
		delete(b.subs, ps)
		b.mu.Unlock()
		if err := ps.Close(); err != nil {
			b.log.Warn("Failed to close subscription", "topic", topic, "error", err)
		}
	}
}

func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for ps := range b.subs {
		if err := ps.Close(); err != nil {
			b.log.Warn("Failed to close subscription", "error", err)
		}
	}
	b.subs = make(map[*redis.PubSub]struct{})
	return nil
}
