package bus

import (
	"context"
	"sort"
	"sync"

	"github.com/yuzvak/retail-coordination-service/internal/application/ports"
	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

const topicBufferSize = 256

// MemoryBus is the in-process event fabric. Each topic owns one delivery
// goroutine fed by a buffered channel, which gives FIFO delivery per topic
// and keeps publishers decoupled from handler execution.
type MemoryBus struct {
	log  *logger.Logger
	done chan struct{}

	mu     sync.Mutex
	topics map[string]*memoryTopic
	closed bool
}

type memoryTopic struct {
	ch chan events.Envelope

	mu     sync.RWMutex
	subs   map[int]ports.Handler
	nextID int
}

func NewMemoryBus(log *logger.Logger) *MemoryBus {
	return &MemoryBus{
		log:    log,
		done:   make(chan struct{}),
		topics: make(map[string]*memoryTopic),
	}
}

func (b *MemoryBus) Publish(ctx context.Context, env events.Envelope) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return domainErrors.ErrBusClosed
	}
	t := b.topicLocked(env.Topic)
	b.mu.Unlock()

	// Topic channels are never closed; a publisher parked here while the
	// bus shuts down is released through done instead.
	select {
	case t.ch <- env:
		monitoring.ObserveEvent(env)
		return nil
	case <-b.done:
		return domainErrors.ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBus) Subscribe(topic string, h ports.Handler) func() {
	b.mu.Lock()
	t := b.topicLocked(topic)
	b.mu.Unlock()

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = h
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	return nil
}

func (b *MemoryBus) topicLocked(name string) *memoryTopic {
	t, ok := b.topics[name]
	if !ok {
		t = &memoryTopic{
			ch:   make(chan events.Envelope, topicBufferSize),
			subs: make(map[int]ports.Handler),
		}
		b.topics[name] = t
		go t.deliver(b.done)
	}
	return t
}

// deliver runs envelopes through the topic's handlers in subscription
// order, one envelope at a time, until the bus shuts down.
func (t *memoryTopic) deliver(done <-chan struct{}) {
	for {
		var env events.Envelope
		select {
		case env = <-t.ch:
		case <-done:
			return
		}

		t.mu.RLock()
		ids := make([]int, 0, len(t.subs))
		for id := range t.subs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		handlers := make([]ports.Handler, 0, len(ids))
		for _, id := range ids {
			handlers = append(handlers, t.subs[id])
		}
		t.mu.RUnlock()

		for _, h := range handlers {
			h(context.Background(), env)
		}
	}
}
