package ports

import (
	"context"

	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
)

// Handler receives one envelope. Delivery is push-based and asynchronous;
// handlers run on the delivery goroutine of their topic and must return
// promptly. Ordering is guaranteed only within a topic relative to a single
// publisher.
type Handler func(ctx context.Context, env events.Envelope)

type EventBus interface {
	Publish(ctx context.Context, env events.Envelope) error
	// Subscribe registers a handler for a topic and returns an unsubscribe
	// function.
	Subscribe(topic string, h Handler) func()
	Close() error
}
