package events

import (
	"context"
	"sort"
)

// Mux routes delivered envelopes to per-kind handlers. Registration happens
// during wiring, before any delivery, so Handle reads without locking.
type Mux struct {
	handlers map[Kind]func(context.Context, Envelope)
}

func NewMux() *Mux {
	return &Mux{
		handlers: make(map[Kind]func(context.Context, Envelope)),
	}
}

func (m *Mux) On(kind Kind, h func(context.Context, Envelope)) {
	m.handlers[kind] = h
}

// Handle dispatches the envelope to its kind's handler. Kinds without a
// registered handler are ignored.
func (m *Mux) Handle(ctx context.Context, env Envelope) {
	if h, ok := m.handlers[env.Kind]; ok {
		h(ctx, env)
	}
}

// Kinds lists the registered kinds in stable order.
func (m *Mux) Kinds() []Kind {
	kinds := make([]Kind, 0, len(m.handlers))
	for k := range m.handlers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
