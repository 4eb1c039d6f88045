package express

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/retail-coordination-service/internal/application/ports"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/clock"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// recordingBus captures publishes synchronously; Subscribe is a no-op so
// the coordinator's handler can be driven directly.
type recordingBus struct {
	mu        sync.Mutex
	published []events.Envelope
}

func (b *recordingBus) Publish(_ context.Context, env events.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, env)
	return nil
}

func (b *recordingBus) Subscribe(string, ports.Handler) func() {
	return func() {}
}

func (b *recordingBus) Close() error {
	return nil
}

func (b *recordingBus) enabledCheckouts(t *testing.T) []string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var names []string
	for _, env := range b.published {
		if env.Kind != events.KindExpressModeEnabled {
			continue
		}
		payload, err := env.DecodePayload()
		require.NoError(t, err)
		names = append(names, payload.(*events.ExpressModeEnabled).CheckoutName)
	}
	return names
}

func saleEnvelope(t *testing.T, ts time.Time, checkoutName string, items int, mode events.PaymentMode) events.Envelope {
	t.Helper()
	payload, err := json.Marshal(events.SaleRegistered{
		CheckoutName: checkoutName,
		ItemCount:    items,
		PaymentMode:  mode,
	})
	require.NoError(t, err)
	return events.Envelope{
		ID:        "test",
		Topic:     events.StoreTopic("downtown"),
		Kind:      events.KindSaleRegistered,
		Timestamp: ts,
		Payload:   payload,
	}
}

// eagerPolicy re-evaluates on every sale so rising edges are immediate.
func eagerPolicy() Policy {
	return Policy{
		EvaluationWindow: time.Hour,
		EvaluationPeriod: 0,
		Threshold:        0.5,
		ItemLimit:        8,
	}
}

func TestCoordinator_EnablesOnceOnRisingEdge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	bus := &recordingBus{}
	c := NewCoordinator("downtown", eagerPolicy(), bus, clk, logger.NewLogger())

	for i := 0; i < 4; i++ {
		c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 3, events.PaymentModeCreditCard))
	}
	assert.Empty(t, bus.enabledCheckouts(t))

	for i := 0; i < 6; i++ {
		c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 3, events.PaymentModeCash))
	}

	assert.Equal(t, []string{"checkout-1"}, bus.enabledCheckouts(t))
}

func TestCoordinator_BelowThresholdNeverEnables(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	bus := &recordingBus{}
	c := NewCoordinator("downtown", eagerPolicy(), bus, clk, logger.NewLogger())

	for i := 0; i < 6; i++ {
		c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 3, events.PaymentModeCreditCard))
	}
	for i := 0; i < 4; i++ {
		c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 3, events.PaymentModeCash))
	}

	assert.Empty(t, bus.enabledCheckouts(t))
}

func TestCoordinator_TracksCheckoutsIndependently(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	bus := &recordingBus{}
	c := NewCoordinator("downtown", eagerPolicy(), bus, clk, logger.NewLogger())

	c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 2, events.PaymentModeCash))
	c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-2", 20, events.PaymentModeCash))

	assert.Equal(t, []string{"checkout-1"}, bus.enabledCheckouts(t))
}

func TestCoordinator_ReenablesAfterCashierDisable(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	bus := &recordingBus{}
	c := NewCoordinator("downtown", eagerPolicy(), bus, clk, logger.NewLogger())

	c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 2, events.PaymentModeCash))
	require.Equal(t, []string{"checkout-1"}, bus.enabledCheckouts(t))

	// Further eligible sales do not repeat the command.
	c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 2, events.PaymentModeCash))
	require.Equal(t, []string{"checkout-1"}, bus.enabledCheckouts(t))

	c.NoteDisabled("checkout-1")
	c.handleSaleRegistered(ctx, saleEnvelope(t, now, "checkout-1", 2, events.PaymentModeCash))
	assert.Equal(t, []string{"checkout-1", "checkout-1"}, bus.enabledCheckouts(t))
}

func TestCoordinator_IgnoresMalformedSummaries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	bus := &recordingBus{}
	c := NewCoordinator("downtown", eagerPolicy(), bus, clk, logger.NewLogger())

	c.handleSaleRegistered(ctx, events.Envelope{
		ID:        "test",
		Topic:     events.StoreTopic("downtown"),
		Kind:      events.KindSaleRegistered,
		Timestamp: now,
		Payload:   json.RawMessage(`{"checkout_name":""}`),
	})

	assert.Empty(t, bus.enabledCheckouts(t))
}
