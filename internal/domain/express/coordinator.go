package express

import (
	"context"
	"sync"

	"github.com/yuzvak/retail-coordination-service/internal/application/ports"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/clock"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// Coordinator watches SaleRegistered summaries of every checkout of one
// store and publishes ExpressModeEnabled commands. The policy only enables;
// express mode ends only through the explicit cashier action at the desk.
type Coordinator struct {
	storeName string
	policy    Policy
	bus       ports.EventBus
	clk       clock.Clock
	log       *logger.Logger

	mu         sync.Mutex
	evaluators map[string]*Evaluator
	enabled    map[string]bool
}

func NewCoordinator(
	storeName string,
	policy Policy,
	bus ports.EventBus,
	clk clock.Clock,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		storeName:  storeName,
		policy:     policy,
		bus:        bus,
		clk:        clk,
		log:        log.WithField("component", "express-coordinator"),
		evaluators: make(map[string]*Evaluator),
		enabled:    make(map[string]bool),
	}
}

// Start subscribes the coordinator to the store topic and returns the
// unsubscribe function.
func (c *Coordinator) Start() func() {
	mux := events.NewMux()
	mux.On(events.KindSaleRegistered, c.handleSaleRegistered)
	return c.bus.Subscribe(events.StoreTopic(c.storeName), mux.Handle)
}

func (c *Coordinator) handleSaleRegistered(ctx context.Context, env events.Envelope) {
	payload, err := env.DecodePayload()
	if err != nil {
		c.log.Error("Failed to decode sale summary", "error", err)
		return
	}
	registered, ok := payload.(*events.SaleRegistered)
	if !ok || registered.CheckoutName == "" {
		return
	}

	ev := c.evaluator(registered.CheckoutName)
	ev.Record(SalesRecord{
		Time:        env.Timestamp,
		ItemCount:   registered.ItemCount,
		PaymentMode: registered.PaymentMode,
	})

	if !ev.ShouldBeExpress() {
		return
	}

	c.mu.Lock()
	alreadyEnabled := c.enabled[registered.CheckoutName]
	if !alreadyEnabled {
		c.enabled[registered.CheckoutName] = true
	}
	c.mu.Unlock()

	if alreadyEnabled {
		return
	}

	env, err = events.NewEnvelope(
		events.StoreTopic(c.storeName),
		events.KindExpressModeEnabled,
		events.ExpressModeEnabled{CheckoutName: registered.CheckoutName},
	)
	if err != nil {
		c.log.Error("Failed to build express command", "error", err)
		return
	}
	if err := c.bus.Publish(ctx, env); err != nil {
		c.log.Error("Failed to publish express command",
			"checkout", registered.CheckoutName, "error", err)
		return
	}
	c.log.Info("Express mode enabled", "checkout", registered.CheckoutName)
}

// NoteDisabled clears the enabled flag after a cashier disabled express
// mode, so a later rising edge publishes again.
func (c *Coordinator) NoteDisabled(checkoutName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.enabled, checkoutName)
}

func (c *Coordinator) evaluator(checkoutName string) *Evaluator {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.evaluators[checkoutName]
	if !ok {
		ev = NewEvaluator(c.policy, c.clk)
		c.evaluators[checkoutName] = ev
	}
	return ev
}
