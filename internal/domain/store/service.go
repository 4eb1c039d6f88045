package store

import (
	"context"
	"sync"

	"github.com/yuzvak/retail-coordination-service/internal/application/ports"
	"github.com/yuzvak/retail-coordination-service/internal/domain/checkout"
	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// StockRepository is the query-and-transaction contract of the store's
// persistence layer.
type StockRepository interface {
	GetProductWithStockItem(ctx context.Context, barcode string) (*inventory.Product, error)
	AvailableStock(ctx context.Context, productIDs []int) ([]inventory.ProductAmount, error)
	LowStockItems(ctx context.Context) ([]inventory.StockItem, error)
	AccountSale(ctx context.Context, lines []events.SaleLine) error
	// ReserveForTransfer decrements available stock for all items or fails
	// the whole call with ErrProductNotAvailable.
	ReserveForTransfer(ctx context.Context, items []inventory.ProductAmount) error
	AddIncoming(ctx context.Context, items []inventory.ProductAmount) error
}

type Dispatcher interface {
	DispatchProductsFromOtherStores(ctx context.Context, storeID int, required []inventory.ProductAmount) ([]inventory.ProductAmount, error)
}

// Service ties one store's cash desks, stock and rebalancing together. It
// consumes the store topic: AccountSale updates stock and triggers the
// low-stock check, ExpressModeEnabled commands flip the named desk.
type Service struct {
	id   int
	name string

	repo       StockRepository
	bus        ports.EventBus
	dispatcher Dispatcher
	log        *logger.Logger

	desksMu sync.RWMutex
	desks   map[string]*checkout.CashDesk

	// lowStockMu keeps one low-stock check in flight at a time so a sale
	// and the scheduler cannot double-request the same shortage.
	lowStockMu sync.Mutex
}

func NewService(
	id int,
	name string,
	repo StockRepository,
	bus ports.EventBus,
	dispatcher Dispatcher,
	log *logger.Logger,
) *Service {
	return &Service{
		id:         id,
		name:       name,
		repo:       repo,
		bus:        bus,
		dispatcher: dispatcher,
		log:        log.WithField("store", name),
		desks:      make(map[string]*checkout.CashDesk),
	}
}

func (s *Service) ID() int {
	return s.id
}

func (s *Service) Name() string {
	return s.name
}

func (s *Service) RegisterDesk(desk *checkout.CashDesk) {
	s.desksMu.Lock()
	defer s.desksMu.Unlock()
	s.desks[desk.Name()] = desk
}

func (s *Service) Desk(name string) (*checkout.CashDesk, error) {
	s.desksMu.RLock()
	defer s.desksMu.RUnlock()
	desk, ok := s.desks[name]
	if !ok {
		return nil, domainErrors.ErrUnknownCheckout
	}
	return desk, nil
}

// Start subscribes the service to its store topic and returns the
// unsubscribe function.
func (s *Service) Start() func() {
	mux := events.NewMux()
	mux.On(events.KindAccountSale, s.handleAccountSale)
	mux.On(events.KindExpressModeEnabled, s.handleExpressModeEnabled)
	return s.bus.Subscribe(events.StoreTopic(s.name), mux.Handle)
}

func (s *Service) handleAccountSale(ctx context.Context, env events.Envelope) {
	payload, err := env.DecodePayload()
	if err != nil {
		s.log.Error("Failed to decode account-sale event", "error", err)
		return
	}
	accountSale, ok := payload.(*events.AccountSale)
	if !ok {
		return
	}

	if err := s.repo.AccountSale(ctx, accountSale.Lines); err != nil {
		s.log.Error("Failed to account sale",
			"checkout", accountSale.CheckoutName,
			"lines", len(accountSale.Lines),
			"error", err)
		return
	}

	// A low-stock check can hold a full dispatch, solver run included, for
	// many seconds. It must not stall the topic's delivery goroutine, so it
	// runs detached; lowStockMu keeps concurrent checks from overlapping.
	go func() {
		if err := s.CheckLowStock(context.Background()); err != nil {
			s.log.Error("Low-stock check failed", "error", err)
		}
	}()
}

func (s *Service) handleExpressModeEnabled(ctx context.Context, env events.Envelope) {
	payload, err := env.DecodePayload()
	if err != nil {
		s.log.Error("Failed to decode express command", "error", err)
		return
	}
	enabled, ok := payload.(*events.ExpressModeEnabled)
	if !ok {
		return
	}

	desk, err := s.Desk(enabled.CheckoutName)
	if err != nil {
		s.log.Warn("Express command for unknown checkout", "checkout", enabled.CheckoutName)
		return
	}
	desk.EnableExpressMode(ctx)
}

// CheckLowStock inspects local stock and, if any item is under its minimum
// after counting incoming units, asks the dispatcher for replenishment from
// sibling stores. Granted amounts are recorded as incoming stock; this
// periodic re-check is the only retry mechanism in the rebalancing path.
func (s *Service) CheckLowStock(ctx context.Context) error {
	s.lowStockMu.Lock()
	defer s.lowStockMu.Unlock()

	low, err := s.repo.LowStockItems(ctx)
	if err != nil {
		return err
	}
	if len(low) == 0 {
		return nil
	}

	required := make([]inventory.ProductAmount, 0, len(low))
	for _, item := range low {
		amount := item.OrderAmount()
		if amount <= 0 {
			continue
		}
		required = append(required, inventory.ProductAmount{
			ProductID: item.ID,
			Amount:    amount,
		})
	}
	if len(required) == 0 {
		return nil
	}

	s.log.Info("Low stock detected, requesting rebalancing",
		"products", len(required))

	granted, err := s.dispatcher.DispatchProductsFromOtherStores(ctx, s.id, required)
	if err != nil {
		return err
	}
	if len(granted) == 0 {
		return nil
	}

	// The dispatcher preserves duplicate products across supplying stores;
	// they are summed here before the incoming counters are raised.
	incoming := sumByProduct(granted)
	if err := s.repo.AddIncoming(ctx, incoming); err != nil {
		return err
	}

	s.log.Info("Incoming stock recorded", "products", len(incoming))
	return nil
}

// ReserveForTransfer serves a sibling store's reservation call.
func (s *Service) ReserveForTransfer(ctx context.Context, destinationStore string, items []inventory.ProductAmount) error {
	if err := s.repo.ReserveForTransfer(ctx, items); err != nil {
		s.log.Warn("Reservation rejected",
			"destination", destinationStore,
			"items", len(items),
			"error", err)
		return err
	}

	s.log.Info("Stock reserved for transfer",
		"destination", destinationStore,
		"items", len(items))
	return nil
}

func (s *Service) AvailableStock(ctx context.Context, productIDs []int) ([]inventory.ProductAmount, error) {
	return s.repo.AvailableStock(ctx, productIDs)
}

func sumByProduct(amounts []inventory.ProductAmount) []inventory.ProductAmount {
	totals := make(map[int]int)
	order := make([]int, 0, len(amounts))
	for _, pa := range amounts {
		if _, seen := totals[pa.ProductID]; !seen {
			order = append(order, pa.ProductID)
		}
		totals[pa.ProductID] += pa.Amount
	}

	summed := make([]inventory.ProductAmount, 0, len(order))
	for _, id := range order {
		summed = append(summed, inventory.ProductAmount{ProductID: id, Amount: totals[id]})
	}
	return summed
}
