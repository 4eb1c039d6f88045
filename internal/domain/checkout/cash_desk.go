package checkout

import (
	"context"
	"errors"
	"sync"

	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/generator"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// InventoryQuery resolves a scanned barcode to a product with its sales
// price. A miss is reported as errors.ErrNoSuchProduct; any other error
// means the inventory is unreachable.
type InventoryQuery interface {
	GetProductWithStockItem(ctx context.Context, barcode string) (*inventory.Product, error)
}

type DebitResult string

const (
	DebitOK                   DebitResult = "ok"
	DebitInvalidTransactionID DebitResult = "invalid_transaction_id"
	DebitInsufficientBalance  DebitResult = "insufficient_balance"
)

// Bank validates cards and debits them. ValidateCard returns an empty token
// for an invalid card.
type Bank interface {
	ValidateCard(ctx context.Context, cardInfo, pin string) (string, error)
	DebitCard(ctx context.Context, token string) (DebitResult, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// CashDesk drives one sale at a time through the checkout state machine.
// All actions are serialized by the desk's mutex; exactly one State value
// holds at any time and transitions happen only through the action set.
type CashDesk struct {
	name      string
	storeName string

	inventory InventoryQuery
	bank      Bank
	publisher EventPublisher
	codes     *generator.CodeGenerator
	log       *logger.Logger

	expressItemLimit int

	mu      sync.Mutex
	state   State
	sale    *Sale
	express bool
}

func NewCashDesk(
	name string,
	storeName string,
	inventoryQuery InventoryQuery,
	bank Bank,
	publisher EventPublisher,
	expressItemLimit int,
	log *logger.Logger,
) *CashDesk {
	return &CashDesk{
		name:             name,
		storeName:        storeName,
		inventory:        inventoryQuery,
		bank:             bank,
		publisher:        publisher,
		codes:            generator.NewCodeGenerator(),
		log:              log.WithField("checkout", name),
		expressItemLimit: expressItemLimit,
		state:            StateExpectingSale,
		sale:             NewSale(),
	}
}

func (d *CashDesk) Name() string {
	return d.name
}

func (d *CashDesk) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *CashDesk) ExpressMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.express
}

func (d *CashDesk) ItemCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sale.ItemCount()
}

func (d *CashDesk) RunningTotal() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sale.RunningTotal()
}

func (d *CashDesk) guard(action string, legal ...State) error {
	if !stateIn(d.state, legal) {
		return &InvalidTransitionError{
			Action:  action,
			Current: d.state,
			Legal:   legal,
		}
	}
	return nil
}

// StartSale clears any previous sale and opens a new one.
func (d *CashDesk) StartSale(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("StartSale",
		StateExpectingSale, StateExpectingItems, StateExpectingPayment,
		StatePayingByCash, StateExpectingCardInfo, StatePayingByCreditCard,
	); err != nil {
		return err
	}

	d.sale = NewSale()
	d.state = StateExpectingItems
	d.publishCheckout(ctx, events.KindSaleStarted, events.SaleStarted{CheckoutName: d.name})
	return nil
}

// AddItem resolves the barcode and appends a line item to the open sale.
// In express mode, items beyond the express limit are ignored.
func (d *CashDesk) AddItem(ctx context.Context, barcode string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("AddItem", StateExpectingItems); err != nil {
		return err
	}

	if d.express && d.sale.ItemCount() >= d.expressItemLimit {
		d.log.Info("Item ignored, express limit reached",
			"barcode", barcode,
			"item_count", d.sale.ItemCount(),
			"express_item_limit", d.expressItemLimit,
		)
		return nil
	}

	product, err := d.inventory.GetProductWithStockItem(ctx, barcode)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNoSuchProduct) {
			d.publishCheckout(ctx, events.KindInvalidBarcode, events.InvalidBarcode{Barcode: barcode})
			return nil
		}
		d.log.Error("Inventory query failed", "barcode", barcode, "error", err)
		return err
	}

	d.sale.AddLine(LineItem{
		ProductID:   product.ID,
		Barcode:     product.Barcode,
		ProductName: product.Name,
		UnitPrice:   product.SalesPrice,
	})
	d.publishCheckout(ctx, events.KindRunningTotalChanged, events.RunningTotalChanged{
		ProductName:  product.Name,
		UnitPrice:    product.SalesPrice,
		RunningTotal: d.sale.RunningTotal(),
	})
	return nil
}

// FinishSale closes the item phase. A sale without items stays open.
func (d *CashDesk) FinishSale(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("FinishSale", StateExpectingItems); err != nil {
		return err
	}

	if d.sale.ItemCount() == 0 {
		return nil
	}

	d.state = StateExpectingPayment
	d.publishCheckout(ctx, events.KindSaleFinished, events.SaleFinished{CheckoutName: d.name})
	return nil
}

// SelectPaymentMode chooses cash or credit card. Credit card is rejected
// while the desk runs in express mode.
func (d *CashDesk) SelectPaymentMode(ctx context.Context, mode events.PaymentMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("SelectPaymentMode",
		StateExpectingPayment, StateExpectingCardInfo, StatePayingByCreditCard,
	); err != nil {
		return err
	}

	switch mode {
	case events.PaymentModeCash:
		d.sale.paymentMode = events.PaymentModeCash
		d.state = StatePayingByCash
		d.publishCheckout(ctx, events.KindPaymentModeSelected, events.PaymentModeSelected{Mode: mode})
		return nil
	case events.PaymentModeCreditCard:
		if d.express {
			d.publishCheckout(ctx, events.KindPaymentModeRejected, events.PaymentModeRejected{
				Mode:   mode,
				Reason: "credit card not accepted in express mode",
			})
			return nil
		}
		d.sale.paymentMode = events.PaymentModeCreditCard
		d.state = StateExpectingCardInfo
		d.publishCheckout(ctx, events.KindPaymentModeSelected, events.PaymentModeSelected{Mode: mode})
		return nil
	default:
		d.publishCheckout(ctx, events.KindPaymentModeRejected, events.PaymentModeRejected{
			Mode:   mode,
			Reason: "unknown payment mode",
		})
		return nil
	}
}

// StartCashPayment computes the change for the handed-over amount.
func (d *CashDesk) StartCashPayment(ctx context.Context, amount float64) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("StartCashPayment", StatePayingByCash); err != nil {
		return 0, err
	}

	change := RoundCents(amount - d.sale.RunningTotal())
	if change < 0 {
		return 0, domainErrors.ErrInsufficientCash
	}

	d.state = StatePaidByCash
	d.publishCheckout(ctx, events.KindChangeCalculated, events.ChangeCalculated{Amount: change})
	return change, nil
}

// FinishCashPayment commits the sale.
func (d *CashDesk) FinishCashPayment(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("FinishCashPayment", StatePaidByCash); err != nil {
		return err
	}

	d.commitSale(ctx)
	return nil
}

// StartCreditCardPayment stores the scanned card info. Rescanning while
// already paying restarts the card attempt.
func (d *CashDesk) StartCreditCardPayment(ctx context.Context, cardInfo string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("StartCreditCardPayment", StateExpectingCardInfo, StatePayingByCreditCard); err != nil {
		return err
	}

	d.sale.cardInfo = cardInfo
	d.state = StatePayingByCreditCard
	return nil
}

// FinishCreditCardPayment validates and debits the card. A rejected debit
// sends the desk back to card scanning; a bank outage leaves the state
// untouched.
func (d *CashDesk) FinishCreditCardPayment(ctx context.Context, pin string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.guard("FinishCreditCardPayment", StatePayingByCreditCard); err != nil {
		return err
	}

	token, err := d.bank.ValidateCard(ctx, d.sale.cardInfo, pin)
	if err != nil {
		d.log.Error("Bank card validation failed", "error", err)
		return domainErrors.ErrBankUnavailable
	}
	if token == "" {
		d.publishCheckout(ctx, events.KindInvalidCreditCard, events.InvalidCreditCard{CardInfo: d.sale.cardInfo})
		return nil
	}
	d.sale.cardToken = token

	result, err := d.bank.DebitCard(ctx, token)
	if err != nil {
		d.log.Error("Bank debit failed", "error", err)
		return domainErrors.ErrBankUnavailable
	}

	switch result {
	case DebitOK:
		d.commitSale(ctx)
		return nil
	case DebitInvalidTransactionID, DebitInsufficientBalance:
		d.publishCheckout(ctx, events.KindInvalidCreditCard, events.InvalidCreditCard{CardInfo: d.sale.cardInfo})
		d.state = StateExpectingCardInfo
		return nil
	default:
		d.log.Error("Unknown debit result", "result", string(result))
		return domainErrors.ErrBankUnavailable
	}
}

// EnableExpressMode is legal in any state and idempotent; the event is
// published only on an actual flag change.
func (d *CashDesk) EnableExpressMode(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.express {
		return
	}
	d.express = true
	d.publishCheckout(ctx, events.KindExpressModeEnabled, events.ExpressModeEnabled{CheckoutName: d.name})
}

// DisableExpressMode is the explicit cashier action that ends express mode.
func (d *CashDesk) DisableExpressMode(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.express {
		return
	}
	d.express = false
	d.publishCheckout(ctx, events.KindExpressModeDisabled, events.ExpressModeDisabled{CheckoutName: d.name})
}

func (d *CashDesk) commitSale(ctx context.Context) {
	lines := make([]events.SaleLine, 0, d.sale.ItemCount())
	for _, line := range d.sale.Lines() {
		lines = append(lines, events.SaleLine{
			ProductID:   line.ProductID,
			Barcode:     line.Barcode,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
		})
	}

	saleNumber := d.codes.GenerateSaleNumber(d.storeName)
	d.publishStore(ctx, events.KindAccountSale, events.AccountSale{
		CheckoutName: d.name,
		SaleNumber:   saleNumber,
		Lines:        lines,
	})
	d.publishCheckout(ctx, events.KindSaleSuccess, events.SaleSuccess{
		CheckoutName: d.name,
		SaleNumber:   saleNumber,
	})
	d.publishStore(ctx, events.KindSaleRegistered, events.SaleRegistered{
		CheckoutName: d.name,
		ItemCount:    len(lines),
		PaymentMode:  d.sale.PaymentMode(),
	})

	d.sale = NewSale()
	d.state = StateExpectingSale
}

func (d *CashDesk) publishCheckout(ctx context.Context, kind events.Kind, payload interface{}) {
	d.publish(ctx, events.CheckoutTopic(d.storeName, d.name), kind, payload)
}

func (d *CashDesk) publishStore(ctx context.Context, kind events.Kind, payload interface{}) {
	d.publish(ctx, events.StoreTopic(d.storeName), kind, payload)
}

func (d *CashDesk) publish(ctx context.Context, topic string, kind events.Kind, payload interface{}) {
	env, err := events.NewEnvelope(topic, kind, payload)
	if err != nil {
		d.log.Error("Failed to build event", "kind", string(kind), "error", err)
		return
	}
	if err := d.publisher.Publish(ctx, env); err != nil {
		d.log.Error("Failed to publish event", "kind", string(kind), "topic", topic, "error", err)
	}
}
