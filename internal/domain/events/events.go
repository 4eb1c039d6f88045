package events

// Kind identifies one event type on the fabric. Every kind has exactly one
// payload struct; DecodePayload resolves it through the factory table below,
// so the consumed-event set of each component stays statically enumerable.
type Kind string

const (
	KindSaleStarted         Kind = "sale_started"
	KindRunningTotalChanged Kind = "running_total_changed"
	KindSaleFinished        Kind = "sale_finished"
	KindPaymentModeSelected Kind = "payment_mode_selected"
	KindPaymentModeRejected Kind = "payment_mode_rejected"
	KindChangeCalculated    Kind = "change_calculated"
	KindInvalidBarcode      Kind = "invalid_barcode"
	KindInvalidCreditCard   Kind = "invalid_credit_card"
	KindSaleSuccess         Kind = "sale_success"
	KindSaleRegistered      Kind = "sale_registered"
	KindAccountSale         Kind = "account_sale"
	KindExpressModeEnabled  Kind = "express_mode_enabled"
	KindExpressModeDisabled Kind = "express_mode_disabled"
)

type PaymentMode string

const (
	PaymentModeCash       PaymentMode = "CASH"
	PaymentModeCreditCard PaymentMode = "CREDIT_CARD"
)

type SaleStarted struct {
	CheckoutName string `json:"checkout_name"`
}

type RunningTotalChanged struct {
	ProductName  string  `json:"product_name"`
	UnitPrice    float64 `json:"unit_price"`
	RunningTotal float64 `json:"running_total"`
}

type SaleFinished struct {
	CheckoutName string `json:"checkout_name"`
}

type PaymentModeSelected struct {
	Mode PaymentMode `json:"mode"`
}

type PaymentModeRejected struct {
	Mode   PaymentMode `json:"mode"`
	Reason string      `json:"reason"`
}

type ChangeCalculated struct {
	Amount float64 `json:"amount"`
}

type InvalidBarcode struct {
	Barcode string `json:"barcode"`
}

type InvalidCreditCard struct {
	CardInfo string `json:"card_info"`
}

type SaleSuccess struct {
	CheckoutName string `json:"checkout_name"`
	SaleNumber   string `json:"sale_number"`
}

// SaleRegistered is the completed-sale summary consumed by the express-mode
// coordinator.
type SaleRegistered struct {
	CheckoutName string      `json:"checkout_name"`
	ItemCount    int         `json:"item_count"`
	PaymentMode  PaymentMode `json:"payment_mode"`
}

type SaleLine struct {
	ProductID   int     `json:"product_id"`
	Barcode     string  `json:"barcode"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
}

// AccountSale carries the full line-item list of a committed sale to the
// store for stock accounting.
type AccountSale struct {
	CheckoutName string     `json:"checkout_name"`
	SaleNumber   string     `json:"sale_number"`
	Lines        []SaleLine `json:"lines"`
}

type ExpressModeEnabled struct {
	CheckoutName string `json:"checkout_name"`
}

type ExpressModeDisabled struct {
	CheckoutName string `json:"checkout_name"`
}

var payloadFactories = map[Kind]func() interface{}{
	KindSaleStarted:         func() interface{} { return &SaleStarted{} },
	KindRunningTotalChanged: func() interface{} { return &RunningTotalChanged{} },
	KindSaleFinished:        func() interface{} { return &SaleFinished{} },
	KindPaymentModeSelected: func() interface{} { return &PaymentModeSelected{} },
	KindPaymentModeRejected: func() interface{} { return &PaymentModeRejected{} },
	KindChangeCalculated:    func() interface{} { return &ChangeCalculated{} },
	KindInvalidBarcode:      func() interface{} { return &InvalidBarcode{} },
	KindInvalidCreditCard:   func() interface{} { return &InvalidCreditCard{} },
	KindSaleSuccess:         func() interface{} { return &SaleSuccess{} },
	KindSaleRegistered:      func() interface{} { return &SaleRegistered{} },
	KindAccountSale:         func() interface{} { return &AccountSale{} },
	KindExpressModeEnabled:  func() interface{} { return &ExpressModeEnabled{} },
	KindExpressModeDisabled: func() interface{} { return &ExpressModeDisabled{} },
}

func KnownKind(k Kind) bool {
	_, ok := payloadFactories[k]
	return ok
}
