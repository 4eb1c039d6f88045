package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yuzvak/retail-coordination-service/internal/domain/checkout"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/domain/express"
	"github.com/yuzvak/retail-coordination-service/internal/domain/store"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/http/response"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// CheckoutHandler exposes the cash-desk actions. The UI consoles and the
// scanner hardware drive a desk exclusively through these endpoints.
type CheckoutHandler struct {
	store       *store.Service
	coordinator *express.Coordinator
	log         *logger.Logger
}

func NewCheckoutHandler(storeService *store.Service, coordinator *express.Coordinator, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		store:       storeService,
		coordinator: coordinator,
		log:         log,
	}
}

type checkoutStatus struct {
	Name         string  `json:"name"`
	State        string  `json:"state"`
	ItemCount    int     `json:"item_count"`
	RunningTotal float64 `json:"running_total"`
	ExpressMode  bool    `json:"express_mode"`
}

type addItemRequest struct {
	Barcode string `json:"barcode"`
}

type paymentModeRequest struct {
	Mode string `json:"mode"`
}

type cashPaymentRequest struct {
	Amount float64 `json:"amount"`
}

type cashPaymentResponse struct {
	Change float64 `json:"change"`
}

type cardPaymentRequest struct {
	CardInfo string `json:"card_info"`
}

type cardPaymentFinishRequest struct {
	PIN string `json:"pin"`
}

func (h *CheckoutHandler) HandleStatus(w http.ResponseWriter, r *http.Request, checkoutName string) {
	desk, err := h.store.Desk(checkoutName)
	if err != nil {
		response.WriteMappedError(w, err)
		return
	}

	response.WriteSuccess(w, checkoutStatus{
		Name:         desk.Name(),
		State:        desk.State().String(),
		ItemCount:    desk.ItemCount(),
		RunningTotal: desk.RunningTotal(),
		ExpressMode:  desk.ExpressMode(),
	})
}

func (h *CheckoutHandler) HandleAction(w http.ResponseWriter, r *http.Request, checkoutName, action string) {
	desk, err := h.store.Desk(checkoutName)
	if err != nil {
		response.WriteMappedError(w, err)
		return
	}

	ctx := r.Context()

	switch action {
	case "start-sale":
		err = desk.StartSale(ctx)
	case "items":
		var req addItemRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil || req.Barcode == "" {
			response.WriteValidationError(w, "Validation failed", map[string]string{"barcode": "barcode is required"})
			return
		}
		err = desk.AddItem(ctx, req.Barcode)
	case "finish-sale":
		err = desk.FinishSale(ctx)
	case "payment-mode":
		var req paymentModeRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil || req.Mode == "" {
			response.WriteValidationError(w, "Validation failed", map[string]string{"mode": "mode is required"})
			return
		}
		err = desk.SelectPaymentMode(ctx, events.PaymentMode(req.Mode))
	case "cash-payment":
		var req cashPaymentRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{"amount": "amount is required"})
			return
		}
		change, payErr := desk.StartCashPayment(ctx, req.Amount)
		if payErr != nil {
			h.writeActionError(w, checkoutName, payErr)
			return
		}
		response.WriteSuccess(w, cashPaymentResponse{Change: change})
		return
	case "cash-payment-finish":
		err = desk.FinishCashPayment(ctx)
		if err == nil {
			monitoring.SalesCompletedTotal.WithLabelValues(string(events.PaymentModeCash)).Inc()
		}
	case "card-payment":
		var req cardPaymentRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil || req.CardInfo == "" {
			response.WriteValidationError(w, "Validation failed", map[string]string{"card_info": "card_info is required"})
			return
		}
		err = desk.StartCreditCardPayment(ctx, req.CardInfo)
	case "card-payment-finish":
		var req cardPaymentFinishRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{"pin": "pin is required"})
			return
		}
		err = desk.FinishCreditCardPayment(ctx, req.PIN)
		if err == nil && desk.State() == checkout.StateExpectingSale {
			monitoring.SalesCompletedTotal.WithLabelValues(string(events.PaymentModeCreditCard)).Inc()
		}
	case "express-enable":
		desk.EnableExpressMode(ctx)
	case "express-disable":
		desk.DisableExpressMode(ctx)
		h.coordinator.NoteDisabled(checkoutName)
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		h.writeActionError(w, checkoutName, err)
		return
	}

	h.HandleStatus(w, r, checkoutName)
}

func (h *CheckoutHandler) writeActionError(w http.ResponseWriter, checkoutName string, err error) {
	var transitionErr *checkout.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		monitoring.InvalidTransitionsTotal.WithLabelValues(checkoutName).Inc()
	}
	response.WriteMappedError(w, err)
}
