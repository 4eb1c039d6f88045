package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/domain/store"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/http/response"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// StockHandler serves the endpoints sibling stores call during a
// rebalancing dispatch, plus the manual low-stock trigger.
type StockHandler struct {
	store *store.Service
	log   *logger.Logger
}

func NewStockHandler(storeService *store.Service, log *logger.Logger) *StockHandler {
	return &StockHandler{
		store: storeService,
		log:   log,
	}
}

func (h *StockHandler) HandleAvailableStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := r.URL.Query().Get("product_ids")
	if raw == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{"product_ids": "product_ids is required"})
		return
	}

	ids := make([]int, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{"product_ids": "product_ids must be integers"})
			return
		}
		ids = append(ids, id)
	}

	available, err := h.store.AvailableStock(r.Context(), ids)
	if err != nil {
		h.log.Error("Stock query failed", "error", err)
		response.WriteMappedError(w, err)
		return
	}

	response.WriteSuccess(w, available)
}

type reserveStockRequest struct {
	DestinationStore string                    `json:"destination_store"`
	Items            []inventory.ProductAmount `json:"items"`
}

func (h *StockHandler) HandleReserveStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req reserveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{"body": "malformed request body"})
		return
	}
	if req.DestinationStore == "" || len(req.Items) == 0 {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"destination_store": "destination_store is required",
			"items":             "items must not be empty",
		})
		return
	}

	if err := h.store.ReserveForTransfer(r.Context(), req.DestinationStore, req.Items); err != nil {
		response.WriteMappedError(w, err)
		return
	}

	response.WriteSuccess(w, req.Items)
}

func (h *StockHandler) HandleLowStockCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := h.store.CheckLowStock(r.Context()); err != nil {
		h.log.Error("Manual low-stock check failed", "error", err)
		response.WriteMappedError(w, err)
		return
	}

	response.WriteSuccess(w, "low stock check completed")
}
