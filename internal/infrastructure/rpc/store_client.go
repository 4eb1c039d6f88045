package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuzvak/retail-coordination-service/internal/domain/dispatch"
	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// StoreClient reaches a sibling store's node over JSON HTTP and implements
// the dispatcher's RemoteStore port.
type StoreClient struct {
	info    dispatch.StoreInfo
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewStoreClient(info dispatch.StoreInfo, baseURL string, timeout time.Duration, log *logger.Logger) *StoreClient {
	return &StoreClient{
		info:    info,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.WithField("peer", info.Name),
	}
}

func (c *StoreClient) Info() dispatch.StoreInfo {
	return c.info
}

type availableStockResponse struct {
	Data []inventory.ProductAmount `json:"data"`
}

func (c *StoreClient) AvailableStock(ctx context.Context, productIDs []int) ([]inventory.ProductAmount, error) {
	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = strconv.Itoa(id)
	}
	url := fmt.Sprintf("%s/stock/available?product_ids=%s", c.baseURL, strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store %s returned status %d for stock query", c.info.Name, resp.StatusCode)
	}

	var decoded availableStockResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded.Data, nil
}

type reserveRequest struct {
	DestinationStore string                    `json:"destination_store"`
	Items            []inventory.ProductAmount `json:"items"`
}

func (c *StoreClient) ReserveForTransfer(ctx context.Context, destinationStore string, items []inventory.ProductAmount) error {
	if err := c.reserveForTransfer(ctx, destinationStore, items); err != nil {
		monitoring.ReservationFailuresTotal.WithLabelValues(c.info.Name).Inc()
		return err
	}
	return nil
}

func (c *StoreClient) reserveForTransfer(ctx context.Context, destinationStore string, items []inventory.ProductAmount) error {
	data, err := json.Marshal(reserveRequest{
		DestinationStore: destinationStore,
		Items:            items,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stock/reserve", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return domainErrors.ErrProductNotAvailable
	default:
		return fmt.Errorf("store %s returned status %d for reservation", c.info.Name, resp.StatusCode)
	}
}
