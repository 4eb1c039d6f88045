package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/retail-coordination-service/internal/config"
	"github.com/yuzvak/retail-coordination-service/internal/domain/dispatch"
	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

func riversideClient(baseURL string) *StoreClient {
	info := dispatch.StoreInfo{ID: 2, Name: "riverside", Location: "12 Harbor Rd"}
	return NewStoreClient(info, baseURL, time.Second, logger.NewLogger())
}

func TestStoreClient_AvailableStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/stock/available", r.URL.Path)
		require.Equal(t, "1,7", r.URL.Query().Get("product_ids"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []inventory.ProductAmount{
				{ProductID: 1, Amount: 50},
				{ProductID: 7, Amount: 0},
			},
		})
	}))
	defer srv.Close()

	c := riversideClient(srv.URL)
	available, err := c.AvailableStock(context.Background(), []int{1, 7})
	require.NoError(t, err)
	assert.Equal(t, []inventory.ProductAmount{
		{ProductID: 1, Amount: 50},
		{ProductID: 7, Amount: 0},
	}, available)
}

func TestStoreClient_AvailableStockServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := riversideClient(srv.URL).AvailableStock(context.Background(), []int{1})
	require.Error(t, err)
}

func TestStoreClient_ReserveForTransfer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/stock/reserve", r.URL.Path)

		var req struct {
			DestinationStore string                    `json:"destination_store"`
			Items            []inventory.ProductAmount `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "downtown", req.DestinationStore)
		assert.Equal(t, []inventory.ProductAmount{{ProductID: 1, Amount: 5}}, req.Items)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := riversideClient(srv.URL).ReserveForTransfer(context.Background(), "downtown",
		[]inventory.ProductAmount{{ProductID: 1, Amount: 5}})
	require.NoError(t, err)
}

func TestStoreClient_ReserveConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	err := riversideClient(srv.URL).ReserveForTransfer(context.Background(), "downtown",
		[]inventory.ProductAmount{{ProductID: 1, Amount: 5}})
	require.ErrorIs(t, err, domainErrors.ErrProductNotAvailable)
}

func TestDirectory_Topology(t *testing.T) {
	cfg := config.StoreConfig{
		ID:       1,
		Name:     "downtown",
		Location: "100 Main St",
		Peers: []config.PeerConfig{
			{ID: 2, Name: "riverside", Location: "12 Harbor Rd", BaseURL: "http://riverside:8080"},
			{ID: 3, Name: "uptown", Location: "7 Parkview Ave", BaseURL: "http://uptown:8080"},
		},
	}
	d := NewDirectory(cfg, time.Second, logger.NewLogger())

	self, ok := d.Store(1)
	require.True(t, ok)
	assert.Equal(t, "downtown", self.Name)

	peer, ok := d.Store(3)
	require.True(t, ok)
	assert.Equal(t, "uptown", peer.Name)

	_, ok = d.Store(9)
	assert.False(t, ok)

	siblings := d.Siblings(1)
	require.Len(t, siblings, 2)
	for _, sibling := range siblings {
		assert.NotEqual(t, 1, sibling.Info().ID)
	}

	// A peer asking for its own siblings does not get itself back.
	assert.Len(t, d.Siblings(2), 1)
}
