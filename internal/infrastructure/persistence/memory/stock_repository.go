package memory

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
)

// StockRepository is the in-memory twin of the postgres repository, used by
// tests and by store nodes running without a database.
type StockRepository struct {
	mu    sync.Mutex
	items map[int]*inventory.StockItem
}

func NewStockRepository(items ...inventory.StockItem) *StockRepository {
	repo := &StockRepository{
		items: make(map[int]*inventory.StockItem, len(items)),
	}
	for i := range items {
		item := items[i]
		repo.items[item.ID] = &item
	}
	return repo
}

func (r *StockRepository) GetProductWithStockItem(_ context.Context, barcode string) (*inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.Barcode == barcode {
			product := item.Product
			return &product, nil
		}
	}
	return nil, domainErrors.ErrNoSuchProduct
}

func (r *StockRepository) AvailableStock(_ context.Context, productIDs []int) ([]inventory.ProductAmount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, len(productIDs))
	copy(ids, productIDs)
	sort.Ints(ids)

	var available []inventory.ProductAmount
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			available = append(available, inventory.ProductAmount{ProductID: id, Amount: item.Amount})
		}
	}
	return available, nil
}

func (r *StockRepository) LowStockItems(_ context.Context) ([]inventory.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var low []inventory.StockItem
	for _, id := range ids {
		if r.items[id].IsLow() {
			low = append(low, *r.items[id])
		}
	}
	return low, nil
}

func (r *StockRepository) AccountSale(_ context.Context, lines []events.SaleLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		if item, ok := r.items[line.ProductID]; ok && item.Amount > 0 {
			item.Amount--
		}
	}
	monitoring.SalesAccountedTotal.Inc()
	return nil
}

func (r *StockRepository) ReserveForTransfer(_ context.Context, items []inventory.ProductAmount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pa := range items {
		item, ok := r.items[pa.ProductID]
		if !ok || item.Amount < pa.Amount {
			return domainErrors.ErrProductNotAvailable
		}
	}
	for _, pa := range items {
		r.items[pa.ProductID].Amount -= pa.Amount
	}
	return nil
}

func (r *StockRepository) AddIncoming(_ context.Context, items []inventory.ProductAmount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pa := range items {
		if item, ok := r.items[pa.ProductID]; ok {
			item.Incoming += pa.Amount
		}
	}
	return nil
}

// Item returns a copy of the stock item, for test assertions.
func (r *StockRepository) Item(productID int) (inventory.StockItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[productID]
	if !ok {
		return inventory.StockItem{}, false
	}
	return *item, true
}
