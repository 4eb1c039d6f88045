package dispatch

import (
	"context"
	"time"

	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// Dispatcher solves a cross-store rebalancing request: it snapshots sibling
// stock, lets the optimizer pick supplying stores, and fans out best-effort
// reservation calls. There is no distributed transaction anywhere in this
// path: a committed reservation is never rolled back when a later store
// fails, and the returned amounts are the authoritative, possibly partial,
// outcome.
type Dispatcher struct {
	directory Directory
	optimizer Optimizer
	distance  DistanceFunc
	log       *logger.Logger

	solveTimeout   time.Duration
	reserveTimeout time.Duration
}

func NewDispatcher(
	directory Directory,
	optimizer Optimizer,
	distance DistanceFunc,
	solveTimeout time.Duration,
	reserveTimeout time.Duration,
	log *logger.Logger,
) *Dispatcher {
	if distance == nil {
		distance = LexicographicDistance
	}
	return &Dispatcher{
		directory:      directory,
		optimizer:      optimizer,
		distance:       distance,
		log:            log.WithField("component", "dispatcher"),
		solveTimeout:   solveTimeout,
		reserveTimeout: reserveTimeout,
	}
}

// DispatchProductsFromOtherStores returns the product amounts actually
// reserved at sibling stores for the requesting store. Every degraded
// outcome (no feasible products, optimizer failure, unparseable output)
// collapses to an empty result, never a partial or malformed plan.
// Duplicate products across supplying stores are preserved; the caller
// sums them.
func (d *Dispatcher) DispatchProductsFromOtherStores(
	ctx context.Context,
	storeID int,
	required []inventory.ProductAmount,
) ([]inventory.ProductAmount, error) {
	origin, ok := d.directory.Store(storeID)
	if !ok {
		return nil, domainErrors.ErrUnknownStore
	}
	if len(required) == 0 {
		return nil, nil
	}

	siblings := d.directory.Siblings(storeID)
	if len(siblings) == 0 {
		return nil, nil
	}

	productIDs := make([]int, 0, len(required))
	for _, pa := range required {
		productIDs = append(productIDs, pa.ProductID)
	}

	byID := make(map[int]RemoteStore, len(siblings))
	candidates := make([]StoreInfo, 0, len(siblings))
	snapshots := make(map[int]inventory.StoreStockSnapshot, len(siblings))
	for _, sibling := range siblings {
		info := sibling.Info()
		available, err := sibling.AvailableStock(ctx, productIDs)
		if err != nil {
			d.log.Warn("Sibling stock query failed, store excluded",
				"store_id", info.ID, "store", info.Name, "error", err)
			continue
		}
		byID[info.ID] = sibling
		candidates = append(candidates, info)
		snapshots[info.ID] = inventory.StoreStockSnapshot{
			StoreID:   info.ID,
			Available: available,
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// The optimizer requires a feasible solution to exist; it cannot express
	// partial infeasibility. Products with zero availability everywhere are
	// dropped up front.
	feasible := filterFeasible(required, snapshots)
	if len(feasible) == 0 {
		d.log.Info("No feasible products, dispatch skipped",
			"store_id", storeID, "required", len(required))
		return nil, nil
	}

	payload := BuildPayload(origin, candidates, feasible, snapshots, d.distance)

	solveCtx, cancel := context.WithTimeout(ctx, d.solveTimeout)
	output, err := d.optimizer.Solve(solveCtx, payload)
	cancel()
	if err != nil {
		d.log.Error("Optimizer invocation failed", "store_id", storeID, "error", err)
		return nil, nil
	}

	plan := ParseSolution(output)
	if plan.IsEmpty() {
		d.log.Info("Optimizer returned no shipments", "store_id", storeID)
		return nil, nil
	}

	requested := make(map[int]bool, len(feasible))
	for _, pa := range feasible {
		requested[pa.ProductID] = true
	}

	var granted []inventory.ProductAmount
	for _, supplierID := range plan.StoreIDs() {
		items := make([]inventory.ProductAmount, 0, len(plan[supplierID]))
		for _, pa := range plan[supplierID] {
			if requested[pa.ProductID] {
				items = append(items, pa)
			}
		}
		if len(items) == 0 {
			continue
		}

		supplier, ok := byID[supplierID]
		if !ok {
			d.log.Warn("Optimizer selected unknown store", "store_id", supplierID)
			continue
		}

		// Each reservation is an independent unit of work: a failure drops
		// this store's contribution and leaves the others untouched.
		reserveCtx, cancel := context.WithTimeout(ctx, d.reserveTimeout)
		err := supplier.ReserveForTransfer(reserveCtx, origin.Name, items)
		cancel()
		if err != nil {
			d.log.Warn("Reservation failed, store contribution dropped",
				"supplier_id", supplierID,
				"supplier", supplier.Info().Name,
				"destination", origin.Name,
				"items", len(items),
				"error", err)
			continue
		}

		granted = append(granted, items...)
	}

	d.log.Info("Dispatch completed",
		"store_id", storeID,
		"required", len(required),
		"feasible", len(feasible),
		"granted", len(granted))
	return granted, nil
}

func filterFeasible(
	required []inventory.ProductAmount,
	snapshots map[int]inventory.StoreStockSnapshot,
) []inventory.ProductAmount {
	feasible := make([]inventory.ProductAmount, 0, len(required))
	for _, pa := range required {
		total := 0
		for _, snapshot := range snapshots {
			total += snapshot.AmountOf(pa.ProductID)
		}
		if total > 0 {
			feasible = append(feasible, pa)
		}
	}
	return feasible
}
