package dispatch

import (
	"context"

	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
)

type StoreInfo struct {
	ID       int
	Name     string
	Location string
}

// RemoteStore is a sibling store reachable over the wire.
type RemoteStore interface {
	Info() StoreInfo
	AvailableStock(ctx context.Context, productIDs []int) ([]inventory.ProductAmount, error)
	// ReserveForTransfer marks the items unavailable at the supplying store
	// in anticipation of a physical transfer to the destination store. The
	// call succeeds or fails as a whole.
	ReserveForTransfer(ctx context.Context, destinationStore string, items []inventory.ProductAmount) error
}

// Directory enumerates the stores of the enterprise.
type Directory interface {
	Store(id int) (StoreInfo, bool)
	Siblings(id int) []RemoteStore
}

// Optimizer solves one transportation problem per call. The invocation is a
// single blocking round-trip.
type Optimizer interface {
	Solve(ctx context.Context, payload string) (string, error)
}
