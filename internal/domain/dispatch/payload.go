package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
)

// BuildPayload serializes the transportation problem for the optimizer:
// per-store distances, per-product required amounts, and the store-product
// availability matrix. Stores and products are emitted in ascending id
// order so the payload is deterministic for a given input.
func BuildPayload(
	origin StoreInfo,
	candidates []StoreInfo,
	required []inventory.ProductAmount,
	snapshots map[int]inventory.StoreStockSnapshot,
	distance DistanceFunc,
) string {
	stores := make([]StoreInfo, len(candidates))
	copy(stores, candidates)
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID < stores[j].ID })

	products := make([]inventory.ProductAmount, len(required))
	copy(products, required)
	sort.Slice(products, func(i, j int) bool { return products[i].ProductID < products[j].ProductID })

	var b strings.Builder

	b.WriteString("param distance :=\n")
	for _, s := range stores {
		fmt.Fprintf(&b, "Store%d %g\n", s.ID, distance(s.Location, origin.Location))
	}
	b.WriteString(";\n")

	b.WriteString("param required :=\n")
	for _, p := range products {
		fmt.Fprintf(&b, "Product%d %d\n", p.ProductID, p.Amount)
	}
	b.WriteString(";\n")

	b.WriteString("param available :")
	for _, p := range products {
		fmt.Fprintf(&b, " Product%d", p.ProductID)
	}
	b.WriteString(" :=\n")
	for _, s := range stores {
		fmt.Fprintf(&b, "Store%d", s.ID)
		snapshot := snapshots[s.ID]
		for _, p := range products {
			fmt.Fprintf(&b, " %d", snapshot.AmountOf(p.ProductID))
		}
		b.WriteString("\n")
	}
	b.WriteString(";\n")

	return b.String()
}
