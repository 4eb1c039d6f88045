package inventory

type Product struct {
	ID         int
	Barcode    string
	Name       string
	SalesPrice float64
}

// ProductAmount pairs a product with a quantity. It is used both as a
// requirement (quantity needed) and as an offer or grant (quantity given,
// 0 meaning unavailable).
type ProductAmount struct {
	ProductID int `json:"product_id"`
	Amount    int `json:"amount"`
}

type StockItem struct {
	Product
	Amount   int
	MinStock int
	MaxStock int
	// Incoming counts units granted by a previous rebalancing dispatch that
	// have not physically arrived yet.
	Incoming int
}

// IsLow reports whether current plus incoming stock is under the minimum.
func (s StockItem) IsLow() bool {
	return s.Amount+s.Incoming < s.MinStock
}

// OrderAmount is the quantity to request when the item is low.
func (s StockItem) OrderAmount() int {
	if 2*s.MinStock >= s.MaxStock {
		if s.MinStock < s.MaxStock-s.MinStock {
			return s.MinStock
		}
		return s.MaxStock - s.MinStock
	}
	return s.MinStock
}

// StoreStockSnapshot is one store's availability for a set of products,
// valid only for the duration of a single dispatch operation.
type StoreStockSnapshot struct {
	StoreID   int
	Available []ProductAmount
}

func (s StoreStockSnapshot) AmountOf(productID int) int {
	for _, pa := range s.Available {
		if pa.ProductID == productID {
			return pa.Amount
		}
	}
	return 0
}
