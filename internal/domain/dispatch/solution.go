package dispatch

import (
	"bufio"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
)

// Plan maps a supplying store id to the product amounts it will ship to the
// requesting store.
type Plan map[int][]inventory.ProductAmount

func (p Plan) IsEmpty() bool {
	return len(p) == 0
}

// StoreIDs lists the supplying stores in ascending order.
func (p Plan) StoreIDs() []int {
	ids := make([]int, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

var shippingLine = regexp.MustCompile(
	`shipping_amount\['Product(\d+)','Store(\d+)'\]\s*=\s*(\d+(?:\.\d+)?)`,
)

// ParseSolution extracts shipping amounts from the optimizer's free-text
// output. Lines not matching the shipping_amount form are ignored, zero
// amounts are discarded.
func ParseSolution(output string) Plan {
	plan := make(Plan)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		m := shippingLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		productID, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		storeID, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}

		amount := int(value)
		if amount <= 0 {
			continue
		}

		plan[storeID] = append(plan[storeID], inventory.ProductAmount{
			ProductID: productID,
			Amount:    amount,
		})
	}

	return plan
}
