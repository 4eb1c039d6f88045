package dispatch

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/retail-coordination-service/internal/domain/inventory"
)

func TestParseSolution_ExtractsShipments(t *testing.T) {
	output := strings.Join([]string{
		"MINOS 5.51: optimal solution found.",
		"3 iterations, objective 42",
		"shipping_amount['Product3','Store2'] = 5",
		"shipping_amount['Product7','Store2'] = 2.0",
		"shipping_amount['Product3','Store5'] = 0",
		"",
	}, "\n")

	plan := ParseSolution(output)

	require.False(t, plan.IsEmpty())
	assert.Equal(t, []int{2}, plan.StoreIDs())
	assert.Equal(t, []inventory.ProductAmount{
		{ProductID: 3, Amount: 5},
		{ProductID: 7, Amount: 2},
	}, plan[2])
}

func TestParseSolution_LargeIdentifiers(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("shipping_amount['Product%d','Store65537'] = 100", i))
		lines = append(lines, fmt.Sprintf("shipping_amount['Product%d','Store2'] = 0", i))
	}

	plan := ParseSolution(strings.Join(lines, "\n"))

	require.Equal(t, []int{65537}, plan.StoreIDs())
	require.Len(t, plan[65537], 10)
	for _, pa := range plan[65537] {
		assert.Equal(t, 100, pa.Amount)
	}
}

func TestParseSolution_NoShipments(t *testing.T) {
	plan := ParseSolution("infeasible problem.\nno solution available\n")
	assert.True(t, plan.IsEmpty())
}

func TestParseSolution_EmptyOutput(t *testing.T) {
	assert.True(t, ParseSolution("").IsEmpty())
}
