package express

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/clock"
)

func testPolicy() Policy {
	return Policy{
		EvaluationWindow: 5 * time.Second,
		EvaluationPeriod: 60 * time.Second,
		Threshold:        0.5,
		ItemLimit:        8,
	}
}

func cashSale(t time.Time, items int) SalesRecord {
	return SalesRecord{Time: t, ItemCount: items, PaymentMode: events.PaymentModeCash}
}

func cardSale(t time.Time, items int) SalesRecord {
	return SalesRecord{Time: t, ItemCount: items, PaymentMode: events.PaymentModeCreditCard}
}

func TestEvaluator_EmptyWindowNeverEnables(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ev := NewEvaluator(testPolicy(), clk)

	assert.False(t, ev.ShouldBeExpress())
}

func TestEvaluator_WindowExcludesOldRecords(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(start)
	ev := NewEvaluator(testPolicy(), clk)

	ev.Record(cashSale(start, 2))

	clk.Set(start.Add(4 * time.Second))
	assert.Equal(t, 1, ev.WindowSize())

	clk.Set(start.Add(6 * time.Second))
	assert.Equal(t, 0, ev.WindowSize())
}

func TestEvaluator_WindowToleratesClockSkew(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(start)
	ev := NewEvaluator(testPolicy(), clk)

	// Record stamped ahead of the local clock, within the window.
	ev.Record(cashSale(start.Add(3*time.Second), 2))
	assert.Equal(t, 1, ev.WindowSize())

	// Record stamped further ahead than the window is wide counts as aged.
	skewed := NewEvaluator(testPolicy(), clk)
	skewed.Record(cashSale(start.Add(10*time.Second), 2))
	assert.Equal(t, 0, skewed.WindowSize())
}

func TestEvaluator_RatioDecision(t *testing.T) {
	cases := []struct {
		name     string
		eligible int
		other    int
		want     bool
	}{
		{"six of ten", 6, 4, true},
		{"four of ten", 4, 6, false},
		{"exactly half", 5, 5, true},
		{"all eligible", 10, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			clk := clock.NewMockClock(now)
			ev := NewEvaluator(testPolicy(), clk)

			for i := 0; i < tc.eligible; i++ {
				ev.Record(cashSale(now, 3))
			}
			for i := 0; i < tc.other; i++ {
				ev.Record(cardSale(now, 3))
			}

			assert.Equal(t, tc.want, ev.ShouldBeExpress())
		})
	}
}

func TestEvaluator_LargeCashSaleIsNotEligible(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	ev := NewEvaluator(testPolicy(), clk)

	ev.Record(cashSale(now, 9))
	assert.False(t, ev.ShouldBeExpress())
}

func TestEvaluator_ItemLimitBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	ev := NewEvaluator(testPolicy(), clk)

	ev.Record(cashSale(now, 8))
	assert.True(t, ev.ShouldBeExpress())
}

func TestEvaluator_DecisionIsCachedWithinPeriod(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(start)
	ev := NewEvaluator(DefaultPolicy(), clk)

	ev.Record(cardSale(start, 3))
	assert.False(t, ev.ShouldBeExpress())

	// The window is now full of eligible sales, but the cached decision
	// holds until the evaluation period has passed.
	ev.Record(cashSale(start, 2))
	ev.Record(cashSale(start, 2))
	ev.Record(cashSale(start, 2))
	clk.Advance(30 * time.Second)
	assert.False(t, ev.ShouldBeExpress())

	clk.Advance(30 * time.Second)
	assert.True(t, ev.ShouldBeExpress())
}
