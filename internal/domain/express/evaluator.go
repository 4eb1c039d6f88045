package express

import (
	"sync"
	"time"

	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/clock"
)

type Policy struct {
	// EvaluationWindow bounds the age of sales records considered.
	EvaluationWindow time.Duration
	// EvaluationPeriod throttles recomputation; between evaluations the
	// cached decision is returned.
	EvaluationPeriod time.Duration
	// Threshold is the minimum express-eligible ratio that enables express
	// mode.
	Threshold float64
	// ItemLimit is the maximum item count of an express-eligible sale.
	ItemLimit int
}

func DefaultPolicy() Policy {
	return Policy{
		EvaluationWindow: time.Hour,
		EvaluationPeriod: 60 * time.Second,
		Threshold:        0.5,
		ItemLimit:        8,
	}
}

// SalesRecord is the immutable summary of one completed sale.
type SalesRecord struct {
	Time        time.Time
	ItemCount   int
	PaymentMode events.PaymentMode
}

// Evaluator holds one checkout's sliding window of sales records and the
// rate-limited express decision over it. The mutex makes trim-then-evaluate
// atomic with respect to concurrent record insertion.
type Evaluator struct {
	policy Policy
	clk    clock.Clock

	mu            sync.Mutex
	records       []SalesRecord
	lastEvaluated time.Time
	evaluated     bool
	cached        bool
}

func NewEvaluator(policy Policy, clk clock.Clock) *Evaluator {
	return &Evaluator{
		policy: policy,
		clk:    clk,
	}
}

func (e *Evaluator) Record(r SalesRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trim(e.clk.Now())
	e.records = append(e.records, r)
}

// ShouldBeExpress evaluates the decision rule over the current window, or
// returns the cached decision when called again within the evaluation
// period.
func (e *Evaluator) ShouldBeExpress() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	if e.evaluated && absDuration(now.Sub(e.lastEvaluated)) < e.policy.EvaluationPeriod {
		return e.cached
	}

	e.trim(now)
	e.lastEvaluated = now
	e.evaluated = true
	e.cached = e.decide()
	return e.cached
}

func (e *Evaluator) WindowSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trim(e.clk.Now())
	return len(e.records)
}

// trim drops records older than the window from the front of the queue.
// Records arrive in time order, so trimming stops at the first young one.
// The age is an absolute difference to tolerate clock skew.
func (e *Evaluator) trim(now time.Time) {
	i := 0
	for i < len(e.records) && absDuration(now.Sub(e.records[i].Time)) > e.policy.EvaluationWindow {
		i++
	}
	if i > 0 {
		e.records = e.records[i:]
	}
}

func (e *Evaluator) decide() bool {
	if len(e.records) == 0 {
		return false
	}

	eligible := 0
	for _, r := range e.records {
		if r.PaymentMode == events.PaymentModeCash && r.ItemCount <= e.policy.ItemLimit {
			eligible++
		}
	}

	ratio := float64(eligible) / float64(len(e.records))
	return ratio >= e.policy.Threshold
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
