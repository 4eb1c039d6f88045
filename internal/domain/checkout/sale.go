package checkout

import (
	"math"

	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
)

type LineItem struct {
	ProductID   int
	Barcode     string
	ProductName string
	UnitPrice   float64
}

// Sale is the in-flight sale owned by one cash desk. It is mutable while
// open and replaced on the next StartSale or on successful completion.
type Sale struct {
	lines        []LineItem
	runningTotal float64
	paymentMode  events.PaymentMode
	cardInfo     string
	cardToken    string
}

func NewSale() *Sale {
	return &Sale{}
}

func (s *Sale) AddLine(line LineItem) {
	s.lines = append(s.lines, line)
	s.runningTotal = RoundCents(s.runningTotal + line.UnitPrice)
}

func (s *Sale) Lines() []LineItem {
	lines := make([]LineItem, len(s.lines))
	copy(lines, s.lines)
	return lines
}

func (s *Sale) ItemCount() int {
	return len(s.lines)
}

func (s *Sale) RunningTotal() float64 {
	return s.runningTotal
}

func (s *Sale) PaymentMode() events.PaymentMode {
	return s.paymentMode
}

// RoundCents rounds a currency value to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(100*v) / 100
}
