package checkout

import (
	"fmt"
	"strings"
)

type State string

const (
	StateExpectingSale      State = "EXPECTING_SALE"
	StateExpectingItems     State = "EXPECTING_ITEMS"
	StateExpectingPayment   State = "EXPECTING_PAYMENT"
	StatePayingByCash       State = "PAYING_BY_CASH"
	StatePaidByCash         State = "PAID_BY_CASH"
	StateExpectingCardInfo  State = "EXPECTING_CARD_INFO"
	StatePayingByCreditCard State = "PAYING_BY_CREDIT_CARD"
)

func (s State) String() string {
	return string(s)
}

// InvalidTransitionError is returned when an action is invoked outside its
// legal state set. The state machine is left unchanged and no event is
// published.
type InvalidTransitionError struct {
	Action  string
	Current State
	Legal   []State
}

func (e *InvalidTransitionError) Error() string {
	legal := make([]string, len(e.Legal))
	for i, s := range e.Legal {
		legal[i] = s.String()
	}
	return fmt.Sprintf("action %s not allowed in state %s (legal: %s)",
		e.Action, e.Current, strings.Join(legal, ", "))
}

func stateIn(s State, set []State) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
