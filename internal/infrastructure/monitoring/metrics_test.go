package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
)

func TestObserveEvent_CountsInvalidBarcodes(t *testing.T) {
	before := testutil.ToFloat64(InvalidBarcodesTotal)

	ObserveEvent(events.Envelope{
		Topic: events.CheckoutTopic("downtown", "checkout-1"),
		Kind:  events.KindInvalidBarcode,
	})

	assert.Equal(t, before+1, testutil.ToFloat64(InvalidBarcodesTotal))
}

func TestObserveEvent_CountsExpressActivationsOnCheckoutTopicsOnly(t *testing.T) {
	before := testutil.ToFloat64(ExpressModeEnabledTotal)

	// The coordinator's command on the store topic is not yet an activation.
	ObserveEvent(events.Envelope{
		Topic: events.StoreTopic("downtown"),
		Kind:  events.KindExpressModeEnabled,
	})
	assert.Equal(t, before, testutil.ToFloat64(ExpressModeEnabledTotal))

	ObserveEvent(events.Envelope{
		Topic: events.CheckoutTopic("downtown", "checkout-1"),
		Kind:  events.KindExpressModeEnabled,
	})
	assert.Equal(t, before+1, testutil.ToFloat64(ExpressModeEnabledTotal))
}
