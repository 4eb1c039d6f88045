package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEnvelope(StoreTopic("downtown"), KindSaleRegistered, SaleRegistered{
		CheckoutName: "checkout-1",
		ItemCount:    3,
		PaymentMode:  PaymentModeCash,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.Timestamp.IsZero())

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))

	payload, err := decoded.DecodePayload()
	require.NoError(t, err)
	registered := payload.(*SaleRegistered)
	assert.Equal(t, "checkout-1", registered.CheckoutName)
	assert.Equal(t, 3, registered.ItemCount)
	assert.Equal(t, PaymentModeCash, registered.PaymentMode)
}

func TestNewEnvelope_RejectsUnknownKind(t *testing.T) {
	_, err := NewEnvelope(StoreTopic("downtown"), Kind("price_check"), nil)
	require.Error(t, err)
}

func TestNewEnvelope_UniqueIDs(t *testing.T) {
	a, err := NewEnvelope(StoreTopic("downtown"), KindSaleStarted, SaleStarted{CheckoutName: "checkout-1"})
	require.NoError(t, err)
	b, err := NewEnvelope(StoreTopic("downtown"), KindSaleStarted, SaleStarted{CheckoutName: "checkout-1"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDecodePayload_UnknownKind(t *testing.T) {
	env := Envelope{Kind: Kind("price_check")}
	_, err := env.DecodePayload()
	require.Error(t, err)
}

func TestDecodePayload_EveryKindHasFactory(t *testing.T) {
	kinds := []Kind{
		KindSaleStarted, KindRunningTotalChanged, KindSaleFinished,
		KindPaymentModeSelected, KindPaymentModeRejected, KindChangeCalculated,
		KindInvalidBarcode, KindInvalidCreditCard, KindSaleSuccess,
		KindSaleRegistered, KindAccountSale,
		KindExpressModeEnabled, KindExpressModeDisabled,
	}
	for _, kind := range kinds {
		assert.True(t, KnownKind(kind), "kind %s", kind)
	}
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "store.downtown", StoreTopic("downtown"))
	assert.Equal(t, "store.downtown/checkout.checkout-1", CheckoutTopic("downtown", "checkout-1"))

	assert.True(t, IsCheckoutTopic(CheckoutTopic("downtown", "checkout-1")))
	assert.False(t, IsCheckoutTopic(StoreTopic("downtown")))
}
