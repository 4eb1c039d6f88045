package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope is the unit of delivery on the event fabric.
type Envelope struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Kind      Kind            `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(topic string, kind Kind, payload interface{}) (Envelope, error) {
	if !KnownKind(kind) {
		return Envelope{}, fmt.Errorf("unknown event kind %q", kind)
	}

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", kind, err)
		}
		raw = data
	}

	return Envelope{
		ID:        uuid.NewString(),
		Topic:     topic,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// DecodePayload returns the typed payload for the envelope's kind.
func (e Envelope) DecodePayload() (interface{}, error) {
	factory, ok := payloadFactories[e.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}

	payload := factory()
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
		}
	}
	return payload, nil
}

func StoreTopic(storeName string) string {
	return "store." + storeName
}

func CheckoutTopic(storeName, checkoutName string) string {
	return "store." + storeName + "/checkout." + checkoutName
}

// IsCheckoutTopic reports whether the topic belongs to a single cash desk
// rather than to the store as a whole.
func IsCheckoutTopic(topic string) bool {
	return strings.Contains(topic, "/checkout.")
}
