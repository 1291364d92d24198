package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		eventType string
		kind      Kind
		direction Direction
	}{
		{"checkout.session.completed", KindCheckoutCompleted, DirectionAdd},
		{"invoice.payment_succeeded", KindInvoicePaid, DirectionAdd},
		{"invoice.payment_failed", KindInvoiceFailed, DirectionRemove},
		{"customer.subscription.deleted", KindSubscriptionDeleted, DirectionRemove},
		{"customer.subscription.trial_will_end", KindTrialWillEnd, DirectionNone},
		{"payment_intent.succeeded", KindUnknown, DirectionNone},
		{"", KindUnknown, DirectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			kind := Classify(tt.eventType)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.direction, kind.Direction())
		})
	}
}

func TestCustomerFieldDecoding(t *testing.T) {
	t.Run("bare id string", func(t *testing.T) {
		var p Payload
		require.NoError(t, json.Unmarshal([]byte(`{"customer":"cus_123"}`), &p))
		assert.Equal(t, "cus_123", p.Customer.ID)
		assert.Empty(t, p.Customer.Email)
	})

	t.Run("expanded object", func(t *testing.T) {
		var p Payload
		require.NoError(t, json.Unmarshal([]byte(`{"customer":{"id":"cus_123","email":"a@b.com"}}`), &p))
		assert.Equal(t, "cus_123", p.Customer.ID)
		assert.Equal(t, "a@b.com", p.Customer.Email)
	})

	t.Run("null", func(t *testing.T) {
		var p Payload
		require.NoError(t, json.Unmarshal([]byte(`{"customer":null}`), &p))
		assert.Empty(t, p.Customer.ID)
	})
}

func TestFirstLinePriceMetadata(t *testing.T) {
	raw := `{
		"lines": {"data": [{"price": {"metadata": {"telegram_id": "111"}}}]},
		"line_items": {"data": [{"price": {"metadata": {"telegram_id": "222"}}}]}
	}`

	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	// Invoice lines take precedence over checkout line items.
	assert.Equal(t, "111", p.FirstLinePriceMetadata()["telegram_id"])

	empty := Payload{}
	assert.Nil(t, empty.FirstLinePriceMetadata())
}

func TestFromStripe(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"invoice.payment_failed","data":{"object":{"customer_email":"a@b.com","customer":"cus_9"}}}`)

	var stripeEvent stripe.Event
	require.NoError(t, json.Unmarshal(body, &stripeEvent))

	ev, err := FromStripe(&stripeEvent, body)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, KindInvoiceFailed, ev.Kind)
	assert.Equal(t, "a@b.com", ev.Payload.CustomerEmail)
	assert.Equal(t, "cus_9", ev.Payload.Customer.ID)
	assert.Equal(t, body, ev.Raw)
}
