// Package event models the subset of Stripe webhook events the relay acts
// on as tagged variants, instead of spelunking an untyped payload bag.
package event

import (
	"encoding/json"

	"github.com/stripe/stripe-go/v79"
)

// Kind is the recognized event kind. Anything not listed here classifies as
// KindUnknown and is logged without further processing.
type Kind string

const (
	KindCheckoutCompleted   Kind = "checkout.session.completed"
	KindInvoicePaid         Kind = "invoice.payment_succeeded"
	KindInvoiceFailed       Kind = "invoice.payment_failed"
	KindSubscriptionDeleted Kind = "customer.subscription.deleted"
	KindTrialWillEnd        Kind = "customer.subscription.trial_will_end"
	KindUnknown             Kind = "unknown"
)

// Direction is the tag mutation an event kind maps to.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionAdd
	DirectionRemove
)

func (d Direction) String() string {
	switch d {
	case DirectionAdd:
		return "add"
	case DirectionRemove:
		return "remove"
	default:
		return "none"
	}
}

// Classify maps a raw Stripe event type to a Kind.
func Classify(eventType string) Kind {
	switch Kind(eventType) {
	case KindCheckoutCompleted, KindInvoicePaid, KindInvoiceFailed,
		KindSubscriptionDeleted, KindTrialWillEnd:
		return Kind(eventType)
	default:
		return KindUnknown
	}
}

// Direction returns the tag mutation for the kind. Trial-ending and unknown
// events are log-only.
func (k Kind) Direction() Direction {
	switch k {
	case KindCheckoutCompleted, KindInvoicePaid:
		return DirectionAdd
	case KindInvoiceFailed, KindSubscriptionDeleted:
		return DirectionRemove
	default:
		return DirectionNone
	}
}

// Event is an immutable, verified webhook event. Raw holds the full signed
// event bytes for the best-effort forward.
type Event struct {
	ID      string
	Type    string
	Kind    Kind
	Payload Payload
	Raw     []byte
}

// Payload carries only the fields identity resolution reads, regardless of
// which object shape (session, invoice, subscription) the event wraps.
type Payload struct {
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
	CustomerEmail     string            `json:"customer_email"`
	CustomerDetails   *CustomerDetails  `json:"customer_details"`
	Customer          CustomerField     `json:"customer"`
	Lines             ItemList          `json:"lines"`
	LineItems         ItemList          `json:"line_items"`
}

type CustomerDetails struct {
	Email string `json:"email"`
}

type ItemList struct {
	Data []LineItem `json:"data"`
}

type LineItem struct {
	Price Price `json:"price"`
}

type Price struct {
	Metadata map[string]string `json:"metadata"`
}

// CustomerField tolerates Stripe's two customer encodings: a bare id string
// or an expanded object.
type CustomerField struct {
	ID    string
	Email string
}

func (c *CustomerField) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		c.ID = id
		return nil
	}

	var obj struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.ID = obj.ID
	c.Email = obj.Email
	return nil
}

// FirstLinePriceMetadata returns the price metadata of the first line item,
// checking invoice lines before checkout line items.
func (p *Payload) FirstLinePriceMetadata() map[string]string {
	if len(p.Lines.Data) > 0 {
		return p.Lines.Data[0].Price.Metadata
	}
	if len(p.LineItems.Data) > 0 {
		return p.LineItems.Data[0].Price.Metadata
	}
	return nil
}

// FromStripe classifies a verified Stripe event and parses the nested object
// into a Payload. rawBody is the signed request body, kept verbatim for the
// best-effort forward.
func FromStripe(stripeEvent *stripe.Event, rawBody []byte) (Event, error) {
	ev := Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
		Kind: Classify(string(stripeEvent.Type)),
		Raw:  rawBody,
	}

	if err := json.Unmarshal(stripeEvent.Data.Raw, &ev.Payload); err != nil {
		return ev, err
	}

	return ev, nil
}
