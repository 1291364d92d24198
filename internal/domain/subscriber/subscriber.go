// Package subscriber defines the identity and subscriber types that join a
// Stripe customer to a BotHelp subscriber, plus the ports the reconciliation
// pipeline talks through.
package subscriber

import "context"

// IdentityKind doubles as the JSON key the BotHelp search endpoint expects.
type IdentityKind string

const (
	IdentityChatID IdentityKind = "telegram_id"
	IdentityEmail  IdentityKind = "email"
)

// Identity is the join key between the payment platform and the tagging
// platform: either an email address or an external chat identifier.
type Identity struct {
	Kind  IdentityKind
	Value string
}

// ChatID builds a chat-identifier identity.
func ChatID(value string) Identity {
	return Identity{Kind: IdentityChatID, Value: value}
}

// Email builds an email identity.
func Email(value string) Identity {
	return Identity{Kind: IdentityEmail, Value: value}
}

// Ref is an opaque BotHelp subscriber id. Empty means "not found". Refs are
// never cached locally; every event re-resolves its own.
type Ref string

// Directory is the port to the remote tagging platform.
type Directory interface {
	// FindSubscriber resolves an identity to a subscriber ref. A missing
	// subscriber is a normal outcome and returns an empty ref with no error.
	FindSubscriber(ctx context.Context, identity Identity) (Ref, error)

	// AddTag applies a tag to a subscriber. Idempotent by contract of the
	// remote API.
	AddTag(ctx context.Context, ref Ref, tag string) error

	// RemoveTag removes a tag from a subscriber.
	RemoveTag(ctx context.Context, ref Ref, tag string) error
}

// CustomerStore is the port to the payment platform's customer records, used
// by the identity resolver's last-resort fallback and its write-back side
// effect.
type CustomerStore interface {
	// IdentityFromCustomer reads a customer record and extracts an identity
	// from its metadata or email. Returns nil when the record carries neither.
	IdentityFromCustomer(ctx context.Context, customerID string) (*Identity, error)

	// SaveIdentity writes an identity onto the customer record's metadata so
	// later events lacking the identifier can resolve through the fallback.
	SaveIdentity(ctx context.Context, customerID string, identity Identity) error
}
