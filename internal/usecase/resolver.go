package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/domain/event"
	"github.com/wekeepgrowing/tagrelay/internal/domain/subscriber"
)

// chatIDKey is the metadata key carrying the chat identifier on Stripe
// objects and payment links.
const chatIDKey = "telegram_id"

// extractionRule is one step of the identity fallback chain. Rules are
// evaluated in order, first match wins.
type extractionRule struct {
	name    string
	extract func(p *event.Payload) *subscriber.Identity
}

var extractionRules = []extractionRule{
	{
		name: "client_reference_id",
		extract: func(p *event.Payload) *subscriber.Identity {
			if p.ClientReferenceID == "" {
				return nil
			}
			id := subscriber.ChatID(p.ClientReferenceID)
			return &id
		},
	},
	{
		name: "metadata." + chatIDKey,
		extract: func(p *event.Payload) *subscriber.Identity {
			if v := p.Metadata[chatIDKey]; v != "" {
				id := subscriber.ChatID(v)
				return &id
			}
			return nil
		},
	},
	{
		name: "line_price_metadata." + chatIDKey,
		extract: func(p *event.Payload) *subscriber.Identity {
			if v := p.FirstLinePriceMetadata()[chatIDKey]; v != "" {
				id := subscriber.ChatID(v)
				return &id
			}
			return nil
		},
	},
	{
		name: "customer_details.email",
		extract: func(p *event.Payload) *subscriber.Identity {
			if p.CustomerDetails != nil && p.CustomerDetails.Email != "" {
				id := subscriber.Email(p.CustomerDetails.Email)
				return &id
			}
			return nil
		},
	},
	{
		name: "customer_email",
		extract: func(p *event.Payload) *subscriber.Identity {
			if p.CustomerEmail != "" {
				id := subscriber.Email(p.CustomerEmail)
				return &id
			}
			return nil
		},
	},
	{
		name: "customer.email",
		extract: func(p *event.Payload) *subscriber.Identity {
			if p.Customer.Email != "" {
				id := subscriber.Email(p.Customer.Email)
				return &id
			}
			return nil
		},
	},
}

// Resolver extracts the join identity from an event payload. Only the final
// customer-record fallback makes a network call.
type Resolver struct {
	customers subscriber.CustomerStore
	logger    *zap.Logger
}

func NewResolver(customers subscriber.CustomerStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		customers: customers,
		logger:    logger,
	}
}

// Resolve walks the extraction rules over the payload. fromEvent reports
// whether the identity came from the event itself rather than the customer
// record; only event-borne identities are written back.
func (r *Resolver) Resolve(ctx context.Context, p *event.Payload) (identity *subscriber.Identity, fromEvent bool) {
	for _, rule := range extractionRules {
		if id := rule.extract(p); id != nil {
			r.logger.Debug("identity resolved",
				zap.String("rule", rule.name),
				zap.String("identity_kind", string(id.Kind)),
			)
			return id, true
		}
	}

	if p.Customer.ID == "" {
		return nil, false
	}

	id, err := r.customers.IdentityFromCustomer(ctx, p.Customer.ID)
	if err != nil {
		r.logger.Warn("customer record fallback failed",
			zap.String("customer_id", p.Customer.ID),
			zap.Error(err),
		)
		return nil, false
	}
	if id != nil {
		r.logger.Debug("identity resolved from customer record",
			zap.String("customer_id", p.Customer.ID),
			zap.String("identity_kind", string(id.Kind)),
		)
	}
	return id, false
}
