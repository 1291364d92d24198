// Package stripe adapts the Stripe customer API to the relay's CustomerStore
// port. The global stripe-go key is set once at server startup.
package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/domain/subscriber"
)

// CustomerStore reads and writes identity hints on Stripe customer records.
type CustomerStore struct {
	logger *zap.Logger
}

func NewCustomerStore(logger *zap.Logger) *CustomerStore {
	return &CustomerStore{logger: logger}
}

// IdentityFromCustomer fetches a customer and extracts an identity: the
// telegram_id metadata key wins over the customer's email.
func (s *CustomerStore) IdentityFromCustomer(ctx context.Context, customerID string) (*subscriber.Identity, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.Get(customerID, params)
	if err != nil {
		return nil, err
	}

	if chatID, ok := cust.Metadata[string(subscriber.IdentityChatID)]; ok && chatID != "" {
		identity := subscriber.ChatID(chatID)
		return &identity, nil
	}

	if cust.Email != "" {
		identity := subscriber.Email(cust.Email)
		return &identity, nil
	}

	return nil, nil
}

// SaveIdentity writes the identity onto the customer's metadata under the
// identity's kind so recurring invoice events can resolve without carrying
// the identifier themselves.
func (s *CustomerStore) SaveIdentity(ctx context.Context, customerID string, identity subscriber.Identity) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	params.AddMetadata(string(identity.Kind), identity.Value)

	_, err := customer.Update(customerID, params)
	if err != nil {
		return err
	}

	s.logger.Info("identity saved to customer metadata",
		zap.String("customer_id", customerID),
		zap.String("identity_kind", string(identity.Kind)),
	)
	return nil
}
