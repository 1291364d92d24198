package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/domain/event"
	"github.com/wekeepgrowing/tagrelay/internal/domain/subscriber"
	apperrors "github.com/wekeepgrowing/tagrelay/pkg/errors"
)

// Outcome labels what Process did with an event, for logging and metrics.
type Outcome string

const (
	OutcomeTagged     Outcome = "tagged"
	OutcomeUntagged   Outcome = "untagged"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeNoIdentity Outcome = "no_identity"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeError      Outcome = "error"
)

// Reconciler drives the classified event through identity resolution,
// subscriber lookup and tag mutation. It never returns an error: once the
// signature has been verified every downstream failure is logged and the
// event is still acknowledged.
type Reconciler struct {
	resolver  *Resolver
	directory subscriber.Directory
	customers subscriber.CustomerStore
	tag       string
	logger    *zap.Logger
}

func NewReconciler(
	resolver *Resolver,
	directory subscriber.Directory,
	customers subscriber.CustomerStore,
	tag string,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		resolver:  resolver,
		directory: directory,
		customers: customers,
		tag:       tag,
		logger:    logger,
	}
}

// Process reconciles one verified event.
func (r *Reconciler) Process(ctx context.Context, ev event.Event) Outcome {
	direction := ev.Kind.Direction()
	if direction == event.DirectionNone {
		r.logger.Info("event logged without mutation",
			zap.String("type", ev.Type),
			zap.String("id", ev.ID),
		)
		return OutcomeSkipped
	}

	identity, fromEvent := r.resolver.Resolve(ctx, &ev.Payload)
	if identity == nil {
		r.logger.Warn("no identity resolved, skipping event",
			zap.String("type", ev.Type),
			zap.String("id", ev.ID),
		)
		return OutcomeNoIdentity
	}

	// Checkout completion is the one moment the identifier is reliably on
	// the event; echo it onto the customer record for later invoice events.
	if ev.Kind == event.KindCheckoutCompleted && fromEvent && ev.Payload.Customer.ID != "" {
		if err := r.customers.SaveIdentity(ctx, ev.Payload.Customer.ID, *identity); err != nil {
			r.logger.Warn("identity write-back failed",
				zap.String("customer_id", ev.Payload.Customer.ID),
				zap.Error(err),
			)
		}
	}

	ref, err := r.directory.FindSubscriber(ctx, *identity)
	if err != nil {
		apperrors.LogError(r.logger, err, "subscriber lookup failed",
			zap.String("type", ev.Type),
			zap.String("identity_kind", string(identity.Kind)),
		)
		return OutcomeError
	}
	if ref == "" {
		r.logger.Warn("no subscriber found for identity",
			zap.String("type", ev.Type),
			zap.String("identity_kind", string(identity.Kind)),
		)
		return OutcomeNotFound
	}

	switch direction {
	case event.DirectionAdd:
		err = r.directory.AddTag(ctx, ref, r.tag)
	case event.DirectionRemove:
		err = r.directory.RemoveTag(ctx, ref, r.tag)
	}
	if err != nil {
		apperrors.LogError(r.logger, err, "tag mutation failed",
			zap.String("type", ev.Type),
			zap.String("subscriber_id", string(ref)),
			zap.String("direction", direction.String()),
		)
		return OutcomeError
	}

	r.logger.Info("tag reconciled",
		zap.String("type", ev.Type),
		zap.String("subscriber_id", string(ref)),
		zap.String("tag", r.tag),
		zap.String("direction", direction.String()),
	)

	if direction == event.DirectionAdd {
		return OutcomeTagged
	}
	return OutcomeUntagged
}
