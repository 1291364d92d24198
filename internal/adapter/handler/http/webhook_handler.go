package http

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/domain/event"
	"github.com/wekeepgrowing/tagrelay/internal/forward"
	"github.com/wekeepgrowing/tagrelay/internal/metrics"
	"github.com/wekeepgrowing/tagrelay/internal/usecase"
	apperrors "github.com/wekeepgrowing/tagrelay/pkg/errors"
)

const webhookBodyLimit = 256 * 1024

// WebhookHandler is the event dispatcher: it verifies the Stripe signature,
// classifies the event and hands it to the reconciler. Once the signature is
// valid the sender always gets a success acknowledgment; downstream failures
// must never trigger Stripe's redelivery.
type WebhookHandler struct {
	logger        *zap.Logger
	webhookSecret string
	reconciler    *usecase.Reconciler
	forwarder     *forward.Forwarder
	metrics       *metrics.Metrics

	mu     sync.RWMutex
	recent []ProcessedEvent
}

// ProcessedEvent is a debug record of a handled delivery.
type ProcessedEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Outcome   string    `json:"outcome"`
	HandledAt time.Time `json:"handled_at"`
}

const recentEventsLimit = 100

func NewWebhookHandler(
	logger *zap.Logger,
	webhookSecret string,
	reconciler *usecase.Reconciler,
	forwarder *forward.Forwarder,
	m *metrics.Metrics,
) *WebhookHandler {
	return &WebhookHandler{
		logger:        logger,
		webhookSecret: webhookSecret,
		reconciler:    reconciler,
		forwarder:     forwarder,
		metrics:       m,
		recent:        make([]ProcessedEvent, 0, recentEventsLimit),
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	start := time.Now()

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, webhookBodyLimit)
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.String(http.StatusBadRequest, "Webhook Error: could not read body")
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	stripeEvent, err := webhook.ConstructEventWithOptions(
		body,
		sig,
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		sigErr := apperrors.NewAppError(apperrors.ErrSignatureInvalid, "signature verification failed", err)
		apperrors.LogError(h.logger, sigErr, "Webhook signature verification failed")
		h.metrics.RecordWebhookEvent("unverified", "rejected")
		return c.String(apperrors.HTTPStatus(sigErr), "Webhook Error: "+err.Error())
	}

	h.logger.Info("Webhook event received",
		zap.String("type", string(stripeEvent.Type)),
		zap.String("id", stripeEvent.ID),
		zap.Time("created", time.Unix(stripeEvent.Created, 0)),
	)

	outcome := usecase.OutcomeError
	ev, err := event.FromStripe(&stripeEvent, body)
	if err != nil {
		// The signature already proved origin; a payload we cannot parse is
		// a downstream problem and still gets acknowledged.
		h.logger.Error("Error parsing event payload",
			zap.String("type", ev.Type),
			zap.Error(err),
		)
	} else {
		outcome = h.reconciler.Process(c.Request().Context(), ev)
	}

	h.metrics.RecordWebhookEvent(ev.Type, string(outcome))
	h.metrics.RecordWebhookProcessingDuration(ev.Type, time.Since(start))
	h.remember(ProcessedEvent{
		EventID:   ev.ID,
		Type:      ev.Type,
		Outcome:   string(outcome),
		HandledAt: time.Now(),
	})

	h.forwarder.Forward(ev.Raw)

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// GetWebhookData exposes the recent delivery log for debugging.
func (h *WebhookHandler) GetWebhookData(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return c.JSON(http.StatusOK, echo.Map{
		"events":      h.recent,
		"event_count": len(h.recent),
	})
}

func (h *WebhookHandler) remember(ev ProcessedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, ev)
	if len(h.recent) > recentEventsLimit {
		h.recent = h.recent[len(h.recent)-recentEventsLimit:]
	}
}
