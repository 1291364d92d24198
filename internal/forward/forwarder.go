// Package forward relays a copy of every verified event to a secondary
// endpoint, fire-and-forget.
package forward

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const forwardTimeout = 10 * time.Second

// Forwarder posts raw event bytes to a configured URL. A Forwarder with an
// empty URL is a no-op, so callers never have to branch on configuration.
type Forwarder struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewForwarder(url string, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		url: url,
		httpClient: &http.Client{
			Timeout: forwardTimeout,
		},
		logger: logger,
	}
}

// Forward delivers the payload in a background goroutine. The outcome is
// logged and never reaches the caller; the webhook response must not wait on
// or reflect the forward.
func (f *Forwarder) Forward(payload []byte) {
	if f == nil || f.url == "" {
		return
	}

	body := make([]byte, len(payload))
	copy(body, payload)

	go f.deliver(body)
}

func (f *Forwarder) deliver(payload []byte) {
	deliveryID := uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		f.logger.Error("failed to build forward request",
			zap.String("delivery_id", deliveryID),
			zap.Error(err),
		)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-ID", deliveryID)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("event forward failed",
			zap.String("delivery_id", deliveryID),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	f.logger.Info("event forwarded",
		zap.String("delivery_id", deliveryID),
		zap.Int("status", resp.StatusCode),
	)
}
