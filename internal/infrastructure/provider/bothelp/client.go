// Package bothelp implements the BotHelp OpenAPI client: OAuth2
// client-credentials token caching, subscriber search and tag mutation.
package bothelp

import (
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wekeepgrowing/tagrelay/internal/config"
	"github.com/wekeepgrowing/tagrelay/internal/metrics"
)

const (
	defaultHTTPTimeout = 10 * time.Second

	// tokenExpiryMargin keeps us from reusing a token that would expire
	// mid-request.
	tokenExpiryMargin = 60 * time.Second

	// fallbackTokenTTL applies when the token endpoint omits expires_in.
	fallbackTokenTTL = 3600 * time.Second

	// bodyExcerptLimit caps how much of an error response body gets logged.
	bodyExcerptLimit = 512
)

// Client talks to the BotHelp OpenAPI. It is safe for concurrent use; the
// cached credential is replaced wholesale and concurrent refreshes collapse
// into one exchange.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string

	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics

	token   atomic.Pointer[credential]
	refresh singleflight.Group

	now func() time.Time
}

type credential struct {
	accessToken string
	expiresAt   time.Time
}

// NewClient creates a BotHelp client from config. The metrics argument may be
// nil.
func NewClient(cfg config.BotHelpConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:      cfg.APIBase,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

func excerpt(body []byte) string {
	if len(body) > bodyExcerptLimit {
		return string(body[:bodyExcerptLimit])
	}
	return string(body)
}
