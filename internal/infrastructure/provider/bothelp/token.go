package bothelp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/wekeepgrowing/tagrelay/pkg/errors"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// getToken returns a valid bearer token, reusing the cached credential while
// it is still inside the expiry margin. On refresh failure the stale cache is
// left in place so a later caller can retry.
func (c *Client) getToken(ctx context.Context) (string, error) {
	if cred := c.token.Load(); cred != nil && c.now().Before(cred.expiresAt.Add(-tokenExpiryMargin)) {
		return cred.accessToken, nil
	}

	v, err, _ := c.refresh.Do("token", func() (interface{}, error) {
		// Re-check under singleflight: a concurrent caller may have just
		// refreshed.
		if cred := c.token.Load(); cred != nil && c.now().Before(cred.expiresAt.Add(-tokenExpiryMargin)) {
			return cred.accessToken, nil
		}
		return c.exchangeToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.NewAppError(apperrors.ErrAuthFailed, "failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordTokenRefresh("error")
		return "", apperrors.NewAppError(apperrors.ErrAuthFailed, "token exchange failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordTokenRefresh("error")
		return "", apperrors.NewAppError(apperrors.ErrAuthFailed, "failed to read token response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordTokenRefresh("error")
		c.logger.Error("BotHelp token exchange rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", excerpt(body)),
		)
		return "", apperrors.NewAppError(apperrors.ErrAuthFailed, "token endpoint returned non-success status", nil)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		c.metrics.RecordTokenRefresh("error")
		return "", apperrors.NewAppError(apperrors.ErrAuthFailed, "malformed token response", err)
	}
	if tr.AccessToken == "" {
		c.metrics.RecordTokenRefresh("error")
		return "", apperrors.NewAppError(apperrors.ErrAuthFailed, "token response missing access_token", nil)
	}

	ttl := fallbackTokenTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}

	c.token.Store(&credential{
		accessToken: tr.AccessToken,
		expiresAt:   c.now().Add(ttl),
	})

	c.metrics.RecordTokenRefresh("success")
	c.logger.Info("BotHelp token refreshed", zap.Duration("ttl", ttl))

	return tr.AccessToken, nil
}
