package bothelp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/domain/subscriber"
	apperrors "github.com/wekeepgrowing/tagrelay/pkg/errors"
)

// subscriberID tolerates BotHelp returning ids as numbers or strings.
type subscriberID string

func (s *subscriberID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*s = subscriberID(asString)
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*s = subscriberID(asNumber.String())
	return nil
}

type searchResponse struct {
	Items []struct {
		ID subscriberID `json:"id"`
	} `json:"items"`
}

// FindSubscriber searches BotHelp by the identity's kind. A missing
// subscriber and an unparseable response both resolve to an empty ref; only
// transport-level failures return an error.
func (c *Client) FindSubscriber(ctx context.Context, identity subscriber.Identity) (subscriber.Ref, error) {
	payload := map[string]string{
		string(identity.Kind): identity.Value,
	}

	status, body, err := c.postJSON(ctx, "/subscribers/search", payload, apperrors.ErrLookupFailed)
	if err != nil {
		return "", err
	}

	if status < 200 || status >= 300 {
		c.logger.Error("BotHelp subscriber search rejected",
			zap.Int("status", status),
			zap.String("body", excerpt(body)),
		)
		return "", apperrors.NewAppError(apperrors.ErrLookupFailed, "subscriber search returned non-success status", nil)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		// Upstream instability is tolerated: treat as zero results.
		c.logger.Warn("BotHelp search response not parseable, treating as no results",
			zap.Error(err),
			zap.String("body", excerpt(body)),
		)
		return "", nil
	}

	if len(sr.Items) == 0 {
		return "", nil
	}

	return subscriber.Ref(sr.Items[0].ID), nil
}

// postJSON issues an authenticated JSON POST and returns the response status
// and body. Transport failures come back coded with failCode, auth failures
// with AUTH_FAILED.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, failCode string) (int, []byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		c.metrics.RecordAPICall(path, "auth_error")
		return 0, nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, apperrors.NewAppError(apperrors.ErrInternal, "failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, apperrors.NewAppError(apperrors.ErrInternal, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPICall(path, "transport_error")
		return 0, nil, apperrors.NewAppError(failCode, "request to BotHelp failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordAPICall(path, "transport_error")
		return 0, nil, apperrors.NewAppError(apperrors.ErrMalformedResponse, "failed to read BotHelp response", err)
	}

	c.metrics.RecordAPICall(path, strconv.Itoa(resp.StatusCode))
	return resp.StatusCode, body, nil
}
