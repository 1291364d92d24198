package bothelp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/config"
	"github.com/wekeepgrowing/tagrelay/internal/domain/subscriber"
	apperrors "github.com/wekeepgrowing/tagrelay/pkg/errors"
)

// rawServer serves a fixed search response and captures the request.
type rawServer struct {
	searchStatus int
	searchBody   string

	lastAuth   string
	lastSearch []byte
}

func newRawClient(t *testing.T, s *rawServer) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-xyz",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/subscribers/search", func(w http.ResponseWriter, r *http.Request) {
		s.lastAuth = r.Header.Get("Authorization")
		s.lastSearch, _ = io.ReadAll(r.Body)
		if s.searchStatus != 0 {
			w.WriteHeader(s.searchStatus)
		}
		_, _ = w.Write([]byte(s.searchBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(config.BotHelpConfig{
		APIBase:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Tag:          "sub_active",
	}, zap.NewNop(), nil)
}

func TestFindSubscriberByChatID(t *testing.T) {
	server := &rawServer{searchBody: `{"items":[{"id":"sub_1","name":"x"},{"id":"sub_2"}]}`}
	client := newRawClient(t, server)

	ref, err := client.FindSubscriber(context.Background(), subscriber.ChatID("12345"))

	require.NoError(t, err)
	assert.Equal(t, subscriber.Ref("sub_1"), ref)
	assert.Equal(t, "Bearer tok-xyz", server.lastAuth)
	assert.JSONEq(t, `{"telegram_id":"12345"}`, string(server.lastSearch))
}

func TestFindSubscriberByEmail(t *testing.T) {
	server := &rawServer{searchBody: `{"items":[{"id":"sub_9"}]}`}
	client := newRawClient(t, server)

	ref, err := client.FindSubscriber(context.Background(), subscriber.Email("a@b.com"))

	require.NoError(t, err)
	assert.Equal(t, subscriber.Ref("sub_9"), ref)
	assert.JSONEq(t, `{"email":"a@b.com"}`, string(server.lastSearch))
}

func TestFindSubscriberNumericID(t *testing.T) {
	server := &rawServer{searchBody: `{"items":[{"id":42}]}`}
	client := newRawClient(t, server)

	ref, err := client.FindSubscriber(context.Background(), subscriber.ChatID("1"))

	require.NoError(t, err)
	assert.Equal(t, subscriber.Ref("42"), ref)
}

func TestFindSubscriberNotFound(t *testing.T) {
	server := &rawServer{searchBody: `{"items":[]}`}
	client := newRawClient(t, server)

	ref, err := client.FindSubscriber(context.Background(), subscriber.ChatID("1"))

	require.NoError(t, err)
	assert.Empty(t, ref)
}

func TestFindSubscriberMalformedResponseTreatedAsEmpty(t *testing.T) {
	server := &rawServer{searchBody: `<html>bad gateway</html>`}
	client := newRawClient(t, server)

	ref, err := client.FindSubscriber(context.Background(), subscriber.ChatID("1"))

	// Upstream instability degrades to "no results", not a failure.
	require.NoError(t, err)
	assert.Empty(t, ref)
}

func TestFindSubscriberNonSuccessStatus(t *testing.T) {
	server := &rawServer{searchStatus: http.StatusBadGateway, searchBody: "upstream error"}
	client := newRawClient(t, server)

	_, err := client.FindSubscriber(context.Background(), subscriber.ChatID("1"))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrLookupFailed, apperrors.CodeOf(err))
}

func TestFindSubscriberTransportFailure(t *testing.T) {
	client := NewClient(config.BotHelpConfig{
		APIBase: "http://127.0.0.1:1",
	}, zap.NewNop(), nil)

	_, err := client.FindSubscriber(context.Background(), subscriber.ChatID("1"))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthFailed, apperrors.CodeOf(err))
}
