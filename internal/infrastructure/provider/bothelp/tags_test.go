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
	apperrors "github.com/wekeepgrowing/tagrelay/pkg/errors"
)

type tagServer struct {
	status int

	addCalls    int
	removeCalls int
	lastPath    string
	lastAuth    string
	lastBody    []byte
}

func newTagClient(t *testing.T, s *tagServer) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-xyz",
			"expires_in":   3600,
		})
	})
	record := func(w http.ResponseWriter, r *http.Request) {
		s.lastPath = r.URL.Path
		s.lastAuth = r.Header.Get("Authorization")
		s.lastBody, _ = io.ReadAll(r.Body)
		if s.status != 0 {
			w.WriteHeader(s.status)
		}
	}
	mux.HandleFunc("/subscribers/tags/add", func(w http.ResponseWriter, r *http.Request) {
		s.addCalls++
		record(w, r)
	})
	mux.HandleFunc("/subscribers/tags/remove", func(w http.ResponseWriter, r *http.Request) {
		s.removeCalls++
		record(w, r)
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

func TestAddTag(t *testing.T) {
	server := &tagServer{}
	client := newTagClient(t, server)

	err := client.AddTag(context.Background(), "sub_1", "sub_active")

	require.NoError(t, err)
	assert.Equal(t, "/subscribers/tags/add", server.lastPath)
	assert.Equal(t, "Bearer tok-xyz", server.lastAuth)
	assert.JSONEq(t, `{"subscriber_id":"sub_1","tag":"sub_active"}`, string(server.lastBody))
}

func TestRemoveTag(t *testing.T) {
	server := &tagServer{}
	client := newTagClient(t, server)

	err := client.RemoveTag(context.Background(), "sub_1", "sub_active")

	require.NoError(t, err)
	assert.Equal(t, "/subscribers/tags/remove", server.lastPath)
	assert.JSONEq(t, `{"subscriber_id":"sub_1","tag":"sub_active"}`, string(server.lastBody))
}

func TestAddTagTwiceSucceeds(t *testing.T) {
	server := &tagServer{}
	client := newTagClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.AddTag(ctx, "sub_1", "sub_active"))
	require.NoError(t, client.AddTag(ctx, "sub_1", "sub_active"))

	assert.Equal(t, 2, server.addCalls)
}

func TestTagMutationRejected(t *testing.T) {
	server := &tagServer{status: http.StatusUnprocessableEntity}
	client := newTagClient(t, server)

	err := client.AddTag(context.Background(), "sub_1", "sub_active")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTagMutationFailed, apperrors.CodeOf(err))
}
