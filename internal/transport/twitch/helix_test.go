package twitch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHelix(t *testing.T, handler http.HandlerFunc) *Helix {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{HelixURL: srv.URL + "/", TwitchClientID: "cid", TwitchAccessToken: "oauth:tok"}
	return NewHelix(cfg, srv.Client())
}

func TestGetUserID(t *testing.T) {
	h := newHelix(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "cid", r.Header.Get("Client-Id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.URL.Query().Get("login") == "alpha" {
			_, _ = w.Write([]byte(`{"data":[{"id":"1","login":"alpha"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	id, err := h.GetUserID(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	_, err = h.GetUserID(context.Background(), "ghost")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestBanUser(t *testing.T) {
	var body string
	h := newHelix(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "99", r.URL.Query().Get("broadcaster_id"))
		assert.Equal(t, "7", r.URL.Query().Get("moderator_id"))
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		_, _ = w.Write([]byte(`{"data":[{"broadcaster_id":"99","user_id":"1"}]}`))
	})

	require.NoError(t, h.BanUser(context.Background(), "99", "7", "1", "Bot"))
	assert.JSONEq(t, `{"data":{"user_id":"1","reason":"Bot"}}`, body)
}

func TestErrorMapping(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   error
	}{
		"missing data":   {http.StatusOK, `{}`, errors.ErrMissingData},
		"forbidden":      {http.StatusForbidden, `{"message":"The user in moderator_id is not one of the broadcaster's moderators."}`, errors.ErrNotModerator},
		"already banned": {http.StatusBadRequest, `{"message":"The user specified in the user_id field is already banned."}`, errors.ErrAlreadyBanned},
		"bad token":      {http.StatusUnauthorized, `{"message":"Invalid OAuth token"}`, errors.ErrBadToken},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHelix(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			assert.ErrorIs(t, h.BanUser(context.Background(), "99", "7", "1", "Bot"), tc.want)
		})
	}
}

func TestUnbanNotBanned(t *testing.T) {
	h := newHelix(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "1", r.URL.Query().Get("user_id"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The user specified in the user_id field is not banned."}`))
	})

	assert.ErrorIs(t, h.UnbanUser(context.Background(), "99", "7", "1"), errors.ErrNotBanned)
}

func TestRemoveModerator(t *testing.T) {
	h := newHelix(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/moderation/moderators", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, h.RemoveModerator(context.Background(), "99", "7"))
}
