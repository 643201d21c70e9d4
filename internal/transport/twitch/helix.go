package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/samber/oops"
	"github.com/tidwall/gjson"
)

// Helix is a minimal client of the Twitch Helix API covering user lookup and
// moderation. The access token is used as configured and never refreshed.
type Helix struct {
	baseURL  string
	clientID string
	token    string
	client   *http.Client
}

func NewHelix(cfg *config.Config, client *http.Client) *Helix {
	return &Helix{
		baseURL:  strings.TrimRight(cfg.HelixURL, "/"),
		clientID: cfg.TwitchClientID,
		token:    strings.TrimPrefix(cfg.TwitchAccessToken, "oauth:"),
		client:   client,
	}
}

// GetUserID returns the account id of login, or ErrUserNotFound.
func (h *Helix) GetUserID(ctx context.Context, login string) (string, error) {
	body, err := h.do(ctx, http.MethodGet, "/users", url.Values{"login": {login}}, nil)
	if err != nil {
		return "", oops.With("login", login).Wrap(err)
	}

	id := gjson.GetBytes(body, "data.0.id")
	if !id.Exists() || id.String() == "" {
		return "", oops.With("login", login).Wrap(errors.ErrUserNotFound)
	}
	return id.String(), nil
}

func (h *Helix) BanUser(ctx context.Context, broadcasterID, moderatorID, userID, reason string) error {
	payload, err := json.Marshal(map[string]any{
		"data": map[string]string{"user_id": userID, "reason": reason},
	})
	if err != nil {
		return oops.With("user_id", userID).Wrap(err)
	}

	query := url.Values{"broadcaster_id": {broadcasterID}, "moderator_id": {moderatorID}}
	body, err := h.do(ctx, http.MethodPost, "/moderation/bans", query, payload)
	if err != nil {
		return oops.With("broadcaster_id", broadcasterID, "user_id", userID).Wrap(err)
	}

	// a ban that did not take effect comes back without data
	if data := gjson.GetBytes(body, "data"); !data.IsArray() || len(data.Array()) == 0 {
		return oops.With("broadcaster_id", broadcasterID, "user_id", userID).Wrap(errors.ErrMissingData)
	}
	return nil
}

func (h *Helix) UnbanUser(ctx context.Context, broadcasterID, moderatorID, userID string) error {
	query := url.Values{"broadcaster_id": {broadcasterID}, "moderator_id": {moderatorID}, "user_id": {userID}}
	if _, err := h.do(ctx, http.MethodDelete, "/moderation/bans", query, nil); err != nil {
		return oops.With("broadcaster_id", broadcasterID, "user_id", userID).Wrap(err)
	}
	return nil
}

// RemoveModerator drops the moderator role of userID on the channel.
func (h *Helix) RemoveModerator(ctx context.Context, broadcasterID, userID string) error {
	query := url.Values{"broadcaster_id": {broadcasterID}, "user_id": {userID}}
	if _, err := h.do(ctx, http.MethodDelete, "/moderation/moderators", query, nil); err != nil {
		return oops.With("broadcaster_id", broadcasterID, "user_id", userID).Wrap(err)
	}
	return nil
}

func (h *Helix) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	endpoint := h.baseURL + path + "?" + query.Encode()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	req.Header.Set("Client-Id", h.clientID)
	req.Header.Set("Authorization", "Bearer "+h.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, oops.With("method", method, "path", path).Wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.With("method", method, "path", path).Wrap(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, classify(resp.StatusCode, body)
}

func classify(status int, body []byte) error {
	message := gjson.GetBytes(body, "message").String()
	builder := oops.With("status", status, "message", message)

	switch status {
	case http.StatusUnauthorized:
		return builder.Wrap(errors.ErrBadToken)
	case http.StatusForbidden:
		return builder.Wrap(errors.ErrNotModerator)
	case http.StatusBadRequest:
		lower := strings.ToLower(message)
		switch {
		case strings.Contains(lower, "already banned"):
			return builder.Wrap(errors.ErrAlreadyBanned)
		case strings.Contains(lower, "not banned"):
			return builder.Wrap(errors.ErrNotBanned)
		}
	}
	return builder.Errorf("helix request failed")
}
