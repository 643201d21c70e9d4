package service

import (
	"context"
	"io"
	"net/http"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"github.com/tidwall/gjson"
)

// Service fetches the public list of known chat bots.
type Service struct {
	url    string
	client *http.Client
}

func New(cfg *config.Config, client *http.Client) *Service {
	return &Service{
		url:    cfg.FeedURL,
		client: client,
	}
}

// FetchBotNames returns the bot names in feed order, normalized and without duplicates.
// The feed is {"bots": [[name, channels, last_seen], ...]}; only the name is used.
func (s *Service) FetchBotNames(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, oops.With("url", s.url).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, oops.With("url", s.url, "context", "failed to fetch bot list").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.With("url", s.url, "status", resp.StatusCode).Errorf("unexpected status fetching bot list")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.With("url", s.url).Wrap(err)
	}
	if !gjson.ValidBytes(body) {
		return nil, oops.With("url", s.url).Errorf("bot list is not valid JSON")
	}

	bots := gjson.GetBytes(body, "bots")
	if !bots.IsArray() {
		return nil, oops.With("url", s.url).Errorf("bot list has no bots array")
	}

	var names []string
	bots.ForEach(func(_, entry gjson.Result) bool {
		name := entry.Get("0")
		if name.Type == gjson.String {
			names = append(names, domain.NormalizeName(name.String()))
		}
		return true
	})

	return lo.Uniq(lo.Compact(names)), nil
}
