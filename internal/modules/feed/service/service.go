package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/domain"
	banlogRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/repository"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/samber/oops"
)

const feedSize = 50

// Service renders the ban log as an RSS feed
type Service struct {
	botName string
	banlog  banlogRepo.Repository
}

func New(cfg *config.Config, banlog banlogRepo.Repository) *Service {
	return &Service{
		botName: cfg.BotName,
		banlog:  banlog,
	}
}

// GenerateFeed builds a feed of the most recently banned bots.
func (s *Service) GenerateFeed(baseURL string) (*feeds.Feed, error) {
	entries, err := s.banlog.Recent(feedSize)
	if err != nil {
		return nil, oops.With("context", "failed to read ban log").Wrap(err)
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - banned bots", s.botName),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss/bans", baseURL)},
		Description: "Bots recently banned across all protected channels",
		Author:      &feeds.Author{Name: s.botName},
		Created:     time.Now(),
	}
	if len(entries) > 0 {
		feed.Updated = entries[0].BannedAt
	}

	for _, entry := range entries {
		feed.Items = append(feed.Items, s.entryToFeedItem(entry))
	}
	return feed, nil
}

func (s *Service) entryToFeedItem(entry *domain.Entry) *feeds.Item {
	description := fmt.Sprintf("%s was banned in %d of %d channels.", entry.Name, entry.Banned, entry.Channels)

	content := fmt.Sprintf("<p>%s</p>", html.EscapeString(description))
	if len(entry.Evicted) > 0 {
		description += "\nChannels without moderator rights: " + strings.Join(entry.Evicted, ", ")
		content += "<p><strong>Left channels:</strong></p><ul>"
		for _, ch := range entry.Evicted {
			content += fmt.Sprintf("<li>%s</li>", html.EscapeString(ch))
		}
		content += "</ul>"
	}

	return &feeds.Item{
		Title:       fmt.Sprintf("Banned %s", entry.Name),
		Link:        &feeds.Link{Href: fmt.Sprintf("https://www.twitch.tv/%s", entry.Name)},
		Description: description,
		Content:     content,
		Author:      &feeds.Author{Name: s.botName},
		Created:     entry.BannedAt,
		Id:          fmt.Sprintf("%s-%d", entry.Name, entry.BannedAt.Unix()),
	}
}
