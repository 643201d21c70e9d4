package service

import (
	"context"
	"log/slog"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/repository"
	statsRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/stats/repository"
	"github.com/samber/oops"
)

// Membership owns the joined state of channels: the registry entry, the alert
// subscription that depends on it and the total-joined counter.
type Membership struct {
	channels channelRepo.Repository
	alerts   channelRepo.AlertRepository
	stats    statsRepo.Repository
}

func NewMembership(channels channelRepo.Repository, alerts channelRepo.AlertRepository, stats statsRepo.Repository) *Membership {
	return &Membership{
		channels: channels,
		alerts:   alerts,
		stats:    stats,
	}
}

// Join persists the channel and counts it. It reports false when the channel was already joined.
func (m *Membership) Join(channel *domain.Channel) (bool, error) {
	added, err := m.channels.AddChannel(channel)
	if err != nil {
		return false, oops.With("channel", channel.Name, "context", "failed to join channel").Wrap(err)
	}
	if !added {
		return false, nil
	}

	if _, err := m.stats.AddJoined(1); err != nil {
		slog.Error("Failed to update joined counter", "channel", channel.Name, "error", err)
	}
	return true, nil
}

// Leave removes the channel together with its alert subscription.
func (m *Membership) Leave(name string) (bool, error) {
	removed, err := m.channels.DeleteChannel(name)
	if err != nil {
		return false, oops.With("channel", name, "context", "failed to leave channel").Wrap(err)
	}
	if !removed {
		return false, nil
	}

	m.release(name)
	return true, nil
}

// EvictByID drops the channel owned by accountID after it revoked moderator rights.
func (m *Membership) EvictByID(_ context.Context, accountID string) (string, bool, error) {
	name, removed, err := m.channels.DeleteChannelByID(accountID)
	if err != nil {
		return "", false, oops.With("account_id", accountID, "context", "failed to evict channel").Wrap(err)
	}
	if !removed {
		return "", false, nil
	}

	m.release(name)
	return name, true, nil
}

func (m *Membership) IsJoined(name string) (bool, error) {
	channels, err := m.channels.GetAllChannels()
	if err != nil {
		return false, err
	}
	for _, ch := range channels {
		if ch.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *Membership) Get(name string) (*domain.Channel, error) {
	return m.channels.GetChannel(name)
}

func (m *Membership) All() ([]*domain.Channel, error) {
	return m.channels.GetAllChannels()
}

func (m *Membership) release(name string) {
	if _, err := m.alerts.Unsubscribe(name); err != nil {
		slog.Error("Failed to drop alert subscription", "channel", name, "error", err)
	}
	if _, err := m.stats.AddJoined(-1); err != nil {
		slog.Error("Failed to update joined counter", "channel", name, "error", err)
	}
}
