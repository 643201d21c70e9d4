package service

import (
	"context"
	stderrors "errors"
	"log/slog"

	botDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/repository"
	enforcementDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/notify"
	"github.com/samber/oops"
)

type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// ChannelSweeper runs an action for every alive bot in one channel.
type ChannelSweeper interface {
	SweepChannel(ctx context.Context, action enforcementDomain.Action, channel *domain.Channel) (enforcementDomain.SweepResult, error)
}

type ModeratorRemover interface {
	RemoveModerator(ctx context.Context, broadcasterID, userID string) error
}

// Subscriptions implements the opt-in/opt-out state machine of a channel and
// its alert sub-state.
type Subscriptions struct {
	cfg        *config.Config
	membership *Membership
	alerts     channelRepo.AlertRepository
	resolver   Resolver
	sweeper    ChannelSweeper
	moderators ModeratorRemover
	notifier   notify.Notifier
}

func NewSubscriptions(
	cfg *config.Config,
	membership *Membership,
	alerts channelRepo.AlertRepository,
	resolver Resolver,
	sweeper ChannelSweeper,
	moderators ModeratorRemover,
	notifier notify.Notifier,
) *Subscriptions {
	return &Subscriptions{
		cfg:        cfg,
		membership: membership,
		alerts:     alerts,
		resolver:   resolver,
		sweeper:    sweeper,
		moderators: moderators,
		notifier:   notifier,
	}
}

// OptIn joins a channel and mass-bans every alive bot on it.
// The channel is counted as soon as it is persisted; if the sweep loses moderator
// rights the eviction takes the count back.
func (s *Subscriptions) OptIn(ctx context.Context, name string) (domain.OptInResult, enforcementDomain.SweepResult, error) {
	return s.optIn(ctx, name, nil)
}

// optIn runs started, if set, once the channel is joined and right before the mass ban.
func (s *Subscriptions) optIn(ctx context.Context, name string, started func()) (domain.OptInResult, enforcementDomain.SweepResult, error) {
	name = botDomain.NormalizeName(name)
	var sweep enforcementDomain.SweepResult

	joined, err := s.membership.IsJoined(name)
	if err != nil {
		return "", sweep, err
	}
	if joined {
		return domain.OptInResultAlreadyJoined, sweep, nil
	}

	id, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountNotFound) {
			return domain.OptInResultChannelNotFound, sweep, nil
		}
		return "", sweep, oops.With("channel", name).Wrap(err)
	}

	channel := &domain.Channel{Name: name, AccountID: id}
	added, err := s.membership.Join(channel)
	if err != nil {
		return "", sweep, err
	}
	if !added {
		return domain.OptInResultAlreadyJoined, sweep, nil
	}
	slog.Info("Channel joined", "channel", name, "account_id", id)
	if started != nil {
		started()
	}

	sweep, err = s.sweeper.SweepChannel(ctx, enforcementDomain.ActionBan, channel)
	if err != nil {
		return "", sweep, oops.With("channel", name, "context", "mass ban interrupted").Wrap(err)
	}
	if !sweep.Completed {
		return domain.OptInResultNeedsModerator, sweep, nil
	}
	return domain.OptInResultJoined, sweep, nil
}

// OptOut leaves a channel without touching the bans already applied.
func (s *Subscriptions) OptOut(ctx context.Context, name string) (domain.OptOutResult, error) {
	name = botDomain.NormalizeName(name)

	channel, err := s.membership.Get(name)
	if err != nil {
		if stderrors.Is(err, errors.ErrChannelNotFound) {
			return domain.OptOutResultNotJoined, nil
		}
		return "", err
	}

	return s.leave(ctx, channel)
}

// OptOutAndUnban lifts every bot ban on the channel, then leaves it.
// Unban failures, including a permission loss that already evicted the channel,
// never prevent the leave.
func (s *Subscriptions) OptOutAndUnban(ctx context.Context, name string) (domain.OptOutResult, enforcementDomain.SweepResult, error) {
	name = botDomain.NormalizeName(name)
	var sweep enforcementDomain.SweepResult

	channel, err := s.membership.Get(name)
	if err != nil {
		if stderrors.Is(err, errors.ErrChannelNotFound) {
			return domain.OptOutResultNotJoined, sweep, nil
		}
		return "", sweep, err
	}

	sweep, err = s.sweeper.SweepChannel(ctx, enforcementDomain.ActionUnban, channel)
	if err != nil {
		slog.Error("Mass unban interrupted", "channel", name, "error", err)
	}

	// an eviction during the unban has already removed the channel
	if _, err := s.leave(ctx, channel); err != nil {
		return "", sweep, err
	}
	return domain.OptOutResultLeft, sweep, nil
}

func (s *Subscriptions) leave(ctx context.Context, channel *domain.Channel) (domain.OptOutResult, error) {
	removed, err := s.membership.Leave(channel.Name)
	if err != nil {
		return "", err
	}
	if !removed {
		return domain.OptOutResultNotJoined, nil
	}
	slog.Info("Channel left", "channel", channel.Name)

	if err := s.moderators.RemoveModerator(ctx, channel.AccountID, s.cfg.BotID); err != nil {
		slog.Warn("Failed to remove moderator role", "channel", channel.Name, "error", err)
	}
	return domain.OptOutResultLeft, nil
}

// Subscribe adds a joined channel to the limerick alerts.
func (s *Subscriptions) Subscribe(_ context.Context, name string) (domain.AlertResult, error) {
	name = botDomain.NormalizeName(name)

	joined, err := s.membership.IsJoined(name)
	if err != nil {
		return "", err
	}
	if !joined {
		return domain.AlertResultNotJoined, nil
	}

	added, err := s.alerts.Subscribe(name)
	if err != nil {
		return "", oops.With("channel", name).Wrap(err)
	}
	if !added {
		return domain.AlertResultAlreadySubscribed, nil
	}
	return domain.AlertResultSubscribed, nil
}

func (s *Subscriptions) Unsubscribe(_ context.Context, name string) (domain.AlertResult, error) {
	name = botDomain.NormalizeName(name)

	joined, err := s.membership.IsJoined(name)
	if err != nil {
		return "", err
	}
	if !joined {
		return domain.AlertResultNotJoined, nil
	}

	removed, err := s.alerts.Unsubscribe(name)
	if err != nil {
		return "", oops.With("channel", name).Wrap(err)
	}
	if !removed {
		return domain.AlertResultNotSubscribed, nil
	}
	return domain.AlertResultUnsubscribed, nil
}
