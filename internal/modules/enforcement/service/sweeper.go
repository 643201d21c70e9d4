package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	botDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	channelDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/notify"
	"github.com/samber/oops"
)

// Enforcement is a single ban/unban call, see Enforcer.
type Enforcement interface {
	Enforce(ctx context.Context, action domain.Action, target, channelID, channelName string) domain.Outcome
}

type JoinedChannels interface {
	GetAllChannels() ([]*channelDomain.Channel, error)
}

type AliveBots interface {
	GetAlive() ([]*botDomain.Bot, error)
}

// Sweeper drives enforcement across one dimension: one bot in every joined
// channel, or every alive bot in one channel. All sweeps share one limiter,
// so concurrent sweeps together stay under the platform rate limit.
type Sweeper struct {
	botName  string
	enforcer Enforcement
	channels JoinedChannels
	bots     AliveBots
	notifier notify.Notifier
	limiter  *rate.Limiter
}

func NewSweeper(cfg *config.Config, enforcer Enforcement, channels JoinedChannels, bots AliveBots, notifier notify.Notifier) *Sweeper {
	limit := rate.Inf
	if delay := cfg.BanDelay(); delay > 0 {
		limit = rate.Every(delay)
	}

	return &Sweeper{
		botName:  cfg.BotName,
		enforcer: enforcer,
		channels: channels,
		bots:     bots,
		notifier: notifier,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// SweepBot bans one newly discovered bot in every joined channel.
// A channel that lost moderator rights is evicted and skipped; the sweep goes on
// with the remaining channels. It stops early only when the target no longer exists.
func (s *Sweeper) SweepBot(ctx context.Context, name string) (domain.SweepResult, error) {
	result := domain.SweepResult{Completed: true}

	channels, err := s.channels.GetAllChannels()
	if err != nil {
		return result, oops.With("bot", name, "context", "failed to load joined channels").Wrap(err)
	}

	for _, ch := range channels {
		if err := s.limiter.Wait(ctx); err != nil {
			result.Completed = false
			return result, oops.With("bot", name).Wrap(err)
		}

		result.Attempted++
		switch s.enforcer.Enforce(ctx, domain.ActionBan, name, ch.AccountID, ch.Name) {
		case domain.OutcomeSuccess:
			result.Succeeded++
		case domain.OutcomePermissionLost:
			result.Completed = false
			result.Evicted = append(result.Evicted, ch.Name)
			sweepsAborted.WithLabelValues("bot").Inc()
			s.say(ctx, fmt.Sprintf("@%s, %s needs to be a moderator on your channel to work! Stopping services on your channel.", ch.Name, s.botName))
		case domain.OutcomeTargetGone:
			result.TargetGone = true
			slog.Info("Bot account is gone, stopping sweep", "bot", name, "attempted", result.Attempted)
			return result, nil
		}
	}

	return result, nil
}

// SweepChannel applies action for every alive bot in one channel. Moderator rights
// are channel-wide, so the first permission loss aborts the whole sweep.
func (s *Sweeper) SweepChannel(ctx context.Context, action domain.Action, channel *channelDomain.Channel) (domain.SweepResult, error) {
	result := domain.SweepResult{Completed: true}

	bots, err := s.bots.GetAlive()
	if err != nil {
		return result, oops.With("channel", channel.Name, "context", "failed to load alive bots").Wrap(err)
	}

	for _, bot := range bots {
		if err := s.limiter.Wait(ctx); err != nil {
			result.Completed = false
			return result, oops.With("channel", channel.Name).Wrap(err)
		}

		result.Attempted++
		switch s.enforcer.Enforce(ctx, action, bot.Name, channel.AccountID, channel.Name) {
		case domain.OutcomeSuccess:
			result.Succeeded++
		case domain.OutcomePermissionLost:
			result.Completed = false
			result.Evicted = []string{channel.Name}
			sweepsAborted.WithLabelValues("channel").Inc()
			slog.Warn("No moderator rights, stopping sweep", "channel", channel.Name, "action", action, "attempted", result.Attempted, "total", len(bots))
			return result, nil
		}
		slog.Debug("Sweep progress", "channel", channel.Name, "action", action, "bot", bot.Name, "done", result.Attempted, "total", len(bots))
	}

	slog.Info("Sweep finished", "channel", channel.Name, "action", action, "attempted", result.Attempted, "succeeded", result.Succeeded)
	return result, nil
}

func (s *Sweeper) say(ctx context.Context, text string) {
	if err := s.notifier.Say(ctx, s.botName, text); err != nil {
		slog.Error("Failed to send chat message", "error", err)
	}
}
