package service

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
)

const banReason = "Bot"

// Resolver maps an account name to its id.
type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// ModerationAPI is the ban surface of the chat platform.
type ModerationAPI interface {
	BanUser(ctx context.Context, broadcasterID, moderatorID, userID, reason string) error
	UnbanUser(ctx context.Context, broadcasterID, moderatorID, userID string) error
}

// DeadBots records accounts that no longer exist.
type DeadBots interface {
	MarkDead(name, accountID string) error
}

// Evictor drops a channel from the joined registry.
type Evictor interface {
	EvictByID(ctx context.Context, accountID string) (string, bool, error)
}

// Enforcer applies one ban or unban in one channel and classifies the result.
// It is the only component that evicts channels.
type Enforcer struct {
	botID    string
	resolver Resolver
	api      ModerationAPI
	bots     DeadBots
	evictor  Evictor
}

func NewEnforcer(cfg *config.Config, resolver Resolver, api ModerationAPI, bots DeadBots, evictor Evictor) *Enforcer {
	return &Enforcer{
		botID:    cfg.BotID,
		resolver: resolver,
		api:      api,
		bots:     bots,
		evictor:  evictor,
	}
}

func (e *Enforcer) Enforce(ctx context.Context, action domain.Action, target, channelID, channelName string) domain.Outcome {
	outcome := e.enforce(ctx, action, target, channelID, channelName)
	enforcementOutcomes.WithLabelValues(action.String(), outcome.String()).Inc()
	return outcome
}

func (e *Enforcer) enforce(ctx context.Context, action domain.Action, target, channelID, channelName string) domain.Outcome {
	logger := slog.With("action", action, "bot", target, "channel", channelName)

	targetID, err := e.resolver.Resolve(ctx, target)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountNotFound) {
			logger.Warn("Could not find user, moving to dead bots")
			if err := e.bots.MarkDead(target, ""); err != nil {
				logger.Error("Failed to record dead bot", "error", err)
			}
			return domain.OutcomeTargetGone
		}
		logger.Error("Failed to resolve user", "error", err)
		return domain.OutcomeTransientError
	}

	switch action {
	case domain.ActionBan:
		err = e.api.BanUser(ctx, channelID, e.botID, targetID, banReason)
	case domain.ActionUnban:
		err = e.api.UnbanUser(ctx, channelID, e.botID, targetID)
	default:
		logger.Error("Unknown moderation action")
		return domain.OutcomeTransientError
	}

	switch {
	case err == nil:
		logger.Info("Moderation action applied")
		return domain.OutcomeSuccess
	case stderrors.Is(err, errors.ErrMissingData), stderrors.Is(err, errors.ErrNotModerator):
		logger.Warn("Bot does not have moderator permissions in channel, leaving", "error", err)
		e.evict(ctx, channelID, logger)
		return domain.OutcomePermissionLost
	case stderrors.Is(err, errors.ErrAlreadyBanned), stderrors.Is(err, errors.ErrNotBanned):
		logger.Info("Nothing to do, user already in requested state", "error", err)
		return domain.OutcomeTransientError
	default:
		logger.Error("Unexpected error during moderation action", "error", err)
		return domain.OutcomeTransientError
	}
}

func (e *Enforcer) evict(ctx context.Context, channelID string, logger *slog.Logger) {
	name, removed, err := e.evictor.EvictByID(ctx, channelID)
	if err != nil {
		logger.Error("Failed to evict channel", "channel_id", channelID, "error", err)
		return
	}
	if removed {
		channelEvictions.Inc()
		logger.Info("Channel evicted", "evicted", name)
	}
}
