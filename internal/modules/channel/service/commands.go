package service

import (
	"context"
	"fmt"
	"log/slog"

	botDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	enforcementDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/domain"
)

// User entry points. Each one answers the invoking user in the bot's own chat.

func (s *Subscriptions) JoinCommand(ctx context.Context, user string) error {
	user = botDomain.NormalizeName(user)
	if joined, err := s.membership.IsJoined(user); err == nil && joined {
		return s.say(ctx, fmt.Sprintf("%s, You are already protected.", user))
	}

	result, _, err := s.optIn(ctx, user, func() {
		s.say(ctx, fmt.Sprintf("Starting mass exodus of bots on %s's channel. This can take around ~1hr, please be patient...", user))
	})
	if err != nil {
		return err
	}

	switch result {
	case domain.OptInResultAlreadyJoined:
		return s.say(ctx, fmt.Sprintf("%s, You are already protected.", user))
	case domain.OptInResultChannelNotFound:
		return s.say(ctx, fmt.Sprintf("%s, I could not find your channel.", user))
	case domain.OptInResultNeedsModerator:
		return s.say(ctx, s.needsModerator(user))
	default:
		s.say(ctx, fmt.Sprintf("Finished banning all bots on %s's channel.", user))
		return s.say(ctx, fmt.Sprintf("%s, you are now protected.", user))
	}
}

func (s *Subscriptions) LeaveCommand(ctx context.Context, user string) error {
	user = botDomain.NormalizeName(user)
	result, err := s.OptOut(ctx, user)
	if err != nil {
		return err
	}

	if result == domain.OptOutResultNotJoined {
		return s.say(ctx, fmt.Sprintf("%s, you were not on my protected list.", user))
	}
	return s.say(ctx, fmt.Sprintf("You have left the bot-free zone, %s, New bots will no longer be banned on your channel.", user))
}

// LoveBotsCommand is a leave that also lifts every bot ban.
func (s *Subscriptions) LoveBotsCommand(ctx context.Context, user string) error {
	user = botDomain.NormalizeName(user)
	if joined, err := s.membership.IsJoined(user); err == nil && !joined {
		return s.say(ctx, fmt.Sprintf("%s, you are not currently my protected list, unable to mass-unban.", user))
	}

	s.say(ctx, fmt.Sprintf("Starting mass unbanning of bots on %s's channel. This can take around ~1hr, please be patient and do not unmod %s until it is over...", user, s.cfg.BotName))

	result, sweep, err := s.OptOutAndUnban(ctx, user)
	if err != nil {
		return err
	}
	if result == domain.OptOutResultNotJoined {
		return s.say(ctx, fmt.Sprintf("%s, you are not currently my protected list, unable to mass-unban.", user))
	}

	if !sweep.Completed {
		// moderator rights were lost mid-unban; the channel is gone from the list either way
		return s.say(ctx, s.needsModerator(user))
	}
	s.say(ctx, fmt.Sprintf("Finished unbanning all bots on %s's channel.", user))
	return s.say(ctx, fmt.Sprintf("%s -- You have left the bot-free zone and I have unbanned all bots on your channel.", user))
}

func (s *Subscriptions) needsModerator(user string) string {
	return fmt.Sprintf("@%s, Please add %s as a moderator and try again (sometimes it takes a minute or two to register the new mod).", user, s.cfg.BotName)
}

func (s *Subscriptions) AlertCommand(ctx context.Context, user string) error {
	user = botDomain.NormalizeName(user)
	result, err := s.Subscribe(ctx, user)
	if err != nil {
		return err
	}

	switch result {
	case domain.AlertResultNotJoined:
		return s.say(ctx, fmt.Sprintf("%s, you need to join first before managing limerick alerts.", user))
	case domain.AlertResultAlreadySubscribed:
		return s.say(ctx, fmt.Sprintf("%s - You are already added to the limerick alerts", user))
	default:
		return s.say(ctx, fmt.Sprintf("%s - You have been added to the silly limericks alerts", user))
	}
}

func (s *Subscriptions) NoAlertCommand(ctx context.Context, user string) error {
	user = botDomain.NormalizeName(user)
	result, err := s.Unsubscribe(ctx, user)
	if err != nil {
		return err
	}

	switch result {
	case domain.AlertResultNotJoined:
		return s.say(ctx, fmt.Sprintf("%s, you need to join first before managing limerick alerts.", user))
	case domain.AlertResultNotSubscribed:
		return s.say(ctx, fmt.Sprintf("%s - You were not receiving alerts.", user))
	default:
		return s.say(ctx, fmt.Sprintf("%s - You have been removed from the silly limericks alerts", user))
	}
}

// Operator entry points only log; the caller decides how to report.

func (s *Subscriptions) ForceJoin(ctx context.Context, name string) (domain.OptInResult, enforcementDomain.SweepResult, error) {
	result, sweep, err := s.OptIn(ctx, name)
	if err != nil {
		slog.Error("Forced join failed", "channel", name, "error", err)
		return result, sweep, err
	}
	slog.Info("Forced join", "channel", name, "result", result, "attempted", sweep.Attempted, "succeeded", sweep.Succeeded)
	return result, sweep, nil
}

func (s *Subscriptions) ForceLeave(ctx context.Context, name string) (domain.OptOutResult, error) {
	result, err := s.OptOut(ctx, name)
	if err != nil {
		slog.Error("Forced leave failed", "channel", name, "error", err)
		return result, err
	}
	slog.Info("Forced leave", "channel", name, "result", result)
	return result, nil
}

func (s *Subscriptions) say(ctx context.Context, text string) error {
	if err := s.notifier.Say(ctx, s.cfg.BotName, text); err != nil {
		slog.Error("Failed to send chat message", "error", err)
		return err
	}
	return nil
}
