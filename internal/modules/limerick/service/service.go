package service

import (
	"context"
	"log/slog"

	channelRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/repository"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/notify"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

// Service posts a limerick about every newly banned bot to the channels
// subscribed to alerts. It never touches registry or channel state.
type Service struct {
	generator Generator
	alerts    channelRepo.AlertRepository
	notifier  notify.Notifier
	limiter   *rate.Limiter
}

// New returns a service; a nil generator disables alerts.
func New(cfg *config.Config, generator Generator, alerts channelRepo.AlertRepository, notifier notify.Notifier) *Service {
	limit := rate.Inf
	if delay := cfg.BanDelay(); delay > 0 {
		limit = rate.Every(delay)
	}

	return &Service{
		generator: generator,
		alerts:    alerts,
		notifier:  notifier,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Announce generates one limerick and sends it to every subscriber.
// A failing channel does not stop delivery to the others.
func (s *Service) Announce(ctx context.Context, name string) error {
	if !s.Enabled() {
		return nil
	}

	subscribers, err := s.alerts.GetSubscribers()
	if err != nil {
		return oops.With("bot", name, "context", "failed to load alert subscribers").Wrap(err)
	}
	if len(subscribers) == 0 {
		return nil
	}

	text, err := s.generator.Generate(ctx, name)
	if err != nil {
		return err
	}

	sent := 0
	for _, channel := range subscribers {
		if err := s.limiter.Wait(ctx); err != nil {
			return oops.With("bot", name).Wrap(err)
		}
		if err := s.notifier.Say(ctx, channel, text); err != nil {
			slog.Warn("Failed to deliver limerick", "channel", channel, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Limerick alert sent", "bot", name, "channels", sent)
	return nil
}
