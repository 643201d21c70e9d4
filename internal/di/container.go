package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	accountService "github.com/reshetovitsme/binary-bouncer/internal/modules/account/service"
	banlogRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/repository"
	botRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/repository"
	channelRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/repository"
	channelService "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/service"
	enforcementService "github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/service"
	feedService "github.com/reshetovitsme/binary-bouncer/internal/modules/feed/service"
	insightsService "github.com/reshetovitsme/binary-bouncer/internal/modules/insights/service"
	limerickService "github.com/reshetovitsme/binary-bouncer/internal/modules/limerick/service"
	operatorRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/operator/repository"
	operatorService "github.com/reshetovitsme/binary-bouncer/internal/modules/operator/service"
	statsRepo "github.com/reshetovitsme/binary-bouncer/internal/modules/stats/repository"
	syncService "github.com/reshetovitsme/binary-bouncer/internal/modules/sync/service"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/httpclient"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/notify"
	httpServer "github.com/reshetovitsme/binary-bouncer/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/binary-bouncer/internal/transport/telegram"
	"github.com/reshetovitsme/binary-bouncer/internal/transport/twitch"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Named HTTP clients
const (
	ClientHelix = "helix-client"
	ClientFeed  = "feed-client"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	provideRepositories(injector)
	provideClients(injector)
	provideServices(injector)
	provideTransports(injector)

	return injector, nil
}

func provideRepositories(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (botRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := botRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize bot repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (channelRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := channelRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize channel repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (channelRepo.AlertRepository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := channelRepo.NewAlertStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize alert repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (statsRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := statsRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize stats repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (banlogRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := banlogRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize ban log").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (operatorRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := operatorRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize operator repository").Wrap(err)
		}
		return repo, nil
	})
}

func provideClients(injector do.Injector) {
	do.ProvideNamed(injector, ClientHelix, func(i do.Injector) (*http.Client, error) {
		return httpclient.New("helix", httpclient.WithMaxRetries(2)), nil
	})

	do.ProvideNamed(injector, ClientFeed, func(i do.Injector) (*http.Client, error) {
		return httpclient.New("insights", httpclient.WithRetryWait(5*time.Second, 30*time.Second)), nil
	})

	do.Provide(injector, func(i do.Injector) (*twitch.Helix, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return twitch.NewHelix(cfg, do.MustInvokeNamed[*http.Client](i, ClientHelix)), nil
	})

	do.Provide(injector, func(i do.Injector) (*insightsService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return insightsService.New(cfg, do.MustInvokeNamed[*http.Client](i, ClientFeed)), nil
	})

	// chat messages go through the relay until the chat client is attached
	do.Provide(injector, func(i do.Injector) (*notify.Relay, error) {
		return notify.NewRelay(), nil
	})
}

func provideServices(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*accountService.Resolver, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return accountService.New(do.MustInvoke[*twitch.Helix](i), cfg.ResolveTTL()), nil
	})

	do.Provide(injector, func(i do.Injector) (*channelService.Membership, error) {
		return channelService.NewMembership(
			do.MustInvoke[channelRepo.Repository](i),
			do.MustInvoke[channelRepo.AlertRepository](i),
			do.MustInvoke[statsRepo.Repository](i),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*enforcementService.Enforcer, error) {
		return enforcementService.NewEnforcer(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*accountService.Resolver](i),
			do.MustInvoke[*twitch.Helix](i),
			do.MustInvoke[botRepo.Repository](i),
			do.MustInvoke[*channelService.Membership](i),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*enforcementService.Sweeper, error) {
		return enforcementService.NewSweeper(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*enforcementService.Enforcer](i),
			do.MustInvoke[channelRepo.Repository](i),
			do.MustInvoke[botRepo.Repository](i),
			do.MustInvoke[*notify.Relay](i),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*channelService.Subscriptions, error) {
		return channelService.NewSubscriptions(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*channelService.Membership](i),
			do.MustInvoke[channelRepo.AlertRepository](i),
			do.MustInvoke[*accountService.Resolver](i),
			do.MustInvoke[*enforcementService.Sweeper](i),
			do.MustInvoke[*twitch.Helix](i),
			do.MustInvoke[*notify.Relay](i),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*limerickService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		var generator limerickService.Generator
		if cfg.OpenAIAPIKey != "" {
			generator = limerickService.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		} else {
			slog.Info("OPENAI_API_KEY not set, limerick alerts disabled")
		}
		return limerickService.New(cfg, generator, do.MustInvoke[channelRepo.AlertRepository](i), do.MustInvoke[*notify.Relay](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*syncService.Engine, error) {
		engine := syncService.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*insightsService.Service](i),
			do.MustInvoke[*accountService.Resolver](i),
			do.MustInvoke[botRepo.Repository](i),
			do.MustInvoke[*enforcementService.Sweeper](i),
			do.MustInvoke[statsRepo.Repository](i),
			do.MustInvoke[banlogRepo.Repository](i),
		)
		if limericks := do.MustInvoke[*limerickService.Service](i); limericks.Enabled() {
			engine.SetAnnouncer(limericks)
		}
		return engine, nil
	})

	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		return feedService.New(do.MustInvoke[*config.Config](i), do.MustInvoke[banlogRepo.Repository](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*operatorService.Service, error) {
		return operatorService.New(do.MustInvoke[*config.Config](i), do.MustInvoke[operatorRepo.Repository](i)), nil
	})
}

func provideTransports(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*twitch.Router, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return twitch.NewRouter(cfg.BotName, do.MustInvoke[*channelService.Subscriptions](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*twitch.Chat, error) {
		chat := twitch.NewChat(do.MustInvoke[*config.Config](i))
		chat.SetHandler(do.MustInvoke[*twitch.Router](i).Handle)
		do.MustInvoke[*notify.Relay](i).SetTarget(chat)
		return chat, nil
	})

	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		membership := do.MustInvoke[*channelService.Membership](i)
		return telegramHandler.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*channelService.Subscriptions](i),
			membership,
			do.MustInvoke[*syncService.Engine](i),
			do.MustInvoke[statsRepo.Repository](i),
			do.MustInvoke[*operatorService.Service](i),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		server := httpServer.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[statsRepo.Repository](i),
			do.MustInvoke[banlogRepo.Repository](i),
		)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// The console is optional: without a token there is no bot.
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.TelegramBotToken == "" {
			return nil, nil
		}
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		b, err := bot.New(cfg.TelegramBotToken, bot.WithDefaultHandler(handler.HandleUpdate))
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		handler.RegisterCommands(b)
		return b, nil
	})
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	}

	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		if _, err := b.Close(ctx); err != nil {
			slog.Warn("Telegram bot close failed", "error", err)
		}
	}

	if engine, err := do.Invoke[*syncService.Engine](injector); err == nil && engine != nil {
		engine.Stop()
	}

	if chat, err := do.Invoke[*twitch.Chat](injector); err == nil && chat != nil {
		chat.Stop()
	}

	// commands in flight see a cancelled context once chat and bot are down
	if router, err := do.Invoke[*twitch.Router](injector); err == nil && router != nil {
		router.Wait()
	}
	if handler, err := do.Invoke[*telegramHandler.Handler](injector); err == nil && handler != nil {
		handler.Wait()
	}

	return nil
}
