package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/binary-bouncer/internal/di"
	syncService "github.com/reshetovitsme/binary-bouncer/internal/modules/sync/service"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	httpServer "github.com/reshetovitsme/binary-bouncer/internal/transport/http"
	"github.com/reshetovitsme/binary-bouncer/internal/transport/twitch"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	// text for humans on stdout, errors as JSON on stderr
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	logger := slog.New(slogmulti.Fanout(textHandler, jsonHandler))
	slog.SetDefault(logger)

	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AppEnv == config.AppEnvLocal || cfg.AppEnv == config.AppEnvDevelopment {
		level.Set(slog.LevelDebug)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chat := do.MustInvoke[*twitch.Chat](injector)
	engine := do.MustInvoke[*syncService.Engine](injector)
	server := do.MustInvoke[*httpServer.Server](injector)

	chat.Start()
	engine.Start()

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			cancel()
		}
	}()

	if b := do.MustInvoke[*bot.Bot](injector); b != nil {
		go b.Start(ctx)
	} else {
		slog.Info("TELEGRAM_BOT_TOKEN not set, operator console disabled")
	}

	slog.Info("Application started", "bot", cfg.BotName, "port", cfg.HTTPPort, "env", cfg.AppEnv)

	<-ctx.Done()
	slog.Info("Shutting down...")
}
