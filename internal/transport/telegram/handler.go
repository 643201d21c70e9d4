package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	channelDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	enforcementDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/enforcement/domain"
	operatorDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/operator/domain"
	statsDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/stats/domain"
	syncService "github.com/reshetovitsme/binary-bouncer/internal/modules/sync/service"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
)

// Subscriptions is the operator side of the subscription manager.
type Subscriptions interface {
	ForceJoin(ctx context.Context, name string) (channelDomain.OptInResult, enforcementDomain.SweepResult, error)
	ForceLeave(ctx context.Context, name string) (channelDomain.OptOutResult, error)
}

type Channels interface {
	All() ([]*channelDomain.Channel, error)
}

type Syncer interface {
	RunOnce(ctx context.Context) error
	Ingest(ctx context.Context, name string) (*syncService.IngestResult, error)
}

type Stats interface {
	Snapshot() (*statsDomain.Snapshot, error)
}

type Operators interface {
	IsAuthorized(telegramID int64) bool
	Touch(telegramID int64, username string) (*operatorDomain.Operator, error)
	GetAllOperators() ([]*operatorDomain.Operator, error)
}

// Replier sends a text answer to a Telegram chat.
type Replier func(ctx context.Context, chatID int64, text string)

// Handler is the operator console: forced joins and leaves, manual bans and status.
type Handler struct {
	cfg           *config.Config
	subscriptions Subscriptions
	channels      Channels
	syncer        Syncer
	stats         Stats
	operators     Operators

	wg sync.WaitGroup
}

func New(cfg *config.Config, subscriptions Subscriptions, channels Channels, syncer Syncer, stats Stats, operators Operators) *Handler {
	return &Handler{
		cfg:           cfg,
		subscriptions: subscriptions,
		channels:      channels,
		syncer:        syncer,
		stats:         stats,
		operators:     operators,
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.wrap(h.handleStart))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.wrap(h.handleStart))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.wrap(h.handleStatus))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/channels", bot.MatchTypeExact, h.wrap(h.handleChannels))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/forcejoin", bot.MatchTypePrefix, h.wrap(h.handleForceJoin))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/forceleave", bot.MatchTypePrefix, h.wrap(h.handleForceLeave))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/deepban", bot.MatchTypePrefix, h.wrap(h.handleDeepBan))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/sync", bot.MatchTypeExact, h.wrap(h.handleSync))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/operators", bot.MatchTypeExact, h.wrap(h.handleOperators))
}

// HandleUpdate is the default handler; anything that is not a command is ignored.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message != nil {
		slog.Debug("Ignoring telegram message", "chat_id", update.Message.Chat.ID)
	}
}

// Wait blocks until background console jobs are done.
func (h *Handler) Wait() {
	h.wg.Wait()
}

type command func(ctx context.Context, reply Replier, chatID int64, args []string)

func (h *Handler) wrap(cmd command) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		reply := func(ctx context.Context, chatID int64, text string) {
			if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
				slog.Error("Failed to send telegram reply", "chat_id", chatID, "error", err)
			}
		}
		h.Dispatch(ctx, reply, update.Message.From.ID, update.Message.From.Username, update.Message.Chat.ID, update.Message.Text, cmd)
	}
}

// Dispatch authorizes the sender and runs cmd with the words after the command.
func (h *Handler) Dispatch(ctx context.Context, reply Replier, userID int64, username string, chatID int64, text string, cmd command) {
	if !h.operators.IsAuthorized(userID) {
		slog.Warn("Unauthorized console access", "user_id", userID, "username", username)
		reply(ctx, chatID, "❌ Unauthorized")
		return
	}
	if _, err := h.operators.Touch(userID, username); err != nil {
		slog.Error("Failed to record operator", "user_id", userID, "error", err)
	}

	fields := strings.Fields(text)
	if len(fields) > 0 {
		fields = fields[1:]
	}
	cmd(ctx, reply, chatID, fields)
}

func (h *Handler) handleStart(ctx context.Context, reply Replier, chatID int64, _ []string) {
	text := fmt.Sprintf(`👋 %s operator console

Available commands:
/help - Show this help message
/status - Show counters and last sync
/channels - List protected channels
/forcejoin <channel> - Protect a channel and mass-ban its bots
/forceleave <channel> - Stop protecting a channel
/deepban <bot> - Ban one bot in every protected channel now
/sync - Run a bot list sync now
/operators - List console operators`, h.cfg.BotName)

	reply(ctx, chatID, text)
}

func (h *Handler) handleStatus(ctx context.Context, reply Replier, chatID int64, _ []string) {
	snap, err := h.stats.Snapshot()
	if err != nil {
		reply(ctx, chatID, fmt.Sprintf("❌ Failed to get status: %v", err))
		return
	}

	lastSync := snap.LastSync
	if lastSync == "" {
		lastSync = "never"
	}

	reply(ctx, chatID, fmt.Sprintf(`📊 Bot Status:

Channels joined: %d
Bots banned: %d
Last banned: %s
Last sync: %s
Sync interval: %d seconds`,
		snap.TotalJoined, snap.TotalBanned, snap.LastBanned, lastSync, h.cfg.SyncInterval))
}

func (h *Handler) handleChannels(ctx context.Context, reply Replier, chatID int64, _ []string) {
	channels, err := h.channels.All()
	if err != nil {
		reply(ctx, chatID, fmt.Sprintf("❌ Failed to list channels: %v", err))
		return
	}

	if len(channels) == 0 {
		reply(ctx, chatID, "📭 No channels joined yet.")
		return
	}

	var text strings.Builder
	text.WriteString("📋 Protected Channels:\n\n")
	for i, ch := range channels {
		text.WriteString(fmt.Sprintf("%d. %s (ID: %s)\n", i+1, ch.Name, ch.AccountID))
	}
	reply(ctx, chatID, text.String())
}

func (h *Handler) handleForceJoin(ctx context.Context, reply Replier, chatID int64, args []string) {
	if len(args) < 1 {
		reply(ctx, chatID, "Usage: /forcejoin <channel>")
		return
	}
	name := args[0]

	reply(ctx, chatID, fmt.Sprintf("⏳ Joining %s and banning known bots...", name))
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		result, sweep, err := h.subscriptions.ForceJoin(ctx, name)
		if err != nil {
			reply(ctx, chatID, fmt.Sprintf("❌ Failed to join %s: %v", name, err))
			return
		}

		switch result {
		case channelDomain.OptInResultAlreadyJoined:
			reply(ctx, chatID, fmt.Sprintf("ℹ️ %s is already protected", name))
		case channelDomain.OptInResultChannelNotFound:
			reply(ctx, chatID, fmt.Sprintf("❌ Channel %s does not exist", name))
		case channelDomain.OptInResultNeedsModerator:
			reply(ctx, chatID, fmt.Sprintf("⚠️ %s has not made %s a moderator, channel dropped after %d bans", name, h.cfg.BotName, sweep.Succeeded))
		default:
			reply(ctx, chatID, fmt.Sprintf("✅ %s joined, %d of %d bots banned", name, sweep.Succeeded, sweep.Attempted))
		}
	}()
}

func (h *Handler) handleForceLeave(ctx context.Context, reply Replier, chatID int64, args []string) {
	if len(args) < 1 {
		reply(ctx, chatID, "Usage: /forceleave <channel>")
		return
	}
	name := args[0]

	result, err := h.subscriptions.ForceLeave(ctx, name)
	if err != nil {
		reply(ctx, chatID, fmt.Sprintf("❌ Failed to leave %s: %v", name, err))
		return
	}
	if result == channelDomain.OptOutResultNotJoined {
		reply(ctx, chatID, fmt.Sprintf("ℹ️ %s was not protected", name))
		return
	}
	reply(ctx, chatID, fmt.Sprintf("✅ Left %s", name))
}

func (h *Handler) handleDeepBan(ctx context.Context, reply Replier, chatID int64, args []string) {
	if len(args) < 1 {
		reply(ctx, chatID, "Usage: /deepban <bot>")
		return
	}
	name := args[0]

	reply(ctx, chatID, fmt.Sprintf("⏳ Banning %s everywhere...", name))
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		result, err := h.syncer.Ingest(ctx, name)
		if err != nil {
			reply(ctx, chatID, fmt.Sprintf("❌ Failed to ban %s: %v", name, err))
			return
		}
		if result.Dead {
			reply(ctx, chatID, fmt.Sprintf("💀 %s does not exist anymore, recorded as dead", result.Name))
			return
		}
		reply(ctx, chatID, fmt.Sprintf("✅ %s banned in %d of %d channels", result.Name, result.Sweep.Succeeded, result.Sweep.Attempted))
	}()
}

func (h *Handler) handleSync(ctx context.Context, reply Replier, chatID int64, _ []string) {
	reply(ctx, chatID, "⏳ Syncing bot list...")
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.syncer.RunOnce(ctx); err != nil {
			reply(ctx, chatID, fmt.Sprintf("❌ Sync failed: %v", err))
			return
		}
		reply(ctx, chatID, "✅ Sync finished")
	}()
}

func (h *Handler) handleOperators(ctx context.Context, reply Replier, chatID int64, _ []string) {
	operators, err := h.operators.GetAllOperators()
	if err != nil {
		reply(ctx, chatID, fmt.Sprintf("❌ Failed to list operators: %v", err))
		return
	}

	var text strings.Builder
	text.WriteString("👮 Operators:\n\n")
	for _, op := range operators {
		role := "operator"
		if op.IsAdmin {
			role = "admin"
		}
		text.WriteString(fmt.Sprintf("• @%s (%d, %s), last seen %s\n", op.Username, op.TelegramID, role, op.LastSeen.Format("2006-01-02 15:04")))
	}
	reply(ctx, chatID, text.String())
}
