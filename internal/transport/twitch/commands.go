package twitch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Commands is the user-facing subscription surface.
type Commands interface {
	JoinCommand(ctx context.Context, user string) error
	LeaveCommand(ctx context.Context, user string) error
	LoveBotsCommand(ctx context.Context, user string) error
	AlertCommand(ctx context.Context, user string) error
	NoAlertCommand(ctx context.Context, user string) error
}

// Router turns "!command" lines typed in the bot's own channel into calls on Commands.
// Commands can run for a long time (a mass ban), so each one gets its own goroutine.
type Router struct {
	channel  string
	commands map[string]func(context.Context, string) error
	wg       sync.WaitGroup
}

func NewRouter(botName string, c Commands) *Router {
	return &Router{
		channel: strings.ToLower(botName),
		commands: map[string]func(context.Context, string) error{
			"join":      c.JoinCommand,
			"leave":     c.LeaveCommand,
			"ilovebots": c.LoveBotsCommand,
			"alert":     c.AlertCommand,
			"noalert":   c.NoAlertCommand,
		},
	}
}

// Handle is a MessageHandler.
func (r *Router) Handle(ctx context.Context, msg Message) {
	if strings.ToLower(msg.Channel) != r.channel || msg.User == "" {
		return
	}

	name, ok := parseCommand(msg.Text)
	if !ok {
		return
	}
	run, ok := r.commands[name]
	if !ok {
		return
	}

	slog.Info("Chat command", "command", name, "user", msg.User)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := run(ctx, msg.User); err != nil {
			slog.Error("Chat command failed", "command", name, "user", msg.User, "error", err)
		}
	}()
}

// Wait blocks until every running command returned.
func (r *Router) Wait() {
	r.wg.Wait()
}

func parseCommand(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return "", false
	}
	return strings.ToLower(strings.TrimPrefix(fields[0], "!")), true
}
