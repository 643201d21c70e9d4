package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Notifier delivers a user-visible chat message to a channel.
type Notifier interface {
	Say(ctx context.Context, channel, text string) error
}

// Relay forwards messages to a target attached after construction.
// Until a target is set, messages are only logged.
type Relay struct {
	mu     sync.RWMutex
	target Notifier
}

func NewRelay() *Relay {
	return &Relay{}
}

// SetTarget attaches the chat transport.
func (r *Relay) SetTarget(n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = n
}

func (r *Relay) Say(ctx context.Context, channel, text string) error {
	r.mu.RLock()
	target := r.target
	r.mu.RUnlock()

	if target == nil {
		slog.Info("Chat message (no transport attached)", "channel", channel, "text", text)
		return nil
	}
	return target.Say(ctx, channel, text)
}
