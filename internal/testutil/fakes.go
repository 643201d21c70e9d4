// Package testutil holds in-memory fakes of the chat platform shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
)

// Call is one moderation call received by FakeAPI.
type Call struct {
	Method      string
	Broadcaster string
	Moderator   string
	User        string
	Reason      string
}

// FakeAPI is a scriptable stand-in for the Helix client.
// Users maps login to account id; unknown logins answer ErrUserNotFound.
type FakeAPI struct {
	mu sync.Mutex

	Users map[string]string

	// BanErrors holds an error to return for every ban/unban on a broadcaster id.
	BanErrors map[string]error
	// FailAfter makes ban/unban on a broadcaster id fail with the mapped error
	// once that many calls succeeded there.
	FailAfter map[string]int
	FailWith  map[string]error
	// LookupErrors returns an error for specific logins instead of a result.
	LookupErrors map[string]error

	Calls   []Call
	Lookups []string
	counts  map[string]int
}

func NewFakeAPI(users map[string]string) *FakeAPI {
	if users == nil {
		users = map[string]string{}
	}
	return &FakeAPI{
		Users:        users,
		BanErrors:    map[string]error{},
		FailAfter:    map[string]int{},
		FailWith:     map[string]error{},
		LookupErrors: map[string]error{},
		counts:       map[string]int{},
	}
}

func (f *FakeAPI) GetUserID(_ context.Context, login string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Lookups = append(f.Lookups, login)
	if err, ok := f.LookupErrors[login]; ok {
		return "", err
	}
	id, ok := f.Users[login]
	if !ok {
		return "", fmt.Errorf("lookup %q: %w", login, errors.ErrUserNotFound)
	}
	return id, nil
}

func (f *FakeAPI) BanUser(_ context.Context, broadcasterID, moderatorID, userID, reason string) error {
	return f.record(Call{Method: "ban", Broadcaster: broadcasterID, Moderator: moderatorID, User: userID, Reason: reason})
}

func (f *FakeAPI) UnbanUser(_ context.Context, broadcasterID, moderatorID, userID string) error {
	return f.record(Call{Method: "unban", Broadcaster: broadcasterID, Moderator: moderatorID, User: userID})
}

func (f *FakeAPI) RemoveModerator(_ context.Context, broadcasterID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "unmod", Broadcaster: broadcasterID, User: userID})
	return nil
}

func (f *FakeAPI) record(c Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, c)
	if err, ok := f.BanErrors[c.Broadcaster]; ok {
		return err
	}
	if limit, ok := f.FailAfter[c.Broadcaster]; ok && f.counts[c.Broadcaster] >= limit {
		return f.FailWith[c.Broadcaster]
	}
	f.counts[c.Broadcaster]++
	return nil
}

// CallsFor returns the recorded calls of one method, in order.
func (f *FakeAPI) CallsFor(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Message is one chat line sent through Notifier.
type Message struct {
	Channel string
	Text    string
}

// Notifier records chat messages instead of sending them.
type Notifier struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (n *Notifier) Say(_ context.Context, channel, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, Message{Channel: channel, Text: text})
	return n.Err
}

func (n *Notifier) Texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, 0, len(n.Messages))
	for _, m := range n.Messages {
		out = append(out, m.Text)
	}
	return out
}
