package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

const (
	reconnectDelay = 5 * time.Second
	writeTimeout   = 10 * time.Second
)

var errNotConnected = oops.New("chat is not connected")

// Message is a chat line received in a joined channel.
type Message struct {
	Channel string
	User    string
	Text    string
}

// MessageHandler must not block; long work belongs in its own goroutine.
type MessageHandler func(ctx context.Context, msg Message)

// Chat is a Twitch IRC client over WebSocket. It joins the bot's own channel for
// commands and any channel it is asked to speak in.
type Chat struct {
	url     string
	nick    string
	token   string
	dialer  websocket.Dialer
	limiter *rate.Limiter
	handler MessageHandler

	mu     sync.Mutex
	conn   *websocket.Conn
	joined map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewChat(cfg *config.Config) *Chat {
	ctx, cancel := context.WithCancel(context.Background())
	token := cfg.TwitchAccessToken
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}

	return &Chat{
		url:   cfg.ChatURL,
		nick:  cfg.BotName,
		token: token,
		dialer: websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
		// Twitch allows 20 messages per 30 seconds for regular accounts
		limiter: rate.NewLimiter(rate.Every(1500*time.Millisecond), 5),
		joined:  map[string]bool{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetHandler sets the callback for incoming chat messages
func (c *Chat) SetHandler(h MessageHandler) {
	c.handler = h
}

// Start connects in the background and keeps reconnecting until Stop.
func (c *Chat) Start() {
	c.wg.Add(1)
	go c.run()
}

func (c *Chat) Stop() {
	c.cancel()
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Chat) run() {
	defer c.wg.Done()

	for {
		if err := c.session(); err != nil {
			slog.Warn("Chat connection lost", "error", err)
		}

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Chat) session() error {
	conn, _, err := c.dialer.DialContext(c.ctx, c.url, nil)
	if err != nil {
		return oops.With("url", c.url, "context", "failed to dial chat").Wrap(err)
	}

	c.mu.Lock()
	c.conn = conn
	channels := lo.Uniq(append([]string{c.nick}, lo.Keys(c.joined)...))
	c.joined = map[string]bool{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
	}()

	if err := c.send("PASS " + c.token); err != nil {
		return err
	}
	if err := c.send("NICK " + c.nick); err != nil {
		return err
	}
	for _, ch := range channels {
		if err := c.join(ch); err != nil {
			return err
		}
	}
	slog.Info("Connected to chat", "nick", c.nick, "channels", len(channels))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return nil
			}
			return oops.With("context", "failed to read chat").Wrap(err)
		}

		for _, line := range strings.Split(string(data), "\n") {
			msg, ok := parseLine(line)
			if !ok {
				continue
			}
			if err := c.dispatch(msg); err != nil {
				return err
			}
		}
	}
}

func (c *Chat) dispatch(msg ircMessage) error {
	switch msg.Command {
	case "PING":
		return c.send("PONG :" + msg.Trailing)
	case "RECONNECT":
		return oops.New("server requested reconnect")
	case "NOTICE":
		slog.Warn("Chat notice", "text", msg.Trailing)
	case "PRIVMSG":
		if len(msg.Params) == 0 || c.handler == nil {
			return nil
		}
		c.handler(c.ctx, Message{
			Channel: strings.TrimPrefix(msg.Params[0], "#"),
			User:    msg.Nick(),
			Text:    strings.TrimSpace(msg.Trailing),
		})
	}
	return nil
}

// Say posts text to a channel, joining it first if needed.
func (c *Chat) Say(ctx context.Context, channel, text string) error {
	channel = strings.ToLower(strings.TrimPrefix(channel, "#"))
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	joined := c.joined[channel]
	c.mu.Unlock()
	if !joined {
		if err := c.join(channel); err != nil {
			return err
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if err := c.send(fmt.Sprintf("PRIVMSG #%s :%s", channel, line)); err != nil {
			return oops.With("channel", channel).Wrap(err)
		}
	}
	return nil
}

func (c *Chat) join(channel string) error {
	if err := c.send("JOIN #" + channel); err != nil {
		return err
	}
	c.mu.Lock()
	c.joined[channel] = true
	c.mu.Unlock()
	return nil
}

func (c *Chat) send(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n"))
}
