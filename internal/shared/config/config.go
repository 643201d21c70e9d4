package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TwitchClientID    string  `koanf:"twitch_client_id"`
	TwitchAccessToken string  `koanf:"twitch_access_token"`
	HelixURL          string  `koanf:"helix_url"`
	ChatURL           string  `koanf:"chat_url"`
	FeedURL           string  `koanf:"feed_url"`
	BotID             string  `koanf:"bot_id"`
	BotName           string  `koanf:"bot_name"`
	TelegramBotToken  string  `koanf:"telegram_bot_token"`
	AllowedUsers      []int64 `koanf:"-"`
	OpenAIAPIKey      string  `koanf:"openai_api_key"`
	OpenAIModel       string  `koanf:"openai_model"`
	StoragePath       string  `koanf:"storage_path"`
	HTTPPort          string  `koanf:"http_port"`
	SyncInterval      int     `koanf:"sync_interval"`
	BanDelayMS        int     `koanf:"ban_delay_ms"`
	ResolveCacheTTL   int     `koanf:"resolve_cache_ttl"`
	AppEnv            AppEnv  `koanf:"-"`
}

// SyncPeriod is the delay between two bot list synchronisations.
func (c *Config) SyncPeriod() time.Duration {
	return time.Duration(c.SyncInterval) * time.Second
}

// BanDelay is the pause between two consecutive moderation calls of a sweep.
func (c *Config) BanDelay() time.Duration {
	return time.Duration(c.BanDelayMS) * time.Millisecond
}

func (c *Config) ResolveTTL() time.Duration {
	return time.Duration(c.ResolveCacheTTL) * time.Second
}

var (
	configFiles = []string{"config.yaml", "config.yml", "config.json", "config.toml"}

	parsers = map[string]koanf.Parser{
		".yaml": yaml.Parser(),
		".yml":  yaml.Parser(),
		".json": json.Parser(),
		".toml": toml.Parser(),
	}

	defaults = map[string]any{
		"helix_url":         "https://api.twitch.tv/helix",
		"chat_url":          "wss://irc-ws.chat.twitch.tv:443",
		"feed_url":          "https://api.twitchinsights.net/v1/bots/all",
		"openai_model":      "gpt-3.5-turbo",
		"storage_path":      "./data",
		"http_port":         "8080",
		"sync_interval":     900,
		"ban_delay_ms":      400,
		"resolve_cache_ttl": 600,
		"app_env":           "production",
	}
)

// Load reads the first config file found in the working directory, then the
// environment on top of it, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadFile(k); err != nil {
		return nil, err
	}

	// TWITCH_CLIENT_ID -> twitch_client_id
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	cfg.AllowedUsers = allowedUsers(k.Get("allowed_users"))
	cfg.AppEnv = AppEnvProduction
	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	}
	cfg.BotName = strings.ToLower(strings.TrimSpace(cfg.BotName))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf) error {
	path, found := lo.Find(configFiles, func(name string) bool {
		_, err := os.Stat(name)
		return err == nil
	})
	if !found {
		return nil
	}

	ext := filepath.Ext(path)
	parser, ok := parsers[ext]
	if !ok {
		return oops.Errorf("unsupported config file extension: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return oops.With("config_file", path).Wrap(err)
	}
	return nil
}

// allowedUsers accepts a comma-separated string (env) or a list of numbers (file).
func allowedUsers(raw any) []int64 {
	switch v := raw.(type) {
	case string:
		return ParseAllowedUsers(v)
	case []any:
		return lo.FilterMap(v, func(item any, _ int) (int64, bool) {
			switch id := item.(type) {
			case int64:
				return id, true
			case int:
				return int64(id), true
			case float64:
				return int64(id), true
			}
			return 0, false
		})
	}
	return nil
}

// Validate checks the fields the bot cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.TwitchClientID == "":
		return errors.ErrMissingClientID
	case c.TwitchAccessToken == "":
		return errors.ErrMissingAccessToken
	case c.BotID == "":
		return errors.ErrMissingBotID
	case c.BotName == "":
		return errors.ErrMissingBotName
	}
	return nil
}

// ParseAllowedUsers parses "1, 2,3" into ids, skipping anything that is not a number.
func ParseAllowedUsers(s string) []int64 {
	return lo.FilterMap(strings.Split(s, ","), func(part string, _ int) (int64, bool) {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		return id, err == nil
	})
}
