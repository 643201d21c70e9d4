package domain

import "time"

// Entry records the sweep that followed the discovery of a new bot.
type Entry struct {
	Name      string    `json:"name"`
	AccountID string    `json:"account_id"`
	BannedAt  time.Time `json:"banned_at"`
	Channels  int       `json:"channels"`
	Banned    int       `json:"banned"`
	Evicted   []string  `json:"evicted,omitempty"`
}
