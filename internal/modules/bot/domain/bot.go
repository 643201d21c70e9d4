package domain

import "strings"

// Bot is an account flagged as automated by the bot feed.
type Bot struct {
	Name      string `json:"name"`
	AccountID string `json:"account_id,omitempty"`
	Status    Status `json:"status"`
}

// NormalizeName lower-cases and trims an account login, dropping a leading '@'.
func NormalizeName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	return strings.ToLower(strings.TrimSpace(name))
}
