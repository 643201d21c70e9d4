package domain

import "time"

// Operator is a Telegram account allowed to drive the console.
type Operator struct {
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	AddedAt    time.Time `json:"added_at"`
	LastSeen   time.Time `json:"last_seen"`
	IsAdmin    bool      `json:"is_admin"`
}
