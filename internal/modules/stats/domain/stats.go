package domain

// TimestampLayout is how the last sync time is written to disk.
const TimestampLayout = "15:04:05 01/02/2006"

// Snapshot holds the advisory counters shown on the status pages.
type Snapshot struct {
	TotalJoined int    `json:"total_joined"`
	TotalBanned int    `json:"total_bots_banned"`
	LastBanned  string `json:"last_banned"`
	LastSync    string `json:"last_sync"`
}
