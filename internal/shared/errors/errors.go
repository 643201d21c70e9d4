package errors

import "errors"

var (
	ErrMissingClientID    = errors.New("TWITCH_CLIENT_ID environment variable is required")
	ErrMissingAccessToken = errors.New("TWITCH_ACCESS_TOKEN environment variable is required")
	ErrMissingBotID       = errors.New("BOT_ID environment variable is required")
	ErrMissingBotName     = errors.New("BOT_NAME environment variable is required")
	ErrUnauthorized       = errors.New("unauthorized user")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrBotNotFound        = errors.New("bot not found")
	ErrSyncInProgress     = errors.New("sync already in progress")
)

// Helix moderation API failures. ErrMissingData and ErrNotModerator both mean the
// bot has no moderator rights on the target channel.
var (
	ErrUserNotFound  = errors.New("helix: user not found")
	ErrMissingData   = errors.New("helix: response is missing data")
	ErrNotModerator  = errors.New("helix: bot is not a moderator on this channel")
	ErrAlreadyBanned = errors.New("helix: user is already banned")
	ErrNotBanned     = errors.New("helix: user is not banned")
	ErrBadToken      = errors.New("helix: access token rejected")
)
