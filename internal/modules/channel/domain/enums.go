//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// OptInResult is the outcome of a join request
// ENUM(joined,already_joined,needs_moderator,channel_not_found)
type OptInResult string

// OptOutResult is the outcome of a leave request
// ENUM(left,not_joined)
type OptOutResult string

// AlertResult is the outcome of an alert subscription change
// ENUM(subscribed,unsubscribed,already_subscribed,not_subscribed,not_joined)
type AlertResult string
