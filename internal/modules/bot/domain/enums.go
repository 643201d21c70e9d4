//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Status tells whether a known bot account can still be resolved
// ENUM(alive,dead)
type Status string
