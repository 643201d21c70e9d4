//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Action is the moderation call applied to a target
// ENUM(ban,unban)
type Action string

// Outcome classifies the result of a single enforcement call
// ENUM(success,permission_lost,target_gone,transient_error)
type Outcome string
