package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	botDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/samber/oops"
)

const cacheSize = 4096

// UserLookup is the part of the chat platform API that maps logins to account ids.
type UserLookup interface {
	GetUserID(ctx context.Context, login string) (string, error)
}

// Resolver maps display names to stable account ids.
// ErrAccountNotFound is terminal: the account is gone and must not be retried.
type Resolver struct {
	api   UserLookup
	cache *expirable.LRU[string, string]
}

// New creates a resolver. A ttl of zero disables caching.
func New(api UserLookup, ttl time.Duration) *Resolver {
	r := &Resolver{api: api}
	if ttl > 0 {
		r.cache = expirable.NewLRU[string, string](cacheSize, nil, ttl)
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	login := botDomain.NormalizeName(name)
	if login == "" {
		return "", oops.With("name", name).Wrap(errors.ErrAccountNotFound)
	}

	if r.cache != nil {
		if id, ok := r.cache.Get(login); ok {
			return id, nil
		}
	}

	id, err := r.api.GetUserID(ctx, login)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return "", oops.With("name", login).Wrap(errors.ErrAccountNotFound)
		}
		return "", oops.With("name", login, "context", "failed to resolve account").Wrap(err)
	}
	if id == "" {
		return "", oops.With("name", login).Wrap(errors.ErrAccountNotFound)
	}

	if r.cache != nil {
		r.cache.Add(login, id)
	}
	return id, nil
}

