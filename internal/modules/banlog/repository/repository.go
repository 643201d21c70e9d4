package repository

import (
	"time"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/domain"
)

// Repository keeps the history of bot sweeps, newest first on read.
type Repository interface {
	Append(entry *domain.Entry) error
	Recent(limit int) ([]*domain.Entry, error)
	Since(since time.Time) ([]*domain.Entry, error)
}
