package repository

import (
	"time"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/stats/domain"
)

// Repository persists the scalar counters and timestamps.
type Repository interface {
	AddJoined(delta int) (int, error)
	RecordBan(name string) (int, error)
	SetLastSync(at time.Time) error
	Snapshot() (*domain.Snapshot, error)
}
