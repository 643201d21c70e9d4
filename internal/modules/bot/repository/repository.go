package repository

import (
	"github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
)

// Repository persists the known bot registry and the ever-seen ledger.
// A name is either alive or dead, never both; every method is atomic.
type Repository interface {
	AddAlive(name, accountID string) error
	MarkDead(name, accountID string) error
	GetBot(name string) (*domain.Bot, error)
	GetAlive() ([]*domain.Bot, error)
	GetDead() ([]*domain.Bot, error)

	// Unseen returns the names that were never recorded in the ledger,
	// deduplicated and in input order.
	Unseen(names []string) ([]string, error)
	MarkSeen(names ...string) error
}
