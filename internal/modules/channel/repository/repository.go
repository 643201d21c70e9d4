package repository

import (
	"github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
)

// Repository defines the interface for joined channel persistence.
// Channels are returned in the order they joined.
type Repository interface {
	// AddChannel stores a channel and reports false when it was already joined.
	AddChannel(channel *domain.Channel) (bool, error)
	GetChannel(name string) (*domain.Channel, error)
	GetAllChannels() ([]*domain.Channel, error)
	DeleteChannel(name string) (bool, error)
	// DeleteChannelByID removes the channel owned by accountID and returns its name.
	DeleteChannelByID(accountID string) (string, bool, error)
}

// AlertRepository persists the channels subscribed to limerick alerts.
type AlertRepository interface {
	Subscribe(name string) (bool, error)
	Unsubscribe(name string) (bool, error)
	IsSubscribed(name string) (bool, error)
	GetSubscribers() ([]string, error)
}
