package repository

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/channel/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/fsutil"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/ordered"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const channelsFile = "channels.json"

// FileStorage implements channel.Repository on a single channels.json registry
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage creates a new file-based channel repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create channels directory").Wrap(err)
	}

	return &FileStorage{path: filepath.Join(basePath, channelsFile)}, nil
}

func (s *FileStorage) AddChannel(channel *domain.Channel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channels, err := s.load()
	if err != nil {
		return false, err
	}
	if channels.Has(channel.Name) {
		return false, nil
	}

	channels.Set(channel.Name, channel.AccountID)
	if err := s.save(channels); err != nil {
		return false, oops.With("channel", channel.Name).Wrap(err)
	}
	return true, nil
}

func (s *FileStorage) GetChannel(name string) (*domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels, err := s.load()
	if err != nil {
		return nil, err
	}

	id, ok := channels.Get(name)
	if !ok {
		return nil, oops.With("channel", name).Wrap(errors.ErrChannelNotFound)
	}
	return &domain.Channel{Name: name, AccountID: id}, nil
}

func (s *FileStorage) GetAllChannels() ([]*domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels, err := s.load()
	if err != nil {
		return nil, err
	}

	return lo.Map(channels.Entries(), func(entry ordered.Entry, _ int) *domain.Channel {
		return &domain.Channel{Name: entry.Key, AccountID: entry.Value}
	}), nil
}

func (s *FileStorage) DeleteChannel(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channels, err := s.load()
	if err != nil {
		return false, err
	}
	if !channels.Delete(name) {
		return false, nil
	}
	return true, s.save(channels)
}

func (s *FileStorage) DeleteChannelByID(accountID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channels, err := s.load()
	if err != nil {
		return "", false, err
	}

	name, ok := channels.KeyOf(accountID)
	if !ok {
		return "", false, nil
	}
	channels.Delete(name)
	return name, true, s.save(channels)
}

func (s *FileStorage) load() (*ordered.Map, error) {
	data, err := fsutil.ReadFile(s.path)
	if err != nil {
		return nil, oops.With("context", "failed to read channels").Wrap(err)
	}
	channels, err := ordered.Parse(data)
	if err != nil {
		return nil, oops.With("path", s.path, "context", "failed to parse channels").Wrap(err)
	}
	return channels, nil
}

func (s *FileStorage) save(channels *ordered.Map) error {
	data, err := channels.Marshal()
	if err != nil {
		return oops.With("context", "failed to marshal channels").Wrap(err)
	}
	return fsutil.WriteFileAtomic(s.path, data, 0644)
}
