package repository

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/reshetovitsme/binary-bouncer/internal/shared/fsutil"
)

const alertsFile = "limerick.txt"

// AlertStorage keeps alert subscribers as a newline-delimited set.
type AlertStorage struct {
	path string
	mu   sync.RWMutex
}

func NewAlertStorage(basePath string) (*AlertStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create alerts directory").Wrap(err)
	}

	return &AlertStorage{path: filepath.Join(basePath, alertsFile)}, nil
}

func (s *AlertStorage) Subscribe(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := fsutil.ReadLines(s.path)
	if err != nil {
		return false, err
	}
	if lo.Contains(names, name) {
		return false, nil
	}
	return true, fsutil.AppendLines(s.path, []string{name})
}

func (s *AlertStorage) Unsubscribe(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := fsutil.ReadLines(s.path)
	if err != nil {
		return false, err
	}
	if !lo.Contains(names, name) {
		return false, nil
	}
	return true, fsutil.WriteLines(s.path, lo.Without(names, name))
}

func (s *AlertStorage) IsSubscribed(name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := fsutil.ReadLines(s.path)
	if err != nil {
		return false, err
	}
	return lo.Contains(names, name), nil
}

func (s *AlertStorage) GetSubscribers() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := fsutil.ReadLines(s.path)
	if err != nil {
		return nil, err
	}
	return lo.Uniq(names), nil
}
