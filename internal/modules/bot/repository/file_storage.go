package repository

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/bot/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/fsutil"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/ordered"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	aliveFile  = "alivebots.json"
	deadFile   = "deadbots.json"
	ledgerFile = "banlist.txt"
)

// FileStorage implements Repository with two JSON registries and a plain-text ledger.
// The alive and dead registries share one lock so a move between them is atomic.
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
	ledgerMu sync.Mutex
}

// NewFileStorage creates a new file-based bot repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create bots directory").Wrap(err)
	}

	return &FileStorage{basePath: basePath}, nil
}

func (s *FileStorage) AddAlive(name, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alive, dead, err := s.loadBoth()
	if err != nil {
		return err
	}

	alive.Set(name, accountID)
	if dead.Delete(name) {
		if err := s.save(deadFile, dead); err != nil {
			return err
		}
	}
	return s.save(aliveFile, alive)
}

func (s *FileStorage) MarkDead(name, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alive, dead, err := s.loadBoth()
	if err != nil {
		return err
	}

	if accountID == "" {
		if known, ok := alive.Get(name); ok {
			accountID = known
		}
	}

	// dead is written first: a crash in between leaves the name in both files,
	// and loadBoth resolves that in favour of dead
	dead.Set(name, accountID)
	if err := s.save(deadFile, dead); err != nil {
		return err
	}
	if alive.Delete(name) {
		return s.save(aliveFile, alive)
	}
	return nil
}

func (s *FileStorage) GetBot(name string) (*domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alive, dead, err := s.loadBoth()
	if err != nil {
		return nil, err
	}

	if id, ok := dead.Get(name); ok {
		return &domain.Bot{Name: name, AccountID: id, Status: domain.StatusDead}, nil
	}
	if id, ok := alive.Get(name); ok {
		return &domain.Bot{Name: name, AccountID: id, Status: domain.StatusAlive}, nil
	}
	return nil, oops.With("bot", name).Wrap(errors.ErrBotNotFound)
}

func (s *FileStorage) GetAlive() ([]*domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alive, _, err := s.loadBoth()
	if err != nil {
		return nil, err
	}
	return toBots(alive, domain.StatusAlive), nil
}

func (s *FileStorage) GetDead() ([]*domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, dead, err := s.loadBoth()
	if err != nil {
		return nil, err
	}
	return toBots(dead, domain.StatusDead), nil
}

func (s *FileStorage) Unseen(names []string) ([]string, error) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	seen, err := s.loadLedger()
	if err != nil {
		return nil, err
	}

	fresh := lo.Filter(lo.Uniq(names), func(name string, _ int) bool {
		_, ok := seen[name]
		return name != "" && !ok
	})
	return fresh, nil
}

func (s *FileStorage) MarkSeen(names ...string) error {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	seen, err := s.loadLedger()
	if err != nil {
		return err
	}

	fresh := lo.Filter(lo.Uniq(names), func(name string, _ int) bool {
		_, ok := seen[name]
		return name != "" && !ok
	})
	return fsutil.AppendLines(filepath.Join(s.basePath, ledgerFile), fresh)
}

func (s *FileStorage) loadLedger() (map[string]struct{}, error) {
	lines, err := fsutil.ReadLines(filepath.Join(s.basePath, ledgerFile))
	if err != nil {
		return nil, oops.With("context", "failed to read ever-seen ledger").Wrap(err)
	}
	return lo.SliceToMap(lines, func(line string) (string, struct{}) {
		return line, struct{}{}
	}), nil
}

// loadBoth reads both registries. A name present in both is treated as dead.
func (s *FileStorage) loadBoth() (*ordered.Map, *ordered.Map, error) {
	alive, err := s.load(aliveFile)
	if err != nil {
		return nil, nil, err
	}
	dead, err := s.load(deadFile)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range dead.Entries() {
		alive.Delete(entry.Key)
	}
	return alive, dead, nil
}

func (s *FileStorage) load(name string) (*ordered.Map, error) {
	path := filepath.Join(s.basePath, name)
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ordered.Parse(data)
	if err != nil {
		return nil, oops.With("path", path, "context", "failed to parse bot registry").Wrap(err)
	}
	return m, nil
}

func (s *FileStorage) save(name string, m *ordered.Map) error {
	data, err := m.Marshal()
	if err != nil {
		return oops.With("file", name, "context", "failed to marshal bot registry").Wrap(err)
	}
	return fsutil.WriteFileAtomic(filepath.Join(s.basePath, name), data, 0644)
}

func toBots(m *ordered.Map, status domain.Status) []*domain.Bot {
	return lo.Map(m.Entries(), func(entry ordered.Entry, _ int) *domain.Bot {
		return &domain.Bot{Name: entry.Key, AccountID: entry.Value, Status: status}
	})
}
