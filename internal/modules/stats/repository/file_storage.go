package repository

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/stats/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/fsutil"
	"github.com/samber/oops"
)

const (
	totalJoinedFile = "totalJoined.txt"
	totalBotsFile   = "totalBots.txt"
	lastBanFile     = "lastBan.txt"
	lastSyncFile    = "lastRoutine.txt"
)

// FileStorage keeps every counter in its own small text file.
type FileStorage struct {
	basePath string
	mu       sync.Mutex
}

func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create stats directory").Wrap(err)
	}

	return &FileStorage{basePath: basePath}, nil
}

// AddJoined moves the joined counter by delta, never below zero.
func (s *FileStorage) AddJoined(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.readInt(totalJoinedFile)
	if err != nil {
		return 0, err
	}
	total = max(total+delta, 0)
	return total, s.write(totalJoinedFile, strconv.Itoa(total))
}

// RecordBan bumps the banned counter and remembers name as the last banned bot.
func (s *FileStorage) RecordBan(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.readInt(totalBotsFile)
	if err != nil {
		return 0, err
	}
	total++
	if err := s.write(totalBotsFile, strconv.Itoa(total)); err != nil {
		return 0, err
	}
	return total, s.write(lastBanFile, name)
}

func (s *FileStorage) SetLastSync(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(lastSyncFile, at.Format(domain.TimestampLayout))
}

func (s *FileStorage) Snapshot() (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	joined, err := s.readInt(totalJoinedFile)
	if err != nil {
		return nil, err
	}
	banned, err := s.readInt(totalBotsFile)
	if err != nil {
		return nil, err
	}
	lastBan, err := s.read(lastBanFile)
	if err != nil {
		return nil, err
	}
	lastSync, err := s.read(lastSyncFile)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		TotalJoined: joined,
		TotalBanned: banned,
		LastBanned:  lastBan,
		LastSync:    lastSync,
	}, nil
}

func (s *FileStorage) read(name string) (string, error) {
	data, err := fsutil.ReadFile(filepath.Join(s.basePath, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStorage) readInt(name string) (int, error) {
	raw, err := s.read(name)
	if err != nil || raw == "" {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, oops.With("file", name, "value", raw).Wrapf(err, "corrupt counter")
	}
	return n, nil
}

func (s *FileStorage) write(name, value string) error {
	return fsutil.WriteFileAtomic(filepath.Join(s.basePath, name), []byte(value), 0644)
}
