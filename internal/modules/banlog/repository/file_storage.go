package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/fsutil"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage writes one JSON file per entry under <base>/banlog.
// File names start with the zero-padded unix time so lexical order is chronological.
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

func NewFileStorage(basePath string) (*FileStorage, error) {
	logPath := filepath.Join(basePath, "banlog")
	if err := os.MkdirAll(logPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create banlog directory").Wrap(err)
	}

	return &FileStorage{basePath: logPath}, nil
}

func (s *FileStorage) Append(entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.BannedAt.IsZero() {
		entry.BannedAt = time.Now()
	}

	path := filepath.Join(s.basePath, fmt.Sprintf("%020d-%s.json", entry.BannedAt.UnixNano(), entry.Name))
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return oops.With("bot", entry.Name, "context", "failed to marshal ban log entry").Wrap(err)
	}

	return fsutil.WriteFileAtomic(path, data, 0644)
}

func (s *FileStorage) Recent(limit int) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *FileStorage) Since(since time.Time) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return lo.Filter(entries, func(e *domain.Entry, _ int) bool {
		return e.BannedAt.After(since)
	}), nil
}

// readAll returns every readable entry, newest first. Corrupt files are skipped.
func (s *FileStorage) readAll() ([]*domain.Entry, error) {
	files, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Entry{}, nil
		}
		return nil, oops.With("banlog_dir", s.basePath, "context", "failed to read banlog directory").Wrap(err)
	}

	names := lo.FilterMap(files, func(f os.DirEntry, _ int) (string, bool) {
		return f.Name(), !f.IsDir() && filepath.Ext(f.Name()) == ".json"
	})
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	entries := make([]*domain.Entry, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.basePath, name))
		if err != nil {
			continue
		}

		var entry domain.Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			slog.Warn("Skipping corrupt ban log entry", "file", name, "error", err)
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
