package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/operator/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/fsutil"
	"github.com/samber/oops"
)

// FileStorage keeps one JSON file per operator under <base>/operators
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

func NewFileStorage(basePath string) (*FileStorage, error) {
	operatorPath := filepath.Join(basePath, "operators")
	if err := os.MkdirAll(operatorPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create operators directory").Wrap(err)
	}

	return &FileStorage{basePath: operatorPath}, nil
}

func (s *FileStorage) SaveOperator(operator *domain.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(operator, "", "  ")
	if err != nil {
		return oops.With("telegram_id", operator.TelegramID, "context", "failed to marshal operator").Wrap(err)
	}

	return fsutil.WriteFileAtomic(s.path(operator.TelegramID), data, 0644)
}

func (s *FileStorage) GetOperator(telegramID int64) (*domain.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(telegramID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oops.With("telegram_id", telegramID).Wrap(errors.ErrOperatorNotFound)
		}
		return nil, oops.With("telegram_id", telegramID, "context", "failed to read operator").Wrap(err)
	}

	var operator domain.Operator
	if err := json.Unmarshal(data, &operator); err != nil {
		return nil, oops.With("telegram_id", telegramID, "context", "failed to unmarshal operator").Wrap(err)
	}

	return &operator, nil
}

func (s *FileStorage) GetAllOperators() ([]*domain.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read operators directory").Wrap(err)
	}

	var operators []*domain.Operator
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue
		}

		var operator domain.Operator
		if err := json.Unmarshal(data, &operator); err != nil {
			continue
		}

		operators = append(operators, &operator)
	}

	return operators, nil
}

func (s *FileStorage) path(telegramID int64) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%d.json", telegramID))
}
