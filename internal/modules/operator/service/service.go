package service

import (
	stderrors "errors"
	"log/slog"
	"slices"
	"time"

	"github.com/reshetovitsme/binary-bouncer/internal/modules/operator/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/modules/operator/repository"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/errors"
)

// Service decides who may use the operator console and remembers who did.
type Service struct {
	repo    repository.Repository
	allowed []int64
	now     func() time.Time
}

func New(cfg *config.Config, repo repository.Repository) *Service {
	return &Service{
		repo:    repo,
		allowed: cfg.AllowedUsers,
		now:     time.Now,
	}
}

// IsAuthorized reports whether telegramID is in the allow list.
// An empty list locks the console.
func (s *Service) IsAuthorized(telegramID int64) bool {
	return slices.Contains(s.allowed, telegramID)
}

// Touch records an authorized operator's activity. The first id of the allow
// list is the admin.
func (s *Service) Touch(telegramID int64, username string) (*domain.Operator, error) {
	if !s.IsAuthorized(telegramID) {
		return nil, errors.ErrUnauthorized
	}

	now := s.now()
	operator, err := s.repo.GetOperator(telegramID)
	if err != nil {
		if !stderrors.Is(err, errors.ErrOperatorNotFound) {
			return nil, err
		}
		operator = &domain.Operator{TelegramID: telegramID, AddedAt: now}
		slog.Info("New operator", "telegram_id", telegramID, "username", username)
	}

	operator.Username = username
	operator.LastSeen = now
	operator.IsAdmin = s.allowed[0] == telegramID

	if err := s.repo.SaveOperator(operator); err != nil {
		return nil, err
	}
	return operator, nil
}

func (s *Service) GetAllOperators() ([]*domain.Operator, error) {
	return s.repo.GetAllOperators()
}
