package repository

import (
	"github.com/reshetovitsme/binary-bouncer/internal/modules/operator/domain"
)

// Repository defines the interface for operator persistence
type Repository interface {
	SaveOperator(operator *domain.Operator) error
	GetOperator(telegramID int64) (*domain.Operator, error)
	GetAllOperators() ([]*domain.Operator, error)
}
