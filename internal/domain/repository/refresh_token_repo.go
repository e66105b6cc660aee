package repository

import (
	"github.com/yourusername/toeic-api/internal/domain/entity"
)

// RefreshTokenRepository определяет методы для работы с refresh-токенами
type RefreshTokenRepository interface {
	Create(token *entity.RefreshToken) error
	GetByToken(token string) (*entity.RefreshToken, error)
	Delete(token string) error
	DeleteByUser(userID uint) error
	DeleteExpired() (int64, error)
}
