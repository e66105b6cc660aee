package repository

import (
	"github.com/yourusername/toeic-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// Delete удаляет пользователя вместе с его результатами
	Delete(id uint) error
}
