package entity

import "time"

// RefreshToken хранит запись refresh-токена пользователя
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsValid проверяет, что срок действия токена ещё не истёк
func (rt *RefreshToken) IsValid() bool {
	return rt.ExpiresAt.After(time.Now())
}
