package entity

import (
	"time"
)

// Result представляет сохранённый ответ пользователя на один вопрос.
// На пару (user_id, question_id) существует не более одной записи:
// повторный ответ перезаписывает строку, а не создаёт дубликат.
type Result struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserID         uint         `gorm:"not null;index;uniqueIndex:idx_user_question" json:"user_id"`
	QuestionID     uint         `gorm:"not null;index;uniqueIndex:idx_user_question" json:"question_id"`
	Question       *Question    `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	SelectedAnswer AnswerOption `gorm:"size:1;not null;default:''" json:"selected_answer"`
	IsCorrect      bool         `gorm:"not null;default:false" json:"is_correct"`
	AnsweredAt     time.Time    `gorm:"not null" json:"answered_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Result) TableName() string {
	return "results"
}
