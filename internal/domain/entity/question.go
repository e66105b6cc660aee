package entity

import (
	"strings"
	"time"
)

// AnswerOption — буква варианта ответа (A, B, C или D)
type AnswerOption string

// Допустимые варианты ответа
const (
	AnswerA AnswerOption = "A"
	AnswerB AnswerOption = "B"
	AnswerC AnswerOption = "C"
	AnswerD AnswerOption = "D"
)

// IsValid проверяет, является ли вариант одним из A/B/C/D
func (a AnswerOption) IsValid() bool {
	switch a {
	case AnswerA, AnswerB, AnswerC, AnswerD:
		return true
	default:
		return false
	}
}

// NormalizeAnswerOption приводит сырое значение к каноническому виду (верхний регистр, без пробелов)
func NormalizeAnswerOption(raw string) AnswerOption {
	return AnswerOption(strings.ToUpper(strings.TrimSpace(raw)))
}

// QuestionPart — секция TOEIC, к которой относится вопрос
type QuestionPart string

const (
	Part5 QuestionPart = "PART5"
	Part7 QuestionPart = "PART7"
)

// DefaultDifficultyLevel — уровень сложности по умолчанию (ориентировочный балл TOEIC)
const DefaultDifficultyLevel = 600

// Question представляет вопрос TOEIC с четырьмя вариантами ответа
type Question struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	QuestionText    string       `gorm:"type:text;not null;uniqueIndex:idx_questions_text" json:"question_text"`
	OptionA         string       `gorm:"size:255;not null" json:"option_a"`
	OptionB         string       `gorm:"size:255;not null" json:"option_b"`
	OptionC         string       `gorm:"size:255;not null" json:"option_c"`
	OptionD         string       `gorm:"size:255;not null" json:"option_d"`
	CorrectAnswer   AnswerOption `gorm:"size:1;not null" json:"-"` // Скрыто от клиента при выдаче квиза
	Explanation     string       `gorm:"type:text;not null;default:''" json:"-"`
	Part            QuestionPart `gorm:"size:5;not null;default:'PART5'" json:"part"`
	DifficultyLevel int          `gorm:"not null;default:600" json:"difficulty_level"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, совпадает ли выбранный вариант с правильным ответом
func (q *Question) IsCorrect(selected AnswerOption) bool {
	return selected == q.CorrectAnswer
}

// Normalize приводит поля вопроса к инвариантам хранилища:
// неположительная сложность → 600, пустая секция → PART5.
// Explanation остаётся пустой строкой, NULL в базе не допускается.
func (q *Question) Normalize() {
	if q.DifficultyLevel <= 0 {
		q.DifficultyLevel = DefaultDifficultyLevel
	}
	if q.Part == "" {
		q.Part = Part5
	}
	q.CorrectAnswer = NormalizeAnswerOption(string(q.CorrectAnswer))
}
