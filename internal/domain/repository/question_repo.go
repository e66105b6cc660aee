package repository

import (
	"github.com/yourusername/toeic-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(question *entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	Update(question *entity.Question) error
	// Delete удаляет вопрос вместе со ссылающимися на него результатами
	Delete(id uint) error
	Count() (int64, error)

	// GetRandom возвращает limit случайных вопросов без повторов.
	// Если вопросов в базе меньше, возвращаются все.
	GetRandom(limit int) ([]entity.Question, error)

	// GetByIDs возвращает отображение id → вопрос; неизвестные id просто отсутствуют
	GetByIDs(ids []uint) (map[uint]entity.Question, error)

	// UpsertByText создаёт или обновляет вопросы, сопоставляя их по точному
	// совпадению question_text. Возвращает количество созданных и обновлённых строк.
	UpsertByText(rows []entity.Question) (created int, updated int, err error)
}
