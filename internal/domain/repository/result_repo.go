package repository

import (
	"github.com/yourusername/toeic-api/internal/domain/entity"
)

// ResultRepository определяет методы для работы с результатами ответов
type ResultRepository interface {
	// Upsert создаёт результат для пары (userID, questionID) или перезаписывает
	// существующий (selected_answer, is_correct, answered_at). Атомарность
	// обеспечивается уникальным ограничением в базе, последняя запись побеждает.
	// Возвращает ID строки результата.
	Upsert(userID, questionID uint, selected entity.AnswerOption, isCorrect bool) (uint, error)

	// GetByIDsForUser возвращает только результаты из ids, принадлежащие userID,
	// с предзагруженными вопросами. Чужие и несуществующие id молча отбрасываются.
	GetByIDsForUser(ids []uint, userID uint) ([]entity.Result, error)

	// Каскадные удаления воспроизводятся явно на уровне хранилища
	DeleteByUser(userID uint) error
	DeleteByQuestion(questionID uint) error
}
