package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/toeic-api/internal/domain/entity"
)

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий результатов
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Upsert создаёт или перезаписывает результат для пары (userID, questionID).
// Конфликт разрешается на уровне базы через ON CONFLICT по уникальному индексу
// idx_user_question: две конкурентные записи не создадут двух строк, побеждает
// последняя. RETURNING id заполняет ID как для вставки, так и для обновления.
func (r *ResultRepo) Upsert(userID, questionID uint, selected entity.AnswerOption, isCorrect bool) (uint, error) {
	result := entity.Result{
		UserID:         userID,
		QuestionID:     questionID,
		SelectedAnswer: selected,
		IsCorrect:      isCorrect,
		AnsweredAt:     time.Now(),
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_answer", "is_correct", "answered_at", "updated_at",
		}),
	}).Create(&result).Error
	if err != nil {
		return 0, err
	}

	return result.ID, nil
}

// GetByIDsForUser возвращает результаты из ids, принадлежащие userID, с вопросами.
// Чужие и несуществующие id молча отбрасываются — авторизация фильтром, не ошибкой.
func (r *ResultRepo) GetByIDsForUser(ids []uint, userID uint) ([]entity.Result, error) {
	if len(ids) == 0 {
		return []entity.Result{}, nil
	}

	var results []entity.Result
	err := r.db.Preload("Question").
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteByUser удаляет все результаты пользователя (каскад при удалении пользователя)
func (r *ResultRepo) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.Result{}).Error
}

// DeleteByQuestion удаляет все результаты, ссылающиеся на вопрос
func (r *ResultRepo) DeleteByQuestion(questionID uint) error {
	return r.db.Where("question_id = ?", questionID).Delete(&entity.Result{}).Error
}
