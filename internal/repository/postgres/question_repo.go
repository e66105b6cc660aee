package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/toeic-api/internal/domain/entity"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	question.Normalize()
	return r.db.Create(question).Error
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// Update обновляет информацию о вопросе
func (r *QuestionRepo) Update(question *entity.Question) error {
	question.Normalize()
	return r.db.Save(question).Error
}

// Delete удаляет вопрос и каскадно все ссылающиеся на него результаты.
// Каскад воспроизводится явно в транзакции, а не через поведение ORM.
func (r *QuestionRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&entity.Result{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Question{}, id).Error
	})
}

// Count возвращает общее количество вопросов
func (r *QuestionRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Count(&count).Error
	return count, err
}

// GetRandom возвращает limit случайных вопросов без повторов
// Оптимизировано для производительности при больших объёмах данных
func (r *QuestionRepo) GetRandom(limit int) ([]entity.Question, error) {
	var questions []entity.Question

	// Используем TABLESAMPLE для O(1) производительности вместо ORDER BY RANDOM()
	// TABLESAMPLE может вернуть меньше строк, чем нужно, поэтому берём с запасом
	// и обрезаем; при пустом результате (маленькая таблица) переходим на fallback
	sql := `
		SELECT * FROM questions
		TABLESAMPLE SYSTEM_ROWS(?)
		ORDER BY RANDOM()
		LIMIT ?
	`

	sampleSize := limit * 3
	if sampleSize < 100 {
		sampleSize = 100 // Минимальный размер выборки
	}

	err := r.db.Raw(sql, sampleSize, limit).Scan(&questions).Error
	if err != nil || len(questions) == 0 {
		// Fallback на ORDER BY RANDOM(), если TABLESAMPLE не поддерживается
		// или вернул пустой результат
		err = r.db.Order("RANDOM()").Limit(limit).Find(&questions).Error
		if err != nil {
			return nil, err
		}
	}

	return questions, nil
}

// GetByIDs возвращает отображение id → вопрос для всех найденных id.
// Неизвестные id отсутствуют в результате, это не ошибка.
func (r *QuestionRepo) GetByIDs(ids []uint) (map[uint]entity.Question, error) {
	byID := make(map[uint]entity.Question, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var questions []entity.Question
	if err := r.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}

	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID, nil
}

// UpsertByText создаёт или обновляет вопросы, используя question_text как ключ дедупликации.
// Операция идемпотентна: повторный импорт того же набора даёт 0 созданных строк.
func (r *QuestionRepo) UpsertByText(rows []entity.Question) (created int, updated int, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			row := &rows[i]
			row.Normalize()

			var existing entity.Question
			findErr := tx.Where("question_text = ?", row.QuestionText).First(&existing).Error
			if findErr != nil {
				if !errors.Is(findErr, gorm.ErrRecordNotFound) {
					return findErr
				}
				if createErr := tx.Create(row).Error; createErr != nil {
					return createErr
				}
				created++
				continue
			}

			// Перезаписываем все поля найденного вопроса, сохраняя его ID
			existing.OptionA = row.OptionA
			existing.OptionB = row.OptionB
			existing.OptionC = row.OptionC
			existing.OptionD = row.OptionD
			existing.CorrectAnswer = row.CorrectAnswer
			existing.Explanation = row.Explanation
			existing.Part = row.Part
			existing.DifficultyLevel = row.DifficultyLevel
			if saveErr := tx.Save(&existing).Error; saveErr != nil {
				return saveErr
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}
