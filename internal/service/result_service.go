package service

import (
	"fmt"
	"log"

	"github.com/yourusername/toeic-api/internal/domain/entity"
	"github.com/yourusername/toeic-api/internal/domain/repository"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
)

// AnswerSubmission — один ответ из присланного батча
type AnswerSubmission struct {
	QuestionID     uint
	SelectedAnswer entity.AnswerOption
}

// SubmitOutcome — итог обработки батча ответов.
// ResultIDs идут строго в порядке присланных ответов.
type SubmitOutcome struct {
	ResultIDs []uint
	Total     int
}

// ResultSet — результаты, отсортированные в порядке запрошенных id,
// с агрегатами по отфильтрованному набору
type ResultSet struct {
	Results      []entity.Result
	TotalCount   int
	CorrectCount int
}

// ResultService отвечает за проверку ответов и выдачу результатов
type ResultService struct {
	questionRepo repository.QuestionRepository
	resultRepo   repository.ResultRepository
}

// NewResultService создает новый сервис результатов
func NewResultService(questionRepo repository.QuestionRepository, resultRepo repository.ResultRepository) *ResultService {
	return &ResultService{
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
	}
}

// SubmitAnswers проверяет батч ответов пользователя и сохраняет результаты.
//
// Ответы обрабатываются строго в присланном порядке; ID результатов в ответе
// повторяют этот порядок. Ответы на несуществующие вопросы пропускаются —
// защита от устаревшего или подделанного состояния клиента. Повторный ответ
// на тот же вопрос перезаписывает строку результата, поэтому при дубликате
// question_id внутри одного батча на обеих позициях окажется один и тот же ID,
// а в строке останется последний ответ.
//
// Межстрочной атомарности нет: при ошибке хранилища середине батча уже
// записанные строки остаются, а частичный результат возвращается вместе с ошибкой.
func (s *ResultService) SubmitAnswers(userID uint, submissions []AnswerSubmission) (*SubmitOutcome, error) {
	if len(submissions) == 0 {
		return nil, fmt.Errorf("%w: submissions list is empty", apperrors.ErrValidation)
	}

	// Собираем уникальные question_id и получаем вопросы одним запросом
	idSet := make(map[uint]struct{}, len(submissions))
	ids := make([]uint, 0, len(submissions))
	for _, sub := range submissions {
		if _, seen := idSet[sub.QuestionID]; !seen {
			idSet[sub.QuestionID] = struct{}{}
			ids = append(ids, sub.QuestionID)
		}
	}

	questions, err := s.questionRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for grading: %w", err)
	}

	outcome := &SubmitOutcome{ResultIDs: make([]uint, 0, len(submissions))}
	for _, sub := range submissions {
		question, ok := questions[sub.QuestionID]
		if !ok {
			// Вопрос не найден — пропускаем молча
			log.Printf("[ResultService] Пропущен ответ на несуществующий вопрос id=%d (user=%d)", sub.QuestionID, userID)
			continue
		}

		isCorrect := question.IsCorrect(sub.SelectedAnswer)
		resultID, upsertErr := s.resultRepo.Upsert(userID, question.ID, sub.SelectedAnswer, isCorrect)
		if upsertErr != nil {
			// Уже записанные строки остаются; сообщаем о частичном выполнении
			return outcome, fmt.Errorf("batch grading failed after %d of %d answers: %w",
				len(outcome.ResultIDs), len(submissions), upsertErr)
		}
		outcome.ResultIDs = append(outcome.ResultIDs, resultID)
	}

	outcome.Total = len(outcome.ResultIDs)
	return outcome, nil
}

// GetResultsByIDs возвращает результаты пользователя в точности в порядке
// запрошенных id, вместе с общим количеством и количеством правильных ответов.
//
// Пересортировка выполняется в приложении по позиции id во входном списке,
// а не условным SQL-выражением. Чужие и несуществующие id отбрасываются без
// ошибки; пустой вход даёт пустой набор с нулевыми агрегатами.
func (s *ResultService) GetResultsByIDs(userID uint, orderedIDs []uint) (*ResultSet, error) {
	set := &ResultSet{Results: []entity.Result{}}
	if len(orderedIDs) == 0 {
		return set, nil
	}

	results, err := s.resultRepo.GetByIDsForUser(orderedIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	// Ранг каждого id — его первая позиция во входном списке
	rank := make(map[uint]int, len(orderedIDs))
	for pos, id := range orderedIDs {
		if _, seen := rank[id]; !seen {
			rank[id] = pos
		}
	}

	ordered := make([]entity.Result, len(orderedIDs))
	present := make([]bool, len(orderedIDs))
	for _, r := range results {
		pos, ok := rank[r.ID]
		if !ok {
			continue
		}
		ordered[pos] = r
		present[pos] = true
	}

	for pos := range ordered {
		if !present[pos] {
			continue
		}
		set.Results = append(set.Results, ordered[pos])
		set.TotalCount++
		if ordered[pos].IsCorrect {
			set.CorrectCount++
		}
	}

	return set, nil
}
