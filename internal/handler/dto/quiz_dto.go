package dto

import (
	"time"

	"github.com/yourusername/toeic-api/internal/domain/entity"
)

// QuizQuestionResponse — вопрос в формате выдачи квиза.
// Правильный ответ и объяснение здесь намеренно отсутствуют:
// у структуры нет таких полей, утечка через сериализацию невозможна.
type QuizQuestionResponse struct {
	ID           uint   `json:"id"`
	QuestionText string `json:"question_text"`
	OptionA      string `json:"option_a"`
	OptionB      string `json:"option_b"`
	OptionC      string `json:"option_c"`
	OptionD      string `json:"option_d"`
}

// QuestionDetailResponse — полный вопрос для просмотра результатов,
// включая правильный ответ и объяснение
type QuestionDetailResponse struct {
	ID              uint                `json:"id"`
	QuestionText    string              `json:"question_text"`
	OptionA         string              `json:"option_a"`
	OptionB         string              `json:"option_b"`
	OptionC         string              `json:"option_c"`
	OptionD         string              `json:"option_d"`
	CorrectAnswer   entity.AnswerOption `json:"correct_answer"`
	Explanation     string              `json:"explanation"`
	Part            entity.QuestionPart `json:"part"`
	DifficultyLevel int                 `json:"difficulty_level"`
}

// ResultDetailResponse — результат с полным вопросом
type ResultDetailResponse struct {
	ID             uint                    `json:"id"`
	UserID         uint                    `json:"user"`
	Question       *QuestionDetailResponse `json:"question"`
	SelectedAnswer entity.AnswerOption     `json:"selected_answer"`
	IsCorrect      bool                    `json:"is_correct"`
	AnsweredAt     time.Time               `json:"answered_at"`
}

// ResultListResponse — упорядоченный список результатов с агрегатами
type ResultListResponse struct {
	Results      []ResultDetailResponse `json:"results"`
	TotalCount   int                    `json:"total_count"`
	CorrectCount int                    `json:"correct_count"`
}

// SubmitAnswersResponse — ответ на отправку батча ответов
type SubmitAnswersResponse struct {
	ResultIDs []uint `json:"result_ids"`
	Total     int    `json:"total"`
}

// NewQuizQuestionResponse создает DTO вопроса для выдачи квиза
func NewQuizQuestionResponse(q *entity.Question) QuizQuestionResponse {
	return QuizQuestionResponse{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		OptionA:      q.OptionA,
		OptionB:      q.OptionB,
		OptionC:      q.OptionC,
		OptionD:      q.OptionD,
	}
}

// NewQuizQuestionListResponse создает слайс DTO вопросов квиза
func NewQuizQuestionListResponse(questions []entity.Question) []QuizQuestionResponse {
	list := make([]QuizQuestionResponse, len(questions))
	for i := range questions {
		list[i] = NewQuizQuestionResponse(&questions[i])
	}
	return list
}

// NewQuestionDetailResponse создает DTO полного вопроса
func NewQuestionDetailResponse(q *entity.Question) *QuestionDetailResponse {
	if q == nil {
		return nil
	}
	return &QuestionDetailResponse{
		ID:              q.ID,
		QuestionText:    q.QuestionText,
		OptionA:         q.OptionA,
		OptionB:         q.OptionB,
		OptionC:         q.OptionC,
		OptionD:         q.OptionD,
		CorrectAnswer:   q.CorrectAnswer,
		Explanation:     q.Explanation,
		Part:            q.Part,
		DifficultyLevel: q.DifficultyLevel,
	}
}

// NewResultDetailResponse создает DTO результата
func NewResultDetailResponse(r *entity.Result) ResultDetailResponse {
	return ResultDetailResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		Question:       NewQuestionDetailResponse(r.Question),
		SelectedAnswer: r.SelectedAnswer,
		IsCorrect:      r.IsCorrect,
		AnsweredAt:     r.AnsweredAt,
	}
}

// NewResultListResponse создает DTO списка результатов с агрегатами
func NewResultListResponse(results []entity.Result, totalCount, correctCount int) *ResultListResponse {
	list := make([]ResultDetailResponse, len(results))
	for i := range results {
		list[i] = NewResultDetailResponse(&results[i])
	}
	return &ResultListResponse{
		Results:      list,
		TotalCount:   totalCount,
		CorrectCount: correctCount,
	}
}
