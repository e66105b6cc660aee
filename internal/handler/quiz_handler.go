package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/toeic-api/internal/domain/entity"
	"github.com/yourusername/toeic-api/internal/handler/dto"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
	"github.com/yourusername/toeic-api/internal/service"
)

// QuizHandler обрабатывает запросы квиза: выдача вопросов, прием ответов, результаты
type QuizHandler struct {
	quizService   *service.QuizService
	resultService *service.ResultService
}

// NewQuizHandler создает новый обработчик квизов
func NewQuizHandler(quizService *service.QuizService, resultService *service.ResultService) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		resultService: resultService,
	}
}

// GetQuiz возвращает случайный набор вопросов для новой сессии квиза
// как плоский JSON-массив. Правильные ответы и объяснения в выдачу не попадают.
// GET /api/quiz
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	questions, err := h.quizService.GetQuizQuestions()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizQuestionListResponse(questions))
}

// SubmitAnswerRequest — один ответ из присланного батча
type SubmitAnswerRequest struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedAnswer string `json:"selected_answer" binding:"required"`
}

// Submit принимает батч ответов, проверяет их и сохраняет результаты.
// Тело запроса — JSON-массив; любой другой формат отклоняется с 400.
// POST /api/quiz/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req []SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON array of answers", "details": err.Error()})
		return
	}

	submissions := make([]service.AnswerSubmission, len(req))
	for i, a := range req {
		submissions[i] = service.AnswerSubmission{
			QuestionID:     a.QuestionID,
			SelectedAnswer: entity.NormalizeAnswerOption(a.SelectedAnswer),
		}
	}

	outcome, err := h.resultService.SubmitAnswers(userID, submissions)
	if err != nil {
		// Частичное выполнение: часть строк уже записана, сообщаем какие
		if outcome != nil && len(outcome.ResultIDs) > 0 {
			log.Printf("[QuizHandler] Частичный сбой при приеме ответов user=%d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Failed to grade all answers",
				"result_ids": outcome.ResultIDs,
				"total":      len(outcome.ResultIDs),
			})
			return
		}
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmitAnswersResponse{
		ResultIDs: outcome.ResultIDs,
		Total:     outcome.Total,
	})
}

// GetResults возвращает результаты пользователя в порядке переданных id.
// GET /api/quiz/results?ids=3,1,2
func (h *QuizHandler) GetResults(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set, err := h.resultService.GetResultsByIDs(userID, ids)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResultListResponse(set.Results, set.TotalCount, set.CorrectCount))
}

// ExportResults экспортирует результаты пользователя в CSV или Excel формате
// GET /api/quiz/results/export?ids=3,1,2&format=csv|xlsx
func (h *QuizHandler) ExportResults(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	format := c.DefaultQuery("format", "csv")

	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set, err := h.resultService.GetResultsByIDs(userID, ids)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz_results_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, set, filename)
	default:
		h.exportCSV(c, set, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *QuizHandler) exportCSV(c *gin.Context, set *service.ResultSet, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// Заголовки
	writer.Write([]string{"№", "Вопрос", "Ваш ответ", "Правильный ответ", "Верно", "Объяснение"})

	// Данные
	for i, r := range set.Results {
		questionText := ""
		correctAnswer := ""
		explanation := ""
		if r.Question != nil {
			questionText = r.Question.QuestionText
			correctAnswer = string(r.Question.CorrectAnswer)
			explanation = r.Question.Explanation
		}
		correct := "Нет"
		if r.IsCorrect {
			correct = "Да"
		}

		writer.Write([]string{
			strconv.Itoa(i + 1),
			sanitizeForExcel(questionText),
			string(r.SelectedAnswer),
			correctAnswer,
			correct,
			sanitizeForExcel(explanation),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *QuizHandler) exportXLSX(c *gin.Context, set *service.ResultSet, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"№", "Вопрос", "Ваш ответ", "Правильный ответ", "Верно", "Объяснение"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, r := range set.Results {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		questionText := ""
		correctAnswer := ""
		explanation := ""
		if r.Question != nil {
			questionText = r.Question.QuestionText
			correctAnswer = string(r.Question.CorrectAnswer)
			explanation = r.Question.Explanation
		}
		correct := "Нет"
		if r.IsCorrect {
			correct = "Да"
		}

		row := []interface{}{i + 1, sanitizeForExcel(questionText), string(r.SelectedAnswer), correctAnswer, correct, sanitizeForExcel(explanation)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Ошибка при Flush: %v", err)
	}

	// Записываем в response
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// parseIDList разбирает список id из query-параметра вида "3,1,2"
func parseIDList(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("ids query parameter is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in ids parameter", p)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, errors.New("ids query parameter is required")
	}

	return ids, nil
}

// handleQuizError обрабатывает ошибки от сервисов квиза и отправляет соответствующий HTTP ответ
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
