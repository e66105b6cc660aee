package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/toeic-api/internal/domain/entity"
	"github.com/yourusername/toeic-api/internal/handler/dto"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
	"github.com/yourusername/toeic-api/internal/service"
)

// QuestionHandler обрабатывает административные запросы по управлению вопросами
type QuestionHandler struct {
	quizService   *service.QuizService
	importService *service.ImportService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(quizService *service.QuizService, importService *service.ImportService) *QuestionHandler {
	return &QuestionHandler{
		quizService:   quizService,
		importService: importService,
	}
}

// CreateQuestionRequest представляет запрос на создание вопроса
type CreateQuestionRequest struct {
	QuestionText    string `json:"question_text" binding:"required,min=3"`
	OptionA         string `json:"option_a" binding:"required"`
	OptionB         string `json:"option_b" binding:"required"`
	OptionC         string `json:"option_c" binding:"required"`
	OptionD         string `json:"option_d" binding:"required"`
	CorrectAnswer   string `json:"correct_answer" binding:"required"`
	Explanation     string `json:"explanation"`
	Part            string `json:"part"`
	DifficultyLevel int    `json:"difficulty_level"`
}

// Create обрабатывает запрос на создание вопроса
// POST /api/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	correctAnswer := entity.NormalizeAnswerOption(req.CorrectAnswer)
	if !correctAnswer.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid correct_answer %q, must be one of A, B, C, D", req.CorrectAnswer)})
		return
	}

	question := &entity.Question{
		QuestionText:    req.QuestionText,
		OptionA:         req.OptionA,
		OptionB:         req.OptionB,
		OptionC:         req.OptionC,
		OptionD:         req.OptionD,
		CorrectAnswer:   correctAnswer,
		Explanation:     req.Explanation,
		Part:            entity.QuestionPart(req.Part),
		DifficultyLevel: req.DifficultyLevel,
	}

	if err := h.quizService.CreateQuestion(question); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionDetailResponse(question))
}

// Delete обрабатывает запрос на удаление вопроса вместе с его результатами
// DELETE /api/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint) // Получаем из контекста

	if err := h.quizService.DeleteQuestion(questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// Count возвращает общее количество вопросов в банке
// GET /api/questions/count
func (h *QuestionHandler) Count(c *gin.Context) {
	count, err := h.quizService.QuestionCount()
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Import загружает вопросы из CSV или XLSX файла.
// Формат определяется по расширению файла; существующие вопросы
// обновляются по точному совпадению текста.
// POST /api/questions/import (multipart/form-data, поле "file")
func (h *QuestionHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[QuestionHandler] Не удалось открыть загруженный файл %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	var summary *service.ImportSummary
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		summary, err = h.importService.ImportCSV(file)
	case ".xlsx":
		summary, err = h.importService.ImportXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file format, expected .csv or .xlsx"})
		return
	}

	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	log.Printf("[QuestionHandler] Импорт %s завершен: создано %d, обновлено %d",
		fileHeader.Filename, summary.Created, summary.Updated)

	c.JSON(http.StatusOK, gin.H{
		"message": "Questions imported successfully",
		"created": summary.Created,
		"updated": summary.Updated,
	})
}

// handleQuestionError обрабатывает ошибки от сервисов вопросов и отправляет соответствующий HTTP ответ
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
