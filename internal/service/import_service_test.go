package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/toeic-api/internal/domain/entity"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
)

const importCSVHeader = "question_text,option_a,option_b,option_c,option_d,correct_answer,explanation,part,difficulty_level\n"

func TestImportService_ImportCSV_CreatedAndUpdated(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("UpsertByText", mock.AnythingOfType("[]entity.Question")).Return(1, 1, nil)

	importService := NewImportService(mockQuestionRepo)

	csvData := importCSVHeader +
		"The report ___ by Friday.,is finished,will be finished,finishes,finished,B,Future passive.,PART5,650\n" +
		"She ___ to the meeting.,go,goes,going,gone,B,Third person singular.,PART5,500\n"

	// Act
	summary, err := importService.ImportCSV(strings.NewReader(csvData))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	mockQuestionRepo.AssertExpectations(t)
}

func TestImportService_ImportCSV_MissingColumnAborts(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	importService := NewImportService(mockQuestionRepo)

	// Нет колонки correct_answer
	csvData := "question_text,option_a,option_b,option_c,option_d,explanation,part,difficulty_level\n" +
		"Some question,a,b,c,d,expl,PART5,600\n"

	// Act
	summary, err := importService.ImportCSV(strings.NewReader(csvData))

	// Assert
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "correct_answer")
	mockQuestionRepo.AssertNotCalled(t, "UpsertByText", mock.Anything)
}

func TestImportService_ImportCSV_InvalidCorrectAnswer(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	importService := NewImportService(mockQuestionRepo)

	csvData := importCSVHeader +
		"Valid question,a,b,c,d,A,expl,PART5,600\n" +
		"Broken question,a,b,c,d,E,expl,PART5,600\n"

	// Act
	summary, err := importService.ImportCSV(strings.NewReader(csvData))

	// Assert
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "row 3", "Ошибка должна указывать номер строки файла")
	mockQuestionRepo.AssertNotCalled(t, "UpsertByText", mock.Anything)
}

func TestImportService_ImportCSV_DefaultsAndNormalization(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)

	var captured []entity.Question
	mockQuestionRepo.On("UpsertByText", mock.AnythingOfType("[]entity.Question")).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).([]entity.Question)
		}).
		Return(1, 0, nil)

	importService := NewImportService(mockQuestionRepo)

	// Сложность нечисловая, part пустой, explanation пустой, ответ в нижнем регистре
	csvData := importCSVHeader +
		"Question text,a,b,c,d,c,,,not-a-number\n"

	// Act
	summary, err := importService.ImportCSV(strings.NewReader(csvData))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, captured, 1)
	assert.Equal(t, entity.AnswerC, captured[0].CorrectAnswer, "Ответ должен приводиться к верхнему регистру")
	assert.Equal(t, entity.DefaultDifficultyLevel, captured[0].DifficultyLevel, "Нечисловая сложность откатывается к умолчанию")
	assert.Equal(t, entity.Part5, captured[0].Part, "Пустой part откатывается к PART5")
	assert.Equal(t, "", captured[0].Explanation, "Пустое объяснение остаётся пустой строкой")
}

func TestImportService_ImportCSV_SkipsEmptyRowsAndBOM(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)

	var captured []entity.Question
	mockQuestionRepo.On("UpsertByText", mock.AnythingOfType("[]entity.Question")).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).([]entity.Question)
		}).
		Return(1, 0, nil)

	importService := NewImportService(mockQuestionRepo)

	// Заголовок начинается с UTF-8 BOM, вторая строка без текста вопроса
	csvData := "\uFEFF" + importCSVHeader +
		"Real question,a,b,c,d,A,expl,PART7,700\n" +
		",a,b,c,d,A,expl,PART5,600\n"

	// Act
	summary, err := importService.ImportCSV(strings.NewReader(csvData))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, captured, 1, "Строка без текста вопроса должна быть пропущена")
	assert.Equal(t, "Real question", captured[0].QuestionText)
	assert.Equal(t, entity.Part7, captured[0].Part)
}

func TestImportService_ImportCSV_EmptyFile(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	importService := NewImportService(mockQuestionRepo)

	// Act
	summary, err := importService.ImportCSV(strings.NewReader(""))

	// Assert
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
