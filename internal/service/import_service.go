package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/toeic-api/internal/domain/entity"
	"github.com/yourusername/toeic-api/internal/domain/repository"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
)

// RequiredImportColumns — обязательные колонки табличного импорта.
// Отсутствие любой из них прерывает импорт до обработки первой строки.
var RequiredImportColumns = []string{
	"question_text", "option_a", "option_b", "option_c", "option_d",
	"correct_answer", "explanation", "part", "difficulty_level",
}

// ImportSummary — итог импорта вопросов
type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportService импортирует вопросы из CSV и XLSX файлов
type ImportService struct {
	questionRepo repository.QuestionRepository
}

// NewImportService создает новый сервис импорта
func NewImportService(questionRepo repository.QuestionRepository) *ImportService {
	return &ImportService{questionRepo: questionRepo}
}

// ImportCSV читает CSV (включая UTF-8 с BOM) и выполняет идемпотентный
// upsert вопросов по question_text
func (s *ImportService) ImportCSV(r io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV: %v", apperrors.ErrValidation, err)
	}

	return s.importRecords(records)
}

// ImportXLSX читает первый лист XLSX-книги и выполняет тот же upsert, что и ImportCSV
func (s *ImportService) ImportXLSX(r io.Reader) (*ImportSummary, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open XLSX: %v", apperrors.ErrValidation, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: XLSX workbook has no sheets", apperrors.ErrValidation)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read XLSX rows: %v", apperrors.ErrValidation, err)
	}

	return s.importRecords(rows)
}

// importRecords проверяет заголовок, преобразует строки в вопросы и сохраняет их
func (s *ImportService) importRecords(records [][]string) (*ImportSummary, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: import file is empty", apperrors.ErrValidation)
	}

	header := records[0]
	if len(header) > 0 {
		// Убираем UTF-8 BOM из первой ячейки заголовка
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, required := range RequiredImportColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: import file is missing required columns: %s",
			apperrors.ErrValidation, strings.Join(missing, ", "))
	}

	questions := make([]entity.Question, 0, len(records)-1)
	for rowNum, record := range records[1:] {
		cell := func(name string) string {
			idx := columns[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		questionText := cell("question_text")
		if questionText == "" {
			// Пустые строки пропускаем
			continue
		}

		correct := entity.NormalizeAnswerOption(cell("correct_answer"))
		if !correct.IsValid() {
			return nil, fmt.Errorf("%w: row %d has invalid correct_answer %q (must be one of A, B, C, D)",
				apperrors.ErrValidation, rowNum+2, cell("correct_answer"))
		}

		// Некорректная сложность не прерывает импорт, а откатывается к 600
		difficulty, err := strconv.Atoi(cell("difficulty_level"))
		if err != nil || difficulty <= 0 {
			difficulty = entity.DefaultDifficultyLevel
		}

		part := entity.QuestionPart(strings.ToUpper(cell("part")))
		if part == "" {
			part = entity.Part5
		}

		questions = append(questions, entity.Question{
			QuestionText:    questionText,
			OptionA:         cell("option_a"),
			OptionB:         cell("option_b"),
			OptionC:         cell("option_c"),
			OptionD:         cell("option_d"),
			CorrectAnswer:   correct,
			Explanation:     cell("explanation"), // Пустое значение остаётся пустой строкой
			Part:            part,
			DifficultyLevel: difficulty,
		})
	}

	created, updated, err := s.questionRepo.UpsertByText(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert imported questions: %w", err)
	}

	return &ImportSummary{Created: created, Updated: updated}, nil
}
