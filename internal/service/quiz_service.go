package service

import (
	"log"
	"time"

	"github.com/yourusername/toeic-api/internal/domain/entity"
	"github.com/yourusername/toeic-api/internal/domain/repository"
)

// Ключ и TTL кеша общего количества вопросов
const (
	questionCountCacheKey = "quiz:question_count"
	questionCountCacheTTL = 5 * time.Minute
)

// QuizService отвечает за формирование квиза — батча случайных вопросов
type QuizService struct {
	questionRepo     repository.QuestionRepository
	cacheRepo        repository.CacheRepository
	questionsPerQuiz int
}

// NewQuizService создает новый сервис квизов.
// cacheRepo может быть nil — кеширование тогда отключено.
func NewQuizService(questionRepo repository.QuestionRepository, cacheRepo repository.CacheRepository, questionsPerQuiz int) *QuizService {
	if questionsPerQuiz <= 0 {
		questionsPerQuiz = 10
	}
	return &QuizService{
		questionRepo:     questionRepo,
		cacheRepo:        cacheRepo,
		questionsPerQuiz: questionsPerQuiz,
	}
}

// GetQuizQuestions возвращает случайную выборку вопросов для одного квиза.
// Если вопросов в базе меньше, чем нужно, возвращаются все имеющиеся.
// Связь между отправкой ответов и результатами переносится клиентом через
// возвращаемые result_ids, серверная сессия не используется.
func (s *QuizService) GetQuizQuestions() ([]entity.Question, error) {
	questions, err := s.questionRepo.GetRandom(s.questionsPerQuiz)
	if err != nil {
		return nil, err
	}

	if len(questions) < s.questionsPerQuiz {
		log.Printf("[QuizService] В базе меньше вопросов (%d), чем нужно для квиза (%d)", len(questions), s.questionsPerQuiz)
	}

	return questions, nil
}

// QuestionCount возвращает общее количество вопросов, используя кеш.
// Ошибки кеша не фатальны: значение перечитывается из базы.
func (s *QuizService) QuestionCount() (int64, error) {
	if s.cacheRepo != nil {
		var cached int64
		if err := s.cacheRepo.GetJSON(questionCountCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	count, err := s.questionRepo.Count()
	if err != nil {
		return 0, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(questionCountCacheKey, count, questionCountCacheTTL); err != nil {
			log.Printf("[QuizService] Не удалось закешировать количество вопросов: %v", err)
		}
	}

	return count, nil
}

// CreateQuestion добавляет один вопрос (админский путь) и сбрасывает кеш количества
func (s *QuizService) CreateQuestion(question *entity.Question) error {
	if err := s.questionRepo.Create(question); err != nil {
		return err
	}
	s.invalidateCountCache()
	return nil
}

// DeleteQuestion удаляет вопрос вместе с его результатами и сбрасывает кеш количества
func (s *QuizService) DeleteQuestion(id uint) error {
	if err := s.questionRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateCountCache()
	return nil
}

func (s *QuizService) invalidateCountCache() {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(questionCountCacheKey); err != nil {
		log.Printf("[QuizService] Не удалось сбросить кеш количества вопросов: %v", err)
	}
}
