package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/toeic-api/internal/domain/entity"
	"github.com/yourusername/toeic-api/internal/domain/repository"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
	"github.com/yourusername/toeic-api/pkg/auth"
)

// welcomeEmailTimeout ограничивает фоновую отправку приветственного письма
// вместе с ретраями отправителя
const welcomeEmailTimeout = 2 * time.Minute

// AuthService предоставляет методы для регистрации и аутентификации пользователей
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtService       *auth.JWTService
	emailService     EmailService
	refreshLifetime  time.Duration
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtService *auth.JWTService,
	emailService EmailService,
	refreshLifetimeHrs int,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if refreshTokenRepo == nil {
		return nil, fmt.Errorf("RefreshTokenRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	if emailService == nil {
		emailService = &NoopEmailService{}
	}
	if refreshLifetimeHrs <= 0 {
		refreshLifetimeHrs = 24 * 7
	}

	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtService:       jwtService,
		emailService:     emailService,
		refreshLifetime:  time.Duration(refreshLifetimeHrs) * time.Hour,
	}, nil
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthResponse содержит данные для ответа на запрос авторизации
type AuthResponse struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(input RegisterInput) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}
	if input.Password != input.PasswordConfirm {
		return nil, fmt.Errorf("%w: passwords do not match", apperrors.ErrValidation)
	}

	// Проверяем, существует ли пользователь с таким username
	_, err := s.userRepo.GetByUsername(input.Username)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this username already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}

	// Проверяем, существует ли пользователь с таким email
	_, err = s.userRepo.GetByEmail(input.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password, // Хешируется в BeforeSave
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Гонка с параллельной регистрацией: уникальное ограничение сработало в базе
			return nil, fmt.Errorf("%w: username or email already taken", apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Приветственное письмо уходит в фоне: ретраи отправителя
	// не должны задерживать ответ на регистрацию
	go func(userID uint, email, username string) {
		ctx, cancel := context.WithTimeout(context.Background(), welcomeEmailTimeout)
		defer cancel()
		if err := s.emailService.SendWelcome(ctx, email, username); err != nil {
			log.Printf("[AuthService] Не удалось отправить приветственное письмо для user=%d: %v", userID, err)
		}
	}(user.ID, user.Email, user.Username)

	return user, nil
}

// Login проверяет учетные данные и выдает пару access/refresh токенов
func (s *AuthService) Login(username, password string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
	}

	return s.issueTokens(user)
}

// Refresh обменивает действующий refresh-токен на новую пару токенов.
// Старый токен при этом отзывается (ротация).
func (s *AuthService) Refresh(refreshToken string) (*AuthResponse, error) {
	stored, err := s.refreshTokenRepo.GetByToken(refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown refresh token", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if !stored.IsValid() {
		// Подчищаем истекший токен
		if delErr := s.refreshTokenRepo.Delete(refreshToken); delErr != nil {
			log.Printf("[AuthService] Не удалось удалить истекший refresh-токен: %v", delErr)
		}
		return nil, fmt.Errorf("%w: refresh token is expired", apperrors.ErrExpiredToken)
	}

	user, err := s.userRepo.GetByID(stored.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.Delete(refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(user)
}

// GetUser возвращает пользователя по ID
func (s *AuthService) GetUser(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// CleanupExpiredTokens удаляет истекшие refresh-токены
func (s *AuthService) CleanupExpiredTokens() error {
	removed, err := s.refreshTokenRepo.DeleteExpired()
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Printf("[AuthService] Удалено истекших refresh-токенов: %d", removed)
	}
	return nil
}

// issueTokens выдает пару access/refresh токенов для пользователя
func (s *AuthService) issueTokens(user *entity.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh := &entity.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.refreshLifetime),
		CreatedAt: time.Now(),
	}
	if err := s.refreshTokenRepo.Create(refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
	}, nil
}
