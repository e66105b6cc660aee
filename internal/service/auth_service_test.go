package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/toeic-api/internal/domain/entity"
	apperrors "github.com/yourusername/toeic-api/internal/pkg/errors"
	"github.com/yourusername/toeic-api/pkg/auth"
)

// createTestAuthService создаёт AuthService с моками и настоящим JWT сервисом
func createTestAuthService(t *testing.T, userRepo *MockUserRepository, refreshTokenRepo *MockRefreshTokenRepository) *AuthService {
	t.Helper()

	jwtService, err := auth.NewJWTService("test-secret", 1)
	require.NoError(t, err)

	authService, err := NewAuthService(userRepo, refreshTokenRepo, jwtService, &NoopEmailService{}, 24)
	require.NoError(t, err)
	return authService
}

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	// Пользователь не существует
	mockUserRepo.On("GetByUsername", "newuser").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	user, err := authService.Register(RegisterInput{
		Username:        "newuser",
		Email:           "New@Example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	// Assert
	require.NoError(t, err, "Регистрация должна быть успешной")
	require.NotNil(t, user)
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, "new@example.com", user.Email, "Email должен приводиться к нижнему регистру")
	mockUserRepo.AssertExpectations(t)
}

// blockingEmailService держит отправку до закрытия release,
// чтобы проверить что регистрация её не ждет
type blockingEmailService struct {
	release chan struct{}
	sent    chan string
}

func (s *blockingEmailService) SendWelcome(ctx context.Context, toEmail, username string) error {
	<-s.release
	s.sent <- toEmail
	return nil
}

func TestAuthService_Register_DoesNotWaitForWelcomeEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	mockUserRepo.On("GetByUsername", "slowmail").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", "slowmail@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	emailService := &blockingEmailService{
		release: make(chan struct{}),
		sent:    make(chan string, 1),
	}

	jwtService, err := auth.NewJWTService("test-secret", 1)
	require.NoError(t, err)
	authService, err := NewAuthService(mockUserRepo, mockRefreshTokenRepo, jwtService, emailService, 24)
	require.NoError(t, err)

	// Act: Register возвращается, пока письмо ещё не отправлено
	user, err := authService.Register(RegisterInput{
		Username:        "slowmail",
		Email:           "slowmail@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	// Assert
	require.NoError(t, err, "Регистрация не должна ждать отправку письма")
	require.NotNil(t, user)

	// Отпускаем отправку и убеждаемся, что письмо всё же уходит
	close(emailService.release)
	select {
	case to := <-emailService.sent:
		assert.Equal(t, "slowmail@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("Приветственное письмо так и не было отправлено")
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	user, err := authService.Register(RegisterInput{
		Username:        "newuser",
		Email:           "new@example.com",
		Password:        "password123",
		PasswordConfirm: "password456",
	})

	// Assert
	assert.Nil(t, user, "Пользователь не должен быть создан")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	existingUser := &entity.User{ID: 1, Username: "existinguser", Email: "other@example.com"}
	mockUserRepo.On("GetByUsername", "existinguser").Return(existingUser, nil)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	user, err := authService.Register(RegisterInput{
		Username:        "existinguser",
		Email:           "new@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "username", "Ошибка должна указывать на username")
}

func TestAuthService_Register_UniqueConstraintRace(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	// Предварительные проверки проходят, но Create ловит гонку на уникальном ограничении
	mockUserRepo.On("GetByUsername", "racer").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", "racer@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(apperrors.ErrConflict)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	user, err := authService.Register(RegisterInput{
		Username:        "racer",
		Email:           "racer@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_Login_ValidCredentials(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	plainPassword := "correctPassword123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)

	existingUser := &entity.User{
		ID:       1,
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	mockUserRepo.On("GetByUsername", "testuser").Return(existingUser, nil)
	mockRefreshTokenRepo.On("Create", mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	resp, err := authService.Login("testuser", plainPassword)

	// Assert
	require.NoError(t, err, "Аутентификация должна быть успешной")
	require.NotNil(t, resp)
	assert.Equal(t, uint(1), resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	mockRefreshTokenRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correctPassword"), bcrypt.DefaultCost)
	existingUser := &entity.User{ID: 1, Username: "testuser", Password: string(hashedPassword)}

	mockUserRepo.On("GetByUsername", "testuser").Return(existingUser, nil)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	resp, err := authService.Login("testuser", "wrongPassword")

	// Assert
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "Неправильный пароль — это unauthorized, а не not found")
	mockRefreshTokenRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	stored := &entity.RefreshToken{
		ID:        10,
		UserID:    1,
		Token:     "old-refresh-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	existingUser := &entity.User{ID: 1, Username: "testuser"}

	mockRefreshTokenRepo.On("GetByToken", "old-refresh-token").Return(stored, nil)
	mockUserRepo.On("GetByID", uint(1)).Return(existingUser, nil)
	mockRefreshTokenRepo.On("Delete", "old-refresh-token").Return(nil)
	mockRefreshTokenRepo.On("Create", mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	resp, err := authService.Refresh("old-refresh-token")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEqual(t, "old-refresh-token", resp.RefreshToken, "Старый токен должен быть заменён новым")
	mockRefreshTokenRepo.AssertCalled(t, "Delete", "old-refresh-token")
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	stored := &entity.RefreshToken{
		ID:        10,
		UserID:    1,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	mockRefreshTokenRepo.On("GetByToken", "expired-token").Return(stored, nil)
	mockRefreshTokenRepo.On("Delete", "expired-token").Return(nil)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	resp, err := authService.Refresh("expired-token")

	// Assert
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
	mockRefreshTokenRepo.AssertCalled(t, "Delete", "expired-token")
	mockRefreshTokenRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)

	mockRefreshTokenRepo.On("GetByToken", "missing-token").Return(nil, apperrors.ErrNotFound)

	authService := createTestAuthService(t, mockUserRepo, mockRefreshTokenRepo)

	// Act
	resp, err := authService.Refresh("missing-token")

	// Assert
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
