package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthRepo) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())

	ctx := context.Background()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "mod@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         models.RoleModerator,
		Status:       models.UserStatusActive,
	}

	repo.On("GetByEmail", ctx, "mod@example.com").Return(user, nil)
	repo.On("CreateSession", ctx, mock.MatchedBy(func(s *models.Session) bool {
		return s.UserID == user.ID && s.RefreshToken != ""
	})).Return(nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "Mod@Example.com ", Password: "correct-horse"}, nil)

	require.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())

	ctx := context.Background()
	repo.On("GetByEmail", ctx, "mod@example.com").Return(&models.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "correct-horse"),
		Status:       models.UserStatusActive,
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "mod@example.com", Password: "wrong"}, nil)

	assert.True(t, apperror.IsUnauthorized(err))
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())

	ctx := context.Background()
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"}, nil)

	assert.True(t, apperror.IsUnauthorized(err))
}

func TestAuthService_Login_BannedForbidden(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())

	ctx := context.Background()
	repo.On("GetByEmail", ctx, "banned@example.com").Return(&models.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "correct-horse"),
		Status:       models.UserStatusBanned,
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "banned@example.com", Password: "correct-horse"}, nil)

	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_SuspendedForbidden(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())

	until := time.Now().Add(24 * time.Hour)
	ctx := context.Background()
	repo.On("GetByEmail", ctx, "suspended@example.com").Return(&models.User{
		ID:             uuid.New(),
		PasswordHash:   hashPassword(t, "correct-horse"),
		Status:         models.UserStatusSuspended,
		SuspendedUntil: &until,
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "suspended@example.com", Password: "correct-horse"}, nil)

	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())

	_, err := svc.Refresh(context.Background(), "not-a-token")

	assert.True(t, apperror.IsUnauthorized(err))
}
