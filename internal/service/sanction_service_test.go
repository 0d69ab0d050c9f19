package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

type mockSanctionUsers struct {
	mock.Mock
}

func (m *mockSanctionUsers) Suspend(ctx context.Context, userID uuid.UUID, until time.Time) error {
	args := m.Called(ctx, userID, until)
	return args.Error(0)
}

func (m *mockSanctionUsers) Ban(ctx context.Context, userID uuid.UUID, reason string, bannedAt time.Time) error {
	args := m.Called(ctx, userID, reason, bannedAt)
	return args.Error(0)
}

type mockWarningWriter struct {
	mock.Mock
}

func (m *mockWarningWriter) Create(ctx context.Context, warning *models.UserWarning) error {
	args := m.Called(ctx, warning)
	return args.Error(0)
}

type mockInAppNotifier struct {
	mock.Mock
}

func (m *mockInAppNotifier) PushInApp(ctx context.Context, userID uuid.UUID, ntype, title, message string, data interface{}) error {
	args := m.Called(ctx, userID, ntype, title, message, data)
	return args.Error(0)
}

func contentInfo(ownerID uuid.UUID, title string) *models.ContentInfo {
	info := &models.ContentInfo{ID: uuid.New(), OwnerID: &ownerID}
	if title != "" {
		info.Title = &title
	}
	return info
}

func TestSanctionService_IssueWarning(t *testing.T) {
	content := new(mockContentRepo)
	users := new(mockSanctionUsers)
	warnings := new(mockWarningWriter)
	notifier := new(mockInAppNotifier)
	svc := NewSanctionService(content, users, warnings, notifier)

	ctx := context.Background()
	ownerID := uuid.New()
	contentID := uuid.New()
	moderatorID := uuid.New()

	content.On("Find", ctx, models.ContentTypePost, contentID).Return(contentInfo(ownerID, "My first post"), nil)
	warnings.On("Create", ctx, mock.MatchedBy(func(w *models.UserWarning) bool {
		return w.UserID == ownerID &&
			w.WarningLevel == models.WarningLevelModerate &&
			strings.Contains(w.Reason, "POST") &&
			strings.Contains(w.Reason, "My first post")
	})).Return(nil)
	notifier.On("PushInApp", ctx, ownerID, models.NotificationTypeWarning,
		mock.Anything, mock.Anything, mock.Anything).Return(nil)

	applied, err := svc.IssueWarning(ctx, models.ContentTypePost, contentID, &moderatorID)

	assert.NoError(t, err)
	assert.True(t, applied)
	warnings.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSanctionService_IssueWarning_ContentMissing_NoWrites(t *testing.T) {
	content := new(mockContentRepo)
	warnings := new(mockWarningWriter)
	notifier := new(mockInAppNotifier)
	svc := NewSanctionService(content, new(mockSanctionUsers), warnings, notifier)

	ctx := context.Background()
	contentID := uuid.New()

	content.On("Find", ctx, models.ContentTypePost, contentID).Return(nil, repository.ErrContentNotFound)

	applied, err := svc.IssueWarning(ctx, models.ContentTypePost, contentID, nil)

	assert.NoError(t, err)
	assert.False(t, applied)
	warnings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "PushInApp", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSanctionService_IssueWarning_NoOwner_NoWrites(t *testing.T) {
	content := new(mockContentRepo)
	warnings := new(mockWarningWriter)
	svc := NewSanctionService(content, new(mockSanctionUsers), warnings, new(mockInAppNotifier))

	ctx := context.Background()
	contentID := uuid.New()

	content.On("Find", ctx, models.ContentTypeComment, contentID).
		Return(&models.ContentInfo{ID: contentID}, nil)

	applied, err := svc.IssueWarning(ctx, models.ContentTypeComment, contentID, nil)

	assert.NoError(t, err)
	assert.False(t, applied)
	warnings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSanctionService_SuspendUser_ExactlySevenDays(t *testing.T) {
	content := new(mockContentRepo)
	users := new(mockSanctionUsers)
	notifier := new(mockInAppNotifier)
	svc := NewSanctionService(content, users, new(mockWarningWriter), notifier)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	ownerID := uuid.New()
	contentID := uuid.New()

	content.On("Find", ctx, models.ContentTypeProduct, contentID).Return(contentInfo(ownerID, "Vintage lamp"), nil)
	users.On("Suspend", ctx, ownerID, now.Add(7*24*time.Hour)).Return(nil)
	notifier.On("PushInApp", ctx, ownerID, models.NotificationTypeAccount,
		mock.Anything, mock.Anything, mock.Anything).Return(nil)

	applied, err := svc.SuspendUser(ctx, models.ContentTypeProduct, contentID, nil)

	assert.NoError(t, err)
	assert.True(t, applied)
	users.AssertExpectations(t)
}

func TestSanctionService_SuspendUser_OwnerUnresolved_NoOp(t *testing.T) {
	content := new(mockContentRepo)
	users := new(mockSanctionUsers)
	svc := NewSanctionService(content, users, new(mockWarningWriter), new(mockInAppNotifier))

	ctx := context.Background()
	contentID := uuid.New()

	content.On("Find", ctx, models.ContentTypePost, contentID).Return(nil, repository.ErrContentNotFound)

	applied, err := svc.SuspendUser(ctx, models.ContentTypePost, contentID, nil)

	assert.NoError(t, err)
	assert.False(t, applied)
	users.AssertNotCalled(t, "Suspend", mock.Anything, mock.Anything, mock.Anything)
}

func TestSanctionService_BanUser(t *testing.T) {
	content := new(mockContentRepo)
	users := new(mockSanctionUsers)
	notifier := new(mockInAppNotifier)
	svc := NewSanctionService(content, users, new(mockWarningWriter), notifier)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	ownerID := uuid.New()
	contentID := uuid.New()
	moderatorID := uuid.New()

	content.On("Find", ctx, models.ContentTypeMessage, contentID).Return(contentInfo(ownerID, ""), nil)
	users.On("Ban", ctx, ownerID, mock.MatchedBy(func(reason string) bool {
		// Без заголовка причина содержит дефолтный текст.
		return strings.Contains(reason, "MESSAGE") && strings.Contains(reason, "your content")
	}), now).Return(nil)
	notifier.On("PushInApp", ctx, ownerID, models.NotificationTypeAccount,
		mock.Anything, mock.Anything, mock.Anything).Return(nil)

	applied, err := svc.BanUser(ctx, models.ContentTypeMessage, contentID, &moderatorID)

	assert.NoError(t, err)
	assert.True(t, applied)
	users.AssertExpectations(t)
}

func TestSanctionService_ResolveOwner(t *testing.T) {
	content := new(mockContentRepo)
	svc := NewSanctionService(content, new(mockSanctionUsers), new(mockWarningWriter), new(mockInAppNotifier))

	ctx := context.Background()
	ownerID := uuid.New()
	contentID := uuid.New()

	content.On("Find", ctx, models.ContentTypePost, contentID).Return(contentInfo(ownerID, "t"), nil)

	resolved, err := svc.ResolveOwner(ctx, models.ContentTypePost, contentID)
	assert.NoError(t, err)
	assert.Equal(t, ownerID, resolved)

	missing := uuid.New()
	content.On("Find", ctx, models.ContentTypePost, missing).Return(nil, repository.ErrContentNotFound)

	_, err = svc.ResolveOwner(ctx, models.ContentTypePost, missing)
	assert.ErrorIs(t, err, ErrOwnerNotResolved)
}
