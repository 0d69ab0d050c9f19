package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

type mockContentRepo struct {
	mock.Mock
}

func (m *mockContentRepo) Supports(contentType models.ContentType) bool {
	args := m.Called(contentType)
	return args.Bool(0)
}

func (m *mockContentRepo) Find(ctx context.Context, contentType models.ContentType, id uuid.UUID) (*models.ContentInfo, error) {
	args := m.Called(ctx, contentType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentInfo), args.Error(1)
}

func (m *mockContentRepo) SetApproval(ctx context.Context, contentType models.ContentType, id uuid.UUID, approved bool) error {
	args := m.Called(ctx, contentType, id, approved)
	return args.Error(0)
}

func (m *mockContentRepo) ApplyEdits(ctx context.Context, contentType models.ContentType, id uuid.UUID, edits map[string]string) (bool, error) {
	args := m.Called(ctx, contentType, id, edits)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) RestrictVisibility(ctx context.Context, contentType models.ContentType, id uuid.UUID) error {
	args := m.Called(ctx, contentType, id)
	return args.Error(0)
}

type mockSanctioner struct {
	mock.Mock
}

func (m *mockSanctioner) IssueWarning(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, contentType, contentID, moderatorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSanctioner) SuspendUser(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, contentType, contentID, moderatorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSanctioner) BanUser(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, contentType, contentID, moderatorID)
	return args.Bool(0), args.Error(1)
}

type mockLogWriter struct {
	mock.Mock
}

func (m *mockLogWriter) Create(ctx context.Context, entry *models.ModerationLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestModerationService_Approve(t *testing.T) {
	content := new(mockContentRepo)
	sanctions := new(mockSanctioner)
	log := new(mockLogWriter)
	svc := NewModerationService(content, sanctions, log)

	ctx := context.Background()
	contentID := uuid.New()
	moderatorID := uuid.New()

	content.On("Supports", models.ContentTypePost).Return(true)
	content.On("SetApproval", ctx, models.ContentTypePost, contentID, true).Return(nil)
	log.On("Create", ctx, mock.MatchedBy(func(entry *models.ModerationLog) bool {
		return entry.Action == models.ActionApproved &&
			entry.ContentType == models.ContentTypePost &&
			entry.ContentID == contentID &&
			entry.BatchID == nil
	})).Return(nil)

	err := svc.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType: models.ContentTypePost,
		ContentID:   contentID,
		Action:      models.ActionApproved,
		ModeratorID: &moderatorID,
	})

	assert.NoError(t, err)
	content.AssertExpectations(t)
	log.AssertExpectations(t)
}

func TestModerationService_Reject(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	ctx := context.Background()
	contentID := uuid.New()

	content.On("Supports", models.ContentTypeComment).Return(true)
	content.On("SetApproval", ctx, models.ContentTypeComment, contentID, false).Return(nil)
	log.On("Create", ctx, mock.Anything).Return(nil)

	err := svc.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType: models.ContentTypeComment,
		ContentID:   contentID,
		Action:      models.ActionRejected,
	})

	assert.NoError(t, err)
	content.AssertExpectations(t)
}

func TestModerationService_EmptyAction_NoWrites(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	err := svc.PerformModeratorAction(context.Background(), models.ModerationItem{
		ContentType: models.ContentTypePost,
		ContentID:   uuid.New(),
	})

	assert.NoError(t, err)
	content.AssertNotCalled(t, "SetApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestModerationService_UnknownContentType_NoWrites(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	content.On("Supports", models.ContentType("WIKI_PAGE")).Return(false)

	err := svc.PerformModeratorAction(context.Background(), models.ModerationItem{
		ContentType: models.ContentType("WIKI_PAGE"),
		ContentID:   uuid.New(),
		Action:      models.ActionApproved,
	})

	assert.NoError(t, err)
	content.AssertNotCalled(t, "SetApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestModerationService_NoAction_NoWrites(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	content.On("Supports", models.ContentTypePost).Return(true)

	err := svc.PerformModeratorAction(context.Background(), models.ModerationItem{
		ContentType: models.ContentTypePost,
		ContentID:   uuid.New(),
		Action:      models.ActionNoAction,
	})

	assert.NoError(t, err)
	log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestModerationService_EditWithoutEdits_Skipped(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	content.On("Supports", models.ContentTypePost).Return(true)

	err := svc.PerformModeratorAction(context.Background(), models.ModerationItem{
		ContentType: models.ContentTypePost,
		ContentID:   uuid.New(),
		Action:      models.ActionContentEdited,
	})

	assert.NoError(t, err)
	content.AssertNotCalled(t, "ApplyEdits", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestModerationService_EditSanitizesValues(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	ctx := context.Background()
	contentID := uuid.New()

	content.On("Supports", models.ContentTypePost).Return(true)
	content.On("ApplyEdits", ctx, models.ContentTypePost, contentID,
		map[string]string{"title": "Clean title"}).Return(true, nil)
	log.On("Create", ctx, mock.Anything).Return(nil)

	err := svc.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType:  models.ContentTypePost,
		ContentID:    contentID,
		Action:       models.ActionContentEdited,
		ContentEdits: map[string]string{"title": "Clean title\x00"},
	})

	assert.NoError(t, err)
	content.AssertExpectations(t)
}

func TestModerationService_SanctionSoftFailure_NotLogged(t *testing.T) {
	content := new(mockContentRepo)
	sanctions := new(mockSanctioner)
	log := new(mockLogWriter)
	svc := NewModerationService(content, sanctions, log)

	ctx := context.Background()
	contentID := uuid.New()

	content.On("Supports", models.ContentTypePost).Return(true)
	sanctions.On("IssueWarning", ctx, models.ContentTypePost, contentID, (*uuid.UUID)(nil)).Return(false, nil)

	err := svc.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType: models.ContentTypePost,
		ContentID:   contentID,
		Action:      models.ActionWarningIssued,
	})

	assert.NoError(t, err)
	log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestModerationService_RepositoryError_Propagates(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	ctx := context.Background()
	contentID := uuid.New()
	dbErr := errors.New("connection reset")

	content.On("Supports", models.ContentTypePost).Return(true)
	content.On("SetApproval", ctx, models.ContentTypePost, contentID, true).Return(dbErr)

	err := svc.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType: models.ContentTypePost,
		ContentID:   contentID,
		Action:      models.ActionApproved,
	})

	assert.ErrorIs(t, err, dbErr)
	log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// fakeContentStore хранит состояние записей в памяти, чтобы проверять
// последовательности решений, а не одиночные вызовы.
type fakeContentStore struct {
	records map[uuid.UUID]*fakeContentRecord
}

type fakeContentRecord struct {
	status     string
	title      string
	moderated  bool
	restricted bool
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{records: make(map[uuid.UUID]*fakeContentRecord)}
}

func (f *fakeContentStore) add(id uuid.UUID, title string) *fakeContentRecord {
	rec := &fakeContentRecord{status: "PENDING", title: title}
	f.records[id] = rec
	return rec
}

func (f *fakeContentStore) Supports(models.ContentType) bool { return true }

func (f *fakeContentStore) Find(_ context.Context, _ models.ContentType, id uuid.UUID) (*models.ContentInfo, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &models.ContentInfo{ID: id, Title: &rec.title}, nil
}

func (f *fakeContentStore) SetApproval(_ context.Context, _ models.ContentType, id uuid.UUID, approved bool) error {
	rec, ok := f.records[id]
	if !ok {
		return errors.New("not found")
	}
	if approved {
		rec.status = "APPROVED"
	} else {
		rec.status = "REJECTED"
	}
	return nil
}

func (f *fakeContentStore) ApplyEdits(_ context.Context, _ models.ContentType, id uuid.UUID, edits map[string]string) (bool, error) {
	rec, ok := f.records[id]
	if !ok {
		return false, errors.New("not found")
	}
	if title, ok := edits["title"]; ok {
		rec.title = title
	}
	rec.moderated = true
	return true, nil
}

func (f *fakeContentStore) RestrictVisibility(_ context.Context, _ models.ContentType, id uuid.UUID) error {
	rec, ok := f.records[id]
	if !ok {
		return errors.New("not found")
	}
	rec.restricted = true
	return nil
}

func TestModerationService_SequencedDecisions_LastWins(t *testing.T) {
	store := newFakeContentStore()
	log := new(mockLogWriter)
	log.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewModerationService(store, new(mockSanctioner), log)

	ctx := context.Background()
	contentID := uuid.New()
	rec := store.add(contentID, "Weekend meetup")

	for _, action := range []models.ModerationAction{
		models.ActionApproved,
		models.ActionRejected,
		models.ActionApproved,
	} {
		err := svc.PerformModeratorAction(ctx, models.ModerationItem{
			ContentType: models.ContentTypePost,
			ContentID:   contentID,
			Action:      action,
		})
		assert.NoError(t, err)
	}

	assert.Equal(t, "APPROVED", rec.status)
	log.AssertNumberOfCalls(t, "Create", 3)
}

func TestModerationService_RejectThenEdit_KeepsRejection(t *testing.T) {
	store := newFakeContentStore()
	log := new(mockLogWriter)
	log.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewModerationService(store, new(mockSanctioner), log)

	ctx := context.Background()
	contentID := uuid.New()
	rec := store.add(contentID, "Original title")

	err := svc.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType: models.ContentTypePost,
		ContentID:   contentID,
		Action:      models.ActionRejected,
	})
	assert.NoError(t, err)

	err = svc.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType:  models.ContentTypePost,
		ContentID:    contentID,
		Action:       models.ActionContentEdited,
		ContentEdits: map[string]string{"title": "Edited title"},
	})
	assert.NoError(t, err)

	// Правка меняет содержимое и помечает запись обработанной,
	// но не отменяет ранее принятого отклонения.
	assert.Equal(t, "REJECTED", rec.status)
	assert.Equal(t, "Edited title", rec.title)
	assert.True(t, rec.moderated)
}

func TestModerationService_PerformBatch_TagsEntries(t *testing.T) {
	content := new(mockContentRepo)
	log := new(mockLogWriter)
	svc := NewModerationService(content, new(mockSanctioner), log)

	ctx := context.Background()
	batchID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	content.On("Supports", models.ContentTypePost).Return(true)
	content.On("SetApproval", ctx, models.ContentTypePost, first, true).Return(nil)
	content.On("SetApproval", ctx, models.ContentTypePost, second, true).Return(nil)
	log.On("Create", ctx, mock.MatchedBy(func(entry *models.ModerationLog) bool {
		return entry.BatchID != nil && *entry.BatchID == batchID
	})).Return(nil).Twice()

	err := svc.PerformBatch(ctx, []models.ModerationItem{
		{ContentType: models.ContentTypePost, ContentID: first, Action: models.ActionApproved},
		{ContentType: models.ContentTypePost, ContentID: second, Action: models.ActionApproved},
	}, batchID)

	assert.NoError(t, err)
	log.AssertExpectations(t)
}
