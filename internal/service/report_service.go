package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/validation"
)

var (
	ErrInvalidReportTarget = errors.New("invalid content type")
	ErrReportAlreadyClosed = errors.New("report already resolved")
)

// ReportRepositoryIface описывает хранилище жалоб.
type ReportRepositoryIface interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.Report, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error)
	Resolve(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID) error
}

// ActionPerformer описывает диспетчер, которому делегируется разрешение жалобы.
type ActionPerformer interface {
	PerformModeratorAction(ctx context.Context, item models.ModerationItem) error
}

// ReportService — очередь жалоб: входная точка работы модераторов.
// Разрешение жалобы выполняет модераторское действие через диспетчер
// и помечает жалобу рассмотренной.
type ReportService struct {
	repo       ReportRepositoryIface
	dispatcher ActionPerformer
}

// NewReportService создаёт сервис жалоб.
func NewReportService(repo ReportRepositoryIface, dispatcher ActionPerformer) *ReportService {
	return &ReportService{repo: repo, dispatcher: dispatcher}
}

// CreateReport принимает жалобу пользователя на запись контента.
func (s *ReportService) CreateReport(ctx context.Context, reporterID uuid.UUID, contentType string, contentID uuid.UUID, reason string, description *string) (*models.Report, error) {
	if !models.IsValidContentType(contentType) {
		return nil, ErrInvalidReportTarget
	}
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}
	if description != nil {
		if err := validation.ValidateLength("описание", *description, 0, validation.MaxDescriptionLength); err != nil {
			return nil, err
		}
	}

	report := &models.Report{
		ReporterID:  reporterID,
		ContentType: models.ContentType(contentType),
		ContentID:   contentID,
		Reason:      reason,
		Description: description,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// GetReport возвращает жалобу по идентификатору.
func (s *ReportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPending возвращает очередь нерассмотренных жалоб.
func (s *ReportService) ListPending(ctx context.Context, limit, offset int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListPending(ctx, limit, offset)
}

// ListMyReports возвращает жалобы, поданные пользователем.
func (s *ReportService) ListMyReports(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByReporter(ctx, userID, limit, offset)
}

// ResolveReport применяет модераторское действие к цели жалобы и
// помечает её рассмотренной. NO_ACTION закрывает жалобу как отклонённую.
func (s *ReportService) ResolveReport(ctx context.Context, reportID uuid.UUID, action models.ModerationAction, contentEdits map[string]string, moderatorID uuid.UUID) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusPending {
		return nil, ErrReportAlreadyClosed
	}

	if err := s.dispatcher.PerformModeratorAction(ctx, models.ModerationItem{
		ContentType:  report.ContentType,
		ContentID:    report.ContentID,
		Action:       action,
		ContentEdits: contentEdits,
		ModeratorID:  &moderatorID,
	}); err != nil {
		return nil, err
	}

	status := models.ReportStatusActionTaken
	if action == models.ActionNoAction {
		status = models.ReportStatusDismissed
	}
	if err := s.repo.Resolve(ctx, reportID, status, moderatorID); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, reportID)
}
