package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/metrics"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/validation"
)

// ModerationContentRepository описывает модерационные записи в таблицы контента.
type ModerationContentRepository interface {
	Supports(contentType models.ContentType) bool
	Find(ctx context.Context, contentType models.ContentType, id uuid.UUID) (*models.ContentInfo, error)
	SetApproval(ctx context.Context, contentType models.ContentType, id uuid.UUID, approved bool) error
	ApplyEdits(ctx context.Context, contentType models.ContentType, id uuid.UUID, edits map[string]string) (bool, error)
	RestrictVisibility(ctx context.Context, contentType models.ContentType, id uuid.UUID) error
}

// Sanctioner описывает делегирование действий, затрагивающих учётную запись.
type Sanctioner interface {
	IssueWarning(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error)
	SuspendUser(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error)
	BanUser(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error)
}

// ModerationLogWriter описывает журнал выполненных действий.
type ModerationLogWriter interface {
	Create(ctx context.Context, entry *models.ModerationLog) error
}

// ModerationService — диспетчер модераторских действий: по паре
// (вид контента, действие) выполняет конкретную мутацию состояния.
// Побочные эффекты best-effort: мутация контента и записи
// аудита/уведомлений не объединены в транзакцию, отката частично
// применённых изменений нет.
type ModerationService struct {
	content   ModerationContentRepository
	sanctions Sanctioner
	log       ModerationLogWriter
}

// NewModerationService создаёт диспетчер.
func NewModerationService(content ModerationContentRepository, sanctions Sanctioner, log ModerationLogWriter) *ModerationService {
	return &ModerationService{
		content:   content,
		sanctions: sanctions,
		log:       log,
	}
}

// PerformModeratorAction применяет решение модератора к записи контента.
// Пустое действие — гарантированный no-op. Вид контента вне реестра
// молча игнорируется (задел на будущие виды, см. реестр capability).
func (s *ModerationService) PerformModeratorAction(ctx context.Context, item models.ModerationItem) error {
	return s.perform(ctx, item, nil)
}

// PerformBatch применяет одно решение к набору целей, помечая журнальные
// записи общим batch_id для последующей сводной рассылки. Мягкие сбои
// (нерезолвленный владелец, неизвестный вид) не прерывают обход,
// ошибки хранилища — прерывают.
func (s *ModerationService) PerformBatch(ctx context.Context, items []models.ModerationItem, batchID uuid.UUID) error {
	for _, item := range items {
		if err := s.perform(ctx, item, &batchID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ModerationService) perform(ctx context.Context, item models.ModerationItem, batchID *uuid.UUID) error {
	if item.Action == "" {
		return nil
	}
	if !s.content.Supports(item.ContentType) {
		logger.WithComponent("moderation").
			WithField("content_type", item.ContentType).
			Debug("вид контента не зарегистрирован, действие пропущено")
		return nil
	}

	performed := false

	switch item.Action {
	case models.ActionApproved:
		if err := s.content.SetApproval(ctx, item.ContentType, item.ContentID, true); err != nil {
			return err
		}
		performed = true

	case models.ActionRejected:
		if err := s.content.SetApproval(ctx, item.ContentType, item.ContentID, false); err != nil {
			return err
		}
		performed = true

	case models.ActionContentEdited:
		// Без правок действие пропускается целиком: частичных правок не бывает.
		if len(item.ContentEdits) == 0 {
			return nil
		}
		edits := validation.SanitizeContentEdits(item.ContentEdits)
		applied, err := s.content.ApplyEdits(ctx, item.ContentType, item.ContentID, edits)
		if err != nil {
			return err
		}
		performed = applied

	case models.ActionRestrictedVisibility:
		if err := s.content.RestrictVisibility(ctx, item.ContentType, item.ContentID); err != nil {
			return err
		}
		performed = true

	case models.ActionWarningIssued:
		applied, err := s.sanctions.IssueWarning(ctx, item.ContentType, item.ContentID, item.ModeratorID)
		if err != nil {
			return err
		}
		performed = applied

	case models.ActionUserSuspended:
		applied, err := s.sanctions.SuspendUser(ctx, item.ContentType, item.ContentID, item.ModeratorID)
		if err != nil {
			return err
		}
		performed = applied

	case models.ActionUserBanned:
		applied, err := s.sanctions.BanUser(ctx, item.ContentType, item.ContentID, item.ModeratorID)
		if err != nil {
			return err
		}
		performed = applied

	case models.ActionNoAction:
		return nil

	default:
		// Неизвестное действие игнорируем так же молча, как неизвестный вид.
		return nil
	}

	if !performed {
		return nil
	}

	metrics.ModerationActions.WithLabelValues(string(item.ContentType), string(item.Action)).Inc()

	entry := &models.ModerationLog{
		BatchID:     batchID,
		ContentType: item.ContentType,
		ContentID:   item.ContentID,
		Action:      item.Action,
		ModeratorID: item.ModeratorID,
	}
	if err := s.log.Create(ctx, entry); err != nil {
		// Мутация уже применена, отката нет: ошибка журнала уходит наверх.
		return err
	}

	return nil
}

// ResolveContent возвращает сведения о записи для обработчиков API.
func (s *ModerationService) ResolveContent(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (*models.ContentInfo, error) {
	info, err := s.content.Find(ctx, contentType, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) || errors.Is(err, repository.ErrUnknownContentType) {
			return nil, repository.ErrContentNotFound
		}
		return nil, err
	}
	return info, nil
}
