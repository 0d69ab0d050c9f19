package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/metrics"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// ErrOwnerNotResolved возвращается, когда владельца записи контента
// определить не удалось: запись отсутствует или внешний ключ автора пуст.
// Вызывающие трактуют её как мягкий no-op, а не как сбой.
var ErrOwnerNotResolved = errors.New("content owner not resolved")

// SuspensionDuration — фиксированный срок блокировки. Политика эскалации
// сознательно вне зоны этого сервиса.
const SuspensionDuration = 7 * 24 * time.Hour

// ContentReader описывает чтение записей контента.
type ContentReader interface {
	Find(ctx context.Context, contentType models.ContentType, id uuid.UUID) (*models.ContentInfo, error)
}

// SanctionUserRepository описывает записи санкций в учётные записи.
type SanctionUserRepository interface {
	Suspend(ctx context.Context, userID uuid.UUID, until time.Time) error
	Ban(ctx context.Context, userID uuid.UUID, reason string, bannedAt time.Time) error
}

// WarningWriter описывает append-only журнал предупреждений.
type WarningWriter interface {
	Create(ctx context.Context, warning *models.UserWarning) error
}

// InAppNotifier доставляет уведомление пользователю внутри платформы.
type InAppNotifier interface {
	PushInApp(ctx context.Context, userID uuid.UUID, ntype, title, message string, data interface{}) error
}

// SanctionService применяет санкции к владельцам контента:
// предупреждения, блокировки и баны, с аудитом и уведомлением.
type SanctionService struct {
	content  ContentReader
	users    SanctionUserRepository
	warnings WarningWriter
	notifier InAppNotifier
	now      func() time.Time
}

// NewSanctionService создаёт санкционный движок.
func NewSanctionService(content ContentReader, users SanctionUserRepository, warnings WarningWriter, notifier InAppNotifier) *SanctionService {
	return &SanctionService{
		content:  content,
		users:    users,
		warnings: warnings,
		notifier: notifier,
		now:      time.Now,
	}
}

// ResolveOwner определяет владельца записи контента.
// Единая точка резолва для санкций и рассылки уведомлений.
func (s *SanctionService) ResolveOwner(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (uuid.UUID, error) {
	info, err := s.content.Find(ctx, contentType, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) || errors.Is(err, repository.ErrUnknownContentType) {
			return uuid.Nil, ErrOwnerNotResolved
		}
		return uuid.Nil, err
	}

	if info.OwnerID == nil || *info.OwnerID == uuid.Nil {
		return uuid.Nil, ErrOwnerNotResolved
	}

	return *info.OwnerID, nil
}

// IssueWarning выдаёт владельцу контента предупреждение уровня MODERATE
// и уведомление типа WARNING. Возвращает false без ошибки, если владельца
// определить не удалось.
func (s *SanctionService) IssueWarning(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error) {
	info, err := s.content.Find(ctx, contentType, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) || errors.Is(err, repository.ErrUnknownContentType) {
			return false, nil
		}
		return false, err
	}
	if info.OwnerID == nil || *info.OwnerID == uuid.Nil {
		return false, nil
	}
	userID := *info.OwnerID

	reason := fmt.Sprintf("Moderation violation related to %s: %s", contentType, info.DisplayTitle())

	warning := &models.UserWarning{
		UserID:       userID,
		Reason:       reason,
		WarningLevel: models.WarningLevelModerate,
		ContentType:  contentType,
		ContentID:    contentID,
		ModeratorID:  moderatorID,
	}
	if err := s.warnings.Create(ctx, warning); err != nil {
		return false, err
	}

	if err := s.notifier.PushInApp(ctx, userID,
		models.NotificationTypeWarning,
		"You have received a warning",
		reason,
		map[string]interface{}{
			"content_type": contentType,
			"content_id":   contentID,
			"warning_id":   warning.ID,
		},
	); err != nil {
		return false, err
	}

	metrics.SanctionsApplied.WithLabelValues("warning").Inc()
	return true, nil
}

// SuspendUser блокирует владельца контента ровно на 7 суток от момента
// вызова, независимо от предыдущих блокировок.
func (s *SanctionService) SuspendUser(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error) {
	userID, err := s.ResolveOwner(ctx, contentType, contentID)
	if err != nil {
		if errors.Is(err, ErrOwnerNotResolved) {
			return false, nil
		}
		return false, err
	}

	until := s.now().Add(SuspensionDuration)
	if err := s.users.Suspend(ctx, userID, until); err != nil {
		return false, err
	}

	if err := s.notifier.PushInApp(ctx, userID,
		models.NotificationTypeAccount,
		"Your account has been suspended",
		fmt.Sprintf("Your account is suspended until %s due to a moderation violation.", until.Format(time.RFC1123)),
		map[string]interface{}{
			"content_type":    contentType,
			"content_id":      contentID,
			"suspended_until": until,
		},
	); err != nil {
		return false, err
	}

	metrics.SanctionsApplied.WithLabelValues("suspend").Inc()
	return true, nil
}

// BanUser навсегда банит владельца контента. Обратного пути
// в этом сервисе нет.
func (s *SanctionService) BanUser(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, moderatorID *uuid.UUID) (bool, error) {
	info, err := s.content.Find(ctx, contentType, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) || errors.Is(err, repository.ErrUnknownContentType) {
			return false, nil
		}
		return false, err
	}
	if info.OwnerID == nil || *info.OwnerID == uuid.Nil {
		return false, nil
	}
	userID := *info.OwnerID

	reason := fmt.Sprintf("Moderation violation related to %s: %s", contentType, info.DisplayTitle())
	bannedAt := s.now()

	if err := s.users.Ban(ctx, userID, reason, bannedAt); err != nil {
		return false, err
	}

	if err := s.notifier.PushInApp(ctx, userID,
		models.NotificationTypeAccount,
		"Your account has been banned",
		reason,
		map[string]interface{}{
			"content_type": contentType,
			"content_id":   contentID,
			"banned_at":    bannedAt,
		},
	); err != nil {
		return false, err
	}

	logger.WithComponent("sanctions").
		WithField("user_id", userID).
		WithField("moderator_id", moderatorID).
		Warn("пользователь забанен")

	metrics.SanctionsApplied.WithLabelValues("ban").Inc()
	return true, nil
}
