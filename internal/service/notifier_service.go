package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/mail"
	"github.com/ignatzorin/moderation-backend/internal/metrics"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// DeliveryOutcome — явный исход доставки по каналу. Вместо проглоченных
// ошибок вызывающий получает Delivered/Skipped/Failed и может на них
// ассертить в тестах.
type DeliveryOutcome string

const (
	OutcomeDelivered DeliveryOutcome = "DELIVERED"
	OutcomeSkipped   DeliveryOutcome = "SKIPPED"
	OutcomeFailed    DeliveryOutcome = "FAILED"
)

// ChannelResult — исход доставки по одному каналу.
type ChannelResult struct {
	Channel string          `json:"channel"`
	Outcome DeliveryOutcome `json:"outcome"`
	Reason  string          `json:"reason,omitempty"`
}

// DeliveryReport — итог уведомления одного получателя по обоим каналам.
type DeliveryReport struct {
	UserID   uuid.UUID       `json:"user_id"`
	Channels []ChannelResult `json:"channels"`
}

// BatchNotifyResult — количества уникальных получателей сводной рассылки.
type BatchNotifyResult struct {
	Authors int `json:"authors"`
	Admins  int `json:"admins"`
}

// NotifierUserRepository описывает чтение пользователей для рассылки.
type NotifierUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListModerators(ctx context.Context, except *uuid.UUID) ([]models.User, error)
}

// NotificationStore описывает создание уведомлений и чтение настроек доставки.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreferences, error)
}

// BatchLogReader описывает выборку журнала массовой операции.
type BatchLogReader interface {
	ListByBatch(ctx context.Context, batchID uuid.UUID, action models.ModerationAction) ([]models.ModerationLog, error)
}

// Pusher доставляет сообщение подключённому пользователю в реальном времени.
type Pusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// NotifierService рассылает итоги модерации авторам контента и пулу
// модераторов, соблюдая настройки доставки каждого получателя.
// Email — fire-and-forget: сбой канала логируется и попадает в отчёт,
// но не роняет модерационное действие.
type NotifierService struct {
	content       ContentReader
	users         NotifierUserRepository
	notifications NotificationStore
	batchLog      BatchLogReader
	mailer        mail.Sender
	pusher        Pusher
}

// NewNotifierService создаёт сервис рассылки. pusher может быть nil,
// тогда realtime-канал просто не используется.
func NewNotifierService(content ContentReader, users NotifierUserRepository, notifications NotificationStore, batchLog BatchLogReader, mailer mail.Sender, pusher Pusher) *NotifierService {
	return &NotifierService{
		content:       content,
		users:         users,
		notifications: notifications,
		batchLog:      batchLog,
		mailer:        mailer,
		pusher:        pusher,
	}
}

// PushInApp создаёт внутриплатформенное уведомление и пушит его по WebSocket.
// Используется санкционным движком напрямую, минуя проверку настроек:
// уведомления о санкциях обязательны.
func (s *NotifierService) PushInApp(ctx context.Context, userID uuid.UUID, ntype, title, message string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("notifier: не удалось сериализовать данные уведомления: %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Data:    raw,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}

	if s.pusher != nil {
		if err := s.pusher.BroadcastToUser(userID, "notification", notification); err != nil {
			logger.WithComponent("notifier").WithField("user_id", userID).
				WithError(err).Warn("не удалось отправить realtime-уведомление")
		}
	}

	metrics.NotificationsSent.WithLabelValues("in_app", string(OutcomeDelivered)).Inc()
	return nil
}

// NotifyAuthor уведомляет автора записи контента об итоге модерации.
// Возвращает nil отчёт без ошибки, если запись или автор не найдены
// (мягкий сбой: пакетные операции продолжаются).
func (s *NotifierService) NotifyAuthor(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, action models.ModerationAction, moderatorID *uuid.UUID, reason string, batchID *uuid.UUID) (*DeliveryReport, error) {
	info, err := s.content.Find(ctx, contentType, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) || errors.Is(err, repository.ErrUnknownContentType) {
			return nil, nil
		}
		return nil, err
	}
	if info.OwnerID == nil || *info.OwnerID == uuid.Nil {
		return nil, nil
	}

	author, err := s.users.GetByID(ctx, *info.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	title := "Moderation update"
	message := fmt.Sprintf("Your %s %q has been %s.",
		strings.ToLower(string(contentType)), info.DisplayTitle(), actionPhrase(action))
	if reason != "" {
		message += " Reason: " + reason
	}

	data := map[string]interface{}{
		"content_type": contentType,
		"content_id":   contentID,
		"action":       action,
	}
	if batchID != nil {
		data["batch_id"] = *batchID
	}

	return s.deliver(ctx, author, models.NotificationTypeModeration, title, message, data)
}

// NotifyAdministrators уведомляет всех администраторов и модераторов,
// кроме действующего, о выполненном действии. Возвращает количество
// получателей, у которых включён хотя бы один канал доставки.
func (s *NotifierService) NotifyAdministrators(ctx context.Context, contentType models.ContentType, contentID uuid.UUID, action models.ModerationAction, moderatorID *uuid.UUID, reason string, batchID *uuid.UUID) (int, error) {
	admins, err := s.users.ListModerators(ctx, moderatorID)
	if err != nil {
		return 0, err
	}

	title := "Moderation action performed"
	message := fmt.Sprintf("A %s (%s) has been %s.",
		strings.ToLower(string(contentType)), contentID, actionPhrase(action))
	if reason != "" {
		message += " Reason: " + reason
	}

	data := map[string]interface{}{
		"content_type": contentType,
		"content_id":   contentID,
		"action":       action,
	}
	if batchID != nil {
		data["batch_id"] = *batchID
	}

	notified := 0
	for i := range admins {
		report, err := s.deliver(ctx, &admins[i], models.NotificationTypeModeration, title, message, data)
		if err != nil {
			return notified, err
		}
		if reportHasEnabledChannel(report) {
			notified++
		}
	}

	return notified, nil
}

// SendBatchModerationNotifications рассылает итоги массовой операции.
// Ресурсы группируются строго по автору: авторы со включённой сводкой
// получают одно агрегированное сообщение, остальные — по сообщению на
// каждый ресурс. Администраторы в пакетном пути всегда получают сводку.
// Возвращаются количества уникальных авторов и администраторов.
func (s *NotifierService) SendBatchModerationNotifications(ctx context.Context, batchID uuid.UUID, action models.ModerationAction, moderatorID *uuid.UUID, reason string) (*BatchNotifyResult, error) {
	entries, err := s.batchLog.ListByBatch(ctx, batchID, action)
	if err != nil {
		return nil, err
	}

	type resourceRef struct {
		contentType models.ContentType
		contentID   uuid.UUID
		title       string
	}

	// Группировка ресурсов пакета по владельцу. Нерезолвленные записи
	// пропускаются: пакет продолжает обрабатываться.
	byAuthor := make(map[uuid.UUID][]resourceRef)
	totalByType := make(map[models.ContentType]int)
	total := 0

	for _, entry := range entries {
		info, err := s.content.Find(ctx, entry.ContentType, entry.ContentID)
		if err != nil {
			if errors.Is(err, repository.ErrContentNotFound) || errors.Is(err, repository.ErrUnknownContentType) {
				continue
			}
			return nil, err
		}
		if info.OwnerID == nil || *info.OwnerID == uuid.Nil {
			continue
		}

		byAuthor[*info.OwnerID] = append(byAuthor[*info.OwnerID], resourceRef{
			contentType: entry.ContentType,
			contentID:   entry.ContentID,
			title:       info.DisplayTitle(),
		})
		totalByType[entry.ContentType]++
		total++
	}

	result := &BatchNotifyResult{}

	// Пустой или полностью нерезолвленный пакет не рассылается никому.
	if total == 0 {
		return result, nil
	}

	for authorID, resources := range byAuthor {
		author, err := s.users.GetByID(ctx, authorID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}
			return nil, err
		}

		prefs, err := s.notifications.GetPreferences(ctx, authorID)
		if err != nil {
			return nil, err
		}

		if !prefs.BatchSummary {
			// Сводка выключена: по отдельному уведомлению на каждый ресурс.
			authorCounted := false
			for _, res := range resources {
				report, err := s.NotifyAuthor(ctx, res.contentType, res.contentID, action, moderatorID, reason, &batchID)
				if err != nil {
					return nil, err
				}
				if report != nil {
					authorCounted = true
				}
			}
			if authorCounted {
				result.Authors++
			}
			continue
		}

		countsByType := make(map[models.ContentType]int)
		for _, res := range resources {
			countsByType[res.contentType]++
		}

		message := fmt.Sprintf("%d of your resources (%s) have been %s.",
			len(resources), summarizeCounts(countsByType), actionPhrase(action))
		if reason != "" {
			message += " Reason: " + reason
		}

		if _, err := s.deliver(ctx, author, models.NotificationTypeModeration,
			"Moderation summary", message, map[string]interface{}{
				"batch_id": batchID,
				"action":   action,
				"count":    len(resources),
			}); err != nil {
			return nil, err
		}
		result.Authors++
	}

	// Администраторы получают одну сводку по всему пакету,
	// без попозиционного варианта.
	admins, err := s.users.ListModerators(ctx, moderatorID)
	if err != nil {
		return nil, err
	}

	adminMessage := fmt.Sprintf("%d resources (%s) have been %s in a bulk moderation operation.",
		total, summarizeCounts(totalByType), actionPhrase(action))
	if reason != "" {
		adminMessage += " Reason: " + reason
	}

	for i := range admins {
		report, err := s.deliver(ctx, &admins[i], models.NotificationTypeModeration,
			"Bulk moderation summary", adminMessage, map[string]interface{}{
				"batch_id": batchID,
				"action":   action,
				"count":    total,
			})
		if err != nil {
			return nil, err
		}
		if reportHasEnabledChannel(report) {
			result.Admins++
		}
	}

	return result, nil
}

// deliver оценивает каналы получателя независимо друг от друга:
// in-app запись при включённом in_app, письмо при включённом email
// и известном адресе. Сбой email не прерывает доставку.
func (s *NotifierService) deliver(ctx context.Context, user *models.User, ntype, title, message string, data interface{}) (*DeliveryReport, error) {
	prefs, err := s.notifications.GetPreferences(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	report := &DeliveryReport{UserID: user.ID}

	if prefs.InApp {
		if err := s.PushInApp(ctx, user.ID, ntype, title, message, data); err != nil {
			return nil, err
		}
		report.Channels = append(report.Channels, ChannelResult{Channel: "in_app", Outcome: OutcomeDelivered})
	} else {
		report.Channels = append(report.Channels, ChannelResult{Channel: "in_app", Outcome: OutcomeSkipped, Reason: "disabled by preferences"})
	}

	switch {
	case !prefs.Email:
		report.Channels = append(report.Channels, ChannelResult{Channel: "email", Outcome: OutcomeSkipped, Reason: "disabled by preferences"})
	case user.Email == "":
		report.Channels = append(report.Channels, ChannelResult{Channel: "email", Outcome: OutcomeSkipped, Reason: "no email address"})
	default:
		if err := s.mailer.Send(ctx, user.Email, title, renderEmailBody(title, message)); err != nil {
			logger.WithComponent("notifier").WithField("user_id", user.ID).
				WithError(err).Error("не удалось отправить email")
			metrics.NotificationsSent.WithLabelValues("email", string(OutcomeFailed)).Inc()
			report.Channels = append(report.Channels, ChannelResult{Channel: "email", Outcome: OutcomeFailed, Reason: err.Error()})
		} else {
			metrics.NotificationsSent.WithLabelValues("email", string(OutcomeDelivered)).Inc()
			report.Channels = append(report.Channels, ChannelResult{Channel: "email", Outcome: OutcomeDelivered})
		}
	}

	return report, nil
}

// reportHasEnabledChannel сообщает, был ли у получателя включён хотя бы
// один канал. Учитывается оценка настроек, а не подтверждённая доставка.
func reportHasEnabledChannel(report *DeliveryReport) bool {
	if report == nil {
		return false
	}
	for _, ch := range report.Channels {
		if ch.Outcome != OutcomeSkipped {
			return true
		}
	}
	return false
}

// actionPhrase переводит действие в глагольную форму для текста уведомления.
func actionPhrase(action models.ModerationAction) string {
	switch action {
	case models.ActionApproved:
		return "approved"
	case models.ActionRejected:
		return "rejected"
	case models.ActionContentEdited:
		return "edited by a moderator"
	case models.ActionRestrictedVisibility:
		return "restricted in visibility"
	case models.ActionWarningIssued:
		return "flagged with a warning"
	case models.ActionUserSuspended:
		return "linked to an account suspension"
	case models.ActionUserBanned:
		return "linked to an account ban"
	default:
		return "reviewed"
	}
}

// summarizeCounts форматирует распределение по видам контента:
// "2 posts, 1 event". Порядок стабильный для воспроизводимости текста.
func summarizeCounts(counts map[models.ContentType]int) string {
	types := make([]string, 0, len(counts))
	for ct := range counts {
		types = append(types, string(ct))
	}
	sort.Strings(types)

	parts := make([]string, 0, len(types))
	for _, ct := range types {
		n := counts[models.ContentType(ct)]
		name := strings.ToLower(ct)
		if n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	return strings.Join(parts, ", ")
}

// renderEmailBody собирает простое HTML письмо.
func renderEmailBody(title, message string) string {
	return fmt.Sprintf(
		"<html><body><h2>%s</h2><p>%s</p><p>— Moderation team</p></body></html>",
		title, message,
	)
}
