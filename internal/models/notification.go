package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений, которые создаёт сервис рассылки.
const (
	NotificationTypeWarning    = "WARNING"
	NotificationTypeAccount    = "ACCOUNT"
	NotificationTypeModeration = "MODERATION"
)

// Notification — внутриплатформенное уведомление пользователю.
// После создания меняется только флаг is_read (UI прочтения).
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      string          `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Message   string          `db:"message" json:"message"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationPreferences — настройки доставки уведомлений пользователя.
// Читаются сервисом рассылки, изменяются настройками пользователя (вне зоны сервиса).
type NotificationPreferences struct {
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Email        bool      `db:"email" json:"email"`
	InApp        bool      `db:"in_app" json:"in_app"`
	BatchSummary bool      `db:"batch_summary" json:"batch_summary"`
}

// DefaultNotificationPreferences возвращает настройки по умолчанию
// для пользователя без сохранённой записи: email и in-app включены,
// сводные уведомления выключены.
func DefaultNotificationPreferences(userID uuid.UUID) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:       userID,
		Email:        true,
		InApp:        true,
		BatchSummary: false,
	}
}
