package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationAction — решение модератора по записи контента.
type ModerationAction string

const (
	ActionApproved             ModerationAction = "APPROVED"
	ActionRejected             ModerationAction = "REJECTED"
	ActionWarningIssued        ModerationAction = "WARNING_ISSUED"
	ActionContentEdited        ModerationAction = "CONTENT_EDITED"
	ActionUserSuspended        ModerationAction = "USER_SUSPENDED"
	ActionUserBanned           ModerationAction = "USER_BANNED"
	ActionRestrictedVisibility ModerationAction = "RESTRICTED_VISIBILITY"
	ActionNoAction             ModerationAction = "NO_ACTION"
)

// IsValidModerationAction проверяет, входит ли строка в список действий.
func IsValidModerationAction(s string) bool {
	switch ModerationAction(s) {
	case ActionApproved, ActionRejected, ActionWarningIssued, ActionContentEdited,
		ActionUserSuspended, ActionUserBanned, ActionRestrictedVisibility, ActionNoAction:
		return true
	}
	return false
}

// Уровни предупреждений. Санкционный движок всегда выдаёт MODERATE,
// политика эскалации вне зоны ответственности этого сервиса.
const (
	WarningLevelLow      = "LOW"
	WarningLevelModerate = "MODERATE"
	WarningLevelSevere   = "SEVERE"
)

// ModerationItem идентифицирует цель модераторского действия.
// Транзиентная структура: собирается на время запроса и не сохраняется,
// побочные эффекты пишутся в целевой контент и журнал.
type ModerationItem struct {
	ContentType  ContentType       `json:"content_type"`
	ContentID    uuid.UUID         `json:"content_id"`
	Action       ModerationAction  `json:"action"`
	ContentEdits map[string]string `json:"content_edits,omitempty"`
	ModeratorID  *uuid.UUID        `json:"moderator_id,omitempty"`
}

// UserWarning — запись о выданном предупреждении. Append-only аудит.
type UserWarning struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	UserID       uuid.UUID   `db:"user_id" json:"user_id"`
	Reason       string      `db:"reason" json:"reason"`
	WarningLevel string      `db:"warning_level" json:"warning_level"`
	ContentType  ContentType `db:"content_type" json:"content_type"`
	ContentID    uuid.UUID   `db:"content_id" json:"content_id"`
	ModeratorID  *uuid.UUID  `db:"moderator_id" json:"moderator_id,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// ModerationLog — журнальная запись о выполненном действии.
// BatchID группирует записи массовой операции для сводных уведомлений.
type ModerationLog struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	BatchID     *uuid.UUID       `db:"batch_id" json:"batch_id,omitempty"`
	ContentType ContentType      `db:"content_type" json:"content_type"`
	ContentID   uuid.UUID        `db:"content_id" json:"content_id"`
	Action      ModerationAction `db:"action" json:"action"`
	ModeratorID *uuid.UUID       `db:"moderator_id" json:"moderator_id,omitempty"`
	Reason      *string          `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// Evidence — файл-доказательство, приложенный модератором к предупреждению.
type Evidence struct {
	ID        uuid.UUID `db:"id" json:"id"`
	WarningID uuid.UUID `db:"warning_id" json:"warning_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	SizeBytes int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
