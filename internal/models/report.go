package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы жалобы.
const (
	ReportStatusPending     = "pending"
	ReportStatusReviewed    = "reviewed"
	ReportStatusActionTaken = "action_taken"
	ReportStatusDismissed   = "dismissed"
)

// Report — жалоба пользователя на запись контента.
// Очередь жалоб — входная точка работы модераторов: разрешение жалобы
// вызывает диспетчер модераторских действий.
type Report struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	ReporterID  uuid.UUID   `db:"reporter_id" json:"reporter_id"`
	ContentType ContentType `db:"content_type" json:"content_type"`
	ContentID   uuid.UUID   `db:"content_id" json:"content_id"`
	Reason      string      `db:"reason" json:"reason"`
	Description *string     `db:"description" json:"description,omitempty"`
	Status      string      `db:"status" json:"status"`
	ReviewedBy  *uuid.UUID  `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}
