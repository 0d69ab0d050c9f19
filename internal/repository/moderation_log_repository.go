package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

// ModerationLogRepository отвечает за журнал модераторских действий.
// Записи только добавляются; batch_id группирует массовые операции.
type ModerationLogRepository struct {
	db *sqlx.DB
}

// NewModerationLogRepository создаёт экземпляр репозитория.
func NewModerationLogRepository(db *sqlx.DB) *ModerationLogRepository {
	return &ModerationLogRepository{db: db}
}

// Create добавляет журнальную запись о выполненном действии.
func (r *ModerationLogRepository) Create(ctx context.Context, entry *models.ModerationLog) error {
	query := `
		INSERT INTO moderation_log (batch_id, content_type, content_id, action, moderator_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		entry.BatchID, entry.ContentType, entry.ContentID,
		entry.Action, entry.ModeratorID, entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("moderation log repository: create %w", err)
	}

	return nil
}

// ListByBatch возвращает записи массовой операции с указанным действием.
func (r *ModerationLogRepository) ListByBatch(ctx context.Context, batchID uuid.UUID, action models.ModerationAction) ([]models.ModerationLog, error) {
	query := `
		SELECT * FROM moderation_log
		WHERE batch_id = $1 AND action = $2
		ORDER BY created_at
	`
	var entries []models.ModerationLog
	if err := r.db.SelectContext(ctx, &entries, query, batchID, action); err != nil {
		return nil, fmt.Errorf("moderation log repository: list by batch %w", err)
	}

	return entries, nil
}

// List возвращает журнал действий с пагинацией, новые записи первыми.
func (r *ModerationLogRepository) List(ctx context.Context, limit, offset int) ([]models.ModerationLog, error) {
	query := `
		SELECT * FROM moderation_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	var entries []models.ModerationLog
	if err := r.db.SelectContext(ctx, &entries, query, limit, offset); err != nil {
		return nil, fmt.Errorf("moderation log repository: list %w", err)
	}

	return entries, nil
}

// ActionCount содержит количество действий одного типа за период.
type ActionCount struct {
	Action models.ModerationAction `db:"action" json:"action"`
	Count  int                     `db:"count" json:"count"`
}

// CountByActionSince возвращает распределение действий с указанного момента.
// Используется аналитикой панели модерации.
func (r *ModerationLogRepository) CountByActionSince(ctx context.Context, since time.Time) ([]ActionCount, error) {
	query := `
		SELECT action, COUNT(*) AS count
		FROM moderation_log
		WHERE created_at >= $1
		GROUP BY action
		ORDER BY count DESC
	`
	var counts []ActionCount
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, fmt.Errorf("moderation log repository: count by action %w", err)
	}

	return counts, nil
}
