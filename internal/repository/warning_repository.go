package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

// ErrWarningNotFound возвращается, когда предупреждение не найдено.
var ErrWarningNotFound = errors.New("warning not found")

// WarningRepository отвечает за append-only журнал предупреждений
// и приложенные к ним доказательства.
type WarningRepository struct {
	db *sqlx.DB
}

// NewWarningRepository создаёт экземпляр репозитория.
func NewWarningRepository(db *sqlx.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

// Create создаёт запись предупреждения. Записи не изменяются и не удаляются.
func (r *WarningRepository) Create(ctx context.Context, warning *models.UserWarning) error {
	query := `
		INSERT INTO user_warnings (user_id, reason, warning_level, content_type, content_id, moderator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		warning.UserID, warning.Reason, warning.WarningLevel,
		warning.ContentType, warning.ContentID, warning.ModeratorID,
	).Scan(&warning.ID, &warning.CreatedAt); err != nil {
		return fmt.Errorf("warning repository: create %w", err)
	}

	return nil
}

// GetByID возвращает предупреждение по идентификатору.
func (r *WarningRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserWarning, error) {
	var warning models.UserWarning
	if err := r.db.GetContext(ctx, &warning, `SELECT * FROM user_warnings WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWarningNotFound
		}
		return nil, fmt.Errorf("warning repository: get by id %w", err)
	}

	return &warning, nil
}

// ListByUser возвращает предупреждения пользователя с пагинацией.
func (r *WarningRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserWarning, error) {
	query := `
		SELECT * FROM user_warnings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var warnings []models.UserWarning
	if err := r.db.SelectContext(ctx, &warnings, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("warning repository: list by user %w", err)
	}

	return warnings, nil
}

// CountByUser возвращает количество предупреждений пользователя.
func (r *WarningRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM user_warnings WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("warning repository: count by user %w", err)
	}

	return count, nil
}

// AttachEvidence сохраняет метаданные файла-доказательства для предупреждения.
func (r *WarningRepository) AttachEvidence(ctx context.Context, evidence *models.Evidence) error {
	query := `
		INSERT INTO warning_evidence (warning_id, file_name, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		evidence.WarningID, evidence.FileName, evidence.MimeType, evidence.SizeBytes,
	).Scan(&evidence.ID, &evidence.CreatedAt); err != nil {
		return fmt.Errorf("warning repository: attach evidence %w", err)
	}

	return nil
}

// ListEvidence возвращает доказательства, приложенные к предупреждению.
func (r *WarningRepository) ListEvidence(ctx context.Context, warningID uuid.UUID) ([]models.Evidence, error) {
	var evidence []models.Evidence
	query := `SELECT * FROM warning_evidence WHERE warning_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &evidence, query, warningID); err != nil {
		return nil, fmt.Errorf("warning repository: list evidence %w", err)
	}

	return evidence, nil
}
