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

// ErrReportNotFound возвращается, когда жалоба не найдена.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository отвечает за очередь жалоб пользователей.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт экземпляр репозитория.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create сохраняет новую жалобу со статусом pending.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (reporter_id, content_type, content_id, reason, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	report.Status = models.ReportStatusPending
	if err := r.db.QueryRowxContext(
		ctx, query,
		report.ReporterID, report.ContentType, report.ContentID,
		report.Reason, report.Description, report.Status,
	).Scan(&report.ID, &report.CreatedAt); err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}

	return nil
}

// GetByID возвращает жалобу по идентификатору.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}

	return &report, nil
}

// ListPending возвращает нерассмотренные жалобы, старые первыми.
func (r *ReportRepository) ListPending(ctx context.Context, limit, offset int) ([]models.Report, error) {
	query := `
		SELECT * FROM reports
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, models.ReportStatusPending, limit, offset); err != nil {
		return nil, fmt.Errorf("report repository: list pending %w", err)
	}

	return reports, nil
}

// ListByReporter возвращает жалобы, поданные пользователем.
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error) {
	query := `
		SELECT * FROM reports
		WHERE reporter_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, reporterID, limit, offset); err != nil {
		return nil, fmt.Errorf("report repository: list by reporter %w", err)
	}

	return reports, nil
}

// Resolve помечает жалобу рассмотренной с указанным итоговым статусом.
func (r *ReportRepository) Resolve(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = $1, reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $3
	`, status, reviewedBy, id)
	if err != nil {
		return fmt.Errorf("report repository: resolve %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: resolve rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrReportNotFound
	}

	return nil
}
