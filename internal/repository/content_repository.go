package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

// ErrContentNotFound возвращается, когда запись контента не найдена.
var ErrContentNotFound = errors.New("content not found")

// ErrUnknownContentType возвращается для вида контента без capability-записи.
var ErrUnknownContentType = errors.New("unknown content type")

// contentCapability описывает, как хранится конкретный вид контента:
// таблица, колонка владельца, колонка заголовка, пара колонок публикации,
// редактируемые поля и колонки видимости. Регистрируется один раз,
// диспетчер и санкционный движок работают через единый lookup вместо
// параллельных switch по видам контента.
type contentCapability struct {
	table           string
	ownerColumn     string // пустая строка: владелец — сам id записи (PROFILE)
	titleColumn     string // пустая строка: заголовка нет (COMMENT, MESSAGE)
	publishColumn   string
	statusColumn    string
	editableColumns map[string]string // ключ правки -> колонка таблицы
	visibilityCols  []string          // колонки, выставляемые при RESTRICTED_VISIBILITY
	sensitiveColumn string            // пустая строка: флага нет (PROFILE)
}

// contentCapabilities — реестр по всем восьми видам контента.
// Вид контента вне реестра молча игнорируется диспетчером:
// задел на будущие виды, а не ошибка.
var contentCapabilities = map[models.ContentType]contentCapability{
	models.ContentTypePost: {
		table:         "posts",
		ownerColumn:   "author_id",
		titleColumn:   "title",
		publishColumn: "published",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"title":   "title",
			"content": "content",
		},
		visibilityCols:  []string{"visibility"},
		sensitiveColumn: "sensitive_content",
	},
	models.ContentTypeComment: {
		table:         "comments",
		ownerColumn:   "author_id",
		publishColumn: "published",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"content": "content",
		},
		visibilityCols:  []string{"visibility"},
		sensitiveColumn: "sensitive_content",
	},
	models.ContentTypeProduct: {
		table:         "products",
		ownerColumn:   "seller_id",
		titleColumn:   "name",
		publishColumn: "is_active",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"name":        "name",
			"description": "description",
		},
		visibilityCols:  []string{"visibility"},
		sensitiveColumn: "sensitive_content",
	},
	models.ContentTypeResource: {
		table:         "resources",
		ownerColumn:   "author_id",
		titleColumn:   "title",
		publishColumn: "published",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"title":       "title",
			"description": "description",
		},
		visibilityCols:  []string{"visibility"},
		sensitiveColumn: "sensitive_content",
	},
	models.ContentTypeGroup: {
		table:         "groups",
		ownerColumn:   "creator_id",
		titleColumn:   "name",
		publishColumn: "is_active",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"name":        "name",
			"description": "description",
		},
		visibilityCols:  []string{"visibility"},
		sensitiveColumn: "sensitive_content",
	},
	models.ContentTypeEvent: {
		table:         "events",
		ownerColumn:   "creator_id",
		titleColumn:   "title",
		publishColumn: "published",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"title":       "title",
			"description": "description",
		},
		visibilityCols:  []string{"visibility"},
		sensitiveColumn: "sensitive_content",
	},
	models.ContentTypeProfile: {
		// Профиль хранится по id пользователя: владелец — сам id записи.
		table:         "profiles",
		titleColumn:   "display_name",
		publishColumn: "is_visible",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"display_name": "display_name",
			"bio":          "bio",
		},
		visibilityCols: []string{"profile_visibility"},
	},
	models.ContentTypeMessage: {
		table:         "messages",
		ownerColumn:   "sender_id",
		publishColumn: "is_visible",
		statusColumn:  "status",
		editableColumns: map[string]string{
			"content": "content",
		},
		visibilityCols:  []string{"visibility"},
		sensitiveColumn: "sensitive_content",
	},
}

// ContentRepository выполняет чтение и модерационные записи по таблицам контента.
// Схема самих таблиц принадлежит основной платформе, здесь только
// модерационные колонки.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository создаёт экземпляр репозитория.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Supports сообщает, зарегистрирован ли вид контента в capability-реестре.
func (r *ContentRepository) Supports(contentType models.ContentType) bool {
	_, ok := contentCapabilities[contentType]
	return ok
}

// Find возвращает минимальные сведения о записи: id, владельца и заголовок.
func (r *ContentRepository) Find(ctx context.Context, contentType models.ContentType, id uuid.UUID) (*models.ContentInfo, error) {
	cap, ok := contentCapabilities[contentType]
	if !ok {
		return nil, ErrUnknownContentType
	}

	ownerExpr := "id"
	if cap.ownerColumn != "" {
		ownerExpr = cap.ownerColumn
	}
	titleExpr := "NULL"
	if cap.titleColumn != "" {
		titleExpr = cap.titleColumn
	}

	query := fmt.Sprintf(
		`SELECT id, %s AS owner_id, %s AS title, created_at FROM %s WHERE id = $1`,
		ownerExpr, titleExpr, cap.table,
	)

	var info models.ContentInfo
	if err := r.db.GetContext(ctx, &info, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("content repository: find %s %w", cap.table, err)
	}

	return &info, nil
}

// SetApproval выставляет пару колонок публикации: флаг и зеркальный статус.
func (r *ContentRepository) SetApproval(ctx context.Context, contentType models.ContentType, id uuid.UUID, approved bool) error {
	cap, ok := contentCapabilities[contentType]
	if !ok {
		return ErrUnknownContentType
	}

	status := models.ContentStatusRejected
	if approved {
		status = models.ContentStatusApproved
	}

	query := fmt.Sprintf(
		`UPDATE %s SET %s = $1, %s = $2, updated_at = NOW() WHERE id = $3`,
		cap.table, cap.publishColumn, cap.statusColumn,
	)
	if _, err := r.db.ExecContext(ctx, query, approved, status, id); err != nil {
		return fmt.Errorf("content repository: set approval %s %w", cap.table, err)
	}

	return nil
}

// ApplyEdits копирует разрешённые для вида контента правки в запись
// и помечает её как отмодерированную. Неизвестные ключи правок отбрасываются.
// Возвращает false, если ни одна правка не прошла whitelist.
func (r *ContentRepository) ApplyEdits(ctx context.Context, contentType models.ContentType, id uuid.UUID, edits map[string]string) (bool, error) {
	cap, ok := contentCapabilities[contentType]
	if !ok {
		return false, ErrUnknownContentType
	}

	var (
		sets []string
		args []interface{}
	)
	for key, value := range edits {
		column, allowed := cap.editableColumns[key]
		if !allowed {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE %s SET %s, moderated = TRUE, updated_at = NOW() WHERE id = $%d`,
		cap.table, strings.Join(sets, ", "), len(args),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("content repository: apply edits %s %w", cap.table, err)
	}

	return true, nil
}

// RestrictVisibility ограничивает видимость записи и, если вид контента
// поддерживает, помечает её как чувствительную.
func (r *ContentRepository) RestrictVisibility(ctx context.Context, contentType models.ContentType, id uuid.UUID) error {
	cap, ok := contentCapabilities[contentType]
	if !ok {
		return ErrUnknownContentType
	}

	var (
		sets []string
		args []interface{}
	)
	for _, column := range cap.visibilityCols {
		args = append(args, models.VisibilityRestricted)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if cap.sensitiveColumn != "" {
		sets = append(sets, cap.sensitiveColumn+" = TRUE")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d`,
		cap.table, strings.Join(sets, ", "), len(args),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("content repository: restrict visibility %s %w", cap.table, err)
	}

	return nil
}
