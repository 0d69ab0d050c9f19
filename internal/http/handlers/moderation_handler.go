package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/http/handlers/common"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/service"
	"github.com/ignatzorin/moderation-backend/internal/storage"
	"github.com/ignatzorin/moderation-backend/internal/validation"
)

// ModerationHandler — HTTP слой панели модерации: выполнение действий,
// массовые операции, журнал, предупреждения и доказательства.
type ModerationHandler struct {
	dispatcher *service.ModerationService
	notifier   *service.NotifierService
	logs       *repository.ModerationLogRepository
	warnings   *repository.WarningRepository
	evidence   *storage.EvidenceStorage
	flags      *service.FeatureFlags
}

// NewModerationHandler создаёт хэндлер.
func NewModerationHandler(
	dispatcher *service.ModerationService,
	notifier *service.NotifierService,
	logs *repository.ModerationLogRepository,
	warnings *repository.WarningRepository,
	evidence *storage.EvidenceStorage,
	flags *service.FeatureFlags,
) *ModerationHandler {
	return &ModerationHandler{
		dispatcher: dispatcher,
		notifier:   notifier,
		logs:       logs,
		warnings:   warnings,
		evidence:   evidence,
		flags:      flags,
	}
}

type performActionRequest struct {
	ContentType  string            `json:"content_type" binding:"required"`
	ContentID    uuid.UUID         `json:"content_id" binding:"required"`
	Action       string            `json:"action" binding:"required"`
	ContentEdits map[string]string `json:"content_edits"`
	Reason       string            `json:"reason"`
	Notify       bool              `json:"notify"`
}

// PerformAction обрабатывает POST /api/admin/moderation/actions.
// Применяет решение модератора и, по запросу, рассылает уведомления
// автору и пулу модераторов.
func (h *ModerationHandler) PerformAction(c *gin.Context) {
	moderatorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req performActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidModerationAction(req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестное действие модерации"})
		return
	}
	action := models.ModerationAction(req.Action)

	if action == models.ActionContentEdited {
		if err := validation.ValidateContentEdits(req.ContentEdits); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Reason != "" {
		if err := validation.ValidateLength("причина", req.Reason, 0, validation.MaxReasonLength); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	item := models.ModerationItem{
		ContentType:  models.ContentType(req.ContentType),
		ContentID:    req.ContentID,
		Action:       action,
		ContentEdits: req.ContentEdits,
		ModeratorID:  &moderatorID,
	}

	if err := h.dispatcher.PerformModeratorAction(c.Request.Context(), item); err != nil {
		_ = c.Error(err)
		return
	}

	response := gin.H{"status": "performed"}

	if req.Notify && action != models.ActionNoAction {
		report, err := h.notifier.NotifyAuthor(c.Request.Context(),
			item.ContentType, item.ContentID, action, &moderatorID, req.Reason, nil)
		if err != nil {
			_ = c.Error(err)
			return
		}

		admins, err := h.notifier.NotifyAdministrators(c.Request.Context(),
			item.ContentType, item.ContentID, action, &moderatorID, req.Reason, nil)
		if err != nil {
			_ = c.Error(err)
			return
		}

		response["author_notified"] = report != nil
		response["delivery"] = report
		response["admins_notified"] = admins
	}

	c.JSON(http.StatusOK, response)
}

type batchActionRequest struct {
	Action string `json:"action" binding:"required"`
	Items  []struct {
		ContentType string    `json:"content_type" binding:"required"`
		ContentID   uuid.UUID `json:"content_id" binding:"required"`
	} `json:"items" binding:"required,min=1"`
	Reason string `json:"reason"`
	Notify bool   `json:"notify"`
}

// PerformBatch обрабатывает POST /api/admin/moderation/actions/batch.
// Применяет одно действие к набору целей под общим batch_id и, по запросу,
// запускает сводную рассылку.
func (h *ModerationHandler) PerformBatch(c *gin.Context) {
	moderatorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req batchActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidModerationAction(req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестное действие модерации"})
		return
	}
	action := models.ModerationAction(req.Action)

	// Массовые правки контента не поддерживаются: правки индивидуальны.
	if action == models.ActionContentEdited {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CONTENT_EDITED недоступно в массовой операции"})
		return
	}

	batchID := uuid.New()
	items := make([]models.ModerationItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.ModerationItem{
			ContentType: models.ContentType(it.ContentType),
			ContentID:   it.ContentID,
			Action:      action,
			ModeratorID: &moderatorID,
		})
	}

	if err := h.dispatcher.PerformBatch(c.Request.Context(), items, batchID); err != nil {
		_ = c.Error(err)
		return
	}

	response := gin.H{
		"batch_id": batchID,
		"status":   "performed",
	}

	if req.Notify {
		result, err := h.notifier.SendBatchModerationNotifications(
			c.Request.Context(), batchID, action, &moderatorID, req.Reason)
		if err != nil {
			_ = c.Error(err)
			return
		}
		response["notified"] = result
	}

	c.JSON(http.StatusOK, response)
}

// GetContent обрабатывает GET /api/admin/moderation/content/:type/:id —
// карточка записи контента для панели модератора.
func (h *ModerationHandler) GetContent(c *gin.Context) {
	contentType := c.Param("type")
	if !models.IsValidContentType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестный вид контента"})
		return
	}

	contentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.dispatcher.ResolveContent(c.Request.Context(), models.ContentType(contentType), contentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "запись контента не найдена"})
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListLog обрабатывает GET /api/admin/moderation/log.
func (h *ModerationHandler) ListLog(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	entries, err := h.logs.List(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Analytics обрабатывает GET /api/admin/moderation/analytics —
// распределение действий за период. Доступно только при включённом флаге.
func (h *ModerationHandler) Analytics(c *gin.Context) {
	if !h.flags.Enabled(service.FlagAnalytics, true) {
		c.JSON(http.StatusNotFound, gin.H{"error": "аналитика отключена"})
		return
	}

	hours := common.ParseIntQuery(c, "hours", 24)
	if hours < 1 || hours > 24*90 {
		hours = 24
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	counts, err := h.logs.CountByActionSince(c.Request.Context(), since)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"since":  since,
		"counts": counts,
	})
}

// ListUserWarnings обрабатывает GET /api/admin/moderation/users/:id/warnings.
func (h *ModerationHandler) ListUserWarnings(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, offset := common.GetPagination(c)

	warnings, err := h.warnings.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	total, err := h.warnings.CountByUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"warnings": warnings,
		"total":    total,
	})
}

// UploadEvidence обрабатывает POST /api/admin/moderation/warnings/:id/evidence —
// прикрепление файла-доказательства к предупреждению.
func (h *ModerationHandler) UploadEvidence(c *gin.Context) {
	warningID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.warnings.GetByID(c.Request.Context(), warningID); err != nil {
		if errors.Is(err, repository.ErrWarningNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "предупреждение не найдено"})
			return
		}
		_ = c.Error(err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле file обязательно"})
		return
	}
	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл не может быть пустым"})
		return
	}

	src, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer src.Close()

	saved, err := h.evidence.Save(c.Request.Context(), warningID, file.Filename, src)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEvidenceTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "файл превышает допустимый размер"})
		case errors.Is(err, storage.ErrEvidenceUnknownType), errors.Is(err, storage.ErrEvidenceBadType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "недопустимый тип файла, разрешены изображения и PDF"})
		default:
			_ = c.Error(err)
		}
		return
	}

	evidence := &models.Evidence{
		WarningID: warningID,
		FileName:  saved.RelativePath,
		MimeType:  saved.MimeType,
		SizeBytes: saved.Size,
	}
	if err := h.warnings.AttachEvidence(c.Request.Context(), evidence); err != nil {
		// Файл уже на диске, запись не создана: убираем осиротевший файл.
		_ = h.evidence.Delete(c.Request.Context(), saved.RelativePath)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, evidence)
}

// ListEvidence обрабатывает GET /api/admin/moderation/warnings/:id/evidence.
func (h *ModerationHandler) ListEvidence(c *gin.Context) {
	warningID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evidence, err := h.warnings.ListEvidence(c.Request.Context(), warningID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"evidence": evidence})
}
