package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/http/handlers/common"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// ReportHandler — HTTP слой очереди жалоб: подача жалоб пользователями
// и их разбор модераторами.
type ReportHandler struct {
	reports  *service.ReportService
	notifier *service.NotifierService
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(reports *service.ReportService, notifier *service.NotifierService) *ReportHandler {
	return &ReportHandler{reports: reports, notifier: notifier}
}

// CreateReport обрабатывает POST /api/moderation/reports.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	reporterID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		ContentType string    `json:"content_type" binding:"required"`
		ContentID   uuid.UUID `json:"content_id" binding:"required"`
		Reason      string    `json:"reason" binding:"required"`
		Description *string   `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reports.CreateReport(c.Request.Context(),
		reporterID, req.ContentType, req.ContentID, req.Reason, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReportTarget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестный вид контента"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListMyReports обрабатывает GET /api/moderation/reports — жалобы,
// поданные текущим пользователем.
func (h *ReportHandler) ListMyReports(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	limit, offset := common.GetPagination(c)

	reports, err := h.reports.ListMyReports(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// ListPending обрабатывает GET /api/admin/moderation/reports — очередь
// нерассмотренных жалоб.
func (h *ReportHandler) ListPending(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	reports, err := h.reports.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReport обрабатывает GET /api/admin/moderation/reports/:id.
func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "жалоба не найдена"})
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ResolveReport обрабатывает POST /api/admin/moderation/reports/:id/resolve —
// применяет модераторское действие к цели жалобы и закрывает её.
func (h *ReportHandler) ResolveReport(c *gin.Context) {
	moderatorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Action       string            `json:"action" binding:"required"`
		ContentEdits map[string]string `json:"content_edits"`
		Reason       string            `json:"reason"`
		NotifyAuthor bool              `json:"notify_author"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidModerationAction(req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестное действие модерации"})
		return
	}
	action := models.ModerationAction(req.Action)

	report, err := h.reports.ResolveReport(c.Request.Context(), reportID, action, req.ContentEdits, moderatorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReportNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "жалоба не найдена"})
		case errors.Is(err, service.ErrReportAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "жалоба уже рассмотрена"})
		default:
			_ = c.Error(err)
		}
		return
	}

	response := gin.H{"report": report}

	if req.NotifyAuthor && action != models.ActionNoAction {
		delivery, err := h.notifier.NotifyAuthor(c.Request.Context(),
			report.ContentType, report.ContentID, action, &moderatorID, req.Reason, nil)
		if err != nil {
			_ = c.Error(err)
			return
		}
		response["author_notified"] = delivery != nil
		response["delivery"] = delivery
	}

	c.JSON(http.StatusOK, response)
}
