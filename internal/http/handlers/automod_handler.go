package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/moderation-backend/internal/service"
)

// AutomodHandler — HTTP слой автоматической предпроверки текста.
type AutomodHandler struct {
	automod *service.AutomodService
}

// NewAutomodHandler создаёт хэндлер.
func NewAutomodHandler(automod *service.AutomodService) *AutomodHandler {
	return &AutomodHandler{automod: automod}
}

// Analyze обрабатывает POST /api/admin/moderation/ai/analyze.
// Возвращает рекомендуемое действие по тексту; решение остаётся
// за модератором.
func (h *AutomodHandler) Analyze(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict, err := h.automod.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}
