package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает клиенту понятные сообщения.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		var appErr *apperror.AppError
		if errors.As(err.Err, &appErr) {
			c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
			return
		}

		switch {
		case errors.Is(err.Err, repository.ErrContentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "запись контента не найдена"})
		case errors.Is(err.Err, repository.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "пользователь не найден"})
		case errors.Is(err.Err, repository.ErrReportNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "жалоба не найдена"})
		case errors.Is(err.Err, repository.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "уведомление не найдено"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
		}
	}
}
