package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Потолки размера тела запроса.
const (
	MaxGeneralBodyBytes int64 = 1 << 20    // 1 MB на общих маршрутах модерации
	MaxAIBodyBytes      int64 = 100 * 1024 // 100 KB на маршрутах AI-модерации
)

// BodyValidation проверяет Content-Type и размер тела у изменяющих запросов.
// Принимается только application/json плюс явно перечисленные extraTypes
// (multipart разрешён точечно на маршруте загрузки доказательств).
// Всё остальное, включая отсутствующий Content-Type, отклоняется с 415,
// превышение лимита — с 413. GET/HEAD/DELETE проходят без проверок.
func BodyValidation(maxBytes int64, extraTypes ...string) gin.HandlerFunc {
	allowed := append([]string{"application/json"}, extraTypes...)

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		contentType := strings.ToLower(c.GetHeader("Content-Type"))
		permitted := false
		for _, t := range allowed {
			if strings.HasPrefix(contentType, t) {
				permitted = true
				break
			}
		}
		if !permitted {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "ожидается тело в формате application/json",
			})
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "тело запроса превышает допустимый размер",
			})
			return
		}

		// Content-Length может врать, страхуемся на чтении тела.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()
	}
}
