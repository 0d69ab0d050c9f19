package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

func newErrorRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err)
	})
	return r
}

func TestErrorHandler_AppErrorStatus(t *testing.T) {
	r := newErrorRouter(apperror.New(apperror.ErrCodeForbidden, "у вас нет прав на это уведомление"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "у вас нет прав на это уведомление")
}

func TestErrorHandler_WrappedAppError(t *testing.T) {
	cause := errors.New("token is malformed")
	r := newErrorRouter(apperror.Wrap(cause, apperror.ErrCodeUnauthorized, "токен невалиден"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "токен невалиден")
	// Причина остаётся в логах, клиенту не утекает.
	assert.NotContains(t, w.Body.String(), "malformed")
}

func TestErrorHandler_RepositorySentinelNotFound(t *testing.T) {
	r := newErrorRouter(repository.ErrContentNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorHandler_UnknownErrorMasked(t *testing.T) {
	r := newErrorRouter(errors.New("pq: connection refused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "внутренняя ошибка сервера")
	assert.NotContains(t, w.Body.String(), "pq:")
}
