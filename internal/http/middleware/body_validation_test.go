package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBodyValidationRouter(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyValidation(maxBytes))
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/items", handler)
	r.GET("/items", handler)
	r.DELETE("/items", handler)
	return r
}

func TestBodyValidation_RejectsNonJSON(t *testing.T) {
	r := newBodyValidationRouter(MaxGeneralBodyBytes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestBodyValidation_AllowsJSONWithCharset(t *testing.T) {
	r := newBodyValidationRouter(MaxGeneralBodyBytes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodyValidation_RejectsMultipartByDefault(t *testing.T) {
	r := newBodyValidationRouter(MaxGeneralBodyBytes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("--x--"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestBodyValidation_RejectsMissingContentType(t *testing.T) {
	r := newBodyValidationRouter(MaxGeneralBodyBytes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestBodyValidation_MultipartAllowedWhenPermitted(t *testing.T) {
	// Вариант для маршрута загрузки доказательств.
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyValidation(MaxGeneralBodyBytes, "multipart/form-data"))
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("--x--"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Разрешение multipart не отключает проверку для прочих типов.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestBodyValidation_RejectsOversizedBody(t *testing.T) {
	r := newBodyValidationRouter(16)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"f":"0123456789abcdef"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestBodyValidation_SkipsReadMethods(t *testing.T) {
	r := newBodyValidationRouter(MaxGeneralBodyBytes)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/items", nil)
		req.Header.Set("Content-Type", "text/plain")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}
