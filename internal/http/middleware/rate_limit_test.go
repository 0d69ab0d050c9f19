package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func newRateLimitRouter(store limiter.Store, namespace string, limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/"+namespace, RateLimitMiddleware(store, namespace, limit, 10*time.Second), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, path, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_EnforcesLimit(t *testing.T) {
	r := newRateLimitRouter(memory.NewStore(), "general", 3)

	for i := 0; i < 3; i++ {
		w := doRequest(r, "/general", "192.0.2.1:1234")
		assert.Equal(t, http.StatusOK, w.Code, "запрос %d", i+1)
	}

	w := doRequest(r, "/general", "192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_SeparateCountersPerIP(t *testing.T) {
	r := newRateLimitRouter(memory.NewStore(), "general", 1)

	assert.Equal(t, http.StatusOK, doRequest(r, "/general", "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "/general", "192.0.2.1:1234").Code)

	// Другой клиент не задет чужим лимитом.
	assert.Equal(t, http.StatusOK, doRequest(r, "/general", "192.0.2.2:1234").Code)
}

func TestRateLimit_NamespacesIsolated(t *testing.T) {
	store := memory.NewStore()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/general", RateLimitMiddleware(store, "general", 1, 10*time.Second), ok)
	r.GET("/ai", RateLimitMiddleware(store, "ai", 1, 10*time.Second), ok)

	assert.Equal(t, http.StatusOK, doRequest(r, "/general", "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "/general", "192.0.2.1:1234").Code)

	// Исчерпанный общий лимит не влияет на AI-неймспейс того же IP.
	assert.Equal(t, http.StatusOK, doRequest(r, "/ai", "192.0.2.1:1234").Code)
}

func TestRateLimit_WindowElapses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/general", RateLimitMiddleware(memory.NewStore(), "general", 2, 100*time.Millisecond), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, doRequest(r, "/general", "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "/general", "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "/general", "192.0.2.1:1234").Code)

	// По истечении окна счётчик обнуляется, клиент снова обслуживается.
	time.Sleep(150 * time.Millisecond)

	w := doRequest(r, "/general", "192.0.2.1:1234")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_HeadersOnSuccess(t *testing.T) {
	r := newRateLimitRouter(memory.NewStore(), "general", 5)

	w := doRequest(r, "/general", "192.0.2.1:1234")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}
