package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go-interview-scheduler/internal/delivery/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type countingWindow struct {
	mu   sync.Mutex
	hits map[string]int64
	err  error
}

func (w *countingWindow) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if w.err != nil {
		return 0, 0, w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hits == nil {
		w.hits = make(map[string]int64)
	}
	w.hits[key]++
	return w.hits[key], window, nil
}

func limitedRouter(cfg middleware.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RateLimitMiddleware(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("rejects past the limit per key", func(t *testing.T) {
		counter := &countingWindow{}
		cfg := middleware.GlobalRateLimitConfig(2, time.Minute)
		cfg.Counter = counter
		r := limitedRouter(cfg)

		assert.Equal(t, http.StatusNoContent, get(r, "10.0.0.1").Code)
		w := get(r, "10.0.0.1")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		w = get(r, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))

		// Another client has its own window
		assert.Equal(t, http.StatusNoContent, get(r, "10.0.0.2").Code)
		assert.Equal(t, int64(3), counter.hits["rl:ip:10.0.0.1"])
	})

	t.Run("counter failure lets requests through", func(t *testing.T) {
		cfg := middleware.GlobalRateLimitConfig(1, time.Minute)
		cfg.Counter = &countingWindow{err: errors.New("i/o timeout")}
		r := limitedRouter(cfg)

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusNoContent, get(r, "10.0.0.1").Code)
		}
	})

	t.Run("no redis configured", func(t *testing.T) {
		r := limitedRouter(middleware.GlobalRateLimitConfig(1, time.Minute))

		for i := 0; i < 3; i++ {
			w := get(r, "10.0.0.1")
			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
		}
	})
}
