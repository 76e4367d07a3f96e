package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"grandaura/internal/pkg/cache"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/middleware"
)

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	limited := middleware.RateLimiter(cache.NewMemoryClient(), 2, time.Minute, logger.NewNopLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	first := send("10.0.0.1:5000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := send("10.0.0.1:5001")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))

	// Outro IP tem o seu próprio contador.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code)
}

func TestRateLimiter_DisabledWithZeroLimit(t *testing.T) {
	limited := middleware.RateLimiter(cache.NewMemoryClient(), 0, time.Minute, logger.NewNopLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
