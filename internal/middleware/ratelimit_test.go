package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hwang1401/travel-planner/internal/middleware"
)

func get(h http.Handler, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

// TestRateLimiter_RejectsOverBurst verifies that a client past its burst gets
// 429 while another client is unaffected.
func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	h := middleware.NewRateLimiter(0.001, 2).Handler(trivialHandler)

	assert.Equal(t, http.StatusOK, get(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, get(h, "10.0.0.1:5678"))
	assert.Equal(t, http.StatusTooManyRequests, get(h, "10.0.0.1:1234"))

	assert.Equal(t, http.StatusOK, get(h, "10.0.0.2:1234"))
}

// TestRateLimiter_BareRemoteAddr verifies that an address without a port,
// as chi's RealIP middleware leaves it, is still keyed correctly.
func TestRateLimiter_BareRemoteAddr(t *testing.T) {
	h := middleware.NewRateLimiter(0.001, 1).Handler(trivialHandler)

	assert.Equal(t, http.StatusOK, get(h, "203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, get(h, "203.0.113.7"))
}
