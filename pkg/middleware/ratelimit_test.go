package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/wompi", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	defer rl.Shutdown()

	handler := rl.Middleware(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("203.0.113.7:5000"))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_RejectionSetsRetryAfter(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, nil)
	defer rl.Shutdown()

	handler := rl.Middleware(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("203.0.113.7:5000"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.7:5000"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_PortsShareBucket(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Shutdown()

	assert.True(t, rl.Allow(clientHost(requestFrom("198.51.100.1:1111"))))
	assert.False(t, rl.Allow(clientHost(requestFrom("198.51.100.1:2222"))))
	assert.True(t, rl.Allow(clientHost(requestFrom("198.51.100.2:1111"))), "other hosts have their own budget")
}

func TestRateLimiter_EvictsOldestAtCapacity(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Shutdown()
	rl.maxSize = 2

	rl.getLimiter("a")
	time.Sleep(time.Millisecond)
	rl.getLimiter("b")
	rl.getLimiter("c")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.limiters, 2)
	assert.NotContains(t, rl.limiters, "a")
	assert.Contains(t, rl.limiters, "c")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	defer rl.Shutdown()

	rl.getLimiter("stale")
	removed := rl.cleanup(time.Now().Add(2 * rl.cleanupInterval))

	assert.Equal(t, 1, removed)
	assert.Zero(t, rl.cleanup(time.Now()))
}

func TestRateLimiter_ShutdownIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	assert.NotPanics(t, func() {
		rl.Shutdown()
		rl.Shutdown()
	})
}

func TestClientHost(t *testing.T) {
	assert.Equal(t, "192.0.2.10", clientHost(requestFrom("192.0.2.10:443")))
	assert.Equal(t, "::1", clientHost(requestFrom("[::1]:8080")))
	assert.Equal(t, "no-port", clientHost(requestFrom("no-port")))
}
