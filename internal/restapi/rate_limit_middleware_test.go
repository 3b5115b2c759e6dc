package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timberprices.msstate.edu/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest("GET", "/api/prices.json", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	rl := NewRateLimitMiddleware(5, time.Second)
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should be allowed", i+1)
	}
}

func TestRateLimitMiddleware_BlocksRequestsOverLimit(t *testing.T) {
	rl := NewRateLimitMiddleware(3, time.Second)
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1:2000"))

	assert.Equal(t, http.StatusTooManyRequests, w.Code, "the port does not identify a client")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	var model models.ResponseModel
	require.NoError(t, json.NewDecoder(w.Body).Decode(&model))
	assert.Equal(t, http.StatusTooManyRequests, model.Code)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", model.Text)
}

func TestRateLimitMiddleware_PerClientLimiting(t *testing.T) {
	rl := NewRateLimitMiddleware(2, time.Second)
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("198.51.100.9:1000"))
	assert.Equal(t, http.StatusOK, w.Code, "another client has its own budget")
}

func TestRateLimitMiddleware_RefillsOverTime(t *testing.T) {
	rl := NewRateLimitMiddleware(10, 100*time.Millisecond)
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	for i := 0; i < 10; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.1:1000"))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	time.Sleep(50 * time.Millisecond)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_DisabledWhenNotPositive(t *testing.T) {
	rl := NewRateLimitMiddleware(0, time.Second)
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_ConcurrentRequests(t *testing.T) {
	rl := NewRateLimitMiddleware(20, time.Minute)
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))
			if w.Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, allowed)
}

func TestRateLimitMiddleware_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Second)
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}
