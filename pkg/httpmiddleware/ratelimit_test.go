package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func get(h http.Handler, setup func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func fromAddr(addr string) func(*http.Request) {
	return func(r *http.Request) { r.RemoteAddr = addr }
}

func TestRateLimit_Burst(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 3, Window: time.Minute})(okHandler())

	for i := range 3 {
		rec := get(h, fromAddr("10.0.0.1:1000"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := get(h, fromAddr("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code":429,"message":"Too many requests"}`, rec.Body.String())
}

func TestRateLimit_PerClient(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	assert.Equal(t, http.StatusOK, get(h, fromAddr("10.0.0.1:1")).Code)
	assert.Equal(t, http.StatusOK, get(h, fromAddr("10.0.0.2:1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(h, fromAddr("10.0.0.1:2")).Code)
}

func TestRateLimit_KeyFunc(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		Max:     1,
		Window:  time.Minute,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("X-Tenant") },
	})(okHandler())

	tenant := func(v string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("X-Tenant", v) }
	}
	assert.Equal(t, http.StatusOK, get(h, tenant("a")).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(h, tenant("a")).Code)
	assert.Equal(t, http.StatusOK, get(h, tenant("b")).Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{name: "remote addr", remote: "192.168.1.1:4444", want: "192.168.1.1"},
		{name: "forwarded chain", remote: "192.168.1.1:4444", header: map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"}, want: "203.0.113.50"},
		{name: "real ip", remote: "192.168.1.1:4444", header: map[string]string{"X-Real-IP": "198.51.100.7"}, want: "198.51.100.7"},
		{name: "no port", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestLimiterSet_Evict(t *testing.T) {
	s := newLimiterSet(RateLimitConfig{Max: 1, Window: time.Second})
	now := time.Now()

	_, _, ok := s.reserve("a", now)
	require.True(t, ok)
	_, _, ok = s.reserve("b", now.Add(1500*time.Millisecond))
	require.True(t, ok)

	s.evict(now.Add(2 * time.Second))
	assert.NotContains(t, s.clients, "a")
	assert.Contains(t, s.clients, "b")
}

func TestLimiterSet_Refill(t *testing.T) {
	s := newLimiterSet(RateLimitConfig{Max: 2, Window: time.Second})
	now := time.Now()

	for range 2 {
		_, _, ok := s.reserve("a", now)
		require.True(t, ok)
	}
	_, wait, ok := s.reserve("a", now)
	require.False(t, ok)
	assert.InDelta(t, float64(500*time.Millisecond), float64(wait), float64(10*time.Millisecond))

	_, _, ok = s.reserve("a", now.Add(500*time.Millisecond))
	assert.True(t, ok)
}
