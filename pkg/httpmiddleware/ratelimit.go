package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/jx"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client limiter: Max requests per
// Window, refilled evenly, with bursts of up to Max.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// KeyFunc identifies the client; the remote IP by default.
	KeyFunc func(*http.Request) string
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu      sync.Mutex
	clients map[string]*client
}

func newLimiterSet(cfg RateLimitConfig) *limiterSet {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiterSet{
		cfg:     cfg,
		every:   rate.Every(cfg.Window / time.Duration(max(cfg.Max, 1))),
		clients: make(map[string]*client),
	}
}

// reserve takes one token for key at now. It returns the tokens left and,
// when denied, how long until the next token.
func (s *limiterSet) reserve(key string, now time.Time) (left int, wait time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.clients[key]
	if !found {
		c = &client{limiter: rate.NewLimiter(s.every, s.cfg.Max)}
		s.clients[key] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return 0, d, false
	}
	return int(math.Max(0, c.limiter.TokensAt(now))), 0, true
}

// evict drops clients idle for longer than one window; their bucket is full
// again by then.
func (s *limiterSet) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, c := range s.clients {
		if now.Sub(c.lastSeen) > s.cfg.Window {
			delete(s.clients, key)
		}
	}
}

func (s *limiterSet) evictLoop(ctx context.Context) {
	t := time.NewTicker(s.cfg.Window)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.evict(now)
		}
	}
}

// RateLimit limits requests per client and answers 429 with a Retry-After
// header once the bucket is empty.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiterSet(cfg).middleware
}

// RateLimitWithCleanup is RateLimit with background eviction of idle
// clients until ctx is done.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	s := newLimiterSet(cfg)
	go s.evictLoop(ctx)
	return s.middleware
}

func (s *limiterSet) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		left, wait, ok := s.reserve(s.cfg.KeyFunc(r), time.Now())

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(s.cfg.Max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(left))
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		var e jx.Encoder
		e.ObjStart()
		e.FieldStart("code")
		e.Int(http.StatusTooManyRequests)
		e.FieldStart("message")
		e.Str("Too many requests")
		e.ObjEnd()

		h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		h.Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write(e.Bytes())
	})
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
