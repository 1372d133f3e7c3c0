// Package health serves /livez and /readyz backed by periodic checks.
//
// A check turns unhealthy after failureThreshold consecutive failures and
// healthy again after one success.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

const failureThreshold = 3

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	mu      sync.Mutex
	fails   int
	healthy bool
	lastErr error
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	return &probe{name: name, timeout: timeout, check: check, healthy: true}
}

func (p *probe) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err := p.check(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err == nil {
		p.fails = 0
		p.healthy = true
		return
	}
	p.fails++
	if p.fails >= failureThreshold {
		p.healthy = false
	}
}

// failure returns the reason the probe is unhealthy, or "" if it is healthy.
func (p *probe) failure() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.healthy:
		return ""
	case p.lastErr != nil:
		return p.lastErr.Error()
	default:
		return "check is unhealthy"
	}
}

// Health holds liveness and readiness probes. It starts not ready.
type Health struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New returns an empty Health.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check reported by /livez.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a check reported by /readyz.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start runs every check now and then every interval until Stop or ctx is
// done.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := slices.Concat(h.liveness, h.readiness)
	h.mu.Unlock()

	for _, p := range probes {
		go func() {
			t := time.NewTicker(interval)
			defer t.Stop()
			for {
				p.run(ctx)
				select {
				case <-ctx.Done():
					return
				case <-t.C:
				}
			}
		}()
	}
}

// Stop ends the background checks. It may be called more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness switch.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and all readiness
// checks pass.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	return len(failures(h.probes(false))) == 0
}

func (h *Health) probes(live bool) []*probe {
	h.mu.Lock()
	defer h.mu.Unlock()
	if live {
		return slices.Clone(h.liveness)
	}
	return slices.Clone(h.readiness)
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, failures(h.probes(true)))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failed := failures(h.probes(false))
	if !h.ready.Load() {
		failed = append(failed, [2]string{"_readiness", "service is not ready"})
	}
	writeStatus(w, failed)
}

// failures lists name/reason pairs of unhealthy probes.
func failures(probes []*probe) [][2]string {
	var out [][2]string
	for _, p := range probes {
		if reason := p.failure(); reason != "" {
			out = append(out, [2]string{p.name, reason})
		}
	}
	return out
}

// writeStatus writes {"status":"ok"} or 503 with
// {"status":"unhealthy","checks":{name:reason}}.
func writeStatus(w http.ResponseWriter, failed [][2]string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	code := http.StatusOK
	if len(failed) == 0 {
		e.Str("ok")
	} else {
		code = http.StatusServiceUnavailable
		e.Str("unhealthy")
		e.FieldStart("checks")
		e.ObjStart()
		for _, f := range failed {
			e.FieldStart(f[0])
			e.Str(f[1])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
