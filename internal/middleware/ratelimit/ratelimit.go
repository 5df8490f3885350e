// Package ratelimit throttles clients with a fixed window per key.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Config sets the quota. Zero fields take the defaults of DefaultConfig.
type Config struct {
	Limit  int
	Window time.Duration
	// SweepInterval is how often keys with an expired window are forgotten.
	SweepInterval time.Duration
}

func DefaultConfig() Config {
	return Config{Limit: 60, Window: time.Minute, SweepInterval: 5 * time.Minute}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Limit <= 0 {
		c.Limit = d.Limit
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = d.SweepInterval
	}
	return c
}

type window struct {
	opened time.Time
	used   int
}

// Limiter counts requests per key inside fixed windows.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	rejected  atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

// Stats is a snapshot for the metrics endpoint.
type Stats struct {
	Rejected int64
	Clients  int
}

// New returns a Limiter and starts its sweeper; Close stops it.
func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow spends one request of key's quota. When the quota is gone it
// returns false and the time left until the window reopens.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w == nil || now.Sub(w.opened) >= l.cfg.Window {
		l.windows[key] = &window{opened: now, used: 1}
		return true, 0
	}
	if w.used >= l.cfg.Limit {
		l.rejected.Add(1)
		return false, w.opened.Add(l.cfg.Window).Sub(now)
	}
	w.used++
	return true, 0
}

func (l *Limiter) sweepLoop() {
	t := time.NewTicker(l.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			l.sweep()
		}
	}
}

// sweep forgets keys whose window has closed and reports how many it dropped.
func (l *Limiter) sweep() int {
	cutoff := l.now().Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, w := range l.windows {
		if w.opened.Before(cutoff) {
			delete(l.windows, key)
			n++
		}
	}
	return n
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	clients := len(l.windows)
	l.mu.Unlock()
	return Stats{Rejected: l.rejected.Load(), Clients: clients}
}

// Close stops the sweeper. It is safe to call more than once.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Middleware keys requests with keyFn. A rejected request gets 429 with
// Retry-After in whole seconds; reject writes the body, or a plain-text
// message is used when it is nil.
func (l *Limiter) Middleware(keyFn func(*http.Request) string, reject http.HandlerFunc) func(http.Handler) http.Handler {
	limit := strconv.Itoa(l.cfg.Limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Limit", limit)

			ok, wait := l.Allow(keyFn(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			secs := max(int(wait.Round(time.Second)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			if reject == nil {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			reject(w, r)
		})
	}
}
