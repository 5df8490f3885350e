package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock lets tests move time by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newLimiter(t *testing.T, limit int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := New(Config{Limit: limit, SweepInterval: time.Hour})
	l.now = clock.now
	t.Cleanup(l.Close)
	return l, clock
}

func TestAllow(t *testing.T) {
	l, clock := newLimiter(t, 2)

	for i := 1; i <= 2; i++ {
		if ok, _ := l.Allow("10.0.0.1"); !ok {
			t.Fatalf("request %d rejected", i)
		}
	}
	if ok, wait := l.Allow("10.0.0.1"); ok || wait != time.Minute {
		t.Fatalf("over quota: ok=%v wait=%v, want false 1m", ok, wait)
	}
	if ok, _ := l.Allow("10.0.0.2"); !ok {
		t.Error("each key has its own quota")
	}

	clock.advance(40 * time.Second)
	if _, wait := l.Allow("10.0.0.1"); wait != 20*time.Second {
		t.Errorf("wait = %v, want 20s", wait)
	}

	clock.advance(20 * time.Second)
	if ok, _ := l.Allow("10.0.0.1"); !ok {
		t.Error("quota should refill when the window closes")
	}

	st := l.Stats()
	if st.Rejected != 2 || st.Clients != 2 {
		t.Errorf("Stats = %+v, want 2 rejected and 2 clients", st)
	}
}

func TestSweep(t *testing.T) {
	l, clock := newLimiter(t, 5)

	l.Allow("old")
	clock.advance(45 * time.Second)
	l.Allow("recent")
	clock.advance(30 * time.Second)

	if n := l.sweep(); n != 1 {
		t.Errorf("sweep dropped %d keys, want 1", n)
	}
	if got := l.Stats().Clients; got != 1 {
		t.Errorf("Clients = %d, want 1", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	got := Config{Limit: 3}.withDefaults()
	if got.Limit != 3 || got.Window != time.Minute || got.SweepInterval != 5*time.Minute {
		t.Errorf("withDefaults = %+v", got)
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newLimiter(t, 1)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	byAddr := func(r *http.Request) string { return r.RemoteAddr }

	custom := l.Middleware(byAddr, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	})(ok)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	first := httptest.NewRecorder()
	custom.ServeHTTP(first, req)
	if first.Code != http.StatusNoContent || first.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("first request: %d %v", first.Code, first.Header())
	}

	second := httptest.NewRecorder()
	custom.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests || second.Body.String() != `{"error":"slow down"}` {
		t.Fatalf("second request: %d %q", second.Code, second.Body.String())
	}
	if got := second.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}

	plain := httptest.NewRecorder()
	l.Middleware(byAddr, nil)(ok).ServeHTTP(plain, req)
	if plain.Code != http.StatusTooManyRequests {
		t.Errorf("nil reject handler: %d", plain.Code)
	}
}
