package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"gastos/internal/log"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newCache(capacity int) (*LRUCache[string], *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](capacity, time.Minute)
	c.now = clk.now
	return c, clk
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newCache(2)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b was least recently used and should be gone")
	}
	for key, want := range map[string]string{"a": "1", "c": "3"} {
		if got, ok := c.Get(key); !ok || got != want {
			t.Errorf("Get(%s) = %q, %v", key, got, ok)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRUCache_OverwriteRefreshesExpiry(t *testing.T) {
	c, clk := newCache(4)
	c.Set("a", "old")
	clk.t = clk.t.Add(50 * time.Second)
	c.Set("a", "new")
	clk.t = clk.t.Add(50 * time.Second)

	if got, ok := c.Get("a"); !ok || got != "new" {
		t.Errorf("Get(a) = %q, %v; want fresh value", got, ok)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clk := newCache(10)
	c.Set("a", "1")
	c.Set("b", "2")

	clk.t = clk.t.Add(30 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expired before its ttl")
	}

	clk.t = clk.t.Add(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := c.PurgeExpired(); n != 1 {
		t.Errorf("PurgeExpired = %d, want 1 (a was dropped by Get)", n)
	}

	if st := c.Stats(); st != (Stats{Size: 0, Hits: 1, Misses: 1}) {
		t.Errorf("Stats = %+v", st)
	}
}

func TestLRUCache_DeletePrefixIsPerUser(t *testing.T) {
	c, _ := newCache(10)
	c.Set(Key(1, "categoria", "", "2024-01-01"), "x")
	c.Set(Key(1, "geral"), "y")
	c.Set(Key(11, "geral"), "z")

	if n := c.DeletePrefix(UserPrefix(1)); n != 2 {
		t.Errorf("DeletePrefix = %d, want 2", n)
	}
	if _, ok := c.Get(Key(11, "geral")); !ok {
		t.Error("user 11 shares a digit with user 1 but must keep its entry")
	}
}

func TestKey(t *testing.T) {
	if got := Key(7, "insights", "2024-01-01", ""); got != "u7|insights|2024-01-01|" {
		t.Errorf("Key = %q", got)
	}
}

func TestSweeper(t *testing.T) {
	c, clk := newCache(10)
	c.Set("a", "1")
	c.Set("b", "2")
	clk.t = clk.t.Add(2 * time.Minute)

	logger := log.New(log.Config{Output: io.Discard})
	s := NewSweeper(logger, time.Hour, c)
	if n := s.SweepOnce(); n != 2 {
		t.Errorf("SweepOnce = %d, want 2", n)
	}

	s.Start(context.Background())
	s.Stop()
	s.Stop()

	NewSweeper(logger, time.Hour).Stop()
}
