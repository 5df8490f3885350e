// Package cache keeps per-user query results in memory for a short time.
package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"gastos/internal/log"
)

// Cache is what services need from a result cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	DeletePrefix(prefix string) int
}

// UserPrefix is shared by every key of one user, so DeletePrefix with it
// forgets all of that user's results.
func UserPrefix(userID int64) string {
	return "u" + strconv.FormatInt(userID, 10) + "|"
}

// Key builds a user-scoped key; parts keep their order and empty parts keep
// their slot.
func Key(userID int64, kind string, parts ...string) string {
	return UserPrefix(userID) + kind + "|" + strings.Join(parts, "|")
}

// Expirer is a cache that can drop its stale entries on demand.
type Expirer interface {
	PurgeExpired() int
}

// Sweeper purges expired entries from a set of caches on a fixed interval,
// so memory is reclaimed even for keys that are never read again.
type Sweeper struct {
	caches   []Expirer
	interval time.Duration
	logger   *log.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewSweeper(logger *log.Logger, interval time.Duration, caches ...Expirer) *Sweeper {
	return &Sweeper{
		caches:   caches,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentCache),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop; it runs until ctx ends or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.SweepOnce(); n > 0 {
				s.logger.DebugContext(ctx, "Expired cache entries removed", "count", n)
			}
		}
	}
}

// SweepOnce purges every cache now and returns the number of entries removed.
func (s *Sweeper) SweepOnce() int {
	n := 0
	for _, c := range s.caches {
		n += c.PurgeExpired()
	}
	return n
}

// Stop ends the loop and waits for it. It is a no-op before Start.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
	})
}
