package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRUCache holds at most capacity entries; each one also expires ttl after
// it was last written.
type LRUCache[T any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
	stats   Stats
}

type entry[T any] struct {
	key     string
	value   T
	expires time.Time
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Size   int
	Hits   int64
	Misses int64
}

func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		capacity: max(capacity, 1),
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[T])
		if !c.now().After(e.expires) {
			c.order.MoveToFront(el)
			c.stats.Hits++
			return e.value, true
		}
		c.unlink(el)
	}
	c.stats.Misses++
	var zero T
	return zero, false
}

// Set writes value under key and resets its expiry. Inserting past capacity
// drops the least recently used entry.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, expires: c.now().Add(c.ttl)}
	if el, ok := c.entries[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(e)
	for c.order.Len() > c.capacity {
		c.unlink(c.order.Back())
	}
}

// DeletePrefix drops every key starting with prefix and returns the count.
func (c *LRUCache[T]) DeletePrefix(prefix string) int {
	return c.removeIf(func(e *entry[T]) bool { return strings.HasPrefix(e.key, prefix) })
}

// PurgeExpired drops entries past their expiry and returns the count.
func (c *LRUCache[T]) PurgeExpired() int {
	now := c.now()
	return c.removeIf(func(e *entry[T]) bool { return now.After(e.expires) })
}

func (c *LRUCache[T]) removeIf(match func(*entry[T]) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if match(el.Value.(*entry[T])) {
			c.unlink(el)
			n++
		}
		el = next
	}
	return n
}

// unlink must be called with mu held.
func (c *LRUCache[T]) unlink(el *list.Element) {
	delete(c.entries, el.Value.(*entry[T]).key)
	c.order.Remove(el)
}

func (c *LRUCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}
