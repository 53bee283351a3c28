package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a size-bounded TTL map. When full, the least recently read or
// written key goes first. Safe for concurrent use; a nil *Cache is empty.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	byKey map[K]*list.Element
	lru   *list.List // front is most recent
	limit int
	now   func() time.Time

	done     chan struct{}
	doneOnce sync.Once
}

type slot[K comparable, V any] struct {
	key     K
	val     V
	expires time.Time
}

func (s *slot[K, V]) dead(at time.Time) bool {
	return !s.expires.IsZero() && at.After(s.expires)
}

// New returns a cache of at most limit keys (limit <= 0 means unbounded).
// A positive sweep interval runs a background purge until Close.
func New[K comparable, V any](limit int, sweep time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{
		byKey: make(map[K]*list.Element),
		lru:   list.New(),
		limit: max(limit, 0),
		now:   time.Now,
		done:  make(chan struct{}),
	}
	if sweep > 0 {
		go c.purgeEvery(sweep)
	}
	return c
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	s := el.Value.(*slot[K, V])
	if s.dead(c.now()) {
		c.drop(el)
		return zero, false
	}
	c.lru.MoveToFront(el)
	return s.val, true
}

// Set stores val for ttl; ttl <= 0 keeps it until evicted or deleted.
func (c *Cache[K, V]) Set(key K, val V, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	if el, ok := c.byKey[key]; ok {
		s := el.Value.(*slot[K, V])
		s.val, s.expires = val, expires
		c.lru.MoveToFront(el)
		return
	}
	c.byKey[key] = c.lru.PushFront(&slot[K, V]{key: key, val: val, expires: expires})
	for c.limit > 0 && c.lru.Len() > c.limit {
		c.drop(c.lru.Back())
	}
}

func (c *Cache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byKey[key]; ok {
		c.drop(el)
	}
}

func (c *Cache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Close stops the background purge. Reads and writes keep working.
func (c *Cache[K, V]) Close() {
	if c == nil {
		return
	}
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Cache[K, V]) purgeEvery(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.purge()
		}
	}
}

func (c *Cache[K, V]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.now()
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*slot[K, V]).dead(at) {
			c.drop(el)
		}
		el = prev
	}
}

// drop unlinks el; c.mu must be held.
func (c *Cache[K, V]) drop(el *list.Element) {
	if el == nil {
		return
	}
	c.lru.Remove(el)
	delete(c.byKey, el.Value.(*slot[K, V]).key)
}
