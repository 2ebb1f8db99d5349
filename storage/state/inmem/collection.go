package inmemstate

import (
	"sync"

	"github.com/kymoh/darasa/core/catalog"
)

// Collection is one ordered, id-keyed kind collection. Insertion order is
// preserved: an upsert of a known id replaces the record in place, an unknown
// id appends.
type Collection[T catalog.Entity] struct {
	mu       sync.RWMutex
	order    []string
	items    map[string]T
	watchers []chan struct{}
}

func NewCollection[T catalog.Entity]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

func (c *Collection[T]) Upsert(item T) {
	c.mu.Lock()
	id := item.EntityID()
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = item
	c.mu.Unlock()
	c.notify()
}

// Remove filters the item out; removing an absent id is a no-op, not an error.
func (c *Collection[T]) Remove(id string) {
	c.mu.Lock()
	if _, ok := c.items[id]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// Snapshot returns the records in insertion order, copied by value.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	c.order = make([]string, 0, len(items))
	c.items = make(map[string]T, len(items))
	for _, item := range items {
		id := item.EntityID()
		if _, ok := c.items[id]; !ok {
			c.order = append(c.order, id)
		}
		c.items[id] = item
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) Clear() {
	c.mu.Lock()
	c.order = nil
	c.items = make(map[string]T)
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Watch returns a channel signalled on every commit to this collection.
// Notifications to slow consumers are dropped, never blocked on.
func (c *Collection[T]) Watch() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{}, 1)
	c.watchers = append(c.watchers, ch)
	return ch
}

func (c *Collection[T]) notify() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
