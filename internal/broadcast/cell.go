package broadcast

import "sync"

// Cell holds a single current value and broadcasts every change. New
// subscribers receive the current value immediately, if one is set. A slow
// subscriber only ever sees the newest value; intermediate ones are
// coalesced away.
//
// The zero Cell is empty and ready to use.
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	set    bool
	subs   map[uint64]chan T
	nextID uint64
}

// Get returns the current value and whether one has been set.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// Set stores v and notifies subscribers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(v)
}

// Update atomically replaces the value with the result of fn. fn receives
// the current value and whether one is set; if it returns false the cell is
// left untouched and nobody is notified. Update reports whether a value was
// stored.
func (c *Cell[T]) Update(fn func(cur T, ok bool) (T, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, ok := fn(c.value, c.set)
	if !ok {
		return false
	}
	c.store(next)
	return true
}

func (c *Cell[T]) store(v T) {
	c.value = v
	c.set = true
	for _, ch := range c.subs {
		offer(ch, v)
	}
}

// offer places v in a one-slot channel, replacing any unread value. Only
// called with c.mu held, so there is a single sender per channel.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// Subscribe returns a subscription primed with the current value.
func (c *Cell[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs == nil {
		c.subs = make(map[uint64]chan T)
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	if c.set {
		ch <- c.value
	}

	return NewSubscription[T](ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	})
}
