package broadcast

import "sync"

// DefaultBuffer is the per-subscriber queue length used when a Hub is
// created with a non-positive buffer.
const DefaultBuffer = 64

// Hub is a multicast channel without replay. Subscribers only see values
// published after they subscribed. A subscriber whose queue is full misses
// the value; Publish never blocks.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]chan T
	nextID uint64
	buffer int
	closed bool

	// OnDrop, if set, is called with the number of subscribers that missed
	// a published value.
	OnDrop func(missed int)
}

// NewHub creates a Hub whose subscribers each buffer up to buffer values.
func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub[T]{
		subs:   make(map[uint64]chan T),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. Subscribing to a closed hub returns
// a subscription whose channel is already closed.
func (h *Hub[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return NewSubscription[T](ch, nil)
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	return NewSubscription[T](ch, func() { h.unsubscribe(id) })
}

func (h *Hub[T]) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers v to every current subscriber and returns how many
// received it.
func (h *Hub[T]) Publish(v T) int {
	h.mu.Lock()
	delivered, missed := 0, 0
	for _, ch := range h.subs {
		select {
		case ch <- v:
			delivered++
		default:
			missed++
		}
	}
	onDrop := h.OnDrop
	h.mu.Unlock()

	if missed > 0 && onDrop != nil {
		onDrop(missed)
	}
	return delivered
}

// Len returns the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
