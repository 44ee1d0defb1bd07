// Package broadcast provides the fan-out primitives shared by the event
// stream client, the dashboard cache and the session.
package broadcast

import "sync"

// Subscription delivers values on C until Close is called or the producer
// shuts down, at which point C is closed.
type Subscription[T any] struct {
	C <-chan T

	once    sync.Once
	closeFn func()
}

// NewSubscription wraps a receive channel and the function that detaches it
// from its producer.
func NewSubscription[T any](ch <-chan T, closeFn func()) *Subscription[T] {
	return &Subscription[T]{C: ch, closeFn: closeFn}
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		if s.closeFn != nil {
			s.closeFn()
		}
	})
}

// Map derives a subscription that forwards fn(v) for every value where fn
// reports true. Closing the derived subscription closes src.
func Map[T, U any](src *Subscription[T], fn func(T) (U, bool)) *Subscription[U] {
	out := make(chan U, cap(src.C))
	done := make(chan struct{})

	go func() {
		defer close(out)
		for v := range src.C {
			u, ok := fn(v)
			if !ok {
				continue
			}
			select {
			case out <- u:
			case <-done:
				return
			}
		}
	}()

	return NewSubscription(out, func() {
		close(done)
		src.Close()
	})
}
