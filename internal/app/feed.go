package app

import (
	"sync"

	"github.com/google/uuid"
)

// Feed fans values out to any number of subscribers. Publish never blocks:
// a subscriber that falls behind loses its oldest pending value.
type Feed[T any] struct {
	mu   sync.RWMutex
	subs map[string]chan T
}

// NewFeed creates an empty feed.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[string]chan T)}
}

// Subscribe registers a subscriber with the given buffer size (minimum 1).
// The returned cancel func unregisters it and closes the channel.
func (f *Feed[T]) Subscribe(buffer int) (id string, ch <-chan T, cancel func()) {
	if buffer < 1 {
		buffer = 1
	}
	c := make(chan T, buffer)
	id = uuid.NewString()

	f.mu.Lock()
	f.subs[id] = c
	f.mu.Unlock()

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(c)
		})
	}
	return id, c, cancel
}

// Publish delivers v to every subscriber.
func (f *Feed[T]) Publish(v T) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, c := range f.subs {
		select {
		case c <- v:
			continue
		default:
		}

		// Full: drop the oldest value and retry once.
		select {
		case <-c:
		default:
		}
		select {
		case c <- v:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
