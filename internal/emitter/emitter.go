// Package emitter is a small synchronous observer registry keyed by channel
// name. Listeners run on the emitting goroutine, in subscription order.
package emitter

import (
	"sync"
)

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Bus fans values out to the listeners subscribed under a key. The zero
// value is ready to use.
type Bus[K comparable, T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[K][]listener[T]
}

// Subscribe registers fn under key and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus[K, T]) Subscribe(key K, fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	if b.subs == nil {
		b.subs = map[K][]listener[T]{}
	}
	b.nextID++
	id := b.nextID
	b.subs[key] = append(b.subs[key], listener[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(key, id) })
	}
}

func (b *Bus[K, T]) remove(key K, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.subs[key]
	for i, l := range ls {
		if l.id != id {
			continue
		}
		// copy so that an Emit iterating the old slice is unaffected
		next := make([]listener[T], 0, len(ls)-1)
		next = append(next, ls[:i]...)
		next = append(next, ls[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, key)
		} else {
			b.subs[key] = next
		}
		return
	}
}

// Emit calls every listener subscribed under key with v. Listeners added or
// removed during Emit take effect from the next call.
func (b *Bus[K, T]) Emit(key K, v T) {
	b.mu.Lock()
	ls := b.subs[key]
	b.mu.Unlock()
	for _, l := range ls {
		l.fn(v)
	}
}

// Len returns the number of listeners under key.
func (b *Bus[K, T]) Len(key K) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[key])
}
