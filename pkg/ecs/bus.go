package ecs

import "reflect"

// Bus is a growable, frame-scoped queue for one message type T. Messages
// accumulate across Publish calls within a tick and are visible to every
// reader until the world clears all buses at tick end; there is no
// cross-tick delivery.
type Bus[T any] struct {
	messages []T
}

// Publish appends m to the bus.
func (b *Bus[T]) Publish(m T) {
	b.messages = append(b.messages, m)
}

// Drain returns every message appended since the last Clear.
func (b *Bus[T]) Drain() []T {
	return b.messages
}

// Clear empties the bus. Called by World once per tick, after every
// system has run.
func (b *Bus[T]) Clear() {
	b.messages = b.messages[:0]
}

// busEraser lets World clear every registered bus without knowing each
// one's message type.
type busEraser interface {
	clear()
}

func (b *Bus[T]) clear() { b.Clear() }

func getBus[T any](w *World) *Bus[T] {
	t := reflect.TypeFor[T]()
	if existing, ok := w.buses[t]; ok {
		return existing.(*Bus[T])
	}
	b := &Bus[T]{}
	w.buses[t] = b
	return b
}

// Publish appends a message of type T to w's bus for that type, creating
// the bus on first use.
func Publish[T any](w *World, m T) {
	getBus[T](w).Publish(m)
}

// ReadMessages returns every message of type T published so far this
// tick. It is non-destructive: multiple systems may read the same
// messages within one tick.
func ReadMessages[T any](w *World) []T {
	return getBus[T](w).Drain()
}
