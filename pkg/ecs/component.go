package ecs

import (
	"fmt"

	"github.com/opd-ai/ecshost/pkg/ecserr"
)

// Set installs v as e's component of type T, lazily creating T's column
// (and a default vtable) on first use. It fails only if e is not a
// currently-alive entity of w.
func Set[T any](w *World, e Entity, v T) error {
	if !w.IsValid(e) {
		return fmt.Errorf("set component on entity %+v: %w", e, ecserr.ErrInvalidEntity)
	}
	return columnFor[T](w).Set(e, v)
}

// Get returns a copy of e's component of type T.
func Get[T any](w *World, e Entity) (T, error) {
	var zero T
	if !w.IsValid(e) {
		return zero, fmt.Errorf("get component on entity %+v: %w", e, ecserr.ErrInvalidEntity)
	}
	return columnFor[T](w).Get(e)
}

// GetMut returns an exclusive pointer to e's component of type T.
func GetMut[T any](w *World, e Entity) (*T, error) {
	if !w.IsValid(e) {
		return nil, fmt.Errorf("get-mut component on entity %+v: %w", e, ecserr.ErrInvalidEntity)
	}
	return columnFor[T](w).GetMut(e)
}

// Has reports whether e currently has a component of type T.
func Has[T any](w *World, e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	return columnFor[T](w).Has(e)
}

// RemoveComponent drops e's component of type T, if any.
func RemoveComponent[T any](w *World, e Entity) {
	if !w.IsValid(e) {
		return
	}
	columnFor[T](w).Remove(e)
}
