package ecs

import (
	"fmt"
	"reflect"

	"github.com/opd-ai/ecshost/pkg/ecserr"
	"github.com/opd-ai/ecshost/pkg/logging"
)

// componentVTable is the Go-native replacement for the reflection-heavy
// dynamic dispatch the original ECS used to resolve component type names,
// service methods, and parameter bindings at runtime (spec §9). Each
// registered component type gets one vtable, built once at registration
// time, so the world never scans types by reflection during normal
// operation.
type componentVTable struct {
	typeName string
	owner    OwnerID

	// parse sets data on e when data already holds a value of the
	// component type. No decoding is done: any other payload (a map, JSON
	// bytes, a different type) fails with ErrDeserializationFailed.
	parse func(w *World, e Entity, data any) error

	// remove deletes the component from e. No-op if absent.
	remove func(w *World, e Entity)

	// snapshot returns the component's current value on e, boxed, or
	// (nil, false) if e has none.
	snapshot func(w *World, e Entity) (any, bool)
}

// eraser is the type-erased surface every Column[T] exposes so World can
// perform generic entity-wide operations (destroy, query membership
// checks) without knowing T.
type eraser interface {
	removeEntity(e Entity)
	hasEntity(e Entity) bool
	entitySlice() []Entity
	size() int
}

// RegisterComponentType installs T's column (creating it if this is the
// first use) and its vtable, tagging ownership for the inspection surface.
// Calling it is optional: Set[T] lazily creates a column on first use with
// no owner and a vtable built from reflection-free defaults; plugins that
// want their component types attributed to them in the inspection surface
// should call this explicitly from Initialize.
func RegisterComponentType[T any](w *World, owner OwnerID) {
	col := columnFor[T](w)
	setVTable[T](w, col, owner)
	if w.logger != nil {
		logging.ComponentLogger(w.logger, reflect.TypeFor[T]().String()).Debug("component type registered")
	}
}

func setVTable[T any](w *World, col *Column[T], owner OwnerID) {
	t := reflect.TypeFor[T]()
	w.vtables[t] = componentVTable{
		typeName: t.String(),
		owner:    owner,
		parse: func(w *World, e Entity, data any) error {
			v, ok := data.(T)
			if !ok {
				return fmt.Errorf("parse component %s on entity %+v: %w", t, e, ecserr.ErrDeserializationFailed)
			}
			return col.Set(e, v)
		},
		remove: func(w *World, e Entity) {
			col.Remove(e)
		},
		snapshot: func(w *World, e Entity) (any, bool) {
			v, err := col.Get(e)
			if err != nil {
				return nil, false
			}
			return v, true
		},
	}
}

func columnFor[T any](w *World) *Column[T] {
	t := reflect.TypeFor[T]()
	if existing, ok := w.columns[t]; ok {
		return existing.(*Column[T])
	}
	col := NewColumn[T](w.maxEntities)
	w.columns[t] = col
	if _, ok := w.vtables[t]; !ok {
		setVTable[T](w, col, "")
	}
	return col
}

// componentTypeName returns the registered type name for t, if a column
// for it has been created.
func (w *World) componentTypeName(t reflect.Type) (string, bool) {
	vt, ok := w.vtables[t]
	if !ok {
		return "", false
	}
	return vt.typeName, true
}
