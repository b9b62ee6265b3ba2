package ecs

import (
	"fmt"
	"reflect"

	"github.com/opd-ai/ecshost/pkg/ecserr"
)

// OwnerID names the plugin (by its manifest prefix) that registered an
// artifact with the world. The empty OwnerID means the embedder itself
// registered it, not a plugin.
type OwnerID string

type serviceEntry struct {
	instance any
	owner    OwnerID
}

// serviceRegistry is a type-keyed singleton locator. Re-registering a type
// overwrites the previous instance and owner; services are not
// lifecycle-managed by the world, so unregistering never touches the
// instance itself beyond dropping the world's reference.
type serviceRegistry struct {
	byType map[reflect.Type]serviceEntry
}

func newServiceRegistry() *serviceRegistry {
	return &serviceRegistry{byType: make(map[reflect.Type]serviceEntry)}
}

// RegisterService installs instance as the singleton for type T, tagging
// it with owner (empty for embedder-owned services).
func RegisterService[T any](w *World, instance T, owner OwnerID) {
	t := reflect.TypeFor[T]()
	w.services.byType[t] = serviceEntry{instance: instance, owner: owner}
}

// UnregisterService removes the singleton for type T, if any.
func UnregisterService[T any](w *World) {
	delete(w.services.byType, reflect.TypeFor[T]())
}

// GetService returns the singleton for type T, or ErrServiceNotFound.
func GetService[T any](w *World) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	entry, ok := w.services.byType[t]
	if !ok {
		return zero, fmt.Errorf("service %s: %w", t, ecserr.ErrServiceNotFound)
	}
	return entry.instance.(T), nil
}

// ServiceOwner returns the owner tag for type T's registered service, if
// any is registered.
func ServiceOwner[T any](w *World) (OwnerID, bool) {
	entry, ok := w.services.byType[reflect.TypeFor[T]()]
	return entry.owner, ok
}

// removeByOwner unregisters every service tagged with owner. Reached
// through World.RemoveByOwner, the plugin host's defensive sweep after a
// plugin's own
// Uninitialize has run; well-behaved plugins leave nothing for it to do.
func (s *serviceRegistry) removeByOwner(owner OwnerID) {
	for t, entry := range s.byType {
		if entry.owner == owner {
			delete(s.byType, t)
		}
	}
}
