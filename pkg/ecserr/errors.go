// Package ecserr defines the error taxonomy shared by the ecs, scheduler,
// pluginhost, and inspect packages. Every failure mode a caller needs to
// distinguish is a sentinel here, usable with errors.Is; context (an
// entity, a system name, a residual cycle set) is attached by wrapping the
// sentinel with fmt.Errorf("...: %w", ...) at the call site.
package ecserr

import "errors"

// Sentinel errors. Callers should compare with errors.Is, not string
// matching, since wrapped instances always carry additional context.
var (
	// ErrInvalidEntity is returned by any world operation given a stale or
	// out-of-range entity handle.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrComponentNotFound is returned by Get/GetMut when the entity has no
	// component of the requested type.
	ErrComponentNotFound = errors.New("component not found")

	// ErrCapacityExceeded is returned by CreateEntity once every usable
	// entity ID (1..maxEntities-1; ID 0 is reserved) is alive.
	ErrCapacityExceeded = errors.New("entity capacity exceeded")

	// ErrUnresolvedDependency is returned by the scheduler when a system
	// declares a dependency that does not resolve within its group.
	ErrUnresolvedDependency = errors.New("unresolved system dependency")

	// ErrCycleDetected is returned by the scheduler when a group's
	// dependency graph is not a DAG.
	ErrCycleDetected = errors.New("dependency cycle detected")

	// ErrDuplicateSystemName is returned by RegisterSystem when a system
	// with the same name is already registered.
	ErrDuplicateSystemName = errors.New("duplicate system name")

	// ErrPluginLoadFailed is returned by the plugin host when a candidate
	// file fails to load; the world is left unchanged.
	ErrPluginLoadFailed = errors.New("plugin load failed")

	// ErrPluginUninitFailed names the failure of a plugin's Uninitialize
	// callback. The plugin host does not return or wrap it: it logs the
	// callback's own error and still releases its references.
	ErrPluginUninitFailed = errors.New("plugin uninitialize failed")

	// ErrServiceNotFound is returned by GetService when no instance is
	// registered for the requested type.
	ErrServiceNotFound = errors.New("service not found")

	// ErrMissingParameter is returned by the dynamic invoke adapter when a
	// required service method parameter has no value and no declared
	// default.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrDeserializationFailed is returned by the dynamic invoke adapter
	// when a structured payload cannot be parsed into a component value.
	ErrDeserializationFailed = errors.New("deserialization failed")
)
