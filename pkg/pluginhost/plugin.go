// Package pluginhost loads, hot-reloads, and unloads external Go plugins
// against a running world, using the standard library's plugin package.
package pluginhost

import "github.com/opd-ai/ecshost/pkg/ecs"

// Manifest describes a plugin's identity and the artifacts it claims to
// provide. ProvidedSystems/Services/Components are declarative only: the
// host does not enforce that Initialize actually registers them, but the
// inspection surface uses the declared lists to describe a plugin before
// anyone asks it to introspect the live world.
type Manifest struct {
	Name        string
	Version     string
	Author      string
	Description string

	// Prefix tags every system, service, and component type this plugin
	// registers, so the host can sweep them on unload without the plugin's
	// cooperation. It doubles as the plugin's ecs.OwnerID.
	Prefix string

	ProvidedSystems    []string
	ProvidedServices   []string
	ProvidedComponents []string
}

// Plugin is the contract an external .so must satisfy. A plugin's package
// main exports a zero-argument "NewPlugin" function returning a Plugin.
type Plugin interface {
	Manifest() Manifest

	// Initialize registers this plugin's systems, services, and component
	// types against w. If it returns an error partway through, the host
	// sweeps anything tagged with the plugin's prefix and leaves the world
	// as if the load never happened.
	Initialize(w *ecs.World) error

	// Uninitialize is the plugin's chance to deregister its own artifacts
	// before the host's defensive sweep runs. Errors here are logged and
	// swallowed: unload always proceeds.
	Uninitialize(w *ecs.World) error
}

// Factory is the signature the host looks up under the symbol name
// "NewPlugin" in every loaded .so.
type Factory func() Plugin
