// Package inspect adapts a running world into read-only snapshots and a
// small set of dynamic-invoke operations, for an external tool (e.g. a
// REST server, not provided here) to drive. It never holds a reference
// to anything beyond the world and plugin host it was built from.
package inspect

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/opd-ai/ecshost/pkg/ecs"
	"github.com/opd-ai/ecshost/pkg/ecserr"
	"github.com/opd-ai/ecshost/pkg/pluginhost"
)

// WorldStatus summarizes a world's top-level counters.
type WorldStatus struct {
	MaxEntities     int
	RecycledCount   int
	SystemCount     int
	ComponentTypes  int
	TickCount       uint64
	Paused          bool
}

// PluginSummary is the list-view shape for one loaded plugin.
type PluginSummary struct {
	Name        string
	Version     string
	Author      string
	Description string
	Prefix      string
}

// PluginDetail extends PluginSummary with its declared artifacts.
type PluginDetail struct {
	PluginSummary
	ProvidedSystems    []string
	ProvidedServices   []string
	ProvidedComponents []string
}

// SystemSummary is the list-view shape for one registered system.
type SystemSummary struct {
	Name       string
	Enabled    bool
	Group      string
	PluginOwner string
}

// ComponentTypeSummary is the list-view shape for one registered
// component type.
type ComponentTypeSummary struct {
	TypeName    string
	PluginOwner string
}

// EntitySnapshot describes one component instance attached to an entity.
type EntitySnapshot struct {
	TypeName    string
	Data        any
	PluginOwner string
	IsDynamic   bool
}

// ServiceSummary is the list-view shape for one registered service.
type ServiceSummary struct {
	TypeName    string
	Methods     []string
	PluginOwner string
}

// Inspector is a thin read-only view over a world, optionally paired with
// the plugin host that manages it (for plugin listings).
type Inspector struct {
	world *ecs.World
	host  *pluginhost.Host
}

// New creates an Inspector. host may be nil if plugin listings are not
// needed.
func New(world *ecs.World, host *pluginhost.Host) *Inspector {
	return &Inspector{world: world, host: host}
}

// Status returns the world's top-level counters.
func (i *Inspector) Status() WorldStatus {
	s := i.world.InspectStatus()
	return WorldStatus{
		MaxEntities:    s.MaxEntities,
		RecycledCount:  s.RecycledCount,
		SystemCount:    s.SystemCount,
		ComponentTypes: s.ComponentTypes,
		TickCount:      s.TickCount,
		Paused:         s.Paused,
	}
}

// Plugins lists every currently loaded plugin.
func (i *Inspector) Plugins() []PluginSummary {
	if i.host == nil {
		return nil
	}
	manifests := i.host.Loaded()
	out := make([]PluginSummary, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, PluginSummary{
			Name:        m.Name,
			Version:     m.Version,
			Author:      m.Author,
			Description: m.Description,
			Prefix:      m.Prefix,
		})
	}
	return out
}

// PluginByPrefix returns detail for the loaded plugin with the given
// prefix, if any.
func (i *Inspector) PluginByPrefix(prefix string) (PluginDetail, bool) {
	if i.host == nil {
		return PluginDetail{}, false
	}
	for _, m := range i.host.Loaded() {
		if m.Prefix != prefix {
			continue
		}
		return PluginDetail{
			PluginSummary: PluginSummary{
				Name:        m.Name,
				Version:     m.Version,
				Author:      m.Author,
				Description: m.Description,
				Prefix:      m.Prefix,
			},
			ProvidedSystems:    m.ProvidedSystems,
			ProvidedServices:   m.ProvidedServices,
			ProvidedComponents: m.ProvidedComponents,
		}, true
	}
	return PluginDetail{}, false
}

// Systems lists every registered system.
func (i *Inspector) Systems() []SystemSummary {
	infos := i.world.InspectSystems()
	out := make([]SystemSummary, len(infos))
	for idx, s := range infos {
		out[idx] = SystemSummary{Name: s.Name, Enabled: s.Enabled, Group: s.Group, PluginOwner: s.PluginOwner}
	}
	return out
}

// ComponentTypes lists every registered component type.
func (i *Inspector) ComponentTypes() []ComponentTypeSummary {
	infos := i.world.InspectComponentTypes()
	out := make([]ComponentTypeSummary, len(infos))
	for idx, c := range infos {
		out[idx] = ComponentTypeSummary{TypeName: c.TypeName, PluginOwner: c.PluginOwner}
	}
	return out
}

// Entity returns the component snapshot for e: one entry per component
// type (static or dynamic) currently attached.
func (i *Inspector) Entity(e ecs.Entity) []EntitySnapshot {
	snaps := i.world.InspectEntity(e)
	out := make([]EntitySnapshot, len(snaps))
	for idx, s := range snaps {
		out[idx] = EntitySnapshot{TypeName: s.TypeName, Data: s.Data, PluginOwner: s.PluginOwner, IsDynamic: s.IsDynamic}
	}
	return out
}

// Services lists every registered service.
func (i *Inspector) Services() []ServiceSummary {
	infos := i.world.InspectServices()
	out := make([]ServiceSummary, len(infos))
	for idx, s := range infos {
		out[idx] = ServiceSummary{TypeName: s.TypeName, PluginOwner: s.PluginOwner}
	}
	return out
}

// SetComponent sets data as e's component of the named type, via that
// type's vtable. data must already hold a value of that type; other
// payloads fail with ErrDeserializationFailed.
func (i *Inspector) SetComponent(e ecs.Entity, typeName string, data any) error {
	return i.world.SetComponentByName(e, typeName, data)
}

// RemoveComponent drops e's component of the named type, via its
// vtable. A no-op if e has none.
func (i *Inspector) RemoveComponent(e ecs.Entity, typeName string) error {
	return i.world.RemoveComponentByName(e, typeName)
}

// ServiceMethod is a single method a service exposes for dynamic invoke,
// including its declared parameter defaults.
type ServiceMethod struct {
	Name     string
	Params   []ServiceParam
	Invoke   func(params map[string]any) (any, error)
}

// ServiceParam describes one named parameter a service method accepts.
type ServiceParam struct {
	Name     string
	Default  any
	Required bool
}

// InvokeServiceMethod calls method.Invoke with params bound to the
// method's declared parameters, matching names case-insensitively. Declared defaults fill in
// missing optional parameters; a missing required parameter fails with
// ErrMissingParameter.
func InvokeServiceMethod(method ServiceMethod, params map[string]any) (any, error) {
	bound := make(map[string]any, len(method.Params))
	lower := make(map[string]any, len(params))
	for k, v := range params {
		lower[strings.ToLower(k)] = v
	}
	for _, p := range method.Params {
		if v, ok := lower[strings.ToLower(p.Name)]; ok {
			bound[p.Name] = v
			continue
		}
		if p.Required {
			return nil, fmt.Errorf("invoke %s: missing parameter %q: %w", method.Name, p.Name, ecserr.ErrMissingParameter)
		}
		bound[p.Name] = p.Default
	}
	return method.Invoke(bound)
}

// typeNameOf returns v's type name in the same reflect.Type.String form
// the ecs package uses as a component type's registered name, i.e. the
// name SetComponent expects for a payload like v.
func typeNameOf(v any) string {
	return reflect.TypeOf(v).String()
}
