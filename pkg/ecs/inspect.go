package ecs

import "fmt"

// Status mirrors the read-only world-status shape the inspection surface
// exposes. It lives in this package (rather than pkg/inspect) because
// only World has direct access to the counters involved.
type Status struct {
	MaxEntities    int
	RecycledCount  int
	SystemCount    int
	ComponentTypes int
	TickCount      uint64
	Paused         bool
}

// InspectStatus returns the world's top-level counters.
func (w *World) InspectStatus() Status {
	return Status{
		MaxEntities:    w.maxEntities,
		RecycledCount:  w.destroyed,
		SystemCount:    len(w.sched.systems),
		ComponentTypes: len(w.vtables),
		TickCount:      w.sched.tickCount,
		Paused:         w.sched.paused,
	}
}

// SystemInfo is the list-view shape for one registered system.
type SystemInfo struct {
	Name        string
	Enabled     bool
	Group       string
	PluginOwner string
}

// InspectSystems lists every registered system, in registration order.
func (w *World) InspectSystems() []SystemInfo {
	out := make([]SystemInfo, 0, len(w.sched.systems))
	for _, rs := range w.sched.systems {
		out = append(out, SystemInfo{
			Name:        rs.sys.Name(),
			Enabled:     rs.enabled,
			Group:       rs.group.String(),
			PluginOwner: string(rs.owner),
		})
	}
	return out
}

// ComponentTypeInfo is the list-view shape for one registered component
// type.
type ComponentTypeInfo struct {
	TypeName    string
	PluginOwner string
}

// InspectComponentTypes lists every registered component type.
func (w *World) InspectComponentTypes() []ComponentTypeInfo {
	out := make([]ComponentTypeInfo, 0, len(w.vtables))
	for _, vt := range w.vtables {
		out = append(out, ComponentTypeInfo{TypeName: vt.typeName, PluginOwner: string(vt.owner)})
	}
	return out
}

// ComponentSnapshot describes one component instance attached to an
// entity, as exposed by the inspection surface.
type ComponentSnapshot struct {
	TypeName    string
	Data        any
	PluginOwner string
	IsDynamic   bool
}

// InspectEntity returns a snapshot of every component attached to e,
// both statically typed (via vtables) and dynamic.
func (w *World) InspectEntity(e Entity) []ComponentSnapshot {
	if !w.IsValid(e) {
		return nil
	}
	var out []ComponentSnapshot
	for t, vt := range w.vtables {
		col, ok := w.columns[t]
		if !ok || !col.hasEntity(e) {
			continue
		}
		data, ok := vt.snapshot(w, e)
		if !ok {
			continue
		}
		out = append(out, ComponentSnapshot{TypeName: vt.typeName, Data: data, PluginOwner: string(vt.owner)})
	}
	for name, dv := range w.dynamic.All(e) {
		out = append(out, ComponentSnapshot{TypeName: name, Data: dv.Data, IsDynamic: true})
	}
	return out
}

// ServiceInfo is the list-view shape for one registered service.
type ServiceInfo struct {
	TypeName    string
	PluginOwner string
}

// InspectServices lists every registered service.
func (w *World) InspectServices() []ServiceInfo {
	out := make([]ServiceInfo, 0, len(w.services.byType))
	for t, entry := range w.services.byType {
		out = append(out, ServiceInfo{TypeName: t.String(), PluginOwner: string(entry.owner)})
	}
	return out
}

// SetComponentByName sets data as e's component of the named type, via
// that type's vtable. data must already hold a value of that type; it is
// not decoded from any other form. Fails if the type has never been
// registered.
func (w *World) SetComponentByName(e Entity, typeName string, data any) error {
	vt, ok := w.vtableByName(typeName)
	if !ok {
		return fmt.Errorf("set component %q: unknown component type", typeName)
	}
	return vt.parse(w, e, data)
}

// RemoveComponentByName drops e's component of the named type, via its
// vtable. A no-op if e has none or the type was never registered.
func (w *World) RemoveComponentByName(e Entity, typeName string) error {
	vt, ok := w.vtableByName(typeName)
	if !ok {
		return nil
	}
	vt.remove(w, e)
	return nil
}

func (w *World) vtableByName(typeName string) (componentVTable, bool) {
	for _, vt := range w.vtables {
		if vt.typeName == typeName {
			return vt, true
		}
	}
	return componentVTable{}, false
}
