package ecs

import "reflect"

// Group is one of the three fixed lifecycle phases a system runs in.
// Groups execute sequentially, in declaration order, once per tick.
type Group int

const (
	GroupInitialization Group = iota
	GroupSimulation
	GroupPresentation
)

// groupOrder is the fixed execution order of the three groups.
var groupOrder = [...]Group{GroupInitialization, GroupSimulation, GroupPresentation}

func (g Group) String() string {
	switch g {
	case GroupInitialization:
		return "Initialization"
	case GroupSimulation:
		return "Simulation"
	case GroupPresentation:
		return "Presentation"
	default:
		return "Simulation"
	}
}

// System is a unit of per-tick logic. Update returns an error if the
// system cannot complete its work; the scheduler never swallows it — it
// propagates straight out of World.Tick, matching the source's "a thrown
// exception propagates out of tick" policy (spec §4.6/§5).
type System interface {
	// Name uniquely identifies this system instance across the world.
	Name() string

	// Update advances this system's owned state by dt.
	Update(w *World, dt float64) error
}

// Depender is an optional interface a System can implement to declare
// name-based dependencies: "self depends on the system whose Name equals
// this string." Name-based edges apply only to the specifically named
// instance.
type Depender interface {
	Dependencies() []string
}

// Grouped is an optional interface a System can implement to declare which
// lifecycle phase it belongs to. Systems that don't implement it, or that
// return a value other than the three defined groups, run in
// GroupSimulation.
type Grouped interface {
	Group() Group
}

// TypeOrdered is an optional interface a System can implement to declare
// type-based ordering edges. After(T) means "run after every registered
// instance of type T"; Before(T) is the symmetric rule. Edges target
// concrete system types, resolved via reflect.Type of the instances
// actually registered — following the same "does this satisfy an optional
// interface" check World.AddSystem already used in the teacher engine for
// discovering a system's Name().
type TypeOrdered interface {
	After() []reflect.Type
	Before() []reflect.Type
}

type registeredSystem struct {
	sys     System
	owner   OwnerID
	enabled bool
	group   Group
	typ     reflect.Type
}

func groupOf(sys System) Group {
	if gs, ok := sys.(Grouped); ok {
		switch g := gs.Group(); g {
		case GroupInitialization, GroupSimulation, GroupPresentation:
			return g
		}
	}
	return GroupSimulation
}

func dependenciesOf(sys System) []string {
	if d, ok := sys.(Depender); ok {
		return d.Dependencies()
	}
	return nil
}

func typeEdgesOf(sys System) (after, before []reflect.Type) {
	if t, ok := sys.(TypeOrdered); ok {
		return t.After(), t.Before()
	}
	return nil, nil
}
