package ecs

import (
	"fmt"
	"reflect"

	"github.com/opd-ai/ecshost/pkg/ecserr"
	"github.com/opd-ai/ecshost/pkg/logging"
)

// scheduler owns system registration and the per-group topological order.
// It is deliberately simple: groups execute in fixed order, and each
// group's member list is re-sorted only when dirty, using Kahn's
// algorithm with insertion-order tie-breaking.
type scheduler struct {
	systems    []*registeredSystem // insertion order, all groups mixed
	byName     map[string]*registeredSystem
	sorted     map[Group][]*registeredSystem
	dirty      bool
	tickCount  uint64
	paused     bool
	lastDelta  float64
}

func newScheduler() *scheduler {
	return &scheduler{
		byName: make(map[string]*registeredSystem),
		sorted: make(map[Group][]*registeredSystem),
	}
}

// RegisterSystem adds sys to the world, rejecting duplicate names. The
// scheduler is marked dirty so the next tick re-sorts before running.
func (w *World) RegisterSystem(sys System, owner OwnerID) error {
	name := sys.Name()
	if _, exists := w.sched.byName[name]; exists {
		return fmt.Errorf("register system %q: %w", name, ecserr.ErrDuplicateSystemName)
	}
	rs := &registeredSystem{
		sys:     sys,
		owner:   owner,
		enabled: true,
		group:   groupOf(sys),
		typ:     reflect.TypeOf(sys),
	}
	w.sched.systems = append(w.sched.systems, rs)
	w.sched.byName[name] = rs
	w.sched.dirty = true
	if w.logger != nil {
		logging.SystemLogger(w.logger, name, rs.group.String()).Debug("system registered")
	}
	return nil
}

// RemoveSystemByName removes the named system, if registered.
func (w *World) RemoveSystemByName(name string) {
	rs, ok := w.sched.byName[name]
	if !ok {
		return
	}
	delete(w.sched.byName, name)
	w.sched.systems = removeRegisteredSystem(w.sched.systems, rs)
	w.sched.dirty = true
}

// RemoveSystem removes every registered instance of type T.
func RemoveSystem[T System](w *World) {
	target := reflect.TypeFor[T]()
	var kept []*registeredSystem
	for _, rs := range w.sched.systems {
		if rs.typ == target {
			delete(w.sched.byName, rs.sys.Name())
			continue
		}
		kept = append(kept, rs)
	}
	w.sched.systems = kept
	w.sched.dirty = true
}

// RemoveSystemsByOwner removes every system tagged with owner. A
// defensive sweep the plugin host runs after a plugin's own Uninitialize,
// which should already have deregistered everything it owns.
func (w *World) RemoveSystemsByOwner(owner OwnerID) {
	var kept []*registeredSystem
	for _, rs := range w.sched.systems {
		if rs.owner == owner {
			delete(w.sched.byName, rs.sys.Name())
			continue
		}
		kept = append(kept, rs)
	}
	w.sched.systems = kept
	w.sched.dirty = true
}

// EnableSystemByName toggles whether the named system runs on tick.
func (w *World) EnableSystemByName(name string, enabled bool) {
	if rs, ok := w.sched.byName[name]; ok {
		rs.enabled = enabled
	}
}

// EnableSystem toggles every registered instance of type T.
func EnableSystem[T System](w *World, enabled bool) {
	target := reflect.TypeFor[T]()
	for _, rs := range w.sched.systems {
		if rs.typ == target {
			rs.enabled = enabled
		}
	}
}

func removeRegisteredSystem(list []*registeredSystem, rs *registeredSystem) []*registeredSystem {
	kept := list[:0]
	for _, s := range list {
		if s != rs {
			kept = append(kept, s)
		}
	}
	return kept
}

// resort recomputes the per-group execution order for every group that has
// at least one member, failing fast on the first group with an unresolved
// dependency or a cycle.
func (w *World) resort() error {
	byGroup := make(map[Group][]*registeredSystem)
	for _, rs := range w.sched.systems {
		byGroup[rs.group] = append(byGroup[rs.group], rs)
	}

	sorted := make(map[Group][]*registeredSystem, len(byGroup))
	for _, g := range groupOrder {
		members := byGroup[g]
		if len(members) == 0 {
			continue
		}
		order, err := sortGroup(members)
		if err != nil {
			return err
		}
		sorted[g] = order
	}

	w.sched.sorted = sorted
	w.sched.dirty = false
	return nil
}

// sortGroup topologically sorts one group's members using Kahn's
// algorithm. Ties (equal in-degree) are broken by insertion order: each
// pass scans members front-to-back, so a node freed earlier in a pass is
// emitted before one later in the list that is also newly free.
func sortGroup(members []*registeredSystem) ([]*registeredSystem, error) {
	nameIndex := make(map[string]*registeredSystem, len(members))
	typeIndex := make(map[reflect.Type][]*registeredSystem)
	for _, rs := range members {
		nameIndex[rs.sys.Name()] = rs
		typeIndex[rs.typ] = append(typeIndex[rs.typ], rs)
	}

	inDegree := make(map[*registeredSystem]int, len(members))
	adj := make(map[*registeredSystem][]*registeredSystem)

	addEdge := func(from, to *registeredSystem) {
		adj[from] = append(adj[from], to)
		inDegree[to]++
	}

	for _, rs := range members {
		for _, depName := range dependenciesOf(rs.sys) {
			target, ok := nameIndex[depName]
			if !ok {
				return nil, fmt.Errorf("system %q depends on unregistered system %q: %w",
					rs.sys.Name(), depName, ecserr.ErrUnresolvedDependency)
			}
			addEdge(target, rs)
		}

		after, before := typeEdgesOf(rs.sys)
		for _, t := range after {
			targets, ok := typeIndex[t]
			if !ok || len(targets) == 0 {
				return nil, fmt.Errorf("system %q must run after unregistered type %s: %w",
					rs.sys.Name(), t, ecserr.ErrUnresolvedDependency)
			}
			for _, target := range targets {
				addEdge(target, rs)
			}
		}
		for _, t := range before {
			targets, ok := typeIndex[t]
			if !ok || len(targets) == 0 {
				return nil, fmt.Errorf("system %q must run before unregistered type %s: %w",
					rs.sys.Name(), t, ecserr.ErrUnresolvedDependency)
			}
			for _, target := range targets {
				addEdge(rs, target)
			}
		}
	}

	visited := make(map[*registeredSystem]bool, len(members))
	result := make([]*registeredSystem, 0, len(members))
	for len(result) < len(members) {
		progressed := false
		for _, rs := range members {
			if visited[rs] || inDegree[rs] > 0 {
				continue
			}
			visited[rs] = true
			result = append(result, rs)
			progressed = true
			for _, dependent := range adj[rs] {
				inDegree[dependent]--
			}
		}
		if !progressed {
			break
		}
	}

	if len(result) < len(members) {
		var residual []string
		for _, rs := range members {
			if !visited[rs] {
				residual = append(residual, rs.sys.Name())
			}
		}
		return nil, fmt.Errorf("cycle among systems %v: %w", residual, ecserr.ErrCycleDetected)
	}
	return result, nil
}
