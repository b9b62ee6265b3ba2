package ecs

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ecshost/pkg/ecserr"
	"github.com/opd-ai/ecshost/pkg/logging"
)

// World is the single owner of every entity, component column, message
// bus, service, and system in a simulation. It has no knowledge of
// rendering, persistence, or network transport; an embedder drives it by
// calling Tick (or Step) once per frame.
type World struct {
	maxEntities int

	alive      []bool
	generation []int32
	freeList   []uint32
	nextID     uint32
	destroyed  int

	columns   map[reflect.Type]eraser
	vtables   map[reflect.Type]componentVTable
	dynamic   *DynamicColumn
	buses     map[reflect.Type]busEraser
	services  *serviceRegistry
	onDestroy *onDestroyColumn
	functions map[string]EntityFunc

	sched   *scheduler
	plugins map[string]PluginHandle

	logger *logrus.Entry
}

// NewWorld creates a world with entity IDs 0..maxEntities-1. ID 0 is
// reserved for NullEntity, so at most maxEntities-1 entities are alive at
// once. logger may be nil, in which case the world logs nothing.
func NewWorld(maxEntities int, logger *logrus.Entry) *World {
	return &World{
		maxEntities: maxEntities,
		alive:       make([]bool, maxEntities),
		generation:  make([]int32, maxEntities),
		columns:     make(map[reflect.Type]eraser),
		vtables:     make(map[reflect.Type]componentVTable),
		dynamic:     NewDynamicColumn(),
		buses:       make(map[reflect.Type]busEraser),
		services:    newServiceRegistry(),
		onDestroy:   newOnDestroyColumn(),
		functions:   make(map[string]EntityFunc),
		sched:       newScheduler(),
		plugins:     make(map[string]PluginHandle),
		logger:      logger,
	}
}

// CreateEntity allocates a new entity, reusing the most recently freed ID
// if one exists, or growing the alive set if not. Fails with
// ErrCapacityExceeded once all maxEntities-1 usable IDs are in use
// simultaneously.
func (w *World) CreateEntity() (Entity, error) {
	if len(w.freeList) > 0 {
		id := w.freeList[len(w.freeList)-1]
		w.freeList = w.freeList[:len(w.freeList)-1]
		w.alive[id] = true
		return Entity{ID: id, Generation: w.generation[id]}, nil
	}
	if w.nextID == 0 {
		w.nextID = 1 // ID 0 is reserved for NullEntity
	}
	if int(w.nextID) >= w.maxEntities {
		if w.logger != nil {
			w.logger.WithField("max_entities", w.maxEntities).Warn("entity capacity exceeded")
		}
		return NullEntity, fmt.Errorf("create entity: %w", ecserr.ErrCapacityExceeded)
	}
	id := w.nextID
	w.nextID++
	w.alive[id] = true
	return Entity{ID: id, Generation: w.generation[id]}, nil
}

// IsValid reports whether e refers to a currently alive entity: its ID is
// in range, marked alive, and its generation matches the slot's current
// generation.
func (w *World) IsValid(e Entity) bool {
	if e.IsNull() || int(e.ID) >= len(w.alive) {
		return false
	}
	return w.alive[e.ID] && w.generation[e.ID] == e.Generation
}

// DestroyEntity tears e down: runs its on-destroy hooks (while its
// components are still readable), removes it from every column and the
// dynamic column, marks the slot dead, bumps its generation so any
// outstanding copy of the handle becomes invalid, and returns the ID to
// the free list.
func (w *World) DestroyEntity(e Entity) {
	if !w.IsValid(e) {
		return
	}
	w.onDestroy.drain(e)
	for _, col := range w.columns {
		col.removeEntity(e)
	}
	w.dynamic.RemoveEntity(e)
	w.alive[e.ID] = false
	w.generation[e.ID]++
	w.destroyed++
	w.freeList = append(w.freeList, e.ID)

	if w.logger != nil {
		logging.EntityLogger(w.logger, e.ID, e.Generation).Debug("entity destroyed")
	}
}

// RegisterComponentTypesByOwner is not needed: component types are swept
// by owner through RemoveByOwner below, which drops the vtable and the
// backing column together.

// RemoveByOwner tears down every system, service, and component-type
// vtable (plus its backing column) tagged with owner. Intended as the
// plugin host's defensive sweep after a plugin's own Uninitialize has
// run; a well-behaved plugin leaves nothing here to find.
func (w *World) RemoveByOwner(owner OwnerID) {
	w.RemoveSystemsByOwner(owner)
	w.services.removeByOwner(owner)
	for t, vt := range w.vtables {
		if vt.owner != owner {
			continue
		}
		delete(w.vtables, t)
		delete(w.columns, t)
	}
	delete(w.plugins, string(owner))
}

// Pause suppresses Tick from running any system. Step still runs
// regardless of pause state, matching the source's "single-step while
// paused" debugging affordance.
func (w *World) Pause() { w.sched.paused = true }

// Resume clears a prior Pause.
func (w *World) Resume() { w.sched.paused = false }

// IsPaused reports whether Tick is currently suppressed.
func (w *World) IsPaused() bool { return w.sched.paused }

// TickCount returns the number of completed Tick/Step calls.
func (w *World) TickCount() uint64 { return w.sched.tickCount }

// LastDelta returns the dt passed to the most recent Tick/Step call that
// either completed or was suppressed by pause. A call that fails with an
// error does not record its dt.
func (w *World) LastDelta() float64 { return w.sched.lastDelta }

// Tick runs one frame: Initialization, then Simulation, then Presentation
// systems, each group in its resolved topological order, skipping
// disabled systems. A system error propagates immediately, aborting the
// rest of the tick. Once systems have started running, every registered
// bus is cleared when the tick ends, successfully or not; a sort failure
// (unresolved dependency or cycle) returns before any system runs and
// leaves the buses untouched. While paused, Tick runs nothing and only
// records dt; use Step to force a single frame through regardless.
func (w *World) Tick(dt float64) error {
	if w.sched.paused {
		w.sched.lastDelta = dt
		return nil
	}
	return w.runTick(dt)
}

// Step forces exactly one frame to run even while paused.
func (w *World) Step(dt float64) error {
	return w.runTick(dt)
}

func (w *World) runTick(dt float64) error {
	if w.sched.dirty {
		if err := w.resort(); err != nil {
			return err
		}
	}

	defer w.clearBuses()

	for _, g := range groupOrder {
		for _, rs := range w.sched.sorted[g] {
			if !rs.enabled {
				continue
			}
			if err := rs.sys.Update(w, dt); err != nil {
				return fmt.Errorf("system %q (%s): %w", rs.sys.Name(), g, err)
			}
		}
	}

	w.sched.tickCount++
	w.sched.lastDelta = dt
	return nil
}

func (w *World) clearBuses() {
	for _, b := range w.buses {
		b.clear()
	}
}
