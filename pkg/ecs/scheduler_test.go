package ecs

import (
	"errors"
	"reflect"
	"testing"

	"github.com/opd-ai/ecshost/pkg/ecserr"
)

// mockSystem is a bare-bones System used across scheduler tests. It
// records its own invocation in a shared trace slice so tests can assert
// on execution order.
type mockSystem struct {
	name  string
	group Group
	deps  []string
	after []reflect.Type
	trace *[]string
}

func (m *mockSystem) Name() string { return m.name }
func (m *mockSystem) Update(w *World, dt float64) error {
	*m.trace = append(*m.trace, m.name)
	return nil
}
func (m *mockSystem) Group() Group             { return m.group }
func (m *mockSystem) Dependencies() []string   { return m.deps }
func (m *mockSystem) After() []reflect.Type    { return m.after }
func (m *mockSystem) Before() []reflect.Type   { return nil }

// physicsSystem and renderSystem are distinct concrete types (unlike
// mockSystem, which every name-based test shares), needed because
// type-based edges key off reflect.TypeOf(sys) — two *mockSystem
// instances can never express "after every instance of the OTHER one".
type physicsSystem struct{ trace *[]string }

func (s *physicsSystem) Name() string { return "Physics" }
func (s *physicsSystem) Update(w *World, dt float64) error {
	*s.trace = append(*s.trace, s.Name())
	return nil
}

type renderSystem struct{ trace *[]string }

func (s *renderSystem) Name() string { return "Render" }
func (s *renderSystem) Update(w *World, dt float64) error {
	*s.trace = append(*s.trace, s.Name())
	return nil
}
func (s *renderSystem) After() []reflect.Type  { return []reflect.Type{reflect.TypeOf(&physicsSystem{})} }
func (s *renderSystem) Before() []reflect.Type { return nil }

func TestSchedulerOrdersAcrossGroupsAndDependencies(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string

	a := &mockSystem{name: "A", group: GroupInitialization, trace: &trace}
	c := &mockSystem{name: "C", group: GroupSimulation, trace: &trace}
	b := &mockSystem{name: "B", group: GroupSimulation, deps: []string{"C"}, trace: &trace}
	d := &mockSystem{name: "D", group: GroupPresentation, deps: []string{"B"}, trace: &trace}

	for _, sys := range []System{a, b, c, d} {
		if err := w.RegisterSystem(sys, ""); err != nil {
			t.Fatalf("register %s: %v", sys.Name(), err)
		}
	}

	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}

	want := []string{"A", "C", "B", "D"}
	if len(trace) != len(want) {
		t.Fatalf("expected %v, got %v", want, trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, trace)
		}
	}
}

func TestSchedulerTypeBasedAfterOrdering(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string

	render := &renderSystem{trace: &trace}
	physics := &physicsSystem{trace: &trace}

	// Register out of the order we expect them to run in, so the
	// assertion actually exercises the After() edge rather than
	// insertion order.
	if err := w.RegisterSystem(render, ""); err != nil {
		t.Fatalf("register render: %v", err)
	}
	if err := w.RegisterSystem(physics, ""); err != nil {
		t.Fatalf("register physics: %v", err)
	}

	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}

	want := []string{"Physics", "Render"}
	if len(trace) != len(want) || trace[0] != want[0] || trace[1] != want[1] {
		t.Fatalf("expected every Physics instance to run before Render, got %v", trace)
	}
}

func TestSchedulerTypeBasedAfterUnresolvedType(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string
	render := &renderSystem{trace: &trace}

	if err := w.RegisterSystem(render, ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := w.Tick(0.016)
	if err == nil {
		t.Fatal("expected unresolved dependency error for an after-type with no registered instance")
	}
	if !errors.Is(err, ecserr.ErrUnresolvedDependency) {
		t.Fatalf("expected ErrUnresolvedDependency, got %v", err)
	}
}

func TestSchedulerUnresolvedDependency(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string
	a := &mockSystem{name: "A", group: GroupSimulation, deps: []string{"Ghost"}, trace: &trace}

	if err := w.RegisterSystem(a, ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := w.Tick(0.016)
	if err == nil {
		t.Fatal("expected unresolved dependency error")
	}
	if !errors.Is(err, ecserr.ErrUnresolvedDependency) {
		t.Fatalf("expected ErrUnresolvedDependency, got %v", err)
	}
}

func TestSchedulerCycleDetected(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string
	a := &mockSystem{name: "A", group: GroupSimulation, deps: []string{"B"}, trace: &trace}
	b := &mockSystem{name: "B", group: GroupSimulation, deps: []string{"A"}, trace: &trace}

	for _, sys := range []System{a, b} {
		if err := w.RegisterSystem(sys, ""); err != nil {
			t.Fatalf("register %s: %v", sys.Name(), err)
		}
	}

	err := w.Tick(0.016)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !errors.Is(err, ecserr.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestSchedulerDuplicateName(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string
	a := &mockSystem{name: "A", group: GroupSimulation, trace: &trace}
	a2 := &mockSystem{name: "A", group: GroupSimulation, trace: &trace}

	if err := w.RegisterSystem(a, ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := w.RegisterSystem(a2, "")
	if !errors.Is(err, ecserr.ErrDuplicateSystemName) {
		t.Fatalf("expected ErrDuplicateSystemName, got %v", err)
	}
}

func TestSchedulerDisabledSystemSkipped(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string
	a := &mockSystem{name: "A", group: GroupSimulation, trace: &trace}
	w.RegisterSystem(a, "")
	w.EnableSystemByName("A", false)

	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(trace) != 0 {
		t.Fatalf("disabled system should not run, trace=%v", trace)
	}
}

func TestSchedulerPauseSuppressesTickNotStep(t *testing.T) {
	w := NewWorld(8, nil)
	var trace []string
	a := &mockSystem{name: "A", group: GroupSimulation, trace: &trace}
	w.RegisterSystem(a, "")
	w.Pause()

	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(trace) != 0 {
		t.Fatalf("paused tick should not run systems, trace=%v", trace)
	}

	if err := w.Step(0.016); err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(trace) != 1 {
		t.Fatalf("step should force exactly one run, trace=%v", trace)
	}
}
