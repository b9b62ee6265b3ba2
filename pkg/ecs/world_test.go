package ecs

import "testing"

type Velocity struct {
	DX, DY float64
}

func TestCreateDestroyInvalidatesHandle(t *testing.T) {
	w := NewWorld(16, nil)
	e, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !w.IsValid(e) {
		t.Fatal("freshly created entity should be valid")
	}
	Set(w, e, Position{1, 2})

	w.DestroyEntity(e)
	if w.IsValid(e) {
		t.Fatal("handle should be invalid after destroy")
	}
	if _, err := Get[Position](w, e); err == nil {
		t.Fatal("expected error reading component of destroyed entity")
	}

	e2, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if e2.ID != e.ID {
		t.Fatalf("expected recycled ID %d, got %d", e.ID, e2.ID)
	}
	if e2.Generation == e.Generation {
		t.Fatal("recycled slot must bump generation")
	}
	if w.IsValid(e) {
		t.Fatal("stale handle must stay invalid even after slot reuse")
	}
}

func TestCapacityExceeded(t *testing.T) {
	w := NewWorld(2, nil) // only ID 1 is usable; ID 0 is reserved
	if _, err := w.CreateEntity(); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := w.CreateEntity(); err == nil {
		t.Fatal("expected capacity exceeded on second create")
	}
}

func TestOnDestroyHooksRunBeforeRemoval(t *testing.T) {
	w := NewWorld(8, nil)
	e, _ := w.CreateEntity()
	Set(w, e, Position{5, 5})

	var observed Position
	var sawComponent bool
	w.OnDestroy(e, func(entity Entity) {
		if v, err := Get[Position](w, entity); err == nil {
			observed = v
			sawComponent = true
		}
	})

	w.DestroyEntity(e)
	if !sawComponent {
		t.Fatal("on-destroy hook should observe the component before removal")
	}
	if observed != (Position{5, 5}) {
		t.Fatalf("unexpected component snapshot: %+v", observed)
	}
}

func TestQuerySmallestDriver(t *testing.T) {
	// Velocity's column (3) is smaller than Position's (13), so it drives
	// the query. This test checks the result set only; it does not observe
	// which column was chosen as the driver.
	w := NewWorld(32, nil)

	var withBoth []Entity
	for i := 0; i < 10; i++ {
		e, _ := w.CreateEntity()
		Set(w, e, Position{X: float64(i)})
	}
	for i := 0; i < 3; i++ {
		e, _ := w.CreateEntity()
		Set(w, e, Position{X: float64(100 + i)})
		Set(w, e, Velocity{DX: 1})
		withBoth = append(withBoth, e)
	}

	got := Query2[Position, Velocity](w)
	if len(got) != len(withBoth) {
		t.Fatalf("expected %d entities with both components, got %d", len(withBoth), len(got))
	}
	for _, e := range withBoth {
		found := false
		for _, g := range got {
			if g == e {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %+v in query result", e)
		}
	}
}

func TestRemoveComponentIdempotent(t *testing.T) {
	w := NewWorld(8, nil)
	e, _ := w.CreateEntity()
	Set(w, e, Position{1, 1})

	RemoveComponent[Position](w, e)
	RemoveComponent[Position](w, e)

	if Has[Position](w, e) {
		t.Fatal("expected component gone after remove")
	}
}

func TestPauseDoesNotAdvanceTickCount(t *testing.T) {
	w := NewWorld(8, nil)
	w.Pause()
	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if w.TickCount() != 0 {
		t.Fatalf("expected tick count 0 while paused, got %d", w.TickCount())
	}

	w.Resume()
	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if w.TickCount() != 1 {
		t.Fatalf("expected tick count 1 after resume+tick, got %d", w.TickCount())
	}
}

func TestPausedTickStillRecordsLastDelta(t *testing.T) {
	w := NewWorld(8, nil)
	w.Pause()
	if err := w.Tick(0.25); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if w.LastDelta() != 0.25 {
		t.Fatalf("expected last delta 0.25 recorded while paused, got %v", w.LastDelta())
	}
}

func TestQueryMissingColumnYieldsNothing(t *testing.T) {
	w := NewWorld(8, nil)
	e, _ := w.CreateEntity()
	Set(w, e, Position{1, 1})

	got := Query2[Position, Velocity](w)
	if len(got) != 0 {
		t.Fatalf("expected no results when one component type has never been used, got %d", len(got))
	}
}
