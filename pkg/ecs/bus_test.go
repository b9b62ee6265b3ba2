package ecs

import "testing"

type DamageEvent struct {
	Target Entity
	Amount int
}

type damageReaderSystem struct {
	name string
	seen *[]int
}

func (s *damageReaderSystem) Name() string { return s.name }
func (s *damageReaderSystem) Update(w *World, dt float64) error {
	for _, ev := range ReadMessages[DamageEvent](w) {
		*s.seen = append(*s.seen, ev.Amount)
	}
	return nil
}

func TestBusScopedToOneTick(t *testing.T) {
	w := NewWorld(8, nil)
	e, _ := w.CreateEntity()

	Publish(w, DamageEvent{Target: e, Amount: 5})
	Publish(w, DamageEvent{Target: e, Amount: 3})

	var seen []int
	reader := &damageReaderSystem{name: "reader", seen: &seen}
	if err := w.RegisterSystem(reader, ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(seen) != 2 || seen[0] != 5 || seen[1] != 3 {
		t.Fatalf("expected [5 3], got %v", seen)
	}

	seen = nil
	if err := w.Tick(0.016); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if len(seen) != 0 {
		t.Fatalf("messages must not survive past the tick they were cleared in, got %v", seen)
	}
}

func TestBusMultipleReadersSeeSameMessages(t *testing.T) {
	w := NewWorld(8, nil)
	Publish(w, DamageEvent{Amount: 7})

	var seenA, seenB []int
	a := &damageReaderSystem{name: "a", seen: &seenA}
	b := &damageReaderSystem{name: "b", seen: &seenB}
	w.RegisterSystem(a, "")
	w.RegisterSystem(b, "")

	if err := w.Tick(0.016); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(seenA) != 1 || len(seenB) != 1 {
		t.Fatalf("both readers should observe the message, got a=%v b=%v", seenA, seenB)
	}
}
