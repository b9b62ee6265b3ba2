package ecs

import (
	"fmt"

	"github.com/opd-ai/ecshost/pkg/ecserr"
)

// Column is a sparse-set backed store for every live instance of one
// component type T. It gives O(1) set/has/get/remove and packed,
// cache-friendly iteration over its dense region.
//
// Invariants (see spec §4.1): for any alive entity e present in the
// column, entities[sparse[e.ID]] == e, and sparse[entities[i].ID] == i for
// every i < count. Removal is swap-and-pop: the tail entity's sparse slot
// is rewritten to its new position.
type Column[T any] struct {
	dense    []T
	entities []Entity
	sparse   []int32 // indexed by entity ID; -1 means absent
	count    int
}

// NewColumn creates an empty column sized for maxEntities distinct entity
// IDs. The sparse array is allocated once at this size; dense storage
// starts empty and doubles on demand (seeded at 4).
func NewColumn[T any](maxEntities int) *Column[T] {
	sparse := make([]int32, maxEntities)
	for i := range sparse {
		sparse[i] = -1
	}
	return &Column[T]{sparse: sparse}
}

func (c *Column[T]) inRange(e Entity) bool {
	return !e.IsNull() && int(e.ID) < len(c.sparse)
}

// Has reports whether e currently owns a component in this column.
// Validity is determined purely by (id, generation) matching the stored
// owner handle; the column does not know which world e claims to belong
// to, so cross-world handle reuse is the caller's responsibility.
func (c *Column[T]) Has(e Entity) bool {
	if !c.inRange(e) {
		return false
	}
	idx := c.sparse[e.ID]
	if idx < 0 || int(idx) >= c.count {
		return false
	}
	return c.entities[idx] == e
}

func (c *Column[T]) grow() {
	if c.count < len(c.dense) {
		return
	}
	newCap := len(c.dense) * 2
	if newCap == 0 {
		newCap = 4
	}
	dense := make([]T, newCap)
	copy(dense, c.dense)
	c.dense = dense

	entities := make([]Entity, newCap)
	copy(entities, c.entities)
	c.entities = entities
}

// Set inserts or overwrites e's component with v. It fails only if e is
// the null entity or out of the column's entity-ID range.
func (c *Column[T]) Set(e Entity, v T) error {
	if !c.inRange(e) {
		return fmt.Errorf("set component on entity %+v: %w", e, ecserr.ErrInvalidEntity)
	}
	if c.Has(e) {
		c.dense[c.sparse[e.ID]] = v
		return nil
	}
	c.grow()
	c.dense[c.count] = v
	c.entities[c.count] = e
	c.sparse[e.ID] = int32(c.count)
	c.count++
	return nil
}

// Get returns a copy of e's component, or ErrComponentNotFound.
func (c *Column[T]) Get(e Entity) (T, error) {
	var zero T
	if !c.Has(e) {
		return zero, fmt.Errorf("get component on entity %+v: %w", e, ecserr.ErrComponentNotFound)
	}
	return c.dense[c.sparse[e.ID]], nil
}

// GetMut returns an exclusive pointer into the dense array for e's
// component, or ErrComponentNotFound. The returned pointer is invalidated
// by any subsequent Remove of a different entity in this column (swap-pop
// may relocate the backing slot), so callers must not hold it across
// mutations.
func (c *Column[T]) GetMut(e Entity) (*T, error) {
	if !c.Has(e) {
		return nil, fmt.Errorf("get-mut component on entity %+v: %w", e, ecserr.ErrComponentNotFound)
	}
	return &c.dense[c.sparse[e.ID]], nil
}

// Remove drops e's component via swap-and-pop. A no-op if e has none.
func (c *Column[T]) Remove(e Entity) {
	if !c.Has(e) {
		return
	}
	d := c.sparse[e.ID]
	last := int32(c.count - 1)
	if d != last {
		c.dense[d] = c.dense[last]
		c.entities[d] = c.entities[last]
		c.sparse[c.entities[d].ID] = d
	}
	var zero T
	c.dense[last] = zero
	c.entities[last] = Entity{}
	c.sparse[e.ID] = -1
	c.count--
}

// Len returns the number of live entries, i.e. the size of the dense
// region.
func (c *Column[T]) Len() int {
	return c.count
}

// Entities yields the column's owners in their current (stable-between-
// mutations) packed order.
func (c *Column[T]) Entities() []Entity {
	return c.entities[:c.count]
}

// Components yields the column's values in the same order as Entities.
func (c *Column[T]) Components() []T {
	return c.dense[:c.count]
}

// removeEntity and hasEntity satisfy the type-erased eraser interface so
// World can drive generic removal and queries without knowing T.
func (c *Column[T]) removeEntity(e Entity) { c.Remove(e) }
func (c *Column[T]) hasEntity(e Entity) bool { return c.Has(e) }
func (c *Column[T]) entitySlice() []Entity   { return c.Entities() }
func (c *Column[T]) size() int               { return c.count }
