package ecs

import "reflect"

// queryEntities implements the world's query planner: look up each
// requested type's column; if any is missing, yield nothing. Pick the
// smallest column as the driver, then for each of its entities check
// membership in every other requested column, bounding the work to
// |smallest|*(k-1) membership probes for k requested types.
func queryEntities(w *World, types []reflect.Type) []Entity {
	if len(types) == 0 {
		return nil
	}
	columns := make([]eraser, len(types))
	for i, t := range types {
		col, ok := w.columns[t]
		if !ok {
			return nil
		}
		columns[i] = col
	}

	driver := 0
	for i := 1; i < len(columns); i++ {
		if columns[i].size() < columns[driver].size() {
			driver = i
		}
	}

	var result []Entity
	for _, e := range columns[driver].entitySlice() {
		ok := true
		for i, col := range columns {
			if i == driver {
				continue
			}
			if !col.hasEntity(e) {
				ok = false
				break
			}
		}
		if ok {
			result = append(result, e)
		}
	}
	return result
}

// QueryTypes returns every entity holding a component of every given
// reflect.Type. Used by the inspection/dynamic-invoke surface, which knows
// component types only by name at runtime.
func QueryTypes(w *World, types ...reflect.Type) []Entity {
	return queryEntities(w, types)
}

// Query1 returns every entity holding a component of type A.
func Query1[A any](w *World) []Entity {
	return queryEntities(w, []reflect.Type{reflect.TypeFor[A]()})
}

// Query2 returns every entity holding components of types A and B.
func Query2[A, B any](w *World) []Entity {
	return queryEntities(w, []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()})
}

// Query3 returns every entity holding components of types A, B, and C.
func Query3[A, B, C any](w *World) []Entity {
	return queryEntities(w, []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()})
}

// Query4 returns every entity holding components of types A, B, C, and D.
func Query4[A, B, C, D any](w *World) []Entity {
	return queryEntities(w, []reflect.Type{
		reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D](),
	})
}
