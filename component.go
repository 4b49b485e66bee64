package shirushi

import "unsafe"

// GetComponent retrieves a pointer to the component of type `T` for the given
// entity. It returns nil when the entity is invalid or lacks the component.
func GetComponent[T any](w *World, e Entity) *T {
	if !w.IsValid(e) {
		return nil
	}
	id, ok := lookupCompTypeID[T](w)
	if !ok {
		return nil
	}
	meta := w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.has(id) {
		return nil
	}
	c := a.chunks[meta.chunkIndex]
	return (*T)(unsafe.Add(c.compPointers[id], uintptr(meta.index)*a.compSizes[id]))
}

// HasComponent reports whether a live entity carries a component of type `T`.
func HasComponent[T any](w *World, e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	id, ok := lookupCompTypeID[T](w)
	if !ok {
		return false
	}
	a := w.archetypes.archetypes[w.entities.metas[e.ID].archetypeIndex]
	return a.mask.has(id)
}

// ComponentCount returns how many components a live entity carries, or -1
// for an invalid entity.
func ComponentCount(w *World, e Entity) int {
	if !w.IsValid(e) {
		return -1
	}
	return len(w.archetypes.archetypes[w.entities.metas[e.ID].archetypeIndex].compOrder)
}

// SetComponent adds a component of type `T` with the given value to an entity,
// or updates it if the component already exists. Invalid entities are
// ignored.
func SetComponent[T any](w *World, e Entity, val T) {
	if !w.IsValid(e) {
		return
	}
	c := &w.collector
	c.reset()
	Put(c, val)
	w.insertCollected(e, c)
}

// RemoveComponent removes the component of type `T` from the specified entity.
// If the entity is invalid or does not have the component, this function
// does nothing.
func RemoveComponent[T any](w *World, e Entity) {
	if !w.IsValid(e) {
		return
	}
	id, ok := lookupCompTypeID[T](w)
	if !ok {
		return
	}
	a := w.archetypes.archetypes[w.entities.metas[e.ID].archetypeIndex]
	if !a.mask.has(id) {
		return
	}
	newMask := a.mask
	newMask.unset(id)
	w.moveEntity(e, a, w.getOrCreateArchetype(newMask))
}
