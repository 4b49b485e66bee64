package shirushi

import (
	"fmt"
	"iter"
	"unsafe"
)

// CreateEntityWith creates a new entity carrying every component of b. The
// entity is placed directly into its final archetype.
func (w *World) CreateEntityWith(b Bundle) (Entity, error) {
	c, err := w.collect(b)
	if err != nil {
		return Entity{}, err
	}
	e := w.allocEntity()
	w.spawnCollected(e, c)
	return e, nil
}

// Insert adds every component of b to a live entity in a single archetype
// move. Components the entity already has are overwritten.
func Insert(w *World, e Entity, b Bundle) error {
	if !w.IsValid(e) {
		return fmt.Errorf("%w: %d/%d", ErrInvalidEntity, e.ID, e.Version)
	}
	c, err := w.collect(b)
	if err != nil {
		return err
	}
	w.insertCollected(e, c)
	return nil
}

// spawnReserved materializes a reserved entity with the components of b. On
// failure the reservation is released so the id does not leak. An entity
// that was already brought to life at the same version, by a GetOrSpawn of
// another buffer, receives b as an insert.
func (w *World) spawnReserved(e Entity, b Bundle) error {
	if w.IsValid(e) {
		return Insert(w, e, b)
	}
	if !w.isReserved(e) {
		return fmt.Errorf("%w: %d/%d is not reserved", ErrInvalidEntity, e.ID, e.Version)
	}
	c, err := w.collect(b)
	if err != nil {
		w.releaseReservation(e)
		return err
	}
	w.spawnCollected(e, c)
	return nil
}

// spawnBatch spawns one entity per element of seq in order. Runs of elements
// with the same shape reuse the resolved archetype. Elements that fail to
// collect are skipped and reported through onErr.
func (w *World) spawnBatch(seq iter.Seq[Bundle], onErr func(error)) int {
	var (
		lastMask bitmask256
		arch     *archetype
		spawned  int
	)
	for b := range seq {
		c, err := w.collect(b)
		if err != nil {
			onErr(err)
			continue
		}
		if arch == nil || c.mask != lastMask {
			arch = w.getOrCreateArchetype(c.mask)
			lastMask = c.mask
		}
		e := w.allocEntity()
		ch, idx := w.place(arch, e)
		w.writeValues(arch, ch, idx, c)
		spawned++
	}
	return spawned
}

func (w *World) spawnCollected(e Entity, c *Collector) {
	a := w.getOrCreateArchetype(c.mask)
	ch, idx := w.place(a, e)
	w.writeValues(a, ch, idx, c)
}

// insertCollected writes the collected values onto a live entity, moving it
// at most once.
func (w *World) insertCollected(e Entity, c *Collector) {
	meta := &w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	newMask := a.mask.or(c.mask)
	if newMask == a.mask {
		w.writeValues(a, a.chunks[meta.chunkIndex], meta.index, c)
		return
	}
	target := w.getOrCreateArchetype(newMask)
	w.moveEntity(e, a, target)
	meta = &w.entities.metas[e.ID]
	w.writeValues(target, target.chunks[meta.chunkIndex], meta.index, c)
}

// moveEntity relocates e from a to target, carrying over the components both
// archetypes share.
func (w *World) moveEntity(e Entity, a, target *archetype) {
	old := w.entities.metas[e.ID]
	oldChunk := a.chunks[old.chunkIndex]
	ch, idx := w.place(target, e)
	for _, cid := range a.compOrder {
		if !target.mask.has(cid) {
			continue
		}
		src := unsafe.Add(oldChunk.compPointers[cid], uintptr(old.index)*a.compSizes[cid])
		dst := unsafe.Add(ch.compPointers[cid], uintptr(idx)*target.compSizes[cid])
		w.components.compIDToMove[cid](dst, src)
	}
	w.removeFromArchetype(a, &old)
}

func (w *World) writeValues(a *archetype, ch *chunk, idx int, c *Collector) {
	for _, v := range c.vals {
		v.write(unsafe.Add(ch.compPointers[v.id], uintptr(idx)*a.compSizes[v.id]))
	}
}
