package shirushi

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// MaxComponentTypes defines the maximum number of unique component types that can be
// registered in a World. This value is fixed at 256.
const MaxComponentTypes = 256

// ChunkSize is the number of entities stored per archetype chunk.
const ChunkSize = 1024

// Entity represents a unique identifier for an object in the World. It combines
// a 32-bit ID with a 32-bit version to ensure that recycled IDs are not confused
// with new entities.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity.
	ID uint32
	// Version is a generation counter to protect against stale entity references.
	// A version of 0 never refers to a live entity.
	Version uint32
}

// entityMeta holds the internal location and state of an entity.
//
// A slot with a non-zero version and archetypeIndex -1 is reserved: its id was
// handed out by a command buffer but the spawn has not been applied yet.
type entityMeta struct {
	archetypeIndex int    // index in World.archetypes, -1 if dead or reserved
	chunkIndex     int    // index in archetype.chunks
	index          int    // position inside the chunk's component array
	version        uint32 // current version, 0 if the slot is free
}

// chunk holds fixed-size storage for ChunkSize entities.
type chunk struct {
	entityIDs    [ChunkSize]Entity
	compPointers [MaxComponentTypes]unsafe.Pointer
	size         int // number of entities in this chunk, 0 to ChunkSize
}

// archetype holds storage for one unique component-set mask.
type archetype struct {
	chunks    []*chunk
	compOrder []uint8 // component ids in this archetype, ascending
	compSizes [MaxComponentTypes]uintptr
	mask      bitmask256
	index     int // position in world.archetypes
	size      int // total entity count across chunks
}

// componentRegistry maps Go types to dense component ids. The move and clear
// hooks are captured from the static type at registration so that values
// holding pointers are always copied with the type's write barriers.
type componentRegistry struct {
	compIDToType   [MaxComponentTypes]reflect.Type
	compIDToSize   [MaxComponentTypes]uintptr
	compIDToMove   [MaxComponentTypes]func(dst, src unsafe.Pointer)
	compIDToClear  [MaxComponentTypes]func(p unsafe.Pointer)
	compTypeMap    map[reflect.Type]uint8
	nextCompTypeID uint16
}

// entityRegistry owns entity ids. mu guards id allocation so that several
// command buffers can reserve ids concurrently; applying commands still
// requires exclusive access to the World.
type entityRegistry struct {
	mu            sync.Mutex
	freeIDs       []uint32     // stack of recycled entity IDs
	metas         []entityMeta // indexed by entity ID
	capacity      int
	nextEntityVer uint32
	alive         int
}

type archetypeRegistry struct {
	maskToArcIndex   map[bitmask256]int
	archetypes       []*archetype
	archetypeVersion uint32 // incremented when a new archetype is created
}

// World is the entity-component store that command buffers are applied to.
type World struct {
	events     *EventBus
	resources  *Resources
	archetypes archetypeRegistry
	entities   entityRegistry
	components componentRegistry
	collector  Collector
}

// NewWorld creates and initializes a new World with a specified initial
// capacity for entities. The capacity grows on demand.
func NewWorld(initialCapacity int) *World {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	w := &World{
		events:    &EventBus{},
		resources: &Resources{},
		components: componentRegistry{
			compTypeMap: make(map[reflect.Type]uint8, 16),
		},
		entities: entityRegistry{
			capacity:      initialCapacity,
			freeIDs:       make([]uint32, initialCapacity),
			metas:         make([]entityMeta, initialCapacity),
			nextEntityVer: 1,
		},
		archetypes: archetypeRegistry{
			maskToArcIndex: make(map[bitmask256]int),
			archetypes:     make([]*archetype, 0, 16),
		},
	}
	w.collector.world = w
	for i := range w.entities.freeIDs {
		w.entities.freeIDs[i] = uint32(initialCapacity - 1 - i)
	}
	resetMetas(w.entities.metas)
	// the empty archetype always sits at index 0
	w.getOrCreateArchetype(bitmask256{})
	return w
}

func resetMetas(metas []entityMeta) {
	for i := range metas {
		metas[i] = entityMeta{archetypeIndex: -1, chunkIndex: -1, index: -1}
	}
}

// Events returns the bus on which the world reports command failures.
func (w *World) Events() *EventBus {
	return w.events
}

// Resources returns the world's type-keyed resource store.
func (w *World) Resources() *Resources {
	return w.resources
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.alive
}

// IsValid checks if the entity is currently alive in the world. Reserved
// entities whose spawn has not been applied yet are not valid.
func (w *World) IsValid(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version && meta.archetypeIndex >= 0
}

// CreateEntity creates a new entity with no components.
func (w *World) CreateEntity() Entity {
	e := w.allocEntity()
	w.place(w.archetypes.archetypes[0], e)
	return e
}

// RemoveEntity removes a single entity. Stale entities are ignored.
func (w *World) RemoveEntity(e Entity) {
	if !w.IsValid(e) {
		return
	}
	meta := &w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	w.removeFromArchetype(a, meta)
	w.entities.alive--
	w.releaseID(e.ID)
}

// ClearEntities removes all entities from the world, recycling their IDs.
// Pending reservations are dropped as well.
func (w *World) ClearEntities() {
	w.entities.mu.Lock()
	resetMetas(w.entities.metas)
	w.entities.freeIDs = w.entities.freeIDs[:0]
	for i := w.entities.capacity - 1; i >= 0; i-- {
		w.entities.freeIDs = append(w.entities.freeIDs, uint32(i))
	}
	w.entities.alive = 0
	w.entities.mu.Unlock()
	for _, a := range w.archetypes.archetypes {
		clear(a.chunks)
		a.chunks = a.chunks[:0]
		a.size = 0
	}
}

// getCompTypeID registers or fetches the component id for T.
func getCompTypeID[T any](w *World) uint8 {
	t := reflect.TypeFor[T]()
	if id, ok := w.components.compTypeMap[t]; ok {
		return id
	}
	if w.components.nextCompTypeID >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: too many component types registering %s", t))
	}
	id := uint8(w.components.nextCompTypeID)
	w.components.compTypeMap[t] = id
	w.components.compIDToType[id] = t
	w.components.compIDToSize[id] = t.Size()
	w.components.compIDToMove[id] = func(dst, src unsafe.Pointer) {
		*(*T)(dst) = *(*T)(src)
	}
	w.components.compIDToClear[id] = func(p unsafe.Pointer) {
		var zero T
		*(*T)(p) = zero
	}
	w.components.nextCompTypeID++
	return id
}

// lookupCompTypeID returns the id for T without registering it.
func lookupCompTypeID[T any](w *World) (uint8, bool) {
	id, ok := w.components.compTypeMap[reflect.TypeFor[T]()]
	return id, ok
}

// getOrCreateArchetype returns the archetype for the given mask, creating it
// from the registered component types when missing.
func (w *World) getOrCreateArchetype(mask bitmask256) *archetype {
	if idx, ok := w.archetypes.maskToArcIndex[mask]; ok {
		return w.archetypes.archetypes[idx]
	}
	a := &archetype{
		index:  len(w.archetypes.archetypes),
		mask:   mask,
		chunks: make([]*chunk, 0, 4),
	}
	for id := 0; id < int(w.components.nextCompTypeID); id++ {
		cid := uint8(id)
		if mask.has(cid) {
			a.compOrder = append(a.compOrder, cid)
			a.compSizes[cid] = w.components.compIDToSize[cid]
		}
	}
	w.archetypes.archetypes = append(w.archetypes.archetypes, a)
	w.archetypes.maskToArcIndex[mask] = a.index
	w.archetypes.archetypeVersion++
	return a
}

// newChunk creates a new chunk for the archetype.
func (w *World) newChunk(a *archetype) *chunk {
	c := &chunk{}
	for _, cid := range a.compOrder {
		typ := w.components.compIDToType[cid]
		slice := reflect.MakeSlice(reflect.SliceOf(typ), ChunkSize, ChunkSize)
		c.compPointers[cid] = slice.UnsafePointer()
	}
	return c
}

// expand increases capacity by at least additional slots. Callers hold
// entities.mu.
func (w *World) expand(additional int) {
	oldCap := w.entities.capacity
	newCap := oldCap * 2
	if newCap < oldCap+additional {
		newCap = oldCap + additional
	}
	delta := newCap - oldCap
	newMetas := make([]entityMeta, delta)
	resetMetas(newMetas)
	w.entities.metas = append(w.entities.metas, newMetas...)
	// keep low ids on top of the stack
	grown := make([]uint32, 0, len(w.entities.freeIDs)+delta)
	for i := newCap - 1; i >= oldCap; i-- {
		grown = append(grown, uint32(i))
	}
	w.entities.freeIDs = append(grown, w.entities.freeIDs...)
	w.entities.capacity = newCap
}

// allocEntity pops a free id and stamps it with a fresh version. The entity
// is reserved until placed into an archetype.
func (w *World) allocEntity() Entity {
	w.entities.mu.Lock()
	defer w.entities.mu.Unlock()
	if len(w.entities.freeIDs) == 0 {
		w.expand(1)
	}
	last := len(w.entities.freeIDs) - 1
	id := w.entities.freeIDs[last]
	w.entities.freeIDs = w.entities.freeIDs[:last]
	ent := Entity{ID: id, Version: w.entities.nextEntityVer}
	w.bumpVersion(ent.Version)
	w.entities.metas[id].version = ent.Version
	return ent
}

// bumpVersion moves the version counter past used. Version 0 is skipped on
// wrap-around. Callers hold entities.mu.
func (w *World) bumpVersion(used uint32) {
	w.entities.nextEntityVer = used + 1
	if w.entities.nextEntityVer == 0 {
		w.entities.nextEntityVer = 1
	}
}

// reserveEntity hands out an entity id ahead of its spawn. It is safe to call
// from several goroutines as long as no commands are being applied.
func (w *World) reserveEntity() Entity {
	return w.allocEntity()
}

// isReserved reports whether e was reserved and not yet spawned.
func (w *World) isReserved(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version && meta.archetypeIndex < 0
}

// releaseReservation returns a reserved, never spawned id to the free list.
func (w *World) releaseReservation(e Entity) {
	if w.isReserved(e) {
		w.releaseID(e.ID)
	}
}

func (w *World) releaseID(id uint32) {
	w.entities.mu.Lock()
	w.entities.metas[id] = entityMeta{archetypeIndex: -1, chunkIndex: -1, index: -1}
	w.entities.freeIDs = append(w.entities.freeIDs, id)
	w.entities.mu.Unlock()
}

// spawnAt makes sure e exists in the world. A live e is left untouched, a
// pending reservation of e is materialized and a free slot is claimed with
// e's version. The slot being held under another version is a conflict.
func (w *World) spawnAt(e Entity) error {
	if e.Version == 0 {
		return fmt.Errorf("%w: %d has version 0", ErrInvalidEntity, e.ID)
	}
	w.entities.mu.Lock()
	if int(e.ID) >= w.entities.capacity {
		w.expand(int(e.ID) + 1 - w.entities.capacity)
	}
	meta := w.entities.metas[e.ID]
	switch {
	case meta.version == e.Version && meta.archetypeIndex >= 0:
		w.entities.mu.Unlock()
		return nil
	case meta.version == e.Version:
		w.entities.mu.Unlock()
		w.place(w.archetypes.archetypes[0], e)
		return nil
	case meta.version != 0:
		w.entities.mu.Unlock()
		return fmt.Errorf("%w: id %d is held by version %d", ErrEntityConflict, e.ID, meta.version)
	}
	free := w.entities.freeIDs
	for i := len(free) - 1; i >= 0; i-- {
		if free[i] == e.ID {
			free[i] = free[len(free)-1]
			w.entities.freeIDs = free[:len(free)-1]
			break
		}
	}
	w.entities.metas[e.ID].version = e.Version
	if e.Version >= w.entities.nextEntityVer {
		w.bumpVersion(e.Version)
	}
	w.entities.mu.Unlock()
	w.place(w.archetypes.archetypes[0], e)
	return nil
}

// place appends an allocated entity to the archetype and records its
// location. Component values are left for the caller to write.
func (w *World) place(a *archetype, e Entity) (*chunk, int) {
	if len(a.chunks) == 0 || a.chunks[len(a.chunks)-1].size == ChunkSize {
		a.chunks = append(a.chunks, w.newChunk(a))
	}
	c := a.chunks[len(a.chunks)-1]
	idx := c.size
	c.entityIDs[idx] = e
	c.size++
	a.size++
	meta := &w.entities.metas[e.ID]
	if meta.archetypeIndex < 0 {
		w.entities.alive++
	}
	meta.archetypeIndex = a.index
	meta.chunkIndex = len(a.chunks) - 1
	meta.index = idx
	meta.version = e.Version
	return c, idx
}

// removeFromArchetype removes the entity from the archetype without freeing
// the ID or invalidating its version. The vacated slot is zeroed.
func (w *World) removeFromArchetype(a *archetype, meta *entityMeta) {
	chunkIdx := meta.chunkIndex
	c := a.chunks[chunkIdx]
	idx := meta.index
	lastIdx := c.size - 1
	if idx < lastIdx {
		lastEnt := c.entityIDs[lastIdx]
		c.entityIDs[idx] = lastEnt
		for _, cid := range a.compOrder {
			size := a.compSizes[cid]
			src := unsafe.Add(c.compPointers[cid], uintptr(lastIdx)*size)
			dst := unsafe.Add(c.compPointers[cid], uintptr(idx)*size)
			w.components.compIDToMove[cid](dst, src)
		}
		w.entities.metas[lastEnt.ID].index = idx
	}
	for _, cid := range a.compOrder {
		w.components.compIDToClear[cid](unsafe.Add(c.compPointers[cid], uintptr(lastIdx)*a.compSizes[cid]))
	}
	c.entityIDs[lastIdx] = Entity{}
	c.size--
	a.size--
	if c.size == 0 {
		lastChunkIdx := len(a.chunks) - 1
		if chunkIdx < lastChunkIdx {
			a.chunks[chunkIdx] = a.chunks[lastChunkIdx]
			swapped := a.chunks[chunkIdx]
			for j := 0; j < swapped.size; j++ {
				w.entities.metas[swapped.entityIDs[j].ID].chunkIndex = chunkIdx
			}
		}
		a.chunks[lastChunkIdx] = nil
		a.chunks = a.chunks[:lastChunkIdx]
	}
	meta.archetypeIndex = -1
	meta.chunkIndex = -1
	meta.index = -1
}
