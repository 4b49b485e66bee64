package shirushi

import "unsafe"

// queryCache keeps the archetypes matching a component mask. It is refreshed
// lazily whenever the world has created new archetypes since the last use.
type queryCache struct {
	world            *World
	matching         []*archetype
	entities         []Entity
	mask             bitmask256
	archetypeVersion uint32
}

func newQueryCache(w *World, mask bitmask256) queryCache {
	q := queryCache{world: w, mask: mask}
	q.updateMatching()
	return q
}

// IsStale reports whether archetypes were created since the cache was built.
func (q *queryCache) IsStale() bool {
	return q.archetypeVersion != q.world.archetypes.archetypeVersion
}

func (q *queryCache) updateMatching() {
	q.matching = q.matching[:0]
	for _, a := range q.world.archetypes.archetypes {
		if a.mask.contains(q.mask) {
			q.matching = append(q.matching, a)
		}
	}
	q.archetypeVersion = q.world.archetypes.archetypeVersion
}

// Count returns the number of matching entities.
func (q *queryCache) Count() int {
	if q.IsStale() {
		q.updateMatching()
	}
	n := 0
	for _, a := range q.matching {
		n += a.size
	}
	return n
}

// Entities returns all matching entities. The slice is owned by the filter
// and is overwritten by the next call.
func (q *queryCache) Entities() []Entity {
	if q.IsStale() {
		q.updateMatching()
	}
	q.entities = q.entities[:0]
	for _, a := range q.matching {
		for _, c := range a.chunks {
			q.entities = append(q.entities, c.entityIDs[:c.size]...)
		}
	}
	return q.entities
}

// cursor walks matching archetypes chunk by chunk.
type cursor struct {
	chunk    *chunk
	archIdx  int
	chunkIdx int
	idx      int
}

func (c *cursor) reset() {
	*c = cursor{idx: -1}
}

func (q *queryCache) advance(c *cursor) bool {
	c.idx++
	for c.archIdx < len(q.matching) {
		a := q.matching[c.archIdx]
		if c.chunkIdx < len(a.chunks) {
			ch := a.chunks[c.chunkIdx]
			if c.idx < ch.size {
				c.chunk = ch
				return true
			}
			c.chunkIdx++
			c.idx = 0
			continue
		}
		c.archIdx++
		c.chunkIdx = 0
		c.idx = 0
	}
	c.chunk = nil
	return false
}

// Filter iterates over all entities that have a component of type `T`,
// walking archetype storage directly.
//
//	query := shirushi.NewFilter[Position](world)
//	for query.Next() {
//	    pos := query.Get()
//	    // ...
//	}
//
// Structural changes while iterating are not supported; queue them on a
// Commands buffer and apply it afterwards.
type Filter[T any] struct {
	queryCache
	cur      cursor
	compSize uintptr
	compID   uint8
}

// NewFilter creates a Filter for entities possessing component `T`.
func NewFilter[T any](w *World) *Filter[T] {
	id := getCompTypeID[T](w)
	var m bitmask256
	m.set(id)
	f := &Filter[T]{
		queryCache: newQueryCache(w, m),
		compID:     id,
		compSize:   w.components.compIDToSize[id],
	}
	f.Reset()
	return f
}

// Reset rewinds the filter, picking up archetypes created since the last
// iteration.
func (f *Filter[T]) Reset() {
	if f.IsStale() {
		f.updateMatching()
	}
	f.cur.reset()
}

// Next advances to the next matching entity, returning false at the end.
func (f *Filter[T]) Next() bool {
	return f.advance(&f.cur)
}

// Entity returns the current entity. Only valid after Next returned true.
func (f *Filter[T]) Entity() Entity {
	return f.cur.chunk.entityIDs[f.cur.idx]
}

// Get returns the current entity's component. Only valid after Next
// returned true.
func (f *Filter[T]) Get() *T {
	return (*T)(unsafe.Add(f.cur.chunk.compPointers[f.compID], uintptr(f.cur.idx)*f.compSize))
}

// Filter2 iterates over all entities that have components `T1` and `T2`.
type Filter2[T1, T2 any] struct {
	queryCache
	cur   cursor
	size1 uintptr
	size2 uintptr
	id1   uint8
	id2   uint8
}

// NewFilter2 creates a Filter2 for entities possessing `T1` and `T2`.
func NewFilter2[T1, T2 any](w *World) *Filter2[T1, T2] {
	id1 := getCompTypeID[T1](w)
	id2 := getCompTypeID[T2](w)
	if id1 == id2 {
		panic("ecs: duplicate component types in Filter2")
	}
	var m bitmask256
	m.set(id1)
	m.set(id2)
	f := &Filter2[T1, T2]{
		queryCache: newQueryCache(w, m),
		id1:        id1,
		id2:        id2,
		size1:      w.components.compIDToSize[id1],
		size2:      w.components.compIDToSize[id2],
	}
	f.Reset()
	return f
}

// Reset rewinds the filter.
func (f *Filter2[T1, T2]) Reset() {
	if f.IsStale() {
		f.updateMatching()
	}
	f.cur.reset()
}

// Next advances to the next matching entity.
func (f *Filter2[T1, T2]) Next() bool {
	return f.advance(&f.cur)
}

// Entity returns the current entity.
func (f *Filter2[T1, T2]) Entity() Entity {
	return f.cur.chunk.entityIDs[f.cur.idx]
}

// Get returns the current entity's components.
func (f *Filter2[T1, T2]) Get() (*T1, *T2) {
	idx := uintptr(f.cur.idx)
	return (*T1)(unsafe.Add(f.cur.chunk.compPointers[f.id1], idx*f.size1)),
		(*T2)(unsafe.Add(f.cur.chunk.compPointers[f.id2], idx*f.size2))
}
