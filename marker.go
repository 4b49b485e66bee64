package shirushi

import "iter"

// MarkedBundle pairs a payload bundle with a marker component. It collects
// as one flat bundle, so the store inserts payload and marker together in a
// single command.
type MarkedBundle[B Bundle, M any] struct {
	Payload B
	Marker  M
}

// Collect implements Bundle.
func (b MarkedBundle[B, M]) Collect(c *Collector) {
	if any(b.Payload) != nil {
		b.Payload.Collect(c)
	}
	Put(c, b.Marker)
}

// NewMarkedBundle pairs payload with the zero value of M.
func NewMarkedBundle[M any, B Bundle](payload B) MarkedBundle[B, M] {
	var marker M
	return MarkedBundle[B, M]{Payload: payload, Marker: marker}
}

// Marking tags entities with the marker component M through a deferred
// command buffer. The zero Marking uses M's zero value as the marker;
// NewMarkingFunc installs a constructor that is called once per marked
// entity.
//
//	type Enemy struct{}
//
//	enemies := shirushi.NewMarking[Enemy]()
//	enemies.MarkedWith(cmds, shirushi.Of(Position{X: 1}))
//	enemies.MarkedBatch(cmds, shirushi.Bundles(waves...))
//	cmds.Apply()
type Marking[M any] struct {
	newMarker func() M
}

// NewMarking returns a Marking whose marker is the zero value of M.
func NewMarking[M any]() Marking[M] {
	return Marking[M]{}
}

// NewMarkingFunc returns a Marking that builds each marker with fn.
func NewMarkingFunc[M any](fn func() M) Marking[M] {
	return Marking[M]{newMarker: fn}
}

// Marker returns a freshly constructed marker value.
func (k Marking[M]) Marker() M {
	if k.newMarker == nil {
		var m M
		return m
	}
	return k.newMarker()
}

// Bundle pairs payload with a fresh marker.
func (k Marking[M]) Bundle(payload Bundle) MarkedBundle[Bundle, M] {
	return MarkedBundle[Bundle, M]{Payload: payload, Marker: k.Marker()}
}

// Mark queues the insertion of the marker on the handle's entity.
func (k Marking[M]) Mark(ec *EntityCommands) *EntityCommands {
	return ec.Insert(Of(k.Marker()))
}

// Marked queues a new entity that carries only the marker. Spawn and marker
// are one command.
func (k Marking[M]) Marked(s Spawner) *EntityCommands {
	return s.SpawnBundle(Of(k.Marker()))
}

// MarkedWith queues a new entity carrying payload and the marker.
func (k Marking[M]) MarkedWith(s Spawner, payload Bundle) *EntityCommands {
	return s.SpawnBundle(k.Bundle(payload))
}

// MarkedBundle queues the insertion of payload and the marker on the
// handle's entity as one command.
func (k Marking[M]) MarkedBundle(ec *EntityCommands, payload Bundle) *EntityCommands {
	return ec.Insert(k.Bundle(payload))
}

// GetOrMarked returns a handle for e, creating the entity at that id if the
// world does not know it, and queues the marker. Marking the same entity
// again overwrites the marker.
func (k Marking[M]) GetOrMarked(b Buffer, e Entity) *EntityCommands {
	return k.Mark(b.GetOrSpawn(e))
}

// MarkAndForget queues a new entity carrying payload and the marker without
// returning a handle.
func (k Marking[M]) MarkAndForget(b Buffer, payload Bundle) {
	b.SpawnAndForget(k.Bundle(payload))
}

// MarkedBatch queues one marked entity per payload, in order. The payloads
// are consumed when the buffer is applied; see Commands.SpawnBatch.
func (k Marking[M]) MarkedBatch(b Buffer, payloads iter.Seq[Bundle]) {
	if payloads == nil {
		return
	}
	b.SpawnBatch(func(yield func(Bundle) bool) {
		for p := range payloads {
			if !yield(k.Bundle(p)) {
				return
			}
		}
	})
}

// Has reports whether e carries the marker.
func (k Marking[M]) Has(w *World, e Entity) bool {
	return HasComponent[M](w, e)
}

// Filter returns a filter over every entity carrying the marker.
func (k Marking[M]) Filter(w *World) *Filter[M] {
	return NewFilter[M](w)
}
