// Package shirushi tags entities of an archetype-based Entity Component
// System with marker components through deferred command buffers.
//
// A marker is an ordinary component type, usually an empty struct, bound to
// a Marking:
//
//	type Tagged struct{}
//
//	tagged := shirushi.NewMarking[Tagged]()
//	cmds := shirushi.NewCommands(world)
//	tagged.Marked(cmds)                                    // marker only
//	tagged.MarkedWith(cmds, shirushi.Of(Position{}))       // payload + marker
//	tagged.GetOrMarked(cmds, shirushi.Entity{ID: 42, Version: 1})
//	tagged.MarkedBatch(cmds, shirushi.Bundles(a, b, c))
//	cmds.Apply()
//
// Payload and marker always travel in one MarkedBundle, so an entity created
// through a Marking never exists without its marker.
//
// Features:
//   - Archetype storage in fixed-size chunks, max 256 component types.
//   - Bundles: flat groups of components inserted in one archetype move.
//   - Commands: ordered, append-only mutation log applied at sync points.
//   - Failures at apply time are published as CommandFailed events.
package shirushi
