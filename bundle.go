package shirushi

import (
	"fmt"
	"iter"
	"reflect"
	"unsafe"
)

// Bundle is a fixed group of component values that is inserted as one unit.
// Implementations call Put once per component:
//
//	type Body struct {
//	    Pos Position
//	    Vel Velocity
//	}
//
//	func (b Body) Collect(c *shirushi.Collector) {
//	    shirushi.Put(c, b.Pos)
//	    shirushi.Put(c, b.Vel)
//	}
//
// Nested bundles are flattened by calling their Collect from the outer one.
type Bundle interface {
	Collect(c *Collector)
}

// componentValue is one flattened component of a bundle, ready to be written
// into archetype storage.
type componentValue struct {
	write func(dst unsafe.Pointer)
	id    uint8
}

// Collector flattens a bundle into component values for a World.
type Collector struct {
	world *World
	vals  []componentValue
	dup   reflect.Type
	mask  bitmask256
}

// Put adds a component value to the bundle being collected.
func Put[T any](c *Collector, v T) {
	id := getCompTypeID[T](c.world)
	if c.mask.has(id) {
		if c.dup == nil {
			c.dup = reflect.TypeFor[T]()
		}
		return
	}
	c.mask.set(id)
	c.vals = append(c.vals, componentValue{
		id: id,
		write: func(dst unsafe.Pointer) {
			*(*T)(dst) = v
		},
	})
}

func (c *Collector) reset() {
	clear(c.vals)
	c.vals = c.vals[:0]
	c.mask = bitmask256{}
	c.dup = nil
}

// collect flattens b into the world's scratch collector. The returned
// collector is only valid until the next call.
func (w *World) collect(b Bundle) (*Collector, error) {
	c := &w.collector
	c.reset()
	if b != nil {
		b.Collect(c)
	}
	if c.dup != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, c.dup)
	}
	return c, nil
}

// Bundle1 is a bundle of one component.
type Bundle1[T1 any] struct {
	C1 T1
}

// Collect implements Bundle.
func (b Bundle1[T1]) Collect(c *Collector) {
	Put(c, b.C1)
}

// Bundle2 is a bundle of two components.
type Bundle2[T1, T2 any] struct {
	C1 T1
	C2 T2
}

// Collect implements Bundle.
func (b Bundle2[T1, T2]) Collect(c *Collector) {
	Put(c, b.C1)
	Put(c, b.C2)
}

// Bundle3 is a bundle of three components.
type Bundle3[T1, T2, T3 any] struct {
	C1 T1
	C2 T2
	C3 T3
}

// Collect implements Bundle.
func (b Bundle3[T1, T2, T3]) Collect(c *Collector) {
	Put(c, b.C1)
	Put(c, b.C2)
	Put(c, b.C3)
}

// Bundle4 is a bundle of four components.
type Bundle4[T1, T2, T3, T4 any] struct {
	C1 T1
	C2 T2
	C3 T3
	C4 T4
}

// Collect implements Bundle.
func (b Bundle4[T1, T2, T3, T4]) Collect(c *Collector) {
	Put(c, b.C1)
	Put(c, b.C2)
	Put(c, b.C3)
	Put(c, b.C4)
}

// Of wraps a single component value as a bundle.
func Of[T1 any](c1 T1) Bundle1[T1] {
	return Bundle1[T1]{C1: c1}
}

// Of2 groups two component values into a bundle.
func Of2[T1, T2 any](c1 T1, c2 T2) Bundle2[T1, T2] {
	return Bundle2[T1, T2]{C1: c1, C2: c2}
}

// Of3 groups three component values into a bundle.
func Of3[T1, T2, T3 any](c1 T1, c2 T2, c3 T3) Bundle3[T1, T2, T3] {
	return Bundle3[T1, T2, T3]{C1: c1, C2: c2, C3: c3}
}

// Of4 groups four component values into a bundle.
func Of4[T1, T2, T3, T4 any](c1 T1, c2 T2, c3 T3, c4 T4) Bundle4[T1, T2, T3, T4] {
	return Bundle4[T1, T2, T3, T4]{C1: c1, C2: c2, C3: c3, C4: c4}
}

// Joined is the flattened concatenation of several bundles.
type Joined []Bundle

// Collect implements Bundle.
func (j Joined) Collect(c *Collector) {
	for _, b := range j {
		if b != nil {
			b.Collect(c)
		}
	}
}

// Join flattens bundles into one. Nil entries are skipped.
func Join(bundles ...Bundle) Joined {
	return Joined(bundles)
}

// Bundles turns typed bundle values into a sequence for SpawnBatch.
func Bundles[B Bundle](items ...B) iter.Seq[Bundle] {
	return func(yield func(Bundle) bool) {
		for _, b := range items {
			if !yield(b) {
				return
			}
		}
	}
}

// BundleSeq adapts a typed sequence for SpawnBatch.
func BundleSeq[B Bundle](seq iter.Seq[B]) iter.Seq[Bundle] {
	return func(yield func(Bundle) bool) {
		for b := range seq {
			if !yield(b) {
				return
			}
		}
	}
}
