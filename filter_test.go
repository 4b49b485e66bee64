package shirushi

import "testing"

func TestFilterIteratesAcrossArchetypes(t *testing.T) {
	w := NewWorld(8)
	w.CreateEntityWith(Of(position{X: 1}))
	w.CreateEntityWith(Of2(position{X: 2}, velocity{}))
	w.CreateEntityWith(Of(velocity{}))

	f := NewFilter[position](w)
	sum := float32(0)
	n := 0
	for f.Next() {
		sum += f.Get().X
		if !w.IsValid(f.Entity()) {
			t.Errorf("filter yielded invalid entity %+v", f.Entity())
		}
		n++
	}
	if n != 2 || sum != 3 {
		t.Errorf("expected 2 entities summing to 3, got %d summing to %v", n, sum)
	}
}

func TestFilterSeesNewArchetypesAfterReset(t *testing.T) {
	w := NewWorld(8)
	f := NewFilter[position](w)
	if f.Next() {
		t.Fatal("expected empty filter")
	}
	w.CreateEntityWith(Of2(position{}, tag{}))
	f.Reset()
	if !f.Next() {
		t.Fatal("filter should pick up the new archetype")
	}
}

func TestFilterWritesThrough(t *testing.T) {
	w := NewWorld(8)
	e, _ := w.CreateEntityWith(Of(position{X: 1}))
	f := NewFilter[position](w)
	for f.Next() {
		f.Get().X = 10
	}
	if p := GetComponent[position](w, e); p.X != 10 {
		t.Errorf("expected X 10, got %v", p.X)
	}
}

func TestFilterAcrossChunks(t *testing.T) {
	w := NewWorld(8)
	n := 2*ChunkSize + 3
	for i := range n {
		w.CreateEntityWith(Of(position{X: float32(i)}))
	}
	f := NewFilter[position](w)
	if f.Count() != n {
		t.Fatalf("expected count %d, got %d", n, f.Count())
	}
	i := 0
	for f.Next() {
		if f.Get().X != float32(i) {
			t.Fatalf("entity %d: got X %v", i, f.Get().X)
		}
		i++
	}
	if i != n {
		t.Errorf("expected %d iterations, got %d", n, i)
	}
	if len(f.Entities()) != n {
		t.Errorf("expected %d entities, got %d", n, len(f.Entities()))
	}
}

func TestFilter2(t *testing.T) {
	w := NewWorld(8)
	w.CreateEntityWith(Of2(position{X: 1}, velocity{VX: 2}))
	w.CreateEntityWith(Of(position{X: 5}))
	f := NewFilter2[position, velocity](w)
	n := 0
	for f.Next() {
		p, v := f.Get()
		p.X += v.VX
		n++
	}
	if n != 1 {
		t.Fatalf("expected 1 entity, got %d", n)
	}
	f.Reset()
	f.Next()
	if p, _ := f.Get(); p.X != 3 {
		t.Errorf("expected X 3, got %v", p.X)
	}
}

func TestFilter2DuplicateTypesPanics(t *testing.T) {
	w := NewWorld(1)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewFilter2[position, position](w)
}
