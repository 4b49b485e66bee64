package shirushi

import (
	"errors"
	"math"
	"testing"
)

type position struct{ X, Y float32 }
type velocity struct{ VX, VY float32 }
type label struct {
	Name string
	Tags []string
}
type tag struct{}

func TestCreateEntity(t *testing.T) {
	w := NewWorld(4)
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	if e1.ID != 0 || e1.Version != 1 {
		t.Errorf("expected first entity {0 1}, got %+v", e1)
	}
	if e2.ID != 1 || e2.Version != 2 {
		t.Errorf("expected second entity {1 2}, got %+v", e2)
	}
	if w.Len() != 2 {
		t.Errorf("expected 2 live entities, got %d", w.Len())
	}
}

func TestAutoExpand(t *testing.T) {
	w := NewWorld(2)
	ents := make([]Entity, 0, 10)
	for range 10 {
		ents = append(ents, w.CreateEntity())
	}
	for _, e := range ents {
		if !w.IsValid(e) {
			t.Fatalf("entity %+v should be valid after expansion", e)
		}
	}
	if w.entities.capacity < 10 {
		t.Errorf("expected capacity >= 10, got %d", w.entities.capacity)
	}
}

func TestReservedEntityIsNotValid(t *testing.T) {
	w := NewWorld(4)
	e := w.reserveEntity()
	if w.IsValid(e) {
		t.Fatal("reserved entity should not be valid before spawn")
	}
	if !w.isReserved(e) {
		t.Fatal("entity should be reserved")
	}
	if err := w.spawnReserved(e, Of(position{X: 3})); err != nil {
		t.Fatalf("spawnReserved: %v", err)
	}
	if !w.IsValid(e) {
		t.Fatal("entity should be valid after spawn")
	}
	if p := GetComponent[position](w, e); p == nil || p.X != 3 {
		t.Errorf("expected position {3 0}, got %+v", p)
	}
}

func TestReleaseReservation(t *testing.T) {
	w := NewWorld(4)
	e := w.reserveEntity()
	w.releaseReservation(e)
	if w.isReserved(e) {
		t.Fatal("reservation should be released")
	}
	next := w.CreateEntity()
	if next.ID != e.ID {
		t.Errorf("expected released id %d to be reused, got %d", e.ID, next.ID)
	}
	if next.Version == e.Version {
		t.Error("reused id must get a new version")
	}
}

func TestSpawnAt(t *testing.T) {
	t.Run("free slot beyond capacity", func(t *testing.T) {
		w := NewWorld(4)
		target := Entity{ID: 42, Version: 1}
		if err := w.spawnAt(target); err != nil {
			t.Fatalf("spawnAt: %v", err)
		}
		if !w.IsValid(target) {
			t.Fatal("entity 42 should exist")
		}
		if ComponentCount(w, target) != 0 {
			t.Errorf("placeholder should have no components, got %d", ComponentCount(w, target))
		}
		next := w.CreateEntity()
		if next.ID == 42 {
			t.Error("claimed id must not be handed out again")
		}
		if next.Version <= target.Version {
			t.Errorf("expected version above %d, got %d", target.Version, next.Version)
		}
	})

	t.Run("alive entity is kept", func(t *testing.T) {
		w := NewWorld(4)
		e := w.CreateEntity()
		SetComponent(w, e, position{X: 1})
		if err := w.spawnAt(e); err != nil {
			t.Fatalf("spawnAt: %v", err)
		}
		if p := GetComponent[position](w, e); p == nil || p.X != 1 {
			t.Errorf("existing components must survive, got %+v", p)
		}
		if w.Len() != 1 {
			t.Errorf("expected 1 entity, got %d", w.Len())
		}
	})

	t.Run("pending reservation is materialized", func(t *testing.T) {
		w := NewWorld(4)
		e := w.reserveEntity()
		if err := w.spawnAt(e); err != nil {
			t.Fatalf("spawnAt: %v", err)
		}
		if !w.IsValid(e) {
			t.Fatal("reserved entity should be spawned")
		}
	})

	t.Run("conflicting version", func(t *testing.T) {
		w := NewWorld(4)
		e := w.CreateEntity()
		err := w.spawnAt(Entity{ID: e.ID, Version: e.Version + 5})
		if !errors.Is(err, ErrEntityConflict) {
			t.Errorf("expected ErrEntityConflict, got %v", err)
		}
	})

	t.Run("version zero", func(t *testing.T) {
		w := NewWorld(4)
		err := w.spawnAt(Entity{ID: 3})
		if !errors.Is(err, ErrInvalidEntity) {
			t.Errorf("expected ErrInvalidEntity, got %v", err)
		}
	})

	t.Run("max version does not hand out version zero", func(t *testing.T) {
		w := NewWorld(4)
		if err := w.spawnAt(Entity{ID: 0, Version: math.MaxUint32}); err != nil {
			t.Fatalf("spawnAt: %v", err)
		}
		e := w.reserveEntity()
		if e.Version == 0 {
			t.Fatalf("reserved entity got version 0: %+v", e)
		}
		if err := w.spawnReserved(e, Of(position{X: 1})); err != nil {
			t.Fatalf("spawnReserved: %v", err)
		}
		if p := GetComponent[position](w, e); p == nil || p.X != 1 {
			t.Errorf("expected spawned entity with X 1, got %+v", p)
		}
		if w.Len() != 2 {
			t.Errorf("expected 2 entities, got %d", w.Len())
		}
	})
}

func TestVersionCounterSkipsZero(t *testing.T) {
	w := NewWorld(4)
	w.entities.nextEntityVer = math.MaxUint32
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	if e1.Version != math.MaxUint32 {
		t.Errorf("expected version %d, got %d", uint32(math.MaxUint32), e1.Version)
	}
	if e2.Version != 1 {
		t.Errorf("expected version to wrap to 1, got %d", e2.Version)
	}
	if !w.IsValid(e1) || !w.IsValid(e2) {
		t.Error("both entities should be valid")
	}
}

func TestInsertMovesOnce(t *testing.T) {
	w := NewWorld(4)
	e := w.CreateEntity()
	before := len(w.archetypes.archetypes)
	if err := Insert(w, e, Of2(position{X: 1, Y: 2}, velocity{VX: 3})); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := len(w.archetypes.archetypes) - before; got != 1 {
		t.Errorf("expected exactly one new archetype, got %d", got)
	}
	p := GetComponent[position](w, e)
	v := GetComponent[velocity](w, e)
	if p == nil || v == nil {
		t.Fatal("both components should be present")
	}
	if p.X != 1 || p.Y != 2 || v.VX != 3 {
		t.Errorf("unexpected values %+v %+v", p, v)
	}
}

func TestInsertOverwrites(t *testing.T) {
	w := NewWorld(4)
	e, err := w.CreateEntityWith(Of2(position{X: 1}, tag{}))
	if err != nil {
		t.Fatalf("CreateEntityWith: %v", err)
	}
	if err := Insert(w, e, Of2(position{X: 9}, tag{})); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if ComponentCount(w, e) != 2 {
		t.Errorf("expected 2 components, got %d", ComponentCount(w, e))
	}
	if p := GetComponent[position](w, e); p.X != 9 {
		t.Errorf("expected overwritten X 9, got %v", p.X)
	}
}

func TestInsertRejectsDuplicateTypes(t *testing.T) {
	w := NewWorld(4)
	e := w.CreateEntity()
	err := Insert(w, e, Of2(position{X: 1}, position{X: 2}))
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("expected ErrDuplicateComponent, got %v", err)
	}
	if HasComponent[position](w, e) {
		t.Error("a rejected bundle must not be partially applied")
	}
}

func TestInsertInvalidEntity(t *testing.T) {
	w := NewWorld(4)
	e := w.CreateEntity()
	w.RemoveEntity(e)
	if err := Insert(w, e, Of(tag{})); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestRemoveEntityKeepsOthers(t *testing.T) {
	w := NewWorld(8)
	var ents []Entity
	for i := range 5 {
		e, _ := w.CreateEntityWith(Of(position{X: float32(i)}))
		ents = append(ents, e)
	}
	w.RemoveEntity(ents[1])
	if w.IsValid(ents[1]) {
		t.Fatal("removed entity should be invalid")
	}
	for i, e := range ents {
		if i == 1 {
			continue
		}
		p := GetComponent[position](w, e)
		if p == nil || p.X != float32(i) {
			t.Errorf("entity %d: expected X %d, got %+v", i, i, p)
		}
	}
	if w.Len() != 4 {
		t.Errorf("expected 4 entities, got %d", w.Len())
	}
}

func TestRemoveComponent(t *testing.T) {
	w := NewWorld(4)
	e, _ := w.CreateEntityWith(Of2(position{X: 1}, velocity{VX: 2}))
	RemoveComponent[position](w, e)
	if HasComponent[position](w, e) {
		t.Fatal("position should be removed")
	}
	if v := GetComponent[velocity](w, e); v == nil || v.VX != 2 {
		t.Errorf("velocity should survive, got %+v", v)
	}
}

func TestPointerComponentsSurviveMoves(t *testing.T) {
	w := NewWorld(4)
	e, _ := w.CreateEntityWith(Of(label{Name: "crate", Tags: []string{"wood", "loot"}}))
	other, _ := w.CreateEntityWith(Of(label{Name: "barrel"}))
	SetComponent(w, e, position{X: 1})
	w.RemoveEntity(other)
	l := GetComponent[label](w, e)
	if l == nil || l.Name != "crate" || len(l.Tags) != 2 || l.Tags[1] != "loot" {
		t.Errorf("label corrupted after move, got %+v", l)
	}
}

func TestChunkBoundaries(t *testing.T) {
	w := NewWorld(16)
	n := ChunkSize + 10
	ents := make([]Entity, n)
	for i := range n {
		ents[i], _ = w.CreateEntityWith(Of(position{X: float32(i)}))
	}
	for i := 0; i < n; i += 3 {
		w.RemoveEntity(ents[i])
	}
	for i := range n {
		p := GetComponent[position](w, ents[i])
		if i%3 == 0 {
			if p != nil {
				t.Fatalf("entity %d should be removed", i)
			}
			continue
		}
		if p == nil || p.X != float32(i) {
			t.Fatalf("entity %d: expected X %d, got %+v", i, i, p)
		}
	}
}

func TestClearEntities(t *testing.T) {
	w := NewWorld(4)
	e, _ := w.CreateEntityWith(Of(position{}))
	r := w.reserveEntity()
	w.ClearEntities()
	if w.IsValid(e) || w.isReserved(r) {
		t.Fatal("clear should drop entities and reservations")
	}
	if w.Len() != 0 {
		t.Errorf("expected 0 entities, got %d", w.Len())
	}
	if f := NewFilter[position](w); f.Count() != 0 {
		t.Errorf("expected empty filter, got %d", f.Count())
	}
}

func TestTooManyComponentTypes(t *testing.T) {
	w := NewWorld(1)
	w.components.nextCompTypeID = MaxComponentTypes
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	getCompTypeID[position](w)
}
