package depot

import (
	"errors"
	"testing"
)

func TestComponentRoundTrip(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	world := Factory.NewWorld()

	e := world.CreateEntity()
	if err := posComp.Insert(world, e, Position{X: 3, Y: 4}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	value, ok := posComp.Remove(world, e)
	if !ok {
		t.Fatal("remove failed on present component")
	}
	if value.X != 3 || value.Y != 4 {
		t.Errorf("removed value = %+v, want (3, 4)", value)
	}

	// Removing again returns absence
	if _, ok := posComp.Remove(world, e); ok {
		t.Error("second remove succeeded")
	}
}

func TestInsertOnDeadEntity(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	world := Factory.NewWorld()
	world.Register(posComp)

	e := world.CreateEntity()
	world.DestroyEntity(e)

	err := posComp.Insert(world, e, Position{})
	var noSuch NoSuchEntityError
	if !errors.As(err, &noSuch) {
		t.Fatalf("error = %v, want NoSuchEntityError", err)
	}
	if noSuch.Entity != e {
		t.Errorf("error names %v, want %v", noSuch.Entity, e)
	}
}

func TestRemoveComponentsAllOrNothing(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	world := Factory.NewWorld()
	world.Register(posComp, velComp)

	e := world.CreateEntity(C(posComp, Position{X: 1}))

	// Entity lacks Velocity, so nothing may be removed
	if _, ok := world.RemoveComponents(e, posComp, velComp); ok {
		t.Fatal("partial removal succeeded")
	}
	if _, ok := posComp.GetFromWorld(world, e); !ok {
		t.Fatal("failed removal still detached a component")
	}

	world.InsertComponents(e, C(velComp, Velocity{X: 2}))
	values, ok := world.RemoveComponents(e, posComp, velComp)
	if !ok || len(values) != 2 {
		t.Fatalf("removal = (%v, %v), want 2 values", values, ok)
	}
	if p := values[0].(Position); p.X != 1 {
		t.Errorf("removed position = %+v", p)
	}
}

func TestDeleteComponents(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	world := Factory.NewWorld()
	world.Register(posComp, velComp)

	e := world.CreateEntity(C(posComp, Position{}))

	// Deleting a mix of present and absent components is fine
	world.DeleteComponents(e, posComp, velComp)

	if _, ok := posComp.GetFromWorld(world, e); ok {
		t.Error("deleted component still present")
	}
}

func TestCreateEntitiesBatch(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	world := Factory.NewWorld()

	entities := world.CreateEntities(50, func(i int) []ComponentValue {
		return []ComponentValue{C(posComp, Position{X: float64(i)})}
	})

	if len(entities) != 50 {
		t.Fatalf("created %d entities, want 50", len(entities))
	}
	for i, e := range entities {
		p, ok := posComp.GetFromWorld(world, e)
		if !ok || p.X != float64(i) {
			t.Fatalf("entity %d component = %v, %v", i, p, ok)
		}
	}
}

func TestResources(t *testing.T) {
	type Gravity struct {
		Value float64
	}

	world := Factory.NewWorld()

	if ContainsResource[Gravity](world) {
		t.Fatal("empty world contains a resource")
	}

	if _, had := InsertResource(world, Gravity{Value: 9.8}); had {
		t.Error("first insert reported a previous value")
	}
	prev, had := InsertResource(world, Gravity{Value: 1.6})
	if !had || prev.Value != 9.8 {
		t.Errorf("second insert previous = (%v, %v), want (9.8, true)", prev, had)
	}

	if got := BorrowRes[Gravity](world).Value(); got.Value != 1.6 {
		t.Errorf("resource value = %v, want 1.6", got.Value)
	}

	removed, ok := RemoveResource[Gravity](world)
	if !ok || removed.Value != 1.6 {
		t.Errorf("removed = (%v, %v), want (1.6, true)", removed, ok)
	}
	if ContainsResource[Gravity](world) {
		t.Error("resource present after removal")
	}
}

func TestWorldClear(t *testing.T) {
	type Score struct {
		Value int
	}
	posComp := FactoryNewComponent[Position]()
	world := Factory.NewWorld()

	world.CreateEntity(C(posComp, Position{}))
	InsertResource(world, Score{Value: 10})

	world.Clear()

	if len(world.Entities()) != 0 {
		t.Error("entities survived Clear")
	}
	if ContainsResource[Score](world) {
		t.Error("resource survived Clear")
	}
}

func TestWorldIDs(t *testing.T) {
	a := Factory.NewWorld()
	b := Factory.NewWorld()
	if a.ID() == b.ID() {
		t.Errorf("two worlds share id %d", a.ID())
	}
}

func TestCheckChangeTicks(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	world := Factory.NewWorld()

	e := world.CreateEntity(C(posComp, Position{}))

	// Age the world far past the stored ticks
	world.tick = maxTickAge + 100
	world.CheckChangeTicks()

	pos := posComp.Borrow(world)
	ticks, _ := pos.GetTicks(e)
	if world.tick-ticks.Inserted > maxTickAge {
		t.Errorf("inserted tick %d not clamped into window ending at %d", ticks.Inserted, world.tick)
	}
}
