package depot

import "testing"

// Components used by the grouping tests
type GroupA struct{ V int }

type GroupB struct{ V int }

type GroupC struct{ V int }

type GroupD struct{ V int }

func TestLayoutValidation(t *testing.T) {
	a := FactoryNewComponent[GroupA]()
	b := FactoryNewComponent[GroupB]()
	c := FactoryNewComponent[GroupC]()
	d := FactoryNewComponent[GroupD]()

	tests := []struct {
		name    string
		groups  [][]Component
		wantErr bool
	}{
		{"Single group", [][]Component{{a, b}}, false},
		{"Nested groups", [][]Component{{a, b}, {a, b, c}}, false},
		{"Disjoint families", [][]Component{{a, b}, {c, d}}, false},
		{"Group too small", [][]Component{{a}}, true},
		{"Duplicate component", [][]Component{{a, a}}, true},
		{"Duplicate group", [][]Component{{a, b}, {b, a}}, true},
		{"Partial overlap", [][]Component{{a, b}, {b, c}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := Factory.NewLayoutBuilder()
			for _, g := range tt.groups {
				builder.AddGroup(g...)
			}
			_, err := builder.Build()
			if (err != nil) != tt.wantErr {
				t.Errorf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutArityCap(t *testing.T) {
	comps := []Component{
		FactoryNewComponent[Position](),
		FactoryNewComponent[Velocity](),
		FactoryNewComponent[Health](),
		FactoryNewComponent[GroupA](),
		FactoryNewComponent[GroupB](),
		FactoryNewComponent[GroupC](),
		FactoryNewComponent[GroupD](),
	}

	builder := Factory.NewLayoutBuilder()
	builder.AddGroup(comps...)
	if _, err := builder.Build(); err != nil {
		t.Errorf("group of %d components rejected: %v", len(comps), err)
	}
}

// checkGroupPrefix verifies the group-prefix invariant: the first len slots
// of every participating storage hold exactly the entities satisfying the
// group, in the same order across storages.
func checkGroupPrefix(t *testing.T, w *World) {
	t.Helper()
	for _, fam := range w.storages.families {
		for gi := range fam.groups {
			g := &fam.groups[gi]
			for _, sto := range fam.storages[:g.arity] {
				entities := sto.Entities()
				if len(entities) < g.len {
					t.Fatalf("group %d: storage holds %d entities, group len %d", gi, len(entities), g.len)
				}
				for i := 0; i < g.len; i++ {
					if !fam.satisfies(entities[i], g.arity) {
						t.Fatalf("group %d: entity %v at slot %d does not satisfy the group", gi, entities[i], i)
					}
					if entities[i] != fam.storages[0].EntityAt(i) {
						t.Fatalf("group %d: storages disagree on slot %d", gi, i)
					}
				}
				for i := g.len; i < len(entities); i++ {
					if fam.satisfies(entities[i], g.arity) {
						t.Fatalf("group %d: entity %v satisfies the group but sits outside the prefix", gi, entities[i])
					}
				}
			}
		}
	}
}

func newGroupedWorld(t *testing.T, a ComponentType[GroupA], b ComponentType[GroupB], c ComponentType[GroupC]) *World {
	t.Helper()
	layout, err := Factory.NewLayoutBuilder().
		AddGroup(a, b).
		AddGroup(a, b, c).
		Build()
	if err != nil {
		t.Fatalf("failed to build layout: %v", err)
	}
	return Factory.NewWorldWithLayout(layout)
}

func TestGroupedQueryRanges(t *testing.T) {
	a := FactoryNewComponent[GroupA]()
	b := FactoryNewComponent[GroupB]()
	c := FactoryNewComponent[GroupC]()
	world := newGroupedWorld(t, a, b, c)

	// 40 with A only, 30 with A+B, 30 with A+B+C
	for i := 0; i < 40; i++ {
		world.CreateEntity(C(a, GroupA{V: i}))
	}
	for i := 0; i < 30; i++ {
		world.CreateEntity(C(a, GroupA{}), C(b, GroupB{}))
	}
	for i := 0; i < 30; i++ {
		world.CreateEntity(C(a, GroupA{}), C(b, GroupB{}), C(c, GroupC{}))
	}
	checkGroupPrefix(t, world)

	av := a.Borrow(world)
	bv := b.Borrow(world)
	cv := c.Borrow(world)

	tests := []struct {
		name      string
		query     *Query
		wantDense bool
		wantCount int
	}{
		{"A and B", Factory.NewQuery(av, bv), true, 60},
		{"A and B and C", Factory.NewQuery(av, bv, cv), true, 30},
		{"A and B without C", Factory.NewQuery(av, bv).Exclude(cv), true, 30},
		{"A alone", Factory.NewQuery(av), false, 100},
		{"A without B", Factory.NewQuery(av).Exclude(bv), false, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := Factory.NewCursor(tt.query)
			if cursor.IsDense() != tt.wantDense {
				t.Errorf("IsDense = %v, want %v", cursor.IsDense(), tt.wantDense)
			}
			if got := cursor.TotalMatched(); got != tt.wantCount {
				t.Errorf("TotalMatched = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestGroupMaintenanceOnMutation(t *testing.T) {
	a := FactoryNewComponent[GroupA]()
	b := FactoryNewComponent[GroupB]()
	c := FactoryNewComponent[GroupC]()
	world := newGroupedWorld(t, a, b, c)

	var entities []Entity
	for i := 0; i < 20; i++ {
		entities = append(entities, world.CreateEntity(C(a, GroupA{V: i})))
	}
	checkGroupPrefix(t, world)

	// Advance half the entities into deeper groups one component at a time
	for i := 0; i < 10; i++ {
		if err := b.Insert(world, entities[i], GroupB{V: i}); err != nil {
			t.Fatalf("insert B: %v", err)
		}
	}
	checkGroupPrefix(t, world)
	for i := 0; i < 5; i++ {
		if err := c.Insert(world, entities[i], GroupC{V: i}); err != nil {
			t.Fatalf("insert C: %v", err)
		}
	}
	checkGroupPrefix(t, world)

	// Removing a mid-family component must unwind the deeper groups too
	for i := 3; i < 8; i++ {
		if _, ok := b.Remove(world, entities[i]); !ok {
			t.Fatalf("remove B from %v failed", entities[i])
		}
	}
	checkGroupPrefix(t, world)

	// Destruction ungroups everything
	world.DestroyEntity(entities[0])
	world.DestroyEntity(entities[12])
	checkGroupPrefix(t, world)
}

func TestSetLayoutRegroupsExistingEntities(t *testing.T) {
	a := FactoryNewComponent[GroupA]()
	b := FactoryNewComponent[GroupB]()
	c := FactoryNewComponent[GroupC]()

	world := Factory.NewWorld()
	for i := 0; i < 10; i++ {
		world.CreateEntity(C(a, GroupA{}), C(b, GroupB{}))
	}
	for i := 0; i < 5; i++ {
		world.CreateEntity(C(a, GroupA{}), C(b, GroupB{}), C(c, GroupC{}))
	}

	layout, err := Factory.NewLayoutBuilder().
		AddGroup(a, b).
		AddGroup(a, b, c).
		Build()
	if err != nil {
		t.Fatalf("failed to build layout: %v", err)
	}

	world.SetLayout(layout)
	checkGroupPrefix(t, world)

	av := a.Borrow(world)
	bv := b.Borrow(world)
	cursor := Factory.NewCursor(Factory.NewQuery(av, bv))
	if !cursor.IsDense() {
		t.Fatal("query did not resolve to a dense range after SetLayout")
	}
	if got := cursor.TotalMatched(); got != 15 {
		t.Errorf("TotalMatched = %d, want 15", got)
	}

	// Applying the same layout again preserves membership
	world.SetLayout(layout)
	checkGroupPrefix(t, world)

	cursor = Factory.NewCursor(Factory.NewQuery(a.Borrow(world), b.Borrow(world)))
	if got := cursor.TotalMatched(); got != 15 {
		t.Errorf("TotalMatched after second SetLayout = %d, want 15", got)
	}
}
