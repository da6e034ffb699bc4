package depot

import "testing"

// checkStorageDense verifies that the sparse and dense structures of a
// storage agree for every stored entity.
func checkStorageDense(t *testing.T, sto componentStorage) {
	t.Helper()
	for i, e := range sto.Entities() {
		slot, ok := sto.DenseIndexOf(e)
		if !ok {
			t.Fatalf("dense entity %v missing from sparse array", e)
		}
		if slot != i {
			t.Fatalf("entity %v: sparse says slot %d, dense says %d", e, slot, i)
		}
	}
}

func TestStorageInsertRemove(t *testing.T) {
	sto := newTypedStorage[Position]()
	a := newEntity(0)
	b := newEntity(1)
	c := newEntity(2)

	sto.insert(a, Position{X: 1}, 0)
	sto.insert(b, Position{X: 2}, 0)
	sto.insert(c, Position{X: 3}, 0)
	checkStorageDense(t, sto)

	// Overwrite keeps the slot and marks it changed
	sto.insert(b, Position{X: 20}, 7)
	if sto.Len() != 3 {
		t.Fatalf("Len = %d after overwrite, want 3", sto.Len())
	}
	if p, _ := sto.get(b); p.X != 20 {
		t.Errorf("overwritten component X = %v, want 20", p.X)
	}
	if _, ticks, _ := sto.getWithTicks(b); ticks.Changed != 7 || ticks.Inserted != 0 {
		t.Errorf("overwrite ticks = %+v, want Inserted 0 Changed 7", ticks)
	}

	// Swap-remove moves the last entity into the hole
	value, _, ok := sto.remove(a)
	if !ok || value.X != 1 {
		t.Fatalf("remove returned (%v, %v), want (X:1, true)", value, ok)
	}
	if sto.Len() != 2 {
		t.Fatalf("Len = %d after remove, want 2", sto.Len())
	}
	checkStorageDense(t, sto)

	if _, ok := sto.get(a); ok {
		t.Error("removed entity still present")
	}
	if p, ok := sto.get(c); !ok || p.X != 3 {
		t.Error("moved entity lost its component")
	}
}

func TestStorageRemoveMissing(t *testing.T) {
	sto := newTypedStorage[Position]()
	sto.insert(newEntity(0), Position{}, 0)

	if _, _, ok := sto.remove(newEntity(5)); ok {
		t.Error("removing an absent entity succeeded")
	}

	// A stale version must not resolve
	stale := Entity{index: 0, version: 99}
	if _, _, ok := sto.remove(stale); ok {
		t.Error("removing with a stale version succeeded")
	}
	if sto.Len() != 1 {
		t.Errorf("Len = %d, want 1", sto.Len())
	}
}

func TestStorageSwap(t *testing.T) {
	sto := newTypedStorage[Position]()
	entities := make([]Entity, 4)
	for i := range entities {
		entities[i] = newEntity(uint32(i))
		sto.insert(entities[i], Position{X: float64(i)}, 0)
	}

	sto.Swap(0, 3)
	checkStorageDense(t, sto)

	if got := sto.EntityAt(0); got != entities[3] {
		t.Errorf("EntityAt(0) = %v, want %v", got, entities[3])
	}
	if p, _ := sto.get(entities[3]); p.X != 3 {
		t.Errorf("swapped entity component X = %v, want 3", p.X)
	}

	// Self-swap is a no-op
	sto.Swap(1, 1)
	checkStorageDense(t, sto)
}

func TestStorageClear(t *testing.T) {
	sto := newTypedStorage[Position]()
	for i := 0; i < 8; i++ {
		sto.insert(newEntity(uint32(i)), Position{}, 0)
	}

	sto.clear()

	if sto.Len() != 0 {
		t.Errorf("Len = %d after clear, want 0", sto.Len())
	}
	if sto.Contains(newEntity(3)) {
		t.Error("cleared storage still contains an entity")
	}
}

func TestStorageChurn(t *testing.T) {
	sto := newTypedStorage[Health]()

	// Interleave inserts and removes across a few sparse pages
	for round := 0; round < 3; round++ {
		for i := 0; i < 200; i++ {
			sto.insert(newEntity(uint32(i)), Health{Current: i}, 0)
		}
		checkStorageDense(t, sto)
		for i := 0; i < 200; i += 2 {
			sto.remove(newEntity(uint32(i)))
		}
		checkStorageDense(t, sto)
		for i := 1; i < 200; i += 2 {
			if h, ok := sto.get(newEntity(uint32(i))); !ok || h.Current != i {
				t.Fatalf("entity %d: component = %v, %v", i, h, ok)
			}
		}
		sto.clear()
	}
}

func TestSparseArrayPaging(t *testing.T) {
	var sa sparseArray

	// Reads into unmapped pages report absence
	if _, ok := sa.getEntity(newEntity(1_000_000)); ok {
		t.Fatal("unmapped page reported presence")
	}

	far := newEntity(1_000_000)
	sa.insert(far.index, IndexEntity{dense: 42, version: far.version})

	dense, ok := sa.getEntity(far)
	if !ok || dense != 42 {
		t.Errorf("getEntity = (%d, %v), want (42, true)", dense, ok)
	}

	// Only the touched page should be mapped
	mapped := 0
	for _, page := range sa.pages {
		if page != nil {
			mapped++
		}
	}
	if mapped != 1 {
		t.Errorf("mapped pages = %d, want 1", mapped)
	}
}
