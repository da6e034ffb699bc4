package depot

import (
	"errors"
	"math"
	"sync/atomic"

	"github.com/TheBitDrifter/bark"
)

var errEntityLimit = errors.New("no entity indexes left to allocate")

// entityAllocator issues generational entity IDs. Allocation is available both
// under exclusive access (allocate) and under shared access (allocateAtomic);
// atomically allocated entities are reconciled by maintain.
type entityAllocator struct {
	currentID   atomic.Uint32
	lastID      uint32
	recycled    []Entity
	recycledLen atomic.Int64
}

// allocate pops a recycled entity or mints a fresh index. Requires exclusive access.
func (a *entityAllocator) allocate() (Entity, bool) {
	if n := len(a.recycled); n > 0 {
		e := a.recycled[n-1]
		a.recycled = a.recycled[:n-1]
		a.recycledLen.Store(int64(n - 1))
		return e, true
	}
	id := a.currentID.Load()
	if id == math.MaxUint32 {
		return NullEntity, false
	}
	a.currentID.Store(id + 1)
	return newEntity(id), true
}

// allocateAtomic is the lock-free variant safe under shared access. It first
// tries to claim a recycled entity by CAS-decrementing recycledLen, then falls
// back to CAS-incrementing currentID. Fails only when the index space is spent.
func (a *entityAllocator) allocateAtomic() (Entity, bool) {
	for {
		n := a.recycledLen.Load()
		if n == 0 {
			break
		}
		if a.recycledLen.CompareAndSwap(n, n-1) {
			return a.recycled[n-1], true
		}
	}
	for {
		id := a.currentID.Load()
		if id == math.MaxUint32 {
			return NullEntity, false
		}
		if a.currentID.CompareAndSwap(id, id+1) {
			return newEntity(id), true
		}
	}
}

// deallocate recycles the entity's index under the next version. A slot whose
// version space is exhausted is retired and never handed out again.
func (a *entityAllocator) deallocate(e Entity) {
	if next, ok := e.withNextVersion(); ok {
		a.recycled = append(a.recycled, next)
		a.recycledLen.Add(1)
	}
}

// maintain reconciles atomic allocations with the exclusive structures and
// returns the entities handed out since the last call so the caller can
// materialise them.
func (a *entityAllocator) maintain() []Entity {
	var materialised []Entity

	remaining := int(a.recycledLen.Load())
	for _, e := range a.recycled[remaining:] {
		materialised = append(materialised, e)
	}
	a.recycled = a.recycled[:remaining]
	a.recycledLen.Store(int64(remaining))

	currentID := a.currentID.Load()
	for id := a.lastID; id < currentID; id++ {
		materialised = append(materialised, newEntity(id))
	}
	a.lastID = currentID

	return materialised
}

func (a *entityAllocator) clear() {
	a.currentID.Store(0)
	a.lastID = 0
	a.recycled = a.recycled[:0]
	a.recycledLen.Store(0)
}

// entitySparseSet is the live-entity membership structure: a sparse array over
// entity indexes plus the dense iteration slice.
type entitySparseSet struct {
	sparse   sparseArray
	entities []Entity
}

func (s *entitySparseSet) insert(e Entity) {
	if ie, ok := s.sparse.getIndexEntity(e.index); ok {
		s.entities[ie.dense] = e
		s.sparse.insert(e.index, IndexEntity{dense: ie.dense, version: e.version})
		return
	}
	s.sparse.insert(e.index, IndexEntity{dense: uint32(len(s.entities)), version: e.version})
	s.entities = append(s.entities, e)
}

func (s *entitySparseSet) remove(e Entity) bool {
	dense, ok := s.sparse.remove(e)
	if !ok {
		return false
	}
	last := len(s.entities) - 1
	if int(dense) != last {
		moved := s.entities[last]
		s.entities[dense] = moved
		s.sparse.insert(moved.index, IndexEntity{dense: dense, version: moved.version})
	}
	s.entities = s.entities[:last]
	return true
}

func (s *entitySparseSet) contains(e Entity) bool {
	return s.sparse.contains(e)
}

func (s *entitySparseSet) clear() {
	s.sparse.clear()
	s.entities = s.entities[:0]
}

// entityStorage combines the allocator with the live-entity set. An entity is
// live iff it appears in the dense slice; atomically created entities become
// live on the next maintain.
type entityStorage struct {
	storage   entitySparseSet
	allocator entityAllocator
}

// create allocates and immediately materialises an entity. Panics when the
// u32 index space is exhausted.
func (es *entityStorage) create() Entity {
	es.maintain()

	e, ok := es.allocator.allocate()
	if !ok {
		panic(bark.AddTrace(errEntityLimit))
	}
	es.storage.insert(e)
	return e
}

// createAtomic allocates under shared access. The entity is inserted into the
// live set on the next maintain.
func (es *entityStorage) createAtomic() Entity {
	e, ok := es.allocator.allocateAtomic()
	if !ok {
		panic(bark.AddTrace(errEntityLimit))
	}
	return e
}

// destroy removes a live entity and recycles its index.
func (es *entityStorage) destroy(e Entity) bool {
	es.maintain()

	if !es.storage.remove(e) {
		return false
	}
	es.allocator.deallocate(e)
	return true
}

// maintain materialises entities allocated atomically since the last call.
func (es *entityStorage) maintain() {
	for _, e := range es.allocator.maintain() {
		es.storage.insert(e)
	}
}

func (es *entityStorage) contains(e Entity) bool {
	return es.storage.contains(e)
}

// asSlice returns the live entities as a dense slice.
func (es *entityStorage) asSlice() []Entity {
	return es.storage.entities
}

func (es *entityStorage) clear() {
	es.storage.clear()
	es.allocator.clear()
}
