package depot

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// componentStorage is the type-erased face of a typed storage, used by the
// registry, the grouping machinery and sparse query rendezvous. Views downcast
// to the typed storage once per borrow, so component reads during iteration
// are typed; only the sparse membership probes go through this interface.
type componentStorage interface {
	Len() int
	Entities() []Entity
	Contains(e Entity) bool
	DenseIndexOf(e Entity) (int, bool)
	EntityAt(i int) Entity
	TicksAt(i int) ChangeTicks
	Swap(i, j int)

	insertErased(e Entity, value any, tick uint32)
	removeErased(e Entity) (any, bool)
	removeEntity(e Entity) bool
	clear()
	checkTicks(worldTick uint32)
	componentType() reflect.Type
}

// typedStorage is the sparse set for one component type: a sparse array giving
// entity -> slot, plus parallel dense arrays of entities, payloads and change
// ticks.
//
// Invariant: for every i, sparse[dense[i].Index()] maps back to (i, dense[i].Version()).
// Swap-remove preserves it.
type typedStorage[T any] struct {
	sparse sparseArray
	dense  []Entity
	data   []T
	ticks  []ChangeTicks
}

func newTypedStorage[T any]() *typedStorage[T] {
	return &typedStorage[T]{}
}

// insert attaches value to e. An existing slot is overwritten and marked
// changed; a new slot gets both ticks set to tick.
func (s *typedStorage[T]) insert(e Entity, value T, tick uint32) (prev T, replaced bool) {
	if slot, ok := s.sparse.getEntity(e); ok {
		prev = s.data[slot]
		s.data[slot] = value
		s.ticks[slot].Changed = tick
		return prev, true
	}
	s.sparse.insert(e.index, IndexEntity{dense: uint32(len(s.dense)), version: e.version})
	s.dense = append(s.dense, e)
	s.data = append(s.data, value)
	s.ticks = append(s.ticks, newChangeTicks(tick))
	return prev, false
}

// remove detaches e's component via swap-remove, patching the sparse slot of
// the moved entity.
func (s *typedStorage[T]) remove(e Entity) (T, ChangeTicks, bool) {
	var zero T
	slot, ok := s.sparse.remove(e)
	if !ok {
		return zero, ChangeTicks{}, false
	}

	value := s.data[slot]
	ticks := s.ticks[slot]

	last := len(s.dense) - 1
	if int(slot) != last {
		moved := s.dense[last]
		s.dense[slot] = moved
		s.data[slot] = s.data[last]
		s.ticks[slot] = s.ticks[last]
		s.sparse.insert(moved.index, IndexEntity{dense: slot, version: moved.version})
	}
	s.dense = s.dense[:last]
	s.data[last] = zero
	s.data = s.data[:last]
	s.ticks = s.ticks[:last]

	return value, ticks, true
}

// get returns a pointer to e's component, if present.
func (s *typedStorage[T]) get(e Entity) (*T, bool) {
	slot, ok := s.sparse.getEntity(e)
	if !ok {
		return nil, false
	}
	return &s.data[slot], true
}

// getWithTicks returns the component together with its change ticks.
func (s *typedStorage[T]) getWithTicks(e Entity) (*T, ChangeTicks, bool) {
	slot, ok := s.sparse.getEntity(e)
	if !ok {
		return nil, ChangeTicks{}, false
	}
	return &s.data[slot], s.ticks[slot], true
}

// Len returns the number of stored components.
func (s *typedStorage[T]) Len() int {
	return len(s.dense)
}

// Entities returns the dense entity slice.
func (s *typedStorage[T]) Entities() []Entity {
	return s.dense
}

// Contains reports whether e owns a component in this storage.
func (s *typedStorage[T]) Contains(e Entity) bool {
	return s.sparse.contains(e)
}

// DenseIndexOf returns e's slot in the dense arrays.
func (s *typedStorage[T]) DenseIndexOf(e Entity) (int, bool) {
	slot, ok := s.sparse.getEntity(e)
	return int(slot), ok
}

// EntityAt returns the entity owning dense slot i.
func (s *typedStorage[T]) EntityAt(i int) Entity {
	return s.dense[i]
}

// TicksAt returns the change ticks of dense slot i.
func (s *typedStorage[T]) TicksAt(i int) ChangeTicks {
	return s.ticks[i]
}

// Swap exchanges two dense slots, updating both sparse mappings. Required by
// the grouping machinery.
func (s *typedStorage[T]) Swap(i, j int) {
	if i == j {
		return
	}
	s.sparse.swap(s.dense[i].index, s.dense[j].index)
	s.dense[i], s.dense[j] = s.dense[j], s.dense[i]
	s.data[i], s.data[j] = s.data[j], s.data[i]
	s.ticks[i], s.ticks[j] = s.ticks[j], s.ticks[i]
}

func (s *typedStorage[T]) insertErased(e Entity, value any, tick uint32) {
	typed, ok := value.(T)
	if !ok {
		panic(bark.AddTrace(fmt.Errorf(
			"invalid value type %T for component %v", value, s.componentType(),
		)))
	}
	s.insert(e, typed, tick)
}

func (s *typedStorage[T]) removeErased(e Entity) (any, bool) {
	value, _, ok := s.remove(e)
	if !ok {
		return nil, false
	}
	return value, true
}

func (s *typedStorage[T]) removeEntity(e Entity) bool {
	_, _, ok := s.remove(e)
	return ok
}

func (s *typedStorage[T]) clear() {
	var zero T
	s.sparse.clear()
	s.dense = s.dense[:0]
	for i := range s.data {
		s.data[i] = zero
	}
	s.data = s.data[:0]
	s.ticks = s.ticks[:0]
}

func (s *typedStorage[T]) checkTicks(worldTick uint32) {
	for i := range s.ticks {
		s.ticks[i].check(worldTick)
	}
}

func (s *typedStorage[T]) componentType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
