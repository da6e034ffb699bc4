package depot

import "reflect"

// ViewSource is anything views can be borrowed from: a *World directly, or
// the *Registry handed to systems by the dispatcher (which also carries the
// change tick of the previous run).
type ViewSource interface {
	viewWorld() *World
	viewTicks() (worldTick, changeTick uint32)
}

// View is the type-erased face of Comp/CompMut, used by query
// composition, group-range resolution and sparse rendezvous.
type View interface {
	viewGroupInfo() *storageGroupInfo
	viewStorage() componentStorage
	viewChangeTicks() (worldTick, changeTick uint32)
	ticksFor(e Entity) (ChangeTicks, bool)
}

// Comp is a shared view over all components of type T. The storage must not
// be mutated through a shared view; the dispatcher's conflict analysis keeps
// writers out of stages holding one.
type Comp[T any] struct {
	storage    *typedStorage[T]
	groupInfo  *storageGroupInfo
	worldTick  uint32
	changeTick uint32
}

// Borrow borrows a shared view over T's storage. Panics when no storage for T
// is registered.
func (c ComponentType[T]) Borrow(src ViewSource) Comp[T] {
	sto, entry := storageOf(c, src.viewWorld())
	worldTick, changeTick := src.viewTicks()
	return Comp[T]{
		storage:    sto,
		groupInfo:  entry.groupInfo,
		worldTick:  worldTick,
		changeTick: changeTick,
	}
}

// Get returns a pointer to entity's component, if present.
func (v Comp[T]) Get(e Entity) (*T, bool) {
	return v.storage.get(e)
}

// GetWithTicks returns entity's component together with its change ticks.
func (v Comp[T]) GetWithTicks(e Entity) (*T, ChangeTicks, bool) {
	return v.storage.getWithTicks(e)
}

// GetTicks returns the change ticks of entity's component.
func (v Comp[T]) GetTicks(e Entity) (ChangeTicks, bool) {
	_, ticks, ok := v.storage.getWithTicks(e)
	return ticks, ok
}

// Contains reports whether entity owns a T.
func (v Comp[T]) Contains(e Entity) bool {
	return v.storage.Contains(e)
}

// Len returns the number of components in the view.
func (v Comp[T]) Len() int {
	return v.storage.Len()
}

// IsEmpty returns whether the view is empty.
func (v Comp[T]) IsEmpty() bool {
	return v.storage.Len() == 0
}

// Entities returns all entities in the view as a dense slice.
func (v Comp[T]) Entities() []Entity {
	return v.storage.dense
}

// Components returns all components in the view as a dense slice.
func (v Comp[T]) Components() []T {
	return v.storage.data
}

// Ticks returns all change ticks in the view as a dense slice.
func (v Comp[T]) Ticks() []ChangeTicks {
	return v.storage.ticks
}

// GetFromCursor returns the component for the entity at the cursor position.
func (v Comp[T]) GetFromCursor(cur *Cursor) *T {
	if cur.dense {
		return &v.storage.data[cur.slot]
	}
	slot, _ := v.storage.sparse.getEntity(cur.entity)
	return &v.storage.data[slot]
}

// GetFromCursorSafe safely retrieves the component at the cursor position,
// checking that the entity actually owns one.
func (v Comp[T]) GetFromCursorSafe(cur *Cursor) (bool, *T) {
	slot, ok := v.storage.sparse.getEntity(cur.CurrentEntity())
	if !ok {
		return false, nil
	}
	return true, &v.storage.data[slot]
}

func (v Comp[T]) viewGroupInfo() *storageGroupInfo           { return v.groupInfo }
func (v Comp[T]) viewStorage() componentStorage              { return v.storage }
func (v Comp[T]) viewChangeTicks() (uint32, uint32)          { return v.worldTick, v.changeTick }
func (v Comp[T]) ticksFor(e Entity) (ChangeTicks, bool) {
	_, ticks, ok := v.storage.getWithTicks(e)
	return ticks, ok
}

// CompMut is an exclusive view over all components of type T. Handing out a
// slot through a mutable accessor records the world tick in the slot's
// Changed tick.
type CompMut[T any] struct {
	storage    *typedStorage[T]
	groupInfo  *storageGroupInfo
	worldTick  uint32
	changeTick uint32
}

// BorrowMut borrows an exclusive view over T's storage. Panics when no
// storage for T is registered.
func (c ComponentType[T]) BorrowMut(src ViewSource) CompMut[T] {
	sto, entry := storageOf(c, src.viewWorld())
	worldTick, changeTick := src.viewTicks()
	return CompMut[T]{
		storage:    sto,
		groupInfo:  entry.groupInfo,
		worldTick:  worldTick,
		changeTick: changeTick,
	}
}

// Get returns a mutable pointer to entity's component and marks it changed.
func (v CompMut[T]) Get(e Entity) (*T, bool) {
	slot, ok := v.storage.sparse.getEntity(e)
	if !ok {
		return nil, false
	}
	v.storage.ticks[slot].Changed = v.worldTick
	return &v.storage.data[slot], true
}

// GetWithTicks returns entity's component and ticks, marking it changed.
func (v CompMut[T]) GetWithTicks(e Entity) (*T, ChangeTicks, bool) {
	slot, ok := v.storage.sparse.getEntity(e)
	if !ok {
		return nil, ChangeTicks{}, false
	}
	v.storage.ticks[slot].Changed = v.worldTick
	return &v.storage.data[slot], v.storage.ticks[slot], true
}

// GetTicks returns the change ticks of entity's component without marking it.
func (v CompMut[T]) GetTicks(e Entity) (ChangeTicks, bool) {
	_, ticks, ok := v.storage.getWithTicks(e)
	return ticks, ok
}

// Contains reports whether entity owns a T.
func (v CompMut[T]) Contains(e Entity) bool {
	return v.storage.Contains(e)
}

// Len returns the number of components in the view.
func (v CompMut[T]) Len() int {
	return v.storage.Len()
}

// IsEmpty returns whether the view is empty.
func (v CompMut[T]) IsEmpty() bool {
	return v.storage.Len() == 0
}

// Entities returns all entities in the view as a dense slice.
func (v CompMut[T]) Entities() []Entity {
	return v.storage.dense
}

// GetFromCursor returns the component at the cursor position and marks it changed.
func (v CompMut[T]) GetFromCursor(cur *Cursor) *T {
	var slot uint32
	if cur.dense {
		slot = uint32(cur.slot)
	} else {
		slot, _ = v.storage.sparse.getEntity(cur.entity)
	}
	v.storage.ticks[slot].Changed = v.worldTick
	return &v.storage.data[slot]
}

// GetFromCursorSafe safely retrieves and marks the component at the cursor
// position, checking that the entity actually owns one.
func (v CompMut[T]) GetFromCursorSafe(cur *Cursor) (bool, *T) {
	slot, ok := v.storage.sparse.getEntity(cur.CurrentEntity())
	if !ok {
		return false, nil
	}
	v.storage.ticks[slot].Changed = v.worldTick
	return true, &v.storage.data[slot]
}

func (v CompMut[T]) viewGroupInfo() *storageGroupInfo  { return v.groupInfo }
func (v CompMut[T]) viewStorage() componentStorage     { return v.storage }
func (v CompMut[T]) viewChangeTicks() (uint32, uint32) { return v.worldTick, v.changeTick }
func (v CompMut[T]) ticksFor(e Entity) (ChangeTicks, bool) {
	_, ticks, ok := v.storage.getWithTicks(e)
	return ticks, ok
}

// Res is a shared view over the resource of type T.
type Res[T any] struct {
	value *T
}

// Value returns the resource.
func (r Res[T]) Value() *T {
	return r.value
}

// ResMut is an exclusive view over the resource of type T.
type ResMut[T any] struct {
	value *T
}

// Value returns the resource for mutation.
func (r ResMut[T]) Value() *T {
	return r.value
}

// BorrowRes borrows a shared view over the resource of type T. Panics when
// the resource is absent.
func BorrowRes[T any](src ViewSource) Res[T] {
	return Res[T]{value: resourcePtr[T](src.viewWorld())}
}

// BorrowResMut borrows an exclusive view over the resource of type T. Panics
// when the resource is absent.
func BorrowResMut[T any](src ViewSource) ResMut[T] {
	return ResMut[T]{value: resourcePtr[T](src.viewWorld())}
}

func resourcePtr[T any](w *World) *T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	cell := w.resources.lookup(t)
	if cell == nil || !cell.present {
		panicMissingResource(t)
	}
	return cell.value.(*T)
}
