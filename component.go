package depot

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Component represents a data attribute/state that can be attached to entities.
// Components can be used to declare layouts, build queries and describe system
// accesses. Values are created with FactoryNewComponent.
type Component interface {
	table.ElementType
	createStorage() componentStorage
}

// ComponentType extends a base Component with typed access to its storage.
// It provides methods to insert, remove and borrow components of type T.
type ComponentType[T any] struct {
	table.ElementType
}

// FactoryNewComponent creates a new ComponentType for type T.
func FactoryNewComponent[T any]() ComponentType[T] {
	return ComponentType[T]{
		ElementType: table.FactoryNewElementType[T](),
	}
}

func (c ComponentType[T]) createStorage() componentStorage {
	return newTypedStorage[T]()
}

// Insert attaches a component value to entity, overwriting any existing value.
// The storage for T is registered lazily. Returns a NoSuchEntityError when the
// entity is not alive.
func (c ComponentType[T]) Insert(w *World, e Entity, value T) error {
	if !w.ContainsEntity(e) {
		return NoSuchEntityError{Entity: e}
	}
	entry := w.storages.register(c)
	entry.storage.(*typedStorage[T]).insert(e, value, w.tick)
	w.storages.groupComponents(entry.groupInfo, e)
	return nil
}

// Remove detaches the component from entity and returns its value.
func (c ComponentType[T]) Remove(w *World, e Entity) (T, bool) {
	sto, entry := storageOf(c, w)
	w.storages.ungroupComponents(entry.groupInfo, e)
	value, _, ok := sto.remove(e)
	return value, ok
}

// GetFromWorld returns a pointer to entity's component, if present.
func (c ComponentType[T]) GetFromWorld(w *World, e Entity) (*T, bool) {
	sto, _ := storageOf(c, w)
	return sto.get(e)
}

// storageOf resolves and downcasts the registered storage for a component
// handle. Missing storage is a programmer error and panics.
func storageOf[T any](c ComponentType[T], w *World) (*typedStorage[T], *storageEntry) {
	entry := w.storages.entryFor(c)
	if entry == nil {
		panicMissingStorage(c.Type())
	}
	return entry.storage.(*typedStorage[T]), entry
}

// ComponentValue pairs a component handle with a value, for the type-erased
// entity creation and insertion paths.
type ComponentValue struct {
	ctype Component
	value any
}

// C builds a ComponentValue from a typed handle and value.
func C[T any](c ComponentType[T], value T) ComponentValue {
	return ComponentValue{ctype: c, value: value}
}

// componentTypesOf extracts the handles from a set of component values.
func componentTypesOf(values []ComponentValue) []Component {
	ctypes := make([]Component, len(values))
	for i, v := range values {
		ctypes[i] = v.ctype
	}
	return ctypes
}

func componentTypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
