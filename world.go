package depot

import (
	"reflect"
	"sync/atomic"
)

// WorldID uniquely identifies a World during the execution of the program.
type WorldID uint64

var worldIDCounter atomic.Uint64

func nextWorldID() WorldID {
	return WorldID(worldIDCounter.Add(1))
}

// World is the container for entities, components and resources. It composes
// the entity storage, the typed component storages with their group families,
// and the singleton resource store.
type World struct {
	id        WorldID
	entities  entityStorage
	storages  componentStorages
	resources resourceStorage
	tick      uint32
}

func newWorld() *World {
	return &World{
		id:        nextWorldID(),
		storages:  newComponentStorages(),
		resources: newResourceStorage(),
	}
}

// ID returns the WorldID which uniquely identifies this world.
func (w *World) ID() WorldID {
	return w.id
}

// Tick returns the current world tick.
func (w *World) Tick() uint32 {
	return w.tick
}

// IncrementTick advances the world tick. Hosts call this at frame boundaries;
// the tick wraps, which the change-detection comparison accounts for.
func (w *World) IncrementTick() {
	w.tick++
}

// CheckChangeTicks clamps all stored change ticks into a window near the
// current tick. Hosts should call it periodically to keep change detection
// sound across tick wraparound.
func (w *World) CheckChangeTicks() {
	w.storages.checkTicks(w.tick)
}

// Register creates component storages for the given types if they don't
// already exist.
func (w *World) Register(ctypes ...Component) {
	for _, c := range ctypes {
		w.storages.register(c)
	}
}

// IsRegistered reports whether a storage exists for the component type.
func (w *World) IsRegistered(c Component) bool {
	return w.storages.isRegistered(c)
}

// SetLayout arranges the storages into the group families described by
// layout and re-groups every live entity. Best called right after creating
// the world; it visits every entity otherwise.
func (w *World) SetLayout(layout *Layout) {
	w.entities.maintain()
	w.storages.setLayout(layout, w.entities.asSlice())
}

// CreateEntity creates an entity with the given components and returns it.
func (w *World) CreateEntity(components ...ComponentValue) Entity {
	e := w.entities.create()
	_ = w.InsertComponents(e, components...)
	return e
}

// CreateEntities creates count entities, each with the components produced
// by the maker. Each entity's components are inserted and grouped before the
// next entity is created. A nil maker creates empty entities.
func (w *World) CreateEntities(count int, maker func(i int) []ComponentValue) []Entity {
	entities := make([]Entity, count)
	for i := range entities {
		if maker != nil {
			entities[i] = w.CreateEntity(maker(i)...)
		} else {
			entities[i] = w.CreateEntity()
		}
	}
	return entities
}

// DestroyEntity removes an entity and all of its components. Returns whether
// the entity was alive.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.entities.destroy(e) {
		return false
	}
	w.storages.ungroupAll(e)
	for _, entry := range w.storages.ordered {
		entry.storage.removeEntity(e)
	}
	return true
}

// DestroyEntities removes the given entities. Returns the number that were
// alive.
func (w *World) DestroyEntities(entities ...Entity) int {
	destroyed := 0
	for _, e := range entities {
		if w.DestroyEntity(e) {
			destroyed++
		}
	}
	return destroyed
}

// InsertComponents attaches the given components to an alive entity,
// registering storages lazily and re-grouping the entity afterwards.
func (w *World) InsertComponents(e Entity, components ...ComponentValue) error {
	if !w.ContainsEntity(e) {
		return NoSuchEntityError{Entity: e}
	}
	for _, cv := range components {
		entry := w.storages.register(cv.ctype)
		entry.storage.insertErased(e, cv.value, w.tick)
	}
	for _, cv := range components {
		w.storages.groupComponents(w.storages.entryFor(cv.ctype).groupInfo, e)
	}
	return nil
}

// RemoveComponents detaches the given component types from an entity and
// returns their values. Returns false, removing nothing, unless the entity
// holds every one of them.
func (w *World) RemoveComponents(e Entity, ctypes ...Component) ([]any, bool) {
	for _, c := range ctypes {
		entry := w.storages.entryFor(c)
		if entry == nil || !entry.storage.Contains(e) {
			return nil, false
		}
	}
	values := make([]any, len(ctypes))
	for i, c := range ctypes {
		entry := w.storages.entryFor(c)
		w.storages.ungroupComponents(entry.groupInfo, e)
		values[i], _ = entry.storage.removeErased(e)
	}
	return values, true
}

// DeleteComponents detaches the given component types from an entity,
// discarding the values. Faster than RemoveComponents. Types the entity
// lacks are skipped.
func (w *World) DeleteComponents(e Entity, ctypes ...Component) {
	for _, c := range ctypes {
		entry := w.storages.entryFor(c)
		if entry == nil {
			continue
		}
		w.storages.ungroupComponents(entry.groupInfo, e)
		entry.storage.removeEntity(e)
	}
}

// ContainsEntity returns whether the entity is alive.
func (w *World) ContainsEntity(e Entity) bool {
	return w.entities.contains(e)
}

// Entities returns all live entities as a dense slice.
func (w *World) Entities() []Entity {
	return w.entities.asSlice()
}

// Maintain materialises entities created atomically (through Commands) since
// the last call. The dispatcher calls it at every flush barrier.
func (w *World) Maintain() {
	w.entities.maintain()
}

// ClearEntities removes all entities and their components.
func (w *World) ClearEntities() {
	w.entities.clear()
	w.storages.clear()
}

// ClearResources removes all resources.
func (w *World) ClearResources() {
	w.resources.clear()
}

// Clear removes all entities, components and resources.
func (w *World) Clear() {
	w.ClearEntities()
	w.ClearResources()
}

func (w *World) viewWorld() *World {
	return w
}

func (w *World) viewTicks() (uint32, uint32) {
	return w.tick, 0
}

// InsertResource stores a singleton value keyed by its type and returns the
// previous value, if any.
func InsertResource[T any](w *World, value T) (T, bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	prev, had := w.resources.insert(t, &value)
	if had {
		return *(prev.(*T)), true
	}
	var zero T
	return zero, false
}

// RemoveResource removes the resource of type T and returns it.
func RemoveResource[T any](w *World) (T, bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	prev, had := w.resources.remove(t)
	if !had {
		var zero T
		return zero, false
	}
	return *(prev.(*T)), true
}

// ContainsResource reports whether the world holds a resource of type T.
func ContainsResource[T any](w *World) bool {
	return w.resources.contains(reflect.TypeOf((*T)(nil)).Elem())
}
