package depot

import "reflect"

// Registry is the transient view a system receives for one dispatcher stage:
// the world, the command buffer ring and the change tick of the previous run.
type Registry struct {
	world      *World
	buffers    *commandBuffers
	worldTick  uint32
	changeTick uint32

	// claimed is the command buffer pre-assigned by a parallel stage, so
	// buffer order follows system order instead of goroutine scheduling.
	claimed *[]Command
}

func newRegistry(w *World, buffers *commandBuffers, worldTick, changeTick uint32) *Registry {
	return &Registry{
		world:      w,
		buffers:    buffers,
		worldTick:  worldTick,
		changeTick: changeTick,
	}
}

// Commands claims this system's command buffer. Call once per system run.
// In a parallel stage it returns the buffer pre-claimed for the system;
// otherwise each call consumes a ring slot.
func (r *Registry) Commands() Commands {
	buffer := r.claimed
	if buffer == nil {
		buffer = r.buffers.next()
	}
	return Commands{
		buffer:   buffer,
		entities: &r.world.entities,
	}
}

// World returns the world for read-only inspection (entity liveness, tick).
func (r *Registry) World() *World {
	return r.world
}

func (r *Registry) viewWorld() *World {
	return r.world
}

func (r *Registry) viewTicks() (uint32, uint32) {
	return r.worldTick, r.changeTick
}

// AccessKind classifies the data a system touches.
type AccessKind int

const (
	// AccessKindCommands is a command buffer claim; it never conflicts.
	AccessKindCommands AccessKind = iota
	// AccessKindComp is a shared view over a component storage.
	AccessKindComp
	// AccessKindCompMut is an exclusive view over a component storage.
	AccessKindCompMut
	// AccessKindRes is a shared view over a resource.
	AccessKindRes
	// AccessKindResMut is an exclusive view over a resource.
	AccessKindResMut
)

// Access declares one item of data a system touches. The dispatcher merges
// systems into parallel stages only when their access sets are pairwise
// non-conflicting.
type Access struct {
	kind      AccessKind
	typ       reflect.Type
	component Component
}

// CommandsAccess declares a command buffer claim.
func CommandsAccess() Access {
	return Access{kind: AccessKindCommands}
}

// Access declares a shared view over T's storage.
func (c ComponentType[T]) Access() Access {
	return Access{kind: AccessKindComp, typ: c.Type(), component: c}
}

// MutAccess declares an exclusive view over T's storage.
func (c ComponentType[T]) MutAccess() Access {
	return Access{kind: AccessKindCompMut, typ: c.Type(), component: c}
}

// ResAccess declares a shared view over the resource of type T.
func ResAccess[T any]() Access {
	return Access{kind: AccessKindRes, typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// ResMutAccess declares an exclusive view over the resource of type T.
func ResMutAccess[T any]() Access {
	return Access{kind: AccessKindResMut, typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// ConflictsWith reports whether two accesses reference the same type with at
// least one exclusive side, preventing the owning systems from sharing a stage.
func (a Access) ConflictsWith(b Access) bool {
	switch {
	case a.kind == AccessKindComp && b.kind == AccessKindCompMut,
		a.kind == AccessKindCompMut && b.kind == AccessKindComp,
		a.kind == AccessKindCompMut && b.kind == AccessKindCompMut:
		return a.typ == b.typ
	case a.kind == AccessKindRes && b.kind == AccessKindResMut,
		a.kind == AccessKindResMut && b.kind == AccessKindRes,
		a.kind == AccessKindResMut && b.kind == AccessKindResMut:
		return a.typ == b.typ
	}
	return false
}
