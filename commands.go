package depot

import (
	"errors"
	"sync/atomic"

	"github.com/TheBitDrifter/bark"
)

// Command is a deferred mutation applied with exclusive world access at the
// next flush barrier.
type Command func(*World)

// commandBuffers is a fixed ring of per-system FIFO buffers. Systems claim a
// buffer each through next, so appends are uncontested even within a parallel
// stage; drain runs single-threaded at flush.
type commandBuffers struct {
	buffers []([]Command)
	cursor  atomic.Int32
}

func newCommandBuffers(count int) *commandBuffers {
	return &commandBuffers{buffers: make([][]Command, count)}
}

// next claims an unused buffer slot. Panics when more systems request
// Commands between flushes than the dispatcher sized the ring for.
func (cb *commandBuffers) next() *[]Command {
	slot := int(cb.cursor.Add(1)) - 1
	if slot >= len(cb.buffers) {
		panic(bark.AddTrace(errors.New("command buffers exhausted; Commands access not declared")))
	}
	return &cb.buffers[slot]
}

// drain collects all buffered commands in buffer order, clears the buffers
// and releases the slots for the next stage region.
func (cb *commandBuffers) drain() []Command {
	var commands []Command
	for i := range cb.buffers {
		commands = append(commands, cb.buffers[i]...)
		cb.buffers[i] = nil
	}
	cb.cursor.Store(0)
	return commands
}

// Commands queues world mutations from inside a system. Entity creation
// allocates atomically, so the returned Entity is usable in later commands
// from the same system; the entity itself materialises at the next flush.
type Commands struct {
	buffer   *[]Command
	entities *entityStorage
}

// CreateEntity allocates an entity now and queues insertion of its components.
func (c *Commands) CreateEntity(components ...ComponentValue) Entity {
	e := c.entities.createAtomic()
	c.Run(func(w *World) {
		_ = w.InsertComponents(e, components...)
	})
	return e
}

// DestroyEntity queues the removal of an entity and all of its components.
func (c *Commands) DestroyEntity(e Entity) {
	c.Run(func(w *World) {
		w.DestroyEntity(e)
	})
}

// InsertComponents queues attaching components to an entity.
func (c *Commands) InsertComponents(e Entity, components ...ComponentValue) {
	c.Run(func(w *World) {
		_ = w.InsertComponents(e, components...)
	})
}

// RemoveComponents queues detaching components from an entity.
func (c *Commands) RemoveComponents(e Entity, ctypes ...Component) {
	c.Run(func(w *World) {
		w.DeleteComponents(e, ctypes...)
	})
}

// Run queues an arbitrary closure over the world.
func (c *Commands) Run(cmd Command) {
	*c.buffer = append(*c.buffer, cmd)
}
