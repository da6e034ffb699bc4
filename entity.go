package depot

import (
	"fmt"
	"math"
)

// NullEntity is the zero Entity. It never refers to a live entity.
var NullEntity = Entity{}

// Entity is a generational identifier for a game object. The index is reused
// after destruction; the version distinguishes reuses of the same index.
// Equality includes the version.
type Entity struct {
	index   uint32
	version uint32
}

// newEntity returns an entity with the given index and the first valid version.
func newEntity(index uint32) Entity {
	return Entity{index: index, version: 1}
}

// Index returns the entity's slot index.
func (e Entity) Index() uint32 {
	return e.index
}

// Version returns the entity's generation. Valid entities have a nonzero version.
func (e Entity) Version() uint32 {
	return e.version
}

// Valid returns whether this entity has a valid version
func (e Entity) Valid() bool {
	return e.version != 0
}

// withNextVersion returns the entity for the next reuse of this index.
// The second result is false when the version space for the index is exhausted,
// in which case the index is retired.
func (e Entity) withNextVersion() (Entity, bool) {
	if e.version == math.MaxUint32 {
		return NullEntity, false
	}
	return Entity{index: e.index, version: e.version + 1}, true
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d, v%d)", e.index, e.version)
}

// IndexEntity is the payload stored in a sparse-array slot: the dense index of
// the owning entity plus the version the slot was written with. The slot is
// present for a querying entity only when the versions match.
type IndexEntity struct {
	dense   uint32
	version uint32
}

// Dense returns the dense-array index held by this slot.
func (ie IndexEntity) Dense() uint32 {
	return ie.dense
}

// Valid returns whether the slot holds a live mapping
func (ie IndexEntity) Valid() bool {
	return ie.version != 0
}
