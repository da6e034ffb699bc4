package depot

import (
	"reflect"
)

// storageEntry pairs a registered storage with its current group info.
// groupInfo is nil while the component is ungrouped and is replaced wholesale
// by SetLayout, so borrows must read it fresh.
type storageEntry struct {
	storage   componentStorage
	groupInfo *storageGroupInfo
}

// componentStorages is the registry of typed storages plus the group-family
// metadata. The set of families and their storages only changes on SetLayout.
type componentStorages struct {
	entries  map[reflect.Type]*storageEntry
	ordered  []*storageEntry
	families []*groupFamily
}

func newComponentStorages() componentStorages {
	return componentStorages{entries: make(map[reflect.Type]*storageEntry)}
}

// register creates a storage for the component type if one doesn't already exist.
func (cs *componentStorages) register(c Component) *storageEntry {
	if entry, ok := cs.entries[c.Type()]; ok {
		return entry
	}
	entry := &storageEntry{storage: c.createStorage()}
	cs.entries[c.Type()] = entry
	cs.ordered = append(cs.ordered, entry)
	return entry
}

// entryFor looks up the registered storage for a component, or nil.
func (cs *componentStorages) entryFor(c Component) *storageEntry {
	return cs.entries[c.Type()]
}

func (cs *componentStorages) isRegistered(c Component) bool {
	_, ok := cs.entries[c.Type()]
	return ok
}

// groupComponents re-groups e in the family owning the just-inserted component.
func (cs *componentStorages) groupComponents(info *storageGroupInfo, e Entity) {
	if info == nil {
		return
	}
	info.family.groupEntity(e)
}

// ungroupComponents removes e from every group containing the component about
// to be removed. Must run before the storage mutation.
func (cs *componentStorages) ungroupComponents(info *storageGroupInfo, e Entity) {
	if info == nil {
		return
	}
	info.family.ungroupEntity(e, info.groupOffset)
}

// ungroupAll removes e from every group of every family, ahead of destruction.
func (cs *componentStorages) ungroupAll(e Entity) {
	for _, fam := range cs.families {
		fam.ungroupEntity(e, 0)
	}
}

// setLayout rebuilds the family set and re-groups every live entity so the
// group-prefix invariant holds for the new layout.
func (cs *componentStorages) setLayout(l *Layout, entities []Entity) {
	for _, entry := range cs.ordered {
		entry.groupInfo = nil
	}
	cs.families = nil

	for _, familyGroups := range l.families {
		fam := &groupFamily{}

		var comps []Component
		prevArity := 0
		for _, g := range familyGroups {
			for _, c := range g {
				if !containsComponent(comps, c) {
					comps = append(comps, c)
				}
			}
			arity := len(comps)
			fam.groups = append(fam.groups, group{
				arity:       arity,
				prevArity:   prevArity,
				includeMask: includeQueryMask(arity),
				excludeMask: excludeQueryMask(prevArity, arity),
			})
			prevArity = arity
		}

		for pos, c := range comps {
			entry := cs.register(c)
			fam.storages = append(fam.storages, entry.storage)

			offset := 0
			for gi := range fam.groups {
				if fam.groups[gi].arity > pos {
					offset = gi
					break
				}
			}
			entry.groupInfo = &storageGroupInfo{
				family:      fam,
				groupOffset: offset,
				bit:         uint32(pos),
			}
		}
		cs.families = append(cs.families, fam)
	}

	for _, fam := range cs.families {
		for _, e := range entities {
			fam.groupEntity(e)
		}
	}
}

func (cs *componentStorages) clear() {
	for _, entry := range cs.ordered {
		entry.storage.clear()
	}
	for _, fam := range cs.families {
		for gi := range fam.groups {
			fam.groups[gi].len = 0
		}
	}
}

func (cs *componentStorages) checkTicks(worldTick uint32) {
	for _, entry := range cs.ordered {
		entry.storage.checkTicks(worldTick)
	}
}

func containsComponent(comps []Component, c Component) bool {
	for _, other := range comps {
		if other.ID() == c.ID() {
			return true
		}
	}
	return false
}
