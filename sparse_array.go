package depot

// sparseArray maps entity indexes to dense slots. It is paged: pages are
// allocated on first write into their range, and reads into unmapped pages
// report absence. All operations are O(1).
type sparseArray struct {
	pages [][]IndexEntity
}

func (sa *sparseArray) pageFor(index uint32) []IndexEntity {
	page := int(index) / Config.sparsePageSize
	if page >= len(sa.pages) {
		return nil
	}
	return sa.pages[page]
}

func (sa *sparseArray) pageForAllocate(index uint32) []IndexEntity {
	page := int(index) / Config.sparsePageSize
	for page >= len(sa.pages) {
		sa.pages = append(sa.pages, nil)
	}
	if sa.pages[page] == nil {
		sa.pages[page] = make([]IndexEntity, Config.sparsePageSize)
	}
	return sa.pages[page]
}

// getIndexEntity returns the raw slot for an entity index, if mapped.
func (sa *sparseArray) getIndexEntity(index uint32) (IndexEntity, bool) {
	page := sa.pageFor(index)
	if page == nil {
		return IndexEntity{}, false
	}
	ie := page[int(index)%Config.sparsePageSize]
	return ie, ie.Valid()
}

// getEntity returns the dense index of entity iff the slot version matches.
func (sa *sparseArray) getEntity(e Entity) (uint32, bool) {
	page := sa.pageFor(e.index)
	if page == nil {
		return 0, false
	}
	ie := page[int(e.index)%Config.sparsePageSize]
	if ie.version != e.version {
		return 0, false
	}
	return ie.dense, true
}

// contains reports whether entity is present with a matching version.
func (sa *sparseArray) contains(e Entity) bool {
	_, ok := sa.getEntity(e)
	return ok
}

// insert writes the slot for an entity index, allocating its page if needed.
func (sa *sparseArray) insert(index uint32, ie IndexEntity) {
	page := sa.pageForAllocate(index)
	page[int(index)%Config.sparsePageSize] = ie
}

// remove clears the slot for entity and returns the dense index it held.
// It is a no-op when the slot version does not match.
func (sa *sparseArray) remove(e Entity) (uint32, bool) {
	page := sa.pageFor(e.index)
	if page == nil {
		return 0, false
	}
	slot := &page[int(e.index)%Config.sparsePageSize]
	if slot.version != e.version {
		return 0, false
	}
	dense := slot.dense
	*slot = IndexEntity{}
	return dense, true
}

// swap exchanges the dense indexes held by two mapped entity indexes.
func (sa *sparseArray) swap(a, b uint32) {
	pageA := sa.pageFor(a)
	pageB := sa.pageFor(b)
	slotA := &pageA[int(a)%Config.sparsePageSize]
	slotB := &pageB[int(b)%Config.sparsePageSize]
	slotA.dense, slotB.dense = slotB.dense, slotA.dense
}

// clear unmaps every slot. Pages stay allocated.
func (sa *sparseArray) clear() {
	for _, page := range sa.pages {
		for i := range page {
			page[i] = IndexEntity{}
		}
	}
}
