package depot

// Cursor provides iteration over the entities matching a query. Depending on
// how the query resolves against the declared groups it either walks a
// contiguous dense range (no per-entity lookups) or performs a sparse
// rendezvous across the participating storages.
type Cursor struct {
	query *Query

	// Resolved iteration state
	dense    bool
	entities []Entity
	offset   int
	others   []componentStorage
	excluded []componentStorage

	// Current iteration state
	pos    int
	slot   int
	entity Entity

	initialized bool
}

// newCursor creates a new cursor for the given query.
func newCursor(query *Query) *Cursor {
	return &Cursor{query: query}
}

// Initialize resolves the query into a dense range or a sparse driver. It is
// called automatically on the first Next.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}

	if lo, hi, ok := c.query.groupRange(); ok {
		c.dense = true
		c.offset = lo
		c.entities = c.query.gets[0].viewStorage().Entities()[lo:hi]
		c.others = nil
		c.excluded = nil
	} else {
		driver := c.query.shortestDriver()
		c.dense = false
		c.offset = 0
		c.entities = driver.Entities()
		c.others = c.query.participants(driver)
		c.excluded = c.query.excludedStorages()
	}

	c.pos = 0
	c.initialized = true
}

// Next advances to the next matching entity and returns whether one exists.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.Initialize()
	}

	for c.pos < len(c.entities) {
		e := c.entities[c.pos]
		c.pos++

		if !c.matches(e) {
			continue
		}
		c.entity = e
		c.slot = c.offset + c.pos - 1
		return true
	}

	c.Reset()
	return false
}

// matches applies the sparse rendezvous probes and the change-tick filter.
// Dense iteration skips the probes: group membership is positional.
func (c *Cursor) matches(e Entity) bool {
	if !c.dense {
		for _, sto := range c.others {
			if !sto.Contains(e) {
				return false
			}
		}
		for _, sto := range c.excluded {
			if sto.Contains(e) {
				return false
			}
		}
	}
	if c.query.filter != nil && !c.query.filter.Matches(e) {
		return false
	}
	return true
}

// CurrentEntity returns the entity at the current cursor position.
func (c *Cursor) CurrentEntity() Entity {
	return c.entity
}

// EntityIndex returns the dense slot of the current entity in the driving
// storage.
func (c *Cursor) EntityIndex() int {
	return c.slot
}

// IsDense reports whether the query resolved to a contiguous group range.
func (c *Cursor) IsDense() bool {
	if !c.initialized {
		c.Initialize()
	}
	return c.dense
}

// Remaining returns the number of candidate entities left to visit. For
// sparse iteration candidates may still fail the rendezvous.
func (c *Cursor) Remaining() int {
	if !c.initialized {
		c.Initialize()
	}
	return len(c.entities) - c.pos
}

// TotalMatched counts the entities matching the query, then resets.
func (c *Cursor) TotalMatched() int {
	total := 0
	for c.Next() {
		total++
	}
	return total
}

// Reset clears cursor state so iteration restarts from the beginning.
func (c *Cursor) Reset() {
	c.pos = 0
	c.slot = 0
	c.entity = NullEntity
	c.entities = nil
	c.others = nil
	c.excluded = nil
	c.dense = false
	c.offset = 0
	c.initialized = false
}
