package depot

// TickFilter narrows a query by per-slot change ticks. Filters are bound to a
// view and compare its ticks against the (worldTick, changeTick) window of the
// run that borrowed it: a tick matches when it is newer than the previous run
// and no newer than the current world tick.
type TickFilter interface {
	Matches(e Entity) bool
}

// Added matches entities whose component was inserted since the last run.
func Added(view View) TickFilter {
	return addedFilter{view: view}
}

// Mutated matches entities whose component was written since the last run.
func Mutated(view View) TickFilter {
	return mutatedFilter{view: view}
}

// FilterOr matches when either filter matches.
func FilterOr(a, b TickFilter) TickFilter {
	return orFilter{a: a, b: b}
}

// FilterNot inverts a filter.
func FilterNot(f TickFilter) TickFilter {
	return notFilter{inner: f}
}

type addedFilter struct {
	view View
}

func (f addedFilter) Matches(e Entity) bool {
	ticks, ok := f.view.ticksFor(e)
	if !ok {
		return false
	}
	worldTick, changeTick := f.view.viewChangeTicks()
	return tickIsNewer(ticks.Inserted, changeTick, worldTick)
}

type mutatedFilter struct {
	view View
}

func (f mutatedFilter) Matches(e Entity) bool {
	ticks, ok := f.view.ticksFor(e)
	if !ok {
		return false
	}
	worldTick, changeTick := f.view.viewChangeTicks()
	return tickIsNewer(ticks.Changed, changeTick, worldTick)
}

type orFilter struct {
	a, b TickFilter
}

func (f orFilter) Matches(e Entity) bool {
	return f.a.Matches(e) || f.b.Matches(e)
}

type notFilter struct {
	inner TickFilter
}

func (f notFilter) Matches(e Entity) bool {
	return !f.inner.Matches(e)
}
