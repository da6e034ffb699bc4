package depot

// factory implements the factory pattern for depot components.
type factory struct{}

// Factory is the global factory instance for creating depot components.
var Factory factory

// NewWorld creates an empty World.
func (f factory) NewWorld() *World {
	return newWorld()
}

// NewWorldWithLayout creates a World with its storages arranged as described
// by layout.
func (f factory) NewWorldWithLayout(layout *Layout) *World {
	w := newWorld()
	w.SetLayout(layout)
	return w
}

// NewQuery creates a query yielding the given views.
func (f factory) NewQuery(gets ...View) *Query {
	return newQuery(gets...)
}

// NewCursor creates a new Cursor over the specified query.
func (f factory) NewCursor(query *Query) *Cursor {
	return newCursor(query)
}

// NewLayoutBuilder creates an empty LayoutBuilder.
func (f factory) NewLayoutBuilder() *LayoutBuilder {
	return &LayoutBuilder{}
}

// NewDispatcherBuilder creates an empty DispatcherBuilder.
func (f factory) NewDispatcherBuilder() *DispatcherBuilder {
	return &DispatcherBuilder{}
}
