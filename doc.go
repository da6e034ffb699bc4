/*
Package depot provides a sparse-set Entity-Component-System (ECS) engine for games and simulations.

Depot stores components in per-type sparse sets and lets callers declare nested component
groupings that keep matching entities packed at the front of every participating dense array.
Queries that line up with a declared group iterate a contiguous range with no per-entity
lookups; everything else falls back to a sparse-array rendezvous. A dispatcher analyses the
data each system touches and runs non-conflicting systems in parallel, with deferred commands
applied at flush barriers.

Core Concepts:

  - Entity: A generational identifier that represents a game object.
  - Component: A data container that defines entity attributes.
  - Group: A nested set of component types kept prefix-packed for range iteration.
  - Query: A way to find entities with specific component combinations.
  - System: A function over component and resource views, scheduled by the Dispatcher.

Basic Usage:

	// Create a world
	world := depot.Factory.NewWorld()

	// Define components
	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()

	// Create entities
	world.CreateEntity(depot.C(position, Position{X: 0, Y: 0}), depot.C(velocity, Velocity{X: 1, Y: 2}))

	// Query entities and process them
	pos := position.BorrowMut(world)
	vel := velocity.Borrow(world)
	query := depot.Factory.NewQuery(pos, vel)
	cursor := depot.Factory.NewCursor(query)

	for cursor.Next() {
		p := pos.GetFromCursor(cursor)
		v := vel.GetFromCursor(cursor)
		p.X += v.X
		p.Y += v.Y
	}

Depot is a sibling library to Warehouse in the Bappa Framework family, trading archetype
tables for sparse sets and user-declared groups.
*/
package depot
