package depot

// System pairs a runnable function with the declared set of data it accesses.
// The function borrows its views from the Registry; the access list is what
// the dispatcher analyses for conflicts, so it must cover every borrow the
// function performs.
type System struct {
	run      func(*Registry) error
	accesses []Access
}

// NewSystem creates a system from a function and its declared accesses.
func NewSystem(run func(*Registry) error, accesses ...Access) System {
	return System{run: run, accesses: accesses}
}

// Accesses returns the system's declared access list.
func (s System) Accesses() []Access {
	return s.accesses
}

// LocalFn is a function run on the dispatching thread with exclusive world
// access. It needs no access declaration.
type LocalFn func(*World) error

func conflictsWithAny(systems []System, candidate System) bool {
	for _, sys := range systems {
		for _, a := range sys.accesses {
			for _, b := range candidate.accesses {
				if a.ConflictsWith(b) {
					return true
				}
			}
		}
	}
	return false
}

func countCommandsAccesses(systems []System) int {
	count := 0
	for _, sys := range systems {
		for _, a := range sys.accesses {
			if a.kind == AccessKindCommands {
				count++
			}
		}
	}
	return count
}
