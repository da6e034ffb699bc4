package depot

import "sync"

type stepKind int

const (
	stepRunSystems stepKind = iota
	stepRunLocalSystems
	stepRunLocalFns
	stepFlushCommands
)

type simpleStep struct {
	kind    stepKind
	system  System
	localFn LocalFn
}

type step struct {
	kind     stepKind
	systems  []System
	localFns []LocalFn
}

// DispatcherBuilder implements the builder pattern to create a Dispatcher.
type DispatcherBuilder struct {
	simpleSteps []simpleStep
}

// AddSystem adds a system eligible for parallel scheduling.
func (b *DispatcherBuilder) AddSystem(system System) *DispatcherBuilder {
	b.simpleSteps = append(b.simpleSteps, simpleStep{kind: stepRunSystems, system: system})
	return b
}

// AddLocalSystem adds a system pinned to the dispatching thread.
func (b *DispatcherBuilder) AddLocalSystem(system System) *DispatcherBuilder {
	b.simpleSteps = append(b.simpleSteps, simpleStep{kind: stepRunLocalSystems, system: system})
	return b
}

// AddLocalFn adds a function run on the dispatching thread with exclusive
// world access.
func (b *DispatcherBuilder) AddLocalFn(fn LocalFn) *DispatcherBuilder {
	b.simpleSteps = append(b.simpleSteps, simpleStep{kind: stepRunLocalFns, localFn: fn})
	return b
}

// AddFlush adds a barrier at which buffered commands are applied with
// exclusive world access.
func (b *DispatcherBuilder) AddFlush() *DispatcherBuilder {
	b.simpleSteps = append(b.simpleSteps, simpleStep{kind: stepFlushCommands})
	return b
}

// Merge appends another builder's steps. The other builder is left empty.
func (b *DispatcherBuilder) Merge(other *DispatcherBuilder) *DispatcherBuilder {
	b.simpleSteps = append(b.simpleSteps, other.simpleSteps...)
	other.simpleSteps = nil
	return b
}

// Build merges the added steps into stages and sizes the command buffer ring.
// Consecutive systems share a stage as long as their access sets don't
// conflict; a terminal flush is always appended.
func (b *DispatcherBuilder) Build() *Dispatcher {
	steps := mergeAndOptimizeSteps(b.simpleSteps)
	b.simpleSteps = nil

	return &Dispatcher{
		steps:       steps,
		buffers:     newCommandBuffers(requiredCommandBuffers(steps)),
		changeTicks: make(map[WorldID]uint32),
	}
}

// Dispatcher runs systems over a world, potentially in parallel. Stages run
// strictly in order; within a stage the conflict analysis performed at build
// guarantees no two systems race.
type Dispatcher struct {
	steps       []step
	buffers     *commandBuffers
	changeTicks map[WorldID]uint32
}

// RegisterStorages creates the component storages referenced by the systems'
// access lists, so callers don't have to register them manually.
func (d *Dispatcher) RegisterStorages(w *World) {
	for _, st := range d.steps {
		if st.kind != stepRunSystems && st.kind != stepRunLocalSystems {
			continue
		}
		for _, sys := range st.systems {
			for _, access := range sys.accesses {
				if access.component != nil {
					w.Register(access.component)
				}
			}
		}
	}
}

// RunSeq runs all systems on the calling thread.
func (d *Dispatcher) RunSeq(w *World) error {
	return d.run(w, false)
}

// RunPar runs each multi-system stage on its own set of goroutines. Local
// stages stay on the calling thread.
func (d *Dispatcher) RunPar(w *World) error {
	return d.run(w, true)
}

func (d *Dispatcher) run(w *World, parallel bool) error {
	worldTick := w.Tick()
	changeTick := d.changeTicks[w.ID()]

	var errs []SystemError

	for _, st := range d.steps {
		switch st.kind {
		case stepRunSystems:
			reg := newRegistry(w, d.buffers, worldTick, changeTick)
			if parallel && len(st.systems) > 1 {
				errs = append(errs, runSystemsPar(st.systems, reg)...)
			} else {
				errs = append(errs, runSystemsSeq(st.systems, reg)...)
			}
		case stepRunLocalSystems:
			reg := newRegistry(w, d.buffers, worldTick, changeTick)
			errs = append(errs, runSystemsSeq(st.systems, reg)...)
		case stepRunLocalFns:
			for _, fn := range st.localFns {
				if err := fn(w); err != nil {
					errs = append(errs, SystemError{Err: err})
				}
			}
		case stepFlushCommands:
			w.Maintain()
			for _, cmd := range d.buffers.drain() {
				cmd(w)
			}
		}
	}

	d.changeTicks[w.ID()] = worldTick

	if len(errs) > 0 {
		return RunError{Errors: errs}
	}
	return nil
}

// MaxConcurrency returns the largest system count of any parallel stage.
// Callers can size worker pools to it.
func (d *Dispatcher) MaxConcurrency() int {
	maxConcurrency := 1
	for _, st := range d.steps {
		if st.kind == stepRunSystems && len(st.systems) > maxConcurrency {
			maxConcurrency = len(st.systems)
		}
	}
	return maxConcurrency
}

func runSystemsSeq(systems []System, reg *Registry) []SystemError {
	var errs []SystemError
	for _, sys := range systems {
		if err := sys.run(reg); err != nil {
			errs = append(errs, SystemError{Err: err})
		}
	}
	return errs
}

// runSystemsPar runs a stage's systems on one goroutine each. Command buffers
// are claimed in system order before the goroutines start and errors are
// collected by system index, keeping both stable across runs.
func runSystemsPar(systems []System, reg *Registry) []SystemError {
	results := make([]error, len(systems))

	var wg sync.WaitGroup
	for i := range systems {
		sysReg := *reg
		if countCommandsAccesses(systems[i:i+1]) > 0 {
			sysReg.claimed = reg.buffers.next()
		}
		wg.Add(1)
		go func(i int, sysReg *Registry) {
			defer wg.Done()
			results[i] = systems[i].run(sysReg)
		}(i, &sysReg)
	}
	wg.Wait()

	var errs []SystemError
	for _, err := range results {
		if err != nil {
			errs = append(errs, SystemError{Err: err})
		}
	}
	return errs
}

func mergeAndOptimizeSteps(simpleSteps []simpleStep) []step {
	var steps []step

	simpleSteps = append(simpleSteps, simpleStep{kind: stepFlushCommands})

	for _, ss := range simpleSteps {
		last := len(steps) - 1
		switch ss.kind {
		case stepRunSystems:
			if last >= 0 && steps[last].kind == stepRunSystems &&
				!conflictsWithAny(steps[last].systems, ss.system) {
				steps[last].systems = append(steps[last].systems, ss.system)
			} else {
				steps = append(steps, step{kind: stepRunSystems, systems: []System{ss.system}})
			}
		case stepRunLocalSystems:
			if last >= 0 && steps[last].kind == stepRunLocalSystems {
				steps[last].systems = append(steps[last].systems, ss.system)
			} else {
				steps = append(steps, step{kind: stepRunLocalSystems, systems: []System{ss.system}})
			}
		case stepRunLocalFns:
			if last >= 0 && steps[last].kind == stepRunLocalFns {
				steps[last].localFns = append(steps[last].localFns, ss.localFn)
			} else {
				steps = append(steps, step{kind: stepRunLocalFns, localFns: []LocalFn{ss.localFn}})
			}
		case stepFlushCommands:
			if last >= 0 && steps[last].kind != stepFlushCommands {
				steps = append(steps, step{kind: stepFlushCommands})
			}
		}
	}

	return steps
}

// requiredCommandBuffers sizes the buffer ring to the largest number of
// Commands accesses between two flushes.
func requiredCommandBuffers(steps []step) int {
	maxCount := 0
	count := 0

	for _, st := range steps {
		switch st.kind {
		case stepRunSystems, stepRunLocalSystems:
			count += countCommandsAccesses(st.systems)
		case stepFlushCommands:
			if count > maxCount {
				maxCount = count
			}
			count = 0
		}
	}

	return maxCount
}
