package depot

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/TheBitDrifter/bark"
)

// NoSuchEntityError reports a component mutation attempted on a dead entity.
type NoSuchEntityError struct {
	Entity Entity
}

func (e NoSuchEntityError) Error() string {
	return fmt.Sprintf("no such entity: %v", e.Entity)
}

// InvalidGroupError reports a layout group rejected at build time.
type InvalidGroupError struct {
	Components []Component
	Reason     string
}

func (e InvalidGroupError) Error() string {
	names := make([]string, len(e.Components))
	for i, c := range e.Components {
		names[i] = componentTypeName(c.Type())
	}
	return fmt.Sprintf("invalid group [%s]: %s", strings.Join(names, ", "), e.Reason)
}

// SystemError wraps the failure of a single system during a dispatcher run.
type SystemError struct {
	Err error
}

func (e SystemError) Error() string {
	return fmt.Sprintf("system error: %v", e.Err)
}

func (e SystemError) Unwrap() error {
	return e.Err
}

// RunError aggregates every system failure from one dispatcher run. The run
// as a whole completes; surviving systems still execute.
type RunError struct {
	Errors []SystemError
}

// ErrorCount returns the number of failed systems.
func (e RunError) ErrorCount() int {
	return len(e.Errors)
}

func (e RunError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d systems failed; first: %v", len(e.Errors), e.Errors[0])
}

// panicMissingStorage reports a borrow of an unregistered component storage.
// This is a bug in the calling program, not a recoverable condition.
func panicMissingStorage(t reflect.Type) {
	panic(bark.AddTrace(fmt.Errorf("no storage registered for component %s", componentTypeName(t))))
}

// panicMissingResource reports a borrow of a resource absent from the world.
func panicMissingResource(t reflect.Type) {
	panic(bark.AddTrace(fmt.Errorf("no resource of type %s in world", componentTypeName(t))))
}
