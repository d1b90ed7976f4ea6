package lifetrace

import (
	"fmt"

	"github.com/riftlabs/lifetrace/domtree"
)

// FatalErrorKind categorizes the trace-contract violations and I/O
// failures that spec §7 requires to abort the run through a single
// top-level error surface rather than attempt local recovery.
type FatalErrorKind uint8

const (
	// ErrUnknownObject is raised by UpdateIID for an id with no
	// live AllocInfo.
	ErrUnknownObject FatalErrorKind = iota
	// ErrLiveAtEndExecution is raised when the live table is
	// non-empty at end_execution.
	ErrLiveAtEndExecution
	// ErrDOMInconsistent is raised by DOM bookkeeping assertions:
	// removing a child not present in its parent's set, a
	// two-parent marker already set, or a visited DOM node missing
	// from the forest.
	ErrDOMInconsistent
	// ErrCallStackUnderflow is raised by a function_exit with no
	// matching function_enter.
	ErrCallStackUnderflow
	// ErrIO is raised when writing to any of the four output sinks
	// fails during finalization.
	ErrIO
)

func (k FatalErrorKind) String() string {
	switch k {
	case ErrUnknownObject:
		return "unknown object"
	case ErrLiveAtEndExecution:
		return "live objects remain at end of execution"
	case ErrDOMInconsistent:
		return "DOM bookkeeping inconsistency"
	case ErrCallStackUnderflow:
		return "call stack underflow"
	case ErrIO:
		return "I/O failure"
	default:
		return "unknown fatal error"
	}
}

// FatalError is the single top-level error surface spec §7 requires:
// every trace-contract violation and I/O failure during finalization
// is wrapped in one of these rather than left to propagate as a bare
// panic or a assortment of ad-hoc error types.
type FatalError struct {
	Kind FatalErrorKind
	Msg  string
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lifetrace: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("lifetrace: %s: %s", e.Kind, e.Msg)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(kind FatalErrorKind, msg string) {
	panic(&FatalError{Kind: kind, Msg: msg})
}

func fatalf(kind FatalErrorKind, format string, args ...any) {
	panic(&FatalError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// recoverDOMInconsistency converts a domtree.Inconsistency panic into
// the single top-level FatalError surface (ErrDOMInconsistent). Any
// other panic value propagates unchanged. Deferred at the top of the
// handlers that call into the forest, so a forest assertion failure
// aborts the run the same way every other trace-contract violation
// does instead of reaching run.go's Recover as a bare Go panic.
func recoverDOMInconsistency() {
	r := recover()
	if r == nil {
		return
	}
	if inc, ok := r.(*domtree.Inconsistency); ok {
		fatalf(ErrDOMInconsistent, "%s", inc.Error())
	}
	panic(r)
}
