package lifetrace

import "fmt"

// Recover converts a panic raised by fatal/fatalf into a returned
// error, and lets any other panic continue to propagate. It is the
// single top-level error surface spec §7 requires: every handler
// method and both finalize steps signal trace-contract violations and
// I/O failures by panicking with a *FatalError, and the driver that
// calls them is expected to defer Recover(&err) once at the top of its
// run loop rather than check an error return after each event.
//
// Usage:
//
//	func Drive(a *Analyzer, events []Event) (err error) {
//		defer lifetrace.Recover(&err)
//		for _, e := range events {
//			e.Apply(a)
//		}
//		a.EndExecution(lastTime)
//		return nil
//	}
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	fe, ok := r.(*FatalError)
	if !ok {
		panic(r)
	}
	*err = fe
}

// WrapIOError records err, if non-nil, as a FatalError of kind ErrIO.
// Sinks that fail outside of finalize's own panicking writes (for
// instance a driver closing output files) use this to join the same
// single error surface rather than returning a bare error.
func WrapIOError(context string, err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Kind: ErrIO, Msg: fmt.Sprintf("%s: %v", context, err)}
}
