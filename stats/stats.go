// Package stats collects run-level counters for a staleness analyzer
// run: how many objects were created, revived, flushed unreachable,
// how the DOM forest moved, and how often the spurious-unreachability
// correction in §4.2 of the bookkeeping design actually fired.
//
// The shape (named counters registered up front and added to by
// name) is carried over from a Go allocation
// trace simulator's Stats type, which used the same pattern to let
// each simulated allocator implementation register its own
// implementation-specific counters alongside a fixed common set.
package stats

import "sort"

// Run is a sample of counters produced by an analyzer run.
type Run struct {
	// ObjectsCreated counts every create/create_fun insertion into
	// the live table, including revivals.
	ObjectsCreated uint64

	// ObjectsRevived counts creations that overwrote an existing
	// live or pending-unreachable entry for the same id.
	ObjectsRevived uint64

	// RecordsFlushed counts per-object JSON lines written, across
	// every end_last_use/end_execution flush.
	RecordsFlushed uint64

	// DOMAttaches and DOMDetaches count add_dom_child/remove_dom_child
	// calls that actually touched the forest (parent present).
	DOMAttaches uint64
	DOMDetaches uint64

	// TwoParentNodes counts DOM nodes that transiently became
	// two-parented (reparent observed before remove).
	TwoParentNodes uint64

	// SpuriousUnreachableCorrected counts the number of times
	// last_use overwrote an earlier, now-disproven unreachable time.
	SpuriousUnreachableCorrected uint64

	other map[string]uint64
}

// New creates a valid Run ready to record against.
func New() *Run {
	return &Run{other: make(map[string]uint64)}
}

// OtherNames returns the names of registered implementation-specific
// counters, sorted for stable reporting.
func (r *Run) OtherNames() []string {
	names := make([]string, 0, len(r.other))
	for name := range r.other {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Other returns the value of a named counter, 0 if never registered.
func (r *Run) Other(name string) uint64 {
	return r.other[name]
}

// Register adds a named counter at zero. Idempotent.
func (r *Run) Register(name string) {
	if _, ok := r.other[name]; !ok {
		r.other[name] = 0
	}
}

// Add increments a registered named counter. Panics if unregistered.
func (r *Run) Add(name string, amount uint64) {
	v, ok := r.other[name]
	if !ok {
		panic("stats: add to unregistered counter " + name)
	}
	r.other[name] = v + amount
}
