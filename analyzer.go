package lifetrace

import (
	"github.com/riftlabs/lifetrace/callstack"
	"github.com/riftlabs/lifetrace/domtree"
	"github.com/riftlabs/lifetrace/stats"
)

// Analyzer is the event-driven bookkeeping engine described in spec
// §2 and §4: the live/unreachable object tables, the last-use/
// unreachable dense array, the call-stack shadow, the live DOM
// forest, and the IID-update log. It implements EventSink and is
// invoked synchronously, in trace order, by an upstream trace driver.
//
// Analyzer owns none of its four output sinks; they are borrowed for
// its lifetime (spec §5) and supplied to NewAnalyzer.
type Analyzer struct {
	NoopSink

	sourceMap SourceMap
	stats     *stats.Run // optional; nil disables counter updates

	live        map[int32]*AllocInfo
	unreachable map[int32]*AllocInfo
	info        []*LastUseUnreachableInfo

	stack  callstack.Shadow[SourceLocID]
	forest *domtree.Forest

	updates []IIDUpdateRecord

	sinks Sinks
}

// Sinks groups the four output destinations an Analyzer writes to at
// finalization (spec §6.4). Each is borrowed for the Analyzer's
// lifetime and is not closed by it.
type Sinks struct {
	PerObject    ObjectRecordWriter
	LastUse      BinaryRecordWriter
	Unreachable  BinaryRecordWriter
	IIDUpdate    BinaryRecordWriter
}

// ObjectRecordWriter accepts one flushed per-object record at a time
// (spec §6.2).
type ObjectRecordWriter interface {
	WriteObject(oid int32, alloc *AllocInfo, info *LastUseUnreachableInfo) error
}

// BinaryRecordWriter accepts the fixed-width binary records that back
// the last-use, unreachable, and update-IID streams (spec §6.3).
type BinaryRecordWriter interface {
	WriteLastUse(oid int32, time uint64, site SourceLocID) error
	WriteUnreachable(oid int32, time uint64, site SourceLocID) error
	WriteIIDUpdate(oid int32, site SourceLocID) error
}

// NewAnalyzer constructs an Analyzer writing to sinks. stat may be nil
// if the caller doesn't want run counters.
func NewAnalyzer(sinks Sinks, stat *stats.Run) *Analyzer {
	return &Analyzer{
		stats:       stat,
		live:        make(map[int32]*AllocInfo),
		unreachable: make(map[int32]*AllocInfo),
		forest:      domtree.New(),
		sinks:       sinks,
	}
}

// Init stores the source map for later resolution (spec §6.1 init).
// The timer parameter from the original interface has no bearing on
// this analyzer's bookkeeping and is intentionally not threaded
// through — it belongs to the external driver that stamps events,
// not to the engine that consumes already-timestamped ones.
func (a *Analyzer) Init(sourceMap SourceMap) {
	a.sourceMap = sourceMap
}

// lastUseUnreachableInfo returns the dense-array slot for oid,
// growing the array and lazily creating the slot if necessary (spec
// §3, "the backing array grows to max_id + 1 with sparse slots left
// null/default").
func (a *Analyzer) lastUseUnreachableInfo(oid int32) *LastUseUnreachableInfo {
	if int(oid) >= len(a.info) {
		grown := make([]*LastUseUnreachableInfo, int(oid)+1)
		copy(grown, a.info)
		a.info = grown
	}
	if a.info[oid] == nil {
		a.info[oid] = newLastUseUnreachableInfo(oid)
	}
	return a.info[oid]
}

// updateMostRecentUse is the only routine that writes the most-recent
// -use fields (spec §4.2). It updates iff time is strictly greater
// than the object's current most-recent-use time; DOM liveness can
// otherwise push the recorded time into the future relative to an
// individual use event, and such updates must not regress it.
func (a *Analyzer) updateMostRecentUse(oid int32, time uint64, site SourceLocID) *LastUseUnreachableInfo {
	info := a.lastUseUnreachableInfo(oid)
	if info.MostRecentUseTime < time {
		info.MostRecentUseTime = time
		info.MostRecentUseSite = site
	}
	return info
}

func (a *Analyzer) callStackSnapshot() []SourceLocID {
	return a.stack.Snapshot()
}

// DebugState exposes the engine's internal tables for a debug
// snapshot written right before a FatalError aborts a run (spec §7).
// It is not safe to call concurrently with event delivery.
func (a *Analyzer) DebugState() (live, unreachable map[int32]*AllocInfo, info []*LastUseUnreachableInfo) {
	return a.live, a.unreachable, a.info
}
