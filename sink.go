package lifetrace

// EventSink is the fixed set of event-handling operations the trace
// driver invokes in trace order (spec §6.1). Operations with no
// effect on this analyzer (Declare, PutField, Write, TopLevelFlush,
// Debug, ReturnStmt, AddToChildSet, RemoveFromChildSet, ScriptEnter,
// ScriptExit, UnreachableContext) are still part of the contract and
// must be accepted silently — NoopSink embeds into Analyzer to satisfy
// them without per-operation boilerplate.
type EventSink interface {
	Init(sourceMap SourceMap)

	Create(site SourceLocID, oid int32, time uint64, isDOM bool)
	CreateFun(site SourceLocID, oid, protoID int32, enterIID SourceLocID, closureNames []string, time uint64)
	LastUse(oid int32, site SourceLocID, time uint64)
	UnreachableObject(site SourceLocID, oid int32, time uint64, shallowSize uint64)
	UpdateIID(oid int32, newSite SourceLocID)

	FunctionEnter(site SourceLocID, funID int32, callSite SourceLocID, time uint64)
	FunctionExit(site SourceLocID, time uint64)

	AddDOMChild(parent, child int32, time uint64)
	RemoveDOMChild(parent, child int32, time uint64)
	DOMRoot(oid int32)

	EndLastUse()
	EndExecution(time uint64)

	Declare(site SourceLocID, name string, oid int32)
	PutField(site SourceLocID, baseID int32, offset string, oid int32)
	Write(site SourceLocID, name string, oid int32)
	TopLevelFlush(site SourceLocID)
	Debug(site SourceLocID, oid int32)
	ReturnStmt(oid int32)
	AddToChildSet(site SourceLocID, parentID int32, name string, childID int32)
	RemoveFromChildSet(site SourceLocID, parentID int32, name string, childID int32)
	ScriptEnter(site SourceLocID, filename string)
	ScriptExit(site SourceLocID)
	UnreachableContext(site SourceLocID, time uint64)
}

// SourceMap resolves an opaque SourceLocID to its printable form. The
// registry that backs it is an external collaborator (spec §2.1) —
// this analyzer only depends on the interface, never on how locations
// are registered or persisted.
type SourceMap interface {
	Resolve(id SourceLocID) string
}

// NoopSink implements every EventSink operation the core bookkeeping
// ignores. Analyzer embeds it so the operations spec §6.1 lists as
// "no-ops for this analyzer but must be accepted silently" don't need
// restating on every concrete analyzer.
type NoopSink struct{}

func (NoopSink) Declare(SourceLocID, string, int32)            {}
func (NoopSink) PutField(SourceLocID, int32, string, int32)     {}
func (NoopSink) Write(SourceLocID, string, int32)               {}
func (NoopSink) TopLevelFlush(SourceLocID)                      {}
func (NoopSink) Debug(SourceLocID, int32)                       {}
func (NoopSink) ReturnStmt(int32)                               {}
func (NoopSink) AddToChildSet(SourceLocID, int32, string, int32) {}
func (NoopSink) RemoveFromChildSet(SourceLocID, int32, string, int32) {}
func (NoopSink) ScriptEnter(SourceLocID, string)                {}
func (NoopSink) ScriptExit(SourceLocID)                         {}
func (NoopSink) UnreachableContext(SourceLocID, uint64)         {}
