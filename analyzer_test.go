package lifetrace

import "testing"

type fakeSourceMap struct{}

func (fakeSourceMap) Resolve(id SourceLocID) string { return "" }

type capturedObject struct {
	oid   int32
	alloc AllocInfo
	info  LastUseUnreachableInfo
}

type fakeObjectWriter struct {
	written []capturedObject
}

func (f *fakeObjectWriter) WriteObject(oid int32, alloc *AllocInfo, info *LastUseUnreachableInfo) error {
	f.written = append(f.written, capturedObject{oid: oid, alloc: *alloc, info: *info})
	return nil
}

type binaryRecord struct {
	oid  int32
	time uint64
	site SourceLocID
}

type fakeBinaryWriter struct {
	lastUse     []binaryRecord
	unreachable []binaryRecord
	iidUpdates  []binaryRecord
}

func (f *fakeBinaryWriter) WriteLastUse(oid int32, time uint64, site SourceLocID) error {
	f.lastUse = append(f.lastUse, binaryRecord{oid, time, site})
	return nil
}

func (f *fakeBinaryWriter) WriteUnreachable(oid int32, time uint64, site SourceLocID) error {
	f.unreachable = append(f.unreachable, binaryRecord{oid, time, site})
	return nil
}

func (f *fakeBinaryWriter) WriteIIDUpdate(oid int32, site SourceLocID) error {
	f.iidUpdates = append(f.iidUpdates, binaryRecord{oid: oid, site: site})
	return nil
}

func loc(file, iid int32) SourceLocID { return SourceLocID{FileID: file, IID: iid} }

func newTestAnalyzer() (*Analyzer, *fakeObjectWriter, *fakeBinaryWriter) {
	obj := &fakeObjectWriter{}
	bin := &fakeBinaryWriter{}
	sinks := Sinks{PerObject: obj, LastUse: bin, Unreachable: bin, IIDUpdate: bin}
	a := NewAnalyzer(sinks, nil)
	a.Init(fakeSourceMap{})
	return a, obj, bin
}

// S1 — simple lifetime.
func TestAnalyzerS1SimpleLifetime(t *testing.T) {
	a, obj, bin := newTestAnalyzer()

	a.Create(loc(1, 1), 5, 10, false)
	a.LastUse(5, loc(1, 2), 20)
	a.UnreachableObject(loc(1, 3), 5, 30, 0)
	a.EndLastUse()
	a.EndExecution(40)

	if len(obj.written) != 1 {
		t.Fatalf("expected 1 flushed object, got %d", len(obj.written))
	}
	rec := obj.written[0]
	if rec.oid != 5 || rec.alloc.Type != Object || rec.alloc.AllocationSite != loc(1, 1) || rec.alloc.CreationTime != 10 {
		t.Fatalf("unexpected alloc record: %+v", rec)
	}
	if rec.info.MostRecentUseTime != 20 || rec.info.MostRecentUseSite != loc(1, 2) {
		t.Fatalf("unexpected most-recent-use: %+v", rec.info)
	}
	if rec.info.UnreachableTime != 30 || rec.info.UnreachableSite != loc(1, 3) {
		t.Fatalf("unexpected unreachable: %+v", rec.info)
	}

	if len(bin.lastUse) != 1 || bin.lastUse[0] != (binaryRecord{5, 20, loc(1, 2)}) {
		t.Fatalf("unexpected last-use stream: %+v", bin.lastUse)
	}
	if len(bin.unreachable) != 1 || bin.unreachable[0] != (binaryRecord{5, 30, loc(1, 3)}) {
		t.Fatalf("unexpected unreachable stream: %+v", bin.unreachable)
	}
	if len(bin.iidUpdates) != 0 {
		t.Fatalf("expected empty update-IID stream, got %+v", bin.iidUpdates)
	}
}

// S2 — spurious unreachability then revival by late use.
func TestAnalyzerS2SpuriousUnreachableThenLateUse(t *testing.T) {
	a, obj, _ := newTestAnalyzer()

	a.Create(loc(1, 1), 5, 10, false)
	a.UnreachableObject(loc(1, 2), 5, 20, 0)
	a.LastUse(5, loc(1, 3), 30)
	a.EndLastUse()
	a.EndExecution(40)

	rec := obj.written[0]
	if rec.info.MostRecentUseTime != 30 || rec.info.MostRecentUseSite != loc(1, 3) {
		t.Fatalf("unexpected most-recent-use: %+v", rec.info)
	}
	if rec.info.UnreachableTime != 30 || rec.info.UnreachableSite != loc(1, 3) {
		t.Fatalf("unexpected unreachable (should equal most-recent-use): %+v", rec.info)
	}
}

// S3 — DOM subtree removal.
func TestAnalyzerS3DOMSubtreeRemoval(t *testing.T) {
	a, obj, _ := newTestAnalyzer()

	a.DOMRoot(1)
	a.AddDOMChild(1, 2, 5)
	a.AddDOMChild(2, 3, 6)
	a.LastUse(3, loc(1, 10), 7)
	a.RemoveDOMChild(1, 2, 100)
	a.UnreachableObject(loc(1, 20), 2, 200, 0)
	a.UnreachableObject(loc(1, 21), 3, 201, 0)
	a.EndLastUse()
	a.EndExecution(300)

	byID := map[int32]capturedObject{}
	for _, rec := range obj.written {
		byID[rec.oid] = rec
	}
	if got := byID[3].info.MostRecentUseTime; got != 100 {
		t.Fatalf("object 3 most-recent-use time = %d, want 100", got)
	}
	if got := byID[3].info.MostRecentUseSite; got != RemoveFromDOMLoc {
		t.Fatalf("object 3 most-recent-use site = %v, want RemoveFromDOMLoc", got)
	}
	if got := byID[2].info.MostRecentUseTime; got != 100 {
		t.Fatalf("object 2 most-recent-use time = %d, want 100", got)
	}
	if got := byID[2].info.MostRecentUseSite; got != RemoveFromDOMLoc {
		t.Fatalf("object 2 most-recent-use site = %v, want RemoveFromDOMLoc", got)
	}
}

// S4 — two-parent (reparent-before-remove).
func TestAnalyzerS4TwoParent(t *testing.T) {
	a, _, _ := newTestAnalyzer()

	a.DOMRoot(1)
	a.AddDOMChild(1, 2, 5)
	a.DOMRoot(9)
	a.AddDOMChild(9, 2, 10)
	a.RemoveDOMChild(1, 2, 20)

	if got := a.lastUseUnreachableInfo(2).MostRecentUseSite; got == RemoveFromDOMLoc {
		t.Fatalf("two-parented node was marked REMOVE_FROM_DOM")
	}

	a.LastUse(2, loc(1, 30), 40)
	if got := a.lastUseUnreachableInfo(2).MostRecentUseTime; got != 40 {
		t.Fatalf("most-recent-use time = %d, want 40", got)
	}
}

// S5 — updateIID.
func TestAnalyzerS5UpdateIID(t *testing.T) {
	a, obj, bin := newTestAnalyzer()

	a.Create(loc(1, 1), 5, 10, false)
	a.FunctionEnter(loc(0, 0), 0, loc(2, 2), 15)
	a.UpdateIID(5, loc(3, 3))
	a.FunctionExit(loc(0, 0), 16)
	a.UnreachableObject(loc(1, 4), 5, 20, 0)
	a.EndLastUse()
	a.EndExecution(30)

	rec := obj.written[0]
	if rec.alloc.AllocationSite != loc(3, 3) {
		t.Fatalf("allocation site = %v, want 3:3", rec.alloc.AllocationSite)
	}
	if len(rec.alloc.CreationCallStack) != 1 || rec.alloc.CreationCallStack[0] != loc(2, 2) {
		t.Fatalf("creation call stack = %v, want [2:2]", rec.alloc.CreationCallStack)
	}
	if len(bin.iidUpdates) != 1 || bin.iidUpdates[0].oid != 5 || bin.iidUpdates[0].site != loc(3, 3) {
		t.Fatalf("update-IID stream = %+v, want one record (5, 3:3)", bin.iidUpdates)
	}
}

// S6 — sort stability at zero.
func TestAnalyzerS6SortStabilityAtZero(t *testing.T) {
	a, _, bin := newTestAnalyzer()

	a.Create(loc(1, 1), 1, 10, false)
	a.LastUse(1, loc(1, 2), 20)
	a.UnreachableObject(loc(1, 3), 1, 30, 0)

	a.UnreachableObject(loc(1, 4), 2, 40, 0) // never used: most_recent_use_time stays 0

	a.EndLastUse()
	a.EndExecution(50)

	if len(bin.lastUse) != 1 || bin.lastUse[0].oid != 1 {
		t.Fatalf("last-use stream = %+v, want exactly the populated entry for object 1", bin.lastUse)
	}
	if len(bin.unreachable) != 2 {
		t.Fatalf("unreachable stream = %+v, want both objects", bin.unreachable)
	}
	if bin.unreachable[0].oid != 1 || bin.unreachable[1].oid != 2 {
		t.Fatalf("unreachable stream not sorted ascending by time: %+v", bin.unreachable)
	}
}

func TestAnalyzerGlobalObjectIgnored(t *testing.T) {
	a, obj, _ := newTestAnalyzer()
	a.Create(loc(1, 1), GlobalObjectID, 10, false)
	a.LastUse(GlobalObjectID, loc(1, 2), 20)
	a.EndExecution(30)
	if len(obj.written) != 0 {
		t.Fatalf("global object should never be tracked, got %+v", obj.written)
	}
}

func TestAnalyzerLiveAtEndExecutionIsFatal(t *testing.T) {
	a, _, _ := newTestAnalyzer()
	a.Create(loc(1, 1), 1, 10, false)

	defer func() {
		r := recover()
		fe, ok := r.(*FatalError)
		if !ok || fe.Kind != ErrLiveAtEndExecution {
			t.Fatalf("expected FatalError{Kind: ErrLiveAtEndExecution}, got %#v", r)
		}
	}()
	a.EndExecution(20)
}

func TestAnalyzerUpdateIIDUnknownObjectIsFatal(t *testing.T) {
	a, _, _ := newTestAnalyzer()
	defer func() {
		r := recover()
		fe, ok := r.(*FatalError)
		if !ok || fe.Kind != ErrUnknownObject {
			t.Fatalf("expected FatalError{Kind: ErrUnknownObject}, got %#v", r)
		}
	}()
	a.UpdateIID(99, loc(1, 1))
}

func TestAnalyzerFunctionExitUnderflowIsFatal(t *testing.T) {
	a, _, _ := newTestAnalyzer()
	defer func() {
		r := recover()
		fe, ok := r.(*FatalError)
		if !ok || fe.Kind != ErrCallStackUnderflow {
			t.Fatalf("expected FatalError{Kind: ErrCallStackUnderflow}, got %#v", r)
		}
	}()
	a.FunctionExit(loc(0, 0), 1)
}

func TestAnalyzerRemoveDOMChildNotAttachedIsFatal(t *testing.T) {
	a, _, _ := newTestAnalyzer()
	a.DOMRoot(1)

	defer func() {
		r := recover()
		fe, ok := r.(*FatalError)
		if !ok || fe.Kind != ErrDOMInconsistent {
			t.Fatalf("expected FatalError{Kind: ErrDOMInconsistent}, got %#v", r)
		}
	}()
	a.RemoveDOMChild(1, 2, 10)
}
