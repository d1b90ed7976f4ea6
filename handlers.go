package lifetrace

// Create handles an object (or DOM node) allocation (spec §4.1). The
// global object is never tracked. Overwriting a previous live entry
// is how revival is expressed: a create for an id already present in
// live or unreachable simply replaces the AllocInfo.
func (a *Analyzer) Create(site SourceLocID, oid int32, time uint64, isDOM bool) {
	if oid == GlobalObjectID {
		return
	}
	typ := Object
	if isDOM {
		typ = DOM
	}
	if _, wasLive := a.live[oid]; wasLive {
		if a.stats != nil {
			a.stats.ObjectsRevived++
		}
	} else if _, wasUnreachable := a.unreachable[oid]; wasUnreachable {
		if a.stats != nil {
			a.stats.ObjectsRevived++
		}
	}
	a.live[oid] = &AllocInfo{
		Type:              typ,
		AllocationSite:    site,
		CreationTime:      time,
		CreationCallStack: a.callStackSnapshot(),
	}
	if a.stats != nil {
		a.stats.ObjectsCreated++
	}
	a.updateMostRecentUse(oid, time, site)
}

// CreateFun handles a function/prototype pair allocation (spec §4.1).
// The call stack is snapshotted once and shared between the two
// AllocInfo records, matching the single snapshot the original
// analysis takes for a function and its prototype. enterIID and
// closureNames are part of the event-sink contract but carry no
// bookkeeping weight here: they describe the function's own entry
// site and captured names, not anything this engine tracks.
func (a *Analyzer) CreateFun(site SourceLocID, oid, protoID int32, enterIID SourceLocID, closureNames []string, time uint64) {
	snap := a.callStackSnapshot()

	a.live[oid] = &AllocInfo{Type: Function, AllocationSite: site, CreationTime: time, CreationCallStack: snap}
	a.updateMostRecentUse(oid, time, site)

	a.live[protoID] = &AllocInfo{Type: Prototype, AllocationSite: site, CreationTime: time, CreationCallStack: snap}
	a.updateMostRecentUse(protoID, time, site)

	if a.stats != nil {
		a.stats.ObjectsCreated += 2
	}
}

// UpdateIID updates the allocation site recorded for a live object
// (spec §4.1). Calling it for an id with no live AllocInfo is a
// trace-contract violation: the original analysis treats it as an
// assertion failure, and so does this one.
func (a *Analyzer) UpdateIID(oid int32, newSite SourceLocID) {
	info, ok := a.live[oid]
	if !ok {
		fatalf(ErrUnknownObject, "updateIID for object %d with no live AllocInfo", oid)
	}
	info.AllocationSite = newSite
	info.CreationCallStack = a.callStackSnapshot()
	a.updates = append(a.updates, IIDUpdateRecord{
		ObjectID:     oid,
		CreationTime: info.CreationTime,
		NewSite:      newSite,
	})
}

// LastUse records a use of oid (spec §4.2). If the object already
// carries a pending unreachable time strictly earlier than this use,
// that claim is now disproven: the best conservative estimate of
// unreachability becomes "no earlier than this use", so both the
// unreachable time and site are overwritten to match.
func (a *Analyzer) LastUse(oid int32, site SourceLocID, time uint64) {
	if oid == GlobalObjectID {
		return
	}
	info := a.updateMostRecentUse(oid, time, site)
	if info.UnreachableTime > 0 && info.UnreachableTime < time {
		info.UnreachableTime = time
		info.UnreachableSite = site
		if a.stats != nil {
			a.stats.SpuriousUnreachableCorrected++
		}
	}
}

// UnreachableObject records that oid became unreachable (spec §4.2).
// It never lowers an already-recorded unreachable time: cycles
// combined with native interplay can produce a time already in the
// future, and the greater value is kept. If the object is currently
// part of the live DOM, its removal from the live DOM is itself
// treated as a use, and it is dropped from the forest. The allocation
// record migrates from live to unreachable, or is synthesized if the
// object was never tracked.
func (a *Analyzer) UnreachableObject(site SourceLocID, oid int32, time uint64, shallowSize uint64) {
	info := a.lastUseUnreachableInfo(oid)
	if info.UnreachableTime < time {
		info.UnreachableTime = time
		info.UnreachableSite = site
	}

	if a.forest.Has(oid) {
		info.MostRecentUseTime = time
		info.MostRecentUseSite = site
		a.forest.Remove(oid)
	}

	var alloc *AllocInfo
	if live, ok := a.live[oid]; ok {
		alloc = live
		delete(a.live, oid)
	} else if pending, ok := a.unreachable[oid]; ok {
		// Revived but not yet flushed: keep the existing entry.
		alloc = pending
	} else {
		alloc = &AllocInfo{Type: DOM, AllocationSite: UnknownLoc, CreationTime: 0}
	}
	a.unreachable[oid] = alloc
}

// FunctionEnter pushes the call site onto the shadow stack (spec
// §4.3). funID and time are part of the event-sink contract but this
// engine's call-stack bookkeeping only needs the site.
func (a *Analyzer) FunctionEnter(site SourceLocID, funID int32, callSite SourceLocID, time uint64) {
	a.stack.Push(callSite)
}

// FunctionExit pops the shadow stack (spec §4.3). An empty-stack pop
// is a trace-contract violation: the spec does not define recovery
// beyond not corrupting subsequent records, so it is surfaced through
// the single top-level error path rather than silently ignored.
func (a *Analyzer) FunctionExit(site SourceLocID, time uint64) {
	if !a.stack.Pop() {
		fatal(ErrCallStackUnderflow, "function_exit with no matching function_enter")
	}
}

// DOMRoot establishes oid as a forest root (spec §4.4).
func (a *Analyzer) DOMRoot(oid int32) {
	a.forest.AddRoot(oid)
}

// AddDOMChild attaches child under parent (spec §4.4). A no-op if
// parent isn't currently a forest node. If child was already attached
// elsewhere it becomes two-parented rather than losing its prior
// attachment. If child has no live AllocInfo yet, a revived minimal
// one is synthesized — the DOM attachment alone proves it's live.
func (a *Analyzer) AddDOMChild(parent, child int32, time uint64) {
	if !a.forest.Has(parent) {
		return
	}
	defer recoverDOMInconsistency()
	becameTwoParented := a.forest.AddChild(parent, child)
	if becameTwoParented && a.stats != nil {
		a.stats.TwoParentNodes++
	}
	if _, ok := a.live[child]; !ok {
		a.live[child] = &AllocInfo{Type: DOM, AllocationSite: UnknownLoc, CreationTime: 0}
	}
	if a.stats != nil {
		a.stats.DOMAttaches++
	}
}

// RemoveDOMChild detaches child from parent and propagates the
// removal through child's subtree (spec §4.4). Each visited node's
// most-recent-use is stamped with time and the RemoveFromDOMLoc
// sentinel — not the caller's site — and its forest entry is deleted.
// A node currently two-parented is left alone: it survived at another
// attach point and its removal here is a false alarm for that branch.
func (a *Analyzer) RemoveDOMChild(parent, child int32, time uint64) {
	if !a.forest.Has(parent) {
		return
	}
	defer recoverDOMInconsistency()
	a.forest.RemoveChild(parent, child, func(n int32) {
		info := a.lastUseUnreachableInfo(n)
		info.MostRecentUseTime = time
		info.MostRecentUseSite = RemoveFromDOMLoc
	})
	if a.stats != nil {
		a.stats.DOMDetaches++
	}
}
