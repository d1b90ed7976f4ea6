package lifetrace

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// EndLastUse flushes every entry currently pending in the unreachable
// table as a per-object JSON record (spec §6.1 end_last_use).
func (a *Analyzer) EndLastUse() {
	a.flushUnreachable()
}

func (a *Analyzer) flushUnreachable() {
	for oid, alloc := range a.unreachable {
		info := a.lastUseUnreachableInfo(oid)
		if err := a.sinks.PerObject.WriteObject(oid, alloc, info); err != nil {
			fatalf(ErrIO, "writing per-object record for %d: %v", oid, err)
		}
		if a.stats != nil {
			a.stats.RecordsFlushed++
		}
	}
	a.unreachable = make(map[int32]*AllocInfo)
}

// EndExecution performs finalization (spec §4.5): asserts the live
// table is empty, flushes any residual unreachable records, sorts the
// dense info array into last-use and unreachable orders, and streams
// both plus the IID-update log to their respective binary sinks.
//
// The two sort orders are built over independent slices of pointers
// into info rather than by re-sorting the same backing array twice in
// place, so they can be streamed out concurrently once computed —
// design note §9 calls out that a destructively-twice-sorted array
// can't also serve later analysis; building two index views sidesteps
// that without adding a second full copy of the underlying records.
func (a *Analyzer) EndExecution(time uint64) {
	if len(a.live) != 0 {
		fatalf(ErrLiveAtEndExecution, "%d objects still live at end of execution", len(a.live))
	}
	a.flushUnreachable()

	byLastUse := populatedView(a.info)
	sort.Slice(byLastUse, func(i, j int) bool {
		return lastUseLess(byLastUse[i], byLastUse[j])
	})
	// Stop at the first null/zero entry: populated entries sort
	// first, so this also trims the non-null-but-zero tail in one
	// pass.
	cut := len(byLastUse)
	for i, info := range byLastUse {
		if info == nil || info.MostRecentUseTime == 0 {
			cut = i
			break
		}
	}
	byLastUse = byLastUse[:cut]

	byUnreachable := nonNilView(a.info)
	sort.Slice(byUnreachable, func(i, j int) bool {
		return byUnreachable[i].UnreachableTime < byUnreachable[j].UnreachableTime
	})

	updates := make([]IIDUpdateRecord, len(a.updates))
	copy(updates, a.updates)
	sort.Slice(updates, func(i, j int) bool {
		return updates[i].CreationTime < updates[j].CreationTime
	})

	var eg errgroup.Group
	eg.Go(func() error {
		for _, info := range byLastUse {
			if err := a.sinks.LastUse.WriteLastUse(info.ObjectID, info.MostRecentUseTime, info.MostRecentUseSite); err != nil {
				return err
			}
		}
		return nil
	})
	eg.Go(func() error {
		for _, info := range byUnreachable {
			if err := a.sinks.Unreachable.WriteUnreachable(info.ObjectID, info.UnreachableTime, info.UnreachableSite); err != nil {
				return err
			}
		}
		return nil
	})
	eg.Go(func() error {
		for _, rec := range updates {
			if err := a.sinks.IIDUpdate.WriteIIDUpdate(rec.ObjectID, rec.NewSite); err != nil {
				return err
			}
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		fatalf(ErrIO, "flushing binary streams: %v", err)
	}
}

// lastUseLess implements the total order spec §4.5 step 3 requires:
// null or zero-time entries sort after every populated one; mutual
// order among such entries is unspecified.
func lastUseLess(a, b *LastUseUnreachableInfo) bool {
	aZero := a == nil || a.MostRecentUseTime == 0
	bZero := b == nil || b.MostRecentUseTime == 0
	if aZero || bZero {
		return !aZero && bZero
	}
	return a.MostRecentUseTime < b.MostRecentUseTime
}

// populatedView returns a fresh slice of the non-nil pointers in info,
// plus explicit nils in their place for the comparator's null-last
// rule, without aliasing info's backing array.
func populatedView(info []*LastUseUnreachableInfo) []*LastUseUnreachableInfo {
	out := make([]*LastUseUnreachableInfo, len(info))
	copy(out, info)
	return out
}

// nonNilView returns a fresh slice containing only the non-nil
// entries of info, since the unreachable-time order (spec §4.5 step
// 4) has no zero-filtering, only null-filtering.
func nonNilView(info []*LastUseUnreachableInfo) []*LastUseUnreachableInfo {
	out := make([]*LastUseUnreachableInfo, 0, len(info))
	for _, i := range info {
		if i != nil {
			out = append(out, i)
		}
	}
	return out
}
