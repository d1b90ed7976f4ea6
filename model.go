// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lifetrace implements a single-pass streaming analyzer over a
// chronologically ordered memory-event trace produced by an
// instrumented script runtime. For every object observed it tracks an
// allocation time, a last-use time, and an unreachability time, along
// with the source locations and call-stack context associated with
// each, and emits them as an enhanced trace for a downstream staleness
// analysis.
package lifetrace

// GlobalObjectID is the well-known id of the script global object.
// Create and LastUse ignore events for it; the other handlers do not
// check for it.
const GlobalObjectID = 0

// ObjectType tags what kind of object an AllocInfo describes.
type ObjectType uint8

const (
	Object ObjectType = iota
	DOM
	Function
	Prototype
)

// String returns the canonical name used in the per-object JSON stream.
func (t ObjectType) String() string {
	switch t {
	case Object:
		return "OBJECT"
	case DOM:
		return "DOM"
	case Function:
		return "FUNCTION"
	case Prototype:
		return "PROTOTYPE"
	default:
		return "UNKNOWN"
	}
}

// SourceLocID is an opaque identifier for a source location, resolved
// to a printable string by an external SourceMap. The zero value is
// not meaningful on its own; use UnknownLoc and RemoveFromDOMLoc for
// the sentinels the engine itself produces.
type SourceLocID struct {
	FileID int32
	IID    int32
}

// UnknownLoc is the sentinel used when no real source location is
// known for a field (e.g. a synthesized AllocInfo).
var UnknownLoc = SourceLocID{FileID: -1, IID: -1}

// RemoveFromDOMLoc is the sentinel site recorded when a DOM node's
// most-recent-use is attributed to its removal from the live DOM
// rather than to any caller-supplied site.
var RemoveFromDOMLoc = SourceLocID{FileID: -2, IID: -2}

// AllocInfo records what is known about an object's allocation: its
// type, the (mutable) source location it was allocated at, the time
// it was created, and the call stack captured at creation or at the
// most recent updateIID.
type AllocInfo struct {
	Type              ObjectType
	AllocationSite    SourceLocID
	CreationTime      uint64
	CreationCallStack []SourceLocID
}

// LastUseUnreachableInfo records when an object was last used and
// when it became unreachable. A zero MostRecentUseTime or
// UnreachableTime means "not yet observed" (§3 of the design).
type LastUseUnreachableInfo struct {
	ObjectID          int32
	MostRecentUseTime uint64
	MostRecentUseSite SourceLocID
	UnreachableTime   uint64
	UnreachableSite   SourceLocID
}

// newLastUseUnreachableInfo returns a fresh record for oid with the
// documented defaults (site fields default to UnknownLoc, times to 0).
func newLastUseUnreachableInfo(oid int32) *LastUseUnreachableInfo {
	return &LastUseUnreachableInfo{
		ObjectID:          oid,
		MostRecentUseSite: UnknownLoc,
		UnreachableSite:   UnknownLoc,
	}
}

// IIDUpdateRecord is produced by UpdateIID and streamed, sorted by
// CreationTime, to the update-IID binary stream. CreationTime is a
// sort key only — §6.3 does not include it in the emitted record.
type IIDUpdateRecord struct {
	ObjectID     int32
	CreationTime uint64
	NewSite      SourceLocID
}
