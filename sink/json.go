// Package sink provides the four output writers lifetrace's Analyzer
// flushes to at finalization: a per-object JSON stream, the three
// fixed-width binary streams, and an optional msgpack debug snapshot
// written when a run aborts on a FatalError.
package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/riftlabs/lifetrace"
)

// JSONWriter emits the per-object JSON stream (spec §6.2): one line
// per flushed record, a 9-element array in the documented field
// order. Plain encoding/json is used here — see DESIGN.md for why no
// third-party codec from the pack is wired in for this stream.
type JSONWriter struct {
	enc       *json.Encoder
	sourceMap lifetrace.SourceMap
}

// NewJSONWriter wraps w, resolving SourceLocIDs through sourceMap.
func NewJSONWriter(w io.Writer, sourceMap lifetrace.SourceMap) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w), sourceMap: sourceMap}
}

// WriteObject implements lifetrace.ObjectRecordWriter.
func (j *JSONWriter) WriteObject(oid int32, alloc *lifetrace.AllocInfo, info *lifetrace.LastUseUnreachableInfo) error {
	stack := make([]string, len(alloc.CreationCallStack))
	for i, site := range alloc.CreationCallStack {
		stack[i] = j.sourceMap.Resolve(site)
	}
	record := [9]any{
		oid,
		alloc.Type.String(),
		j.sourceMap.Resolve(alloc.AllocationSite),
		alloc.CreationTime,
		stack,
		info.MostRecentUseTime,
		j.sourceMap.Resolve(info.MostRecentUseSite),
		info.UnreachableTime,
		j.sourceMap.Resolve(info.UnreachableSite),
	}
	if err := j.enc.Encode(record); err != nil {
		return fmt.Errorf("sink: encode object %d: %w", oid, err)
	}
	return nil
}
