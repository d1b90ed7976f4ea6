package sink

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/riftlabs/lifetrace"
)

// DebugSnapshot is the in-flight engine state captured right before a
// FatalError aborts a run, so an operator can msgpack-decode exactly
// what the analyzer had accumulated when the trace-contract violation
// fired.
type DebugSnapshot struct {
	Live        map[int32]*lifetrace.AllocInfo       `msgpack:"live"`
	Unreachable map[int32]*lifetrace.AllocInfo       `msgpack:"unreachable"`
	Info        []*lifetrace.LastUseUnreachableInfo  `msgpack:"info"`
	Error       string                               `msgpack:"error"`
}

// WriteDebugSnapshot msgpack-encodes snap to w.
func WriteDebugSnapshot(w io.Writer, snap DebugSnapshot) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("sink: encode debug snapshot: %w", err)
	}
	return nil
}
