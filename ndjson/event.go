// Package ndjson defines the concrete newline-delimited JSON wire
// format lifetrace's "run" command reads, and a driver that replays
// it through an EventSink in order. The upstream trace parser itself
// is out of scope (spec.md §1 treats it as an external collaborator);
// this is the simplest reasonable stand-in format for the CLI to have
// something to read rather than no input format at all.
package ndjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/riftlabs/lifetrace"
)

// Kind tags which EventSink operation a decoded Event carries.
type Kind string

const (
	KindCreate             Kind = "create"
	KindCreateFun          Kind = "create_fun"
	KindLastUse            Kind = "last_use"
	KindUnreachableObject  Kind = "unreachable_object"
	KindUpdateIID          Kind = "update_iid"
	KindFunctionEnter      Kind = "function_enter"
	KindFunctionExit       Kind = "function_exit"
	KindAddDOMChild        Kind = "add_dom_child"
	KindRemoveDOMChild     Kind = "remove_dom_child"
	KindDOMRoot            Kind = "dom_root"
	KindEndLastUse         Kind = "end_last_use"
	KindEndExecution       Kind = "end_execution"
)

// Event is one decoded trace line. Only the fields relevant to Kind
// are populated; the rest are left zero.
type Event struct {
	Kind Kind `json:"kind"`

	ObjectID  int32       `json:"object_id,omitempty"`
	ProtoID   int32       `json:"proto_id,omitempty"`
	ParentID  int32       `json:"parent_id,omitempty"`
	ChildID   int32       `json:"child_id,omitempty"`
	FunID     int32       `json:"fun_id,omitempty"`
	IsDOM     bool        `json:"is_dom,omitempty"`
	Time      uint64      `json:"time,omitempty"`
	Size      uint64      `json:"size,omitempty"`

	Site      site `json:"site,omitempty"`
	CallSite  site `json:"call_site,omitempty"`
	EnterIID  site `json:"enter_iid,omitempty"`
	NewSite   site `json:"new_site,omitempty"`

	ClosureNames []string `json:"closure_names,omitempty"`
}

type site struct {
	FileID int32 `json:"file_id"`
	IID    int32 `json:"iid"`
}

func (s site) loc() lifetrace.SourceLocID {
	return lifetrace.SourceLocID{FileID: s.FileID, IID: s.IID}
}

// Apply dispatches e to the matching EventSink operation.
func (e Event) Apply(sink lifetrace.EventSink) error {
	switch e.Kind {
	case KindCreate:
		sink.Create(e.Site.loc(), e.ObjectID, e.Time, e.IsDOM)
	case KindCreateFun:
		sink.CreateFun(e.Site.loc(), e.ObjectID, e.ProtoID, e.EnterIID.loc(), e.ClosureNames, e.Time)
	case KindLastUse:
		sink.LastUse(e.ObjectID, e.Site.loc(), e.Time)
	case KindUnreachableObject:
		sink.UnreachableObject(e.Site.loc(), e.ObjectID, e.Time, e.Size)
	case KindUpdateIID:
		sink.UpdateIID(e.ObjectID, e.NewSite.loc())
	case KindFunctionEnter:
		sink.FunctionEnter(e.Site.loc(), e.FunID, e.CallSite.loc(), e.Time)
	case KindFunctionExit:
		sink.FunctionExit(e.Site.loc(), e.Time)
	case KindAddDOMChild:
		sink.AddDOMChild(e.ParentID, e.ChildID, e.Time)
	case KindRemoveDOMChild:
		sink.RemoveDOMChild(e.ParentID, e.ChildID, e.Time)
	case KindDOMRoot:
		sink.DOMRoot(e.ObjectID)
	case KindEndLastUse:
		sink.EndLastUse()
	case KindEndExecution:
		sink.EndExecution(e.Time)
	default:
		return fmt.Errorf("ndjson: unknown event kind %q", e.Kind)
	}
	return nil
}

// Decoder reads one Event per line from an underlying reader.
type Decoder struct {
	sc *bufio.Scanner
}

// NewDecoder wraps r. The buffer is sized generously since individual
// lines (a create_fun with a long closure-name list, say) can exceed
// bufio.Scanner's default 64KiB.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Decoder{sc: sc}
}

// Next returns the next decoded event, or io.EOF once the input is
// exhausted. Blank lines are skipped.
func (d *Decoder) Next() (Event, error) {
	for d.sc.Scan() {
		line := d.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			return Event{}, fmt.Errorf("ndjson: decode line: %w", err)
		}
		return e, nil
	}
	if err := d.sc.Err(); err != nil {
		return Event{}, fmt.Errorf("ndjson: scan: %w", err)
	}
	return Event{}, io.EOF
}

// Replay drives sink through every event decoded from r, in order,
// stopping at the first decode error or the first panic sink raises
// (the caller is expected to recover that into a single error via
// lifetrace.Recover, per spec §7).
func Replay(r io.Reader, sink lifetrace.EventSink) error {
	dec := NewDecoder(r)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := ev.Apply(sink); err != nil {
			return err
		}
	}
}
