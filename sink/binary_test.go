package sink

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/riftlabs/lifetrace"
)

func TestBinaryWriterLastUseLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	if err := w.WriteLastUse(5, 20, lifetrace.SourceLocID{FileID: 1, IID: 2}); err != nil {
		t.Fatal(err)
	}
	if got := buf.Len(); got != 20 {
		t.Fatalf("record length = %d, want 20", got)
	}

	var oid int32
	var time uint64
	var fileID, iid int32
	r := bytes.NewReader(buf.Bytes())
	for _, v := range []any{&oid, &time, &fileID, &iid} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	if oid != 5 || time != 20 || fileID != 1 || iid != 2 {
		t.Fatalf("decoded (%d,%d,%d,%d), want (5,20,1,2)", oid, time, fileID, iid)
	}
}

func TestBinaryWriterIIDUpdateLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	if err := w.WriteIIDUpdate(5, lifetrace.SourceLocID{FileID: 3, IID: 3}); err != nil {
		t.Fatal(err)
	}
	if got := buf.Len(); got != 12 {
		t.Fatalf("record length = %d, want 12", got)
	}

	var oid, fileID, iid int32
	r := bytes.NewReader(buf.Bytes())
	for _, v := range []any{&oid, &fileID, &iid} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	if oid != 5 || fileID != 3 || iid != 3 {
		t.Fatalf("decoded (%d,%d,%d), want (5,3,3)", oid, fileID, iid)
	}
}
