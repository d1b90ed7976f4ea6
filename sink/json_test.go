package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/riftlabs/lifetrace"
)

type identitySourceMap struct{}

func (identitySourceMap) Resolve(id lifetrace.SourceLocID) string {
	return fmt.Sprintf("%d:%d", id.FileID, id.IID)
}

func TestJSONWriterWriteObject(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, identitySourceMap{})

	alloc := &lifetrace.AllocInfo{
		Type:              lifetrace.Object,
		AllocationSite:    lifetrace.SourceLocID{FileID: 1, IID: 1},
		CreationTime:      10,
		CreationCallStack: nil,
	}
	info := &lifetrace.LastUseUnreachableInfo{
		ObjectID:          5,
		MostRecentUseTime: 20,
		MostRecentUseSite: lifetrace.SourceLocID{FileID: 1, IID: 2},
		UnreachableTime:   30,
		UnreachableSite:   lifetrace.SourceLocID{FileID: 1, IID: 3},
	}
	if err := w.WriteObject(5, alloc, info); err != nil {
		t.Fatal(err)
	}

	var got []any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := `[5,"OBJECT","1:1",10,[],20,"1:2",30,"1:3"]`
	var wantVal []any
	if err := json.Unmarshal([]byte(want), &wantVal); err != nil {
		t.Fatal(err)
	}
	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(wantVal)
	if string(gotJSON) != string(wantJSON) {
		t.Fatalf("WriteObject line = %s, want %s", gotJSON, wantJSON)
	}
}
