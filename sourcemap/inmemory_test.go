package sourcemap

import (
	"testing"

	"github.com/riftlabs/lifetrace"
)

func TestInMemoryResolve(t *testing.T) {
	m := NewInMemory()
	fileID := m.AddFile("main.js")
	m.AddLine(fileID, 7, 42)

	got := m.Resolve(lifetrace.SourceLocID{FileID: fileID, IID: 7})
	if want := "main.js:42"; got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}

func TestInMemoryResolveUnknown(t *testing.T) {
	m := NewInMemory()
	got := m.Resolve(lifetrace.SourceLocID{FileID: 9, IID: 9})
	if want := "<file 9, iid 9>"; got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}

func TestInMemoryAddLineOverwrites(t *testing.T) {
	m := NewInMemory()
	fileID := m.AddFile("a.js")
	m.AddLine(fileID, 1, 10)
	m.AddLine(fileID, 1, 20)

	got := m.Resolve(lifetrace.SourceLocID{FileID: fileID, IID: 1})
	if want := "a.js:20"; got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}
