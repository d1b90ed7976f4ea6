// Package sourcemap provides SourceMap implementations for lifetrace:
// a slice-backed registry for a single run, and a SQLite-backed
// registry for installations that want the location table to survive
// across runs of the same instrumented script.
package sourcemap

import (
	"fmt"

	"github.com/riftlabs/lifetrace"
)

// File is a registered source file path, identified by its index in
// an InMemory registry's Files slice.
type File string

// Func describes a named function at a registered source location,
// following the dense Files/Funcs/Lines layout used to register
// symbol tables for a large instrumented program.
type Func struct {
	FileID int32
	Name   string
}

// Line maps one (file, iid) pair to the source line it corresponds
// to, for diagnostic rendering only — lifetrace's bookkeeping itself
// treats SourceLocID as opaque.
type Line struct {
	FileID int32
	IID    int32
	Line   uint32
}

// InMemory is a slice-backed SourceMap populated by the driver before
// a run starts. It never reallocates during resolution: Files and
// Lines grow only through AddFile/AddLine.
type InMemory struct {
	Files []string
	Funcs []Func
	Lines []Line

	byFileIID map[[2]int32]int
}

// NewInMemory returns an empty registry ready for AddFile/AddLine.
func NewInMemory() *InMemory {
	return &InMemory{byFileIID: make(map[[2]int32]int)}
}

// AddFile registers path and returns its file id.
func (m *InMemory) AddFile(path string) int32 {
	m.Files = append(m.Files, path)
	return int32(len(m.Files) - 1)
}

// AddLine registers a (fileID, iid) -> line mapping.
func (m *InMemory) AddLine(fileID, iid int32, line uint32) {
	key := [2]int32{fileID, iid}
	if idx, ok := m.byFileIID[key]; ok {
		m.Lines[idx].Line = line
		return
	}
	m.byFileIID[key] = len(m.Lines)
	m.Lines = append(m.Lines, Line{FileID: fileID, IID: iid, Line: line})
}

// Resolve renders id as "file:line" if registered, or a placeholder
// naming the raw ids otherwise — unresolved locations are common for
// synthesized AllocInfo records and must not be treated as errors.
func (m *InMemory) Resolve(id lifetrace.SourceLocID) string {
	if idx, ok := m.byFileIID[[2]int32{id.FileID, id.IID}]; ok {
		line := m.Lines[idx]
		if int(line.FileID) >= 0 && int(line.FileID) < len(m.Files) {
			return fmt.Sprintf("%s:%d", m.Files[line.FileID], line.Line)
		}
	}
	return fmt.Sprintf("<file %d, iid %d>", id.FileID, id.IID)
}
