package sink

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/riftlabs/lifetrace"
)

// BinaryWriter backs all three fixed-width binary streams (spec
// §6.3): last-use, unreachable, and update-IID records are
// back-to-back with no framing, header, or count, translating the
// original Java analysis's field-by-field DataOutputStream.writeInt/
// writeLong calls into one encoding/binary.Write of a fixed-layout
// struct per record.
type BinaryWriter struct {
	w io.Writer
}

// NewBinaryWriter wraps w for one of the three binary streams. Each
// stream gets its own BinaryWriter since they're independent byte
// sequences written to independent files.
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w}
}

type lastUseRecord struct {
	ObjectID int32
	Time     uint64
	FileID   int32
	IID      int32
}

// WriteLastUse implements lifetrace.BinaryRecordWriter: 20 bytes,
// { i32 object_id; u64 time; i32 site_file_id; i32 site_iid }.
func (b *BinaryWriter) WriteLastUse(oid int32, time uint64, site lifetrace.SourceLocID) error {
	rec := lastUseRecord{ObjectID: oid, Time: time, FileID: site.FileID, IID: site.IID}
	if err := binary.Write(b.w, binary.BigEndian, rec); err != nil {
		return fmt.Errorf("sink: write last-use record for %d: %w", oid, err)
	}
	return nil
}

type unreachableRecord struct {
	ObjectID int32
	Time     uint64
	FileID   int32
	IID      int32
}

// WriteUnreachable implements lifetrace.BinaryRecordWriter: 20 bytes,
// { i32 object_id; u64 time; i32 site_file_id; i32 site_iid }.
func (b *BinaryWriter) WriteUnreachable(oid int32, time uint64, site lifetrace.SourceLocID) error {
	rec := unreachableRecord{ObjectID: oid, Time: time, FileID: site.FileID, IID: site.IID}
	if err := binary.Write(b.w, binary.BigEndian, rec); err != nil {
		return fmt.Errorf("sink: write unreachable record for %d: %w", oid, err)
	}
	return nil
}

type iidUpdateRecord struct {
	ObjectID int32
	FileID   int32
	IID      int32
}

// WriteIIDUpdate implements lifetrace.BinaryRecordWriter: 12 bytes,
// { i32 object_id; i32 site_file_id; i32 site_iid }. creation_time is
// the sort key used upstream and is never part of the emitted record.
func (b *BinaryWriter) WriteIIDUpdate(oid int32, site lifetrace.SourceLocID) error {
	rec := iidUpdateRecord{ObjectID: oid, FileID: site.FileID, IID: site.IID}
	if err := binary.Write(b.w, binary.BigEndian, rec); err != nil {
		return fmt.Errorf("sink: write iid-update record for %d: %w", oid, err)
	}
	return nil
}
