// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/riftlabs/lifetrace/stats"
)

var histCmd = &cobra.Command{
	Use:   "hist <last_use.bin> <unreachable.bin>",
	Short: "Compute a histogram of last-use-to-unreachable spans from the two time-sorted binary streams",
	Args:  cobra.ExactArgs(2),
	RunE:  runHist,
}

type lastUseOnDisk struct {
	ObjectID int32
	Time     uint64
	FileID   int32
	IID      int32
}

type unreachableOnDisk struct {
	ObjectID int32
	Time     uint64
	FileID   int32
	IID      int32
}

func runHist(cmd *cobra.Command, args []string) error {
	creation, err := readLastUseTimes(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("hist: open %s: %w", args[1], err)
	}
	defer f.Close()

	var lifetimes stats.LifetimeHist
	for {
		var rec unreachableOnDisk
		if err := binary.Read(f, binary.BigEndian, &rec); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("hist: read unreachable record: %w", err)
		}
		if start, ok := creation[rec.ObjectID]; ok && rec.Time >= start {
			lifetimes.AddN(uint32(rec.Time-start), 1)
		}
	}

	for i, count := range lifetimes.Snapshot() {
		if count == 0 {
			continue
		}
		fmt.Printf("%d,%d\n", i, count)
	}
	return nil
}

// readLastUseTimes indexes the last-use stream by object id, keeping
// the smallest time seen per id. That time is the object's
// most-recent-use time, not its creation time (creation_time is in
// neither binary stream), so the histogram built from it buckets the
// span from an object's last recorded use to its unreachability.
func readLastUseTimes(path string) (map[int32]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hist: open %s: %w", path, err)
	}
	defer f.Close()

	times := make(map[int32]uint64)
	for {
		var rec lastUseOnDisk
		if err := binary.Read(f, binary.BigEndian, &rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("hist: read last-use record: %w", err)
		}
		if cur, ok := times[rec.ObjectID]; !ok || rec.Time < cur {
			times[rec.ObjectID] = rec.Time
		}
	}
	return times, nil
}
