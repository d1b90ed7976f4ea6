// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/riftlabs/lifetrace/ndjson"
	"github.com/riftlabs/lifetrace/stats"
)

var sizesCmd = &cobra.Command{
	Use:   "sizes <trace.ndjson>",
	Short: "Compute a shallow-size histogram from unreachable_object events in a trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runSizes,
}

func runSizes(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("sizes: open trace: %w", err)
	}
	defer f.Close()

	dec := ndjson.NewDecoder(f)
	hist := stats.NewSizeHist()
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("sizes: %w", err)
		}
		if ev.Kind == ndjson.KindUnreachableObject && ev.Size > 0 {
			hist.Add(ev.Size)
		}
	}

	hist.ForEach(func(size, count uint64) {
		fmt.Printf("%d,%d\n", size, count)
	})
	return nil
}
