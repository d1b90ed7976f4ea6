// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/riftlabs/lifetrace/internal/objset"
	"github.com/riftlabs/lifetrace/ndjson"
)

var checkCmd = &cobra.Command{
	Use:   "check <trace.ndjson>",
	Short: "Sanity-check a trace for contract violations the core analyzer is required to tolerate silently",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

const maxCheckErrors = 20

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	warn := warnColor(cfg)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("check: open trace: %w", err)
	}
	defer f.Close()

	dec := ndjson.NewDecoder(f)

	var live objset.Set
	var pendingUnreachable objset.Set
	var staleCreates, staleUnreachable []ndjson.Event
	var creates, unreachables int

	for {
		ev, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("check: %w", err)
		}
		switch ev.Kind {
		case ndjson.KindCreate, ndjson.KindCreateFun:
			if ok := live.Add(uint32(ev.ObjectID)); !ok {
				staleCreates = append(staleCreates, ev)
			}
			pendingUnreachable.Remove(uint32(ev.ObjectID))
			creates++
		case ndjson.KindUnreachableObject:
			live.Remove(uint32(ev.ObjectID))
			if ok := pendingUnreachable.Add(uint32(ev.ObjectID)); !ok {
				staleUnreachable = append(staleUnreachable, ev)
			}
			unreachables++
		case ndjson.KindEndLastUse, ndjson.KindEndExecution:
			pendingUnreachable = objset.Set{}
		}
		if len(staleCreates)+len(staleUnreachable) > maxCheckErrors {
			break
		}
	}

	if n := len(staleCreates); n > 0 {
		warn.Fprintf(os.Stderr, "found %d create(_fun) for an already-live object id (revival is legal; this only flags ids never marked unreachable in between)\n", n)
	}
	if n := len(staleUnreachable); n > 0 {
		warn.Fprintf(os.Stderr, "found %d unreachable_object seen twice before a flush for the same id\n", n)
	}

	fmt.Printf("Creates:      %d\n", creates)
	fmt.Printf("Unreachables: %d\n", unreachables)
	return nil
}
