// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/exp/mmap"

	"github.com/riftlabs/lifetrace"
	"github.com/riftlabs/lifetrace/cmd/internal/spinner"
	"github.com/riftlabs/lifetrace/ndjson"
	"github.com/riftlabs/lifetrace/sink"
	"github.com/riftlabs/lifetrace/sourcemap"
	"github.com/riftlabs/lifetrace/stats"
)

var runCmd = &cobra.Command{
	Use:   "run <trace.ndjson>",
	Short: "Replay a trace and emit the per-object and binary output streams",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	runID := uuid.New().String()
	logger := slog.With("run_id", runID)

	r, err := mmap.Open(args[0])
	if err != nil {
		return fmt.Errorf("run: map trace: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("run: create output dir: %w", err)
	}

	objFile, err := os.Create(filepath.Join(cfg.Output.Dir, "objects.jsonl"))
	if err != nil {
		return fmt.Errorf("run: create objects.jsonl: %w", err)
	}
	defer objFile.Close()
	lastUseFile, err := os.Create(filepath.Join(cfg.Output.Dir, "last_use.bin"))
	if err != nil {
		return fmt.Errorf("run: create last_use.bin: %w", err)
	}
	defer lastUseFile.Close()
	unreachableFile, err := os.Create(filepath.Join(cfg.Output.Dir, "unreachable.bin"))
	if err != nil {
		return fmt.Errorf("run: create unreachable.bin: %w", err)
	}
	defer unreachableFile.Close()
	iidFile, err := os.Create(filepath.Join(cfg.Output.Dir, "iid_updates.bin"))
	if err != nil {
		return fmt.Errorf("run: create iid_updates.bin: %w", err)
	}
	defer iidFile.Close()

	sourceMap, err := openSourceMap(cfg)
	if err != nil {
		return err
	}
	if closer, ok := sourceMap.(io.Closer); ok {
		defer closer.Close()
	}

	sinks := lifetrace.Sinks{
		PerObject:   sink.NewJSONWriter(objFile, sourceMap),
		LastUse:     sink.NewBinaryWriter(lastUseFile),
		Unreachable: sink.NewBinaryWriter(unreachableFile),
		IIDUpdate:   sink.NewBinaryWriter(iidFile),
	}
	run := stats.New()
	analyzer := lifetrace.NewAnalyzer(sinks, run)
	analyzer.Init(sourceMap)

	var mu sync.Mutex
	total := float64(r.Len())
	var readSoFar int64
	spinner.Start(func() float64 {
		mu.Lock()
		defer mu.Unlock()
		if total == 0 {
			return 1
		}
		return float64(readSoFar) / total
	}, spinner.Format("Replaying trace... %.1f%%"))

	sectionReader := io.NewSectionReader(r, 0, int64(r.Len()))
	counting := &countingReader{r: sectionReader, onRead: func(n int) {
		mu.Lock()
		readSoFar += int64(n)
		mu.Unlock()
	}}

	if err := replayWithRecover(counting, analyzer); err != nil {
		spinner.Stop()
		var fatalErr *lifetrace.FatalError
		if errors.As(err, &fatalErr) {
			fatalColor(cfg).Fprintf(os.Stderr, "fatal: %v\n", fatalErr)
			writeDebugSnapshot(cfg, runID, analyzer, fatalErr)
		}
		return err
	}
	spinner.Stop()

	logger.Info("run complete",
		"objects_created", run.ObjectsCreated,
		"objects_revived", run.ObjectsRevived,
		"records_flushed", run.RecordsFlushed,
	)
	return nil
}

// openSourceMap selects the SQLite-backed registry when the config
// names a DSN, falling back to the in-memory one otherwise. Both
// satisfy lifetrace.SourceMap; the caller only needs to know whether
// the result also needs closing.
func openSourceMap(cfg config) (lifetrace.SourceMap, error) {
	if cfg.Sources.SQLiteDSN == "" {
		return sourcemap.NewInMemory(), nil
	}
	m, err := sourcemap.OpenSQLite(cfg.Sources.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("run: open sqlite source map: %w", err)
	}
	return m, nil
}

// replayWithRecover drives events through analyzer, converting the
// single FatalError panic surface (spec §7) into a returned error.
func replayWithRecover(r io.Reader, analyzer *lifetrace.Analyzer) (err error) {
	defer lifetrace.Recover(&err)
	return ndjson.Replay(r, analyzer)
}

func writeDebugSnapshot(cfg config, runID string, analyzer *lifetrace.Analyzer, cause *lifetrace.FatalError) {
	path := filepath.Join(cfg.Output.Dir, fmt.Sprintf("lifetrace-debug-%s.msgpack", runID))
	f, err := os.Create(path)
	if err != nil {
		slog.Error("writing debug snapshot", "error", err)
		return
	}
	defer f.Close()

	live, unreachable, info := analyzer.DebugState()
	snap := sink.DebugSnapshot{Live: live, Unreachable: unreachable, Info: info, Error: cause.Error()}
	if err := sink.WriteDebugSnapshot(f, snap); err != nil {
		slog.Error("writing debug snapshot", "error", err)
	}
}

type countingReader struct {
	r      io.Reader
	onRead func(n int)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.onRead(n)
	}
	return n, err
}
