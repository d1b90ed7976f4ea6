// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command lifetrace replays a memory-event trace through the
// streaming staleness analyzer and writes the per-object JSON stream
// and the three binary streams (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configPath string
	colorMode  string
)

var rootCmd = &cobra.Command{
	Use:   "lifetrace",
	Short: "Streaming memory-event staleness analyzer",
	Long:  "lifetrace replays an object-lifetime event trace and emits per-object and sorted binary output streams.",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "lifetrace.toml", "path to a lifetrace.toml config file")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "colorize diagnostics (auto|on|off); overrides config")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(histCmd)
	rootCmd.AddCommand(sizesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// warnColor resolves the effective color setting from the --color
// flag and the loaded config, falling back to auto-detection.
func warnColor(cfg config) *color.Color {
	mode := colorMode
	if mode == "" {
		mode = cfg.Color
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	return color.New(color.FgYellow)
}

func fatalColor(cfg config) *color.Color {
	mode := colorMode
	if mode == "" {
		mode = cfg.Color
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	return color.New(color.FgRed, color.Bold)
}
