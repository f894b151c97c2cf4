// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amsharma23/mitodyn/services/dynamics/correct"
	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
	"github.com/amsharma23/mitodyn/services/dynamics/report"
	"github.com/amsharma23/mitodyn/services/dynamics/watch"
)

func runWatch(cmd *cobra.Command, args []string) error {
	seriesRoot := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Re-running the pipeline is the handler; bursts from the
	// segmentation pipeline settle into one run.
	handler := func(changes []watch.Change) {
		logger.Info("series changed, re-running analysis", "changed_files", len(changes))
		if err := runAnalyze(cmd, args); err != nil {
			logger.Error("re-analysis failed", "error", err)
		}
	}

	// When output lands inside the watched root, the run's own CSVs
	// must not retrigger it.
	combined := filepath.Base(frametable.CombinedTablePath(seriesRoot))
	opts := watch.DefaultOptions()
	opts.Ignore = func(path string) bool {
		base := filepath.Base(path)
		return report.IsArtifact(base) ||
			base == correct.ModificationLogFile ||
			base == combined
	}

	w, err := watch.New(seriesRoot, handler, &opts)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	logger.Info("watching series root", "path", seriesRoot)

	// Initial run so the artifacts exist before the first change.
	if err := runAnalyze(cmd, args); err != nil {
		logger.Error("initial analysis failed", "error", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down watcher")
	return nil
}
