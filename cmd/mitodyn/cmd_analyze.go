// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amsharma23/mitodyn/services/dynamics/events"
	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
	"github.com/amsharma23/mitodyn/services/dynamics/infer"
	"github.com/amsharma23/mitodyn/services/dynamics/report"
	"github.com/amsharma23/mitodyn/services/dynamics/topology"
)

// resolveOutputDir defaults the output directory to the series root.
func resolveOutputDir(seriesRoot string) (string, error) {
	dir := outputDir
	if dir == "" {
		dir = config.OutputFolder
	}
	if dir == "" {
		dir = seriesRoot
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

func classifierConfig() events.Config {
	return events.Config{
		DistanceThreshold: config.DistanceThreshold,
		ZScale:            config.EffectiveZScale(),
		PersistenceWindow: config.PersistenceWindow,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	seriesRoot := args[0]

	dir, err := resolveOutputDir(seriesRoot)
	if err != nil {
		return err
	}

	manifest := report.NewManifest(seriesRoot)
	manifest.DistanceThreshold = config.DistanceThreshold
	manifest.ZScale = config.EffectiveZScale()
	manifest.PersistenceWindow = config.PersistenceWindow

	series, err := frametable.LoadSeries(ctx, seriesRoot)
	if err != nil {
		return err
	}
	logger.Info("series loaded",
		"time_points", series.Len(),
		"nodes", series.NodeCount(),
	)
	manifest.TimePoints = series.Len()

	if err := frametable.WriteCombined(series, frametable.CombinedTablePath(dir)); err != nil {
		return err
	}

	// Detection.
	analyzer := events.NewAnalyzer(classifierConfig(), logger.Logger)
	result, err := analyzer.AnalyzeSeries(ctx, series)
	if err != nil {
		return err
	}
	manifest.Transitions = len(result.Transitions)
	manifest.TotalEvents = result.Summary.Total()

	report.WriteDetectionReport(cmd.OutOrStdout(), result.Summary)
	if err := report.WriteDetectedSummary(dir, result.Summary); err != nil {
		return err
	}
	if err := report.WriteCategoryEvents(dir, result); err != nil {
		return err
	}

	// Reconciliation.
	deltas := topology.SeriesDeltas(series)
	rec := topology.ReconcileSeries(deltas, result)
	report.WriteReconciliationReport(cmd.OutOrStdout(), rec)
	if err := report.WriteReconciliationSummary(dir, rec); err != nil {
		return err
	}
	if err := report.WriteChangesByTransition(dir, deltas); err != nil {
		return err
	}

	// Inference, both objectives. minimize_discrepancy anchors on the
	// detected counts, minimize_total runs blind.
	inferrer := infer.New(logger.Logger)
	for _, method := range []infer.Method{infer.MethodMinimizeDiscrepancy, infer.MethodMinimizeTotal} {
		detected := result
		if method == infer.MethodMinimizeTotal {
			detected = nil
		}
		results, err := inferrer.InferSeries(ctx, deltas, detected, method)
		if err != nil {
			return err
		}
		comparisons := infer.Compare(result.Summary, infer.TotalCounts(results))

		report.WriteInferenceReport(cmd.OutOrStdout(), results, comparisons, method)
		if err := report.WriteInferred(dir, deltas, results, method); err != nil {
			return err
		}
		if err := report.WriteComparison(dir, comparisons, method); err != nil {
			return err
		}
	}

	if err := report.WriteManifest(dir, manifest); err != nil {
		return err
	}
	logger.Info("analysis complete", "run_id", manifest.RunID, "output", dir)
	return nil
}
