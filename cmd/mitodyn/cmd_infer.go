// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amsharma23/mitodyn/services/dynamics/events"
	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
	"github.com/amsharma23/mitodyn/services/dynamics/infer"
	"github.com/amsharma23/mitodyn/services/dynamics/report"
	"github.com/amsharma23/mitodyn/services/dynamics/topology"
)

func runInfer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	seriesRoot := args[0]

	method, err := infer.ParseMethod(config.InferenceMethod)
	if err != nil {
		return err
	}

	dir, err := resolveOutputDir(seriesRoot)
	if err != nil {
		return err
	}

	series, err := frametable.LoadSeries(ctx, seriesRoot)
	if err != nil {
		return err
	}
	deltas := topology.SeriesDeltas(series)

	// minimize_discrepancy needs detected counts to anchor on; run
	// detection only then.
	var detected *events.SeriesResult
	var detectedSummary events.Summary
	if method == infer.MethodMinimizeDiscrepancy {
		analyzer := events.NewAnalyzer(classifierConfig(), logger.Logger)
		detected, err = analyzer.AnalyzeSeries(ctx, series)
		if err != nil {
			return err
		}
		detectedSummary = detected.Summary
	}

	inferrer := infer.New(logger.Logger)
	results, err := inferrer.InferSeries(ctx, deltas, detected, method)
	if err != nil {
		return err
	}
	comparisons := infer.Compare(detectedSummary, infer.TotalCounts(results))

	report.WriteInferenceReport(cmd.OutOrStdout(), results, comparisons, method)
	if err := report.WriteInferred(dir, deltas, results, method); err != nil {
		return err
	}
	return report.WriteComparison(dir, comparisons, method)
}
