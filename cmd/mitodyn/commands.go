// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath        string
	outputDir         string
	distanceThreshold float64
	zScale            float64
	persistenceWindow int
	inferenceMethod   string

	correctCategory  string
	correctTimePoint int
	correctPosition  []float64
	correctRow       int

	rootCmd = &cobra.Command{
		Use:   "mitodyn",
		Short: "Detect and reconcile remodeling events in skeletonized network time series",
		Long: `mitodyn classifies topological remodeling events between consecutive
frames of a 3-D skeleton time series, reconciles the detected events
against the aggregate topology changes, and infers event counts from
the topology deltas alone.`,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [series-root]",
		Short: "Run the full detection, reconciliation and inference pipeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze, // Defined in cmd_analyze.go
	}

	topologyCmd = &cobra.Command{
		Use:   "topology [series-root]",
		Short: "Compute per-frame aggregates and per-transition topology deltas",
		Args:  cobra.ExactArgs(1),
		RunE:  runTopology, // Defined in cmd_topology.go
	}

	inferCmd = &cobra.Command{
		Use:   "infer [series-root]",
		Short: "Infer event counts from topology deltas alone",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfer, // Defined in cmd_infer.go
	}

	correctCmd = &cobra.Command{
		Use:   "correct",
		Short: "Manually correct detected event records",
	}

	correctAddCmd = &cobra.Command{
		Use:   "add [output-dir]",
		Short: "Append a manually placed event to its category file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCorrectAdd, // Defined in cmd_correct.go
	}

	correctDeleteCmd = &cobra.Command{
		Use:   "delete [output-dir]",
		Short: "Delete an event record from its category file by row index",
		Args:  cobra.ExactArgs(1),
		RunE:  runCorrectDelete, // Defined in cmd_correct.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch [series-root]",
		Short: "Re-run the analysis whenever the series changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch, // Defined in cmd_watch.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the series root)")
	rootCmd.PersistentFlags().Float64Var(&distanceThreshold, "threshold", 5.0, "Spatial matching threshold in scaled voxel units")
	rootCmd.PersistentFlags().Float64Var(&zScale, "z-scale", 0, "Z anisotropy factor (default: derived from voxel resolutions)")
	rootCmd.PersistentFlags().IntVar(&persistenceWindow, "persistence-window", 1, "Temporal validation window in frames (1 disables)")

	inferCmd.Flags().StringVar(&inferenceMethod, "method", "minimize_total", "Inference objective: minimize_total or minimize_discrepancy")

	correctAddCmd.Flags().StringVar(&correctCategory, "category", "", "Event category, e.g. tip_tip_fusion")
	correctAddCmd.Flags().IntVar(&correctTimePoint, "time-point", 0, "Time point the event ends at")
	correctAddCmd.Flags().Float64SliceVar(&correctPosition, "position", nil, "Event position as x,y,z")
	correctAddCmd.MarkFlagRequired("category")
	correctAddCmd.MarkFlagRequired("position")

	correctDeleteCmd.Flags().StringVar(&correctCategory, "category", "", "Event category, e.g. tip_tip_fusion")
	correctDeleteCmd.Flags().IntVar(&correctRow, "row", -1, "0-based data row index to delete")
	correctDeleteCmd.MarkFlagRequired("category")
	correctDeleteCmd.MarkFlagRequired("row")

	correctCmd.AddCommand(correctAddCmd, correctDeleteCmd)
	rootCmd.AddCommand(analyzeCmd, topologyCmd, inferCmd, correctCmd, watchCmd)
}
