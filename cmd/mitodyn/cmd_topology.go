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

	"github.com/spf13/cobra"

	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
	"github.com/amsharma23/mitodyn/services/dynamics/report"
	"github.com/amsharma23/mitodyn/services/dynamics/topology"
)

func runTopology(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	seriesRoot := args[0]

	dir, err := resolveOutputDir(seriesRoot)
	if err != nil {
		return err
	}

	series, err := frametable.LoadSeries(ctx, seriesRoot)
	if err != nil {
		return err
	}

	metrics := topology.SeriesMetrics(series)
	for _, m := range metrics {
		fmt.Fprintf(cmd.OutOrStdout(), "t=%d nodes=%d tips=%d junctions=%d components=%d\n",
			m.TimePoint, m.Nodes, m.Tips, m.Junctions, m.Components)
	}

	deltas := topology.SeriesDeltas(series)
	if err := report.WriteChangesByTransition(dir, deltas); err != nil {
		return err
	}

	logger.Info("topology deltas written",
		"transitions", len(deltas),
		"output", dir,
	)
	return nil
}
