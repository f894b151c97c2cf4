// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package topology

import (
	"github.com/amsharma23/mitodyn/services/dynamics/events"
)

// MetricName identifies a reconciled aggregate.
type MetricName string

const (
	MetricTips      MetricName = "tips"
	MetricJunctions MetricName = "junctions"
)

// Row is the reconciliation of one aggregate over one transition.
type Row struct {
	TimePoint1 int
	TimePoint2 int
	Metric     MetricName

	Observed int
	Expected int

	// Discrepancy is Observed - Expected; zero means the detected
	// events fully account for the aggregate change.
	Discrepancy int

	// PercentExplained is 100 * Expected / Observed, 0 when nothing
	// was observed to explain.
	PercentExplained float64
}

// Explained reports whether the detected events fully account for the
// observed change of this row.
func (r Row) Explained() bool { return r.Discrepancy == 0 }

// Reconcile compares one transition's observed aggregate change with
// the change its detected events imply, producing one row per metric.
func Reconcile(d Delta, s events.Summary) []Row {
	expTips, expJunctions := s.Expected()
	return []Row{
		newRow(d, MetricTips, d.DeltaTips, expTips),
		newRow(d, MetricJunctions, d.DeltaJunctions, expJunctions),
	}
}

func newRow(d Delta, metric MetricName, observed, expected int) Row {
	r := Row{
		TimePoint1:  d.TimePoint1,
		TimePoint2:  d.TimePoint2,
		Metric:      metric,
		Observed:    observed,
		Expected:    expected,
		Discrepancy: observed - expected,
	}
	if observed != 0 {
		r.PercentExplained = 100 * float64(expected) / float64(observed)
	}
	return r
}

// SeriesReconciliation is the reconciliation of a whole series.
type SeriesReconciliation struct {
	// Rows holds per-transition rows in time-point order, tips before
	// junctions within a transition.
	Rows []Row

	// Deltas holds the observed changes the rows were built from.
	Deltas []Delta

	// TotalTransitions and ExplainedTransitions summarize how many
	// transitions were fully accounted for on both metrics.
	TotalTransitions     int
	ExplainedTransitions int
}

// ReconcileSeries reconciles every transition of an analyzed series.
// The deltas and the classification result must come from the same
// series; transitions are aligned by time-point pair, and deltas with
// no matching classification contribute rows against an empty summary.
func ReconcileSeries(deltas []Delta, result *events.SeriesResult) *SeriesReconciliation {
	byTransition := make(map[[2]int]events.Summary)
	if result != nil {
		for _, t := range result.Transitions {
			byTransition[[2]int{t.TimePoint1, t.TimePoint2}] = t.Summary
		}
	}

	out := &SeriesReconciliation{Deltas: deltas}
	for _, d := range deltas {
		rows := Reconcile(d, byTransition[[2]int{d.TimePoint1, d.TimePoint2}])
		out.Rows = append(out.Rows, rows...)

		out.TotalTransitions++
		explained := true
		for _, r := range rows {
			if !r.Explained() {
				explained = false
			}
		}
		if explained {
			out.ExplainedTransitions++
		}
	}
	return out
}
