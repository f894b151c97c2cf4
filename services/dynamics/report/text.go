// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/amsharma23/mitodyn/services/dynamics/events"
	"github.com/amsharma23/mitodyn/services/dynamics/infer"
	"github.com/amsharma23/mitodyn/services/dynamics/topology"
)

const bannerWidth = 80

func banner(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("=", bannerWidth))
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", bannerWidth))
}

// WriteDetectionReport renders the detected event counts as text.
func WriteDetectionReport(w io.Writer, s events.Summary) {
	banner(w, "DETECTED EVENT SUMMARY")
	for c := events.Category(0); c < events.NumCategories; c++ {
		fmt.Fprintf(w, "  %-30s: %4d\n", c.DisplayName(), s.Count(c))
	}
	fmt.Fprintf(w, "  %-30s: %4d\n", "Total events", s.Total())
}

// WriteReconciliationReport renders the reconciliation as text.
func WriteReconciliationReport(w io.Writer, rec *topology.SeriesReconciliation) {
	banner(w, "TOPOLOGY RECONCILIATION")
	fmt.Fprintf(w, "Transitions: %d, fully explained: %d\n\n",
		rec.TotalTransitions, rec.ExplainedTransitions)

	fmt.Fprintf(w, "  %-12s %10s %10s %12s %10s\n",
		"metric", "actual", "expected", "discrepancy", "%explained")
	totals := map[topology.MetricName][2]int{}
	for _, r := range rec.Rows {
		t := totals[r.Metric]
		totals[r.Metric] = [2]int{t[0] + r.Observed, t[1] + r.Expected}
	}
	for _, m := range []topology.MetricName{topology.MetricTips, topology.MetricJunctions} {
		observed, expected := totals[m][0], totals[m][1]
		percent := 0.0
		if observed != 0 {
			percent = 100 * float64(expected) / float64(observed)
		}
		fmt.Fprintf(w, "  %-12s %10d %10d %12d %9.1f%%\n",
			m, observed, expected, observed-expected, percent)
	}

	var unexplained []topology.Row
	for _, r := range rec.Rows {
		if !r.Explained() {
			unexplained = append(unexplained, r)
		}
	}
	if len(unexplained) > 0 {
		fmt.Fprintf(w, "\nUnexplained transitions:\n")
		for _, r := range unexplained {
			fmt.Fprintf(w, "  %d->%d %-10s observed %+d expected %+d\n",
				r.TimePoint1, r.TimePoint2, r.Metric, r.Observed, r.Expected)
		}
	}
}

// WriteInferenceReport renders per-transition inferred counts and the
// detected-vs-inferred comparison as text.
func WriteInferenceReport(w io.Writer, results []infer.Result, comparisons []infer.Comparison, method infer.Method) {
	banner(w, fmt.Sprintf("TOPOLOGY-DRIVEN INFERENCE (%s)", method))

	perfect := 0
	for _, r := range results {
		if r.PerfectMatch {
			perfect++
		}
	}
	fmt.Fprintf(w, "Transitions: %d, perfect matches: %d\n\n", len(results), perfect)

	for _, r := range results {
		if r.Counts.Total() == 0 && r.PerfectMatch {
			continue
		}
		fmt.Fprintf(w, "  %d->%d:", r.TimePoint1, r.TimePoint2)
		for c := events.Category(0); c < events.NumCategories; c++ {
			if n := r.Counts.Count(c); n > 0 {
				fmt.Fprintf(w, " %s=%d", c.String(), n)
			}
		}
		if !r.PerfectMatch {
			fmt.Fprintf(w, " (residual tips %d junctions %d)", r.ResidualTips, r.ResidualJunctions)
		}
		fmt.Fprintln(w)
	}

	if len(comparisons) == 0 {
		return
	}
	fmt.Fprintf(w, "\n  %-22s %9s %9s %11s %9s\n",
		"event_type", "detected", "inferred", "difference", "%diff")
	for _, c := range comparisons {
		percent := "n/a"
		if c.PercentDifference != nil {
			percent = fmt.Sprintf("%.1f%%", *c.PercentDifference)
		}
		fmt.Fprintf(w, "  %-22s %9d %9d %11d %9s\n",
			c.Category.String(), c.Detected, c.Inferred, c.Inferred-c.Detected, percent)
	}
}
