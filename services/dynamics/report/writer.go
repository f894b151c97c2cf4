// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package report writes the CSV artifacts and text reports of an
// analysis run.
//
// Artifact file names are stable; downstream notebooks key on them.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amsharma23/mitodyn/services/dynamics/events"
	"github.com/amsharma23/mitodyn/services/dynamics/infer"
	"github.com/amsharma23/mitodyn/services/dynamics/topology"
)

// Artifact file names.
const (
	DetectedSummaryFile       = "detected_events_summary.csv"
	ReconciliationSummaryFile = "topology_reconciliation_summary.csv"
	ChangesByTransitionFile   = "topology_changes_by_transition.csv"
	ManifestFile              = "run_manifest.csv"
)

// InferredFile returns the inferred-counts artifact name for a method.
func InferredFile(method infer.Method) string {
	return fmt.Sprintf("topology_inferred_events_%s.csv", method)
}

// ComparisonFile returns the comparison artifact name for a method.
func ComparisonFile(method infer.Method) string {
	return fmt.Sprintf("comparison_%s.csv", method)
}

// IsArtifact reports whether name (a base file name) is one of the
// files an analysis run writes. Watch mode uses it to keep a run from
// retriggering on its own output.
func IsArtifact(name string) bool {
	switch name {
	case DetectedSummaryFile, ReconciliationSummaryFile, ChangesByTransitionFile, ManifestFile:
		return true
	}
	if strings.HasPrefix(name, "topology_inferred_events_") && strings.HasSuffix(name, ".csv") {
		return true
	}
	if strings.HasPrefix(name, "comparison_") && strings.HasSuffix(name, ".csv") {
		return true
	}
	// Per-category event files, e.g. tip_tip_fusion_events.csv.
	return strings.HasSuffix(name, "_events.csv")
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func transitionLabel(tp1, tp2 int) string { return fmt.Sprintf("%d->%d", tp1, tp2) }

// WriteDetectedSummary writes the one-row series event count summary.
func WriteDetectedSummary(dir string, s events.Summary) error {
	header := make([]string, 0, int(events.NumCategories))
	row := make([]string, 0, int(events.NumCategories))
	for c := events.Category(0); c < events.NumCategories; c++ {
		header = append(header, "total_"+c.String())
		row = append(row, itoa(s.Count(c)))
	}
	return writeCSV(filepath.Join(dir, DetectedSummaryFile), header, [][]string{row})
}

// WriteReconciliationSummary writes the series-level reconciliation:
// one row per metric with totals summed over every transition.
func WriteReconciliationSummary(dir string, rec *topology.SeriesReconciliation) error {
	totals := map[topology.MetricName]*struct{ observed, expected int }{
		topology.MetricTips:      {},
		topology.MetricJunctions: {},
	}
	for _, r := range rec.Rows {
		t := totals[r.Metric]
		t.observed += r.Observed
		t.expected += r.Expected
	}

	header := []string{"metric", "actual_change", "expected_from_events", "discrepancy", "percent_explained"}
	var rows [][]string
	for _, m := range []topology.MetricName{topology.MetricTips, topology.MetricJunctions} {
		t := totals[m]
		percent := 0.0
		if t.observed != 0 {
			percent = 100 * float64(t.expected) / float64(t.observed)
		}
		rows = append(rows, []string{
			string(m), itoa(t.observed), itoa(t.expected), itoa(t.observed - t.expected), ftoa(percent),
		})
	}
	return writeCSV(filepath.Join(dir, ReconciliationSummaryFile), header, rows)
}

// WriteChangesByTransition writes the per-transition observed deltas.
func WriteChangesByTransition(dir string, deltas []topology.Delta) error {
	header := []string{
		"transition", "time_point_1", "time_point_2",
		"tips_t1", "tips_t2", "delta_tips",
		"junctions_t1", "junctions_t2", "delta_junctions",
		"components_t1", "components_t2", "delta_components",
		"component_fusions", "component_fissions",
	}
	rows := make([][]string, 0, len(deltas))
	for _, d := range deltas {
		rows = append(rows, []string{
			transitionLabel(d.TimePoint1, d.TimePoint2), itoa(d.TimePoint1), itoa(d.TimePoint2),
			itoa(d.Before.Tips), itoa(d.After.Tips), itoa(d.DeltaTips),
			itoa(d.Before.Junctions), itoa(d.After.Junctions), itoa(d.DeltaJunctions),
			itoa(d.Before.Components), itoa(d.After.Components), itoa(d.DeltaComponents),
			itoa(d.ComponentFusions), itoa(d.ComponentFissions),
		})
	}
	return writeCSV(filepath.Join(dir, ChangesByTransitionFile), header, rows)
}

// WriteInferred writes per-transition inferred counts for one method.
func WriteInferred(dir string, deltas []topology.Delta, results []infer.Result, method infer.Method) error {
	header := []string{"transition", "time_point_1", "time_point_2", "delta_tips", "delta_junctions"}
	for c := events.Category(0); c < events.NumCategories; c++ {
		header = append(header, c.String())
	}
	header = append(header, "perfect_match", "residual_tips", "residual_junctions")

	byTransition := make(map[[2]int]topology.Delta)
	for _, d := range deltas {
		byTransition[[2]int{d.TimePoint1, d.TimePoint2}] = d
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		d := byTransition[[2]int{r.TimePoint1, r.TimePoint2}]
		row := []string{
			transitionLabel(r.TimePoint1, r.TimePoint2), itoa(r.TimePoint1), itoa(r.TimePoint2),
			itoa(d.DeltaTips), itoa(d.DeltaJunctions),
		}
		for c := events.Category(0); c < events.NumCategories; c++ {
			row = append(row, itoa(r.Counts.Count(c)))
		}
		row = append(row, strconv.FormatBool(r.PerfectMatch), itoa(r.ResidualTips), itoa(r.ResidualJunctions))
		rows = append(rows, row)
	}
	return writeCSV(filepath.Join(dir, InferredFile(method)), header, rows)
}

// WriteComparison writes the detected-vs-inferred comparison for one
// method. An undefined percent difference is written as an empty field.
func WriteComparison(dir string, comparisons []infer.Comparison, method infer.Method) error {
	header := []string{"event_type", "detected", "inferred_from_topology", "difference", "percent_difference"}
	rows := make([][]string, 0, len(comparisons))
	for _, c := range comparisons {
		percent := ""
		if c.PercentDifference != nil {
			percent = ftoa(*c.PercentDifference)
		}
		rows = append(rows, []string{
			c.Category.String(), itoa(c.Detected), itoa(c.Inferred), itoa(c.Inferred - c.Detected), percent,
		})
	}
	return writeCSV(filepath.Join(dir, ComparisonFile(method)), header, rows)
}

// EventCSVHeader is the column layout of per-category event files.
var EventCSVHeader = []string{
	"timepoint_1", "timepoint_2",
	"pos_a_x", "pos_a_y", "pos_a_z",
	"pos_b_x", "pos_b_y", "pos_b_z",
	"degree_t1", "degree_t2", "distance",
	"signal_a", "signal_b",
}

// EventCSVRow renders one event in the EventCSVHeader layout.
func EventCSVRow(ev events.Event) []string {
	optSignal := func(p *float64) string {
		if p == nil {
			return ""
		}
		return ftoa(*p)
	}
	return []string{
		itoa(ev.TimePoint1), itoa(ev.TimePoint2),
		ftoa(ev.PositionA[0]), ftoa(ev.PositionA[1]), ftoa(ev.PositionA[2]),
		ftoa(ev.PositionB[0]), ftoa(ev.PositionB[1]), ftoa(ev.PositionB[2]),
		itoa(ev.DegreeT1), itoa(ev.DegreeT2), ftoa(ev.Distance),
		optSignal(ev.SignalA), optSignal(ev.SignalB),
	}
}

// WriteCategoryEvents writes one CSV per category that has events.
func WriteCategoryEvents(dir string, result *events.SeriesResult) error {
	for c := events.Category(0); c < events.NumCategories; c++ {
		evs := result.EventsByCategory(c)
		if len(evs) == 0 {
			continue
		}
		rows := make([][]string, 0, len(evs))
		for _, ev := range evs {
			rows = append(rows, EventCSVRow(ev))
		}
		if err := writeCSV(filepath.Join(dir, c.FileName()), EventCSVHeader, rows); err != nil {
			return err
		}
	}
	return nil
}

// Manifest describes one analysis run.
type Manifest struct {
	RunID             string
	StartedAt         time.Time
	SeriesRoot        string
	DistanceThreshold float64
	ZScale            float64
	PersistenceWindow int
	TimePoints        int
	Transitions       int
	TotalEvents       int
}

// NewManifest builds a manifest with a fresh run ID.
func NewManifest(seriesRoot string) Manifest {
	return Manifest{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		SeriesRoot: seriesRoot,
	}
}

// WriteManifest writes the one-row run manifest.
func WriteManifest(dir string, m Manifest) error {
	header := []string{
		"run_id", "started_at", "series_root",
		"distance_threshold", "z_scale", "persistence_window",
		"time_points", "transitions", "total_events",
	}
	row := []string{
		m.RunID, m.StartedAt.Format(time.RFC3339), m.SeriesRoot,
		ftoa(m.DistanceThreshold), ftoa(m.ZScale), itoa(m.PersistenceWindow),
		itoa(m.TimePoints), itoa(m.Transitions), itoa(m.TotalEvents),
	}
	return writeCSV(filepath.Join(dir, ManifestFile), header, [][]string{row})
}
