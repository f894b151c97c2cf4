// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package topology aggregates per-frame network structure counts and
// reconciles them against the events detected on each transition.
//
// Tips are degree-1 nodes, junctions have degree >= 3. Components are
// counted from the component labels carried by the frame table; frames
// without labels report zero components and component deltas are
// suppressed for transitions touching them.
package topology

import (
	"github.com/amsharma23/mitodyn/services/dynamics/events"
	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
)

// Metrics are the aggregate structure counts of one frame.
type Metrics struct {
	TimePoint  int
	Nodes      int
	Tips       int
	Junctions  int
	Components int

	// HasComponents reports whether any node of the frame carried a
	// component label. Components is meaningless when false.
	HasComponents bool
}

// MetricsOf counts tips, junctions and labeled components of a frame.
func MetricsOf(f *frametable.Frame) Metrics {
	m := Metrics{TimePoint: f.TimePoint, Nodes: f.Len()}
	seen := make(map[int64]bool)
	for i := range f.Nodes {
		n := &f.Nodes[i]
		switch {
		case n.IsTip():
			m.Tips++
		case n.IsJunction():
			m.Junctions++
		}
		if n.ComponentID != nil {
			m.HasComponents = true
			seen[*n.ComponentID] = true
		}
	}
	m.Components = len(seen)
	return m
}

// Delta is the observed aggregate change across one transition.
type Delta struct {
	TimePoint1 int
	TimePoint2 int

	Before Metrics
	After  Metrics

	DeltaTips       int
	DeltaJunctions  int
	DeltaComponents int

	// ComponentFusions and ComponentFissions split the net component
	// change into its one-sided magnitudes: a net loss of components is
	// attributed to fusions, a net gain to fissions. Both zero when
	// either frame lacks component labels.
	ComponentFusions  int
	ComponentFissions int
}

// DeltaOf computes the observed change between two frames.
func DeltaOf(f1, f2 *frametable.Frame) Delta {
	before := MetricsOf(f1)
	after := MetricsOf(f2)

	d := Delta{
		TimePoint1:     f1.TimePoint,
		TimePoint2:     f2.TimePoint,
		Before:         before,
		After:          after,
		DeltaTips:      after.Tips - before.Tips,
		DeltaJunctions: after.Junctions - before.Junctions,
	}

	if before.HasComponents && after.HasComponents {
		d.DeltaComponents = after.Components - before.Components
		if d.DeltaComponents < 0 {
			d.ComponentFusions = -d.DeltaComponents
		} else {
			d.ComponentFissions = d.DeltaComponents
		}
	}
	return d
}

// SeriesDeltas computes the observed change for every consecutive
// transition of the series, in time-point order. Transitions whose
// frames are missing from the table are skipped.
func SeriesDeltas(series *frametable.FrameTable) []Delta {
	var out []Delta
	for _, pair := range series.Transitions() {
		f1, ok1 := series.Frame(pair[0])
		f2, ok2 := series.Frame(pair[1])
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, DeltaOf(f1, f2))
	}
	return out
}

// SeriesMetrics computes per-frame aggregates for the whole series in
// time-point order.
func SeriesMetrics(series *frametable.FrameTable) []Metrics {
	var out []Metrics
	for _, tp := range series.TimePoints() {
		f, ok := series.Frame(tp)
		if !ok {
			continue
		}
		out = append(out, MetricsOf(f))
	}
	return out
}

// ExpectedDelta is the aggregate change the detected events imply.
func ExpectedDelta(s events.Summary) (deltaTips, deltaJunctions int) {
	return s.Expected()
}
