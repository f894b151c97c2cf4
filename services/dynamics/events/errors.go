// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package events detects and classifies topological remodeling events
// between consecutive frames of a skeleton time series.
//
// # Classification Model
//
// For each transition the classifier:
//
//  1. Recomputes every node's degree from its adjacency list.
//  2. Computes the one-to-many spatial match relation (package match)
//     and partitions nodes into matched-1-to-1 pairs, disappeared t1
//     nodes, and appeared t2 nodes.
//  3. Classifies strict degree-class transitions of 1-to-1 pairs
//     (1 -> >=3 and >=3 -> 1).
//  4. Pairs unmatched tips and junctions by proximity (and, for
//     extrusion/retraction, graph adjacency) into the remaining four
//     categories.
//  5. Applies optional dynamics-signal gating and optional multi-frame
//     persistence validation; failing candidates are discarded.
//
// Each transition is a pure function of its two frames (plus read-only
// series lookups for persistence), so transitions can be classified
// concurrently; see Analyzer.
//
// # Known Looseness
//
// A node satisfying more than one pairing heuristic appears in more
// than one emitted event. This mirrors the detection model this package
// implements and is covered by tests rather than silently deduplicated.
package events

import "errors"

// Sentinel errors for series analysis.
var (
	// ErrNoSeries is returned when a series analysis has fewer than two
	// frames to transition between.
	ErrNoSeries = errors.New("series has no transitions")

	// ErrBadWindow is returned for a persistence window < 1.
	ErrBadWindow = errors.New("persistence window must be >= 1")
)
