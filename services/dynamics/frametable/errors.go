// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package frametable holds the in-memory representation of a skeleton
// time series: one Frame per time point, each a set of Nodes carrying
// position, adjacency, and optional per-node dynamics signals.
//
// # Ownership Model
//
// Frames are immutable once loaded:
//   - Nodes MUST NOT be mutated after a Frame is built
//   - Downstream components only read the table
//
// # Degree Contract
//
// A node's degree is always recomputed as len(Adjacency). Stored degree
// columns in source tables are ignored. A node whose adjacency field
// failed to parse carries an empty adjacency list and therefore degree 0;
// the parse failure itself is reported by ParseAdjacency, not swallowed.
//
// # Thread Safety
//
// FrameTable is safe for concurrent reads after construction.
package frametable

import "errors"

// Sentinel errors for series loading and parsing.
var (
	// ErrSeriesRootMissing is returned when the series root directory or
	// combined table does not exist. This is the one hard failure of a run.
	ErrSeriesRootMissing = errors.New("series root not found")

	// ErrAdjacencyParse is returned when an adjacency field is not a
	// parseable literal list of node ids.
	ErrAdjacencyParse = errors.New("adjacency list not parseable")

	// ErrMissingColumn is returned when a source table lacks one of the
	// required columns.
	ErrMissingColumn = errors.New("required column missing")

	// ErrFrameNotFound is returned when a time point has no frame.
	ErrFrameNotFound = errors.New("frame not found")
)
