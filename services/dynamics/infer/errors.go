// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package infer estimates per-category event counts from aggregate
// topology deltas alone.
//
// The aggregate change of a transition underdetermines the event count
// vector (two equations, six unknowns), so inference picks one solution
// by objective: "minimize_total" prefers the fewest total events,
// "minimize_discrepancy" stays closest to the detected counts. Each
// objective has a deterministic fallback when its primary solver fails,
// so inference itself never errors on solvable input; solver failures
// surface as Result.Fallback plus a log line, not as errors.
//
// Counts are rounded to integers after solving and residuals are
// recomputed from the rounded counts, so a reported perfect match is
// exact in integer arithmetic.
package infer

import "errors"

// Sentinel errors for event-count inference.
var (
	// ErrUnknownMethod is returned for an unrecognized inference method
	// name.
	ErrUnknownMethod = errors.New("unknown inference method")

	// ErrNoTransitions is returned when a series inference is requested
	// over an empty delta list.
	ErrNoTransitions = errors.New("no transitions to infer")
)
