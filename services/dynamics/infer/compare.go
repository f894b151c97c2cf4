// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package infer

import "github.com/amsharma23/mitodyn/services/dynamics/events"

// Comparison contrasts detected and inferred counts for one category.
type Comparison struct {
	Category events.Category
	Detected int
	Inferred int

	// PercentDifference is 100 * (Inferred - Detected) / Detected.
	// Nil when nothing was detected, since the ratio is undefined.
	PercentDifference *float64
}

// Compare builds per-category comparisons between detected counts and
// inferred counts, in category order.
func Compare(detected, inferred events.Summary) []Comparison {
	out := make([]Comparison, 0, int(events.NumCategories))
	for c := events.Category(0); c < events.NumCategories; c++ {
		cmp := Comparison{
			Category: c,
			Detected: detected.Count(c),
			Inferred: inferred.Count(c),
		}
		if cmp.Detected != 0 {
			pd := 100 * float64(cmp.Inferred-cmp.Detected) / float64(cmp.Detected)
			cmp.PercentDifference = &pd
		}
		out = append(out, cmp)
	}
	return out
}

// TotalCounts sums the inferred counts of a result list.
func TotalCounts(results []Result) events.Summary {
	var s events.Summary
	for _, r := range results {
		s.Add(r.Counts)
	}
	return s
}
