// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import "fmt"

// Category identifies one of the six remodeling event types.
type Category int

const (
	// CategoryTipEdgeFusion is a tip fusing onto an edge, turning a
	// degree-1 node into a junction.
	CategoryTipEdgeFusion Category = iota

	// CategoryJunctionBreakage is a junction breaking into an edge and
	// a tip, turning a degree->=3 node into a degree-1 node.
	CategoryJunctionBreakage

	// CategoryTipTipFusion is two tips meeting and forming an edge.
	CategoryTipTipFusion

	// CategoryTipTipFission is an edge splitting into two tips.
	CategoryTipTipFission

	// CategoryExtrusion is a new tip jutting out of an edge, creating a
	// junction and a tip.
	CategoryExtrusion

	// CategoryRetraction is the reverse of extrusion: a tip and its
	// junction withdraw into the edge.
	CategoryRetraction

	// NumCategories is the number of event categories (for array sizing).
	NumCategories
)

var categoryNames = map[Category]string{
	CategoryTipEdgeFusion:    "tip_edge_fusion",
	CategoryJunctionBreakage: "junction_breakage",
	CategoryTipTipFusion:     "tip_tip_fusion",
	CategoryTipTipFission:    "tip_tip_fission",
	CategoryExtrusion:        "extrusion",
	CategoryRetraction:       "retraction",
}

var categoryDisplayNames = map[Category]string{
	CategoryTipEdgeFusion:    "Tip-Edge Fusion",
	CategoryJunctionBreakage: "Junction Breakage",
	CategoryTipTipFusion:     "Tip-Tip Fusion",
	CategoryTipTipFission:    "Tip-Tip Fission",
	CategoryExtrusion:        "Extrusion",
	CategoryRetraction:       "Retraction",
}

// String returns the snake_case name used in tables and CSV columns.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// DisplayName returns the human-readable category name.
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return "Unknown"
}

// FileName returns the per-category event CSV file name.
func (c Category) FileName() string {
	return c.String() + "_events.csv"
}

// ParseCategory converts a snake_case name to a Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown event category %q", s)
}

// Categories returns all categories in canonical order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Effect returns the category's fixed aggregate topology signature:
// the change in tip count and junction count one such event causes.
// This is the single effect model shared by the reconciler and the
// topology-driven inference solvers.
func (c Category) Effect() (deltaTips, deltaJunctions int) {
	switch c {
	case CategoryTipEdgeFusion:
		return -1, +1
	case CategoryJunctionBreakage:
		return +1, -1
	case CategoryTipTipFusion:
		return -2, 0
	case CategoryTipTipFission:
		return +2, 0
	case CategoryExtrusion:
		return +1, +1
	case CategoryRetraction:
		return -1, -1
	default:
		return 0, 0
	}
}

// Event is one detected remodeling event.
//
// Field meaning varies by category:
//   - TipEdgeFusion, JunctionBreakage (matched-pair): PositionA/PositionB
//     are the node's positions at t1 and t2; DegreeT1/DegreeT2 carry the
//     degree transition.
//   - TipTipFusion, TipTipFission: PositionA/PositionB are the two tips;
//     Distance is their scaled separation.
//   - Extrusion, Retraction: PositionA is the tip, PositionB the junction;
//     Distance is their scaled separation.
type Event struct {
	Category   Category
	TimePoint1 int
	TimePoint2 int

	PositionA [3]float64
	PositionB [3]float64

	// DegreeT1/DegreeT2 are set for matched-pair categories.
	DegreeT1 int
	DegreeT2 int

	// Distance is set for unmatched-pair categories.
	Distance float64

	// SignalA/SignalB record the gating signal values consulted for the
	// participants, when the source table carried them.
	SignalA *float64
	SignalB *float64
}

// Summary is the per-category event count vector.
type Summary [NumCategories]int

// Inc increments the count for category c.
func (s *Summary) Inc(c Category) {
	if c >= 0 && c < NumCategories {
		s[c]++
	}
}

// Count returns the count for category c.
func (s Summary) Count(c Category) int {
	if c < 0 || c >= NumCategories {
		return 0
	}
	return s[c]
}

// Total returns the total event count across categories.
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Add accumulates another summary into s.
func (s *Summary) Add(other Summary) {
	for i := range s {
		s[i] += other[i]
	}
}

// Expected returns the aggregate (Δtips, Δjunctions) this many events of
// each category would cause, per the fixed effect signatures.
func (s Summary) Expected() (deltaTips, deltaJunctions int) {
	for c := Category(0); c < NumCategories; c++ {
		dt, dj := c.Effect()
		deltaTips += dt * s[c]
		deltaJunctions += dj * s[c]
	}
	return deltaTips, deltaJunctions
}

// NodeObservation is one appeared or disappeared node in the
// appearance/disappearance census of a transition.
type NodeObservation struct {
	Position  [3]float64
	Degree    int
	TimePoint int
}

// TransitionEvents is the classification result for one transition.
type TransitionEvents struct {
	TimePoint1 int
	TimePoint2 int

	// Events holds the detected events per category. A node is allowed
	// to participate in more than one event when it satisfies more than
	// one pairing heuristic; no cross-category deduplication is applied.
	Events [NumCategories][]Event

	// Summary is the per-category count for this transition.
	Summary Summary

	// Appeared and Disappeared are the unmatched-node census.
	Appeared    []NodeObservation
	Disappeared []NodeObservation
}
