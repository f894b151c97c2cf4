// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"sort"

	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
	"github.com/amsharma23/mitodyn/services/dynamics/match"
)

// Config controls event classification.
type Config struct {
	// DistanceThreshold is the spatial match radius in scaled voxel
	// units. Tip-tip pairings use twice this radius.
	DistanceThreshold float64

	// ZScale is the anisotropy factor applied to z coordinates.
	ZScale float64

	// PersistenceWindow is the number of frames over which a node must
	// be confirmed before its appearance/disappearance is trusted.
	// 1 disables persistence checking.
	PersistenceWindow int
}

// Classifier detects remodeling events for one transition at a time.
//
// The series reference is optional; it is only consulted for
// persistence validation and never mutated.
type Classifier struct {
	cfg     Config
	matcher match.Matcher
	series  *frametable.FrameTable
}

// NewClassifier builds a Classifier. Pass the full series to enable
// persistence validation with Config.PersistenceWindow > 1; pass nil
// for single-transition use.
func NewClassifier(cfg Config, series *frametable.FrameTable) *Classifier {
	return &Classifier{
		cfg:     cfg,
		matcher: match.New(cfg.DistanceThreshold, cfg.ZScale),
		series:  series,
	}
}

// Classify detects the six event categories between f1 and f2.
//
// Empty frames produce empty event lists, not an error. The result is a
// pure function of the two frames and the read-only series lookups.
func (c *Classifier) Classify(f1, f2 *frametable.Frame) *TransitionEvents {
	out := &TransitionEvents{
		TimePoint1: f1.TimePoint,
		TimePoint2: f2.TimePoint,
	}

	rel := c.matcher.Match(f1, f2)
	matchedT2 := rel.MatchedT2()

	c.classifyMatched(f1, f2, rel, out)

	disappeared := unmatchedT1(f1, rel)
	appeared := unmatchedT2(f2, matchedT2)

	c.census(f1, f2, disappeared, appeared, out)
	c.classifyUnmatched(f1, f2, disappeared, appeared, out)

	for cat := Category(0); cat < NumCategories; cat++ {
		out.Summary[cat] = len(out.Events[cat])
	}
	return out
}

// classifyMatched handles the strict degree-class transitions of
// one-to-one matched pairs. A matched pair whose degrees stay within
// the same class (including 3 -> 3 with a changed neighbor set) is not
// classified.
func (c *Classifier) classifyMatched(f1, f2 *frametable.Frame, rel match.Relation, out *TransitionEvents) {
	// The relation is a map; walk t1 indices in node order so event
	// output is reproducible across runs.
	indices := make([]int, 0, len(rel))
	for i := range rel {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		hits := rel[i]
		if len(hits) != 1 {
			continue
		}
		n1 := &f1.Nodes[i]
		n2 := &f2.Nodes[hits[0]]

		switch {
		case n1.Degree() == 1 && n2.Degree() >= 3:
			if !gateTipEdgeFusion(n2) {
				continue
			}
			if !c.persistsBefore(f1.TimePoint, n1.Position) || !c.persistsAfter(f2.TimePoint, n2.Position) {
				continue
			}
			out.Events[CategoryTipEdgeFusion] = append(out.Events[CategoryTipEdgeFusion], Event{
				Category:   CategoryTipEdgeFusion,
				TimePoint1: f1.TimePoint,
				TimePoint2: f2.TimePoint,
				PositionA:  n1.Position,
				PositionB:  n2.Position,
				DegreeT1:   n1.Degree(),
				DegreeT2:   n2.Degree(),
				SignalA:    n2.ConvergenceRaw,
			})

		case n1.Degree() >= 3 && n2.Degree() == 1:
			if !gateJunctionBreakage(n1) {
				continue
			}
			if !c.persistsBefore(f1.TimePoint, n1.Position) || !c.persistsAfter(f2.TimePoint, n2.Position) {
				continue
			}
			out.Events[CategoryJunctionBreakage] = append(out.Events[CategoryJunctionBreakage], Event{
				Category:   CategoryJunctionBreakage,
				TimePoint1: f1.TimePoint,
				TimePoint2: f2.TimePoint,
				PositionA:  n1.Position,
				PositionB:  n2.Position,
				DegreeT1:   n1.Degree(),
				DegreeT2:   n2.Degree(),
				SignalA:    n1.DivergenceRaw,
			})
		}
	}
}

// classifyUnmatched pairs up disappeared/appeared tips and junctions.
// Pools are small (unmatched degree-1/degree-3 nodes only), so full
// pairwise enumeration is fine. Nodes are deliberately allowed to
// appear in more than one pairing; see the package doc.
func (c *Classifier) classifyUnmatched(f1, f2 *frametable.Frame, disappeared, appeared []int, out *TransitionEvents) {
	disappearedTips := filterDegree(f1, disappeared, 1)
	appearedTips := filterDegree(f2, appeared, 1)
	disappearedJunctions := filterDegree(f1, disappeared, 3)
	appearedJunctions := filterDegree(f2, appeared, 3)

	pairRadius := 2 * c.cfg.DistanceThreshold

	// Tip-tip fusion: two nearby tips vanish together.
	for a := 0; a < len(disappearedTips); a++ {
		for b := a + 1; b < len(disappearedTips); b++ {
			t1 := &f1.Nodes[disappearedTips[a]]
			t2 := &f1.Nodes[disappearedTips[b]]
			d := c.matcher.Distance(t1.Position, t2.Position)
			if d > pairRadius {
				continue
			}
			if !gateTipTipFusion(t1, t2) {
				continue
			}
			if !c.persistsBefore(f1.TimePoint, t1.Position) || !c.persistsBefore(f1.TimePoint, t2.Position) {
				continue
			}
			out.Events[CategoryTipTipFusion] = append(out.Events[CategoryTipTipFusion], Event{
				Category:   CategoryTipTipFusion,
				TimePoint1: f1.TimePoint,
				TimePoint2: f2.TimePoint,
				PositionA:  t1.Position,
				PositionB:  t2.Position,
				Distance:   d,
				SignalA:    t1.ConvergenceRaw,
				SignalB:    t2.ConvergenceRaw,
			})
		}
	}

	// Tip-tip fission: two nearby tips appear together.
	for a := 0; a < len(appearedTips); a++ {
		for b := a + 1; b < len(appearedTips); b++ {
			t1 := &f2.Nodes[appearedTips[a]]
			t2 := &f2.Nodes[appearedTips[b]]
			d := c.matcher.Distance(t1.Position, t2.Position)
			if d > pairRadius {
				continue
			}
			if !gateTipTipFission(t1, t2) {
				continue
			}
			if !c.persistsAfter(f2.TimePoint, t1.Position) || !c.persistsAfter(f2.TimePoint, t2.Position) {
				continue
			}
			out.Events[CategoryTipTipFission] = append(out.Events[CategoryTipTipFission], Event{
				Category:   CategoryTipTipFission,
				TimePoint1: f1.TimePoint,
				TimePoint2: f2.TimePoint,
				PositionA:  t1.Position,
				PositionB:  t2.Position,
				Distance:   d,
				SignalA:    t1.DivergenceRaw,
				SignalB:    t2.DivergenceRaw,
			})
		}
	}

	// Extrusion: an adjacent tip/junction pair appears. Only the
	// junction is persistence-checked; fresh high-velocity tips are
	// unreliable to track.
	for _, ti := range appearedTips {
		for _, ji := range appearedJunctions {
			tip := &f2.Nodes[ti]
			junction := &f2.Nodes[ji]
			d := c.matcher.Distance(tip.Position, junction.Position)
			if d > c.cfg.DistanceThreshold {
				continue
			}
			if !f2.Adjacent(tip.ID, junction.ID) {
				continue
			}
			if !gateExtrusion(tip, junction) {
				continue
			}
			if !c.persistsAfter(f2.TimePoint, junction.Position) {
				continue
			}
			out.Events[CategoryExtrusion] = append(out.Events[CategoryExtrusion], Event{
				Category:   CategoryExtrusion,
				TimePoint1: f1.TimePoint,
				TimePoint2: f2.TimePoint,
				PositionA:  tip.Position,
				PositionB:  junction.Position,
				Distance:   d,
				SignalA:    tip.DivergenceRaw,
				SignalB:    junction.DivergenceRaw,
			})
		}
	}

	// Retraction: an adjacent tip/junction pair disappears.
	for _, ti := range disappearedTips {
		for _, ji := range disappearedJunctions {
			tip := &f1.Nodes[ti]
			junction := &f1.Nodes[ji]
			d := c.matcher.Distance(tip.Position, junction.Position)
			if d > c.cfg.DistanceThreshold {
				continue
			}
			if !f1.Adjacent(tip.ID, junction.ID) {
				continue
			}
			if !gateRetraction(tip, junction) {
				continue
			}
			if !c.persistsBefore(f1.TimePoint, junction.Position) {
				continue
			}
			out.Events[CategoryRetraction] = append(out.Events[CategoryRetraction], Event{
				Category:   CategoryRetraction,
				TimePoint1: f1.TimePoint,
				TimePoint2: f2.TimePoint,
				PositionA:  tip.Position,
				PositionB:  junction.Position,
				Distance:   d,
				SignalA:    tip.ConvergenceRaw,
				SignalB:    junction.ConvergenceRaw,
			})
		}
	}
}

// census records all appeared/disappeared nodes regardless of degree.
func (c *Classifier) census(f1, f2 *frametable.Frame, disappeared, appeared []int, out *TransitionEvents) {
	for _, i := range disappeared {
		n := &f1.Nodes[i]
		out.Disappeared = append(out.Disappeared, NodeObservation{
			Position:  n.Position,
			Degree:    n.Degree(),
			TimePoint: f1.TimePoint,
		})
	}
	for _, i := range appeared {
		n := &f2.Nodes[i]
		out.Appeared = append(out.Appeared, NodeObservation{
			Position:  n.Position,
			Degree:    n.Degree(),
			TimePoint: f2.TimePoint,
		})
	}
}

// unmatchedT1 returns f1 node indices with no match, in index order.
func unmatchedT1(f1 *frametable.Frame, rel match.Relation) []int {
	var out []int
	for i := range f1.Nodes {
		if _, ok := rel[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// unmatchedT2 returns f2 node indices never referenced by the relation.
func unmatchedT2(f2 *frametable.Frame, matched map[int]bool) []int {
	var out []int
	for j := range f2.Nodes {
		if !matched[j] {
			out = append(out, j)
		}
	}
	return out
}

// filterDegree keeps indices whose node has exactly the given degree.
func filterDegree(f *frametable.Frame, indices []int, degree int) []int {
	var out []int
	for _, i := range indices {
		if f.Nodes[i].Degree() == degree {
			out = append(out, i)
		}
	}
	return out
}
