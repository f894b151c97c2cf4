// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package match computes the spatial proximity relation between two
// frames of a skeleton time series.
//
// Matching is one-to-many: every node of the earlier frame is related
// to all nodes of the later frame within a distance threshold. It is
// NOT a bipartite assignment; a t2 node may be claimed by several t1
// nodes, and classification downstream derives the one-to-one subset.
//
// Distances are anisotropic: the z coordinate is scaled by the ratio of
// through-depth to in-plane sampling intervals before the Euclidean
// norm is taken.
package match

import (
	"math"

	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
)

// Default physical voxel resolutions of the imaging setup, in microns.
// The default z scale is their ratio.
const (
	DefaultXYResolution = 0.11
	DefaultZResolution  = 0.29
)

// DefaultZScale returns the anisotropy factor derived from the default
// physical resolutions.
func DefaultZScale() float64 {
	return ZScaleFromResolutions(DefaultXYResolution, DefaultZResolution)
}

// ZScaleFromResolutions derives the z anisotropy factor from physical
// voxel resolutions. A non-positive in-plane resolution yields 1.
func ZScaleFromResolutions(xyResolution, zResolution float64) float64 {
	if xyResolution <= 0 {
		return 1
	}
	return zResolution / xyResolution
}

// Relation maps a t1 node index to the t2 node indices within threshold.
// Indices refer to positions in the frames' Nodes slices. A t1 index
// with no matches is absent from the map ("disappeared"); a t2 index
// referenced by no entry has "appeared".
type Relation map[int][]int

// MatchedT2 returns the set of t2 indices referenced by any entry.
func (r Relation) MatchedT2() map[int]bool {
	out := make(map[int]bool)
	for _, list := range r {
		for _, j := range list {
			out[j] = true
		}
	}
	return out
}

// Matcher computes scaled-distance proximity relations.
type Matcher struct {
	// Threshold is the inclusive match radius in scaled voxel units.
	Threshold float64

	// ZScale multiplies z coordinates before the Euclidean norm.
	ZScale float64
}

// New returns a Matcher. A non-positive zScale is replaced by 1.
func New(threshold, zScale float64) Matcher {
	if zScale <= 0 {
		zScale = 1
	}
	return Matcher{Threshold: threshold, ZScale: zScale}
}

// Distance returns the z-scaled Euclidean distance between two positions.
// It is symmetric in its arguments.
func (m Matcher) Distance(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := (a[2] - b[2]) * m.ZScale
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Match returns the one-to-many relation from f1 nodes to f2 nodes
// within Threshold (inclusive). Either frame being empty yields an
// empty relation.
func (m Matcher) Match(f1, f2 *frametable.Frame) Relation {
	rel := make(Relation)
	if f1 == nil || f2 == nil || f1.Empty() || f2.Empty() {
		return rel
	}

	for i := range f1.Nodes {
		var hits []int
		for j := range f2.Nodes {
			if m.Distance(f1.Nodes[i].Position, f2.Nodes[j].Position) <= m.Threshold {
				hits = append(hits, j)
			}
		}
		if len(hits) > 0 {
			rel[i] = hits
		}
	}
	return rel
}
