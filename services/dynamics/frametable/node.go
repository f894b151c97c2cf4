// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frametable

import (
	"sort"
)

// Node is one skeleton junction or tip at one time point.
//
// Position is stored in voxel units as (x, y, z). Dynamics signals and
// component id are optional; nil means the source table did not carry
// the column (or the field was empty for this row).
type Node struct {
	// TimePoint is the frame this node belongs to.
	TimePoint int

	// ID is the node id, unique within a frame.
	ID int64

	// Position is (x, y, z) in voxel units.
	Position [3]float64

	// Adjacency lists neighbor node ids. Degree is always derived from
	// this slice, never from a stored column.
	Adjacency []int64

	// ConvergenceRaw is the optional convergent-motion signal.
	ConvergenceRaw *float64

	// DivergenceRaw is the optional divergent-motion signal.
	DivergenceRaw *float64

	// ComponentID is the optional connected-component label.
	ComponentID *int64
}

// Degree returns len(Adjacency). A node whose adjacency failed to parse
// has an empty list and degree 0.
func (n *Node) Degree() int {
	return len(n.Adjacency)
}

// IsTip reports whether the node is a branch endpoint (degree 1).
func (n *Node) IsTip() bool { return n.Degree() == 1 }

// IsJunction reports whether the node is a branch point (degree >= 3).
func (n *Node) IsJunction() bool { return n.Degree() >= 3 }

// Frame is all nodes sharing a time point.
type Frame struct {
	// TimePoint identifies the frame.
	TimePoint int

	// Nodes in load order. Index-addressable; the spatial match relation
	// refers to positions in this slice.
	Nodes []Node

	byID map[int64]int
}

// NewFrame builds a Frame and its node-id index.
func NewFrame(timePoint int, nodes []Node) *Frame {
	f := &Frame{
		TimePoint: timePoint,
		Nodes:     nodes,
		byID:      make(map[int64]int, len(nodes)),
	}
	for i := range nodes {
		f.byID[nodes[i].ID] = i
	}
	return f
}

// Len returns the number of nodes in the frame.
func (f *Frame) Len() int { return len(f.Nodes) }

// Empty reports whether the frame has no nodes.
func (f *Frame) Empty() bool { return len(f.Nodes) == 0 }

// Node returns the node with the given id, if present.
func (f *Frame) Node(id int64) (*Node, bool) {
	i, ok := f.byID[id]
	if !ok {
		return nil, false
	}
	return &f.Nodes[i], true
}

// Adjacent reports whether nodes a and b are graph neighbors in this
// frame. Adjacency lists are expected to be symmetric, but either
// direction is accepted.
func (f *Frame) Adjacent(a, b int64) bool {
	if na, ok := f.Node(a); ok {
		for _, id := range na.Adjacency {
			if id == b {
				return true
			}
		}
	}
	if nb, ok := f.Node(b); ok {
		for _, id := range nb.Adjacency {
			if id == a {
				return true
			}
		}
	}
	return false
}

// FrameTable is one loaded time series with O(1) frame lookup by
// time point, which the persistence checks rely on.
type FrameTable struct {
	frames     map[int]*Frame
	timePoints []int
}

// NewTable groups nodes by time point into frames. Time points are kept
// sorted ascending.
func NewTable(nodes []Node) *FrameTable {
	grouped := make(map[int][]Node)
	for _, n := range nodes {
		grouped[n.TimePoint] = append(grouped[n.TimePoint], n)
	}

	t := &FrameTable{frames: make(map[int]*Frame, len(grouped))}
	for tp, ns := range grouped {
		t.frames[tp] = NewFrame(tp, ns)
		t.timePoints = append(t.timePoints, tp)
	}
	sort.Ints(t.timePoints)
	return t
}

// NewTableFromFrames assembles a table from already-built frames.
func NewTableFromFrames(frames []*Frame) *FrameTable {
	t := &FrameTable{frames: make(map[int]*Frame, len(frames))}
	for _, f := range frames {
		t.frames[f.TimePoint] = f
		t.timePoints = append(t.timePoints, f.TimePoint)
	}
	sort.Ints(t.timePoints)
	return t
}

// TimePoints returns the sorted distinct time points.
func (t *FrameTable) TimePoints() []int {
	out := make([]int, len(t.timePoints))
	copy(out, t.timePoints)
	return out
}

// Frame returns the frame at the given time point.
func (t *FrameTable) Frame(timePoint int) (*Frame, bool) {
	f, ok := t.frames[timePoint]
	return f, ok
}

// Len returns the number of frames.
func (t *FrameTable) Len() int { return len(t.frames) }

// Empty reports whether the table holds no frames.
func (t *FrameTable) Empty() bool { return len(t.frames) == 0 }

// Transitions returns the ordered consecutive time-point pairs.
func (t *FrameTable) Transitions() [][2]int {
	if len(t.timePoints) < 2 {
		return nil
	}
	out := make([][2]int, 0, len(t.timePoints)-1)
	for i := 0; i < len(t.timePoints)-1; i++ {
		out = append(out, [2]int{t.timePoints[i], t.timePoints[i+1]})
	}
	return out
}

// NodeCount returns the total number of nodes across all frames.
func (t *FrameTable) NodeCount() int {
	total := 0
	for _, f := range t.frames {
		total += f.Len()
	}
	return total
}
