// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frametable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(tp int, id int64, x, y, z float64, adjacency ...int64) Node {
	if adjacency == nil {
		adjacency = []int64{}
	}
	return Node{
		TimePoint: tp,
		ID:        id,
		Position:  [3]float64{x, y, z},
		Adjacency: adjacency,
	}
}

func TestDegreeDerivedFromAdjacency(t *testing.T) {
	n := node(1, 7, 0, 0, 0, 3, 9, 12)
	assert.Equal(t, 3, n.Degree())
	assert.True(t, n.IsJunction())
	assert.False(t, n.IsTip())

	tip := node(1, 8, 0, 0, 0, 7)
	assert.Equal(t, 1, tip.Degree())
	assert.True(t, tip.IsTip())

	degraded := node(1, 9, 0, 0, 0)
	assert.Equal(t, 0, degraded.Degree())
	assert.False(t, degraded.IsTip())
	assert.False(t, degraded.IsJunction())
}

func TestFrameLookupAndAdjacency(t *testing.T) {
	f := NewFrame(1, []Node{
		node(1, 1, 0, 0, 0, 2),
		node(1, 2, 1, 0, 0, 1, 3),
		node(1, 3, 2, 0, 0, 2),
	})

	got, ok := f.Node(2)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)

	_, ok = f.Node(99)
	assert.False(t, ok)

	assert.True(t, f.Adjacent(1, 2))
	assert.True(t, f.Adjacent(2, 1))
	assert.False(t, f.Adjacent(1, 3))
}

func TestAdjacentToleratesAsymmetricLists(t *testing.T) {
	// Node 2's list omits node 1; the reverse direction still counts.
	f := NewFrame(1, []Node{
		node(1, 1, 0, 0, 0, 2),
		node(1, 2, 1, 0, 0),
	})
	assert.True(t, f.Adjacent(1, 2))
	assert.True(t, f.Adjacent(2, 1))
}

func TestTableTimePointsSortedAndTransitions(t *testing.T) {
	table := NewTable([]Node{
		node(3, 1, 0, 0, 0),
		node(1, 1, 0, 0, 0),
		node(2, 1, 0, 0, 0),
	})

	assert.Equal(t, []int{1, 2, 3}, table.TimePoints())
	assert.Equal(t, [][2]int{{1, 2}, {2, 3}}, table.Transitions())
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 3, table.NodeCount())

	f, ok := table.Frame(2)
	require.True(t, ok)
	assert.Equal(t, 2, f.TimePoint)
}

func TestEmptyTable(t *testing.T) {
	table := NewTable(nil)
	assert.True(t, table.Empty())
	assert.Nil(t, table.Transitions())
}
