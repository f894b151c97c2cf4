// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
)

// testConfig disables persistence so single-transition behavior is
// under test.
func testConfig() Config {
	return Config{DistanceThreshold: 1.0, ZScale: 1.0, PersistenceWindow: 1}
}

func node(id int64, pos [3]float64, adj ...int64) frametable.Node {
	return frametable.Node{ID: id, Position: pos, Adjacency: adj}
}

func fptr(v float64) *float64 { return &v }

func TestClassifyTipEdgeFusion(t *testing.T) {
	// A tip touches an edge: the matched node goes from degree 1 to
	// degree 3 in place.
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{5, 5, 5}, 2),
		node(2, [3]float64{6.5, 5, 5}, 1, 3),
		node(3, [3]float64{8, 5, 5}, 2),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(1, [3]float64{5.2, 5, 5}, 2, 4, 5),
		node(2, [3]float64{6.5, 5, 5}, 1, 3),
		node(3, [3]float64{8, 5, 5}, 2),
		node(4, [3]float64{5.2, 6.3, 5}, 1),
		node(5, [3]float64{5.2, 3.7, 5}, 1),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	require.Len(t, out.Events[CategoryTipEdgeFusion], 1)
	ev := out.Events[CategoryTipEdgeFusion][0]
	assert.Equal(t, 1, ev.DegreeT1)
	assert.Equal(t, 3, ev.DegreeT2)
	assert.Equal(t, 0, ev.TimePoint1)
	assert.Equal(t, 1, ev.TimePoint2)
	assert.Equal(t, 1, out.Summary.Count(CategoryTipEdgeFusion))
	assert.Empty(t, out.Events[CategoryJunctionBreakage])
}

func TestClassifyMatchedOrderDeterministic(t *testing.T) {
	// Two independent fusion sites far apart in one transition. The
	// emitted order must follow t1 node order on every run, not map
	// iteration order.
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{5, 5, 5}, 2),
		node(2, [3]float64{6.5, 5, 5}, 1, 3),
		node(3, [3]float64{105, 5, 5}, 4),
		node(4, [3]float64{106.5, 5, 5}, 3, 5),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(1, [3]float64{5.2, 5, 5}, 2, 6, 7),
		node(2, [3]float64{6.5, 5, 5}, 1),
		node(3, [3]float64{105.2, 5, 5}, 4, 8, 9),
		node(4, [3]float64{106.5, 5, 5}, 3),
		node(6, [3]float64{5.2, 6.3, 5}, 1),
		node(7, [3]float64{5.2, 3.7, 5}, 1),
		node(8, [3]float64{105.2, 6.3, 5}, 1),
		node(9, [3]float64{105.2, 3.7, 5}, 1),
	})

	c := NewClassifier(testConfig(), nil)
	for run := 0; run < 50; run++ {
		out := c.Classify(f1, f2)
		require.Len(t, out.Events[CategoryTipEdgeFusion], 2)
		assert.Equal(t, [3]float64{5, 5, 5}, out.Events[CategoryTipEdgeFusion][0].PositionA)
		assert.Equal(t, [3]float64{105, 5, 5}, out.Events[CategoryTipEdgeFusion][1].PositionA)
	}
}

func TestClassifyJunctionBreakage(t *testing.T) {
	f1 := frametable.NewFrame(3, []frametable.Node{
		node(1, [3]float64{2, 2, 2}, 2, 3, 4),
		node(2, [3]float64{3.5, 2, 2}, 1),
		node(3, [3]float64{2, 3.5, 2}, 1),
		node(4, [3]float64{2, 2, 3.5}, 1),
	})
	f2 := frametable.NewFrame(4, []frametable.Node{
		node(1, [3]float64{2.1, 2, 2}, 3),
		node(3, [3]float64{2, 3.5, 2}, 1),
		node(4, [3]float64{2, 2, 3.5}, 1),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	require.Len(t, out.Events[CategoryJunctionBreakage], 1)
	ev := out.Events[CategoryJunctionBreakage][0]
	assert.Equal(t, 3, ev.DegreeT1)
	assert.Equal(t, 1, ev.DegreeT2)
}

func TestClassifyTipTipFusion(t *testing.T) {
	// Two tips within twice the threshold disappear together. The
	// distance is anisotropic: z separation is scaled.
	cfg := testConfig()
	cfg.ZScale = 0.5

	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{1, 1, 1}, 10),
		node(2, [3]float64{1, 1, 4}, 11),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(3, [3]float64{50, 50, 50}, 12),
	})

	out := NewClassifier(cfg, nil).Classify(f1, f2)

	require.Len(t, out.Events[CategoryTipTipFusion], 1)
	// |dz| = 3 scaled by 0.5
	assert.InDelta(t, 1.5, out.Events[CategoryTipTipFusion][0].Distance, 1e-12)
}

func TestClassifyTipTipFission(t *testing.T) {
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(9, [3]float64{50, 50, 50}, 8),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(1, [3]float64{1, 1, 1}, 10),
		node(2, [3]float64{2.5, 1, 1}, 11),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	require.Len(t, out.Events[CategoryTipTipFission], 1)
	assert.InDelta(t, 1.5, out.Events[CategoryTipTipFission][0].Distance, 1e-12)
}

func TestClassifyExtrusionRequiresAdjacency(t *testing.T) {
	build := func(adjacent bool) *frametable.Frame {
		junctionAdj := []int64{20, 21, 22}
		tipAdj := []int64{20}
		if adjacent {
			junctionAdj = []int64{1, 21, 22}
			tipAdj = []int64{2}
		}
		return frametable.NewFrame(1, []frametable.Node{
			node(1, [3]float64{1, 1, 1}, tipAdj...),
			node(2, [3]float64{1.5, 1, 1}, junctionAdj...),
		})
	}
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(9, [3]float64{50, 50, 50}, 8),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, build(true))
	require.Len(t, out.Events[CategoryExtrusion], 1)
	assert.InDelta(t, 0.5, out.Events[CategoryExtrusion][0].Distance, 1e-12)

	out = NewClassifier(testConfig(), nil).Classify(f1, build(false))
	assert.Empty(t, out.Events[CategoryExtrusion])
}

func TestClassifyRetraction(t *testing.T) {
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{1, 1, 1}, 2),
		node(2, [3]float64{1.5, 1, 1}, 1, 21, 22),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(9, [3]float64{50, 50, 50}, 8),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	require.Len(t, out.Events[CategoryRetraction], 1)
}

func TestClassifyStableDegreeNotClassified(t *testing.T) {
	// A matched junction that stays degree 3, even with a changed
	// neighbor set, is not an event.
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{2, 2, 2}, 2, 3, 4),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(1, [3]float64{2.1, 2, 2}, 5, 6, 7),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	assert.Equal(t, 0, out.Summary.Total())
}

func TestClassifySignGatingDiscards(t *testing.T) {
	// Negative convergence on the fused node vetoes tip-edge fusion.
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{5, 5, 5}, 2),
	})
	fused := node(1, [3]float64{5.2, 5, 5}, 2, 4, 5)
	fused.ConvergenceRaw = fptr(-0.4)
	f2 := frametable.NewFrame(1, []frametable.Node{fused})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)
	assert.Empty(t, out.Events[CategoryTipEdgeFusion])

	// Positive convergence passes.
	fused.ConvergenceRaw = fptr(0.4)
	f2 = frametable.NewFrame(1, []frametable.Node{fused})
	out = NewClassifier(testConfig(), nil).Classify(f1, f2)
	assert.Len(t, out.Events[CategoryTipEdgeFusion], 1)
}

func TestClassifyDoubleCountingPreserved(t *testing.T) {
	// Three mutually close disappearing tips produce all three pair
	// fusions; no exclusivity is enforced.
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{1, 1, 1}, 10),
		node(2, [3]float64{1.5, 1, 1}, 11),
		node(3, [3]float64{1, 1.5, 1}, 12),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(9, [3]float64{50, 50, 50}, 8),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	assert.Len(t, out.Events[CategoryTipTipFusion], 3)
}

func TestClassifyCensus(t *testing.T) {
	f1 := frametable.NewFrame(0, []frametable.Node{
		node(1, [3]float64{1, 1, 1}, 2, 3),
		node(2, [3]float64{9, 9, 9}, 1),
	})
	f2 := frametable.NewFrame(1, []frametable.Node{
		node(1, [3]float64{1.1, 1, 1}, 2, 3),
		node(5, [3]float64{20, 20, 20}, 6, 7),
	})

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	require.Len(t, out.Disappeared, 1)
	assert.Equal(t, 1, out.Disappeared[0].Degree)
	assert.Equal(t, 0, out.Disappeared[0].TimePoint)
	require.Len(t, out.Appeared, 1)
	assert.Equal(t, 2, out.Appeared[0].Degree)
	assert.Equal(t, 1, out.Appeared[0].TimePoint)
}

func TestClassifyEmptyFrames(t *testing.T) {
	f1 := frametable.NewFrame(0, nil)
	f2 := frametable.NewFrame(1, nil)

	out := NewClassifier(testConfig(), nil).Classify(f1, f2)

	assert.Equal(t, 0, out.Summary.Total())
	assert.Empty(t, out.Appeared)
	assert.Empty(t, out.Disappeared)
}
