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

// fusionSeries builds a four-frame series in which two tips fuse in
// the 2 -> 3 transition. tipsAtZero controls whether the tips already
// exist in the first frame.
func fusionSeries(tipsAtZero bool) *frametable.FrameTable {
	tipA := [3]float64{1, 1, 1}
	tipB := [3]float64{1.5, 1, 1}
	far := node(9, [3]float64{50, 50, 50}, 8)

	withTips := func(tp int) *frametable.Frame {
		return frametable.NewFrame(tp, []frametable.Node{
			node(1, tipA, 10),
			node(2, tipB, 11),
			far,
		})
	}
	without := func(tp int) *frametable.Frame {
		return frametable.NewFrame(tp, []frametable.Node{far})
	}

	frame0 := without(0)
	if tipsAtZero {
		frame0 = withTips(0)
	}
	return frametable.NewTableFromFrames([]*frametable.Frame{
		frame0, withTips(1), withTips(2), without(3),
	})
}

func TestPersistenceDiscardsTransientTips(t *testing.T) {
	cfg := testConfig()
	cfg.PersistenceWindow = 3

	// Tips only trackable in frames 1 and 2: their history fails the
	// window and the fusion candidate is discarded.
	series := fusionSeries(false)
	f1, _ := series.Frame(2)
	f2, _ := series.Frame(3)
	out := NewClassifier(cfg, series).Classify(f1, f2)
	assert.Empty(t, out.Events[CategoryTipTipFusion])

	// With full history the same transition yields the fusion.
	series = fusionSeries(true)
	f1, _ = series.Frame(2)
	f2, _ = series.Frame(3)
	out = NewClassifier(cfg, series).Classify(f1, f2)
	assert.Len(t, out.Events[CategoryTipTipFusion], 1)
}

// tipEdgeSeries builds a four-frame series whose 1 -> 2 transition is
// a tip-edge fusion. tipHistory and junctionFuture control whether the
// fusing tip is trackable before the transition and the new junction
// after it.
func tipEdgeSeries(tipHistory, junctionFuture bool) *frametable.FrameTable {
	far := node(9, [3]float64{50, 50, 50}, 8)

	frame0 := frametable.NewFrame(0, []frametable.Node{far})
	if tipHistory {
		frame0 = frametable.NewFrame(0, []frametable.Node{
			node(1, [3]float64{5, 5, 5}, 2),
			node(2, [3]float64{6.5, 5, 5}, 1),
			far,
		})
	}

	f1 := frametable.NewFrame(1, []frametable.Node{
		node(1, [3]float64{5, 5, 5}, 2),
		node(2, [3]float64{6.5, 5, 5}, 1, 3),
		node(3, [3]float64{8, 5, 5}, 2),
	})
	f2 := frametable.NewFrame(2, []frametable.Node{
		node(1, [3]float64{5.2, 5, 5}, 2, 4, 5),
		node(2, [3]float64{6.5, 5, 5}, 1, 3),
		node(3, [3]float64{8, 5, 5}, 2),
		node(4, [3]float64{5.2, 6.3, 5}, 1),
		node(5, [3]float64{5.2, 3.7, 5}, 1),
	})

	frame3 := frametable.NewFrame(3, []frametable.Node{far})
	if junctionFuture {
		frame3 = frametable.NewFrame(3, []frametable.Node{
			node(1, [3]float64{5.2, 5, 5}, 2, 4, 5),
			far,
		})
	}

	return frametable.NewTableFromFrames([]*frametable.Frame{frame0, f1, f2, frame3})
}

func TestPersistenceDiscardsTransientMatchedPairs(t *testing.T) {
	cfg := testConfig()
	cfg.PersistenceWindow = 3

	classify := func(series *frametable.FrameTable) *TransitionEvents {
		f1, _ := series.Frame(1)
		f2, _ := series.Frame(2)
		return NewClassifier(cfg, series).Classify(f1, f2)
	}

	// No tip trackable before the transition: discarded.
	out := classify(tipEdgeSeries(false, true))
	assert.Empty(t, out.Events[CategoryTipEdgeFusion])

	// The new junction is gone right after the transition: discarded.
	out = classify(tipEdgeSeries(true, false))
	assert.Empty(t, out.Events[CategoryTipEdgeFusion])

	// Both sides trackable: the fusion stands.
	out = classify(tipEdgeSeries(true, true))
	assert.Len(t, out.Events[CategoryTipEdgeFusion], 1)
}

func TestPersistenceDiscardsTransientBreakage(t *testing.T) {
	cfg := testConfig()
	cfg.PersistenceWindow = 2

	far := node(9, [3]float64{50, 50, 50}, 8)
	f1 := frametable.NewFrame(1, []frametable.Node{
		node(1, [3]float64{2, 2, 2}, 2, 3, 4),
		node(2, [3]float64{3.5, 2, 2}, 1),
		node(3, [3]float64{2, 3.5, 2}, 1),
		node(4, [3]float64{2, 2, 3.5}, 1),
	})
	f2 := frametable.NewFrame(2, []frametable.Node{
		node(1, [3]float64{2.1, 2, 2}, 3),
		node(3, [3]float64{2, 3.5, 2}, 1),
		node(4, [3]float64{2, 2, 3.5}, 1),
	})
	after := frametable.NewFrame(3, []frametable.Node{
		node(1, [3]float64{2.1, 2, 2}, 3),
		far,
	})

	// The breaking junction only exists at t1: discarded.
	series := frametable.NewTableFromFrames([]*frametable.Frame{
		frametable.NewFrame(0, []frametable.Node{far}),
		f1, f2, after,
	})
	out := NewClassifier(cfg, series).Classify(f1, f2)
	assert.Empty(t, out.Events[CategoryJunctionBreakage])

	// With one frame of junction history the breakage stands.
	series = frametable.NewTableFromFrames([]*frametable.Frame{
		frametable.NewFrame(0, []frametable.Node{node(1, [3]float64{2, 2, 2}, 2, 3, 4), far}),
		f1, f2, after,
	})
	out = NewClassifier(cfg, series).Classify(f1, f2)
	assert.Len(t, out.Events[CategoryJunctionBreakage], 1)
}

func TestPersistenceWindowOneDisablesChecks(t *testing.T) {
	cfg := testConfig()
	cfg.PersistenceWindow = 1

	series := fusionSeries(false)
	f1, _ := series.Frame(2)
	f2, _ := series.Frame(3)
	out := NewClassifier(cfg, series).Classify(f1, f2)

	assert.Len(t, out.Events[CategoryTipTipFusion], 1)
}

func TestPersistenceTruncatedWindowIsVacuous(t *testing.T) {
	cfg := testConfig()
	cfg.PersistenceWindow = 3

	// The 0 -> 1 transition has no history at all; a disappearance at
	// the series start must not be suppressed.
	tipA := [3]float64{1, 1, 1}
	tipB := [3]float64{1.5, 1, 1}
	far := node(9, [3]float64{50, 50, 50}, 8)
	series := frametable.NewTableFromFrames([]*frametable.Frame{
		frametable.NewFrame(0, []frametable.Node{node(1, tipA, 10), node(2, tipB, 11), far}),
		frametable.NewFrame(1, []frametable.Node{far}),
		frametable.NewFrame(2, []frametable.Node{far}),
	})

	f1, _ := series.Frame(0)
	f2, _ := series.Frame(1)
	out := NewClassifier(cfg, series).Classify(f1, f2)

	require.Len(t, out.Events[CategoryTipTipFusion], 1)
}
