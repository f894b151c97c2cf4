// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package match

import (
	"math"
	"math/rand"
	"testing"

	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameAt(tp int, positions ...[3]float64) *frametable.Frame {
	nodes := make([]frametable.Node, len(positions))
	for i, p := range positions {
		nodes[i] = frametable.Node{
			TimePoint: tp,
			ID:        int64(i + 1),
			Position:  p,
			Adjacency: []int64{},
		}
	}
	return frametable.NewFrame(tp, nodes)
}

func TestDistanceSymmetry(t *testing.T) {
	m := New(2.0, 2.6363)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := [3]float64{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
		b := [3]float64{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
		assert.InDelta(t, m.Distance(a, b), m.Distance(b, a), 1e-12)
	}
}

func TestDistanceAppliesZScale(t *testing.T) {
	m := New(10, 3)
	d := m.Distance([3]float64{0, 0, 0}, [3]float64{0, 0, 1})
	assert.InDelta(t, 3.0, d, 1e-12)

	d = m.Distance([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	assert.InDelta(t, math.Sqrt(1+1+9), d, 1e-12)
}

func TestMatchThresholdInclusive(t *testing.T) {
	f1 := frameAt(1, [3]float64{0, 0, 0})
	f2 := frameAt(2, [3]float64{2, 0, 0}, [3]float64{2.0001, 0, 0})

	rel := New(2.0, 1).Match(f1, f2)
	require.Contains(t, rel, 0)
	// Exactly at threshold is a match; just beyond is not.
	assert.Equal(t, []int{0}, rel[0])
}

func TestMatchIsOneToMany(t *testing.T) {
	f1 := frameAt(1, [3]float64{0, 0, 0})
	f2 := frameAt(2, [3]float64{0.5, 0, 0}, [3]float64{0, 0.5, 0}, [3]float64{9, 9, 9})

	rel := New(1.0, 1).Match(f1, f2)
	require.Contains(t, rel, 0)
	assert.ElementsMatch(t, []int{0, 1}, rel[0])

	matched := rel.MatchedT2()
	assert.True(t, matched[0])
	assert.True(t, matched[1])
	assert.False(t, matched[2])
}

func TestMatchAllPairsWithinThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var p1, p2 [][3]float64
	for i := 0; i < 30; i++ {
		p1 = append(p1, [3]float64{rng.Float64() * 5, rng.Float64() * 5, rng.Float64() * 5})
		p2 = append(p2, [3]float64{rng.Float64() * 5, rng.Float64() * 5, rng.Float64() * 5})
	}
	f1 := frameAt(1, p1...)
	f2 := frameAt(2, p2...)

	m := New(1.5, 2.0)
	rel := m.Match(f1, f2)

	// Every included pair is within threshold.
	for i, hits := range rel {
		for _, j := range hits {
			assert.LessOrEqual(t, m.Distance(p1[i], p2[j]), m.Threshold)
		}
	}
	// No qualifying pair is omitted.
	for i := range p1 {
		for j := range p2 {
			if m.Distance(p1[i], p2[j]) <= m.Threshold {
				assert.Contains(t, rel[i], j, "pair (%d,%d) missing", i, j)
			}
		}
	}
}

func TestMatchEmptyFrames(t *testing.T) {
	empty := frameAt(1)
	full := frameAt(2, [3]float64{0, 0, 0})

	assert.Empty(t, New(2, 1).Match(empty, full))
	assert.Empty(t, New(2, 1).Match(full, empty))
	assert.Empty(t, New(2, 1).Match(nil, full))
}

func TestZScaleFromResolutions(t *testing.T) {
	assert.InDelta(t, 0.29/0.11, DefaultZScale(), 1e-12)
	assert.InDelta(t, 2.0, ZScaleFromResolutions(0.5, 1.0), 1e-12)
	assert.InDelta(t, 1.0, ZScaleFromResolutions(0, 1.0), 1e-12)
}
