// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import "github.com/amsharma23/mitodyn/services/dynamics/frametable"

// Temporal-persistence validation.
//
// With a persistence window w > 1 and the full series available, a node
// about to disappear must have been trackable (some node within the
// match threshold of its position) in every series frame among the w-1
// frames strictly before t1, and an appearing node must remain trackable
// in every of the w frames after t2. Candidates built on transient
// detections are discarded.
//
// Windows truncated by the series boundary check only the frames that
// exist; a node disappearing at the first frame has no history to fail.

// persistenceEnabled reports whether the classifier performs
// persistence checks.
func (c *Classifier) persistenceEnabled() bool {
	return c.cfg.PersistenceWindow > 1 && c.series != nil
}

// presentIn reports whether frame f holds any node within the match
// threshold of pos.
func (c *Classifier) presentIn(f *frametable.Frame, pos [3]float64) bool {
	for i := range f.Nodes {
		if c.matcher.Distance(pos, f.Nodes[i].Position) <= c.matcher.Threshold {
			return true
		}
	}
	return false
}

// persistsBefore checks presence in the w-1 series frames strictly
// before t1.
func (c *Classifier) persistsBefore(t1 int, pos [3]float64) bool {
	if !c.persistenceEnabled() {
		return true
	}

	tps := c.series.TimePoints()
	idx := indexOf(tps, t1)
	if idx < 0 {
		return true
	}

	checked := 0
	for i := idx - 1; i >= 0 && checked < c.cfg.PersistenceWindow-1; i-- {
		checked++
		frame, ok := c.series.Frame(tps[i])
		if !ok {
			continue
		}
		if !c.presentIn(frame, pos) {
			return false
		}
	}
	return true
}

// persistsAfter checks presence in the w series frames after t2.
func (c *Classifier) persistsAfter(t2 int, pos [3]float64) bool {
	if !c.persistenceEnabled() {
		return true
	}

	tps := c.series.TimePoints()
	idx := indexOf(tps, t2)
	if idx < 0 {
		return true
	}

	checked := 0
	for i := idx + 1; i < len(tps) && checked < c.cfg.PersistenceWindow; i++ {
		checked++
		frame, ok := c.series.Frame(tps[i])
		if !ok {
			continue
		}
		if !c.presentIn(frame, pos) {
			return false
		}
	}
	return true
}

func indexOf(sorted []int, v int) int {
	for i, x := range sorted {
		if x == v {
			return i
		}
	}
	return -1
}
