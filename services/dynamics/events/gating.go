// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import "github.com/amsharma23/mitodyn/services/dynamics/frametable"

// Dynamics-signal gating.
//
// Fusion-type categories (tip-edge fusion, tip-tip fusion, retraction)
// arise from convergent motion and require a positive convergence signal
// on the consulted participant(s); divergence-type categories (junction
// breakage, tip-tip fission, extrusion) require positive divergence.
//
// Gating only applies where the required signal is present: a nil signal
// on a consulted node does not veto the candidate, so classification
// degrades gracefully on tables without dynamics columns. A candidate
// whose available signal has the wrong sign is discarded, not flagged.

// allPositive reports whether every non-nil value is > 0. All-nil passes.
func allPositive(vals ...*float64) bool {
	for _, v := range vals {
		if v != nil && *v <= 0 {
			return false
		}
	}
	return true
}

// anyPositive reports whether some non-nil value is > 0. All-nil passes.
func anyPositive(vals ...*float64) bool {
	sawSignal := false
	for _, v := range vals {
		if v == nil {
			continue
		}
		sawSignal = true
		if *v > 0 {
			return true
		}
	}
	return !sawSignal
}

// gateTipEdgeFusion consults the convergence signal of the resulting
// junction at t2.
func gateTipEdgeFusion(t2Node *frametable.Node) bool {
	return allPositive(t2Node.ConvergenceRaw)
}

// gateJunctionBreakage consults the divergence signal of the junction
// at t1.
func gateJunctionBreakage(t1Node *frametable.Node) bool {
	return allPositive(t1Node.DivergenceRaw)
}

// gateTipTipFusion requires convergence on both disappearing tips.
func gateTipTipFusion(tip1, tip2 *frametable.Node) bool {
	return allPositive(tip1.ConvergenceRaw, tip2.ConvergenceRaw)
}

// gateTipTipFission requires divergence on either appearing tip.
func gateTipTipFission(tip1, tip2 *frametable.Node) bool {
	return anyPositive(tip1.DivergenceRaw, tip2.DivergenceRaw)
}

// gateExtrusion requires divergence on the appearing tip or junction.
func gateExtrusion(tip, junction *frametable.Node) bool {
	return anyPositive(tip.DivergenceRaw, junction.DivergenceRaw)
}

// gateRetraction requires convergence on the disappearing tip or junction.
func gateRetraction(tip, junction *frametable.Node) bool {
	return anyPositive(tip.ConvergenceRaw, junction.ConvergenceRaw)
}
