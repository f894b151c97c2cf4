// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package infer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/amsharma23/mitodyn/services/dynamics/events"
	"github.com/amsharma23/mitodyn/services/dynamics/topology"
)

// Method selects the inference objective.
type Method string

const (
	// MethodMinimizeTotal finds the smallest total event count
	// consistent with the aggregate deltas.
	MethodMinimizeTotal Method = "minimize_total"

	// MethodMinimizeDiscrepancy finds counts consistent with the
	// aggregate deltas that stay closest to the detected counts.
	MethodMinimizeDiscrepancy Method = "minimize_discrepancy"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodMinimizeTotal, MethodMinimizeDiscrepancy:
		return Method(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMethod)
}

const simplexTol = 1e-10

// effectMatrix returns the 2 x NumCategories effect matrix A with the
// tips row first. A[i][j] is the delta category j causes on metric i.
func effectMatrix() *mat.Dense {
	data := make([]float64, 2*int(events.NumCategories))
	for c := events.Category(0); c < events.NumCategories; c++ {
		dt, dj := c.Effect()
		data[int(c)] = float64(dt)
		data[int(events.NumCategories)+int(c)] = float64(dj)
	}
	return mat.NewDense(2, int(events.NumCategories), data)
}

// Result is the inferred event-count vector for one transition.
type Result struct {
	TimePoint1 int
	TimePoint2 int
	Method     Method

	// Counts is the inferred per-category event count.
	Counts events.Summary

	// ResidualTips and ResidualJunctions are the absolute integer
	// residuals |observed - A * Counts|, recomputed after rounding.
	ResidualTips      int
	ResidualJunctions int

	// PerfectMatch reports both residuals being zero.
	PerfectMatch bool

	// Fallback reports that the primary solver failed and the fallback
	// produced the counts.
	Fallback bool
}

// Inferrer estimates event counts from aggregate deltas.
type Inferrer struct {
	logger *slog.Logger
}

// New builds an Inferrer. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Inferrer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inferrer{logger: logger}
}

// InferTransition infers the event counts behind one transition's
// aggregate change. The prior is only consulted by
// MethodMinimizeDiscrepancy; pass the transition's detected counts.
func (inf *Inferrer) InferTransition(deltaTips, deltaJunctions int, prior events.Summary, method Method) (Result, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return Result{}, err
	}

	b := [2]float64{float64(deltaTips), float64(deltaJunctions)}

	var (
		solution []float64
		fallback bool
	)
	switch method {
	case MethodMinimizeTotal:
		x, err := solveMinTotal(b)
		if err != nil {
			inf.logger.Debug("simplex failed, using least squares",
				"delta_tips", deltaTips, "delta_junctions", deltaJunctions, "error", err)
			x = solveLeastSquares(b)
			fallback = true
		}
		solution = x
	case MethodMinimizeDiscrepancy:
		x, ok := solveMinDiscrepancy(b, prior)
		if !ok {
			inf.logger.Debug("active-set solve failed, keeping detected counts",
				"delta_tips", deltaTips, "delta_junctions", deltaJunctions)
			x = summaryToVector(prior)
			fallback = true
		}
		solution = x
	}

	r := Result{Method: method, Fallback: fallback}
	r.Counts = roundCounts(solution)
	expTips, expJunctions := r.Counts.Expected()
	r.ResidualTips = intAbs(deltaTips - expTips)
	r.ResidualJunctions = intAbs(deltaJunctions - expJunctions)
	r.PerfectMatch = r.ResidualTips == 0 && r.ResidualJunctions == 0
	return r, nil
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// InferSeries infers counts for every transition. Priors for
// MethodMinimizeDiscrepancy are the per-transition detected counts; a
// nil classification result means empty priors.
func (inf *Inferrer) InferSeries(ctx context.Context, deltas []topology.Delta, detected *events.SeriesResult, method Method) ([]Result, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if len(deltas) == 0 {
		return nil, ErrNoTransitions
	}

	ctx, span := startSeriesSpan(ctx, method, len(deltas))
	defer span.End()

	priors := make(map[[2]int]events.Summary)
	if detected != nil {
		for _, t := range detected.Transitions {
			priors[[2]int{t.TimePoint1, t.TimePoint2}] = t.Summary
		}
	}

	out := make([]Result, 0, len(deltas))
	for _, d := range deltas {
		prior := priors[[2]int{d.TimePoint1, d.TimePoint2}]
		r, err := inf.InferTransition(d.DeltaTips, d.DeltaJunctions, prior, method)
		if err != nil {
			return nil, err
		}
		r.TimePoint1 = d.TimePoint1
		r.TimePoint2 = d.TimePoint2
		recordInference(ctx, r)
		if !r.PerfectMatch {
			inf.logger.Debug("inference residual",
				"time_point_1", d.TimePoint1,
				"time_point_2", d.TimePoint2,
				"residual_tips", r.ResidualTips,
				"residual_junctions", r.ResidualJunctions,
			)
		}
		out = append(out, r)
	}
	return out, nil
}

// solveMinTotal solves min 1'v subject to Av = b, v >= 0.
func solveMinTotal(b [2]float64) ([]float64, error) {
	n := int(events.NumCategories)
	c := make([]float64, n)
	for i := range c {
		c[i] = 1
	}
	_, x, err := lp.Simplex(c, effectMatrix(), b[:], simplexTol, nil)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// solveLeastSquares returns the minimum-norm least-squares solution of
// Av = b via the SVD pseudoinverse, with negatives clipped to zero.
func solveLeastSquares(b [2]float64) []float64 {
	a := effectMatrix()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return make([]float64, int(events.NumCategories))
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	// x = V * pinv(S) * U' * b
	y := make([]float64, len(values))
	for i, s := range values {
		if s <= simplexTol {
			continue
		}
		dot := u.At(0, i)*b[0] + u.At(1, i)*b[1]
		y[i] = dot / s
	}

	n := int(events.NumCategories)
	x := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for i := range y {
			sum += v.At(j, i) * y[i]
		}
		x[j] = math.Max(sum, 0)
	}
	return x
}

// solveMinDiscrepancy solves min ||v - p||^2 subject to Av = b, v >= 0
// with a small active-set iteration. Components violating the bound are
// fixed at zero one at a time; with six variables the loop terminates
// in at most six drops.
func solveMinDiscrepancy(b [2]float64, prior events.Summary) ([]float64, bool) {
	n := int(events.NumCategories)
	a := effectMatrix()
	p := summaryToVector(prior)

	free := make([]int, n)
	for i := range free {
		free[i] = i
	}

	for len(free) > 0 {
		// Equality-constrained minimizer over the free set:
		// v_F = p_F + A_F' * lambda with (A_F A_F') lambda = b - A_F p_F.
		var m [2][2]float64
		var r [2]float64
		for row := 0; row < 2; row++ {
			r[row] = b[row]
			for _, j := range free {
				r[row] -= a.At(row, j) * p[j]
			}
			for col := 0; col < 2; col++ {
				for _, j := range free {
					m[row][col] += a.At(row, j) * a.At(col, j)
				}
			}
		}

		det := m[0][0]*m[1][1] - m[0][1]*m[1][0]
		if math.Abs(det) <= simplexTol {
			return nil, false
		}
		lambda0 := (r[0]*m[1][1] - r[1]*m[0][1]) / det
		lambda1 := (m[0][0]*r[1] - m[1][0]*r[0]) / det

		v := make([]float64, n)
		worst, worstIdx := 0.0, -1
		for k, j := range free {
			v[j] = p[j] + a.At(0, j)*lambda0 + a.At(1, j)*lambda1
			if v[j] < worst {
				worst = v[j]
				worstIdx = k
			}
		}

		if worst >= -simplexTol {
			for j := range v {
				if v[j] < 0 {
					v[j] = 0
				}
			}
			return v, true
		}
		free = append(free[:worstIdx], free[worstIdx+1:]...)
	}
	return nil, false
}

func summaryToVector(s events.Summary) []float64 {
	out := make([]float64, int(events.NumCategories))
	for i := range out {
		out[i] = float64(s[i])
	}
	return out
}

// roundCounts rounds a solution vector to nonnegative integer counts.
func roundCounts(x []float64) events.Summary {
	var s events.Summary
	for i := range s {
		if i < len(x) && x[i] > 0 {
			s[i] = int(math.Round(x[i]))
		}
	}
	return s
}
