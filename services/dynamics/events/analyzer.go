// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amsharma23/mitodyn/services/dynamics/frametable"
)

// maxParallelTransitions caps classification concurrency.
const maxParallelTransitions = 8

// SeriesResult holds the classification output for a whole series.
type SeriesResult struct {
	// Transitions holds one entry per consecutive frame pair, in
	// time-point order.
	Transitions []*TransitionEvents

	// Summary is the sum of all per-transition summaries.
	Summary Summary
}

// AllEvents returns every detected event across the series in
// transition order, then category order within a transition.
func (r *SeriesResult) AllEvents() []Event {
	var out []Event
	for _, t := range r.Transitions {
		for cat := Category(0); cat < NumCategories; cat++ {
			out = append(out, t.Events[cat]...)
		}
	}
	return out
}

// EventsByCategory returns every detected event of one category across
// the series in transition order.
func (r *SeriesResult) EventsByCategory(cat Category) []Event {
	var out []Event
	for _, t := range r.Transitions {
		out = append(out, t.Events[cat]...)
	}
	return out
}

// Analyzer classifies every consecutive transition of a frame series.
//
// Transitions are independent given the (read-only) series, so they are
// classified in parallel.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
}

// NewAnalyzer builds an Analyzer. A nil logger falls back to
// slog.Default().
func NewAnalyzer(cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// AnalyzeSeries classifies all consecutive transitions of the series.
//
// A series with fewer than two frames yields ErrNoSeries. Context
// cancellation aborts the run and returns the context error.
func (a *Analyzer) AnalyzeSeries(ctx context.Context, series *frametable.FrameTable) (*SeriesResult, error) {
	if series == nil || series.Len() < 2 {
		return nil, fmt.Errorf("analyze series: %w", ErrNoSeries)
	}
	if a.cfg.PersistenceWindow < 1 {
		return nil, fmt.Errorf("analyze series: persistence window %d: %w",
			a.cfg.PersistenceWindow, ErrBadWindow)
	}

	transitions := series.Transitions()
	result := &SeriesResult{
		Transitions: make([]*TransitionEvents, len(transitions)),
	}

	classifier := NewClassifier(a.cfg, series)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.NumCPU(), maxParallelTransitions))

	for i, pair := range transitions {
		i, pair := i, pair
		g.Go(func() error {
			f1, ok1 := series.Frame(pair[0])
			f2, ok2 := series.Frame(pair[1])
			if !ok1 || !ok2 {
				return fmt.Errorf("transition %d->%d: %w", pair[0], pair[1], frametable.ErrFrameNotFound)
			}
			if err := gCtx.Err(); err != nil {
				return err
			}

			spanCtx, span := startTransitionSpan(gCtx, pair[0], pair[1])
			defer span.End()

			start := time.Now()
			te := classifier.Classify(f1, f2)
			recordTransitionMetrics(spanCtx, time.Since(start), te, true)
			setTransitionSpanResult(span, te)

			a.logger.Debug("classified transition",
				"time_point_1", pair[0],
				"time_point_2", pair[1],
				"events", te.Summary.Total(),
				"appeared", len(te.Appeared),
				"disappeared", len(te.Disappeared),
			)

			result.Transitions[i] = te
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range result.Transitions {
		result.Summary.Add(t.Summary)
	}

	a.logger.Info("series analysis complete",
		"transitions", len(result.Transitions),
		"total_events", result.Summary.Total(),
	)
	return result, nil
}
