// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for event classification.
var (
	tracer = otel.Tracer("mitodyn.events")
	meter  = otel.Meter("mitodyn.events")
)

// Metrics for classification operations.
var (
	classifyLatency  metric.Float64Histogram
	transitionsTotal metric.Int64Counter
	eventsDetected   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		classifyLatency, err = meter.Float64Histogram(
			"dynamics_classify_duration_seconds",
			metric.WithDescription("Duration of per-transition event classification"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		transitionsTotal, err = meter.Int64Counter(
			"dynamics_transitions_total",
			metric.WithDescription("Total number of classified frame transitions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		eventsDetected, err = meter.Int64Counter(
			"dynamics_events_detected_total",
			metric.WithDescription("Detected remodeling events by category"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordTransitionMetrics records metrics for one classified transition.
func recordTransitionMetrics(ctx context.Context, duration time.Duration, result *TransitionEvents, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))

	classifyLatency.Record(ctx, duration.Seconds(), attrs)
	transitionsTotal.Add(ctx, 1, attrs)

	if !success || result == nil {
		return
	}
	for cat := Category(0); cat < NumCategories; cat++ {
		if n := result.Summary.Count(cat); n > 0 {
			eventsDetected.Add(ctx, int64(n),
				metric.WithAttributes(attribute.String("category", cat.String())),
			)
		}
	}
}

// startTransitionSpan creates a span for one transition.
func startTransitionSpan(ctx context.Context, tp1, tp2 int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Classifier.Classify",
		trace.WithAttributes(
			attribute.Int("dynamics.time_point_1", tp1),
			attribute.Int("dynamics.time_point_2", tp2),
		),
	)
}

// setTransitionSpanResult sets the result attributes on a transition span.
func setTransitionSpanResult(span trace.Span, result *TransitionEvents) {
	span.SetAttributes(
		attribute.Int("dynamics.events_total", result.Summary.Total()),
		attribute.Int("dynamics.nodes_appeared", len(result.Appeared)),
		attribute.Int("dynamics.nodes_disappeared", len(result.Disappeared)),
	)
}
