// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package infer

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("mitodyn.infer")
	meter  = otel.Meter("mitodyn.infer")
)

var (
	inferencesTotal metric.Int64Counter
	fallbacksTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		inferencesTotal, err = meter.Int64Counter(
			"dynamics_inferences_total",
			metric.WithDescription("Per-transition inferences by method and match outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fallbacksTotal, err = meter.Int64Counter(
			"dynamics_inference_fallbacks_total",
			metric.WithDescription("Inferences where the primary solver failed"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordInference records one inferred transition.
func recordInference(ctx context.Context, r Result) {
	if err := initMetrics(); err != nil {
		return
	}

	inferencesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", string(r.Method)),
		attribute.Bool("perfect_match", r.PerfectMatch),
	))
	if r.Fallback {
		fallbacksTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", string(r.Method)),
		))
	}
}

// startSeriesSpan creates a span for a series inference.
func startSeriesSpan(ctx context.Context, method Method, transitions int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Inferrer.InferSeries",
		trace.WithAttributes(
			attribute.String("dynamics.method", string(method)),
			attribute.Int("dynamics.transitions", transitions),
		),
	)
}
