// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherBatchesChanges(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []Change, 10)
	w, err := New(dir, func(changes []Change) {
		batches <- changes
	}, &Options{Debounce: 50 * time.Millisecond, BufferSize: 100})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.IsWatching())

	path := filepath.Join(dir, "0_adjacency_list_with_dynamics.csv")
	require.NoError(t, os.WriteFile(path, []byte("node,pos_x\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("node,pos_x\n1,2.0\n"), 0o644))

	select {
	case changes := <-batches:
		// Both writes collapse onto one path.
		require.Len(t, changes, 1)
		assert.Equal(t, path, changes[0].Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no debounced batch arrived")
	}
}

func TestWatcherIgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []Change, 10)
	w, err := New(dir, func(changes []Change) {
		batches <- changes
	}, &Options{Debounce: 50 * time.Millisecond, BufferSize: 100})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame.tif"), []byte("x"), 0o644))

	select {
	case changes := <-batches:
		t.Fatalf("unexpected batch for non-CSV file: %v", changes)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoreFilter(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []Change, 10)
	opts := Options{Debounce: 50 * time.Millisecond, BufferSize: 100}
	opts.Ignore = func(path string) bool {
		return filepath.Base(path) == "detected_events_summary.csv"
	}
	w, err := New(dir, func(changes []Change) {
		batches <- changes
	}, &opts)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))

	// An analysis artifact and a frame table land together; only the
	// frame table may reach the handler.
	artifact := filepath.Join(dir, "detected_events_summary.csv")
	frame := filepath.Join(dir, "3_adjacency_list_with_dynamics.csv")
	require.NoError(t, os.WriteFile(artifact, []byte("total_tip_tip_fusion\n1\n"), 0o644))
	require.NoError(t, os.WriteFile(frame, []byte("node,pos_x\n"), 0o644))

	select {
	case changes := <-batches:
		require.Len(t, changes, 1)
		assert.Equal(t, frame, changes[0].Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no debounced batch arrived")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestDedupe(t *testing.T) {
	now := time.Now()
	in := []Change{
		{Path: "a.csv", Op: OpCreate, Time: now},
		{Path: "b.csv", Op: OpCreate, Time: now},
		{Path: "a.csv", Op: OpWrite, Time: now.Add(time.Second)},
	}

	out := dedupe(in)

	require.Len(t, out, 2)
	assert.Equal(t, "a.csv", out[0].Path)
	assert.Equal(t, OpWrite, out[0].Op)
	assert.Equal(t, "b.csv", out[1].Path)
}
