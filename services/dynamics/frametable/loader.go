// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frametable

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Source table column names. "node" and "node_id" are interchangeable.
const (
	colTimePoint   = "time_point"
	colNode        = "node"
	colNodeID      = "node_id"
	colPosX        = "pos_x"
	colPosY        = "pos_y"
	colPosZ        = "pos_z"
	colAdjacencies = "adjacencies"
	colConvergence = "convergence_raw"
	colDivergence  = "divergence_raw"
	colComponent   = "component_num"
)

// Per-frame file layout produced by the segmentation pipeline.
const (
	frameOutputDir    = "nellie_output"
	frameTableDir     = "nellie_necessities"
	dynamicsSuffix    = "_adjacency_list_with_dynamics.csv"
	adjacencySuffix   = "_adjacency_list.csv"
	combinedTableName = "combined_timeseries_adjacency.csv"
)

// LoadSeries reads all per-frame adjacency tables under root, one numeric
// subdirectory per time point, and combines them into a FrameTable.
//
// Frames whose table is missing or unreadable are skipped with a logged
// warning; a missing root directory is a hard failure. An empty result
// (no frames found) is not an error: the run downstream produces an
// all-zero summary.
func LoadSeries(ctx context.Context, root string) (*FrameTable, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSeriesRootMissing, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSeriesRootMissing, root, err)
	}

	var timePoints []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		tp, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		timePoints = append(timePoints, tp)
	}
	sort.Ints(timePoints)
	slog.Info("discovered time points", "count", len(timePoints), "root", root)

	var frames []*Frame
	for _, tp := range timePoints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := frameTablePath(root, tp)
		if err != nil {
			slog.Warn("skipping time point", "time_point", tp, "reason", err)
			continue
		}

		nodes, err := readFrameCSV(path, tp)
		if err != nil {
			slog.Warn("skipping unreadable frame table",
				"time_point", tp, "path", path, "error", err)
			continue
		}

		frames = append(frames, NewFrame(tp, nodes))
		slog.Debug("loaded frame", "time_point", tp, "nodes", len(nodes))
	}

	if len(frames) == 0 {
		slog.Warn("no adjacency data found", "root", root)
	}
	return NewTableFromFrames(frames), nil
}

// LoadCombined reads a combined time-series table (all frames in one CSV
// with a time_point column).
func LoadCombined(ctx context.Context, path string) (*FrameTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSeriesRootMissing, path)
	}
	defer f.Close()

	nodes, err := readNodes(f, path, nil)
	if err != nil {
		return nil, err
	}
	return NewTable(nodes), nil
}

// WriteCombined writes the table as a single combined CSV, the cache
// format the analyze path reuses on subsequent runs.
func WriteCombined(table *FrameTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create combined table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{colTimePoint, colNode, colPosX, colPosY, colPosZ,
		colAdjacencies, colConvergence, colDivergence, colComponent}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, tp := range table.TimePoints() {
		frame, _ := table.Frame(tp)
		for i := range frame.Nodes {
			n := &frame.Nodes[i]
			rec := []string{
				strconv.Itoa(n.TimePoint),
				strconv.FormatInt(n.ID, 10),
				formatFloat(n.Position[0]),
				formatFloat(n.Position[1]),
				formatFloat(n.Position[2]),
				formatAdjacency(n.Adjacency),
				formatOptFloat(n.ConvergenceRaw),
				formatOptFloat(n.DivergenceRaw),
				formatOptInt(n.ComponentID),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// frameTablePath resolves the adjacency table for one time point,
// preferring the variant that carries dynamics signals.
func frameTablePath(root string, timePoint int) (string, error) {
	dir := filepath.Join(root, strconv.Itoa(timePoint), frameOutputDir, frameTableDir)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("output path not found: %s", dir)
	}

	for _, suffix := range []string{dynamicsSuffix, adjacencySuffix} {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
		if err != nil {
			return "", err
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			if len(matches) > 1 {
				slog.Warn("multiple adjacency tables, using first",
					"time_point", timePoint, "path", matches[0])
			}
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("no adjacency table in %s", dir)
}

func readFrameCSV(path string, timePoint int) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readNodes(f, path, &timePoint)
}

// readNodes parses node rows from r. When fixedTimePoint is nil the table
// must carry a time_point column. Rows with malformed numeric fields are
// skipped with a warning; a malformed adjacency field degrades the node
// to an empty neighbor list (degree 0) rather than dropping the row.
func readNodes(r io.Reader, path string, fixedTimePoint *int) ([]Node, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	idCol, ok := cols[colNode]
	if !ok {
		idCol, ok = cols[colNodeID]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s in %s", ErrMissingColumn, colNode, colNodeID, path)
	}
	for _, required := range []string{colPosX, colPosY, colPosZ, colAdjacencies} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, required, path)
		}
	}
	tpCol, hasTP := cols[colTimePoint]
	if fixedTimePoint == nil && !hasTP {
		return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, colTimePoint, path)
	}

	var nodes []Node
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		node, err := parseNodeRow(rec, cols, idCol, tpCol, hasTP, fixedTimePoint)
		if err != nil {
			slog.Warn("skipping malformed row", "path", path, "row", line, "error", err)
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func parseNodeRow(rec []string, cols map[string]int, idCol, tpCol int, hasTP bool, fixedTimePoint *int) (Node, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var node Node
	var err error

	if fixedTimePoint != nil {
		node.TimePoint = *fixedTimePoint
	} else if hasTP {
		node.TimePoint, err = strconv.Atoi(field(tpCol))
		if err != nil {
			return node, fmt.Errorf("time_point: %w", err)
		}
	}

	node.ID, err = strconv.ParseInt(field(idCol), 10, 64)
	if err != nil {
		return node, fmt.Errorf("node id: %w", err)
	}

	for axis, name := range []string{colPosX, colPosY, colPosZ} {
		v, err := strconv.ParseFloat(field(cols[name]), 64)
		if err != nil {
			return node, fmt.Errorf("%s: %w", name, err)
		}
		node.Position[axis] = v
	}

	// Malformed adjacency degrades to degree 0; the row survives.
	adj, err := ParseAdjacency(field(cols[colAdjacencies]))
	if err != nil {
		slog.Debug("adjacency parse failed, node degraded to degree 0",
			"node", node.ID, "time_point", node.TimePoint)
		adj = []int64{}
	}
	node.Adjacency = adj

	if i, ok := cols[colConvergence]; ok {
		node.ConvergenceRaw = parseOptFloat(field(i))
	}
	if i, ok := cols[colDivergence]; ok {
		node.DivergenceRaw = parseOptFloat(field(i))
	}
	if i, ok := cols[colComponent]; ok {
		node.ComponentID = parseOptInt(field(i))
	}
	return node, nil
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptInt(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Component labels sometimes arrive as floats ("3.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		v = int64(f)
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatAdjacency(ids []int64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// CombinedTablePath returns the conventional location of the combined
// table cache inside a series root.
func CombinedTablePath(root string) string {
	return filepath.Join(root, combinedTableName)
}
