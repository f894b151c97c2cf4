// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package correct applies manual corrections to detected-event CSVs.
//
// Corrections operate on the per-category event files a report run
// produced: an event record can be appended or removed by row index.
// Every applied correction is appended to a modification log so a
// curation session can be audited or replayed.
package correct

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/amsharma23/mitodyn/services/dynamics/events"
	"github.com/amsharma23/mitodyn/services/dynamics/report"
)

// ModificationLogFile records applied corrections, one row each.
const ModificationLogFile = "event_corrections_log.csv"

// Sentinel errors for event correction.
var (
	// ErrRowOutOfRange is returned when a delete names a row index the
	// category file does not have.
	ErrRowOutOfRange = errors.New("event row index out of range")

	// ErrNoEventFile is returned when a delete targets a category with
	// no event file.
	ErrNoEventFile = errors.New("no event file for category")
)

// Corrector edits the event CSVs under one output directory.
type Corrector struct {
	dir string
}

// New returns a Corrector for the event files under dir.
func New(dir string) *Corrector {
	return &Corrector{dir: dir}
}

// NewEvent builds a manually placed event of the given category. Both
// endpoint positions start at pos; the curator adjusts the second
// endpoint afterwards when the category has two distinct participants.
// Matched-transition categories get their canonical degree pair.
func NewEvent(cat events.Category, pos [3]float64, timePoint int) events.Event {
	tp1 := timePoint - 1
	if timePoint <= 1 {
		tp1 = timePoint
	}
	ev := events.Event{
		Category:   cat,
		TimePoint1: tp1,
		TimePoint2: timePoint,
		PositionA:  pos,
		PositionB:  pos,
	}
	switch cat {
	case events.CategoryTipEdgeFusion:
		ev.DegreeT1, ev.DegreeT2 = 1, 3
	case events.CategoryJunctionBreakage:
		ev.DegreeT1, ev.DegreeT2 = 3, 1
	}
	return ev
}

// AddEvent appends an event record to its category file, creating the
// file if no run produced one, and logs the addition.
func (c *Corrector) AddEvent(ev events.Event) error {
	path := filepath.Join(c.dir, ev.Category.FileName())

	rows, err := readEventFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	rows = append(rows, report.EventCSVRow(ev))

	if err := writeEventFile(path, rows); err != nil {
		return err
	}
	return c.appendLog("add", ev.Category, len(rows)-1, report.EventCSVRow(ev))
}

// DeleteEvent removes the record at rowIndex (0-based, excluding the
// header) from a category file and logs the removal with the deleted
// payload.
func (c *Corrector) DeleteEvent(cat events.Category, rowIndex int) error {
	path := filepath.Join(c.dir, cat.FileName())

	rows, err := readEventFile(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", cat, ErrNoEventFile)
	}
	if err != nil {
		return err
	}
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("%s row %d of %d: %w", cat, rowIndex, len(rows), ErrRowOutOfRange)
	}

	deleted := rows[rowIndex]
	rows = append(rows[:rowIndex], rows[rowIndex+1:]...)

	if err := writeEventFile(path, rows); err != nil {
		return err
	}
	return c.appendLog("delete", cat, rowIndex, deleted)
}

// readEventFile returns the data rows of a category file, header
// stripped.
func readEventFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func writeEventFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(report.EventCSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// appendLog records one correction. The payload columns reuse the
// event CSV layout.
func (c *Corrector) appendLog(action string, cat events.Category, rowIndex int, payload []string) error {
	path := filepath.Join(c.dir, ModificationLogFile)

	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", ModificationLogFile, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		header := append([]string{"logged_at", "action", "category", "row_index"}, report.EventCSVHeader...)
		if err := w.Write(header); err != nil {
			return err
		}
	}
	row := append([]string{
		time.Now().UTC().Format(time.RFC3339), action, cat.String(), strconv.Itoa(rowIndex),
	}, payload...)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
