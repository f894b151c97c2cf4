// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amsharma23/mitodyn/services/dynamics/correct"
	"github.com/amsharma23/mitodyn/services/dynamics/events"
)

func runCorrectAdd(cmd *cobra.Command, args []string) error {
	cat, err := events.ParseCategory(correctCategory)
	if err != nil {
		return err
	}
	if len(correctPosition) != 3 {
		return fmt.Errorf("--position needs exactly 3 coordinates, got %d", len(correctPosition))
	}
	pos := [3]float64{correctPosition[0], correctPosition[1], correctPosition[2]}

	ev := correct.NewEvent(cat, pos, correctTimePoint)
	if err := correct.New(args[0]).AddEvent(ev); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s event at (%g, %g, %g)\n",
		cat.DisplayName(), pos[0], pos[1], pos[2])
	return nil
}

func runCorrectDelete(cmd *cobra.Command, args []string) error {
	cat, err := events.ParseCategory(correctCategory)
	if err != nil {
		return err
	}

	if err := correct.New(args[0]).DeleteEvent(cat, correctRow); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s event row %d\n", cat.DisplayName(), correctRow)
	return nil
}
