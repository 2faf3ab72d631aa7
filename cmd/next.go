// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/spf13/cobra"
)

var (
	nextEnabled string
	nextCurrent string
	nextCount   int
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the format that follows the current one",
	Long: `Print the next format in the round-robin cycle 3, 5, 8, FA restricted to
the enabled formats.

Without --current, the cycle starts at the first enabled format. "invalid(0x00)" is
printed when no format is enabled.`,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().StringVar(&nextEnabled, "enabled", "3,5,fa", "Comma separated enabled formats")
	nextCmd.Flags().StringVar(&nextCurrent, "current", "", "Current format")
	nextCmd.Flags().IntVarP(&nextCount, "count", "n", 1, "Number of steps to print")
}

func runNext(cmd *cobra.Command, args []string) error {
	enabled, err := dataformats.ParseFormatSet(nextEnabled)
	if err != nil {
		return err
	}

	current := dataformats.FormatInvalid
	if nextCurrent != "" {
		if current, err = dataformats.ParseFormat(nextCurrent); err != nil {
			return err
		}
	}

	for i := 0; i < nextCount; i++ {
		current = dataformats.Next(enabled, current)
		fmt.Println(dataformats.FormatName(current))
	}
	return nil
}
