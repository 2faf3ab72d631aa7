// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
	"github.com/spf13/cobra"
)

var (
	encodeProfile string
	encodeFormat  string
	encodeCount   int
	encodeFramed  bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode payloads from a beacon profile",
	Long: `Encode one or more advertisement payloads from a beacon profile and print
them as hex.

Each call advances the format's counters, so --count 3 --format 5 prints three
payloads with consecutive measurement sequence numbers. Read failures (for
example a profile without an address) are reported as warnings; the payload
carries the field's invalid value instead.

Use --frame to print the link frame that stream would send.`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVar(&encodeProfile, "profile", "", "Beacon profile (YAML)")
	encodeCmd.Flags().StringVarP(&encodeFormat, "format", "f", "5", "Format: 3, 5, 8 or fa")
	encodeCmd.Flags().IntVarP(&encodeCount, "count", "n", 1, "Number of payloads to encode")
	encodeCmd.Flags().BoolVar(&encodeFramed, "frame", false, "Also print the link frame")
	encodeCmd.MarkFlagRequired("profile")
}

func runEncode(cmd *cobra.Command, args []string) error {
	format, err := dataformats.ParseFormat(encodeFormat)
	if err != nil {
		return err
	}

	beacon, err := loadBeacon(encodeProfile)
	if err != nil {
		return err
	}

	buf := make([]byte, dataformats.MaxDataLength)
	for i := 0; i < encodeCount; i++ {
		n, err := beacon.Encoder.Encode(buf, format)
		if n == 0 {
			return fmt.Errorf("format %s: %w", dataformats.FormatName(format), err)
		}
		if err != nil {
			warnf("%v", err)
		}

		fmt.Println(strings.ToUpper(hex.EncodeToString(buf[:n])))
		if encodeFramed {
			frame, err := link.EncodeFrame(buf[:n])
			if err != nil {
				return err
			}
			fmt.Printf("  frame: %s\n", strings.ToUpper(hex.EncodeToString(frame)))
		}
	}

	return nil
}
