// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
	"github.com/spf13/cobra"
)

var decodeKey string

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a payload or link frame",
	Long: `Decode one advertisement payload given as hex and print its fields.

Input starting with the link START byte (7E) is treated as a complete link
frame and unwrapped first. Format FA payloads are decrypted with --key
(32 hex digits) or the built-in key.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVar(&decodeKey, "key", "", "FA key as 32 hex digits")
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, err := parseHex(args[0])
	if err != nil {
		return err
	}
	key, err := parseKey(decodeKey)
	if err != nil {
		return err
	}

	if len(data) > 0 && data[0] == link.StartByte {
		frame, err := link.DecodeFrame(data)
		if err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		fmt.Printf("Frame: %d bytes, CRC 0x%04X\n", frame.Length(), frame.CRC())
		data = frame.Payload()
	}

	fmt.Print(dataformats.FormatPayload(data))

	m, err := dataformats.Decode(data, key)
	if err != nil {
		return err
	}
	fmt.Print(dataformats.FormatMeasurement(m))

	for _, v := range dataformats.ValidateMeasurement(m) {
		warnf("%s", v.Message)
	}
	return nil
}
