// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatMeasurement formats a decoded measurement into a human-readable string
func FormatMeasurement(m *Measurement) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Format %s", FormatName(m.Format)))
	if m.Address != nil {
		b.WriteString(fmt.Sprintf(" addr=%s", FormatAddress(*m.Address)))
	}
	if m.Sequence != nil {
		b.WriteString(fmt.Sprintf(" seq=%d", *m.Sequence))
	}
	if m.MessageCounter != nil {
		b.WriteString(fmt.Sprintf(" ctr=%d", *m.MessageCounter))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  Temperature: %s\n", formatOptional(m.Temperature, "%.3f°C")))
	b.WriteString(fmt.Sprintf("  Humidity:    %s\n", formatOptional(m.Humidity, "%.3f%%")))
	b.WriteString(fmt.Sprintf("  Pressure:    %s\n", formatOptional(m.Pressure, "%.0f Pa")))
	b.WriteString(fmt.Sprintf("  Accel:       X=%s Y=%s Z=%s\n",
		formatOptional(m.AccelerationX, "%.3fg"),
		formatOptional(m.AccelerationY, "%.3fg"),
		formatOptional(m.AccelerationZ, "%.3fg")))
	b.WriteString(fmt.Sprintf("  Battery:     %s\n", formatOptional(m.BatteryVoltage, "%.3f V")))

	if m.Format == Format5 {
		tx := "n/a"
		if m.TxPower != nil {
			tx = fmt.Sprintf("%d dBm", *m.TxPower)
		}
		mvt := "n/a"
		if m.MovementCounter != nil {
			mvt = fmt.Sprintf("%d", *m.MovementCounter)
		}
		b.WriteString(fmt.Sprintf("  TX Power:    %s, Movements: %s\n", tx, mvt))
	}

	return b.String()
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

// FormatAddress formats a 48-bit device address as AA:BB:CC:DD:EE:FF
func FormatAddress(addr uint64) string {
	parts := make([]string, AddressSize)
	for i := 0; i < AddressSize; i++ {
		parts[i] = fmt.Sprintf("%02X", byte(addr>>(8*(AddressSize-1-i))))
	}
	return strings.Join(parts, ":")
}

// FormatPayload returns an uppercase hex dump of a payload, 16 bytes per line.
func FormatPayload(payload []byte) string {
	var b strings.Builder
	for i := 0; i < len(payload); i += 16 {
		end := i + 16
		if end > len(payload) {
			end = len(payload)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.ToUpper(hex.EncodeToString(payload[i:end])))
	}
	return b.String()
}
