// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"fmt"
	"strings"
)

// FormatSet is a bitmap of formats enabled for cycling.
type FormatSet uint8

func formatBit(f Format) FormatSet {
	for i, c := range canonicalOrder {
		if c == f {
			return 1 << i
		}
	}
	return 0
}

// NewFormatSet returns a set containing the given formats. Unknown formats are ignored.
func NewFormatSet(formats ...Format) FormatSet {
	var s FormatSet
	for _, f := range formats {
		s |= formatBit(f)
	}
	return s
}

// Has reports whether f is enabled.
func (s FormatSet) Has(f Format) bool {
	bit := formatBit(f)
	return bit != 0 && s&bit != 0
}

// Formats returns the enabled formats in cycling order.
func (s FormatSet) Formats() []Format {
	var out []Format
	for _, f := range canonicalOrder {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FormatSet) String() string {
	formats := s.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = FormatName(f)
	}
	return strings.Join(names, ",")
}

// Next returns the format to encode after current, cycling round-robin over
// enabled in the order 3, 5, 8, FA. It returns FormatInvalid when nothing is
// enabled, and the first enabled format when current is not a known format.
func Next(enabled FormatSet, current Format) Format {
	formats := enabled.Formats()
	if len(formats) == 0 {
		return FormatInvalid
	}

	start := -1
	for i, f := range canonicalOrder {
		if f == current {
			start = i
			break
		}
	}
	if start < 0 {
		return formats[0]
	}

	for step := 1; step <= len(canonicalOrder); step++ {
		f := canonicalOrder[(start+step)%len(canonicalOrder)]
		if enabled.Has(f) {
			return f
		}
	}
	return FormatInvalid
}

// FormatName returns the short name of a format ("3", "5", "8", "FA").
func FormatName(f Format) string {
	switch f {
	case Format3:
		return "3"
	case Format5:
		return "5"
	case Format8:
		return "8"
	case FormatFA:
		return "FA"
	default:
		return fmt.Sprintf("invalid(0x%02X)", uint8(f))
	}
}

// ParseFormat parses a format name as produced by FormatName. A "0x" prefix is accepted.
func ParseFormat(name string) (Format, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "0X")
	switch n {
	case "3", "03":
		return Format3, nil
	case "5", "05":
		return Format5, nil
	case "8", "08":
		return Format8, nil
	case "FA":
		return FormatFA, nil
	}
	return FormatInvalid, fmt.Errorf("unknown format %q (valid: 3, 5, 8, fa)", name)
}

// ParseFormatSet parses a comma separated list of format names.
func ParseFormatSet(list string) (FormatSet, error) {
	var s FormatSet
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return 0, err
		}
		s |= formatBit(f)
	}
	return s, nil
}
