// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import "testing"

func TestNext_RoundRobin(t *testing.T) {
	tests := []struct {
		name     string
		enabled  FormatSet
		current  Format
		expected Format
	}{
		{"empty set", 0, Format5, FormatInvalid},
		{"empty set from invalid", 0, FormatInvalid, FormatInvalid},
		{"start from invalid", NewFormatSet(Format5, FormatFA), FormatInvalid, Format5},
		{"unknown current", NewFormatSet(Format3), Format(0x42), Format3},
		{"3 to 5", NewFormatSet(Format3, Format5, FormatFA), Format3, Format5},
		{"5 to FA", NewFormatSet(Format3, Format5, FormatFA), Format5, FormatFA},
		{"FA wraps to 3", NewFormatSet(Format3, Format5, FormatFA), FormatFA, Format3},
		{"skips disabled", NewFormatSet(Format3, FormatFA), Format3, FormatFA},
		{"single format", NewFormatSet(Format5), Format5, Format5},
		{"current not enabled", NewFormatSet(Format3, FormatFA), Format5, FormatFA},
		{"includes 8 when enabled", NewFormatSet(Format5, Format8), Format5, Format8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.enabled, tt.current); got != tt.expected {
				t.Errorf("Next(%s, %s) = %s, want %s", tt.enabled, FormatName(tt.current), FormatName(got), FormatName(tt.expected))
			}
		})
	}
}

func TestNext_FullCycleVisitsEachEnabledOnce(t *testing.T) {
	enabled := NewFormatSet(Format3, Format5, FormatFA)
	current := FormatInvalid
	visited := map[Format]int{}

	for i := 0; i < 9; i++ {
		current = Next(enabled, current)
		visited[current]++
	}

	for _, f := range []Format{Format3, Format5, FormatFA} {
		if visited[f] != 3 {
			t.Errorf("format %s visited %d times, want 3", FormatName(f), visited[f])
		}
	}
	if visited[Format8] != 0 {
		t.Error("disabled format 8 was selected")
	}
}

func TestParseFormatSet(t *testing.T) {
	tests := []struct {
		input    string
		expected FormatSet
		wantErr  bool
	}{
		{"3,5,fa", NewFormatSet(Format3, Format5, FormatFA), false},
		{" 5 , 0xFA ", NewFormatSet(Format5, FormatFA), false},
		{"", 0, false},
		{"3,,5", NewFormatSet(Format3, Format5), false},
		{"3,9", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFormatSet(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormatSet(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseFormatSet(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestFormatName_RoundTrip(t *testing.T) {
	for _, f := range []Format{Format3, Format5, Format8, FormatFA} {
		parsed, err := ParseFormat(FormatName(f))
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", FormatName(f), err)
		}
		if parsed != f {
			t.Errorf("ParseFormat(%q) = 0x%02X, want 0x%02X", FormatName(f), uint8(parsed), uint8(f))
		}
	}
}
