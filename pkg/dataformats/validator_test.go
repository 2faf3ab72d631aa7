// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"strings"
	"testing"
)

func TestValidateMeasurement(t *testing.T) {
	tx := func(v int8) *int8 { return &v }

	tests := []struct {
		name     string
		m        Measurement
		expected []AnomalyType
	}{
		{
			name: "plausible",
			m:    Measurement{Format: Format5, Temperature: f64(21.5), Humidity: f64(45), Pressure: f64(101325), TxPower: tx(4), BatteryVoltage: f64(3.0)},
		},
		{
			name:     "humidity above 100",
			m:        Measurement{Temperature: f64(20), Humidity: f64(120)},
			expected: []AnomalyType{AnomalyHumidityRange},
		},
		{
			name:     "hot and low pressure",
			m:        Measurement{Temperature: f64(100), Pressure: f64(40000)},
			expected: []AnomalyType{AnomalyTemperatureRange, AnomalyPressureRange},
		},
		{
			name:     "tx power and battery",
			m:        Measurement{Temperature: f64(20), TxPower: tx(22), BatteryVoltage: f64(1.2)},
			expected: []AnomalyType{AnomalyTxPowerRange, AnomalyBatteryRange},
		},
		{
			name:     "missing temperature",
			m:        Measurement{Format: Format3},
			expected: []AnomalyType{AnomalyMissingField},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateMeasurement(&tt.m)
			if len(errs) != len(tt.expected) {
				t.Fatalf("got %d anomalies %v, want %d", len(errs), errs, len(tt.expected))
			}
			for i, e := range errs {
				if e.Type != tt.expected[i] {
					t.Errorf("anomaly %d = %d, want %d (%s)", i, e.Type, tt.expected[i], e.Message)
				}
			}
		})
	}
}

func TestFormatMeasurement(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	buf := make([]byte, Format5DataLength)
	if _, err := enc.Encode(buf, Format5); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	m, _ := DecodeFormat5(buf)

	out := FormatMeasurement(m)
	for _, want := range []string{"Format 5", "addr=C1:D2:E3:F4:A5:B6", "seq=1", "21.500°C", "101325 Pa", "4 dBm"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	m.Humidity = nil
	if !strings.Contains(FormatMeasurement(m), "Humidity:    n/a") {
		t.Error("unavailable humidity should print n/a")
	}
}

func TestFormatPayload(t *testing.T) {
	payload := make([]byte, 20)
	payload[0] = 0xFA
	out := FormatPayload(payload)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "FA00") || len(lines[0]) != 32 || len(lines[1]) != 8 {
		t.Errorf("unexpected dump %q", out)
	}
}
