// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package profile

import (
	"fmt"
	"math"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
)

// Validate checks profile correctness.
// It performs declarative validation only and does not mutate the profile.
func Validate(p *Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if _, _, err := p.Address(); err != nil {
		return fmt.Errorf("device: %w", err)
	}

	key, err := p.Key()
	if err != nil {
		return fmt.Errorf("device: %w", err)
	}
	if key != nil && len(key) != dataformats.FormatFAKeyLen {
		return fmt.Errorf("device: key must be %d bytes, got %d", dataformats.FormatFAKeyLen, len(key))
	}

	if v := p.Device.BatteryV; v != nil && (math.IsNaN(*v) || *v < 0) {
		return fmt.Errorf("device: battery_v must be a non-negative voltage")
	}

	// ------------------------------------------------------------
	// READINGS
	// ------------------------------------------------------------

	r := p.Readings
	for name, v := range map[string]*float64{
		"temperature":    r.Temperature,
		"humidity":       r.Humidity,
		"pressure":       r.Pressure,
		"acceleration_x": r.AccelerationX,
		"acceleration_y": r.AccelerationY,
		"acceleration_z": r.AccelerationZ,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("readings: %s must be finite", name)
		}
	}

	// ------------------------------------------------------------
	// STREAM
	// ------------------------------------------------------------

	if p.Stream.IntervalMs < 0 {
		return fmt.Errorf("stream: interval_ms must not be negative")
	}

	for _, name := range p.Stream.Formats {
		if _, err := dataformats.ParseFormat(name); err != nil {
			return fmt.Errorf("stream: %w", err)
		}
	}

	return nil
}
