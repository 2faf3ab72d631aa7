// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
)

// Statistics tracks frame statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	CRCErrors       uint64
	KeyErrors       uint64
	DecodeErrors    uint64
	AnomalousValues uint64
	InvalidTemp     uint64
	InvalidHumidity uint64
	InvalidPressure uint64
	InvalidTxPower  uint64
	InvalidBattery  uint64
	MissingFields   uint64

	// Sequence tracking
	LostFrames      uint64
	DuplicateFrames uint64
	ReorderedFrames uint64

	PerFormat map[dataformats.Format]uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		PerFormat:      make(map[dataformats.Format]uint64),
	}
}

// Update updates statistics based on a decoded measurement and its errors.
// m may be nil when decodeErr is set.
func (s *Statistics) Update(m *dataformats.Measurement, decodeErr error, validationErrors []dataformats.ValidationError) {
	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, link.ErrCRCMismatch):
			s.CRCErrors++
		case errors.Is(decodeErr, dataformats.ErrChecksumMismatch):
			s.KeyErrors++
		default:
			s.DecodeErrors++
		}
		return
	}

	s.PerFormat[m.Format]++

	if len(validationErrors) == 0 {
		s.ValidFrames++
		return
	}

	for _, err := range validationErrors {
		switch err.Type {
		case dataformats.AnomalyTemperatureRange:
			s.InvalidTemp++
		case dataformats.AnomalyHumidityRange:
			s.InvalidHumidity++
		case dataformats.AnomalyPressureRange:
			s.InvalidPressure++
		case dataformats.AnomalyTxPowerRange:
			s.InvalidTxPower++
		case dataformats.AnomalyBatteryRange:
			s.InvalidBattery++
		case dataformats.AnomalyMissingField:
			s.MissingFields++
		}
	}
	s.AnomalousValues++
}

// Track folds a tracker observation into the sequence counters
func (s *Statistics) Track(obs Observation) {
	switch obs.Result {
	case ResultGap:
		s.LostFrames += uint64(obs.Lost)
	case ResultDuplicate:
		s.DuplicateFrames++
	case ResultReordered:
		s.ReorderedFrames++
	}
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.errorCount()) / elapsed
	}
}

func (s *Statistics) errorCount() uint64 {
	return s.CRCErrors + s.KeyErrors + s.DecodeErrors + s.AnomalousValues
}

// LossPercent returns lost frames as a share of expected frames
func (s *Statistics) LossPercent() float64 {
	expected := s.LostFrames + s.TotalFrames - s.DuplicateFrames
	if expected == 0 {
		return 0
	}
	return float64(s.LostFrames) * 100.0 / float64(expected)
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)
	total := s.TotalFrames

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", total)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, percent(s.ValidFrames, total))

	for _, f := range []dataformats.Format{dataformats.Format3, dataformats.Format5, dataformats.Format8, dataformats.FormatFA} {
		if n := s.PerFormat[f]; n > 0 {
			result += fmt.Sprintf("  Format %-2s:      %5d\n", dataformats.FormatName(f), n)
		}
	}

	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d (%.1f%%)\n", s.CRCErrors, percent(s.CRCErrors, total))
	}
	if s.KeyErrors > 0 {
		result += fmt.Sprintf("Key Errors:      %8d (%.1f%%)\n", s.KeyErrors, percent(s.KeyErrors, total))
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, percent(s.DecodeErrors, total))
	}
	if s.AnomalousValues > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d (%.1f%%)\n", s.AnomalousValues, percent(s.AnomalousValues, total))
		if s.InvalidTemp > 0 {
			result += fmt.Sprintf("  Invalid Temp:     %5d\n", s.InvalidTemp)
		}
		if s.InvalidHumidity > 0 {
			result += fmt.Sprintf("  Invalid Humidity: %5d\n", s.InvalidHumidity)
		}
		if s.InvalidPressure > 0 {
			result += fmt.Sprintf("  Invalid Pressure: %5d\n", s.InvalidPressure)
		}
		if s.InvalidTxPower > 0 {
			result += fmt.Sprintf("  Invalid TX Power: %5d\n", s.InvalidTxPower)
		}
		if s.InvalidBattery > 0 {
			result += fmt.Sprintf("  Invalid Battery:  %5d\n", s.InvalidBattery)
		}
		if s.MissingFields > 0 {
			result += fmt.Sprintf("  Missing Fields:   %5d\n", s.MissingFields)
		}
	}
	if s.LostFrames > 0 {
		result += fmt.Sprintf("Lost Frames:     %8d (%.1f%%)\n", s.LostFrames, s.LossPercent())
	}
	if s.DuplicateFrames > 0 {
		result += fmt.Sprintf("Duplicates:      %8d\n", s.DuplicateFrames)
	}
	if s.ReorderedFrames > 0 {
		result += fmt.Sprintf("Reordered:       %8d\n", s.ReorderedFrames)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
