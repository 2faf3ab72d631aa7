// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import "math"

// Field identifies one physical quantity in a Snapshot.
type Field int

// Sensor fields
const (
	FieldAccelerationX Field = iota // g
	FieldAccelerationY              // g
	FieldAccelerationZ              // g
	FieldHumidity                   // %RH
	FieldPressure                   // Pa
	FieldTemperature                // °C

	fieldCount
)

// FieldMask is a set of Fields.
type FieldMask uint8

// AllFields contains every defined field.
const AllFields FieldMask = 1<<fieldCount - 1

// Mask returns a FieldMask containing only f.
func (f Field) Mask() FieldMask {
	return 1 << f
}

// String returns the field name
func (f Field) String() string {
	switch f {
	case FieldAccelerationX:
		return "acceleration_x"
	case FieldAccelerationY:
		return "acceleration_y"
	case FieldAccelerationZ:
		return "acceleration_z"
	case FieldHumidity:
		return "humidity"
	case FieldPressure:
		return "pressure"
	case FieldTemperature:
		return "temperature"
	default:
		return "unknown"
	}
}

// Has reports whether f is in the mask.
func (m FieldMask) Has(f Field) bool {
	return f >= 0 && f < fieldCount && m&f.Mask() != 0
}

// SensorSource supplies the latest sensor readings.
type SensorSource interface {
	// Fields returns the fields the source can currently provide.
	Fields() FieldMask
	// Value returns the reading for f, or ok == false if it is unavailable.
	Value(f Field) (v float64, ok bool)
}

// BatterySource supplies battery voltage in volts.
type BatterySource interface {
	BatteryVoltage() (float64, error)
}

// RadioSource supplies the device address and current transmit power in dBm.
type RadioSource interface {
	Address() (uint64, error)
	TxPower() (int8, error)
}

// MotionCounter supplies the externally maintained movement event count.
// The encoder only reads it.
type MotionCounter interface {
	MotionEvents() uint32
}

// Snapshot is an immutable set of optional sensor readings.
// Unavailable fields hold NaN and are reported with ok == false, never as zero.
type Snapshot struct {
	values [fieldCount]float64
	mask   FieldMask
}

// NewSnapshot builds a Snapshot by reading each available field from src.
// Fields the source reports unavailable, or non-finite values, are left unavailable.
func NewSnapshot(src SensorSource) Snapshot {
	var s Snapshot
	for i := range s.values {
		s.values[i] = math.NaN()
	}
	if src == nil {
		return s
	}
	available := src.Fields()
	for f := Field(0); f < fieldCount; f++ {
		if !available.Has(f) {
			continue
		}
		v, ok := src.Value(f)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s.values[f] = v
		s.mask |= f.Mask()
	}
	return s
}

// Get returns the value of f and whether it is available.
func (s *Snapshot) Get(f Field) (float64, bool) {
	if !s.mask.Has(f) {
		return math.NaN(), false
	}
	return s.values[f], true
}

// Fields returns the set of available fields.
func (s *Snapshot) Fields() FieldMask {
	return s.mask
}

// Readings is a SensorSource backed by a fixed set of values. A nil entry is
// unavailable.
type Readings struct {
	AccelerationX *float64
	AccelerationY *float64
	AccelerationZ *float64
	Humidity      *float64
	Pressure      *float64
	Temperature   *float64
}

func (r *Readings) field(f Field) *float64 {
	switch f {
	case FieldAccelerationX:
		return r.AccelerationX
	case FieldAccelerationY:
		return r.AccelerationY
	case FieldAccelerationZ:
		return r.AccelerationZ
	case FieldHumidity:
		return r.Humidity
	case FieldPressure:
		return r.Pressure
	case FieldTemperature:
		return r.Temperature
	}
	return nil
}

// Fields implements SensorSource
func (r *Readings) Fields() FieldMask {
	var m FieldMask
	for f := Field(0); f < fieldCount; f++ {
		if r.field(f) != nil {
			m |= f.Mask()
		}
	}
	return m
}

// Value implements SensorSource
func (r *Readings) Value(f Field) (float64, bool) {
	p := r.field(f)
	if p == nil {
		return math.NaN(), false
	}
	return *p, true
}
