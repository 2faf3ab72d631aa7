// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package profile

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
)

// ErrUnavailable is returned by a simulated source with no configured value.
var ErrUnavailable = errors.New("value not available")

// Sensors is a mutable SensorSource. It is safe for concurrent use.
type Sensors struct {
	mu sync.RWMutex
	r  dataformats.Readings
}

// NewSensors creates a Sensors source from profile readings.
func NewSensors(rc ReadingsConfig) *Sensors {
	return &Sensors{r: dataformats.Readings{
		AccelerationX: copyFloat(rc.AccelerationX),
		AccelerationY: copyFloat(rc.AccelerationY),
		AccelerationZ: copyFloat(rc.AccelerationZ),
		Humidity:      copyFloat(rc.Humidity),
		Pressure:      copyFloat(rc.Pressure),
		Temperature:   copyFloat(rc.Temperature),
	}}
}

// Fields implements dataformats.SensorSource
func (s *Sensors) Fields() dataformats.FieldMask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Fields()
}

// Value implements dataformats.SensorSource
func (s *Sensors) Value(f dataformats.Field) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Value(f)
}

// Set updates one reading.
func (s *Sensors) Set(f dataformats.Field, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.slot(f); p != nil {
		*p = &v
	}
}

// Clear marks one reading unavailable.
func (s *Sensors) Clear(f dataformats.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.slot(f); p != nil {
		*p = nil
	}
}

func (s *Sensors) slot(f dataformats.Field) **float64 {
	switch f {
	case dataformats.FieldAccelerationX:
		return &s.r.AccelerationX
	case dataformats.FieldAccelerationY:
		return &s.r.AccelerationY
	case dataformats.FieldAccelerationZ:
		return &s.r.AccelerationZ
	case dataformats.FieldHumidity:
		return &s.r.Humidity
	case dataformats.FieldPressure:
		return &s.r.Pressure
	case dataformats.FieldTemperature:
		return &s.r.Temperature
	}
	return nil
}

// Battery reports a fixed battery voltage.
type Battery struct {
	Voltage *float64
}

// BatteryVoltage implements dataformats.BatterySource
func (b *Battery) BatteryVoltage() (float64, error) {
	if b.Voltage == nil {
		return 0, ErrUnavailable
	}
	return *b.Voltage, nil
}

// Radio reports a fixed address and transmit power.
type Radio struct {
	address    uint64
	hasAddress bool
	txPower    *int8
}

// NewRadio creates a Radio. Address fails when hasAddress is false.
func NewRadio(address uint64, hasAddress bool, txPower *int8) *Radio {
	return &Radio{address: address, hasAddress: hasAddress, txPower: txPower}
}

// Address implements dataformats.RadioSource
func (r *Radio) Address() (uint64, error) {
	if !r.hasAddress {
		return 0, ErrUnavailable
	}
	return r.address, nil
}

// TxPower implements dataformats.RadioSource
func (r *Radio) TxPower() (int8, error) {
	if r.txPower == nil {
		return 0, ErrUnavailable
	}
	return *r.txPower, nil
}

// Motion is an externally maintained movement event count.
type Motion struct {
	events atomic.Uint32
}

// NewMotion creates a Motion starting at events.
func NewMotion(events uint32) *Motion {
	m := &Motion{}
	m.events.Store(events)
	return m
}

// Record registers one movement event.
func (m *Motion) Record() {
	m.events.Add(1)
}

// MotionEvents implements dataformats.MotionCounter
func (m *Motion) MotionEvents() uint32 {
	return m.events.Load()
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
