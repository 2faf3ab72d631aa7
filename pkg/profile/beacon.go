// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package profile

import (
	"time"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
)

// Beacon is a simulated tag assembled from a profile.
type Beacon struct {
	Sensors *Sensors
	Battery *Battery
	Radio   *Radio
	Motion  *Motion

	Encoder  *dataformats.Encoder
	Formats  dataformats.FormatSet
	Interval time.Duration
}

// Options builds encoder options for the profile's key.
func (p *Profile) Options() ([]dataformats.Option, error) {
	key, err := p.Key()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, nil
	}
	return []dataformats.Option{dataformats.WithKey(key)}, nil
}

// NewBeacon validates and normalizes p, then builds its sources and encoder.
// Extra options are applied after the profile's own.
func NewBeacon(p *Profile, opts ...dataformats.Option) (*Beacon, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	Normalize(p)

	addr, hasAddr, err := p.Address()
	if err != nil {
		return nil, err
	}
	formats, err := p.Formats()
	if err != nil {
		return nil, err
	}
	keyOpts, err := p.Options()
	if err != nil {
		return nil, err
	}

	b := &Beacon{
		Sensors:  NewSensors(p.Readings),
		Battery:  &Battery{Voltage: copyFloat(p.Device.BatteryV)},
		Radio:    NewRadio(addr, hasAddr, p.Device.TxPower),
		Motion:   NewMotion(p.Device.MotionEvents),
		Formats:  formats,
		Interval: p.Interval(),
	}

	all := []dataformats.Option{
		dataformats.WithBattery(b.Battery),
		dataformats.WithRadio(b.Radio),
		dataformats.WithMotion(b.Motion),
	}
	all = append(all, keyOpts...)
	all = append(all, opts...)
	b.Encoder = dataformats.NewEncoder(b.Sensors, all...)

	return b, nil
}
