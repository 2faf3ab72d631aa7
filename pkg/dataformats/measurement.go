// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import "fmt"

// Measurement is a decoded payload. Nil fields were transmitted as the
// format's invalid sentinel or are not part of the format.
type Measurement struct {
	Format Format

	Temperature    *float64 // °C
	Humidity       *float64 // %RH
	Pressure       *float64 // Pa
	AccelerationX  *float64 // g
	AccelerationY  *float64 // g
	AccelerationZ  *float64 // g
	BatteryVoltage *float64 // V

	TxPower         *int8   // dBm (format 5)
	MovementCounter *uint8  // format 5
	Sequence        *uint16 // format 5 measurement sequence
	MessageCounter  *uint8  // format FA
	Address         *uint64 // formats 5 and FA
}

// Counter returns the payload's cyclic counter and its wrap bound, if the
// format carries one.
func (m *Measurement) Counter() (value uint32, wrap uint32, ok bool) {
	switch {
	case m.Sequence != nil:
		return uint32(*m.Sequence), Format5SeqCtrMax, true
	case m.MessageCounter != nil:
		return uint32(*m.MessageCounter), FormatFACounterWrap, true
	}
	return 0, 0, false
}

// Decode decodes any supported payload. key is only used for format FA; a nil
// key selects DefaultKey.
func Decode(payload []byte, key []byte) (*Measurement, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	switch Format(payload[0]) {
	case Format3:
		return DecodeFormat3(payload)
	case Format5:
		return DecodeFormat5(payload)
	case FormatFA:
		if key == nil {
			key = DefaultKey[:]
		}
		return DecodeFormatFA(payload, nil, key)
	case Format8:
		return nil, fmt.Errorf("format 8: %w", StatusNotImplemented)
	default:
		return nil, fmt.Errorf("unknown format header 0x%02X: %w", payload[0], StatusNotImplemented)
	}
}
