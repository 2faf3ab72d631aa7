// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Format3Data holds the inputs of a format 3 payload. NaN marks an unavailable value.
type Format3Data struct {
	AccelerationX  float64 // g
	AccelerationY  float64 // g
	AccelerationZ  float64 // g
	Humidity       float64 // %RH
	Pressure       float64 // Pa
	Temperature    float64 // °C
	BatteryVoltage float64 // V
}

// EncodeFormat3 packs d into the first Format3DataLength bytes of buf.
func EncodeFormat3(buf []byte, d *Format3Data) error {
	if len(buf) < Format3DataLength {
		return fmt.Errorf("format 3 buffer too small: %d bytes (need %d)", len(buf), Format3DataLength)
	}
	buf[f3OffsetHeader] = byte(Format3)
	buf[f3OffsetHumidity] = scaleU8(d.Humidity, format3HumidityStep)
	buf[f3OffsetTempInt], buf[f3OffsetTempFrac] = encodeFormat3Temperature(d.Temperature)
	binary.BigEndian.PutUint16(buf[f3OffsetPressure:], scaleU16(d.Pressure, pressureOffsetPa, pressureStep))
	binary.BigEndian.PutUint16(buf[f3OffsetAccX:], scaleI16(d.AccelerationX, accelerationStep))
	binary.BigEndian.PutUint16(buf[f3OffsetAccY:], scaleI16(d.AccelerationY, accelerationStep))
	binary.BigEndian.PutUint16(buf[f3OffsetAccZ:], scaleI16(d.AccelerationZ, accelerationStep))
	binary.BigEndian.PutUint16(buf[f3OffsetBattery:], scaleU16(d.BatteryVoltage, 0, batteryStep))
	return nil
}

// encodeFormat3Temperature returns the sign-magnitude integer byte and the
// hundredths byte. Both are 0xFF for an unavailable reading.
func encodeFormat3Temperature(v float64) (byte, byte) {
	if math.IsNaN(v) {
		return invalidU8, invalidU8
	}
	centi := math.Round(math.Abs(v) * 100)
	if centi > 127*100+99 {
		centi = 127*100 + 99
	}
	sign := byte(0)
	if v < 0 && centi != 0 {
		sign = 0x80
	}
	c := int(centi)
	return sign | byte(c/100), byte(c % 100)
}

func decodeFormat3Temperature(integer, fraction byte) *float64 {
	if fraction > 99 {
		return nil
	}
	v := float64(integer&0x7F) + float64(fraction)/100
	if integer&0x80 != 0 {
		v = -v
	}
	return &v
}

// DecodeFormat3 decodes a format 3 payload.
func DecodeFormat3(payload []byte) (*Measurement, error) {
	if len(payload) < Format3DataLength {
		return nil, fmt.Errorf("format 3 payload too short: %d bytes (need %d)", len(payload), Format3DataLength)
	}
	if Format(payload[f3OffsetHeader]) != Format3 {
		return nil, fmt.Errorf("not a format 3 payload: header 0x%02X", payload[f3OffsetHeader])
	}
	return &Measurement{
		Format:         Format3,
		Humidity:       unscaleU8(payload[f3OffsetHumidity], format3HumidityStep),
		Temperature:    decodeFormat3Temperature(payload[f3OffsetTempInt], payload[f3OffsetTempFrac]),
		Pressure:       unscaleU16(binary.BigEndian.Uint16(payload[f3OffsetPressure:]), pressureOffsetPa, pressureStep),
		AccelerationX:  unscaleI16(binary.BigEndian.Uint16(payload[f3OffsetAccX:]), accelerationStep),
		AccelerationY:  unscaleI16(binary.BigEndian.Uint16(payload[f3OffsetAccY:]), accelerationStep),
		AccelerationZ:  unscaleI16(binary.BigEndian.Uint16(payload[f3OffsetAccZ:]), accelerationStep),
		BatteryVoltage: unscaleU16(binary.BigEndian.Uint16(payload[f3OffsetBattery:]), 0, batteryStep),
	}, nil
}
