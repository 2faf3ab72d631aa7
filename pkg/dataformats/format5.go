// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Format5Data holds the inputs of a format 5 payload. NaN marks an unavailable
// sensor value; the Has* flags mark which auxiliary values were read.
type Format5Data struct {
	AccelerationX  float64 // g
	AccelerationY  float64 // g
	AccelerationZ  float64 // g
	Humidity       float64 // %RH
	Pressure       float64 // Pa
	Temperature    float64 // °C
	BatteryVoltage float64 // V, NaN if unknown

	TxPower    int8 // dBm
	HasTxPower bool

	MovementCount    uint8
	MeasurementCount uint16

	Address uint64
}

// EncodeFormat5 packs d into the first Format5DataLength bytes of buf.
func EncodeFormat5(buf []byte, d *Format5Data) error {
	if len(buf) < Format5DataLength {
		return fmt.Errorf("format 5 buffer too small: %d bytes (need %d)", len(buf), Format5DataLength)
	}
	if d.MovementCount > Format5MvtCtrMax {
		return fmt.Errorf("movement counter out of range: %d (max %d)", d.MovementCount, Format5MvtCtrMax)
	}
	if d.MeasurementCount >= Format5SeqCtrMax {
		return fmt.Errorf("measurement sequence out of range: %d (max %d)", d.MeasurementCount, Format5SeqCtrMax-1)
	}
	buf[f5OffsetHeader] = byte(Format5)
	binary.BigEndian.PutUint16(buf[f5OffsetTemp:], scaleI16(d.Temperature, format5TempStep))
	binary.BigEndian.PutUint16(buf[f5OffsetHumidity:], scaleU16(d.Humidity, 0, format5HumidityStep))
	binary.BigEndian.PutUint16(buf[f5OffsetPressure:], scaleU16(d.Pressure, pressureOffsetPa, pressureStep))
	binary.BigEndian.PutUint16(buf[f5OffsetAccX:], scaleI16(d.AccelerationX, accelerationStep))
	binary.BigEndian.PutUint16(buf[f5OffsetAccY:], scaleI16(d.AccelerationY, accelerationStep))
	binary.BigEndian.PutUint16(buf[f5OffsetAccZ:], scaleI16(d.AccelerationZ, accelerationStep))
	binary.BigEndian.PutUint16(buf[f5OffsetPower:], encodeFormat5Power(d))
	buf[f5OffsetMovement] = d.MovementCount
	binary.BigEndian.PutUint16(buf[f5OffsetSequence:], d.MeasurementCount)
	putAddress(buf[f5OffsetAddress:], d.Address)
	return nil
}

// encodeFormat5Power packs battery (11 bits, mV above 1600) and tx power
// (5 bits, 2 dBm steps above -40 dBm).
func encodeFormat5Power(d *Format5Data) uint16 {
	battery := uint16(invalidBattery5)
	if !math.IsNaN(d.BatteryVoltage) {
		mv := math.Round(d.BatteryVoltage*1000) - format5BatteryOffsetMv
		battery = uint16(clamp(mv, 0, invalidBattery5-1))
	}
	tx := uint16(invalidTxPower5)
	if d.HasTxPower {
		steps := math.Round(float64(int(d.TxPower)+format5TxPowerOffset) / 2)
		tx = uint16(clamp(steps, 0, invalidTxPower5-1))
	}
	return battery<<5 | tx
}

// DecodeFormat5 decodes a format 5 payload.
func DecodeFormat5(payload []byte) (*Measurement, error) {
	if len(payload) < Format5DataLength {
		return nil, fmt.Errorf("format 5 payload too short: %d bytes (need %d)", len(payload), Format5DataLength)
	}
	if Format(payload[f5OffsetHeader]) != Format5 {
		return nil, fmt.Errorf("not a format 5 payload: header 0x%02X", payload[f5OffsetHeader])
	}
	m := &Measurement{
		Format:        Format5,
		Temperature:   unscaleI16(binary.BigEndian.Uint16(payload[f5OffsetTemp:]), format5TempStep),
		Humidity:      unscaleU16(binary.BigEndian.Uint16(payload[f5OffsetHumidity:]), 0, format5HumidityStep),
		Pressure:      unscaleU16(binary.BigEndian.Uint16(payload[f5OffsetPressure:]), pressureOffsetPa, pressureStep),
		AccelerationX: unscaleI16(binary.BigEndian.Uint16(payload[f5OffsetAccX:]), accelerationStep),
		AccelerationY: unscaleI16(binary.BigEndian.Uint16(payload[f5OffsetAccY:]), accelerationStep),
		AccelerationZ: unscaleI16(binary.BigEndian.Uint16(payload[f5OffsetAccZ:]), accelerationStep),
	}

	power := binary.BigEndian.Uint16(payload[f5OffsetPower:])
	if battery := power >> 5; battery != invalidBattery5 {
		v := float64(int(battery)+format5BatteryOffsetMv) / 1000
		m.BatteryVoltage = &v
	}
	if tx := power & 0x1F; tx != invalidTxPower5 {
		v := int8(int(tx)*2 - format5TxPowerOffset)
		m.TxPower = &v
	}
	if mvt := payload[f5OffsetMovement]; mvt != invalidU8 {
		m.MovementCounter = &mvt
	}
	if seq := binary.BigEndian.Uint16(payload[f5OffsetSequence:]); seq != invalidU16 {
		m.Sequence = &seq
	}
	addr := getAddress(payload[f5OffsetAddress:])
	m.Address = &addr
	return m, nil
}
