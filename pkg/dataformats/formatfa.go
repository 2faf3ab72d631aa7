// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrChecksumMismatch is wrapped by DecodeFormatFA when the decrypted block
// does not match its check byte, usually because the key is wrong.
var ErrChecksumMismatch = errors.New("FA checksum mismatch")

// FormatFAData holds the inputs of an FA payload. NaN marks an unavailable value.
type FormatFAData struct {
	AccelerationX  float64 // g
	AccelerationY  float64 // g
	AccelerationZ  float64 // g
	Humidity       float64 // %RH
	Pressure       float64 // Pa
	Temperature    float64 // °C
	BatteryVoltage float64 // V

	MessageCounter uint8
	Address        uint64
}

// buildFACleartext assembles the 16-byte block that gets encrypted.
func buildFACleartext(d *FormatFAData) [FormatFACiphertextLen]byte {
	var plain [FormatFACiphertextLen]byte
	binary.BigEndian.PutUint16(plain[faOffsetTemp:], scaleI16(d.Temperature, format5TempStep))
	binary.BigEndian.PutUint16(plain[faOffsetHumidity:], scaleU16(d.Humidity, 0, format5HumidityStep))
	binary.BigEndian.PutUint16(plain[faOffsetPressure:], scaleU16(d.Pressure, pressureOffsetPa, pressureStep))
	binary.BigEndian.PutUint16(plain[faOffsetAccX:], scaleI16(d.AccelerationX, accelerationStep))
	binary.BigEndian.PutUint16(plain[faOffsetAccY:], scaleI16(d.AccelerationY, accelerationStep))
	binary.BigEndian.PutUint16(plain[faOffsetAccZ:], scaleI16(d.AccelerationZ, accelerationStep))
	binary.BigEndian.PutUint16(plain[faOffsetBattery:], scaleU16(d.BatteryVoltage, 0, batteryStep))
	plain[faOffsetCounter] = d.MessageCounter
	return plain
}

// EncodeFormatFA packs d into the first FormatFADataLength bytes of buf,
// encrypting the measurement block with key through enc.
//
// A cipher failure is returned together with StatusInternal; the ciphertext
// region is zeroed so cleartext is never left in the payload.
func EncodeFormatFA(buf []byte, d *FormatFAData, enc *Encrypter, key []byte) Status {
	if len(buf) < FormatFADataLength {
		return StatusInvalidLength
	}
	if enc == nil {
		return StatusInvalidParam
	}
	if d.MessageCounter >= FormatFACounterWrap {
		return StatusInternal
	}

	plain := buildFACleartext(d)
	ciphertext := buf[formatFACiphertextOffset : formatFACiphertextOffset+FormatFACiphertextLen]

	buf[0] = byte(FormatFA)
	buf[formatFACRCOffset] = CalculateCRC8(plain[:])
	putAddress(buf[formatFAAddressOffset:], d.Address)

	if status := enc.Encrypt(ciphertext, plain[:], key); status != StatusSuccess {
		for i := range ciphertext {
			ciphertext[i] = 0
		}
		return status | StatusInternal
	}
	return StatusSuccess
}

// DecodeFormatFA decrypts and decodes an FA payload with key.
func DecodeFormatFA(payload []byte, enc *Encrypter, key []byte) (*Measurement, error) {
	if len(payload) < FormatFADataLength {
		return nil, fmt.Errorf("format FA payload too short: %d bytes (need %d)", len(payload), FormatFADataLength)
	}
	if Format(payload[0]) != FormatFA {
		return nil, fmt.Errorf("not a format FA payload: header 0x%02X", payload[0])
	}
	if enc == nil {
		enc = NewEncrypter(nil)
	}

	var plain [FormatFACiphertextLen]byte
	ciphertext := payload[formatFACiphertextOffset : formatFACiphertextOffset+FormatFACiphertextLen]
	if status := enc.Decrypt(plain[:], ciphertext, key); status != StatusSuccess {
		return nil, fmt.Errorf("failed to decrypt FA payload: %w", status)
	}

	if crc := CalculateCRC8(plain[:]); crc != payload[formatFACRCOffset] {
		return nil, fmt.Errorf("%w: expected 0x%02X, got 0x%02X (wrong key?)", ErrChecksumMismatch, crc, payload[formatFACRCOffset])
	}

	counter := plain[faOffsetCounter]
	addr := getAddress(payload[formatFAAddressOffset:])
	return &Measurement{
		Format:         FormatFA,
		Temperature:    unscaleI16(binary.BigEndian.Uint16(plain[faOffsetTemp:]), format5TempStep),
		Humidity:       unscaleU16(binary.BigEndian.Uint16(plain[faOffsetHumidity:]), 0, format5HumidityStep),
		Pressure:       unscaleU16(binary.BigEndian.Uint16(plain[faOffsetPressure:]), pressureOffsetPa, pressureStep),
		AccelerationX:  unscaleI16(binary.BigEndian.Uint16(plain[faOffsetAccX:]), accelerationStep),
		AccelerationY:  unscaleI16(binary.BigEndian.Uint16(plain[faOffsetAccY:]), accelerationStep),
		AccelerationZ:  unscaleI16(binary.BigEndian.Uint16(plain[faOffsetAccZ:]), accelerationStep),
		BatteryVoltage: unscaleU16(binary.BigEndian.Uint16(plain[faOffsetBattery:]), 0, batteryStep),
		MessageCounter: &counter,
		Address:        &addr,
	}, nil
}
