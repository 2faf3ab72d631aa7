// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dataformats encodes environmental sensor readings into the fixed-layout
// advertisement payloads broadcast by a tag beacon, and decodes them back.
//
// Four wire formats are defined: 3 (compact telemetry), 5 (extended telemetry with
// sequence and movement counters), 8 (reserved, not implemented) and FA (telemetry
// encrypted with AES-128-ECB). An Encoder owns the per-format counters; a Decoder
// side is provided for receivers and round-trip testing.
package dataformats

// Format identifies a wire format. The value is the payload header byte.
type Format uint8

// Wire format tags
const (
	FormatInvalid Format = 0x00
	Format3       Format = 0x03
	Format5       Format = 0x05
	Format8       Format = 0x08
	FormatFA      Format = 0xFA
)

// Payload lengths
const (
	Format3DataLength  = 14
	Format5DataLength  = 24
	FormatFADataLength = 24

	// MaxDataLength is the largest payload any format produces.
	MaxDataLength = 24
)

// Format 5 counter bounds
const (
	Format5SeqCtrMax = 65535 // measurement sequence wraps modulo this value
	Format5MvtCtrMax = 254   // highest valid movement counter
)

// Format FA constants
const (
	FormatFACounterWrap   = 0xFF // message counter wraps modulo this value
	FormatFACiphertextLen = 16
	FormatFAKeyLen        = 16

	formatFACiphertextOffset = 1
	formatFACRCOffset        = 17
	formatFAAddressOffset    = 18
)

// DefaultKey is the build-time FA key used when no key is configured.
var DefaultKey = [FormatFAKeyLen]byte{0, 11, 22, 33, 44, 55, 66, 77, 88, 99, 11, 12, 13, 14, 15, 16}

// Invalid-value sentinels. Receivers treat these as "no data".
const (
	invalidU8  = 0xFF
	invalidU16 = 0xFFFF
	invalidI16 = 0x8000 // int16 minimum, as raw bits

	invalidBattery5 = 0x7FF
	invalidTxPower5 = 0x1F
)

// Physical offsets and resolutions
const (
	pressureOffsetPa = 50000

	format5TempStep     = 0.005
	format5HumidityStep = 0.0025
	format3HumidityStep = 0.5
	accelerationStep    = 0.001 // g per mG
	batteryStep         = 0.001 // V per mV
	pressureStep        = 1.0

	format5BatteryOffsetMv = 1600
	format5TxPowerOffset   = 40
)

// Format 3 layout offsets
const (
	f3OffsetHeader   = 0
	f3OffsetHumidity = 1
	f3OffsetTempInt  = 2
	f3OffsetTempFrac = 3
	f3OffsetPressure = 4
	f3OffsetAccX     = 6
	f3OffsetAccY     = 8
	f3OffsetAccZ     = 10
	f3OffsetBattery  = 12
)

// Format 5 layout offsets
const (
	f5OffsetHeader   = 0
	f5OffsetTemp     = 1
	f5OffsetHumidity = 3
	f5OffsetPressure = 5
	f5OffsetAccX     = 7
	f5OffsetAccY     = 9
	f5OffsetAccZ     = 11
	f5OffsetPower    = 13
	f5OffsetMovement = 15
	f5OffsetSequence = 16
	f5OffsetAddress  = 18
)

// FA cleartext block offsets
const (
	faOffsetTemp     = 0
	faOffsetHumidity = 2
	faOffsetPressure = 4
	faOffsetAccX     = 6
	faOffsetAccY     = 8
	faOffsetAccZ     = 10
	faOffsetBattery  = 12
	faOffsetCounter  = 14
)

// AddressSize is the size of a device address on the wire (48-bit MAC).
const AddressSize = 6

// canonicalOrder is the cycling order used by Next.
var canonicalOrder = []Format{Format3, Format5, Format8, FormatFA}

// DataLength returns the fixed payload length of a format, or 0 if the format
// produces no payload.
func DataLength(f Format) int {
	switch f {
	case Format3:
		return Format3DataLength
	case Format5:
		return Format5DataLength
	case FormatFA:
		return FormatFADataLength
	default:
		return 0
	}
}
