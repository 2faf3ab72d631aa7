// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import "math"

// Scaling helpers shared by the format encoders. A NaN input encodes to the
// field's invalid sentinel; finite inputs are rounded and clamped to the valid
// range, which never includes the sentinel.

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scaleI16 encodes v/step as int16, sentinel 0x8000.
func scaleI16(v, step float64) uint16 {
	if math.IsNaN(v) {
		return invalidI16
	}
	r := clamp(math.Round(v/step), -32767, 32767)
	return uint16(int16(r))
}

// scaleU16 encodes (v-offset)/step as uint16, sentinel 0xFFFF.
func scaleU16(v, offset, step float64) uint16 {
	if math.IsNaN(v) {
		return invalidU16
	}
	r := clamp(math.Round((v-offset)/step), 0, invalidU16-1)
	return uint16(r)
}

// scaleU8 encodes v/step as uint8, sentinel 0xFF.
func scaleU8(v, step float64) uint8 {
	if math.IsNaN(v) {
		return invalidU8
	}
	return uint8(clamp(math.Round(v/step), 0, invalidU8-1))
}

func unscaleI16(raw uint16, step float64) *float64 {
	if raw == invalidI16 {
		return nil
	}
	v := float64(int16(raw)) * step
	return &v
}

func unscaleU16(raw uint16, offset, step float64) *float64 {
	if raw == invalidU16 {
		return nil
	}
	v := float64(raw)*step + offset
	return &v
}

func unscaleU8(raw uint8, step float64) *float64 {
	if raw == invalidU8 {
		return nil
	}
	v := float64(raw) * step
	return &v
}

// putAddress writes the low 48 bits of addr big-endian.
func putAddress(b []byte, addr uint64) {
	for i := 0; i < AddressSize; i++ {
		b[i] = byte(addr >> (8 * (AddressSize - 1 - i)))
	}
}

func getAddress(b []byte) uint64 {
	var addr uint64
	for i := 0; i < AddressSize; i++ {
		addr = addr<<8 | uint64(b[i])
	}
	return addr
}

func nan() float64 {
	return math.NaN()
}
