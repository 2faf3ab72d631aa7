// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

// CRC-8 configuration for the FA cleartext check byte
const (
	crc8Polynomial = 0x07
	crc8Initial    = 0x00
)

// CalculateCRC8 computes the CRC-8 (poly 0x07) checksum used to verify FA decryption
func CalculateCRC8(data []byte) uint8 {
	crc := uint8(crc8Initial)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
