// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package link frames encoded advertisement payloads for the serial or
// WebSocket link between a host and a radio bridge.
//
// A frame is START | stuffed(length, payload, CRC-16-CCITT) | END. The CRC
// covers the length byte and the payload and is sent big-endian.
package link

// Protocol framing bytes
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Frame size limits
const (
	MaxPayloadSize = 64
	MaxFrameSize   = 1 + MaxPayloadSize + 2 // length + payload + CRC, before stuffing
)

// CRC-16-CCITT configuration
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateLength
	statePayload
	stateCRC1
	stateCRC2
	stateEnd
)
