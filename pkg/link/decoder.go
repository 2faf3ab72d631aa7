// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"errors"
	"fmt"
	"time"
)

// ErrCRCMismatch is wrapped by DecodeByte when a frame's CRC does not match.
var ErrCRCMismatch = errors.New("CRC mismatch")

// Decoder implements the link frame decoder state machine
type Decoder struct {
	state      int
	buffer     []byte
	length     int
	escapeNext bool
	crc        uint16
	rawBuffer  []byte // Accumulate raw bytes including framing
}

// NewDecoder creates a new frame decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:     stateIdle,
		buffer:    make([]byte, 0, MaxFrameSize),
		rawBuffer: make([]byte, 0, MaxFrameSize*2+2),
	}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.buffer = d.buffer[:0]
	d.length = 0
	d.escapeNext = false
	d.crc = 0
	d.rawBuffer = d.rawBuffer[:0]
}

// RawBytes returns the accumulated raw bytes since the last frame
func (d *Decoder) RawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single byte through the decoder state machine.
// It returns a completed frame, or nil if the frame is incomplete, and an
// error if decoding fails.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	d.rawBuffer = append(d.rawBuffer, b)

	// Unescaped framing bytes always resynchronize
	if !d.escapeNext {
		switch b {
		case EscByte:
			d.escapeNext = true
			return nil, nil
		case StartByte:
			d.Reset()
			d.rawBuffer = append(d.rawBuffer, b)
			d.state = stateLength
			return nil, nil
		case EndByte:
			return d.finish()
		}
	} else {
		b ^= EscXor
		d.escapeNext = false
	}

	switch d.state {
	case stateIdle:
		// Waiting for START byte
		return nil, nil

	case stateLength:
		if b == 0 || int(b) > MaxPayloadSize {
			d.Reset()
			return nil, fmt.Errorf("invalid length: %d (max %d)", b, MaxPayloadSize)
		}
		d.length = int(b)
		d.buffer = append(d.buffer, b)
		d.state = statePayload
		return nil, nil

	case statePayload:
		d.buffer = append(d.buffer, b)
		if len(d.buffer)-1 >= d.length {
			d.state = stateCRC1
		}
		return nil, nil

	case stateCRC1:
		d.crc = uint16(b) << 8
		d.state = stateCRC2
		return nil, nil

	case stateCRC2:
		d.crc |= uint16(b)
		d.state = stateEnd
		return nil, nil

	case stateEnd:
		d.Reset()
		return nil, fmt.Errorf("missing END byte")

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}
}

func (d *Decoder) finish() (*Frame, error) {
	if d.state != stateEnd {
		state := d.state
		d.Reset()
		return nil, fmt.Errorf("unexpected END byte in state %d", state)
	}

	calculated := CalculateCRC(d.buffer)
	if d.crc != calculated {
		err := fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrCRCMismatch, calculated, d.crc)
		d.Reset()
		return nil, err
	}

	frame := &Frame{
		payload:   append([]byte(nil), d.buffer[1:]...),
		crc:       d.crc,
		timestamp: time.Now(),
	}
	d.Reset()
	return frame, nil
}

// DecodeFrame decodes a single complete frame from data
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder()
	for _, b := range data {
		frame, err := d.DecodeByte(b)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
	}
	return nil, fmt.Errorf("incomplete frame")
}
