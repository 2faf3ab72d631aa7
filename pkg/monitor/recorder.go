// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package monitor

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
)

// Record is one entry of a recording. Absent values are omitted.
type Record struct {
	Timestamp int64  `cbor:"0,keyasint"` // unix milliseconds
	Format    uint8  `cbor:"1,keyasint"`
	Payload   []byte `cbor:"2,keyasint"`

	Address        *uint64  `cbor:"3,keyasint,omitempty"`
	Temperature    *float64 `cbor:"4,keyasint,omitempty"`
	Humidity       *float64 `cbor:"5,keyasint,omitempty"`
	Pressure       *float64 `cbor:"6,keyasint,omitempty"`
	AccelerationX  *float64 `cbor:"7,keyasint,omitempty"`
	AccelerationY  *float64 `cbor:"8,keyasint,omitempty"`
	AccelerationZ  *float64 `cbor:"9,keyasint,omitempty"`
	BatteryVoltage *float64 `cbor:"10,keyasint,omitempty"`
	TxPower        *int8    `cbor:"11,keyasint,omitempty"`
	Movement       *uint8   `cbor:"12,keyasint,omitempty"`
	Counter        *uint32  `cbor:"13,keyasint,omitempty"`
}

// NewRecord builds a record from a raw payload and its decoded measurement.
func NewRecord(ts time.Time, payload []byte, m *dataformats.Measurement) Record {
	r := Record{
		Timestamp:      ts.UnixMilli(),
		Format:         uint8(m.Format),
		Payload:        append([]byte(nil), payload...),
		Address:        m.Address,
		Temperature:    m.Temperature,
		Humidity:       m.Humidity,
		Pressure:       m.Pressure,
		AccelerationX:  m.AccelerationX,
		AccelerationY:  m.AccelerationY,
		AccelerationZ:  m.AccelerationZ,
		BatteryVoltage: m.BatteryVoltage,
		TxPower:        m.TxPower,
		Movement:       m.MovementCounter,
	}
	if v, _, ok := m.Counter(); ok {
		r.Counter = &v
	}
	return r
}

// Recorder writes records as a CBOR sequence. It is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	enc *cbor.Encoder
	n   int
}

// NewRecorder creates a recorder writing to w
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: cbor.NewEncoder(w)}
}

// Write appends one record
func (r *Recorder) Write(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	r.n++
	return nil
}

// Count returns the number of records written
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// ReadRecords reads every record of a CBOR sequence from rd
func ReadRecords(rd io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(rd)
	var records []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("failed to decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}
