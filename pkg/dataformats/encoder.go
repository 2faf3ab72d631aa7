// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoSource is reported when an auxiliary source needed by a format is not configured.
var ErrNoSource = errors.New("source not configured")

// FormatState holds the per-format counters of an Encoder.
type FormatState struct {
	Sequence5 uint16 // last format 5 measurement sequence, [0, Format5SeqCtrMax)
	CounterFA uint8  // last FA message counter, [0, FormatFACounterWrap)
}

// Option configures an Encoder
type Option func(*Encoder)

// WithBattery sets the battery voltage source.
func WithBattery(b BatterySource) Option {
	return func(e *Encoder) { e.battery = b }
}

// WithRadio sets the address and transmit power source.
func WithRadio(r RadioSource) Option {
	return func(e *Encoder) { e.radio = r }
}

// WithMotion sets the movement event counter.
func WithMotion(m MotionCounter) Option {
	return func(e *Encoder) { e.motion = m }
}

// WithCipher replaces the AES-128-ECB block cipher used for format FA.
func WithCipher(c BlockCipher) Option {
	return func(e *Encoder) { e.enc = NewEncrypter(c) }
}

// WithKey sets the FA encryption key. The key is copied. A key that is not
// 16 bytes long is kept and makes every FA encode fail with StatusInvalidLength.
func WithKey(key []byte) Option {
	return func(e *Encoder) { e.key = append([]byte(nil), key...) }
}

// WithFatalPolicy sets the policy used by MustEncode and IsFatal.
func WithFatalPolicy(p FatalPolicy) Option {
	return func(e *Encoder) { e.policy = p }
}

// Encoder encodes sensor snapshots into wire formats.
// It owns the per-format counters; one Encoder represents one beacon.
// Encode is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex

	sensors SensorSource
	battery BatterySource
	radio   RadioSource
	motion  MotionCounter

	enc    *Encrypter
	key    []byte
	policy FatalPolicy

	state       FormatState
	lastAddress uint64
}

// NewEncoder creates an Encoder reading sensor values from sensors.
func NewEncoder(sensors SensorSource, opts ...Option) *Encoder {
	e := &Encoder{
		sensors: sensors,
		enc:     NewEncrypter(nil),
		key:     append([]byte(nil), DefaultKey[:]...),
		policy:  DefaultFatalPolicy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a copy of the current counters.
func (e *Encoder) State() FormatState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Restore seeds the counters, e.g. to continue a sequence after a restart.
func (e *Encoder) Restore(s FormatState) error {
	if s.Sequence5 >= Format5SeqCtrMax {
		return fmt.Errorf("format 5 sequence out of range: %d (max %d)", s.Sequence5, Format5SeqCtrMax-1)
	}
	if s.CounterFA >= FormatFACounterWrap {
		return fmt.Errorf("FA counter out of range: %d (max %d)", s.CounterFA, FormatFACounterWrap-1)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
	return nil
}

// Policy returns the encoder's fatal policy.
func (e *Encoder) Policy() FatalPolicy {
	return e.policy
}

// IsFatal reports whether err carries a status the encoder's policy treats as fatal.
func (e *Encoder) IsFatal(err error) bool {
	return e.policy.Check(err) != nil
}

// result accumulates the status of one encode call
type result struct {
	status Status
	errs   []error
}

func (r *result) fail(s Status, err error) {
	r.status |= s
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

// read records an auxiliary read failure. A source error that is itself a
// Status is ORed in as well.
func (r *result) read(what string, err error) {
	if err == nil {
		return
	}
	r.status |= StatusReadFailed
	var s Status
	if errors.As(err, &s) {
		r.status |= s
	}
	r.errs = append(r.errs, fmt.Errorf("%s: %w", what, err))
}

func (r *result) err(f Format) error {
	if r.status == StatusSuccess {
		return nil
	}
	return &EncodeError{Format: f, Status: r.status, Errs: r.errs}
}

// Encode encodes the latest sensor readings into buf using format f.
//
// It returns the number of bytes written, which is DataLength(f) whenever a
// frame was produced. A frame may be produced together with a non-nil error
// when an auxiliary read failed; the missing values are written as invalid
// sentinels. Unknown or unimplemented formats, and a buffer shorter than
// DataLength(f), return 0 and leave buf and the counters untouched. A counter
// advances only when its frame is produced.
func (e *Encoder) Encode(buf []byte, f Format) (int, error) {
	switch f {
	case Format3, Format5, FormatFA:
	default:
		return 0, &EncodeError{Format: f, Status: StatusNotImplemented}
	}

	length := DataLength(f)
	if len(buf) < length {
		return 0, &EncodeError{
			Format: f,
			Status: StatusInvalidLength,
			Errs:   []error{fmt.Errorf("buffer too small: %d bytes (need %d)", len(buf), length)},
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap := NewSnapshot(e.sensors)
	var r result
	var ok bool
	switch f {
	case Format3:
		ok = e.encode3(buf, &snap, &r)
	case Format5:
		ok = e.encode5(buf, &snap, &r)
	case FormatFA:
		ok = e.encodeFA(buf, &snap, &r)
	}

	if !ok {
		return 0, r.err(f)
	}
	return length, r.err(f)
}

// MustEncode is like Encode but panics with a *FatalError when the resulting
// status is fatal under the encoder's policy.
func (e *Encoder) MustEncode(buf []byte, f Format) (int, error) {
	n, err := e.Encode(buf, f)
	if fatal := e.policy.Check(err); fatal != nil {
		panic(fatal)
	}
	return n, err
}

func (e *Encoder) readBattery(r *result) float64 {
	if e.battery == nil {
		r.read("battery", ErrNoSource)
		return nan()
	}
	v, err := e.battery.BatteryVoltage()
	if err != nil {
		r.read("battery", err)
		return nan()
	}
	return v
}

// readAddress falls back to the last known address on failure.
func (e *Encoder) readAddress(r *result) uint64 {
	if e.radio == nil {
		r.read("address", ErrNoSource)
		return e.lastAddress
	}
	addr, err := e.radio.Address()
	if err != nil {
		r.read("address", err)
		return e.lastAddress
	}
	e.lastAddress = addr
	return addr
}

func (e *Encoder) readTxPower(r *result) (int8, bool) {
	if e.radio == nil {
		r.read("tx power", ErrNoSource)
		return 0, false
	}
	tx, err := e.radio.TxPower()
	if err != nil {
		r.read("tx power", err)
		return 0, false
	}
	return tx, true
}

func (e *Encoder) movementCount() uint8 {
	if e.motion == nil {
		return 0
	}
	return uint8(e.motion.MotionEvents() % (Format5MvtCtrMax + 1))
}

func (e *Encoder) encode3(buf []byte, snap *Snapshot, r *result) bool {
	d := Format3Data{
		AccelerationX:  value(snap, FieldAccelerationX),
		AccelerationY:  value(snap, FieldAccelerationY),
		AccelerationZ:  value(snap, FieldAccelerationZ),
		Humidity:       value(snap, FieldHumidity),
		Pressure:       value(snap, FieldPressure),
		Temperature:    value(snap, FieldTemperature),
		BatteryVoltage: e.readBattery(r),
	}
	if err := EncodeFormat3(buf, &d); err != nil {
		r.fail(StatusInternal, err)
		return false
	}
	return true
}

func (e *Encoder) encode5(buf []byte, snap *Snapshot, r *result) bool {
	seq := uint16((uint32(e.state.Sequence5) + 1) % Format5SeqCtrMax)

	d := Format5Data{
		AccelerationX:    value(snap, FieldAccelerationX),
		AccelerationY:    value(snap, FieldAccelerationY),
		AccelerationZ:    value(snap, FieldAccelerationZ),
		Humidity:         value(snap, FieldHumidity),
		Pressure:         value(snap, FieldPressure),
		Temperature:      value(snap, FieldTemperature),
		MeasurementCount: seq,
		MovementCount:    e.movementCount(),
	}
	d.Address = e.readAddress(r)
	d.TxPower, d.HasTxPower = e.readTxPower(r)
	d.BatteryVoltage = e.readBattery(r)

	if err := EncodeFormat5(buf, &d); err != nil {
		r.fail(StatusInternal, err)
		return false
	}
	e.state.Sequence5 = seq
	return true
}

func (e *Encoder) encodeFA(buf []byte, snap *Snapshot, r *result) bool {
	counter := uint8((uint16(e.state.CounterFA) + 1) % FormatFACounterWrap)

	d := FormatFAData{
		AccelerationX:  value(snap, FieldAccelerationX),
		AccelerationY:  value(snap, FieldAccelerationY),
		AccelerationZ:  value(snap, FieldAccelerationZ),
		Humidity:       value(snap, FieldHumidity),
		Pressure:       value(snap, FieldPressure),
		Temperature:    value(snap, FieldTemperature),
		MessageCounter: counter,
	}
	d.BatteryVoltage = e.readBattery(r)
	d.Address = e.readAddress(r)

	if status := EncodeFormatFA(buf, &d, e.enc, e.key); status != StatusSuccess {
		r.fail(status, fmt.Errorf("encryption failed: %w", status))
		return false
	}
	e.state.CounterFA = counter
	return true
}

// value returns the snapshot value of f, NaN if unavailable.
func value(snap *Snapshot, f Field) float64 {
	v, _ := snap.Get(f)
	return v
}
