// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"
)

// ============================================================
// Test Collaborators
// ============================================================

type fakeBattery struct {
	volts float64
	err   error
}

func (b *fakeBattery) BatteryVoltage() (float64, error) {
	return b.volts, b.err
}

type fakeRadio struct {
	address uint64
	tx      int8
	addrErr error
	txErr   error
}

func (r *fakeRadio) Address() (uint64, error) {
	return r.address, r.addrErr
}

func (r *fakeRadio) TxPower() (int8, error) {
	return r.tx, r.txErr
}

type fakeMotion struct {
	events uint32
}

func (m *fakeMotion) MotionEvents() uint32 {
	return m.events
}

// spyCipher records calls and either fails with err or delegates to AES.
type spyCipher struct {
	calls int
	err   error
}

func (s *spyCipher) EncryptECB(dst, src, key []byte) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return AES128ECB{}.EncryptECB(dst, src, key)
}

// failingCipher fails only on call number failOn.
type failingCipher struct {
	calls  int
	failOn int
}

func (c *failingCipher) EncryptECB(dst, src, key []byte) error {
	c.calls++
	if c.calls == c.failOn {
		return errors.New("hardware busy")
	}
	return AES128ECB{}.EncryptECB(dst, src, key)
}

func f64(v float64) *float64 {
	return &v
}

// exampleReadings is the reference scenario: 21.5 °C, 45 %RH, 101325 Pa, 0.98 g on Z.
func exampleReadings() *Readings {
	return &Readings{
		AccelerationX: f64(0),
		AccelerationY: f64(0),
		AccelerationZ: f64(0.98),
		Humidity:      f64(45.0),
		Pressure:      f64(101325),
		Temperature:   f64(21.5),
	}
}

func newTestEncoder(sensors SensorSource, opts ...Option) *Encoder {
	base := []Option{
		WithBattery(&fakeBattery{volts: 3.0}),
		WithRadio(&fakeRadio{address: 0xC1D2E3F4A5B6, tx: 4}),
		WithMotion(&fakeMotion{events: 7}),
	}
	return NewEncoder(sensors, append(base, opts...)...)
}

func assertNear(t *testing.T, name string, got *float64, want, tolerance float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: got nil, want %.4f", name, want)
		return
	}
	if math.Abs(*got-want) > tolerance {
		t.Errorf("%s: got %.6f, want %.6f (±%.6f)", name, *got, want, tolerance)
	}
}

// ============================================================
// Format 3 Tests
// ============================================================

func TestEncode_Format3_ExampleScenario(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	buf := make([]byte, MaxDataLength)

	n, err := enc.Encode(buf, Format3)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if n != Format3DataLength {
		t.Fatalf("length = %d, want %d", n, Format3DataLength)
	}

	expected := []byte{0x03, 0x5A, 0x15, 0x32, 0xC8, 0x7D, 0x00, 0x00, 0x00, 0x00, 0x03, 0xD4, 0x0B, 0xB8}
	if !bytes.Equal(buf[:n], expected) {
		t.Errorf("payload mismatch:\n got  %X\n want %X", buf[:n], expected)
	}

	m, err := Decode(buf[:n], nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	assertNear(t, "temperature", m.Temperature, 21.5, 0.005)
	assertNear(t, "humidity", m.Humidity, 45.0, 0.25)
	assertNear(t, "pressure", m.Pressure, 101325, 0.5)
	assertNear(t, "acceleration z", m.AccelerationZ, 0.98, 0.0005)
	assertNear(t, "battery", m.BatteryVoltage, 3.0, 0.0005)
}

func TestEncode_Format3_Idempotent(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	first := make([]byte, Format3DataLength)
	second := make([]byte, Format3DataLength)

	if _, err := enc.Encode(first, Format3); err != nil {
		t.Fatalf("first Encode failed: %v", err)
	}
	if _, err := enc.Encode(second, Format3); err != nil {
		t.Fatalf("second Encode failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("format 3 is not idempotent:\n %X\n %X", first, second)
	}
	if enc.State() != (FormatState{}) {
		t.Errorf("format 3 must not touch counters, state = %+v", enc.State())
	}
}

func TestEncode_Format3_NegativeTemperature(t *testing.T) {
	r := exampleReadings()
	r.Temperature = f64(-12.34)
	enc := newTestEncoder(r)
	buf := make([]byte, Format3DataLength)

	if _, err := enc.Encode(buf, Format3); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if buf[f3OffsetTempInt] != 0x80|12 || buf[f3OffsetTempFrac] != 34 {
		t.Errorf("temperature bytes = %02X %02X, want 8C 22", buf[f3OffsetTempInt], buf[f3OffsetTempFrac])
	}

	m, _ := DecodeFormat3(buf)
	assertNear(t, "temperature", m.Temperature, -12.34, 0.005)
}

func TestEncode_Format3_NegativeZeroTemperature(t *testing.T) {
	for _, temp := range []float64{-0.004, -0.0, math.Copysign(0, -1)} {
		r := exampleReadings()
		r.Temperature = f64(temp)
		enc := newTestEncoder(r)
		buf := make([]byte, Format3DataLength)

		if _, err := enc.Encode(buf, Format3); err != nil {
			t.Fatalf("%v: Encode failed: %v", temp, err)
		}
		if buf[f3OffsetTempInt] != 0 || buf[f3OffsetTempFrac] != 0 {
			t.Errorf("%v: temperature bytes = %02X %02X, want 00 00", temp, buf[f3OffsetTempInt], buf[f3OffsetTempFrac])
		}

		m, _ := DecodeFormat3(buf)
		if m.Temperature == nil || math.Signbit(*m.Temperature) {
			t.Errorf("%v: decoded temperature must be +0", temp)
		}
	}
}

// ============================================================
// Unavailable Field Tests
// ============================================================

func TestEncode_AllFieldsUnavailable(t *testing.T) {
	for _, format := range []Format{Format3, Format5, FormatFA} {
		t.Run(FormatName(format), func(t *testing.T) {
			enc := newTestEncoder(&Readings{})
			buf := make([]byte, MaxDataLength)

			n, err := enc.Encode(buf, format)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			m, err := Decode(buf[:n], nil)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			fields := map[string]*float64{
				"temperature":    m.Temperature,
				"humidity":       m.Humidity,
				"pressure":       m.Pressure,
				"acceleration_x": m.AccelerationX,
				"acceleration_y": m.AccelerationY,
				"acceleration_z": m.AccelerationZ,
			}
			for name, v := range fields {
				if v != nil {
					t.Errorf("%s should decode as invalid, got %v", name, *v)
				}
			}
		})
	}
}

func TestEncode_Format3_SentinelBytes(t *testing.T) {
	enc := newTestEncoder(&Readings{})
	buf := make([]byte, Format3DataLength)
	if _, err := enc.Encode(buf, Format3); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Battery is still read, so only bytes 1..11 are sentinels
	expected := []byte{0x03, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x80, 0x00, 0x80, 0x00, 0x80, 0x00}
	if !bytes.Equal(buf[:12], expected) {
		t.Errorf("sentinel bytes:\n got  %X\n want %X", buf[:12], expected)
	}
}

func TestEncode_Format5_SentinelBytes(t *testing.T) {
	enc := newTestEncoder(&Readings{})
	buf := make([]byte, Format5DataLength)
	if _, err := enc.Encode(buf, Format5); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := []byte{0x05, 0x80, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0x80, 0x00, 0x80, 0x00, 0x80, 0x00}
	if !bytes.Equal(buf[:13], expected) {
		t.Errorf("sentinel bytes:\n got  %X\n want %X", buf[:13], expected)
	}
}

func TestEncode_NonFiniteIsUnavailable(t *testing.T) {
	r := exampleReadings()
	r.Temperature = f64(math.Inf(1))
	r.Humidity = f64(math.NaN())
	enc := newTestEncoder(r)
	buf := make([]byte, Format5DataLength)

	if _, err := enc.Encode(buf, Format5); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	m, _ := DecodeFormat5(buf)
	if m.Temperature != nil || m.Humidity != nil {
		t.Errorf("non-finite readings must encode as invalid, got temp=%v hum=%v", m.Temperature, m.Humidity)
	}
	assertNear(t, "pressure", m.Pressure, 101325, 0.5)
}

// ============================================================
// Format 5 Counter Tests
// ============================================================

func TestEncode_Format5_SequenceStartsAtOne(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	buf := make([]byte, Format5DataLength)

	for i := 1; i <= 5; i++ {
		if _, err := enc.Encode(buf, Format5); err != nil {
			t.Fatalf("Encode %d failed: %v", i, err)
		}
		m, err := DecodeFormat5(buf)
		if err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if m.Sequence == nil || int(*m.Sequence) != i {
			t.Errorf("call %d: sequence = %v, want %d", i, m.Sequence, i)
		}
	}
}

func TestEncode_Format5_SequenceWraps(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	if err := enc.Restore(FormatState{Sequence5: Format5SeqCtrMax - 2}); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	buf := make([]byte, Format5DataLength)

	want := []uint16{Format5SeqCtrMax - 1, 0, 1}
	for i, w := range want {
		if _, err := enc.Encode(buf, Format5); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		m, _ := DecodeFormat5(buf)
		if m.Sequence == nil || *m.Sequence != w {
			t.Errorf("call %d: sequence = %v, want %d", i+1, m.Sequence, w)
		}
	}
}

func TestEncode_Format5_MovementCounterIsModuloReduced(t *testing.T) {
	tests := []struct {
		events uint32
		want   uint8
	}{
		{0, 0},
		{7, 7},
		{254, 254},
		{255, 0},
		{256, 1},
		{1000, 1000 % 255},
	}

	for _, tt := range tests {
		motion := &fakeMotion{events: tt.events}
		enc := newTestEncoder(exampleReadings(), WithMotion(motion))
		buf := make([]byte, Format5DataLength)

		if _, err := enc.Encode(buf, Format5); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if buf[f5OffsetMovement] != tt.want {
			t.Errorf("events=%d: movement = %d, want %d", tt.events, buf[f5OffsetMovement], tt.want)
		}
		if motion.events != tt.events {
			t.Errorf("encoder must not modify the motion count")
		}
	}
}

func TestEncode_Format5_AuxiliaryFields(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	buf := make([]byte, Format5DataLength)

	if _, err := enc.Encode(buf, Format5); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	m, _ := DecodeFormat5(buf)

	if m.Address == nil || *m.Address != 0xC1D2E3F4A5B6 {
		t.Errorf("address = %v, want C1D2E3F4A5B6", m.Address)
	}
	if m.TxPower == nil || *m.TxPower != 4 {
		t.Errorf("tx power = %v, want 4", m.TxPower)
	}
	if m.MovementCounter == nil || *m.MovementCounter != 7 {
		t.Errorf("movement = %v, want 7", m.MovementCounter)
	}
	assertNear(t, "battery", m.BatteryVoltage, 3.0, 0.0005)
}

// ============================================================
// Format FA Tests
// ============================================================

func TestEncode_FormatFA_CounterWrapsAt255(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	buf := make([]byte, FormatFADataLength)
	initial := enc.State().CounterFA

	for i := 1; i <= FormatFACounterWrap; i++ {
		if _, err := enc.Encode(buf, FormatFA); err != nil {
			t.Fatalf("Encode %d failed: %v", i, err)
		}
		m, err := DecodeFormatFA(buf, nil, DefaultKey[:])
		if err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		want := uint8((int(initial) + i) % FormatFACounterWrap)
		if *m.MessageCounter != want {
			t.Fatalf("call %d: counter = %d, want %d", i, *m.MessageCounter, want)
		}
	}

	if got := enc.State().CounterFA; got != initial {
		t.Errorf("after %d calls counter = %d, want %d", FormatFACounterWrap, got, initial)
	}
}

func TestEncode_FormatFA_RoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef")
	enc := newTestEncoder(exampleReadings(), WithKey(key))
	buf := make([]byte, FormatFADataLength)

	n, err := enc.Encode(buf, FormatFA)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if n != FormatFADataLength {
		t.Fatalf("length = %d, want %d", n, FormatFADataLength)
	}

	m, err := Decode(buf, key)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	assertNear(t, "temperature", m.Temperature, 21.5, 0.0025)
	assertNear(t, "humidity", m.Humidity, 45.0, 0.00125)
	assertNear(t, "pressure", m.Pressure, 101325, 0.5)
	assertNear(t, "battery", m.BatteryVoltage, 3.0, 0.0005)
	if *m.MessageCounter != 1 {
		t.Errorf("first counter = %d, want 1", *m.MessageCounter)
	}
	if *m.Address != 0xC1D2E3F4A5B6 {
		t.Errorf("address = %012X", *m.Address)
	}

	if wrong, err := Decode(buf, DefaultKey[:]); err == nil && wrong.Temperature != nil && math.Abs(*wrong.Temperature-21.5) < 0.01 {
		t.Error("decoding with the wrong key must not recover the reading")
	}
}

func TestDecode_FormatFA_ChecksumMismatch(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	buf := make([]byte, FormatFADataLength)
	if _, err := enc.Encode(buf, FormatFA); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	buf[formatFACRCOffset] ^= 0xFF
	if _, err := Decode(buf, DefaultKey[:]); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Decode error = %v, want ErrChecksumMismatch", err)
	}
}

func TestEncode_FormatFA_InvalidKeyLength(t *testing.T) {
	spy := &spyCipher{}
	enc := newTestEncoder(exampleReadings(), WithCipher(spy), WithKey([]byte{1, 2, 3}))
	buf := make([]byte, FormatFADataLength)

	n, err := enc.Encode(buf, FormatFA)
	if n != 0 {
		t.Errorf("length = %d, want 0", n)
	}
	if !errors.Is(err, StatusInvalidLength) {
		t.Errorf("expected StatusInvalidLength, got %v", err)
	}
	if spy.calls != 0 {
		t.Errorf("cipher called %d times, want 0", spy.calls)
	}
	if got := enc.State().CounterFA; got != 0 {
		t.Errorf("rejected key advanced the counter to %d", got)
	}
	if enc.IsFatal(err) {
		t.Error("invalid key length is not fatal under the default policy")
	}
}

func TestEncode_FormatFA_CipherFailure(t *testing.T) {
	spy := &spyCipher{err: errors.New("hardware busy")}
	enc := newTestEncoder(exampleReadings(), WithCipher(spy))
	buf := bytes.Repeat([]byte{0xAA}, FormatFADataLength)

	n, err := enc.Encode(buf, FormatFA)
	if n != 0 {
		t.Errorf("length = %d, want 0", n)
	}
	if !errors.Is(err, StatusInternal) {
		t.Errorf("expected StatusInternal, got %v", err)
	}
	if spy.calls != 1 {
		t.Errorf("cipher called %d times, want 1", spy.calls)
	}
	if !bytes.Equal(buf[formatFACiphertextOffset:formatFACiphertextOffset+FormatFACiphertextLen], make([]byte, FormatFACiphertextLen)) {
		t.Error("ciphertext region must be zeroed after a cipher failure")
	}
}

func TestEncode_FormatFA_CipherFailureKeepsCounter(t *testing.T) {
	cipher := &failingCipher{failOn: 2}
	enc := newTestEncoder(exampleReadings(), WithCipher(cipher))
	buf := make([]byte, FormatFADataLength)

	var counters []uint8
	for i := 1; i <= 3; i++ {
		n, err := enc.Encode(buf, FormatFA)
		if i == cipher.failOn {
			if n != 0 || !errors.Is(err, StatusInternal) {
				t.Fatalf("call %d: n = %d, err = %v, want 0 and StatusInternal", i, n, err)
			}
			if got := enc.State().CounterFA; got != 1 {
				t.Errorf("counter after failed encode = %d, want 1", got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("call %d: Encode failed: %v", i, err)
		}
		m, err := Decode(buf[:n], DefaultKey[:])
		if err != nil {
			t.Fatalf("call %d: Decode failed: %v", i, err)
		}
		counters = append(counters, *m.MessageCounter)
	}

	if len(counters) != 2 || counters[0] != 1 || counters[1] != 2 {
		t.Errorf("broadcast counters = %v, want [1 2]", counters)
	}
}

// ============================================================
// Dispatcher Tests
// ============================================================

func TestEncode_UnimplementedFormats(t *testing.T) {
	for _, format := range []Format{Format8, FormatInvalid, Format(0x42)} {
		enc := newTestEncoder(exampleReadings())
		buf := bytes.Repeat([]byte{0xAA}, MaxDataLength)

		n, err := enc.Encode(buf, format)
		if n != 0 {
			t.Errorf("format 0x%02X: length = %d, want 0", uint8(format), n)
		}
		if !errors.Is(err, StatusNotImplemented) {
			t.Errorf("format 0x%02X: expected StatusNotImplemented, got %v", uint8(format), err)
		}
		if !bytes.Equal(buf, bytes.Repeat([]byte{0xAA}, MaxDataLength)) {
			t.Errorf("format 0x%02X: buffer was modified", uint8(format))
		}
	}
}

func TestEncode_BufferTooSmall(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	buf := make([]byte, Format5DataLength-1)

	n, err := enc.Encode(buf, Format5)
	if n != 0 {
		t.Errorf("length = %d, want 0", n)
	}
	if !errors.Is(err, StatusInvalidLength) {
		t.Errorf("expected StatusInvalidLength, got %v", err)
	}
	if !bytes.Equal(buf, make([]byte, len(buf))) {
		t.Error("buffer was modified")
	}
	if enc.State().Sequence5 != 0 {
		t.Errorf("rejected call advanced the counter to %d", enc.State().Sequence5)
	}
}

func TestEncode_ReadFailuresAreBestEffort(t *testing.T) {
	radio := &fakeRadio{address: 0xAABBCCDDEEFF, tx: 0}
	enc := NewEncoder(exampleReadings(),
		WithBattery(&fakeBattery{err: errors.New("adc busy")}),
		WithRadio(radio),
	)
	buf := make([]byte, Format5DataLength)

	// Successful first read primes the last known address
	n, err := enc.Encode(buf, Format5)
	if n != Format5DataLength {
		t.Fatalf("length = %d, want %d", n, Format5DataLength)
	}
	if !errors.Is(err, StatusReadFailed) {
		t.Fatalf("expected StatusReadFailed, got %v", err)
	}

	radio.addrErr = errors.New("radio off")
	radio.txErr = errors.New("radio off")
	n, err = enc.Encode(buf, Format5)
	if n != Format5DataLength {
		t.Fatalf("degraded frame must still be emitted, length = %d", n)
	}

	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EncodeError, got %T", err)
	}
	if len(ee.Errs) != 3 {
		t.Errorf("expected 3 read failures, got %d: %v", len(ee.Errs), ee.Errs)
	}

	m, _ := DecodeFormat5(buf)
	if m.BatteryVoltage != nil {
		t.Errorf("battery should be invalid, got %v", *m.BatteryVoltage)
	}
	if m.TxPower != nil {
		t.Errorf("tx power should be invalid, got %v", *m.TxPower)
	}
	if *m.Address != 0xAABBCCDDEEFF {
		t.Errorf("address should fall back to last known value, got %012X", *m.Address)
	}
	if *m.Sequence != 2 {
		t.Errorf("sequence = %d, want 2", *m.Sequence)
	}
	assertNear(t, "temperature", m.Temperature, 21.5, 0.0025)
}

func TestEncode_MissingSources(t *testing.T) {
	enc := NewEncoder(exampleReadings())
	buf := make([]byte, Format3DataLength)

	n, err := enc.Encode(buf, Format3)
	if n != Format3DataLength {
		t.Errorf("length = %d, want %d", n, Format3DataLength)
	}
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource in chain, got %v", err)
	}
}

func TestEncode_FatalStatus(t *testing.T) {
	spy := &spyCipher{err: StatusFatal}
	enc := newTestEncoder(exampleReadings(), WithCipher(spy))
	buf := make([]byte, FormatFADataLength)

	_, err := enc.Encode(buf, FormatFA)
	if !enc.IsFatal(err) {
		t.Fatalf("expected fatal status, got %v", err)
	}

	var fatal *FatalError
	if !errors.As(enc.Policy().Check(err), &fatal) {
		t.Fatal("Check should return *FatalError")
	}
	if !fatal.Status.Has(StatusFatal | StatusInternal) {
		t.Errorf("fatal status = %s", fatal.Status)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustEncode should panic on fatal status")
		}
		if _, ok := r.(*FatalError); !ok {
			t.Errorf("panic value = %T, want *FatalError", r)
		}
	}()
	enc.MustEncode(buf, FormatFA)
}

func TestEncode_CustomFatalPolicy(t *testing.T) {
	enc := NewEncoder(exampleReadings(), WithFatalPolicy(FatalPolicy{Mask: StatusReadFailed}))
	buf := make([]byte, Format3DataLength)

	_, err := enc.Encode(buf, Format3)
	if !enc.IsFatal(err) {
		t.Errorf("missing battery source should be fatal under a read-failure mask, got %v", err)
	}
}

func TestEncode_ConcurrentCountersNeverSkip(t *testing.T) {
	enc := newTestEncoder(exampleReadings())
	const workers = 8
	const perWorker = 50

	var mu sync.Mutex
	seen := make(map[uint16]int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, Format5DataLength)
			for i := 0; i < perWorker; i++ {
				if _, err := enc.Encode(buf, Format5); err != nil {
					t.Errorf("Encode failed: %v", err)
					return
				}
				m, _ := DecodeFormat5(buf)
				mu.Lock()
				seen[*m.Sequence]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d distinct sequence values, got %d", workers*perWorker, len(seen))
	}
	for seq := 1; seq <= workers*perWorker; seq++ {
		if seen[uint16(seq)] != 1 {
			t.Errorf("sequence %d seen %d times", seq, seen[uint16(seq)])
		}
	}
}

func TestEncoder_RestoreRejectsOutOfRange(t *testing.T) {
	enc := NewEncoder(nil)
	if err := enc.Restore(FormatState{Sequence5: Format5SeqCtrMax}); err == nil {
		t.Error("expected error for sequence at wrap bound")
	}
	if err := enc.Restore(FormatState{CounterFA: FormatFACounterWrap}); err == nil {
		t.Error("expected error for FA counter at wrap bound")
	}
	if err := enc.Restore(FormatState{Sequence5: 10, CounterFA: 20}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if enc.State() != (FormatState{Sequence5: 10, CounterFA: 20}) {
		t.Errorf("state = %+v", enc.State())
	}
}

func TestEncoder_IndependentInstances(t *testing.T) {
	a := newTestEncoder(exampleReadings())
	b := newTestEncoder(exampleReadings())
	buf := make([]byte, Format5DataLength)

	for i := 0; i < 3; i++ {
		a.Encode(buf, Format5)
	}
	b.Encode(buf, Format5)

	if a.State().Sequence5 != 3 || b.State().Sequence5 != 1 {
		t.Errorf("counters leaked between encoders: a=%d b=%d", a.State().Sequence5, b.State().Sequence5)
	}
}
