// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"errors"
	"fmt"
	"strings"
)

// Status is a bitmask of independently settable failure flags. Several causes
// may be set at once, e.g. a failed battery read on a frame that was still
// encoded.
type Status uint32

// Status flags
const (
	StatusSuccess        Status = 0
	StatusInvalidLength  Status = 1 << 0
	StatusInternal       Status = 1 << 1
	StatusNotImplemented Status = 1 << 2
	StatusReadFailed     Status = 1 << 3
	StatusInvalidParam   Status = 1 << 4
	StatusFatal          Status = 1 << 31
)

var statusNames = []struct {
	bit  Status
	name string
}{
	{StatusInvalidLength, "invalid length"},
	{StatusInternal, "internal error"},
	{StatusNotImplemented, "not implemented"},
	{StatusReadFailed, "read failed"},
	{StatusInvalidParam, "invalid parameter"},
	{StatusFatal, "fatal"},
}

// Has reports whether every bit of flag is set in s.
func (s Status) Has(flag Status) bool {
	return flag != 0 && s&flag == flag
}

// Causes returns each set flag individually, in bit order.
func (s Status) Causes() []Status {
	var causes []Status
	for bit := Status(1); bit != 0; bit <<= 1 {
		if s&bit != 0 {
			causes = append(causes, bit)
		}
	}
	return causes
}

// Error implements the error interface so a Status can be matched with errors.Is.
func (s Status) Error() string {
	return s.String()
}

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	var parts []string
	known := StatusSuccess
	for _, n := range statusNames {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
			known |= n.bit
		}
	}
	if rest := s &^ known; rest != 0 {
		parts = append(parts, fmt.Sprintf("unknown(0x%08X)", uint32(rest)))
	}
	return strings.Join(parts, " | ")
}

// EncodeError reports the aggregated status of one Encode call.
type EncodeError struct {
	Format Format
	Status Status
	Errs   []error // underlying failures, in the order they happened
}

// Error implements the error interface
func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("format %s: %s", FormatName(e.Format), e.Status)
	if len(e.Errs) > 0 {
		errs := make([]string, len(e.Errs))
		for i, err := range e.Errs {
			errs[i] = err.Error()
		}
		msg += " (" + strings.Join(errs, "; ") + ")"
	}
	return msg
}

// Is matches a Status target when all of its bits are set.
func (e *EncodeError) Is(target error) bool {
	if s, ok := target.(Status); ok {
		return e.Status.Has(s)
	}
	return false
}

// Unwrap exposes the underlying failures.
func (e *EncodeError) Unwrap() []error {
	return e.Errs
}

// StatusOf extracts the aggregated Status from an error returned by this package.
// A nil error is StatusSuccess; a foreign error is StatusInternal.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var ee *EncodeError
	if errors.As(err, &ee) {
		return ee.Status
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Status
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusInternal
}

// FatalError is returned by FatalPolicy.Check when a status must halt normal
// operation. Continuing could broadcast an undefined payload.
type FatalError struct {
	Status Status
	Err    error
}

// Error implements the error interface
func (f *FatalError) Error() string {
	return fmt.Sprintf("fatal status (%s): %v", f.Status, f.Err)
}

// Unwrap returns the underlying encode error.
func (f *FatalError) Unwrap() error {
	return f.Err
}

// FatalPolicy decides which status combinations are unrecoverable.
type FatalPolicy struct {
	Mask Status
}

// DefaultFatalPolicy treats only StatusFatal as unrecoverable.
var DefaultFatalPolicy = FatalPolicy{Mask: StatusFatal}

// IsFatal reports whether s intersects the policy's mask.
func (p FatalPolicy) IsFatal(s Status) bool {
	return s&p.Mask != 0
}

// Check returns a *FatalError wrapping err if its status is fatal, nil otherwise.
func (p FatalPolicy) Check(err error) error {
	if err == nil {
		return nil
	}
	s := StatusOf(err)
	if !p.IsFatal(s) {
		return nil
	}
	return &FatalError{Status: s, Err: err}
}
