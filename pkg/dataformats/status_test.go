// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStatus_Causes(t *testing.T) {
	s := StatusInvalidLength | StatusReadFailed | StatusFatal
	causes := s.Causes()

	expected := []Status{StatusInvalidLength, StatusReadFailed, StatusFatal}
	if len(causes) != len(expected) {
		t.Fatalf("causes = %v, want %v", causes, expected)
	}
	for i := range expected {
		if causes[i] != expected[i] {
			t.Errorf("cause %d = %s, want %s", i, causes[i], expected[i])
		}
	}

	if len(StatusSuccess.Causes()) != 0 {
		t.Error("success has no causes")
	}
}

func TestStatus_String(t *testing.T) {
	if StatusSuccess.String() != "success" {
		t.Errorf("success string = %q", StatusSuccess.String())
	}
	s := (StatusNotImplemented | StatusInternal).String()
	if !strings.Contains(s, "not implemented") || !strings.Contains(s, "internal error") {
		t.Errorf("combined string = %q", s)
	}
	if !strings.Contains(Status(1<<20).String(), "unknown") {
		t.Error("unknown bits should be reported")
	}
}

func TestStatus_Has(t *testing.T) {
	s := StatusInternal | StatusReadFailed
	if !s.Has(StatusInternal) || !s.Has(StatusInternal|StatusReadFailed) {
		t.Error("Has should match set bits")
	}
	if s.Has(StatusFatal) || s.Has(StatusInternal|StatusFatal) {
		t.Error("Has should require every bit")
	}
	if s.Has(StatusSuccess) {
		t.Error("Has(success) is always false")
	}
}

func TestStatusOf(t *testing.T) {
	ee := &EncodeError{Format: Format5, Status: StatusReadFailed}
	tests := []struct {
		name     string
		err      error
		expected Status
	}{
		{"nil", nil, StatusSuccess},
		{"encode error", ee, StatusReadFailed},
		{"wrapped encode error", fmt.Errorf("stream: %w", ee), StatusReadFailed},
		{"bare status", StatusNotImplemented, StatusNotImplemented},
		{"fatal error", &FatalError{Status: StatusFatal, Err: StatusFatal}, StatusFatal},
		{"foreign", errors.New("x"), StatusInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.expected {
				t.Errorf("StatusOf = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestFatalPolicy_Check(t *testing.T) {
	p := DefaultFatalPolicy

	if p.Check(nil) != nil {
		t.Error("nil error is never fatal")
	}
	if p.Check(&EncodeError{Status: StatusReadFailed | StatusInternal}) != nil {
		t.Error("non-fatal bits must not trigger the policy")
	}

	err := &EncodeError{Format: FormatFA, Status: StatusFatal | StatusInternal}
	fatal := p.Check(err)
	if fatal == nil {
		t.Fatal("fatal bit must trigger the policy")
	}
	if !errors.Is(fatal, StatusFatal) {
		t.Error("FatalError should unwrap to the encode error")
	}
}
