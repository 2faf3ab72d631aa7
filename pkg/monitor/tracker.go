// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package monitor tracks and records decoded beacon measurements on the
// receiving side of a link.
package monitor

import (
	"sync"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
)

// Result classifies one tracked measurement
type Result int

const (
	ResultUntracked Result = iota // format carries no counter
	ResultFirst                   // first counter seen for this source
	ResultInOrder
	ResultGap
	ResultDuplicate
	ResultReordered // counter went backwards by less than half the wrap bound
)

// String returns the result name
func (r Result) String() string {
	switch r {
	case ResultUntracked:
		return "untracked"
	case ResultFirst:
		return "first"
	case ResultInOrder:
		return "in-order"
	case ResultGap:
		return "gap"
	case ResultDuplicate:
		return "duplicate"
	case ResultReordered:
		return "reordered"
	default:
		return "unknown"
	}
}

// Observation is the outcome of Tracker.Observe
type Observation struct {
	Result Result
	Lost   uint32 // frames missing before this one, for ResultGap
}

type sourceKey struct {
	address uint64
	format  dataformats.Format
}

// Tracker follows the cyclic counter of each source address and format.
// It is safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	last map[sourceKey]uint32
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{last: make(map[sourceKey]uint32)}
}

// Observe records m and classifies its counter against the previous one
// from the same source.
func (t *Tracker) Observe(m *dataformats.Measurement) Observation {
	value, wrap, ok := m.Counter()
	if !ok || wrap == 0 {
		return Observation{Result: ResultUntracked}
	}

	key := sourceKey{format: m.Format}
	if m.Address != nil {
		key.address = *m.Address
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	last, seen := t.last[key]
	if !seen {
		t.last[key] = value
		return Observation{Result: ResultFirst}
	}

	delta := (value + wrap - last) % wrap
	switch {
	case delta == 0:
		return Observation{Result: ResultDuplicate}
	case delta == 1:
		t.last[key] = value
		return Observation{Result: ResultInOrder}
	case delta > wrap/2:
		return Observation{Result: ResultReordered}
	default:
		t.last[key] = value
		return Observation{Result: ResultGap, Lost: delta - 1}
	}
}

// Sources returns the number of tracked sources
func (t *Tracker) Sources() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}

// Reset forgets all sources
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[sourceKey]uint32)
}
