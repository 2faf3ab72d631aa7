// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package profile

// Normalize applies defaults. It must be called only after Validate.
func Normalize(p *Profile) {
	if p == nil {
		return
	}

	if len(p.Stream.Formats) == 0 {
		p.Stream.Formats = append([]string(nil), DefaultFormats...)
	}

	if p.Stream.IntervalMs == 0 {
		p.Stream.IntervalMs = DefaultIntervalMs
	}
}
