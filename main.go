// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Tagstat - Sensor Tag Beacon Toolkit
//
// Encodes environmental sensor readings into tag advertisement payloads,
// streams them to a radio bridge, and decodes and monitors them on the
// receiving side.

package main

import (
	"os"

	"github.com/Thermoquad/tagstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
