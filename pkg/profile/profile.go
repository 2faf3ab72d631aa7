// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package profile loads beacon profiles and provides simulated sensor, battery,
// radio and motion sources backed by them.
package profile

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
)

// Defaults applied by Normalize
const (
	DefaultIntervalMs = 1000
)

// DefaultFormats are streamed when a profile lists none.
var DefaultFormats = []string{"3", "5", "fa"}

// Profile describes one simulated beacon.
type Profile struct {
	Device   DeviceConfig   `yaml:"device"`
	Readings ReadingsConfig `yaml:"readings"`
	Stream   StreamConfig   `yaml:"stream"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Address      string   `yaml:"address"`  // AA:BB:CC:DD:EE:FF, optional
	TxPower      *int8    `yaml:"tx_power"` // dBm, optional
	BatteryV     *float64 `yaml:"battery_v"`
	MotionEvents uint32   `yaml:"motion_events"`
	Key          string   `yaml:"key"` // 32 hex digits, optional
}

// ---- READINGS ----

// ReadingsConfig holds the sensor values. An omitted value is unavailable.
type ReadingsConfig struct {
	Temperature   *float64 `yaml:"temperature"`    // °C
	Humidity      *float64 `yaml:"humidity"`       // %RH
	Pressure      *float64 `yaml:"pressure"`       // Pa
	AccelerationX *float64 `yaml:"acceleration_x"` // g
	AccelerationY *float64 `yaml:"acceleration_y"` // g
	AccelerationZ *float64 `yaml:"acceleration_z"` // g
}

// ---- STREAM ----

type StreamConfig struct {
	Formats    []string `yaml:"formats"`
	IntervalMs int      `yaml:"interval_ms"`
}

// Load reads and parses the profile at path. It does not validate.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML profile. Unknown keys are rejected; an empty document
// yields an empty profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// Address returns the parsed device address. ok is false when none is set.
func (p *Profile) Address() (addr uint64, ok bool, err error) {
	if p.Device.Address == "" {
		return 0, false, nil
	}
	addr, err = ParseAddress(p.Device.Address)
	if err != nil {
		return 0, false, err
	}
	return addr, true, nil
}

// Key returns the FA key, or nil when the profile uses the built-in key.
func (p *Profile) Key() ([]byte, error) {
	if p.Device.Key == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(p.Device.Key)
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	return key, nil
}

// Formats returns the enabled format set.
func (p *Profile) Formats() (dataformats.FormatSet, error) {
	return dataformats.ParseFormatSet(strings.Join(p.Stream.Formats, ","))
}

// Interval returns the stream interval.
func (p *Profile) Interval() time.Duration {
	return time.Duration(p.Stream.IntervalMs) * time.Millisecond
}

// ParseAddress parses a 48-bit address written as six colon-separated hex
// octets, or as 12 bare hex digits.
func ParseAddress(s string) (uint64, error) {
	digits := strings.ReplaceAll(s, ":", "")
	if len(digits) != 2*dataformats.AddressSize {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	var addr uint64
	for _, b := range raw {
		addr = addr<<8 | uint64(b)
	}
	return addr, nil
}
