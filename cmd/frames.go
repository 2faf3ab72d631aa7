// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
	"github.com/Thermoquad/tagstat/pkg/profile"
)

// frameReader decodes link frames from a connection. Decode errors before the
// first valid frame are counted as skipped bytes instead of being reported.
type frameReader struct {
	conn         Connection
	decoder      *link.Decoder
	synchronized bool
	skipped      int

	// onSync is called once, when the first valid frame arrives
	onSync func(skipped int)
	// onFrame is called for every frame or post-sync decode error
	onFrame func(frame *link.Frame, err error)
}

func newFrameReader(conn Connection) *frameReader {
	return &frameReader{
		conn:    conn,
		decoder: link.NewDecoder(),
		onSync:  func(int) {},
		onFrame: func(*link.Frame, error) {},
	}
}

// run reads until the connection fails or ctx is cancelled. Cancelling ctx
// closes the connection to unblock the pending read.
func (r *frameReader) run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { r.conn.Close() })
	defer stop()

	buf := make([]byte, 128)
	for {
		n, err := r.conn.Read(buf)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		for _, b := range buf[:n] {
			r.feed(b)
		}
	}
}

func (r *frameReader) feed(b byte) {
	frame, err := r.decoder.DecodeByte(b)
	if err != nil {
		if r.synchronized {
			r.onFrame(nil, err)
		} else {
			r.skipped++
		}
		return
	}
	if frame == nil {
		return
	}
	if !r.synchronized {
		r.synchronized = true
		r.onSync(r.skipped)
	}
	r.onFrame(frame, nil)
}

// parseHex parses hex with optional spaces, colons and a 0x prefix
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(s)
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return out, nil
}

// parseKey parses an optional FA key flag. Empty selects the built-in key.
func parseKey(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := parseHex(s)
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	if len(key) != dataformats.FormatFAKeyLen {
		return nil, fmt.Errorf("key must be %d bytes, got %d", dataformats.FormatFAKeyLen, len(key))
	}
	return key, nil
}

// loadBeacon loads, validates and assembles the beacon profile at path
func loadBeacon(path string) (*profile.Beacon, error) {
	p, err := profile.Load(path)
	if err != nil {
		return nil, err
	}
	b, err := profile.NewBeacon(p)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return b, nil
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
