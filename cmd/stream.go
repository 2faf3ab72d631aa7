// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
	"github.com/Thermoquad/tagstat/pkg/profile"
	"github.com/spf13/cobra"
)

var (
	streamProfile     string
	streamCount       int
	streamMotionEvery int
	streamStdout      bool
	streamVerbose     bool
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream encoded frames from a beacon profile to the link",
	Long: `Simulate a beacon: cycle round-robin through the profile's enabled formats,
encode each payload, frame it and write it to the link every interval.

Formats that produce no payload (format 8) are skipped. Read failures are
logged and the frame is still sent. A fatal encoder status stops the stream.

Use --stdout to print frames as hex instead of opening a connection.`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)
	streamCmd.Flags().StringVar(&streamProfile, "profile", "", "Beacon profile (YAML)")
	streamCmd.Flags().IntVarP(&streamCount, "count", "n", 0, "Stop after this many frames (0 = run until interrupted)")
	streamCmd.Flags().IntVar(&streamMotionEvery, "motion-every", 0, "Record a movement event every N frames (0 = never)")
	streamCmd.Flags().BoolVar(&streamStdout, "stdout", false, "Write hex frames to stdout instead of the link")
	streamCmd.Flags().BoolVarP(&streamVerbose, "verbose", "v", false, "Log every frame")
	streamCmd.MarkFlagRequired("profile")
}

func runStream(cmd *cobra.Command, args []string) error {
	beacon, err := loadBeacon(streamProfile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var out io.Writer
	connInfo := "stdout"
	if streamStdout {
		out = hexLineWriter{w: os.Stdout}
	} else {
		conn, info, err := openConnection(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()
		out = conn
		connInfo = info
	}

	log.Printf("Tagstat - Stream")
	log.Printf("Connection: %s", connInfo)
	log.Printf("Formats: %s, interval %s", beacon.Formats, beacon.Interval)

	return streamFrames(ctx, beacon, out)
}

// streamFrames encodes and writes frames until ctx is done or the count is reached
func streamFrames(ctx context.Context, beacon *profile.Beacon, out io.Writer) error {
	if !producesPayload(beacon.Formats) {
		return fmt.Errorf("no enabled format produces a payload: %s", beacon.Formats)
	}

	ticker := time.NewTicker(beacon.Interval)
	defer ticker.Stop()

	buf := make([]byte, dataformats.MaxDataLength)
	current := dataformats.FormatInvalid
	sent := 0

	for first := true; streamCount == 0 || sent < streamCount; first = false {
		if !first {
			if ctx.Err() != nil {
				log.Printf("Stopped after %d frames", sent)
				return nil
			}
			select {
			case <-ctx.Done():
				log.Printf("Stopped after %d frames", sent)
				return nil
			case <-ticker.C:
			}
		}

		current = dataformats.Next(beacon.Formats, current)

		n, err := beacon.Encoder.Encode(buf, current)
		if beacon.Encoder.IsFatal(err) {
			log.Fatalf("fatal encoder status: %v", err)
		}
		if err != nil && (streamVerbose || !errors.Is(err, dataformats.StatusNotImplemented)) {
			log.Printf("format %s: %v", dataformats.FormatName(current), err)
		}
		if n == 0 {
			continue
		}

		frame, err := link.EncodeFrame(buf[:n])
		if err != nil {
			return err
		}
		if _, err := out.Write(frame); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		sent++

		if streamVerbose {
			log.Printf("sent format %s (%d bytes)", dataformats.FormatName(current), n)
		}
		if streamMotionEvery > 0 && sent%streamMotionEvery == 0 {
			beacon.Motion.Record()
		}
	}

	log.Printf("Sent %d frames", sent)
	return nil
}

// hexLineWriter writes each frame as one line of uppercase hex
type hexLineWriter struct {
	w io.Writer
}

func (h hexLineWriter) Write(p []byte) (int, error) {
	if _, err := fmt.Fprintln(h.w, strings.ToUpper(hex.EncodeToString(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// producesPayload reports whether any format in set encodes to a payload
func producesPayload(set dataformats.FormatSet) bool {
	for _, f := range set.Formats() {
		if dataformats.DataLength(f) > 0 {
			return true
		}
	}
	return false
}
