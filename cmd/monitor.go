// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
	"github.com/Thermoquad/tagstat/pkg/monitor"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
	recordPath    string
	monitorKey    string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode, validate and track incoming frames",
	Long: `Decode every frame arriving on the link, validate the measurement it carries
and track the sequence counters of each beacon.

This command detects:
  - CRC errors and framing failures
  - FA payloads that fail their checksum (wrong key)
  - Implausible values (humidity > 100%, temperature outside -40..85°C, ...)
  - Lost, duplicate and reordered frames, per beacon address and format

By default, only problems are displayed. Use --show-all to display every
measurement. Use --record to append decoded measurements to a CBOR file.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all measurements (not just problems)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", false, "Use terminal UI")
	monitorCmd.Flags().StringVar(&recordPath, "record", "", "Append decoded measurements to this CBOR file")
	monitorCmd.Flags().StringVar(&monitorKey, "key", "", "FA key as 32 hex digits")
}

// frameResult is one processed link frame
type frameResult struct {
	timestamp        time.Time
	frame            *link.Frame
	measurement      *dataformats.Measurement
	decodeErr        error
	validationErrors []dataformats.ValidationError
	observation      monitor.Observation
}

// frameProcessor decodes, validates, tracks and records frames
type frameProcessor struct {
	key      []byte
	tracker  *monitor.Tracker
	recorder *monitor.Recorder
}

func (p *frameProcessor) process(frame *link.Frame, linkErr error) frameResult {
	r := frameResult{timestamp: time.Now(), frame: frame, decodeErr: linkErr}
	if linkErr != nil {
		return r
	}

	m, err := dataformats.Decode(frame.Payload(), p.key)
	if err != nil {
		r.decodeErr = err
		return r
	}
	r.measurement = m
	r.validationErrors = dataformats.ValidateMeasurement(m)
	r.observation = p.tracker.Observe(m)

	if p.recorder != nil {
		if err := p.recorder.Write(monitor.NewRecord(frame.Timestamp(), frame.Payload(), m)); err != nil {
			log.Printf("Record error: %v", err)
		}
	}
	return r
}

func runMonitor(cmd *cobra.Command, args []string) error {
	key, err := parseKey(monitorKey)
	if err != nil {
		return err
	}

	proc := &frameProcessor{key: key, tracker: monitor.NewTracker()}
	if recordPath != "" {
		f, err := os.OpenFile(recordPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open record file: %w", err)
		}
		defer f.Close()
		proc.recorder = monitor.NewRecorder(f)
	}

	conn, connInfo, err := openConnection(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	if useTUI {
		return runMonitorTUI(cmd, conn, connInfo, proc)
	}
	return runMonitorText(cmd, conn, connInfo, proc)
}

// runMonitorText prints problems as they happen and periodic statistics
func runMonitorText(cmd *cobra.Command, conn Connection, connInfo string, proc *frameProcessor) error {
	fmt.Printf("Tagstat - Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All measurements\n")
	} else {
		fmt.Printf("Mode: Problems only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := monitor.NewStatistics()
	results := make(chan frameResult, 16)
	done := make(chan error, 1)

	reader := newFrameReader(conn)
	reader.onSync = func(skipped int) {
		if skipped > 0 {
			fmt.Printf("[SYNC] Synchronized after skipping %d invalid bytes\n\n", skipped)
		} else {
			fmt.Printf("[SYNC] Synchronized\n\n")
		}
	}
	reader.onFrame = func(frame *link.Frame, err error) {
		results <- proc.process(frame, err)
	}
	go func() { done <- reader.run(cmd.Context()) }()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case r := <-results:
			stats.Update(r.measurement, r.decodeErr, r.validationErrors)
			stats.Track(r.observation)
			printFrameResult(r)

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()

		case err := <-done:
			fmt.Println()
			fmt.Print(stats.String())
			if proc.recorder != nil {
				fmt.Printf("Recorded %d measurements to %s\n", proc.recorder.Count(), recordPath)
			}
			return err
		}
	}
}

func printFrameResult(r frameResult) {
	timestamp := r.timestamp.Format("15:04:05.000")

	if r.decodeErr != nil {
		fmt.Printf("[%s] \033[1;31mDECODE ERROR:\033[0m %v\n", timestamp, r.decodeErr)
		if r.frame != nil {
			fmt.Print(dataformats.FormatPayload(r.frame.Payload()))
		}
		fmt.Printf("  >>> FRAME REJECTED <<<\n\n")
		return
	}

	m := r.measurement
	switch r.observation.Result {
	case monitor.ResultGap:
		fmt.Printf("[%s] \033[1;33mGAP:\033[0m %s lost %d frame(s)\n", timestamp, sourceName(m), r.observation.Lost)
	case monitor.ResultDuplicate, monitor.ResultReordered:
		fmt.Printf("[%s] \033[1;33m%s:\033[0m %s\n", timestamp, r.observation.Result, sourceName(m))
	}

	if len(r.validationErrors) > 0 {
		fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s\n", timestamp, sourceName(m))
		for i, v := range r.validationErrors {
			fmt.Printf("  Issue %d: %s\n", i+1, v.Message)
		}
		fmt.Print(dataformats.FormatMeasurement(m))
		fmt.Println()
		return
	}

	if showAll {
		fmt.Printf("[%s] ", timestamp)
		fmt.Print(dataformats.FormatMeasurement(m))
	}
}

// sourceName describes the beacon and format a measurement came from
func sourceName(m *dataformats.Measurement) string {
	if m.Address == nil {
		return fmt.Sprintf("format %s", dataformats.FormatName(m.Format))
	}
	return fmt.Sprintf("%s format %s", dataformats.FormatAddress(*m.Address), dataformats.FormatName(m.Format))
}
