// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
	"github.com/spf13/cobra"
)

var (
	rawLogDuration int
	rawLogBytes    bool
	rawLogKey      string
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Log link traffic as it arrives",
	Long: `Continuously log frames arriving on the link with a timestamp, the payload
in hex and the decoded measurement.

With --bytes, the raw byte stream is logged instead of frames, which helps
debugging link stability without relying on framing. With --duration the
command stops after that many seconds and prints a summary.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().IntVar(&rawLogDuration, "duration", 0, "Stop after this many seconds (0 = run until interrupted)")
	rawLogCmd.Flags().BoolVar(&rawLogBytes, "bytes", false, "Log raw bytes instead of frames")
	rawLogCmd.Flags().StringVar(&rawLogKey, "key", "", "FA key as 32 hex digits")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	key, err := parseKey(rawLogKey)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if rawLogDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(rawLogDuration)*time.Second)
		defer cancel()
	}

	conn, connInfo, err := openConnection(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Tagstat - Raw Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	start := time.Now()
	frames, errs, bytesReceived := 0, 0, 0

	if rawLogBytes {
		err = runRawBytes(ctx, conn, &bytesReceived)
	} else {
		reader := newFrameReader(conn)
		reader.onFrame = func(frame *link.Frame, err error) {
			timestamp := time.Now().Format("15:04:05.000")
			if err != nil {
				errs++
				fmt.Printf("[%s] [ERROR] %v\n", timestamp, err)
				return
			}
			frames++
			fmt.Printf("[%s] %X\n", timestamp, frame.Payload())
			m, err := dataformats.Decode(frame.Payload(), key)
			if err != nil {
				fmt.Printf("  decode: %v\n", err)
				return
			}
			fmt.Print(dataformats.FormatMeasurement(m))
		}
		err = reader.run(ctx)
	}
	if err != nil {
		log.Printf("Connection closed: %v", err)
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Duration: %s\n", time.Since(start).Round(time.Second))
	if rawLogBytes {
		fmt.Printf("Bytes received: %d\n", bytesReceived)
	} else {
		fmt.Printf("Frames received: %d\n", frames)
		fmt.Printf("Errors: %d\n", errs)
	}
	return nil
}

// runRawBytes logs every read as hex until ctx is done or the read fails
func runRawBytes(ctx context.Context, conn Connection, total *int) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		*total += n
		fmt.Printf("[%s] Received %d bytes: %x\n", time.Now().Format("15:04:05.000"), n, buf[:n])
	}
}
