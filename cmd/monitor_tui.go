// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/tagstat/pkg/dataformats"
	"github.com/Thermoquad/tagstat/pkg/link"
	"github.com/Thermoquad/tagstat/pkg/monitor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Event log entry
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for notices
}

// TUI model
type monitorModel struct {
	connInfo      string
	showAll       bool
	stats         *monitor.Statistics
	eventLog      []logEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	width         int
	height        int
	quitting      bool
	latest        map[dataformats.Format]frameResult
	spinner       spinner.Model
	readerErr     error
}

// Messages
type tickMsg time.Time
type frameMsg frameResult
type syncMsg struct {
	invalidBytes int
}
type readerDoneMsg struct {
	err error
}

func newMonitorModel(connInfo string, showAll bool) monitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return monitorModel{
		connInfo:      connInfo,
		showAll:       showAll,
		stats:         monitor.NewStatistics(),
		eventLog:      make([]logEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
		latest:        make(map[dataformats.Format]frameResult),
		spinner:       s,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case spinner.TickMsg:
		// The spinner only runs until the link is synchronized
		if m.synchronized {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case frameMsg:
		m.handleFrame(frameResult(msg))

	case readerDoneMsg:
		m.readerErr = msg.err
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Link closed: %v", msg.err), true)
		} else {
			m.addLogEntry("Link closed", true)
		}
	}

	return m, nil
}

func (m *monitorModel) handleFrame(r frameResult) {
	m.stats.Update(r.measurement, r.decodeErr, r.validationErrors)
	m.stats.Track(r.observation)

	if r.decodeErr != nil {
		m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", r.decodeErr), true)
		return
	}

	m.latest[r.measurement.Format] = r
	source := sourceName(r.measurement)

	switch r.observation.Result {
	case monitor.ResultGap:
		m.addLogEntry(fmt.Sprintf("%s: lost %d frame(s)", source, r.observation.Lost), true)
	case monitor.ResultDuplicate, monitor.ResultReordered:
		m.addLogEntry(fmt.Sprintf("%s: %s", source, r.observation.Result), true)
	}

	if len(r.validationErrors) > 0 {
		for _, v := range r.validationErrors {
			m.addLogEntry(fmt.Sprintf("%s: %s", source, v.Message), true)
		}
	} else if m.showAll {
		m.addLogEntry(fmt.Sprintf("%s (valid)", source), false)
	}
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func (m monitorModel) statsView() string {
	st := m.stats
	errorCount := st.CRCErrors + st.KeyErrors + st.DecodeErrors + st.AnomalousValues
	var validPercent, errorPercent float64
	if st.TotalFrames > 0 {
		validPercent = float64(st.ValidFrames) * 100.0 / float64(st.TotalFrames)
		errorPercent = float64(errorCount) * 100.0 / float64(st.TotalFrames)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", st.TotalFrames)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", st.ValidFrames, validPercent)),
		labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", errorCount, errorPercent)),
	))

	if st.CRCErrors > 0 || st.DecodeErrors > 0 || st.KeyErrors > 0 {
		b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("CRC:"), errorStyle.Render(fmt.Sprintf("%d", st.CRCErrors)),
			labelStyle.Render("Key:"), errorStyle.Render(fmt.Sprintf("%d", st.KeyErrors)),
			labelStyle.Render("Decode:"), errorStyle.Render(fmt.Sprintf("%d", st.DecodeErrors)),
		))
	}

	if st.AnomalousValues > 0 {
		b.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d, %s: %d)\n",
			labelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", st.AnomalousValues)),
			headerStyle.Render("temp"), st.InvalidTemp,
			headerStyle.Render("humidity"), st.InvalidHumidity,
			headerStyle.Render("pressure"), st.InvalidPressure,
			headerStyle.Render("missing"), st.MissingFields,
		))
	}

	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Lost:"), warningStyle.Render(fmt.Sprintf("%d (%.1f%%)", st.LostFrames, st.LossPercent())),
		labelStyle.Render("Duplicate:"), warningStyle.Render(fmt.Sprintf("%d", st.DuplicateFrames)),
		labelStyle.Render("Reordered:"), warningStyle.Render(fmt.Sprintf("%d", st.ReorderedFrames)),
	))

	rate := valueStyle
	if st.ErrorRate > 0 {
		rate = errorStyle
	}
	b.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", st.FrameRate)),
		labelStyle.Render("Error Rate:"), rate.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate)),
	))

	return boxStyle.Render(b.String())
}

func (m monitorModel) latestView() string {
	var b strings.Builder
	for _, f := range []dataformats.Format{dataformats.Format3, dataformats.Format5, dataformats.FormatFA} {
		r, ok := m.latest[f]
		if !ok {
			continue
		}
		meas := r.measurement
		line := fmt.Sprintf("%s %s  %s  %s  %s",
			labelStyle.Render(fmt.Sprintf("Format %-2s", dataformats.FormatName(f))),
			valueStyle.Render(optional(meas.Temperature, "%.2f°C")),
			valueStyle.Render(optional(meas.Humidity, "%.1f%%")),
			valueStyle.Render(optional(meas.Pressure, "%.0f Pa")),
			valueStyle.Render(optional(meas.BatteryVoltage, "%.3f V")),
		)
		if meas.Address != nil {
			line += "  " + headerStyle.Render(dataformats.FormatAddress(*meas.Address))
		}
		if v, _, ok := meas.Counter(); ok {
			line += "  " + headerStyle.Render(fmt.Sprintf("#%d", v))
		}
		b.WriteString(line + "\n")
	}
	return boxStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("TAGSTAT - MONITOR"))
	s.WriteString("\n")
	mode := "Problems only"
	if m.showAll {
		mode = "All measurements"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'r' reset, 'q' quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	// Sync status
	if !m.synchronized {
		s.WriteString(m.spinner.View())
		s.WriteString(warningStyle.Render(" Waiting for synchronization..."))
	} else {
		s.WriteString(valueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
	}
	s.WriteString("\n\n")

	m.stats.CalculateRates()
	s.WriteString(m.statsView())
	s.WriteString("\n\n")

	if len(m.latest) > 0 {
		s.WriteString(labelStyle.Render("Latest Measurements:"))
		s.WriteString("\n")
		s.WriteString(m.latestView())
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 18 // Reserve space for header, stats and latest
	if logHeight < 5 {
		logHeight = 5
	}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	var logContent strings.Builder
	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for _, entry := range m.eventLog[startIdx:] {
		timestamp := headerStyle.Render(entry.timestamp.Format("01/02/06 15:04:05.000"))
		if entry.isError {
			logContent.WriteString(fmt.Sprintf("%s %s\n", timestamp, errorStyle.Render("✗ "+entry.message)))
		} else {
			logContent.WriteString(fmt.Sprintf("%s %s\n", timestamp, warningStyle.Render("ℹ "+entry.message)))
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

// runMonitorTUI runs the monitor in TUI mode
func runMonitorTUI(cmd *cobra.Command, conn Connection, connInfo string, proc *frameProcessor) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(newMonitorModel(connInfo, showAll))

	reader := newFrameReader(conn)
	reader.onSync = func(skipped int) {
		p.Send(syncMsg{invalidBytes: skipped})
	}
	reader.onFrame = func(frame *link.Frame, err error) {
		p.Send(frameMsg(proc.process(frame, err)))
	}
	go func() {
		err := reader.run(ctx)
		p.Send(readerDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
