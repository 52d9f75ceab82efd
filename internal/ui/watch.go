package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/airsense/sds011/internal/sensor"
)

// Message types for async events
type measurementMsg sensor.Measurement

type streamClosedMsg struct{}

// watchKeyMap defines key bindings for the watch screen
type watchKeyMap struct {
	Quit key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

var watchKeys = watchKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// WatchModel is the Bubble Tea model for the live measurement view.
type WatchModel struct {
	stream <-chan sensor.Measurement
	port   string

	spinner spinner.Model
	keys    watchKeyMap
	help    help.Model

	latest *sensor.Measurement
	count  int
	closed bool
	width  int
}

// NewWatchModel creates a watch model consuming the given measurement stream.
func NewWatchModel(stream <-chan sensor.Measurement, port string) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(PrimaryColor)

	return WatchModel{
		stream:  stream,
		port:    port,
		spinner: sp,
		keys:    watchKeys,
		help:    help.New(),
		width:   GetTerminalWidth(),
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForMeasurement(m.stream))
}

// waitForMeasurement blocks on the stream and hands the next reading to the
// update loop.
func waitForMeasurement(stream <-chan sensor.Measurement) tea.Cmd {
	return func() tea.Msg {
		measurement, ok := <-stream
		if !ok {
			return streamClosedMsg{}
		}
		return measurementMsg(measurement)
	}
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}

	case measurementMsg:
		measurement := sensor.Measurement(msg)
		m.latest = &measurement
		m.count++
		return m, waitForMeasurement(m.stream)

	case streamClosedMsg:
		// Sensor stream ended (port failure or shutdown); leave the last
		// reading on screen and stop
		m.closed = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var view string

	view += TitleStyle.Render("SDS011 Live Measurements") + "\n"
	view += PortStyle.Render(m.port) + "\n\n"

	if m.latest == nil {
		view += StatusStyle.Render(m.spinner.View()+" waiting for first measurement...") + "\n"
	} else {
		view += LabelStyle.Render("PM2.5") +
			PM25ValueStyle(m.latest.PM25).Render(fmt.Sprintf("%6.1f µg/m³", m.latest.PM25)) + "\n"
		view += LabelStyle.Render("PM10") +
			PM10ValueStyle(m.latest.PM10).Render(fmt.Sprintf("%6.1f µg/m³", m.latest.PM10)) + "\n"
		view += LabelStyle.Render("Device") +
			ValueStyle.Render(fmt.Sprintf("0x%04X", m.latest.DeviceID)) + "\n\n"

		status := fmt.Sprintf("%s last update %s · %d readings",
			m.spinner.View(),
			m.latest.Timestamp.Format(time.TimeOnly),
			m.count,
		)
		view += StatusStyle.Render(status) + "\n"
	}

	if m.closed {
		view += StatusStyle.Render("measurement stream ended") + "\n"
	}

	view += "\n" + HelpStyle.Render(m.help.View(m.keys)) + "\n"
	return view
}

// RunWatch runs the live view until the user quits or ctx is cancelled.
func RunWatch(ctx context.Context, stream <-chan sensor.Measurement, port string) error {
	p := tea.NewProgram(NewWatchModel(stream, port), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
