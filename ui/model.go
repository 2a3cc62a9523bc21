// Package ui implements the terminal interface of the metronome.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrdg/innerpulse/audio"
	"github.com/mrdg/innerpulse/config"
)

const (
	pollInterval = 10 * time.Millisecond
	maxLogLines  = 6
)

// bufferSizes are the sizes the buffer key cycles through.
var bufferSizes = []int{64, 128, 256, 512}

// Controller is the control surface the UI drives.
type Controller interface {
	Toggle() bool
	Playing() bool
	Locked() bool
	Snapshot() audio.Snapshot
	NudgeBPM(delta float64)
	ToggleRandom() bool
	ToggleForcePlay() bool
	CycleTone() (string, error)
	Palette() string
	NextSong() (config.Song, error)
	PrevSong() (config.Song, error)
	Song() (config.Song, int)
	Describe() string
	Devices() ([]audio.Device, error)
	Device() (audio.Device, error)
	SetDevice(index int) (string, error)
	BufferSize() int
	SetBufferSize(n int) (string, error)
	Poll(f func(audio.Event), logf func(string))
}

type tickMsg time.Time

// Model is the Bubbletea model of the metronome UI.
type Model struct {
	ctl Controller

	pos      float64 // beat position, -1 when stopped
	mute     bool
	bar      int
	beat     int
	log      []string
	err      error
	quitting bool
	width    int
}

func NewModel(ctl Controller) Model {
	return Model{ctl: ctl, pos: -1}
}

// Run shows the UI until the user quits. Lines are shown in the log at
// startup.
func Run(ctl Controller, lines ...string) error {
	m := NewModel(ctl)
	for _, line := range lines {
		m.addLog(line)
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.poll()
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) poll() {
	m.ctl.Poll(func(ev audio.Event) {
		switch ev.Kind {
		case audio.KindPosition:
			m.pos = ev.Position
			m.mute = ev.Mute
			if ev.Position < 0 {
				m.bar, m.beat = 0, 0
			}
		case audio.KindTick:
			if ev.Tick == 0 {
				m.bar, m.beat = ev.Bar, ev.Beat
			}
		}
	}, m.addLog)
}

func (m *Model) addLog(line string) {
	m.log = append(m.log, line)
	if n := len(m.log) - maxLogLines; n > 0 {
		m.log = append(m.log[:0], m.log[n:]...)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
	case " ", "space", "enter":
		if !m.ctl.Toggle() {
			m.pos = -1
		}
	case "up", "k":
		m.ctl.NudgeBPM(1)
	case "down", "j":
		m.ctl.NudgeBPM(-1)
	case "pgup", "K":
		m.ctl.NudgeBPM(10)
	case "pgdown", "J":
		m.ctl.NudgeBPM(-10)
	case "t":
		_, m.err = m.ctl.CycleTone()
	case "r":
		m.ctl.ToggleRandom()
	case "f":
		m.ctl.ToggleForcePlay()
	case "n", "right":
		_, m.err = m.ctl.NextSong()
	case "p", "left":
		_, m.err = m.ctl.PrevSong()
	case "d":
		m.reboot(m.nextDevice)
	case "b":
		m.reboot(m.nextBufferSize)
	}
}

// reboot runs a stream change unless one is still settling.
func (m *Model) reboot(f func() (string, error)) {
	if m.ctl.Locked() {
		return
	}
	msg, err := f()
	if err != nil {
		m.err = err
		return
	}
	m.pos = -1
	m.addLog(msg)
}

func (m *Model) nextDevice() (string, error) {
	devices, err := m.ctl.Devices()
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", audio.ErrNoDevice
	}
	next := devices[0]
	if cur, err := m.ctl.Device(); err == nil {
		for i, d := range devices {
			if d.Index == cur.Index {
				next = devices[(i+1)%len(devices)]
			}
		}
	}
	return m.ctl.SetDevice(next.Index)
}

func (m *Model) nextBufferSize() (string, error) {
	size := m.ctl.BufferSize()
	next := bufferSizes[0]
	for i, n := range bufferSizes {
		if n == size {
			next = bufferSizes[(i+1)%len(bufferSizes)]
		}
	}
	return m.ctl.SetBufferSize(next)
}
