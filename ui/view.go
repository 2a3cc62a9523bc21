package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/mrdg/innerpulse/audio"
)

const pendulumWidth = 41

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	sections := []string{
		m.renderTitle(),
		m.renderSong(),
		"",
		m.renderPendulum(),
		m.renderBeats(),
		"",
		m.renderSettings(),
		"",
		m.renderLog(),
		"",
		helpStyle.Render("space start/stop  ↑↓ bpm  t tone  r random  f force  n/p song  d device  b buffer  q quit"),
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", m.err)))
	}
	return frameStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderTitle() string {
	var state string
	switch {
	case m.ctl.Locked():
		state = waitStyle.Render("WAIT")
	case m.ctl.Playing():
		state = playStyle.Render("PLAYING")
	default:
		state = dimStyle.Render("STOPPED")
	}
	return titleStyle.Render("I N N E R P U L S E") + "   " + state
}

func (m Model) renderSong() string {
	song, i := m.ctl.Song()
	if i < 0 {
		return ""
	}
	return labelStyle.Render("♪ ") + valueStyle.Render(fmt.Sprintf("%d. %s", i+1, song.Name))
}

// pendulumColumn maps a beat position to the column of the pendulum bob.
func pendulumColumn(pos float64, width int) int {
	center := width / 2
	if pos < 0 {
		return center
	}
	swing := audio.PendulumAngle(pos) / audio.PendulumAmplitude
	col := center + int(math.Round(swing*float64(center)))
	return max(0, min(width-1, col))
}

func (m Model) renderPendulum() string {
	col := pendulumColumn(m.pos, pendulumWidth)
	track := []rune(strings.Repeat("·", pendulumWidth))
	left := string(track[:col])
	right := string(track[col+1:])
	style := bobStyle
	if m.mute {
		style = muteStyle
	}
	return dimStyle.Render(left) + style.Render("●") + dimStyle.Render(right)
}

func (m Model) renderBeats() string {
	snap := m.ctl.Snapshot()
	var leds []string
	for i := 1; i <= snap.BeatsPerBar; i++ {
		switch {
		case i != m.beat:
			leds = append(leds, dimStyle.Render("○"))
		case m.mute:
			leds = append(leds, muteStyle.Render("●"))
		case i == 1:
			leds = append(leds, valueStyle.Render("●"))
		default:
			leds = append(leds, playStyle.Render("●"))
		}
	}
	bar := dimStyle.Render("bar -")
	if m.bar > 0 {
		bar = labelStyle.Render(fmt.Sprintf("bar %d", m.bar))
	}
	return strings.Join(leds, " ") + "   " + bar
}

func (m Model) renderSettings() string {
	snap := m.ctl.Snapshot()
	mode := fmt.Sprintf("cycle %d/%d", snap.PlayBars, snap.MuteBars)
	if snap.Random {
		mode = fmt.Sprintf("random play %d:%d mute %d:%d", snap.PlayMin, snap.PlayMax, snap.MuteMin, snap.MuteMax)
	}
	lines := []string{
		labelStyle.Render("BPM ") + valueStyle.Render(fmt.Sprintf("%g", snap.BPM)) +
			labelStyle.Render("   BEATS ") + valueStyle.Render(fmt.Sprint(snap.BeatsPerBar)) +
			labelStyle.Render("   TONE ") + valueStyle.Render(m.ctl.Palette()),
		labelStyle.Render("MODE ") + valueStyle.Render(mode),
	}
	if snap.ForcePlay {
		lines[1] += "  " + muteStyle.Render("FORCE")
	}
	lines = append(lines, dimStyle.Render(m.ctl.Describe()))
	return strings.Join(lines, "\n")
}

func (m Model) renderLog() string {
	lines := make([]string, maxLogLines)
	for i := range lines {
		lines[i] = dimStyle.Render("")
	}
	offset := maxLogLines - len(m.log)
	for i, line := range m.log {
		tag, rest := "", line
		if len(line) >= 6 {
			tag, rest = line[:6], line[6:]
		}
		style := playStyle
		if tag == "[MUTE]" {
			style = muteStyle
		}
		lines[offset+i] = style.Render(tag) + dimStyle.Render(rest)
	}
	return strings.Join(lines, "\n")
}
