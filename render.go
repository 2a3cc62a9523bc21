package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mrdg/innerpulse/audio"
)

func renderStatus(s *session, w io.Writer) {
	snap := s.Snapshot()
	state := colorize("stopped", colorBlue)
	if s.Playing() {
		state = colorize("playing", colorGreen)
	}
	fmt.Fprintf(w, "%s  %s bpm  %d beats  tone %s\n",
		state, colorize(fmt.Sprintf("%g", snap.BPM), colorYellow), snap.BeatsPerBar, s.Palette())

	if snap.Random {
		fmt.Fprintf(w, "random  play %d:%d  mute %d:%d\n", snap.PlayMin, snap.PlayMax, snap.MuteMin, snap.MuteMax)
	} else {
		fmt.Fprintf(w, "cycle   %d/%d\n", snap.PlayBars, snap.MuteBars)
	}
	if snap.ForcePlay {
		fmt.Fprintln(w, colorize("force play", colorRed))
	}

	var voices []string
	for k := audio.Kind(0); k < audio.NumKinds; k++ {
		v := fmt.Sprintf("%s %.2f", k, snap.Volume[k])
		if snap.Ring[k] {
			v += "*"
		}
		voices = append(voices, v)
	}
	fmt.Fprintf(w, "volume  master %.2f  dim %.2f  %s\n", snap.Master, snap.MuteDim, strings.Join(voices, "  "))

	if song, i := s.Song(); i >= 0 {
		fmt.Fprintf(w, "song    %d. %s\n", i+1, song.Name)
	}
	fmt.Fprintf(w, "stream  %s\n", s.Describe())
}

// colorizeLine colors the phase tag of a tick log line.
func colorizeLine(line string) string {
	switch {
	case strings.HasPrefix(line, "[PLAY]"):
		return colorize("[PLAY]", colorGreen) + line[len("[PLAY]"):]
	case strings.HasPrefix(line, "[MUTE]"):
		return colorize("[MUTE]", colorMagenta) + line[len("[MUTE]"):]
	}
	return line
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
