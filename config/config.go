// Package config persists the engine settings and the setlist between runs.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mitchellh/go-homedir"

	"github.com/mrdg/innerpulse/audio"
)

const (
	DefaultDir      = "~/.innerpulse"
	ConfigFilename  = "config.json"
	SetlistFilename = "setlist.json"
	LogFilename     = "innerpulse.log"
)

// Config holds the settings restored at startup. AudioDevice is matched
// against device names; an empty name selects the default output device.
type Config struct {
	AudioDevice string  `json:"audio_device"`
	BufferSize  int     `json:"buffer_size"`
	Tone        string  `json:"tone"`
	BPM         float64 `json:"bpm"`
	BPB         int     `json:"bpb"`
	Play        int     `json:"play"`
	Mute        int     `json:"mute"`
	RndPlayMin  int     `json:"rnd_play_min"`
	RndPlayMax  int     `json:"rnd_play_max"`
	RndMuteMin  int     `json:"rnd_mute_min"`
	RndMuteMax  int     `json:"rnd_mute_max"`
}

// UnmarshalJSON accepts buffer_size both as a number and as a quoted number.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		BufferSize json.RawMessage `json:"buffer_size"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.BufferSize) == 0 || string(aux.BufferSize) == "null" {
		return nil
	}
	n, err := parseBufferSize(aux.BufferSize)
	if err != nil {
		return err
	}
	c.BufferSize = n
	return nil
}

func parseBufferSize(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("buffer_size: %s is not a number", raw)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("buffer_size: %w", err)
	}
	return n, nil
}

func Default() Config {
	d := audio.DefaultSnapshot
	return Config{
		BufferSize: audio.DefaultBufferSize,
		Tone:       audio.PaletteElectronic,
		BPM:        d.BPM,
		BPB:        d.BeatsPerBar,
		Play:       d.PlayBars,
		Mute:       d.MuteBars,
		RndPlayMin: d.PlayMin,
		RndPlayMax: d.PlayMax,
		RndMuteMin: d.MuteMin,
		RndMuteMax: d.MuteMax,
	}
}

// Load reads the config at path on top of the defaults. A missing file is
// not an error. If the file can't be parsed the defaults are returned along
// with the error.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Save writes the config to path, replacing the previous file atomically.
func (c Config) Save(path string) error {
	return writeJSON(path, c)
}

// Apply copies the persisted values into p. Values are clamped by p.
func (c Config) Apply(p *audio.Params) {
	p.SetBPM(c.BPM)
	p.SetBeatsPerBar(c.BPB)
	p.SetCycle(c.Play, c.Mute)
	p.SetRandomRange(audio.PhasePlay, c.RndPlayMin, c.RndPlayMax)
	p.SetRandomRange(audio.PhaseMute, c.RndMuteMin, c.RndMuteMax)
}

// Capture copies the current values of p into c.
func (c *Config) Capture(p *audio.Params) {
	s := p.Snapshot()
	c.BPM = s.BPM
	c.BPB = s.BeatsPerBar
	c.Play = s.PlayBars
	c.Mute = s.MuteBars
	c.RndPlayMin, c.RndPlayMax = s.PlayMin, s.PlayMax
	c.RndMuteMin, c.RndMuteMax = s.MuteMin, s.MuteMax
}

// Path joins name to dir after expanding a leading ~.
func Path(dir, name string) (string, error) {
	d, err := homedir.Expand(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

// Expand expands a leading ~ in path.
func Expand(path string) (string, error) {
	return homedir.Expand(path)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
