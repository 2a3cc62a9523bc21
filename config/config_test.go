package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mrdg/innerpulse/audio"
)

func TestLoadMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want := Default(); !reflect.DeepEqual(want, c) {
		t.Errorf("\nwant: %+v\ngot:  %+v", want, c)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"audio_device": "Speakers", "tone": "woody", "rnd_mute_max": 5}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.AudioDevice = "Speakers"
	want.Tone = audio.PaletteWoody
	want.RndMuteMax = 5
	if !reflect.DeepEqual(want, c) {
		t.Errorf("\nwant: %+v\ngot:  %+v", want, c)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err == nil {
		t.Errorf("expected a parse error")
	}
	if want := Default(); !reflect.DeepEqual(want, c) {
		t.Errorf("expected defaults, got %+v", c)
	}
}

func TestLoadBufferSize(t *testing.T) {
	tests := []struct {
		data string
		want int
		err  bool
	}{
		{`{"buffer_size": 256}`, 256, false},
		{`{"buffer_size": "512", "bpm": 90}`, 512, false},
		{`{"buffer_size": null}`, audio.DefaultBufferSize, false},
		{`{"buffer_size": "large"}`, audio.DefaultBufferSize, true},
		{`{"buffer_size": true}`, audio.DefaultBufferSize, true},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
			t.Fatal(err)
		}
		c, err := Load(path)
		if tt.err != (err != nil) {
			t.Errorf("%s: unexpected error value: %v", tt.data, err)
		}
		if c.BufferSize != tt.want {
			t.Errorf("%s: want buffer size %v, got %v", tt.data, tt.want, c.BufferSize)
		}
	}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"buffer_size": "64", "bpm": 90}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.BPM != 90 {
		t.Errorf("expected the other settings to load, got bpm %v", c.BPM)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	c := Default()
	c.BufferSize = 256
	c.BPM = 96.5
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, got) {
		t.Errorf("\nwant: %+v\ngot:  %+v", c, got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected temporary files to be cleaned up, got %v entries", len(entries))
	}
}

func TestApplyCapture(t *testing.T) {
	c := Default()
	c.BPM = 90
	c.BPB = 3
	c.Play = 2
	c.Mute = 2
	c.RndPlayMin, c.RndPlayMax = 3, 1

	p := audio.NewParams()
	c.Apply(p)
	s := p.Snapshot()
	if s.BPM != 90 || s.BeatsPerBar != 3 || s.PlayBars != 2 || s.MuteBars != 2 {
		t.Errorf("config not applied: %+v", s)
	}

	var got Config
	got.Capture(p)
	if want := 3; got.RndPlayMax != want {
		t.Errorf("expected the play range to be repaired to %v, got %v", want, got.RndPlayMax)
	}
}

func TestPath(t *testing.T) {
	got, err := Path("/etc/innerpulse", ConfigFilename)
	if err != nil {
		t.Fatal(err)
	}
	if want := "/etc/innerpulse/config.json"; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}
