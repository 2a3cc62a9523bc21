package audio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	wav "github.com/youpy/go-wav"
)

func TestWriteWAV(t *testing.T) {
	wave := []float32{0, 0.5, -0.5, 1, -1, 2, -2}
	var buf bytes.Buffer
	if err := WriteWAV(&buf, wave, 44100); err != nil {
		t.Fatal(err)
	}

	r := wav.NewReader(bytes.NewReader(buf.Bytes()))
	format, err := r.Format()
	if err != nil {
		t.Fatal(err)
	}
	if format.NumChannels != 1 || format.SampleRate != 44100 || format.BitsPerSample != 16 {
		t.Errorf("unexpected format: %+v", format)
	}

	var got []int
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range samples {
			got = append(got, r.IntValue(s, 0))
		}
	}
	want := []int{0, 16384, -16384, 32767, -32767, 32767, -32767}
	if len(got) != len(want) {
		t.Fatalf("want %v samples, got %v", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("sample %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExport(t *testing.T) {
	e := newTestEngine(t)
	dir := filepath.Join(t.TempDir(), "sounds")
	paths, err := Export(dir, e.Table())
	if err != nil {
		t.Fatal(err)
	}
	if want, got := int(NumKinds), len(paths); want != got {
		t.Fatalf("expected %v files, got %v", want, got)
	}
	if want, got := filepath.Join(dir, "electronic-acc.wav"), paths[0]; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Error(err)
		}
	}
}
