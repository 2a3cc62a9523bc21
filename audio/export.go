package audio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	wav "github.com/youpy/go-wav"
)

// Export writes every waveform of t as a 16 bit mono WAV file named
// <palette>-<kind>.wav into dir and returns the paths written.
func Export(dir string, t *Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for k, wave := range t.Waves {
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.wav", t.Palette, Kind(k)))
		if err := exportFile(path, wave, t.SampleRate); err != nil {
			return paths, fmt.Errorf("export %s: %w", Kind(k), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func exportFile(path string, wave []float32, sampleRate float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteWAV(w, wave, sampleRate); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteWAV encodes wave as 16 bit mono PCM. Samples are clipped to [-1, 1].
func WriteWAV(w io.Writer, wave []float32, sampleRate float64) error {
	const scale = 1<<15 - 1
	samples := make([]wav.Sample, len(wave))
	for i, v := range wave {
		clipped := math.Max(-1, math.Min(float64(v), 1))
		samples[i].Values[0] = int(math.Round(clipped * scale))
	}
	ww := wav.NewWriter(w, uint32(len(samples)), 1, uint32(sampleRate), 16)
	return ww.WriteSamples(samples)
}
