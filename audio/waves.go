package audio

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const twoPi = 2 * math.Pi

// Table holds one precomputed waveform per voice kind. A table is never
// modified once built; changing the palette or sample rate builds a new one.
type Table struct {
	Palette    string
	SampleRate float64
	Waves      [NumKinds][]float32
}

// Synthesize renders every voice of the named palette at sampleRate. Noise
// layers draw from rng.
func Synthesize(name string, sampleRate float64, rng *rand.Rand) (*Table, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %v", sampleRate)
	}
	p, err := lookupPalette(name)
	if err != nil {
		return nil, err
	}
	t := &Table{Palette: name, SampleRate: sampleRate}
	for k, r := range p {
		t.Waves[k] = r.render(sampleRate, rng)
	}
	return t, nil
}

func (r recipe) render(sampleRate float64, rng *rand.Rand) []float32 {
	n := int(sampleRate * r.duration)
	acc := make([]float64, n)
	tmp := make([]float64, n)
	for _, l := range r.layers {
		l.render(tmp, sampleRate, rng)
		for i, v := range tmp {
			acc[i] += v
			tmp[i] = 0
		}
	}
	out := make([]float32, n)
	for i, v := range acc {
		out[i] = float32(v)
	}
	return out
}

// render writes the layer into buf, which must be zeroed.
func (l layer) render(buf []float64, sampleRate float64, rng *rand.Rand) {
	delta := l.freq * twoPi / sampleRate
	var phase float64
	switch l.shape {
	case shapeSine:
		for n := range buf {
			buf[n] = math.Sin(phase)
			phase += delta
		}
	case shapeDriven:
		for n := range buf {
			buf[n] = math.Tanh(l.drive * math.Sin(phase))
			phase += delta
		}
	case shapeNoise:
		for n := range buf {
			buf[n] = rng.Float64()*2 - 1
		}
	case shapeSweep:
		glide := 0.0
		if len(buf) > 1 {
			glide = (l.freqEnd - l.freq) / float64(len(buf)-1)
		}
		for n := range buf {
			phase += (l.freq + glide*float64(n)) * twoPi / sampleRate
			buf[n] = math.Sin(phase)
		}
	}
	env := newEnvelope(l.decay, sampleRate)
	env.process(buf)
	for n := range buf {
		buf[n] *= l.amp
	}
}
