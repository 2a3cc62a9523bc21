package audio

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestSynthesize(t *testing.T) {
	for _, name := range Palettes() {
		table, err := Synthesize(name, testSampleRate, rand.New(rand.NewPCG(1, 2)))
		if err != nil {
			t.Fatal(err)
		}
		p := palettes[name]
		for k, wave := range table.Waves {
			var peak float64
			for _, l := range p[k].layers {
				peak += l.amp
			}
			if want, got := int(testSampleRate*p[k].duration), len(wave); want != got {
				t.Errorf("%s %s: want %v samples, got %v", name, Kind(k), want, got)
			}
			for i, v := range wave {
				if math.Abs(float64(v)) > peak+1e-6 {
					t.Fatalf("%s %s: sample %d out of range: %v", name, Kind(k), i, v)
				}
			}
		}
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	a, err := Synthesize(PaletteElectronic, testSampleRate, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Synthesize(PaletteElectronic, testSampleRate, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected equal tables for equal seeds")
	}
}

func TestSynthesizeErrors(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	if _, err := Synthesize("glass", testSampleRate, rng); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("expected ErrUnknownPalette, got %v", err)
	}
	if _, err := Synthesize(PaletteWoody, 0, rng); err == nil {
		t.Errorf("expected an error for a zero sample rate")
	}
}

func TestEnvelope(t *testing.T) {
	env := newEnvelope(20, testSampleRate)
	for n := 0; n < 1000; n++ {
		want := math.Exp(-20 * float64(n) / testSampleRate)
		if got := env.value(); math.Abs(want-got) > 1e-9 {
			t.Fatalf("sample %d: want %v, got %v", n, want, got)
		}
	}
}
