package audio

import (
	"reflect"
	"testing"
)

func ramp(n int) []float32 {
	wave := make([]float32, n)
	for i := range wave {
		wave[i] = float32(i+1) / float32(n)
	}
	return wave
}

func TestMixOrderIndependent(t *testing.T) {
	a, b := ramp(100), ramp(37)

	m1 := newMixer(maxVoices)
	m1.add(a, 0.5, 3)
	m1.add(b, 0.25, 10)
	out1 := make([]float32, 128)
	m1.mix(out1)

	m2 := newMixer(maxVoices)
	m2.add(b, 0.25, 10)
	m2.add(a, 0.5, 3)
	out2 := make([]float32, 128)
	m2.mix(out2)

	if !reflect.DeepEqual(out1, out2) {
		t.Errorf("mix depends on the order voices were added")
	}
}

func TestMixAcrossBuffers(t *testing.T) {
	wave := ramp(1000)

	whole := newMixer(maxVoices)
	whole.add(wave, 0.7, 100)
	want := make([]float32, 1280)
	whole.mix(want)

	split := newMixer(maxVoices)
	split.add(wave, 0.7, 100)
	var got []float32
	for i := 0; i < 5; i++ {
		buf := make([]float32, 256)
		split.mix(buf)
		got = append(got, buf...)
	}

	if !reflect.DeepEqual(want, got) {
		t.Errorf("split rendering differs from a single buffer")
	}
	if split.active() != 0 {
		t.Errorf("expected the voice to be finished, got %d active", split.active())
	}
}

func TestMixFutureOffset(t *testing.T) {
	m := newMixer(maxVoices)
	m.add([]float32{1, 1}, 1, 300)

	out := make([]float32, 256)
	m.mix(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("expected silence, got %v at %d", v, i)
		}
	}
	if m.active() != 1 {
		t.Fatalf("expected the voice to be carried over")
	}

	out = make([]float32, 256)
	m.mix(out)
	if out[43] != 0 || out[44] != 1 || out[45] != 1 || out[46] != 0 {
		t.Errorf("voice not started at 44: %v", out[42:47])
	}
}

func TestMixerCapacity(t *testing.T) {
	m := newMixer(2)
	wave := ramp(10)
	if !m.add(wave, 1, 0) || !m.add(wave, 1, 0) {
		t.Fatalf("expected voices to be added")
	}
	if m.add(wave, 1, 0) {
		t.Errorf("expected the third voice to be dropped")
	}
	if want, got := uint64(1), m.dropped.Load(); want != got {
		t.Errorf("expected %v dropped voices, got %v", want, got)
	}
	m.reset()
	if m.active() != 0 {
		t.Errorf("expected no voices after reset")
	}
}
