package audio

import "math"

// envelope is an exponential decay starting at full level. After n calls to
// value the level is exp(-decay * n / sampleRate).
type envelope struct {
	val  float64
	rate float64
}

func newEnvelope(decay, sampleRate float64) envelope {
	return envelope{val: 1, rate: math.Exp(-decay / sampleRate)}
}

func (e *envelope) value() float64 {
	v := e.val
	e.val *= e.rate
	return v
}

func (e *envelope) process(buf []float64) {
	for n := range buf {
		buf[n] *= e.value()
	}
}
