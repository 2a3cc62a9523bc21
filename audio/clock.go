package audio

import "math"

// TicksPerBeat is the scheduling resolution. Twelve ticks cover the quarter
// (0), eighth (6), sixteenth (3, 9) and triplet (4, 8) subdivisions.
const TicksPerBeat = 12

// transport keeps track of musical time in samples. It is owned by the audio
// callback.
type transport struct {
	total      uint64  // samples produced since the stream started
	nextTick   float64 // sample position of the next tick, accumulated to avoid drift
	tick       uint64  // ticks scheduled since playback started
	zeroOffset uint64  // value of total when playback started

	barMute  bool
	phase    Phase
	barsLeft int // bars left in the current random phase
}

// reset restarts musical time at sample position at. The random phase is
// primed so that the first bar boundary opens a play run.
func (t *transport) reset(at uint64) {
	t.zeroOffset = at
	t.nextTick = float64(at)
	t.tick = 0
	t.barMute = false
	t.phase = PhaseMute
	t.barsLeft = 0
}

// tickStep returns the distance between two ticks in samples. A non-positive
// or NaN tempo is replaced by DefaultBPM.
func tickStep(sampleRate, bpm float64) float64 {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		bpm = DefaultBPM
	}
	return sampleRate * 60 / bpm / TicksPerBeat
}

// ticksPerBar returns the bar length in ticks, at least one beat.
func ticksPerBar(beatsPerBar int) uint64 {
	if beatsPerBar < 1 {
		beatsPerBar = 1
	}
	return uint64(TicksPerBeat * beatsPerBar)
}

// position returns the delay-compensated beat position at the absolute sample
// position at.
func (t *transport) position(at uint64, sampleRate, bpm float64) float64 {
	if at < t.zeroOffset {
		return -1
	}
	return beatPosition(at-t.zeroOffset, sampleRate, bpm)
}
