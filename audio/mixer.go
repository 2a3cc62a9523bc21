package audio

import "sync/atomic"

const maxVoices = 64

// voice is one sounding instance of a waveform.
type voice struct {
	wave   []float32
	cursor int     // next sample of wave to play
	gain   float32 // includes volume and mute-dim
	offset int     // buffer index the voice starts at, negative once it is playing
}

// mixer sums the active voices into the output buffer. Its voice list has a
// fixed capacity so adding and removing voices never allocates.
type mixer struct {
	voices  []voice
	dropped atomic.Uint64
}

func newMixer(capacity int) *mixer {
	return &mixer{voices: make([]voice, 0, capacity)}
}

// add schedules wave to start at offset in the current buffer. It returns
// false and counts the voice as dropped if the mixer is full.
func (m *mixer) add(wave []float32, gain float32, offset int) bool {
	if len(wave) == 0 {
		return true
	}
	if len(m.voices) == cap(m.voices) {
		m.dropped.Add(1)
		return false
	}
	m.voices = append(m.voices, voice{wave: wave, gain: gain, offset: offset})
	return true
}

// mix adds all voices to out and keeps those that are not exhausted, with
// offsets relative to the start of the next buffer.
func (m *mixer) mix(out []float32) {
	frames := len(out)
	kept := m.voices[:0]
	for _, v := range m.voices {
		start := v.offset
		if start < 0 {
			start = 0
		}
		if start >= frames {
			// starts in a later buffer
			v.offset -= frames
			kept = append(kept, v)
			continue
		}
		n := sum(out[start:], v.wave[v.cursor:], v.gain)
		v.cursor += n
		if v.cursor < len(v.wave) {
			v.offset -= frames
			kept = append(kept, v)
		}
	}
	// drop references to finished waveforms
	for i := len(kept); i < len(m.voices); i++ {
		m.voices[i] = voice{}
	}
	m.voices = kept
}

func (m *mixer) active() int { return len(m.voices) }

func (m *mixer) reset() {
	for i := range m.voices {
		m.voices[i] = voice{}
	}
	m.voices = m.voices[:0]
}

// sum adds src scaled by gain onto dst and returns the number of samples
// added.
func sum(dst, src []float32, gain float32) int {
	n := min(len(dst), len(src))
	for i, sample := range src[:n] {
		dst[i] += sample * gain
	}
	return n
}
