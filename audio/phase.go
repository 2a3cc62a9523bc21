package audio

import "math/rand/v2"

// Phase is the state of the random training mode.
type Phase int

const (
	PhasePlay Phase = iota
	PhaseMute
)

func (p Phase) String() string {
	if p == PhaseMute {
		return "mute"
	}
	return "play"
}

// barBoundary decides whether the bar starting at the current tick is muted.
// It must only be called when the tick counter sits on a bar boundary.
func (t *transport) barBoundary(s *Snapshot, tpb uint64, rng *rand.Rand) {
	if s.Random {
		if t.barsLeft <= 0 {
			if t.phase == PhasePlay {
				t.phase = PhaseMute
				t.barsLeft = runLength(rng, s.MuteMin, s.MuteMax)
			} else {
				t.phase = PhasePlay
				t.barsLeft = runLength(rng, s.PlayMin, s.PlayMax)
			}
		}
		t.barsLeft--
		t.barMute = t.phase == PhaseMute
		return
	}
	t.barMute = cycleMuted(t.tick/tpb, s.PlayBars, s.MuteBars)
}

// muted reports whether sounds in the current bar are muted. Force-play only
// masks the result; the bar bookkeeping keeps advancing underneath.
func (t *transport) muted(s *Snapshot) bool {
	return t.barMute && !s.ForcePlay
}

// cycleMuted reports whether bar (0-indexed) falls into the muted part of a
// cycle of play+mute bars.
func cycleMuted(bar uint64, play, mute int) bool {
	if play < 0 {
		play = 0
	}
	if mute < 0 {
		mute = 0
	}
	cycle := play + mute
	if cycle < 1 {
		cycle = 1
	}
	return bar%uint64(cycle) >= uint64(play)
}

// runLength draws a phase length uniformly from [min, max].
func runLength(rng *rand.Rand, min, max int) int {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return min + rng.IntN(max-min+1)
}
