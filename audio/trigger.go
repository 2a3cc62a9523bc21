package audio

// kindsAt reports which voice kinds are scheduled at tick (0-11) of beat
// (1-based). The backbeat is evaluated on its own and can coincide with the
// quarter note.
func kindsAt(tick, beat, beatsPerBar int) (kinds [NumKinds]bool) {
	switch tick {
	case 0:
		kinds[Backbeat] = beatsPerBar >= 4 && (beat == 2 || beat == 4)
		kinds[Accent] = beat == 1
		kinds[Quarter] = beat != 1
	case 6:
		kinds[Eighth] = true
	case 3, 9:
		kinds[Sixteenth] = true
	case 4, 8:
		kinds[Triplet] = true
	}
	return kinds
}

// gainFor returns the gain a new voice of kind k starts with, or 0 if the
// kind must stay silent. During a muted bar only kinds allowed to ring
// through sound, scaled by the mute-dim level.
func gainFor(k Kind, muted bool, s *Snapshot) float32 {
	vol := s.Volume[k]
	if vol <= 0 {
		return 0
	}
	if muted && !s.Ring[k] {
		return 0
	}
	gain := vol
	if muted {
		gain *= s.MuteDim
	}
	if gain <= 0 {
		return 0
	}
	return float32(gain)
}
