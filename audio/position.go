package audio

import (
	"math"
	"time"
)

// VisualDelay is subtracted from the beat position so an animation driven by
// it lines up with the audio the listener hears.
const VisualDelay = 25 * time.Millisecond

// PendulumAmplitude is the maximum pendulum deflection in degrees.
const PendulumAmplitude = 30.0

// beatPosition converts samples elapsed since playback started into beats.
func beatPosition(elapsed uint64, sampleRate, bpm float64) float64 {
	beatsPerSec := bpm / 60
	return float64(elapsed)/sampleRate*beatsPerSec - VisualDelay.Seconds()*beatsPerSec
}

// PendulumAngle returns the pendulum deflection in degrees at beat position
// pos. The pendulum reaches a turning point on every beat.
func PendulumAngle(pos float64) float64 {
	return PendulumAmplitude * math.Cos(pos*math.Pi)
}

// VisualError is how far the pendulum is from its turning point at pos.
func VisualError(pos float64) float64 {
	return PendulumAmplitude - math.Abs(PendulumAngle(pos))
}
