package audio

import (
	"fmt"
	"math"
	"time"
)

// Tracker turns beat events into log lines. Each line carries the deviation
// of the beat interval from the ideal interval at the current tempo.
type Tracker struct {
	last  time.Time
	diffs []float64 // ms
}

// Reset forgets the previous beat, e.g. after playback restarts.
func (t *Tracker) Reset() {
	t.last = time.Time{}
	t.diffs = t.diffs[:0]
}

// Track consumes ev and returns a log line for beat events after the first.
func (t *Tracker) Track(ev Event, bpm float64) (string, bool) {
	switch {
	case ev.Kind == KindPosition && ev.Position < 0:
		t.Reset()
		return "", false
	case ev.Kind != KindTick || ev.Tick != 0:
		return "", false
	}
	defer func() { t.last = ev.Time }()
	if t.last.IsZero() || bpm <= 0 {
		return "", false
	}
	beat := time.Duration(60 / bpm * float64(time.Second))
	df := float64(ev.Time.Sub(t.last)-beat) / float64(time.Millisecond)
	t.diffs = append(t.diffs, df)

	phase := "PLAY"
	if ev.Mute {
		phase = "MUTE"
	}
	return fmt.Sprintf("[%s] Bar:%d Beat:%d (Df:%+.1fms) | Vis:%.4f°",
		phase, ev.Bar, ev.Beat, df, ev.VisualError), true
}

// Stats returns the number of beat intervals tracked with their mean and
// largest absolute deviation in milliseconds.
func (t *Tracker) Stats() (n int, mean, max float64) {
	for _, d := range t.diffs {
		mean += d
		max = math.Max(max, math.Abs(d))
	}
	if len(t.diffs) > 0 {
		mean /= float64(len(t.diffs))
	}
	return len(t.diffs), mean, max
}
