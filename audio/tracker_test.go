package audio

import (
	"math"
	"testing"
	"time"
)

func TestTracker(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	beat := func(bar, n int, at time.Duration, mute bool) Event {
		return Event{Kind: KindTick, Time: epoch.Add(at), Bar: bar, Beat: n, Mute: mute, VisualError: 0.1234}
	}

	var tr Tracker
	if _, ok := tr.Track(beat(1, 1, 0, false), 120); ok {
		t.Errorf("expected no line for the first beat")
	}
	if _, ok := tr.Track(Event{Kind: KindTick, Tick: 6, Time: epoch.Add(250 * time.Millisecond)}, 120); ok {
		t.Errorf("expected no line for an eighth tick")
	}

	tests := []struct {
		ev   Event
		want string
	}{
		{beat(1, 2, 500400*time.Microsecond, false), "[PLAY] Bar:1 Beat:2 (Df:+0.4ms) | Vis:0.1234°"},
		{beat(1, 3, 1000*time.Millisecond, true), "[MUTE] Bar:1 Beat:3 (Df:-0.4ms) | Vis:0.1234°"},
	}
	for _, tt := range tests {
		got, ok := tr.Track(tt.ev, 120)
		if !ok {
			t.Fatalf("expected a line for %+v", tt.ev)
		}
		if got != tt.want {
			t.Errorf("want %q, got %q", tt.want, got)
		}
	}

	n, mean, max := tr.Stats()
	if n != 2 || math.Abs(mean) > 1e-9 || math.Abs(max-0.4) > 1e-9 {
		t.Errorf("unexpected stats: n=%v mean=%v max=%v", n, mean, max)
	}

	tr.Track(Event{Kind: KindPosition, Position: -1}, 120)
	if _, ok := tr.Track(beat(1, 1, 2*time.Second, false), 120); ok {
		t.Errorf("expected no line for the first beat after a stop")
	}
}
