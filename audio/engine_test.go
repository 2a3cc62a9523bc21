package audio

import (
	"testing"
	"time"
)

const testSampleRate = 48000

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := New(NewParams(), WithSeed(1), WithClock(func() time.Time { return epoch }))
	if err := e.Configure(testSampleRate); err != nil {
		t.Fatal(err)
	}
	return e
}

// run processes n buffers of the given size and returns the tick events and
// the energy of the rendered signal.
func run(e *Engine, n, frames int) (ticks []Event, energy float64) {
	out := [][]float32{make([]float32, frames)}
	for i := 0; i < n; i++ {
		e.Process(out, 0)
		for _, v := range out[0] {
			energy += float64(v * v)
		}
		e.Drain(func(ev Event) {
			if ev.Kind == KindTick {
				ticks = append(ticks, ev)
			}
		})
	}
	return ticks, energy
}

// barMutes returns the mute flag of every bar seen in ticks, keyed by bar.
func barMutes(ticks []Event) map[int]bool {
	mutes := make(map[int]bool)
	for _, ev := range ticks {
		if ev.Tick == 0 && ev.Beat == 1 {
			mutes[ev.Bar] = ev.Mute
		}
	}
	return mutes
}

// At 120 bpm and 48kHz a tick is 2000 samples and a 4/4 bar 96000 samples,
// i.e. 200 buffers of 480 frames.
const (
	framesPerBuffer = 480
	buffersPerBar   = 200
)

func TestCyclicScenario(t *testing.T) {
	e := newTestEngine(t)
	e.Params.SetBPM(120)
	e.Params.SetBeatsPerBar(4)
	e.Params.SetCycle(3, 1)
	e.RequestStart()

	var ticks []Event
	for bar := 0; bar < 48; bar++ {
		barTicks, energy := run(e, buffersPerBar, framesPerBuffer)
		ticks = append(ticks, barTicks...)
		muted := bar%4 == 3
		if muted && energy != 0 {
			t.Errorf("bar %d: expected silence, got energy %v", bar, energy)
		}
		if !muted && energy == 0 {
			t.Errorf("bar %d: expected sound", bar)
		}
	}

	mutes := barMutes(ticks)
	if want, got := 48, len(mutes); want != got {
		t.Fatalf("expected %v bars, got %v", want, got)
	}
	for bar := 1; bar <= 48; bar++ {
		if want, got := (bar-1)%4 == 3, mutes[bar]; want != got {
			t.Errorf("bar %d: want mute=%v, got %v", bar, want, got)
		}
	}
}

func TestCyclicMuteProperty(t *testing.T) {
	for _, c := range []struct{ play, mute int }{{1, 1}, {3, 1}, {2, 3}, {4, 0}, {1, 7}} {
		for k := uint64(0); k < 100; k++ {
			want := int(k)%(c.play+c.mute) >= c.play
			if got := cycleMuted(k, c.play, c.mute); want != got {
				t.Errorf("play=%d mute=%d bar %d: want %v, got %v", c.play, c.mute, k, want, got)
			}
		}
	}
}

func TestForcePlay(t *testing.T) {
	e := newTestEngine(t)
	e.Params.SetCycle(3, 1)
	e.RequestStart()

	run(e, 3*buffersPerBar, framesPerBuffer)

	e.Params.SetForcePlay(true)
	ticks, energy := run(e, buffersPerBar, framesPerBuffer)
	if energy == 0 {
		t.Errorf("expected sound in forced mute bar")
	}
	for _, ev := range ticks {
		if ev.Mute {
			t.Fatalf("unexpected muted event in forced bar: %+v", ev)
		}
	}
	if !e.tr.barMute {
		t.Errorf("force-play should not change the cycle bookkeeping")
	}

	e.Params.SetForcePlay(false)
	ticks, _ = run(e, 4*buffersPerBar, framesPerBuffer)
	mutes := barMutes(ticks)
	want := map[int]bool{5: false, 6: false, 7: false, 8: true}
	for bar, mute := range want {
		if got := mutes[bar]; got != mute {
			t.Errorf("bar %d: want mute=%v, got %v", bar, mute, got)
		}
	}
}

func TestRandomRunLengths(t *testing.T) {
	e := newTestEngine(t)
	e.Params.SetBPM(1000)
	e.Params.SetRandom(true)
	e.Params.SetRandomRange(PhasePlay, 1, 3)
	e.Params.SetRandomRange(PhaseMute, 2, 4)
	e.RequestStart()

	// a bar is 4 * 12 * 240 = 11520 samples at 1000 bpm
	ticks, _ := run(e, 9000, 512)
	mutes := barMutes(ticks)
	if len(mutes) < 300 {
		t.Fatalf("expected at least 300 bars, got %d", len(mutes))
	}

	var runs []int
	var phases []bool
	for bar := 1; bar <= len(mutes); bar++ {
		m := mutes[bar]
		if len(phases) > 0 && phases[len(phases)-1] == m {
			runs[len(runs)-1]++
			continue
		}
		phases = append(phases, m)
		runs = append(runs, 1)
	}
	if phases[0] {
		t.Errorf("expected the first bar to play")
	}
	// the last run may be cut short
	for i, n := range runs[:len(runs)-1] {
		min, max := 1, 3
		if phases[i] {
			min, max = 2, 4
		}
		if n < min || n > max {
			t.Errorf("run %d (mute=%v): length %d not in [%d, %d]", i, phases[i], n, min, max)
		}
	}
}

func TestRandomPhaseAlternates(t *testing.T) {
	e := newTestEngine(t)
	s := DefaultSnapshot
	s.Random = true
	s.PlayMin, s.PlayMax = 2, 2
	s.MuteMin, s.MuteMax = 1, 1

	var tr transport
	tr.reset(0)
	var got []bool
	for bar := 0; bar < 9; bar++ {
		tr.barBoundary(&s, 48, e.rng)
		got = append(got, tr.barMute)
		tr.tick += 48
	}
	want := []bool{false, false, true, false, false, true, false, false, true}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("wrong mute sequence:\nwant: %v\ngot:  %v", want, got)
		}
	}
}

func TestStartStopIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.RequestStart()
	run(e, 10, 256)

	e.RequestStart()
	e.Pause()
	_, energy := run(e, 10, 256)
	if energy != 0 {
		t.Errorf("expected silence after start+stop, got energy %v", energy)
	}
	if n := e.mix.active(); n != 0 {
		t.Errorf("expected no voices, got %d", n)
	}

	total := e.tr.total
	e.RequestStart()
	_, energy = run(e, 1, 256)
	if e.tr.tick != 1 {
		t.Errorf("expected tick counter to restart, got %d", e.tr.tick)
	}
	if e.tr.zeroOffset != total {
		t.Errorf("want zero offset %d, got %d", total, e.tr.zeroOffset)
	}
	if energy == 0 {
		t.Errorf("expected the accent after restart")
	}
}

func TestPauseResetsPosition(t *testing.T) {
	e := newTestEngine(t)
	e.RequestStart()
	run(e, 4, 256)
	e.Pause()

	out := [][]float32{make([]float32, 256)}
	e.Process(out, 0)
	events := e.Events(nil)
	if len(events) != 1 || events[0].Kind != KindPosition || events[0].Position != -1 {
		t.Errorf("expected a single position reset, got %+v", events)
	}
	if e.Playing() {
		t.Errorf("expected engine not to be playing")
	}
}

func TestTriggerOffset(t *testing.T) {
	e := newTestEngine(t)
	e.Params.Load(Snapshot{
		BPM:         120,
		BeatsPerBar: 4,
		PlayBars:    1,
		Master:      1,
		Volume:      [NumKinds]float64{Sixteenth: 1},
	})
	e.RequestStart()

	out := [][]float32{make([]float32, 4096)}
	e.Process(out, 0)
	for i, v := range out[0] {
		if v != 0 {
			t.Fatalf("expected silence before the first sixteenth, got %v at %d", v, i)
		}
	}
	// tick 3 sits at sample 6000, i.e. 1904 into the second buffer
	e.Process(out, 0)
	for i, v := range out[0][:1904] {
		if v != 0 {
			t.Fatalf("sample %d: expected silence, got %v", i, v)
		}
	}
	if out[0][1904] == 0 {
		t.Errorf("expected the sixteenth to start at 1904")
	}
}

func TestMasterVolume(t *testing.T) {
	render := func(master float64) []float32 {
		e := newTestEngine(t)
		e.Params.SetMaster(master)
		e.RequestStart()
		out := [][]float32{make([]float32, 1024)}
		e.Process(out, 0)
		return out[0]
	}
	full := render(1)
	half := render(0.5)
	for i := range full {
		if full[i]*0.5 != half[i] {
			t.Fatalf("sample %d: want %v, got %v", i, full[i]*0.5, half[i])
		}
	}
}

func TestMuteDimRingThrough(t *testing.T) {
	e := newTestEngine(t)
	e.Params.SetCycle(1, 1)
	e.Params.SetMuteDim(0.5)
	e.Params.SetRing(Quarter, true)
	e.RequestStart()

	run(e, buffersPerBar, framesPerBuffer)
	// beat 1 of the muted bar carries the accent, which must stay silent
	_, accent := run(e, 50, framesPerBuffer)
	if accent != 0 {
		t.Errorf("expected the accent to be muted, got energy %v", accent)
	}
	_, quarters := run(e, 150, framesPerBuffer)
	if quarters == 0 {
		t.Errorf("expected dimmed quarter notes in the muted bar")
	}
}

func TestChannelsAndWarnings(t *testing.T) {
	e := newTestEngine(t)
	e.RequestStart()
	out := [][]float32{make([]float32, 512), make([]float32, 512)}
	e.Process(out, StatusOutputUnderflow)
	for i := range out[0] {
		if out[0][i] != out[1][i] {
			t.Fatalf("channels differ at %d", i)
		}
	}
	var warnings []Event
	e.Drain(func(ev Event) {
		if ev.Kind == KindWarning {
			warnings = append(warnings, ev)
		}
	})
	if len(warnings) != 1 || warnings[0].Status != StatusOutputUnderflow {
		t.Errorf("expected one underflow warning, got %+v", warnings)
	}
}

func TestTickEvents(t *testing.T) {
	e := newTestEngine(t)
	// every buffer is 10ms long
	var calls int
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time {
		now := epoch.Add(time.Duration(calls) * 10 * time.Millisecond)
		calls++
		return now
	}
	e.RequestStart()
	ticks, _ := run(e, buffersPerBar, framesPerBuffer)
	if want, got := 8, len(ticks); want != got {
		t.Fatalf("expected %v tick events in a bar, got %v", want, got)
	}
	for i, ev := range ticks {
		if want, got := i/2+1, ev.Beat; want != got {
			t.Errorf("event %d: want beat %v, got %v", i, want, got)
		}
		if want, got := (i%2)*6, ev.Tick; want != got {
			t.Errorf("event %d: want tick %v, got %v", i, want, got)
		}
		if ev.Tick == 0 && (ev.VisualError < 0 || ev.VisualError > 1) {
			t.Errorf("event %d: implausible visual error %v", i, ev.VisualError)
		}
	}
	// beat 2 starts 24000 samples after the start
	if want, got := 500*time.Millisecond, ticks[2].Time.Sub(ticks[0].Time); want != got {
		t.Errorf("want beat interval %v, got %v", want, got)
	}
}

func TestTableSwap(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetPalette(PaletteWoody); err != nil {
		t.Fatal(err)
	}
	if want, got := PaletteWoody, e.Palette(); want != got {
		t.Errorf("want palette %v, got %v", want, got)
	}
	if want, got := float64(testSampleRate), e.SampleRate(); want != got {
		t.Errorf("want sample rate %v, got %v", want, got)
	}
	if err := e.SetPalette("glass"); err == nil {
		t.Errorf("expected an error for an unknown palette")
	}
	if want, got := PaletteWoody, e.Palette(); want != got {
		t.Errorf("failed swap should keep %v, got %v", want, got)
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t)
	for k := Kind(0); k < NumKinds; k++ {
		e.Params.SetVolume(k, 1)
	}
	e.RequestStart()
	out := [][]float32{make([]float32, 256), make([]float32, 256)}
	allocs := testing.AllocsPerRun(500, func() {
		e.Process(out, 0)
		e.Drain(nil)
	})
	if allocs != 0 {
		t.Errorf("expected no allocations, got %v", allocs)
	}
}
