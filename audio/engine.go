package audio

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultSampleRate = 48000
	eventBufferSize   = 1024
)

type command int32

const (
	cmdNone command = iota
	cmdStart
	cmdStop
)

// Engine is the metronome. Process runs on the audio callback; every other
// method belongs to the control side. The two sides share only Params, the
// pending start/stop command, the waveform table pointer and the event
// buffer.
type Engine struct {
	Params *Params

	table   atomic.Pointer[Table]
	pending atomic.Int32
	playing atomic.Bool // state requested by the control side

	// owned by the audio callback
	running bool
	tr      transport
	mix     *mixer
	rng     *rand.Rand
	now     func() time.Time
	base    time.Time

	events *eventBuffer

	mu    sync.Mutex // serializes table rebuilds
	noise *rand.Rand
}

type Option func(*Engine)

// WithSeed makes the random phase lengths and noise waveforms reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(seed, 1))
		e.noise = rand.New(rand.NewPCG(seed, 2))
	}
}

// WithClock replaces time.Now as the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an engine reading params, with the electronic palette
// synthesized at DefaultSampleRate.
func New(params *Params, opts ...Option) *Engine {
	if params == nil {
		params = NewParams()
	}
	seed := rand.Uint64()
	e := &Engine{
		Params: params,
		mix:    newMixer(maxVoices),
		events: newEventBuffer(eventBufferSize),
		rng:    rand.New(rand.NewPCG(seed, 1)),
		noise:  rand.New(rand.NewPCG(seed, 2)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.rebuild(PaletteElectronic, DefaultSampleRate); err != nil {
		panic(err)
	}
	return e
}

// Table returns the waveform table currently used by the callback.
func (e *Engine) Table() *Table { return e.table.Load() }

func (e *Engine) Palette() string     { return e.Table().Palette }
func (e *Engine) SampleRate() float64 { return e.Table().SampleRate }

// SetPalette replaces the waveform table with the named palette. Voices
// already sounding finish with the old waveforms.
func (e *Engine) SetPalette(name string) error {
	return e.rebuild(name, e.SampleRate())
}

// Configure rebuilds the waveform table for a new output sample rate. It must
// only be called while no stream is running.
func (e *Engine) Configure(sampleRate float64) error {
	return e.rebuild(e.Palette(), sampleRate)
}

func (e *Engine) rebuild(palette string, sampleRate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := Synthesize(palette, sampleRate, e.noise)
	if err != nil {
		return fmt.Errorf("synthesize %s: %w", palette, err)
	}
	e.table.Store(t)
	return nil
}

// RequestStart asks the callback to restart musical time at the beginning of
// its next buffer. Events still queued from an earlier run are discarded, so
// RequestStart must be called from the goroutine that drains events.
func (e *Engine) RequestStart() {
	e.events.drain(nil)
	e.playing.Store(true)
	e.pending.Store(int32(cmdStart))
}

// Pause stops playback at the beginning of the next buffer.
func (e *Engine) Pause() {
	e.playing.Store(false)
	e.pending.Store(int32(cmdStop))
}

// Playing reports whether playback was requested.
func (e *Engine) Playing() bool { return e.playing.Load() }

// Drain calls f for every queued event and returns the number of events.
func (e *Engine) Drain(f func(Event)) int { return e.events.drain(f) }

// Events appends the queued events to dst and returns the extended slice.
func (e *Engine) Events(dst []Event) []Event {
	e.events.drain(func(ev Event) { dst = append(dst, ev) })
	return dst
}

// Dropped returns the number of events and voices dropped because the event
// buffer or the voice list was full.
func (e *Engine) Dropped() (events, voices uint64) {
	return e.events.dropped.Load(), e.mix.dropped.Load()
}

// Process renders one buffer. All channels of out receive the same signal and
// must have the same length. Process never blocks and does not allocate.
func (e *Engine) Process(out [][]float32, status Status) {
	if len(out) == 0 {
		return
	}
	buf := out[0]
	for i := range buf {
		buf[i] = 0
	}
	defer copyChannels(out)

	frames := len(buf)
	start := e.tr.total
	e.tr.total += uint64(frames)
	e.base = e.now()

	switch command(e.pending.Swap(int32(cmdNone))) {
	case cmdStart:
		e.tr.reset(start)
		e.mix.reset()
		e.running = true
	case cmdStop:
		if e.running {
			e.running = false
			e.mix.reset()
			e.events.push(Event{Kind: KindPosition, Time: e.base, Position: -1})
		}
	}
	if status != 0 {
		e.events.push(Event{Kind: KindWarning, Time: e.base, Status: status})
	}
	table := e.table.Load()
	if !e.running || table == nil {
		return
	}

	s := e.Params.Snapshot()
	step := tickStep(table.SampleRate, s.BPM)
	tpb := ticksPerBar(s.BeatsPerBar)
	end := float64(start + uint64(frames))
	for e.tr.nextTick < end {
		off := int(e.tr.nextTick - float64(start))
		if off >= 0 && off < frames {
			e.trigger(&s, table, tpb, start, off)
		}
		e.tr.nextTick += step
		e.tr.tick++
	}

	e.mix.mix(buf)
	master := float32(s.Master)
	for i := range buf {
		buf[i] *= master
	}

	pos := e.tr.position(start+uint64(frames), table.SampleRate, s.BPM)
	if pos < -1 {
		pos = -1
	}
	e.events.push(Event{Kind: KindPosition, Time: e.base, Position: pos, Mute: e.tr.muted(&s)})
}

// trigger evaluates the tick at buffer index off.
func (e *Engine) trigger(s *Snapshot, table *Table, tpb, start uint64, off int) {
	tc := e.tr.tick
	if tc%tpb == 0 {
		e.tr.barBoundary(s, tpb, e.rng)
	}
	muted := e.tr.muted(s)
	tick := int(tc % TicksPerBeat)
	beat := int(tc%tpb/TicksPerBeat) + 1

	kinds := kindsAt(tick, beat, s.BeatsPerBar)
	for k := Kind(0); k < NumKinds; k++ {
		if !kinds[k] {
			continue
		}
		if gain := gainFor(k, muted, s); gain > 0 {
			e.mix.add(table.Waves[k], gain, off)
		}
	}

	if tick != 0 && tick != 6 {
		return
	}
	ev := Event{
		Kind: KindTick,
		Time: e.base.Add(time.Duration(float64(off) / table.SampleRate * float64(time.Second))),
		Mute: muted,
		Bar:  int(tc/tpb) + 1,
		Beat: beat,
		Tick: tick,
	}
	if tick == 0 {
		ev.Position = e.tr.position(start+uint64(off), table.SampleRate, s.BPM)
		ev.VisualError = VisualError(ev.Position)
	}
	e.events.push(ev)
}

func copyChannels(out [][]float32) {
	for ch := 1; ch < len(out); ch++ {
		copy(out[ch], out[0])
	}
}
