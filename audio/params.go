package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
)

// Kind identifies one of the fixed percussive voices.
type Kind int

const (
	Accent Kind = iota
	Backbeat
	Quarter
	Eighth
	Sixteenth
	Triplet
	NumKinds
)

var kindNames = [NumKinds]string{"acc", "backbeat", "4th", "8th", "16th", "trip"}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given short name, e.g. "acc" or "16th".
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown voice %q", s)
}

const (
	DefaultBPM = 120.0
	MinBPM     = 1.0
	MaxBPM     = 1000.0

	MaxBeatsPerBar = 16
	MaxBars        = 64
)

var ErrUnknownParam = errors.New("unknown parameter")

// Params stores the live-tunable engine parameters. Every field is stored on
// its own, so the audio callback can read them without locks. Readers see
// each field as-of the moment it was loaded; there is no multi-field
// atomicity. Values are clamped on the way in.
type Params struct {
	bpm       atomicFloat
	bpb       atomic.Int64
	playBars  atomic.Int64
	muteBars  atomic.Int64
	master    atomicFloat
	volume    [NumKinds]atomicFloat
	muteDim   atomicFloat
	ring      [NumKinds]atomic.Bool
	forcePlay atomic.Bool
	random    atomic.Bool
	playMin   atomic.Int64
	playMax   atomic.Int64
	muteMin   atomic.Int64
	muteMax   atomic.Int64
}

// Snapshot is a plain copy of Params taken once per audio buffer.
type Snapshot struct {
	BPM         float64
	BeatsPerBar int
	PlayBars    int
	MuteBars    int
	Master      float64
	Volume      [NumKinds]float64
	MuteDim     float64
	Ring        [NumKinds]bool // play during muted bars
	ForcePlay   bool
	Random      bool
	PlayMin     int
	PlayMax     int
	MuteMin     int
	MuteMax     int
}

// DefaultSnapshot holds the values a fresh Params starts with.
var DefaultSnapshot = Snapshot{
	BPM:         DefaultBPM,
	BeatsPerBar: 4,
	PlayBars:    3,
	MuteBars:    1,
	Master:      0.8,
	Volume:      [NumKinds]float64{Accent: 0.8, Quarter: 0.5},
	PlayMin:     1,
	PlayMax:     2,
	MuteMin:     1,
	MuteMax:     2,
}

func NewParams() *Params {
	var p Params
	p.Load(DefaultSnapshot)
	return &p
}

// Snapshot copies every field. It does not allocate and is safe to call from
// the audio callback.
func (p *Params) Snapshot() Snapshot {
	s := Snapshot{
		BPM:         p.bpm.Load(),
		BeatsPerBar: int(p.bpb.Load()),
		PlayBars:    int(p.playBars.Load()),
		MuteBars:    int(p.muteBars.Load()),
		Master:      p.master.Load(),
		MuteDim:     p.muteDim.Load(),
		ForcePlay:   p.forcePlay.Load(),
		Random:      p.random.Load(),
		PlayMin:     int(p.playMin.Load()),
		PlayMax:     int(p.playMax.Load()),
		MuteMin:     int(p.muteMin.Load()),
		MuteMax:     int(p.muteMax.Load()),
	}
	for k := range s.Volume {
		s.Volume[k] = p.volume[k].Load()
		s.Ring[k] = p.ring[k].Load()
	}
	return s
}

// Load stores all fields of s, clamping them like the individual setters.
func (p *Params) Load(s Snapshot) {
	p.SetBPM(s.BPM)
	p.SetBeatsPerBar(s.BeatsPerBar)
	p.SetCycle(s.PlayBars, s.MuteBars)
	p.SetMaster(s.Master)
	p.SetMuteDim(s.MuteDim)
	for k := Kind(0); k < NumKinds; k++ {
		p.SetVolume(k, s.Volume[k])
		p.SetRing(k, s.Ring[k])
	}
	p.SetForcePlay(s.ForcePlay)
	p.SetRandom(s.Random)
	p.SetRandomRange(PhasePlay, s.PlayMin, s.PlayMax)
	p.SetRandomRange(PhaseMute, s.MuteMin, s.MuteMax)
}

// SetBPM stores the tempo. NaN and non-positive values fall back to
// DefaultBPM so the tick step can never become zero, negative or infinite.
func (p *Params) SetBPM(bpm float64) {
	if math.IsNaN(bpm) || bpm <= 0 {
		bpm = DefaultBPM
	}
	p.bpm.Store(clampFloat(bpm, MinBPM, MaxBPM))
}

func (p *Params) SetBeatsPerBar(n int) { p.bpb.Store(int64(clampInt(n, 1, MaxBeatsPerBar))) }

// SetCycle sets the number of played and muted bars of the cyclic mode.
func (p *Params) SetCycle(play, mute int) {
	p.playBars.Store(int64(clampInt(play, 1, MaxBars)))
	p.muteBars.Store(int64(clampInt(mute, 0, MaxBars)))
}

func (p *Params) SetMaster(v float64)  { p.master.Store(clampFloat(v, 0, 1)) }
func (p *Params) SetMuteDim(v float64) { p.muteDim.Store(clampFloat(v, 0, 1)) }

func (p *Params) SetVolume(k Kind, v float64) {
	if k >= 0 && k < NumKinds {
		p.volume[k].Store(clampFloat(v, 0, 1))
	}
}

// SetRing lets kind k sound during muted bars (scaled by the mute-dim level).
func (p *Params) SetRing(k Kind, on bool) {
	if k >= 0 && k < NumKinds {
		p.ring[k].Store(on)
	}
}

func (p *Params) SetForcePlay(on bool) { p.forcePlay.Store(on) }
func (p *Params) SetRandom(on bool)    { p.random.Store(on) }

// SetRandomRange sets the run length range of a random-mode phase. Both ends
// are at least 1; if min exceeds max, max is raised to min.
func (p *Params) SetRandomRange(ph Phase, min, max int) {
	min = clampInt(min, 1, MaxBars)
	max = clampInt(max, min, MaxBars)
	lo, hi := &p.playMin, &p.playMax
	if ph == PhaseMute {
		lo, hi = &p.muteMin, &p.muteMax
	}
	lo.Store(int64(min))
	hi.Store(int64(max))
}

func (p *Params) setRangeEnd(ph Phase, isMax bool, v int) {
	s := p.Snapshot()
	min, max := s.PlayMin, s.PlayMax
	if ph == PhaseMute {
		min, max = s.MuteMin, s.MuteMax
	}
	if isMax {
		max = v
	} else {
		min = v
	}
	p.SetRandomRange(ph, min, max)
}

// Set updates the parameter named key. Numeric values may be given as int or
// float64, flags as bool. Out of range values are clamped; an unknown key or
// a value of the wrong type is an error.
func (p *Params) Set(key string, value interface{}) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownParam, key)
	}
	if err := set(p, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Keys returns the names accepted by Set in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type setter func(p *Params, v interface{}) error

var setters = map[string]setter{
	"bpm":          floatSetter((*Params).SetBPM),
	"bpb":          intSetter((*Params).SetBeatsPerBar),
	"play":         intSetter(func(p *Params, n int) { p.SetCycle(n, int(p.muteBars.Load())) }),
	"mute":         intSetter(func(p *Params, n int) { p.SetCycle(int(p.playBars.Load()), n) }),
	"v_master":     floatSetter((*Params).SetMaster),
	"v_mute_dim":   floatSetter((*Params).SetMuteDim),
	"force_play":   boolSetter((*Params).SetForcePlay),
	"rnd":          boolSetter((*Params).SetRandom),
	"rnd_play_min": intSetter(func(p *Params, n int) { p.setRangeEnd(PhasePlay, false, n) }),
	"rnd_play_max": intSetter(func(p *Params, n int) { p.setRangeEnd(PhasePlay, true, n) }),
	"rnd_mute_min": intSetter(func(p *Params, n int) { p.setRangeEnd(PhaseMute, false, n) }),
	"rnd_mute_max": intSetter(func(p *Params, n int) { p.setRangeEnd(PhaseMute, true, n) }),
}

func init() {
	for k := Kind(0); k < NumKinds; k++ {
		k := k
		setters["v_"+k.String()] = floatSetter(func(p *Params, v float64) { p.SetVolume(k, v) })
		setters["ring_"+k.String()] = boolSetter(func(p *Params, on bool) { p.SetRing(k, on) })
	}
}

func floatSetter(set func(*Params, float64)) setter {
	return func(p *Params, v interface{}) error {
		switch n := v.(type) {
		case float64:
			set(p, n)
		case int:
			set(p, float64(n))
		default:
			return fmt.Errorf("value is not a number: %v", v)
		}
		return nil
	}
}

func intSetter(set func(*Params, int)) setter {
	return func(p *Params, v interface{}) error {
		switch n := v.(type) {
		case int:
			set(p, n)
		case float64:
			set(p, int(math.Round(n)))
		default:
			return fmt.Errorf("value is not an int: %v", v)
		}
		return nil
	}
}

func boolSetter(set func(*Params, bool)) setter {
	return func(p *Params, v interface{}) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("value is not a bool: %v", v)
		}
		set(p, b)
		return nil
	}
}

// atomicFloat is a float64 stored in an atomic.Uint64.
type atomicFloat struct{ bits atomic.Uint64 }

func (f *atomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }
func (f *atomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }

func clampFloat(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}
	return math.Max(min, math.Min(v, max))
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
