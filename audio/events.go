package audio

import (
	"strings"
	"sync/atomic"
	"time"
)

type EventKind int

const (
	// KindPosition is posted once per audio buffer with the current beat
	// position for animation. A position of -1 means playback stopped.
	KindPosition EventKind = iota
	// KindTick is posted on ticks 0 and 6 of every beat.
	KindTick
	// KindWarning reports a non-fatal stream status such as an underflow.
	KindWarning
)

func (k EventKind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindTick:
		return "tick"
	case KindWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Event is a snapshot of the engine state posted from the audio callback.
type Event struct {
	Kind     EventKind
	Time     time.Time
	Position float64 // beat position, delay-compensated
	Mute     bool
	Bar      int // 1-based
	Beat     int // 1-based
	Tick     int // 0 or 6 for KindTick

	// VisualError is 30° minus the absolute pendulum angle at a beat. It is
	// set on tick 0 events and only used for diagnostics.
	VisualError float64
	Status      Status
}

// Status carries the stream flags reported with an audio buffer.
type Status uint8

const (
	StatusOutputUnderflow Status = 1 << iota
	StatusOutputOverflow
	StatusPriming
)

func (s Status) String() string {
	if s == 0 {
		return "ok"
	}
	var parts []string
	if s&StatusOutputUnderflow != 0 {
		parts = append(parts, "output underflow")
	}
	if s&StatusOutputOverflow != 0 {
		parts = append(parts, "output overflow")
	}
	if s&StatusPriming != 0 {
		parts = append(parts, "priming output")
	}
	return strings.Join(parts, ", ")
}

// eventBuffer is a lock-free spsc queue. The producer never waits: events
// pushed into a full buffer are dropped and counted.
type eventBuffer struct {
	events      []Event
	read, write atomic.Uint32
	dropped     atomic.Uint64
}

func newEventBuffer(size int) *eventBuffer {
	if size <= 0 || size&(size-1) != 0 {
		panic("event buffer size must be a power of 2")
	}
	return &eventBuffer{events: make([]Event, size)}
}

func (b *eventBuffer) push(ev Event) bool {
	write := b.write.Load()
	if write-b.read.Load() == uint32(len(b.events)) {
		b.dropped.Add(1)
		return false
	}
	b.events[write%uint32(len(b.events))] = ev
	b.write.Store(write + 1)
	return true
}

// drain calls f for every queued event in order and returns how many there
// were.
func (b *eventBuffer) drain(f func(Event)) int {
	read := b.read.Load()
	write := b.write.Load()
	n := int(write - read)
	for read != write {
		ev := b.events[read%uint32(len(b.events))]
		read++
		b.read.Store(read)
		if f != nil {
			f(ev)
		}
	}
	return n
}
