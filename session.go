package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mrdg/innerpulse/audio"
	"github.com/mrdg/innerpulse/config"
)

const (
	deviceLock = 1500 * time.Millisecond
	bufferLock = time.Second
)

// streamSink is the output the session boots. *audio.Sink implements it.
type streamSink interface {
	Boot(index, bufferSize int) (string, error)
	Device() (audio.Device, error)
	BufferSize() int
	Describe() string
	Close() error
}

// session is the control side of the metronome. Its methods are called from
// the REPL or the TUI.
type session struct {
	engine *audio.Engine
	sink   streamSink

	// pollMu makes the goroutines that drain events a single consumer.
	pollMu  sync.Mutex
	tracker audio.Tracker

	mu          sync.Mutex
	cfg         config.Config
	cfgPath     string
	setlist     *config.Setlist
	setlistPath string
	lockedUntil time.Time
	dropped     [2]uint64
	now         func() time.Time
}

func newSession(engine *audio.Engine, sink streamSink, cfg config.Config, cfgPath string, setlist *config.Setlist, setlistPath string) *session {
	return &session{
		engine:      engine,
		sink:        sink,
		cfg:         cfg,
		cfgPath:     cfgPath,
		setlist:     setlist,
		setlistPath: setlistPath,
		now:         time.Now,
	}
}

// Boot opens the configured output device, falling back to the default
// device if it is gone.
func (s *session) Boot(index int) (string, error) {
	s.mu.Lock()
	name, bufferSize := s.cfg.AudioDevice, s.cfg.BufferSize
	s.mu.Unlock()
	if index < 0 && name != "" {
		index = s.deviceIndex(name)
	}
	msg, err := s.sink.Boot(index, bufferSize)
	if err != nil && index >= 0 {
		slog.Warn("device unavailable, using default", "index", index, "err", err)
		msg, err = s.sink.Boot(-1, bufferSize)
	}
	if err != nil {
		return "", err
	}
	slog.Info("boot", "stream", msg)
	return msg, nil
}

func (s *session) deviceIndex(name string) int {
	devices, err := audio.ListDevices()
	if err != nil {
		return -1
	}
	for _, d := range devices {
		if d.Name == name {
			return d.Index
		}
	}
	return -1
}

func (s *session) Start() {
	s.pollMu.Lock()
	s.tracker.Reset()
	s.engine.RequestStart()
	s.pollMu.Unlock()
	snap := s.engine.Params.Snapshot()
	slog.Info("start", "bpm", snap.BPM, "stream", s.sink.Describe())
}

func (s *session) Pause() {
	s.engine.Pause()
	s.pollMu.Lock()
	n, mean, max := s.tracker.Stats()
	s.pollMu.Unlock()
	if n > 0 {
		slog.Info("stop", "beats", n, "mean_ms", fmt.Sprintf("%+.2f", mean), "max_ms", fmt.Sprintf("%.2f", max))
	}
}

// Toggle starts or pauses playback and reports whether it is playing. It
// does nothing while the controls are locked after a device change.
func (s *session) Toggle() bool {
	if s.Locked() {
		return s.engine.Playing()
	}
	if s.engine.Playing() {
		s.Pause()
		return false
	}
	s.Start()
	return true
}

func (s *session) Playing() bool { return s.engine.Playing() }

func (s *session) Snapshot() audio.Snapshot { return s.engine.Params.Snapshot() }

// Set updates an engine parameter. Random range changes are persisted.
func (s *session) Set(key string, v interface{}) error {
	if err := s.engine.Params.Set(key, v); err != nil {
		return err
	}
	switch key {
	case "rnd_play_min", "rnd_play_max", "rnd_mute_min", "rnd_mute_max":
		return s.save()
	}
	return nil
}

// SetRandomRange sets the run length range of a random phase and persists
// it.
func (s *session) SetRandomRange(ph audio.Phase, min, max int) error {
	s.engine.Params.SetRandomRange(ph, min, max)
	return s.save()
}

// NudgeBPM changes the tempo by delta.
func (s *session) NudgeBPM(delta float64) {
	s.engine.Params.SetBPM(s.Snapshot().BPM + delta)
}

func (s *session) ToggleRandom() bool {
	on := !s.Snapshot().Random
	s.engine.Params.SetRandom(on)
	return on
}

func (s *session) ToggleForcePlay() bool {
	on := !s.Snapshot().ForcePlay
	s.engine.Params.SetForcePlay(on)
	return on
}

func (s *session) Palette() string { return s.engine.Palette() }

func (s *session) SetTone(name string) error {
	if err := s.engine.SetPalette(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg.Tone = name
	s.mu.Unlock()
	return s.save()
}

// CycleTone switches to the next palette.
func (s *session) CycleTone() (string, error) {
	names := audio.Palettes()
	next := names[0]
	for i, name := range names {
		if name == s.Palette() {
			next = names[(i+1)%len(names)]
		}
	}
	return next, s.SetTone(next)
}

func (s *session) Devices() ([]audio.Device, error) { return audio.ListDevices() }
func (s *session) Device() (audio.Device, error)    { return s.sink.Device() }
func (s *session) BufferSize() int                  { return s.sink.BufferSize() }

// SetDevice reopens the stream on the device with the given index.
func (s *session) SetDevice(index int) (string, error) {
	msg, err := s.reboot(index, s.sink.BufferSize(), deviceLock)
	if err != nil {
		return "", err
	}
	d, err := s.sink.Device()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.cfg.AudioDevice = d.Name
	s.mu.Unlock()
	return msg, s.save()
}

// SetBufferSize reopens the stream on the current device with n frames per
// buffer.
func (s *session) SetBufferSize(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid buffer size: %d", n)
	}
	index := -1
	if d, err := s.sink.Device(); err == nil {
		index = d.Index
	}
	msg, err := s.reboot(index, n, bufferLock)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.cfg.BufferSize = n
	s.mu.Unlock()
	return msg, s.save()
}

func (s *session) reboot(index, bufferSize int, lock time.Duration) (string, error) {
	s.mu.Lock()
	s.lockedUntil = s.now().Add(lock)
	s.mu.Unlock()
	msg, err := s.sink.Boot(index, bufferSize)
	if err != nil {
		return "", fmt.Errorf("boot: %w", err)
	}
	slog.Info("boot", "stream", msg)
	return msg, nil
}

// Locked reports whether the controls are still locked after a device or
// buffer change.
func (s *session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.lockedUntil)
}

func (s *session) Describe() string { return s.sink.Describe() }

func (s *session) Song() (config.Song, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, err := s.setlist.Current()
	if err != nil {
		return config.Song{}, -1
	}
	return song, s.setlist.Index()
}

// NextSong moves through the setlist and applies the tempo and meter of the
// selected song. Playback stops first so the new meter starts on a fresh bar.
func (s *session) NextSong() (config.Song, error) { return s.moveSong((*config.Setlist).Next) }
func (s *session) PrevSong() (config.Song, error) { return s.moveSong((*config.Setlist).Prev) }

// SelectSong jumps to the song at 1-based position n.
func (s *session) SelectSong(n int) (config.Song, error) {
	return s.moveSong(func(l *config.Setlist) (config.Song, error) {
		return l.Select(n - 1)
	})
}

func (s *session) moveSong(move func(*config.Setlist) (config.Song, error)) (config.Song, error) {
	s.mu.Lock()
	song, err := move(s.setlist)
	s.mu.Unlock()
	if err != nil {
		return song, err
	}
	if s.engine.Playing() {
		s.Pause()
	}
	song.Apply(s.engine.Params)
	return song, nil
}

// AddSong appends a song to the setlist.
func (s *session) AddSong(song config.Song) error {
	if song.Name == "" {
		return errors.New("song needs a name")
	}
	if song.BPM < audio.MinBPM || song.BPM > audio.MaxBPM {
		return fmt.Errorf("bpm out of range: %g", song.BPM)
	}
	if song.BPB < 1 || song.BPB > audio.MaxBeatsPerBar {
		return fmt.Errorf("beats per bar out of range: %d", song.BPB)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setlist.Add(song)
	return nil
}

// RemoveSong deletes the song at 1-based position n.
func (s *session) RemoveSong(n int) (config.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setlist.Remove(n - 1)
}

func (s *session) Songs() []config.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]config.Song(nil), s.setlist.Songs...)
}

// SaveSetlist writes the setlist back to the file it was loaded from.
func (s *session) SaveSetlist() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setlistPath == "" {
		return "", errors.New("no setlist file")
	}
	if err := s.setlist.Save(s.setlistPath); err != nil {
		return "", fmt.Errorf("save setlist: %w", err)
	}
	return s.setlistPath, nil
}

func (s *session) Export(dir string) ([]string, error) {
	dir, err := config.Expand(dir)
	if err != nil {
		return nil, err
	}
	return audio.Export(dir, s.engine.Table())
}

// Poll drains the events posted by the audio callback. Tick log lines
// are passed to logf.
func (s *session) Poll(f func(audio.Event), logf func(string)) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	bpm := s.Snapshot().BPM
	s.engine.Drain(func(ev audio.Event) {
		if ev.Kind == audio.KindWarning {
			slog.Warn("audio stream", "status", ev.Status)
		}
		if line, ok := s.tracker.Track(ev, bpm); ok && logf != nil {
			logf(line)
		}
		if f != nil {
			f(ev)
		}
	})

	events, voices := s.engine.Dropped()
	if events != s.dropped[0] || voices != s.dropped[1] {
		slog.Debug("dropped", "events", events, "voices", voices)
		s.dropped = [2]uint64{events, voices}
	}
}

// Close saves the config and closes the stream.
func (s *session) Close() error {
	s.engine.Pause()
	saveErr := s.save()
	err := s.sink.Close()
	if errors.Is(err, audio.ErrNoStream) {
		err = nil
	}
	return errors.Join(saveErr, err)
}

func (s *session) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Capture(s.engine.Params)
	if s.cfgPath == "" {
		return nil
	}
	if err := s.cfg.Save(s.cfgPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
