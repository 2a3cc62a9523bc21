package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const DefaultBufferSize = 128

var ErrNoStream = errors.New("no audio stream")

// Initialize must be called before any other function that talks to
// portaudio.
func Initialize() error { return portaudio.Initialize() }

func Terminate() error { return portaudio.Terminate() }

// Sink connects an Engine to a portaudio output stream.
type Sink struct {
	engine *Engine

	mu         sync.Mutex
	stream     *portaudio.Stream
	device     Device
	channels   int
	bufferSize int
}

func NewSink(engine *Engine) *Sink {
	return &Sink{engine: engine, bufferSize: DefaultBufferSize}
}

// Boot (re)opens the output stream on the device with the given index (or
// the default device if index is negative) with bufferSize frames per
// callback. Any running stream is stopped first and playback is paused. On
// failure the sink is left without a stream and Boot may be retried.
func (s *Sink) Boot(index, bufferSize int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeStream()
	s.engine.Pause()
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	s.bufferSize = bufferSize

	info, err := lookupDevice(index)
	if err != nil {
		return "", err
	}
	device := deviceFromInfo(info)
	sampleRate := info.DefaultSampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if err := s.engine.Configure(sampleRate); err != nil {
		return "", err
	}

	params := portaudio.LowLatencyParameters(nil, info)
	params.Output.Channels = min(2, info.MaxOutputChannels)
	params.SampleRate = sampleRate
	params.FramesPerBuffer = bufferSize

	stream, err := portaudio.OpenStream(params, s.process)
	if err != nil {
		return "", fmt.Errorf("open stream on %s: %w", device.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return "", fmt.Errorf("start stream on %s: %w", device.Name, err)
	}
	s.stream = stream
	s.device = device
	s.channels = params.Output.Channels
	return s.describe(), nil
}

// Device returns the device of the running stream.
func (s *Sink) Device() (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return Device{}, ErrNoStream
	}
	return s.device, nil
}

func (s *Sink) BufferSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bufferSize
}

// Describe returns a short summary of the running stream.
func (s *Sink) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return "no stream"
	}
	return s.describe()
}

func (s *Sink) describe() string {
	return fmt.Sprintf("%s (%.0fHz / %dch / Buf:%d)",
		s.device.Name, s.engine.SampleRate(), s.channels, s.bufferSize)
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return ErrNoStream
	}
	s.closeStream()
	return nil
}

func (s *Sink) closeStream() {
	if s.stream == nil {
		return
	}
	s.stream.Stop()
	s.stream.Close()
	s.stream = nil
}

func (s *Sink) process(out [][]float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	s.engine.Process(out, statusFromFlags(flags))
}

func statusFromFlags(flags portaudio.StreamCallbackFlags) Status {
	var s Status
	if flags&portaudio.OutputUnderflow != 0 {
		s |= StatusOutputUnderflow
	}
	if flags&portaudio.OutputOverflow != 0 {
		s |= StatusOutputOverflow
	}
	if flags&portaudio.PrimingOutput != 0 {
		s |= StatusPriming
	}
	return s
}
