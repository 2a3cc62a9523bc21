package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	arg "github.com/alexflint/go-arg"

	"github.com/mrdg/innerpulse/audio"
	"github.com/mrdg/innerpulse/config"
	"github.com/mrdg/innerpulse/ui"
)

type args struct {
	Config  string  `arg:"--config" help:"config directory (default: ~/.innerpulse)"`
	Setlist string  `arg:"--setlist" help:"setlist file (default: setlist.json in the config directory)"`
	REPL    bool    `arg:"--repl" help:"use the command shell instead of the terminal UI"`
	Debug   bool    `arg:"--debug" help:"enable debug logging"`
	Log     string  `arg:"--log" help:"log file (default: innerpulse.log in the config directory, stderr with --repl)"`
	Device  int     `arg:"--device" help:"output device index, see the devices command" default:"-1"`
	Buffer  int     `arg:"--buffer" help:"frames per audio buffer"`
	BPM     float64 `arg:"--bpm" help:"initial tempo"`
	Seed    uint64  `arg:"--seed" help:"seed for random phases and noise"`
}

func (args) Description() string {
	return "innerpulse is a metronome for internal time training."
}

func main() {
	var a args
	arg.MustParse(&a)
	if err := run(a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dir returns the config directory, ~/.innerpulse unless --config is set.
func (a args) dir() string {
	if a.Config == "" {
		return config.DefaultDir
	}
	return a.Config
}

// paths returns the expanded config and setlist file paths.
func (a args) paths() (cfgPath, setlistPath string, err error) {
	if cfgPath, err = config.Path(a.dir(), config.ConfigFilename); err != nil {
		return "", "", err
	}
	if a.Setlist != "" {
		setlistPath, err = config.Expand(a.Setlist)
	} else {
		setlistPath, err = config.Path(a.dir(), config.SetlistFilename)
	}
	return cfgPath, setlistPath, err
}

func run(a args) error {
	logOut, closeLog, err := openLog(a, a.dir())
	if err != nil {
		return err
	}
	defer closeLog()
	initLogger(logOut, a.Debug)

	cfgPath, setlistPath, err := a.paths()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Warn("using default config", "err", err)
	}
	if a.Buffer > 0 {
		cfg.BufferSize = a.Buffer
	}

	setlist, err := config.LoadSetlist(setlistPath)
	if err != nil {
		slog.Warn("using default setlist", "err", err)
	}

	var opts []audio.Option
	if a.Seed != 0 {
		opts = append(opts, audio.WithSeed(a.Seed))
	}
	engine := audio.New(audio.NewParams(), opts...)
	cfg.Apply(engine.Params)
	if a.BPM > 0 {
		engine.Params.SetBPM(a.BPM)
	}
	if err := engine.SetPalette(cfg.Tone); err != nil {
		slog.Warn("unknown tone in config", "tone", cfg.Tone)
	}

	if err := audio.Initialize(); err != nil {
		return fmt.Errorf("initialize audio: %w", err)
	}
	defer audio.Terminate()

	s := newSession(engine, audio.NewSink(engine), cfg, cfgPath, setlist, setlistPath)
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("shutdown", "err", err)
		}
	}()
	msg := bootMessage(s, a.Device)

	if a.REPL {
		fmt.Println(msg)
		return repl(newEnv(s))
	}
	return ui.Run(s, msg)
}

// bootMessage opens the output stream. A failure leaves the session without
// a stream so another device or buffer size can be tried from the controls.
func bootMessage(s *session, index int) string {
	msg, err := s.Boot(index)
	if err != nil {
		slog.Error("boot", "err", err)
		return "Error: " + err.Error()
	}
	return msg
}

// openLog returns the log destination. The terminal UI owns the terminal, so
// without --repl logs go to a file.
func openLog(a args, dir string) (io.Writer, func(), error) {
	path, err := config.Expand(a.Log)
	if a.Log == "" {
		if a.REPL {
			return os.Stderr, func() {}, nil
		}
		path, err = config.Path(dir, config.LogFilename)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func initLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h))
}
