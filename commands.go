package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mrdg/innerpulse/audio"
	"github.com/mrdg/innerpulse/config"
	"github.com/mrdg/innerpulse/dub"
)

type command struct {
	name  string
	help  string
	run   func(*env, []dub.Node) (string, error)
	arity int // -n means len(args) must be >= n
}

var commands []command

func init() {
	commands = []command{
		{"start", "start playback", startCommand, 0},
		{"stop", "stop playback", stopCommand, 0},
		{"set", "set <key> <value>", setCommand, 2},
		{"keys", "list parameter keys", keysCommand, 0},
		{"cycle", "cycle <play>/<mute>", cycleCommand, 1},
		{"random", "random on|off, random play|mute <min>:<max>", randomCommand, -1},
		{"ring", "ring <voice> on|off", ringCommand, 2},
		{"force", "force on|off", forceCommand, 1},
		{"tone", "tone next|electronic|woody", toneCommand, 1},
		{"devices", "list output devices", devicesCommand, 0},
		{"device", "device <index>", deviceCommand, 1},
		{"buffer", "buffer <frames>", bufferCommand, 1},
		{"song", "song next|prev|list|save|<n>, song add <name> <bpm> <bpb>, song rm <n>", songCommand, -1},
		{"export", "export <dir>", exportCommand, 1},
		{"status", "show the current settings", statusCommand, 0},
		{"log", "log on|off", logCommand, 1},
		{"help", "list commands", helpCommand, 0},
	}
}

func startCommand(env *env, args []dub.Node) (string, error) {
	if env.session.Locked() {
		return "", errors.New("audio device is restarting, try again")
	}
	env.session.Start()
	return "", nil
}

func stopCommand(env *env, args []dub.Node) (string, error) {
	env.session.Pause()
	return "", nil
}

func setCommand(env *env, args []dub.Node) (string, error) {
	var key string
	if err := readArgs(args[:1], &key); err != nil {
		return "", err
	}
	switch v := args[1].(type) {
	case dub.Int:
		return "", env.session.Set(key, int(v))
	case dub.Float:
		return "", env.session.Set(key, float64(v))
	case dub.Identifier:
		on, err := parseSwitch(string(v))
		if err != nil {
			return "", err
		}
		return "", env.session.Set(key, on)
	default:
		return "", fmt.Errorf("unsupported value: %v", v)
	}
}

func keysCommand(env *env, args []dub.Node) (string, error) {
	return strings.Join(audio.Keys(), " "), nil
}

func cycleCommand(env *env, args []dub.Node) (string, error) {
	var r dub.Ratio
	if err := readArgs(args, &r); err != nil {
		return "", err
	}
	if err := env.session.Set("play", r.Num); err != nil {
		return "", err
	}
	return "", env.session.Set("mute", r.Den)
}

func randomCommand(env *env, args []dub.Node) (string, error) {
	if len(args) == 1 {
		var on bool
		if err := readArgs(args, &on); err != nil {
			return "", err
		}
		return "", env.session.Set("rnd", on)
	}
	var phase string
	var r dub.Range
	if err := readArgs(args, &phase, &r); err != nil {
		return "", err
	}
	var ph audio.Phase
	switch phase {
	case "play":
		ph = audio.PhasePlay
	case "mute":
		ph = audio.PhaseMute
	default:
		return "", fmt.Errorf("unknown phase %q, expected play or mute", phase)
	}
	return "", env.session.SetRandomRange(ph, r.Min, r.Max)
}

func ringCommand(env *env, args []dub.Node) (string, error) {
	var voice string
	var on bool
	if err := readArgs(args, &voice, &on); err != nil {
		return "", err
	}
	kind, err := audio.ParseKind(voice)
	if err != nil {
		return "", err
	}
	return "", env.session.Set("ring_"+kind.String(), on)
}

func forceCommand(env *env, args []dub.Node) (string, error) {
	var on bool
	if err := readArgs(args, &on); err != nil {
		return "", err
	}
	return "", env.session.Set("force_play", on)
}

func toneCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	if name == "next" {
		return env.session.CycleTone()
	}
	return name, env.session.SetTone(name)
}

func devicesCommand(env *env, args []dub.Node) (string, error) {
	devices, err := env.session.Devices()
	if err != nil {
		return "", err
	}
	var current = -1
	if d, err := env.session.Device(); err == nil {
		current = d.Index
	}
	var lines []string
	for _, d := range devices {
		marker := " "
		if d.Index == current {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %2d %s", marker, d.Index, d))
	}
	return strings.Join(lines, "\n"), nil
}

func deviceCommand(env *env, args []dub.Node) (string, error) {
	var index int
	if err := readArgs(args, &index); err != nil {
		return "", err
	}
	return env.session.SetDevice(index)
}

func bufferCommand(env *env, args []dub.Node) (string, error) {
	var n int
	if err := readArgs(args, &n); err != nil {
		return "", err
	}
	return env.session.SetBufferSize(n)
}

func songCommand(env *env, args []dub.Node) (string, error) {
	if n, ok := args[0].(dub.Int); ok && len(args) == 1 {
		song, err := env.session.SelectSong(int(n))
		if err != nil {
			return "", err
		}
		return song.String(), nil
	}
	var sub string
	if err := readArgs(args[:1], &sub); err != nil {
		return "", err
	}
	args = args[1:]

	var song config.Song
	var err error
	switch sub {
	case "next":
		err = readArgs(args)
		if err == nil {
			song, err = env.session.NextSong()
		}
	case "prev":
		err = readArgs(args)
		if err == nil {
			song, err = env.session.PrevSong()
		}
	case "list":
		if err := readArgs(args); err != nil {
			return "", err
		}
		return listSongs(env.session), nil
	case "add":
		if err := readArgs(args, &song.Name, &song.BPM, &song.BPB); err != nil {
			return "", err
		}
		return song.String(), env.session.AddSong(song)
	case "rm":
		var n int
		if err := readArgs(args, &n); err != nil {
			return "", err
		}
		song, err = env.session.RemoveSong(n)
	case "save":
		if err := readArgs(args); err != nil {
			return "", err
		}
		return env.session.SaveSetlist()
	default:
		return "", fmt.Errorf("unknown song command %q", sub)
	}
	if err != nil {
		return "", err
	}
	return song.String(), nil
}

func listSongs(s *session) string {
	_, current := s.Song()
	var lines []string
	for i, song := range s.Songs() {
		marker := " "
		if i == current {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %2d. %s", marker, i+1, song))
	}
	return strings.Join(lines, "\n")
}

func exportCommand(env *env, args []dub.Node) (string, error) {
	var dir string
	if err := readArgs(args, &dir); err != nil {
		return "", err
	}
	paths, err := env.session.Export(dir)
	if err != nil {
		return "", err
	}
	return strings.Join(paths, "\n"), nil
}

func statusCommand(env *env, args []dub.Node) (string, error) {
	var b strings.Builder
	renderStatus(env.session, &b)
	return strings.TrimRight(b.String(), "\n"), nil
}

func logCommand(env *env, args []dub.Node) (string, error) {
	var on bool
	if err := readArgs(args, &on); err != nil {
		return "", err
	}
	env.logTicks.Store(on)
	return "", nil
}

func helpCommand(env *env, args []dub.Node) (string, error) {
	sorted := make([]command, len(commands))
	copy(sorted, commands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	var lines []string
	for _, cmd := range sorted {
		lines = append(lines, fmt.Sprintf("%-8s %s", cmd.name, cmd.help))
	}
	return strings.Join(lines, "\n"), nil
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("wrong number of arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch v := arg.(type) {
			case dub.Int:
				*p = float64(v)
			case dub.Float:
				*p = float64(v)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		case *bool:
			id, ok := arg.(dub.Identifier)
			if !ok {
				return fmt.Errorf("argument error: expected on or off")
			}
			on, err := parseSwitch(string(id))
			if err != nil {
				return err
			}
			*p = on
		case *dub.Range:
			r, ok := arg.(dub.Range)
			if !ok {
				return fmt.Errorf("argument error: expected a range like 1:3")
			}
			*p = r
		case *dub.Ratio:
			r, ok := arg.(dub.Ratio)
			if !ok {
				return fmt.Errorf("argument error: expected a ratio like 3/1")
			}
			*p = r
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
