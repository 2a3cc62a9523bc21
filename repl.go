package main

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chzyer/readline"
	"github.com/mrdg/innerpulse/dub"
)

const pollInterval = 10 * time.Millisecond

type env struct {
	session  *session
	logTicks atomic.Bool
}

func newEnv(s *session) *env {
	e := &env{session: s}
	e.logTicks.Store(true)
	return e
}

func (e *env) eval(input string) (string, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return "", err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return "", fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

// poll drains engine events until done is closed and writes the tick log to w.
func (e *env) poll(w io.Writer, done <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			e.session.Poll(nil, func(line string) {
				if e.logTicks.Load() {
					fmt.Fprintln(w, colorizeLine(line))
				}
			})
		}
	}
}

func repl(env *env) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	done := make(chan struct{})
	defer close(done)
	go env.poll(rl.Stdout(), done)

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if result, err := env.eval(line); err != nil {
			fmt.Fprintln(rl.Stdout(), err)
		} else if result != "" {
			fmt.Fprintln(rl.Stdout(), result)
		}
	}
}
