//go:build !js

// Command trs80run runs a BASIC program without a window: output goes to
// stdout, -keys feeds INPUT and INKEY$, and the run ends when the program
// does, STOPs, or the timeout expires.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goforj/godump"

	"trs80/pkg/cli"
	"trs80/pkg/host"
	"trs80/pkg/machine"
)

// keySlice is how long the program runs between key deliveries.
const keySlice = 20 * time.Millisecond

var ErrNoInput = errors.New("program is waiting for input and no keys are left")

func main() {
	cfg, err := cli.ParseArgs("trs80run", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.PrintHelp(os.Stderr, "trs80run")
		os.Exit(2)
	}
	if cfg.ShowHelp {
		cli.PrintHelp(os.Stdout, "trs80run")
		return
	}
	if cfg.Program == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide a program to run")
		cli.PrintHelp(os.Stderr, "trs80run")
		os.Exit(2)
	}

	m, err := runBatch(cfg, os.Stdout, os.Stderr)
	if m != nil && cfg.Dump {
		godump.Dump(m.Snapshot())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", cfg.Program, err)
		os.Exit(1)
	}
}

// expandKeys turns the -keys text into key presses. \n and \r stand for
// ENTER.
func expandKeys(keys string) []rune {
	keys = strings.NewReplacer(`\n`, "\r", `\r`, "\r", "\n", "\r").Replace(keys)
	return []rune(keys)
}

// runBatch loads cfg.Program, runs it to the end and reports how it stopped
// on logOut. The program's output is written to stdout.
func runBatch(cfg *cli.Config, stdout, logOut io.Writer) (*machine.Machine, error) {
	cfg.Run = true
	s, err := host.New(cfg, logOut, machine.WithEcho(stdout))
	if err != nil {
		return nil, err
	}
	defer s.Close()
	if err := s.LoadProgram(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	m := s.Machine
	keys := expandKeys(cfg.Keys)
	for ctx.Err() == nil {
		slice, cancel := context.WithTimeout(ctx, keySlice)
		m.Run(slice)
		cancel()

		switch m.State() {
		case machine.Running:
			if len(keys) > 0 && m.Keyboard.Pending() == 0 {
				m.KeyPress(keys[0])
				keys = keys[1:]
			}
			continue
		case machine.AwaitingInput:
			if len(keys) == 0 {
				return m, ErrNoInput
			}
			for len(keys) > 0 && m.State() == machine.AwaitingInput {
				m.KeyPress(keys[0])
				keys = keys[1:]
			}
			continue
		}
		break
	}

	fmt.Fprintf(logOut, "run complete (%s): state=%s line=%s issues=%d\n",
		cfg.Program, m.State(), m.CurrentLabel(), len(m.Issues()))
	if ctx.Err() != nil {
		return m, fmt.Errorf("timed out after %s", cfg.Timeout)
	}
	return m, m.Err()
}
