// Command trs80-console runs the TRS-80 BASIC shell in a terminal. By default
// it is line oriented with history. -screen switches the terminal to raw mode
// and redraws the 64x16 screen instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goforj/godump"

	"trs80/pkg/cli"
	"trs80/pkg/host"
	"trs80/pkg/machine"
)

func main() {
	cfg, err := cli.ParseArgs("trs80-console", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.PrintHelp(os.Stderr, "trs80-console")
		os.Exit(2)
	}
	if cfg.ShowHelp {
		cli.PrintHelp(os.Stdout, "trs80-console")
		return
	}

	out := newLineWriter(os.Stdout)
	var opts []machine.Option
	if !cfg.Screen {
		opts = append(opts, machine.WithEcho(out))
	}
	s, err := host.New(cfg, os.Stderr, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	s.Machine.Boot()
	if err := s.LoadProgram(); err != nil {
		s.Log.Error().Err(err).Str("program", cfg.Program).Msg("load failed")
	}
	stopSyncer := s.StartDiskSyncer(host.SyncInterval)

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	}
	defer cancel()

	if cfg.Screen {
		err = runScreen(ctx, s)
	} else {
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt, syscall.SIGQUIT)
		go func() {
			for sig := range interrupts {
				if sig == syscall.SIGQUIT {
					s.Machine.Pause()
					continue
				}
				s.Machine.Break()
			}
		}()
		err = runLines(ctx, s, newReader(os.Stdin, os.Stdout), out)
		signal.Stop(interrupts)
	}

	stopSyncer()
	if cfg.Dump {
		godump.Dump(s.Machine.Snapshot())
	}
	if err != nil {
		s.Log.Error().Err(err).Msg("console")
		os.Exit(1)
	}
}
