// Command trs80 is the desktop TRS-80: a window showing the 64x16 screen and
// 128x48 graphics plane, with the BASIC shell on the keyboard.
package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"trs80/pkg/cli"
	"trs80/pkg/host"
	"trs80/pkg/machine"
)

func main() {
	cfg, err := cli.ParseArgs("trs80", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.PrintHelp(os.Stderr, "trs80")
		os.Exit(2)
	}
	if cfg.ShowHelp {
		cli.PrintHelp(os.Stdout, "trs80")
		return
	}

	s, err := host.New(cfg, os.Stderr, machine.WithFilePicker(dialogPicker{dir: cfg.StoragePath}))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	s.Machine.Boot()
	if err := s.LoadProgram(); err != nil {
		s.Log.Error().Err(err).Str("program", cfg.Program).Msg("load failed")
	}

	stopSyncer := s.StartDiskSyncer(host.SyncInterval)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenW*cfg.Scale/2, screenH*cfg.Scale/2)
	ebiten.SetWindowTitle("TRS-80 Model I Level II BASIC")

	err = ebiten.RunGame(newGame(s))
	stopSyncer()
	if err != nil {
		s.Log.Fatal().Err(err).Msg("desktop")
	}
}
