package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"trs80/pkg/host"
	"trs80/pkg/machine"
	"trs80/pkg/video"
)

const (
	frameInterval = 33 * time.Millisecond
	frameBudget   = 20 * time.Millisecond

	keyCtrlD = 0x04
	keyCtrlP = 0x10
	keyCtrlT = 0x14
)

// runScreen puts the terminal in raw mode and redraws the machine screen
// every frame until Ctrl-D or ctx ends.
func runScreen(ctx context.Context, s *host.Session) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("-screen needs a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, old)

	keys := make(chan rune, 64)
	go readKeys(os.Stdin, keys)

	io.WriteString(os.Stdout, "\x1b[2J\x1b[?25l")
	defer io.WriteString(os.Stdout, "\x1b[?25h\r\n")

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	m := s.Machine
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	drain:
		for {
			select {
			case r, ok := <-keys:
				switch {
				case !ok || r == keyCtrlD:
					return nil
				case r == keyCtrlP:
					s.TogglePause()
				case r == keyCtrlT && m.State() != machine.AwaitingInput:
					m.StepOnce()
				default:
					m.KeyPress(mapKey(r))
				}
			default:
				break drain
			}
		}
		m.RunFor(frameBudget)
		io.WriteString(os.Stdout, renderFrame(m))
	}
}

func readKeys(r io.Reader, keys chan<- rune) {
	defer close(keys)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			keys <- rune(b)
		}
		if err != nil {
			return
		}
	}
}

// mapKey turns raw terminal bytes into machine keys.
func mapKey(r rune) rune {
	switch r {
	case '\r', '\n':
		return machine.KeyEnter
	case 0x7f, 0x08:
		return machine.KeyBackspace
	case 0x1b:
		return machine.KeyBreak
	}
	return r
}

// renderFrame draws the screen in a border with the state on the last line.
// Cells with no text show the graphics plane as half blocks.
func renderFrame(m *machine.Machine) string {
	var b strings.Builder
	b.WriteString("\x1b[H")
	border := "+" + strings.Repeat("-", video.Cols) + "+\r\n"
	b.WriteString(border)
	lines := m.Screen.Lines()
	crow, ccol := m.Screen.Cursor()
	showCursor := m.State() != machine.Running
	for r := 0; r < video.Rows; r++ {
		b.WriteByte('|')
		line := lines[r]
		for c := 0; c < video.Cols; c++ {
			switch {
			case showCursor && r == crow && c == ccol:
				b.WriteByte('_')
			case c < len(line) && line[c] > ' ' && line[c] < 127:
				b.WriteByte(line[c])
			default:
				b.WriteString(cellGlyph(m.Screen, r, c))
			}
		}
		b.WriteString("|\r\n")
	}
	b.WriteString(border)
	status := m.State().String()
	if label := m.CurrentLabel(); label != "" && m.State() != machine.Idle {
		status += " AT " + label
	}
	b.WriteString(status + "  [ESC BREAK  ^P PAUSE  ^T STEP  ^D QUIT]\x1b[K\r\n")
	return b.String()
}

// cellGlyph approximates the 2x3 graphics pixels under a text cell.
func cellGlyph(d *video.Display, row, col int) string {
	x, y := col*2, row*3
	lit := func(dy int) bool {
		return d.Point(x, y+dy) == 1 || d.Point(x+1, y+dy) == 1
	}
	top := lit(0) || lit(1)
	bottom := lit(1) || lit(2)
	switch {
	case top && bottom:
		return "█"
	case top:
		return "▀"
	case bottom:
		return "▄"
	}
	return " "
}
