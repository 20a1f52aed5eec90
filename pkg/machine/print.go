package machine

import (
	"io"
	"strings"

	"trs80/pkg/basic"
	"trs80/pkg/video"
)

// zoneWidth is the spacing of the tab stops a ',' separator moves to.
const zoneWidth = 16

// print writes program or shell output to the screen and the echo writer.
func (m *Machine) print(s string, newline bool) {
	m.Screen.Print(s, newline)
	if m.echo != nil {
		if newline {
			s += "\n"
		}
		io.WriteString(m.echo, s)
	}
}

func (m *Machine) println(s string) { m.print(s, true) }

// newlineIfNeeded moves to a fresh row unless the cursor is already at the
// start of one.
func (m *Machine) newlineIfNeeded() {
	if _, col := m.Screen.Cursor(); col > 0 {
		m.print("", true)
	}
}

// prompt shows the shell prompt. A cleared screen gets READY first.
func (m *Machine) prompt() {
	if row, col := m.Screen.Cursor(); row == 0 && col == 0 {
		m.println("READY")
	}
	m.newlineIfNeeded()
	m.Screen.Print(">", false)
}

// execPrint renders the items into one string, tracking the column so that
// ',' and TAB line up with the screen, then prints it at the cursor or at
// the PRINT@ position.
func (m *Machine) execPrint(s *basic.PrintStmt) error {
	at := -1
	_, col := m.Screen.Cursor()
	if s.At != nil {
		pos, err := m.evalInt(s.At)
		if err != nil {
			return err
		}
		at = max(pos-1, 0)
		col = at % video.Cols
	}

	var b strings.Builder
	for _, item := range s.Items {
		switch {
		case item.Tab != nil:
			n, err := m.evalInt(item.Tab)
			if err != nil {
				return err
			}
			n = min(max(n, 0), video.Cols-1)
			if pad := n - col%video.Cols; pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
				col += pad
			}
		case item.Expr != nil:
			v, err := m.eval(item.Expr)
			if err != nil {
				return err
			}
			text := v.String()
			b.WriteString(text)
			col += len([]rune(text))
		}
		if item.Sep == ',' {
			pad := (zoneWidth - col%zoneWidth) % zoneWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		}
	}

	newline := !s.NoNewline
	if at >= 0 {
		m.Screen.PrintAt(at, b.String(), newline)
		if m.echo != nil {
			text := b.String()
			if newline {
				text += "\n"
			}
			io.WriteString(m.echo, text)
		}
		return nil
	}
	m.print(b.String(), newline)
	return nil
}
