package machine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"trs80/pkg/basic"
)

// execInput shows the prompt and parks the engine until a line is entered.
func (m *Machine) execInput(s *basic.InputStmt) error {
	if m.direct {
		return ErrIllegalDirect
	}
	if s.HasPrompt {
		m.print(s.Prompt, false)
	} else {
		m.print("? ", false)
	}
	m.input = &inputRequest{targets: s.Targets}
	m.state = AwaitingInput
	return nil
}

// KeyPress routes one key from the host: to the keyboard latch while a
// program runs, to the INPUT line while one is pending, and to the shell
// otherwise. Typed characters are upper-cased.
func (m *Machine) KeyPress(r rune) {
	if r == KeyBreak || r == KeyCtrlC {
		if m.state != Idle {
			m.doBreak()
		}
		return
	}

	switch m.state {
	case Running:
		if !m.Keyboard.Press(r) {
			m.log.Debug().Str("key", string(r)).Msg("key dropped")
		}
	case AwaitingInput:
		m.input.buf = m.editLine(m.input.buf, r, m.completeInput)
	default:
		m.shellBuf = m.editLine(m.shellBuf, r, m.command)
	}
}

// editLine applies r to a line buffer shown on the screen and calls enter
// with the finished line.
func (m *Machine) editLine(buf []rune, r rune, enter func(string)) []rune {
	switch r {
	case KeyEnter, '\n':
		line := string(buf)
		enter(line)
		return nil
	case KeyBackspace, KeyDelete:
		if len(buf) == 0 {
			return buf
		}
		m.Screen.Backspace()
		return buf[:len(buf)-1]
	}
	if !unicode.IsPrint(r) {
		return buf
	}
	r = unicode.ToUpper(r)
	m.Screen.Print(string(r), false)
	return append(buf, r)
}

// SubmitLine enters a whole line as if it had been typed followed by Enter.
// Line-oriented hosts use it for the shell and for INPUT. While a program
// runs, the first character is latched as a key press.
func (m *Machine) SubmitLine(line string) {
	line = strings.ToUpper(line)
	switch m.state {
	case Running:
		if line != "" {
			m.Keyboard.Press([]rune(line)[0])
		}
	case AwaitingInput:
		m.Screen.Print(line, false)
		m.completeInput(line)
	default:
		m.Screen.Print(line, false)
		m.command(line)
	}
}

// completeInput assigns the entered line to the INPUT targets, one
// comma-separated field each, and resumes the program after the INPUT.
func (m *Machine) completeInput(line string) {
	req := m.input
	m.input = nil
	m.Screen.Print("", true)

	fields := []string{line}
	if len(req.targets) > 1 {
		fields = strings.Split(line, ",")
	}
	for i, t := range req.targets {
		if i >= len(fields) {
			m.soft(fmt.Errorf("%w: nothing entered for %s", ErrBadInput, t))
			break
		}
		if err := m.assignInput(t, fields[i]); err != nil {
			if isSoft(err) {
				m.soft(err)
				continue
			}
			st := m.prog.At(m.pc)
			m.fail(&RuntimeError{Line: st.Key.String(), Stmt: st.Text, Err: err})
			return
		}
	}

	m.pc++
	m.state = Running
	if m.pc >= m.prog.Len() {
		m.finish()
	}
}

// assignInput stores one typed field. A numeric target rejects anything
// that is not entirely a number.
func (m *Machine) assignInput(t basic.Target, field string) error {
	if basic.IsStringName(t.Name) {
		return m.assign(t, basic.Str(strings.TrimSpace(field)))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return fmt.Errorf("%w: %q for %s", ErrBadInput, strings.TrimSpace(field), t)
	}
	return m.assign(t, basic.Num(f))
}
