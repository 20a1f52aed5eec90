package machine

import (
	"context"
	"fmt"
	"time"

	"trs80/pkg/basic"
	"trs80/pkg/program"
)

// Start begins a RUN at the first statement, or at from when it is set.
// The screen, variables, stacks and DATA pool are cleared and the tape is
// rewound.
func (m *Machine) Start(from *program.Key) error {
	m.halt()
	m.prog = m.Listing.Program()
	m.cache = make([]basic.Stmt, m.prog.Len())
	m.resetRun()
	m.Screen.Clear()
	m.Keyboard.Clear()
	m.Tape.Rewind()

	m.pc = 0
	if from != nil {
		i, ok := m.prog.FindIndex(*from)
		if !ok {
			return ErrLineNotFound
		}
		m.pc = i
	}
	m.state = Running
	m.log.Info().Int("statements", m.prog.Len()).Msg("run")
	return nil
}

// Pause asks a running program to stop before its next statement.
func (m *Machine) Pause() {
	m.pauseReq.Store(true)
}

// Break asks the engine to abandon the run at the next statement boundary.
func (m *Machine) Break() {
	m.breakReq.Store(true)
}

// Cont resumes a paused program.
func (m *Machine) Cont() error {
	if m.state != Paused {
		return ErrCantContinue
	}
	m.pauseReq.Store(false)
	m.state = Running
	return nil
}

// Step executes at most one statement. While a DELAY is pending it returns
// Continue without executing anything.
func (m *Machine) Step() Status {
	if m.breakReq.Swap(false) {
		m.doBreak()
		return Halted
	}

	switch m.state {
	case Idle:
		return Halted
	case Paused:
		return Suspended
	case AwaitingInput:
		return WaitingForInput
	}

	if m.pauseReq.Swap(false) {
		m.state = Paused
		m.log.Info().Str("line", m.CurrentLabel()).Msg("paused")
		return Suspended
	}

	if !m.delayUntil.IsZero() {
		if m.now().Before(m.delayUntil) {
			return Continue
		}
		m.delayUntil = time.Time{}
	}

	if m.pc >= m.prog.Len() {
		m.finish()
		return Halted
	}

	m.execute(m.pc)
	return m.status()
}

func (m *Machine) status() Status {
	switch m.state {
	case Running:
		return Continue
	case Paused:
		return Suspended
	case AwaitingInput:
		return WaitingForInput
	}
	return Halted
}

// StepOnce executes a single statement and leaves the program paused. An
// idle machine is started first.
func (m *Machine) StepOnce() Status {
	if m.state == Idle {
		if err := m.Start(nil); err != nil {
			return Halted
		}
	}
	if m.state == Paused {
		m.state = Running
	}
	m.delayUntil = time.Time{}
	st := m.Step()
	if m.state == Running {
		m.state = Paused
		return Suspended
	}
	return st
}

// Run steps until the program stops, waits for input or ctx is done.
// DELAY sleeps here instead of spinning.
func (m *Machine) Run(ctx context.Context) Status {
	for {
		if err := ctx.Err(); err != nil {
			return m.status()
		}
		st := m.Step()
		if st != Continue {
			return st
		}
		if !m.delayUntil.IsZero() {
			wait := m.delayUntil.Sub(m.now())
			if wait <= 0 {
				continue
			}
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
			case <-t.C:
			}
		}
	}
}

// RunFor steps until budget has elapsed or the program stops. Hosts call it
// once per frame and service their event loop in between.
func (m *Machine) RunFor(budget time.Duration) Status {
	deadline := time.Now().Add(budget)
	for {
		st := m.Step()
		if st != Continue || !m.delayUntil.IsZero() {
			return st
		}
		if time.Now().After(deadline) {
			return st
		}
	}
}

// statement returns the parsed statement at index i, parsing it on first use.
func (m *Machine) statement(i int) (basic.Stmt, error) {
	if i < len(m.cache) && m.cache[i] != nil {
		return m.cache[i], nil
	}
	stmt, err := basic.ParseStatement(m.prog.At(i).Text)
	if err != nil {
		return nil, err
	}
	if i < len(m.cache) {
		m.cache[i] = stmt
	}
	return stmt, nil
}

// execute runs the statement at index i and moves the program counter.
func (m *Machine) execute(i int) {
	st := m.prog.At(i)
	m.log.Debug().Str("line", st.Key.String()).Str("stmt", st.Text).Msg("exec")

	m.next = i + 1
	stmt, err := m.statement(i)
	if err == nil {
		err = m.exec(stmt)
	}
	if err != nil {
		if !isSoft(err) {
			m.fail(&RuntimeError{Line: st.Key.String(), Stmt: st.Text, Err: err})
			return
		}
		m.soft(err)
	}

	switch m.state {
	case AwaitingInput, Idle:
		return
	}
	m.pc = m.next
}

// soft logs a recoverable error against the current line.
func (m *Machine) soft(err error) {
	line := ""
	stmt := ""
	if !m.direct && m.pc >= 0 && m.pc < m.prog.Len() {
		line = m.prog.At(m.pc).Key.String()
		stmt = m.prog.At(m.pc).Text
	}
	m.log.Warn().Str("line", line).Str("stmt", stmt).Err(err).Msg("runtime warning")
	m.issues = append(m.issues, Issue{Line: line, Message: err.Error()})
}

// fail stops the run on a hard error and reports it on the screen.
func (m *Machine) fail(err *RuntimeError) {
	m.log.Error().Str("line", err.Line).Str("stmt", err.Stmt).Err(err.Err).Msg("runtime error")
	m.lastErr = err
	m.halt()
	m.newlineIfNeeded()
	m.println(err.Message())
	m.prompt()
}

// finish ends a run that fell off the end or hit END.
func (m *Machine) finish() {
	m.halt()
	m.pc = m.prog.Len()
	m.log.Info().Msg("program finished")
	m.prompt()
}

// doBreak abandons a run, paused program or pending INPUT.
func (m *Machine) doBreak() {
	if m.state == Idle {
		m.shellBuf = nil
		return
	}
	label := m.CurrentLabel()
	m.halt()
	m.newlineIfNeeded()
	if label == "" {
		m.println("BREAK")
	} else {
		m.println("BREAK IN " + label)
	}
	m.log.Info().Str("line", label).Msg("break")
	m.prompt()
}

// jump moves the program counter to k. An unknown target is a soft error and
// execution falls through.
func (m *Machine) jump(k program.Key) error {
	if m.direct {
		return m.directGoto(k)
	}
	i, ok := m.prog.FindIndex(k)
	if !ok {
		return fmt.Errorf("%w: %s", ErrLineNotFound, k)
	}
	m.next = i
	return nil
}

// directGoto starts the stored program at k from the shell without clearing
// variables.
func (m *Machine) directGoto(k program.Key) error {
	prog := m.Listing.Program()
	i, ok := prog.FindIndex(k)
	if !ok {
		return fmt.Errorf("%w: %s", ErrLineNotFound, k)
	}
	m.prog = prog
	m.cache = make([]basic.Stmt, prog.Len())
	m.directJump = i
	return nil
}
