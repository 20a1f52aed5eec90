package machine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"trs80/pkg/basic"
	"trs80/pkg/program"
)

// exec dispatches one parsed statement. Handlers move the program counter by
// setting m.next, which execute has already pointed at the next statement.
func (m *Machine) exec(stmt basic.Stmt) error {
	switch s := stmt.(type) {
	case *basic.RemStmt:
		return nil
	case *basic.LetStmt:
		v, err := m.eval(s.Value)
		if err != nil {
			return err
		}
		return m.assign(s.Target, v)
	case *basic.PrintStmt:
		return m.execPrint(s)
	case *basic.TapePrintStmt:
		return m.execTapePrint(s)
	case *basic.InputStmt:
		return m.execInput(s)
	case *basic.TapeInputStmt:
		return m.execTapeInput(s)
	case *basic.IfStmt:
		return m.execIf(s)
	case *basic.ForStmt:
		return m.execFor(s)
	case *basic.NextStmt:
		return m.execNext()
	case *basic.GotoStmt:
		return m.jump(s.Target)
	case *basic.GosubStmt:
		return m.gosub(s.Target)
	case *basic.ReturnStmt:
		return m.execReturn()
	case *basic.OnGotoStmt:
		return m.execOn(s)
	case *basic.DimStmt:
		return m.execDim(s)
	case *basic.DataStmt:
		m.execData(s)
		return nil
	case *basic.ReadStmt:
		return m.execRead(s)
	case *basic.RestoreStmt:
		m.dataPtr = 0
		return nil
	case *basic.PokeStmt:
		addr, err := m.evalInt(s.Addr)
		if err != nil {
			return err
		}
		val, err := m.evalInt(s.Value)
		if err != nil {
			return err
		}
		m.Poke(addr, val)
		return nil
	case *basic.SetStmt:
		return m.execSet(s)
	case *basic.ClsStmt:
		m.Screen.Clear()
		return nil
	case *basic.StopStmt:
		return m.execStop()
	case *basic.EndStmt:
		if !m.direct {
			m.finish()
		}
		return nil
	case *basic.DelayStmt:
		ticks, err := m.evalNumber(s.Ticks)
		if err != nil {
			return err
		}
		if !m.direct && ticks > 0 {
			m.delayUntil = m.now().Add(time.Duration(ticks * float64(10*time.Millisecond)))
		}
		return nil
	case *basic.UnknownStmt:
		return fmt.Errorf("%w: %s", ErrUnknownStatement, s.Text)
	}
	return fmt.Errorf("%w: %T", ErrUnknownStatement, stmt)
}

// assign stores v into a scalar or an array element.
func (m *Machine) assign(t basic.Target, v basic.Value) error {
	if t.Index == nil {
		return m.Vars.Set(t.Name, v)
	}
	idx, err := m.evalNumber(t.Index)
	if err != nil {
		return err
	}
	return m.Vars.SetElem(t.Name, int(math.Trunc(idx)), v)
}

func (m *Machine) execIf(s *basic.IfStmt) error {
	cond, err := m.eval(s.Cond)
	if err != nil {
		return err
	}
	switch {
	case cond.Truthy():
		return m.exec(s.Then)
	case s.Else != nil:
		return m.exec(s.Else)
	}
	return nil
}

// execFor binds the loop variable and pushes a frame resuming at the
// statement after the FOR. A FOR over a variable that already has a frame
// replaces that frame. The body always runs at least once.
func (m *Machine) execFor(s *basic.ForStmt) error {
	if m.direct {
		return ErrIllegalDirect
	}
	if basic.IsStringName(s.Var) {
		return fmt.Errorf("%w: FOR %s", basic.ErrTypeMismatch, s.Var)
	}
	start, err := m.evalNumber(s.Start)
	if err != nil {
		return err
	}
	end, err := m.evalNumber(s.End)
	if err != nil {
		return err
	}
	step := 1.0
	if s.Step != nil {
		if step, err = m.evalNumber(s.Step); err != nil {
			return err
		}
	}
	if err := m.Vars.Set(s.Var, basic.Num(start)); err != nil {
		return err
	}

	for i := len(m.forStack) - 1; i >= 0; i-- {
		if m.forStack[i].Var == s.Var {
			m.forStack = append(m.forStack[:i], m.forStack[i+1:]...)
			break
		}
	}
	m.forStack = append(m.forStack, forFrame{Var: s.Var, Start: start, End: end, Step: step, Current: start, Resume: m.pc + 1})
	return nil
}

// execNext advances the innermost loop whatever variable NEXT names.
func (m *Machine) execNext() error {
	if m.direct {
		return ErrIllegalDirect
	}
	if len(m.forStack) == 0 {
		return ErrNextWithoutFor
	}
	top := &m.forStack[len(m.forStack)-1]
	top.Current += top.Step
	if err := m.Vars.Set(top.Var, basic.Num(top.Current)); err != nil {
		return err
	}
	// STEP 0 leaves the loop.
	if (top.Step > 0 && top.Current <= top.End) || (top.Step < 0 && top.Current >= top.End) {
		m.next = top.Resume
		return nil
	}
	m.forStack = m.forStack[:len(m.forStack)-1]
	return nil
}

// gosub records the statement after the current one and jumps to k. Nothing
// is pushed when k does not exist.
func (m *Machine) gosub(k program.Key) error {
	if m.direct {
		return ErrIllegalDirect
	}
	resume := m.pc + 1
	if err := m.jump(k); err != nil {
		return err
	}
	m.gosubStack = append(m.gosubStack, resume)
	return nil
}

func (m *Machine) execReturn() error {
	if m.direct {
		return ErrIllegalDirect
	}
	if len(m.gosubStack) == 0 {
		return ErrReturnWithoutGosub
	}
	m.next = m.gosubStack[len(m.gosubStack)-1]
	m.gosubStack = m.gosubStack[:len(m.gosubStack)-1]
	return nil
}

// execOn picks the n-th target, 1-based. Any other selector falls through.
func (m *Machine) execOn(s *basic.OnGotoStmt) error {
	n, err := m.evalInt(s.Selector)
	if err != nil {
		return err
	}
	if n < 1 || n > len(s.Targets) {
		return nil
	}
	if s.Gosub {
		return m.gosub(s.Targets[n-1])
	}
	return m.jump(s.Targets[n-1])
}

func (m *Machine) execDim(s *basic.DimStmt) error {
	for _, d := range s.Arrays {
		size, err := m.evalInt(d.Size)
		if err != nil {
			return err
		}
		if err := m.Vars.Dim(d.Name, size); err != nil {
			return err
		}
	}
	return nil
}

// execData appends the items of a DATA statement to the pool each time it
// executes, so a loop over DATA can READ it again.
func (m *Machine) execData(s *basic.DataStmt) {
	m.dataPool = append(m.dataPool, s.Items...)
}

// execRead takes one DATA item per target. String targets get the item with
// its quotes removed; numeric targets evaluate it.
func (m *Machine) execRead(s *basic.ReadStmt) error {
	for _, t := range s.Targets {
		if m.dataPtr >= len(m.dataPool) {
			return fmt.Errorf("%w: READ %s", ErrOutOfData, t)
		}
		item := m.dataPool[m.dataPtr]
		m.dataPtr++

		var v basic.Value
		if basic.IsStringName(t.Name) {
			v = basic.Str(strings.Trim(item, `"'`))
		} else {
			var err error
			v, err = basic.EvalText(item, bus{m})
			if err != nil {
				return err
			}
			if v.Kind != basic.Number {
				return fmt.Errorf("%w: DATA %s read into %s", basic.ErrTypeMismatch, item, t)
			}
		}
		if err := m.assign(t, v); err != nil {
			return err
		}
	}
	return nil
}

// execSet turns a pixel on or off. Coordinates are 1-based.
func (m *Machine) execSet(s *basic.SetStmt) error {
	x, err := m.evalInt(s.X)
	if err != nil {
		return err
	}
	y, err := m.evalInt(s.Y)
	if err != nil {
		return err
	}
	if s.Reset {
		m.Screen.Reset(x-1, y-1)
	} else {
		m.Screen.Set(x-1, y-1)
	}
	return nil
}

// execStop reports the line and pauses on the statement after STOP.
func (m *Machine) execStop() error {
	if m.direct {
		return nil
	}
	m.newlineIfNeeded()
	m.println("BREAK IN " + m.prog.At(m.pc).Key.String())
	m.state = Paused
	m.log.Info().Str("line", m.prog.At(m.pc).Key.String()).Msg("stop")
	m.prompt()
	return nil
}

func (m *Machine) execTapePrint(s *basic.TapePrintStmt) error {
	for _, e := range s.Values {
		v, err := m.eval(e)
		if err != nil {
			return err
		}
		if err := m.Tape.Write(v.String()); err != nil {
			m.soft(fmt.Errorf("tape %s: %w", m.Tape.Name(), err))
		}
	}
	return nil
}

// execTapeInput reads one record per target. A numeric target that gets a
// record that is not a number is left unchanged.
func (m *Machine) execTapeInput(s *basic.TapeInputStmt) error {
	for _, t := range s.Targets {
		rec, err := m.Tape.Read()
		if err != nil {
			return err
		}
		v := basic.Str(rec)
		if !basic.IsStringName(t.Name) {
			f, ok := basic.ParseNumber(rec)
			if !ok {
				m.soft(fmt.Errorf("%w: %q for %s", ErrBadInput, rec, t))
				continue
			}
			v = basic.Num(f)
		}
		if err := m.assign(t, v); err != nil {
			return err
		}
	}
	return nil
}
