package machine

import (
	"trs80/pkg/basic"
	"trs80/pkg/devices"
	"trs80/pkg/video"
)

// bus is what expressions see of the machine: variables, memory and
// devices.
type bus struct {
	m *Machine
}

var _ basic.Env = bus{}

func (b bus) Scalar(name string) (basic.Value, bool) {
	return b.m.Vars.Get(name)
}

// Element reads an array element. A bad subscript is a soft error and reads
// as the zero value.
func (b bus) Element(name string, index int) (basic.Value, error) {
	v, err := b.m.Vars.GetElem(name, index)
	if err != nil {
		b.m.soft(err)
		return basic.Zero(name), nil
	}
	return v, nil
}

func (b bus) Peek(addr int) int { return b.m.Peek(addr) }

func (b bus) Point(x, y int) int { return b.m.Screen.Point(x, y) }

func (b bus) Inkey() string { return b.m.Keyboard.Inkey() }

func (b bus) Random() float64 { return b.m.rng.Float64() }

// Peek reads one byte of the memory map: the keyboard latch, the text
// plane, or 0 for anything else.
func (m *Machine) Peek(addr int) int {
	switch {
	case addr == devices.KeyboardAddr:
		return m.Keyboard.Peek()
	case video.Contains(addr):
		return m.Screen.Peek(addr)
	}
	return 0
}

// Poke writes one byte of the memory map. Only the text plane is writable.
func (m *Machine) Poke(addr, value int) {
	if !m.Screen.Poke(addr, value) {
		m.log.Debug().Int("addr", addr).Int("value", value).Msg("poke ignored")
	}
}

func (m *Machine) eval(expr basic.Expr) (basic.Value, error) {
	return basic.Eval(expr, bus{m})
}

func (m *Machine) evalNumber(expr basic.Expr) (float64, error) {
	v, err := m.eval(expr)
	if err != nil {
		return 0, err
	}
	if v.Kind != basic.Number {
		return 0, basic.ErrTypeMismatch
	}
	return v.Num, nil
}

func (m *Machine) evalInt(expr basic.Expr) (int, error) {
	f, err := m.evalNumber(expr)
	return int(f), err
}
