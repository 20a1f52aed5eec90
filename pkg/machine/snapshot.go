package machine

import (
	"trs80/pkg/basic"
	"trs80/pkg/program"
	"trs80/pkg/video"
)

// contextLines is how many statements either side of the current one a
// snapshot carries.
const contextLines = 3

// ForFrame is an active FOR loop as seen from outside the engine.
type ForFrame struct {
	Var     string  `json:"var"`
	Current float64 `json:"current"`
	End     float64 `json:"end"`
	Step    float64 `json:"step"`
	Resume  string  `json:"resume"`
}

// Variable is one scalar binding.
type Variable struct {
	Name  string      `json:"name"`
	Value basic.Value `json:"value"`
}

// Array is one DIMensioned array.
type Array struct {
	Name   string        `json:"name"`
	Values []basic.Value `json:"values"`
}

// Snapshot is a read-only copy of the machine state for reports and dumps.
type Snapshot struct {
	State      string              `json:"state"`
	Running    bool                `json:"running"`
	Line       string              `json:"line"`
	Context    []program.Statement `json:"context"`
	Listing    []program.Line      `json:"listing"`
	Variables  []Variable          `json:"variables"`
	Arrays     []Array             `json:"arrays"`
	ForStack   []ForFrame          `json:"for_stack"`
	GosubStack []string            `json:"gosub_stack"`
	Data       []string            `json:"data"`
	DataPtr    int                 `json:"data_ptr"`
	CursorRow  int                 `json:"cursor_row"`
	CursorCol  int                 `json:"cursor_col"`
	LastKey    string              `json:"last_key"`
	Screen     []video.ScreenRow   `json:"screen"`
	Tape       string              `json:"tape"`
	TapePos    int                 `json:"tape_pos"`
	Issues     []Issue             `json:"issues"`
	Error      string              `json:"error,omitempty"`
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		State:   m.state.String(),
		Running: m.state != Idle,
		Line:    m.CurrentLabel(),
		Listing: m.Listing.Lines(),
		Data:    append([]string(nil), m.dataPool...),
		DataPtr: m.dataPtr,
		Screen:  m.Screen.NonBlankRows(),
		Tape:    m.Tape.Name(),
		TapePos: m.Tape.Position(),
		Issues:  m.Issues(),
	}
	s.CursorRow, s.CursorCol = m.Screen.Cursor()
	if k := m.Keyboard.Last(); k != 0 {
		s.LastKey = string(k)
	}
	if m.lastErr != nil {
		s.Error = m.lastErr.Error()
	}

	if m.pc < m.prog.Len() {
		from := max(m.pc-contextLines, 0)
		to := min(m.pc+contextLines+1, m.prog.Len())
		s.Context = append(s.Context, m.prog.Statements[from:to]...)
	}

	for _, name := range m.Vars.Names() {
		v, _ := m.Vars.Get(name)
		s.Variables = append(s.Variables, Variable{Name: name, Value: v})
	}
	for _, name := range m.Vars.Arrays() {
		s.Arrays = append(s.Arrays, Array{Name: name, Values: m.Vars.Array(name)})
	}
	for _, f := range m.forStack {
		s.ForStack = append(s.ForStack, ForFrame{
			Var:     f.Var,
			Current: f.Current,
			End:     f.End,
			Step:    f.Step,
			Resume:  m.labelAt(f.Resume),
		})
	}
	for _, i := range m.gosubStack {
		s.GosubStack = append(s.GosubStack, m.labelAt(i))
	}
	return s
}

// labelAt names the statement at index i, or "END" past the program.
func (m *Machine) labelAt(i int) string {
	if i < 0 || i >= m.prog.Len() {
		return "END"
	}
	return m.prog.At(i).Key.String()
}
