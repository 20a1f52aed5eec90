// Package machine is the BASIC computer: the program listing, variables,
// display and devices owned by one execution context, the statement engine
// that runs them, and the immediate-mode shell in front of it.
//
// A Machine is not safe for concurrent use. Hosts drive it from one
// goroutine; only Break and Pause may be called from elsewhere.
package machine

import (
	"io"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"trs80/pkg/basic"
	"trs80/pkg/devices"
	"trs80/pkg/program"
	"trs80/pkg/vars"
	"trs80/pkg/vfs"
	"trs80/pkg/video"
)

// State is the execution state of the engine.
type State int

const (
	Idle State = iota
	Running
	Paused
	AwaitingInput
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case AwaitingInput:
		return "AWAITING INPUT"
	}
	return "IDLE"
}

// Status is what one Step reports back to the host.
type Status int

const (
	Continue Status = iota
	WaitingForInput
	Suspended
	Halted
)

func (s Status) String() string {
	switch s {
	case WaitingForInput:
		return "awaiting-input"
	case Suspended:
		return "paused"
	case Halted:
		return "halted"
	}
	return "continue"
}

// Host key codes understood by KeyPress.
const (
	KeyEnter     = '\r'
	KeyBackspace = '\b'
	KeyDelete    = 0x7f
	KeyBreak     = 0x1b
	KeyCtrlC     = 0x03
)

// FilePicker asks the user for a program file when LOAD or SAVE is typed
// without a name.
type FilePicker interface {
	Open() (name string, data []byte, err error)
	Save(text string) (name string, err error)
}

// forFrame is one active FOR loop. Current is the loop's own counter; the
// variable is rewritten from it on every NEXT.
type forFrame struct {
	Var     string
	Start   float64
	End     float64
	Step    float64
	Current float64
	Resume  int
}

// inputRequest is an INPUT statement waiting for its line.
type inputRequest struct {
	targets []basic.Target
	buf     []rune
}

type Machine struct {
	Listing  *program.Listing
	Vars     *vars.Store
	Screen   *video.Display
	Keyboard *devices.Keyboard
	Tape     *devices.Tape
	Disk     *vfs.Disk

	log      zerolog.Logger
	echo     io.Writer
	picker   FilePicker
	rng      *rand.Rand
	now      func() time.Time
	tapeName string

	state State
	prog  *program.Program
	cache []basic.Stmt
	pc    int
	next  int

	forStack   []forFrame
	gosubStack []int

	dataPool []string
	dataPtr  int

	direct     bool
	directJump int

	input      *inputRequest
	shellBuf   []rune
	delayUntil time.Time

	breakReq atomic.Bool
	pauseReq atomic.Bool

	issues  []Issue
	lastErr error
}

// Option configures a Machine.
type Option func(*Machine)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithDisk backs tape records and named LOAD/SAVE with d.
func WithDisk(d *vfs.Disk) Option {
	return func(m *Machine) { m.Disk = d }
}

// WithTape binds the tape to a file name on the disk.
func WithTape(name string) Option {
	return func(m *Machine) { m.tapeName = name }
}

// WithSeed makes RND reproducible. Zero keeps the time-based seed.
func WithSeed(seed int64) Option {
	return func(m *Machine) {
		if seed != 0 {
			m.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// WithClock replaces the time source used by DELAY and keyboard debouncing.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithEcho copies every program and shell message to w as it is printed.
// The shell prompt and typed keys only go to the screen.
func WithEcho(w io.Writer) Option {
	return func(m *Machine) { m.echo = w }
}

func WithFilePicker(p FilePicker) Option {
	return func(m *Machine) { m.picker = p }
}

// New builds an idle machine with an empty listing and a blank screen.
func New(opts ...Option) *Machine {
	m := &Machine{
		Listing:  program.NewListing(),
		Vars:     vars.New(),
		Screen:   video.New(),
		Keyboard: devices.NewKeyboard(),
		Disk:     vfs.New(),
		log:      zerolog.Nop(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		tapeName: devices.DefaultTape,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Keyboard.SetClock(m.now)
	m.Tape = devices.NewTape(m.Disk, m.tapeName)
	return m
}

func (m *Machine) State() State { return m.state }

// Program is the statement sequence of the current or last run.
func (m *Machine) Program() *program.Program { return m.prog }

// PC is the index of the next statement to execute.
func (m *Machine) PC() int { return m.pc }

// Err returns the last hard error, or nil.
func (m *Machine) Err() error { return m.lastErr }

// Issues returns the soft errors recorded since the last RUN.
func (m *Machine) Issues() []Issue {
	return append([]Issue(nil), m.issues...)
}

// CurrentLabel is the line label at the program counter, or "" when the
// counter is outside the program.
func (m *Machine) CurrentLabel() string {
	if m.pc < 0 || m.pc >= m.prog.Len() {
		return ""
	}
	return m.prog.At(m.pc).Key.String()
}

// LoadSource replaces the listing with the numbered lines of src and stops
// any run in progress. It returns the number of lines kept.
func (m *Machine) LoadSource(data []byte) int {
	m.halt()
	n := m.Listing.Replace(program.DecodeSource(data))
	m.prog = m.Listing.Program()
	m.cache = nil
	m.log.Info().Int("lines", n).Msg("program loaded")
	return n
}

// resetRun clears everything a RUN starts without: variables, loop and
// subroutine stacks, the DATA pool and recorded issues.
func (m *Machine) resetRun() {
	m.Vars.Clear()
	m.clearStacks()
	m.issues = nil
	m.lastErr = nil
}

func (m *Machine) clearStacks() {
	m.forStack = nil
	m.gosubStack = nil
	m.dataPool = nil
	m.dataPtr = 0
}

// halt drops back to Idle without printing anything.
func (m *Machine) halt() {
	m.state = Idle
	m.input = nil
	m.delayUntil = time.Time{}
	m.pauseReq.Store(false)
	m.breakReq.Store(false)
}
