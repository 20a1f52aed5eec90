package machine

import (
	"errors"
	"fmt"
	"strings"

	"trs80/pkg/devices"
	"trs80/pkg/vars"
)

var (
	ErrReturnWithoutGosub = errors.New("RETURN without GOSUB")
	ErrNextWithoutFor     = errors.New("NEXT without FOR")
	ErrOutOfData          = errors.New("out of data")
	ErrLineNotFound       = errors.New("line not found")
	ErrUnknownStatement   = errors.New("unknown statement")
	ErrBadInput           = errors.New("bad input")
	ErrIllegalDirect      = errors.New("illegal direct")
	ErrCantContinue       = errors.New("can't continue")
	ErrCancelled          = errors.New("cancelled")
)

// softErrors are logged and recorded; execution carries on with the next
// statement.
var softErrors = []error{
	vars.ErrIndexOutOfRange,
	vars.ErrUndefinedArray,
	ErrReturnWithoutGosub,
	ErrNextWithoutFor,
	ErrOutOfData,
	ErrLineNotFound,
	ErrUnknownStatement,
	ErrBadInput,
	devices.ErrTapeEmpty,
}

func isSoft(err error) bool {
	for _, target := range softErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RuntimeError is a hard error raised while executing a statement.
type RuntimeError struct {
	Line string
	Stmt string
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %s: %s: %v", e.Line, e.Stmt, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Message is the text shown on the screen, e.g. "?DIVISION BY ZERO IN 20".
func (e *RuntimeError) Message() string {
	return "?" + headline(e.Err) + " IN " + e.Line
}

// headline is the first line of an error, upper-cased for the screen.
func headline(err error) string {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return strings.ToUpper(msg)
}

// Issue is a soft error recorded during a run.
type Issue struct {
	Line    string `json:"line"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Line == "" {
		return i.Message
	}
	return "line " + i.Line + ": " + i.Message
}
