// Package logger sets up the zerolog logger shared by the hosts and keeps a
// short in-memory trace of recent log lines.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps debug, info, warn and error to zerolog levels.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("invalid log level: %s", level)
}

// Init builds a console logger at the given level writing to w (stderr when
// nil), installs it as the global zerolog logger and returns it.
func Init(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	log.Logger = l
	return l, nil
}

// Trace is an io.Writer that keeps the last Size lines written to it.
type Trace struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// DefaultTraceSize is the number of lines NewTrace keeps when size <= 0.
const DefaultTraceSize = 200

func NewTrace(size int) *Trace {
	if size <= 0 {
		size = DefaultTraceSize
	}
	return &Trace{lines: make([]string, size)}
}

// Write records each newline-terminated line in p.
func (t *Trace) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		t.lines[t.next] = line
		t.next = (t.next + 1) % len(t.lines)
		if t.next == 0 {
			t.full = true
		}
	}
	return len(p), nil
}

// Lines returns the retained lines, oldest first.
func (t *Trace) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]string(nil), t.lines[:t.next]...)
	}
	out := make([]string, 0, len(t.lines))
	out = append(out, t.lines[t.next:]...)
	return append(out, t.lines[:t.next]...)
}

// String joins the retained lines.
func (t *Trace) String() string {
	return strings.Join(t.Lines(), "\n")
}

// Tee returns a logger that writes the same plain console lines to w and to
// trace.
func Tee(level string, w io.Writer, trace *Trace) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	return Init(level, io.MultiWriter(w, trace))
}
