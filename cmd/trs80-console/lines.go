package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danswartzendruber/liner"
	"github.com/goforj/godump"
	"golang.org/x/term"

	"trs80/pkg/assistant"
	"trs80/pkg/host"
	"trs80/pkg/machine"
)

// runSlice bounds one Run call so partial output is flushed while a long
// program is still going.
const runSlice = 100 * time.Millisecond

// lineWriter passes complete lines through and holds back a trailing partial
// line, which becomes the prompt of the next read.
type lineWriter struct {
	mu      sync.Mutex
	w       io.Writer
	partial []byte
}

func newLineWriter(w io.Writer) *lineWriter { return &lineWriter{w: w} }

func (l *lineWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.partial = append(l.partial, p...)
	if i := bytes.LastIndexByte(l.partial, '\n'); i >= 0 {
		if _, err := l.w.Write(l.partial[:i+1]); err != nil {
			return 0, err
		}
		l.partial = append(l.partial[:0], l.partial[i+1:]...)
	}
	return len(p), nil
}

// TakePartial returns and forgets the pending partial line.
func (l *lineWriter) TakePartial() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := string(l.partial)
	l.partial = l.partial[:0]
	return s
}

// Flush writes the pending partial line.
func (l *lineWriter) Flush() {
	if s := l.TakePartial(); s != "" {
		io.WriteString(l.w, s)
	}
}

// lineReader reads one line after showing prompt.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// newReader uses liner on a terminal and a plain scanner otherwise, so that
// piped scripts work.
func newReader(in *os.File, out io.Writer) lineReader {
	if term.IsTerminal(int(in.Fd())) {
		return &linerReader{l: liner.NewLiner()}
	}
	return &scanReader{sc: bufio.NewScanner(in), out: out}
}

type linerReader struct {
	l *liner.State
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.l.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.l.AppendHistory(line)
	}
	return line, nil
}

func (r *linerReader) Close() error { return r.l.Close() }

type scanReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *scanReader) ReadLine(prompt string) (string, error) {
	io.WriteString(r.out, prompt)
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := r.sc.Text()
	io.WriteString(r.out, line+"\n")
	return line, nil
}

func (r *scanReader) Close() error { return nil }

// runLines drives the machine from a line reader until EOF, .QUIT or ctx
// ends. Lines starting with '.' are console commands.
func runLines(ctx context.Context, s *host.Session, rd lineReader, out *lineWriter) error {
	defer rd.Close()
	m := s.Machine
	for ctx.Err() == nil {
		switch m.State() {
		case machine.Running:
			slice, cancel := context.WithTimeout(ctx, runSlice)
			m.Run(slice)
			cancel()
			if m.State() == machine.Running {
				out.Flush()
			}
			continue

		case machine.AwaitingInput:
			line, err := rd.ReadLine(out.TakePartial())
			if err != nil {
				return eof(err)
			}
			m.SubmitLine(line)

		default:
			out.Flush()
			line, err := rd.ReadLine(">")
			if err != nil {
				return eof(err)
			}
			if strings.HasPrefix(strings.TrimSpace(line), ".") {
				if quit := dotCommand(ctx, s, out, strings.TrimSpace(line)); quit {
					return nil
				}
				continue
			}
			m.SubmitLine(line)
		}
	}
	out.Flush()
	return nil
}

func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// dotCommand handles the console's own commands. It reports whether the
// console should exit.
func dotCommand(ctx context.Context, s *host.Session, out *lineWriter, line string) bool {
	word, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	m := s.Machine
	say := func(format string, args ...any) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	switch strings.ToUpper(word) {
	case ".QUIT", ".EXIT":
		return true
	case ".STATE":
		io.WriteString(out, assistant.FormatState(m.Snapshot()))
	case ".ANALYZE":
		io.WriteString(out, assistant.Analyze(m.Listing.Raw()).String())
	case ".DUMP":
		godump.Dump(m.Snapshot())
	case ".TRACE":
		say("%s", s.Trace.String())
	case ".HIBERNATE":
		if err := s.Hibernate(); err != nil {
			say("hibernate failed: %v", err)
		} else {
			say("hibernated to %s", s.HibernatePath)
		}
	case ".RESUME":
		if err := s.Resume(); err != nil {
			say("resume failed: %v", err)
		} else {
			say("resumed at %s, type CONT", m.CurrentLabel())
		}
	case ".PAUSE":
		if m.State() == machine.Paused {
			say("paused at %s, .STEP or .CONT", m.CurrentLabel())
		} else {
			say("nothing running, Ctrl-\\ pauses a running program")
		}
	case ".CONT":
		if err := m.Cont(); err != nil {
			say("%v", err)
		}
	case ".STEP":
		n := 1
		if arg != "" {
			var err error
			if n, err = strconv.Atoi(arg); err != nil || n < 1 {
				say("usage: .STEP [count]")
				break
			}
		}
		for i := 0; i < n && m.State() != machine.AwaitingInput; i++ {
			if m.StepOnce() == machine.Halted {
				break
			}
		}
		out.Flush()
		if m.State() == machine.Paused {
			say("paused at %s", m.CurrentLabel())
		}
	case ".ASK":
		if arg == "" {
			arg = "Review this program. Explain any bugs you find and give a corrected complete listing."
		}
		reply, code, err := s.Ask(ctx, s.Request(arg))
		if err != nil {
			say("assistant error: %v", err)
			break
		}
		say("%s", reply)
		if code != "" {
			n, err := s.ApplyCode(code)
			if err != nil {
				say("code not entered: %v", err)
			} else {
				say("%d lines entered", n)
			}
		}
	default:
		say("commands: .ASK [question] .STATE .ANALYZE .TRACE .DUMP .PAUSE .CONT .STEP [n] .HIBERNATE .RESUME .QUIT")
	}
	return false
}
