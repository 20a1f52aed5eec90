// Package host wires a Machine to the process around it: logging with a
// trace for the assistant, the cassette directory, the program named on the
// command line and the assistant backend.
package host

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trs80/pkg/assistant"
	"trs80/pkg/cli"
	"trs80/pkg/logger"
	"trs80/pkg/machine"
	"trs80/pkg/utils"
	"trs80/pkg/vfs"
)

const (
	// HibernateFile is the default machine image path.
	HibernateFile = "trs80_hibernate.zip"

	// SyncInterval is how often the cassette shelf is flushed to the host.
	SyncInterval = 3 * time.Second
)

// ErrBusy is returned when the listing cannot be changed because a program
// is running or waiting for input.
var ErrBusy = errors.New("program is running")

// Session is one machine and the host resources around it.
type Session struct {
	Config  *cli.Config
	Machine *machine.Machine
	Disk    *vfs.Disk
	Log     zerolog.Logger
	Trace   *logger.Trace
	Backend assistant.Backend

	HibernatePath string
}

// New opens the cassette directory, builds the logger and the machine. logOut
// receives console log lines (stderr when nil). Extra options are applied
// after the ones derived from cfg.
func New(cfg *cli.Config, logOut io.Writer, opts ...machine.Option) (*Session, error) {
	trace := logger.NewTrace(0)
	log, err := logger.Tee(cfg.LogLevel, logOut, trace)
	if err != nil {
		return nil, err
	}

	disk, err := vfs.Open(cfg.StoragePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.StoragePath).Msg("cassette directory not loaded")
	}

	base := []machine.Option{
		machine.WithLogger(log),
		machine.WithDisk(disk),
		machine.WithTape(cfg.Tape),
		machine.WithSeed(cfg.Seed),
	}
	return &Session{
		Config:  cfg,
		Machine: machine.New(append(base, opts...)...),
		Disk:    disk,
		Log:     log,
		Trace:   trace,
		Backend: assistant.NewOllama(cfg.OllamaURL, cfg.Model, log),

		HibernatePath: HibernateFile,
	}, nil
}

// LoadProgram loads the program named in the config, if any, and starts it
// when -run was given.
func (s *Session) LoadProgram() error {
	if s.Config.Program == "" {
		return nil
	}
	data, path, err := utils.ReadProgram(s.Config.Program)
	if err != nil {
		return err
	}
	n := s.Machine.LoadSource(data)
	s.Log.Info().Str("path", path).Int("lines", n).Msg("program loaded")
	if s.Config.Run {
		return s.Machine.Start(nil)
	}
	return nil
}

// StartDiskSyncer flushes the cassette shelf every interval until the
// returned stop function is called. stop does a final flush.
func (s *Session) StartDiskSyncer(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Disk.Sync(); err != nil {
					s.Log.Warn().Err(err).Msg("cassette sync failed")
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		<-finished
		if err := s.Disk.Sync(); err != nil {
			s.Log.Warn().Err(err).Msg("final cassette sync failed")
		}
	}
}

// Request captures what the assistant is sent with question: the listing,
// the recent log trace and the state report. Call it from the goroutine that
// drives the machine.
func (s *Session) Request(question string) assistant.Request {
	return assistant.Request{
		Question: question,
		Program:  s.Machine.Listing.String(),
		Trace:    s.Trace.String(),
		State:    assistant.FormatState(s.Machine.Snapshot()),
	}
}

// Ask sends req to the backend. It does not touch the machine and may run on
// any goroutine.
func (s *Session) Ask(ctx context.Context, req assistant.Request) (reply, code string, err error) {
	start := time.Now()
	reply, code, err = assistant.Ask(ctx, s.Backend, req)
	if err != nil {
		s.Log.Error().Err(err).Msg("assistant request failed")
		return "", "", err
	}
	s.Log.Info().Dur("took", time.Since(start)).Int("code_bytes", len(code)).Msg("assistant replied")
	return reply, code, nil
}

// ApplyCode enters every numbered line of code into the listing, the same
// way typing them at the prompt would. It returns how many were entered.
func (s *Session) ApplyCode(code string) (int, error) {
	switch s.Machine.State() {
	case machine.Running, machine.AwaitingInput:
		return 0, ErrBusy
	}
	n := 0
	for _, line := range strings.Split(code, "\n") {
		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		if _, _, ok := s.Machine.Listing.Enter(line); ok {
			n++
		}
	}
	s.Log.Info().Int("lines", n).Msg("assistant code entered")
	return n, nil
}

// TogglePause pauses a running program or continues a paused one. The pause
// takes effect at the next statement boundary.
func (s *Session) TogglePause() error {
	m := s.Machine
	switch m.State() {
	case machine.Running:
		m.Pause()
		s.Log.Debug().Str("line", m.CurrentLabel()).Msg("pause requested")
		return nil
	case machine.Paused:
		return m.Cont()
	}
	return machine.ErrCantContinue
}

// Hibernate saves the machine to HibernatePath.
func (s *Session) Hibernate() error {
	if err := s.Machine.HibernateToFile(s.HibernatePath); err != nil {
		return err
	}
	s.Log.Info().Str("path", s.HibernatePath).Msg("hibernated")
	return nil
}

// Resume restores the machine from HibernatePath.
func (s *Session) Resume() error {
	return s.Machine.ResumeFromFile(s.HibernatePath)
}

// Close flushes the cassette shelf.
func (s *Session) Close() error {
	return s.Disk.Sync()
}
