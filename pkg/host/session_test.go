package host

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trs80/pkg/cli"
	"trs80/pkg/machine"
)

func newSession(t *testing.T, dir string, args ...string) (*Session, *bytes.Buffer) {
	t.Helper()
	base := []string{"-storage", filepath.Join(dir, "shelf"), "-seed", "1", "-l", "error"}
	cfg, err := cli.ParseArgs("test", append(base, args...))
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	out := new(bytes.Buffer)
	s, err := New(cfg, io.Discard, machine.WithEcho(out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.HibernatePath = filepath.Join(dir, "state.zip")
	return s, out
}

func TestLoadProgram_Run(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.bas")
	if err := os.WriteFile(path, []byte("10 PRINT \"HELLO\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, out := newSession(t, dir, "-run", strings.TrimSuffix(path, ".bas"))
	if err := s.LoadProgram(); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if s.Machine.State() != machine.Running {
		t.Fatalf("expected Running, got %v", s.Machine.State())
	}
	s.Machine.Run(context.Background())
	if out.String() != "HELLO\n" {
		t.Errorf("expected %q, got %q", "HELLO\n", out.String())
	}
}

func TestLoadProgram_Missing(t *testing.T) {
	s, _ := newSession(t, t.TempDir(), "nope.bas")
	if err := s.LoadProgram(); err == nil {
		t.Errorf("expected an error for a missing program")
	}
}

func TestDiskSyncer(t *testing.T) {
	dir := t.TempDir()
	s, _ := newSession(t, dir)
	stop := s.StartDiskSyncer(time.Hour)
	s.Machine.SubmitLine("10 A=1")
	s.Machine.SubmitLine(`SAVE "PROG"`)
	stop()

	data, err := os.ReadFile(filepath.Join(dir, "shelf", "PROG.BAS"))
	if err != nil {
		t.Fatalf("saved program not flushed: %v", err)
	}
	if string(data) != "10 A=1\n" {
		t.Errorf("expected %q, got %q", "10 A=1\n", data)
	}

	again, _ := newSession(t, dir)
	if _, err := again.Disk.Read("PROG.BAS"); err != nil {
		t.Errorf("reopened shelf is missing PROG.BAS: %v", err)
	}
}

type fakeBackend struct {
	reply  string
	err    error
	system string
	prompt string
}

func (f *fakeBackend) Complete(_ context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	return f.reply, f.err
}

func TestAskAndApply(t *testing.T) {
	s, out := newSession(t, t.TempDir())
	fake := &fakeBackend{reply: "Fixed:\n```BASIC\n10 print \"fixed\"\n20 END\n```"}
	s.Backend = fake

	s.Machine.SubmitLine("10 PRINT 1/0")
	s.Machine.SubmitLine("RUN")
	s.Machine.Run(context.Background())

	req := s.Request("why does this fail?")
	_, code, err := s.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	for _, want := range []string{"why does this fail?", "CURRENT PROGRAM:\n10 PRINT 1/0", "DEBUG TRACE:", "PROGRAM STATE:", "Last Error:"} {
		if !strings.Contains(fake.prompt, want) {
			t.Errorf("prompt is missing %q:\n%s", want, fake.prompt)
		}
	}

	n, err := s.ApplyCode(code)
	if err != nil || n != 2 {
		t.Fatalf("ApplyCode: n=%d err=%v", n, err)
	}
	out.Reset()
	s.Machine.SubmitLine("RUN")
	s.Machine.Run(context.Background())
	if out.String() != "FIXED\n" {
		t.Errorf("expected %q, got %q", "FIXED\n", out.String())
	}
}

func TestAsk_Error(t *testing.T) {
	s, _ := newSession(t, t.TempDir())
	s.Backend = &fakeBackend{err: errors.New("offline")}
	if _, _, err := s.Ask(context.Background(), s.Request("hi")); err == nil {
		t.Errorf("expected the backend error")
	}
}

func TestApplyCode_Busy(t *testing.T) {
	s, _ := newSession(t, t.TempDir())
	s.Machine.SubmitLine("10 INPUT A")
	s.Machine.SubmitLine("RUN")
	s.Machine.Run(context.Background())
	if s.Machine.State() != machine.AwaitingInput {
		t.Fatalf("expected AwaitingInput, got %v", s.Machine.State())
	}
	if _, err := s.ApplyCode("20 END"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestHibernateResume(t *testing.T) {
	dir := t.TempDir()
	s, _ := newSession(t, dir)
	s.Machine.SubmitLine("10 A=42:STOP")
	s.Machine.SubmitLine("20 PRINT A")
	s.Machine.SubmitLine("RUN")
	s.Machine.Run(context.Background())
	if err := s.Hibernate(); err != nil {
		t.Fatalf("Hibernate: %v", err)
	}

	r, out := newSession(t, dir)
	if err := r.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := r.Machine.Cont(); err != nil {
		t.Fatalf("Cont: %v", err)
	}
	r.Machine.Run(context.Background())
	if out.String() != "42\n" {
		t.Errorf("expected %q, got %q", "42\n", out.String())
	}
}

func TestTogglePause(t *testing.T) {
	s, _ := newSession(t, t.TempDir())
	m := s.Machine
	if err := s.TogglePause(); !errors.Is(err, machine.ErrCantContinue) {
		t.Errorf("idle: expected ErrCantContinue, got %v", err)
	}

	m.LoadSource([]byte("10 A=A+1\n20 GOTO 10\n"))
	if err := m.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Step()
	if err := s.TogglePause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if st := m.Step(); st != machine.Suspended || m.State() != machine.Paused {
		t.Fatalf("expected Paused, got %v (%v)", m.State(), st)
	}
	if err := s.TogglePause(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if m.State() != machine.Running {
		t.Errorf("expected Running, got %v", m.State())
	}
}
