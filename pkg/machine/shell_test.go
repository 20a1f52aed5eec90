package machine

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestShell_Commands(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{"list", []string{"20 PRINT 2", "10 PRINT 1", "LIST"}, "10 PRINT 1\n20 PRINT 2\n"},
		{"list range", []string{"10 A=1", "20 B=2", "30 C=3", "LIST 20-"}, "20 B=2\n30 C=3\n"},
		{"list missing line", []string{"10 A=1", "LIST 50"}, "NO SUCH LINE\n"},
		{"list bad range", []string{"LIST X"}, "?SYNTAX ERROR\n"},
		{"line replaced", []string{"10 A=1", "10 A=2", "LIST"}, "10 A=2\n"},
		{"bare number deletes", []string{"10 A=1", "20 B=2", "10", "LIST"}, "20 B=2\n"},
		{"clear", []string{"A=5", "CLEAR", "PRINT A"}, "VARIABLES CLEARED\n0\n"},
		{"delete", []string{"10 A=1", "20 B=2", "DELETE 10", "LIST"}, "DELETED\n20 B=2\n"},
		{"delete without range", []string{"DELETE"}, "?SYNTAX ERROR\n"},
		{"delete bad range", []string{"DELETE 30-10"}, "?SYNTAX ERROR\n"},
		{"system", []string{"SYSTEM"}, "SYSTEM COMMAND NOT IMPLEMENTED\n"},
		{"direct print", []string{"PRINT 2+3"}, "5\n"},
		{"question mark print", []string{"?\"HI\""}, "HI\n"},
		{"direct assignment", []string{"X=7", "PRINT X*2"}, "14\n"},
		{"direct hard error", []string{"PRINT 1/0"}, "?DIVISION BY ZERO\n"},
		{"direct input", []string{"INPUT A"}, "?ILLEGAL DIRECT\n"},
		{"cont when idle", []string{"CONT"}, "?CAN'T CONTINUE\n"},
		{"load without picker", []string{"LOAD"}, "?FILE NAME REQUIRED\n"},
		{"load missing file", []string{"LOAD \"NOPE\""}, "?FILE NOT FOUND\n"},
		{"save and load", []string{"10 PRINT 1", "SAVE \"HELLO\"", "NEW", "LOAD \"HELLO\"", "LIST"}, "SAVED HELLO.BAS\nREADY\nREADY\n10 PRINT 1\n"},
		{"lower case is upper-cased", []string{"print \"abc\""}, "ABC\n"},
		{"new", []string{"NEW"}, "READY\n"},
		{"cls", []string{"PRINT 1", "CLS"}, "1\nREADY\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, out := newMachine(t, "")
			for _, line := range tt.lines {
				m.SubmitLine(line)
			}
			if out.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, out.String())
			}
		})
	}
}

func TestShell_PromptAfterNew(t *testing.T) {
	m, _ := newMachine(t, "")
	m.SubmitLine("NEW")
	if got := m.Screen.Row(0); got != "READY" {
		t.Errorf("row 0: expected READY, got %q", got)
	}
	if got := m.Screen.Row(1); got != ">" {
		t.Errorf("row 1: expected >, got %q", got)
	}
}

func TestShell_TypedLine(t *testing.T) {
	m, out := newMachine(t, "")
	for _, r := range "10 print \"hi\"\r" {
		m.KeyPress(r)
	}
	for _, r := range "RUNX" {
		m.KeyPress(r)
	}
	m.KeyPress(KeyBackspace)
	m.KeyPress(KeyEnter)
	if m.State() != Running {
		t.Fatalf("expected Running, got %v", m.State())
	}
	m.Run(context.Background())
	if out.String() != "HI\n" {
		t.Errorf("expected %q, got %q", "HI\n", out.String())
	}
	if line := m.Listing.Lines()[0]; line.Text != "PRINT \"HI\"" {
		t.Errorf("listing: expected upper-cased line, got %q", line.Text)
	}
}

func TestShell_DirectGotoKeepsVariables(t *testing.T) {
	m, out := newMachine(t, "10 PRINT A\n")
	m.SubmitLine("A=3")
	m.SubmitLine("GOTO 10")
	if m.State() != Running {
		t.Fatalf("expected Running, got %v", m.State())
	}
	m.Run(context.Background())
	if out.String() != "3\n" {
		t.Errorf("expected %q, got %q", "3\n", out.String())
	}
}

type stubPicker struct {
	name  string
	data  []byte
	saved string
	err   error
}

func (p *stubPicker) Open() (string, []byte, error) { return p.name, p.data, p.err }

func (p *stubPicker) Save(text string) (string, error) {
	p.saved = text
	return p.name, p.err
}

func TestShell_FilePicker(t *testing.T) {
	picker := &stubPicker{name: "GAME.BAS", data: []byte("10 PRINT \"PICKED\"\r\n")}
	m, out := newMachine(t, "", WithFilePicker(picker))
	m.SubmitLine("LOAD")
	m.SubmitLine("RUN")
	m.Run(context.Background())
	if !strings.Contains(out.String(), "PICKED") {
		t.Errorf("picked program did not run: %q", out.String())
	}

	m.SubmitLine("SAVE")
	if picker.saved != "10 PRINT \"PICKED\"\n" {
		t.Errorf("saved text: got %q", picker.saved)
	}

	picker.err = ErrCancelled
	out.Reset()
	m.SubmitLine("LOAD")
	if out.Len() != 0 {
		t.Errorf("cancelled dialog printed %q", out.String())
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line, word, arg string
	}{
		{"LIST 10-20", "LIST", "10-20"},
		{"LIST10", "LIST", "10"},
		{"RUN", "RUN", ""},
		{"A=1", "A", "=1"},
		{"LOAD \"X\"", "LOAD", "\"X\""},
	}
	for _, tt := range tests {
		word, arg := splitCommand(tt.line)
		if word != tt.word || arg != tt.arg {
			t.Errorf("splitCommand(%q): expected (%q, %q), got (%q, %q)", tt.line, tt.word, tt.arg, word, arg)
		}
	}
}

func TestSaveWritesDisk(t *testing.T) {
	m := New(WithEcho(new(bytes.Buffer)))
	m.SubmitLine("10 A=1")
	m.SubmitLine("SAVE \"PROG\"")
	data, err := m.Disk.Read("PROG.BAS")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "10 A=1\n" {
		t.Errorf("expected %q, got %q", "10 A=1\n", data)
	}
	m.SubmitLine("SAVE \"BAD/NAME\"")
	if files := m.Disk.List(); len(files) != 1 {
		t.Errorf("invalid name should not be written, disk holds %v", files)
	}
}
