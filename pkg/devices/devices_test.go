package devices

import (
	"errors"
	"testing"
	"time"

	"trs80/pkg/vfs"
)

func TestKeyboard_PressAndInkey(t *testing.T) {
	k := NewKeyboard()

	if got := k.Inkey(); got != "" {
		t.Errorf("Inkey with nothing pending: expected empty, got %q", got)
	}
	if !k.Press('a') {
		t.Fatal("Press on an empty latch should succeed")
	}
	if k.Press('b') {
		t.Error("Press while a key is pending should be dropped")
	}
	if got := k.Inkey(); got != "A" {
		t.Errorf("Inkey: expected A, got %q", got)
	}
	if got := k.Inkey(); got != "" {
		t.Errorf("Inkey must clear the latch, got %q", got)
	}
	if k.Last() != 'A' {
		t.Errorf("Last: expected A, got %q", k.Last())
	}
}

func TestKeyboard_PeekDebounce(t *testing.T) {
	now := time.Unix(1000, 0)
	k := NewKeyboard()
	k.SetClock(func() time.Time { return now })

	k.Press('x')
	if got := k.Peek(); got != 'X' {
		t.Fatalf("first Peek: expected %d, got %d", 'X', got)
	}

	k.Press('y')
	now = now.Add(DebounceWindow / 2)
	if got := k.Peek(); got != 0 {
		t.Errorf("Peek inside the window: expected 0, got %d", got)
	}
	if k.Pending() != 'Y' {
		t.Error("a debounced Peek must leave the key pending")
	}

	now = now.Add(DebounceWindow)
	if got := k.Peek(); got != 'Y' {
		t.Errorf("Peek after the window: expected %d, got %d", 'Y', got)
	}
	now = now.Add(DebounceWindow)
	if got := k.Peek(); got != 0 {
		t.Errorf("Peek with nothing pending: expected 0, got %d", got)
	}
}

func TestKeyboard_State(t *testing.T) {
	k1 := NewKeyboard()
	k1.Press('q')

	k2 := NewKeyboard()
	if err := k2.LoadState(k1.SaveState()); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if k2.Pending() != 'Q' || k2.Last() != 'Q' {
		t.Errorf("state mismatch after restore: pending %q last %q", k2.Pending(), k2.Last())
	}
}

func TestTape_WriteThenRead(t *testing.T) {
	disk := vfs.New()
	tape := NewTape(disk, "")
	if tape.Name() != DefaultTape {
		t.Fatalf("expected default tape, got %s", tape.Name())
	}

	for _, rec := range []string{"1", "HELLO", "3.5"} {
		if err := tape.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	tape.Rewind()

	for _, want := range []string{"1", "HELLO", "3.5"} {
		got, err := tape.Read()
		if err != nil || got != want {
			t.Fatalf("Read: expected %q, got %q (%v)", want, got, err)
		}
	}
	if _, err := tape.Read(); !errors.Is(err, ErrTapeEmpty) {
		t.Errorf("expected ErrTapeEmpty, got %v", err)
	}
	if tape.Position() != 3 {
		t.Errorf("Position: expected 3, got %d", tape.Position())
	}
}

func TestTape_RecordingStartsFresh(t *testing.T) {
	disk := vfs.New()
	_ = disk.Write("OLD.DAT", []byte("STALE\n"))
	tape := NewTape(disk, "OLD.DAT")

	if got, _ := tape.Read(); got != "STALE" {
		t.Fatalf("expected existing record, got %q", got)
	}
	tape.Rewind()
	_ = tape.Write("NEW")
	_ = tape.Write("NEWER")

	data, _ := disk.Read("OLD.DAT")
	if string(data) != "NEW\nNEWER\n" {
		t.Errorf("tape contents: got %q", data)
	}
}

func TestTape_MissingFileIsEmpty(t *testing.T) {
	tape := NewTape(vfs.New(), "NONE.DAT")
	if _, err := tape.Read(); !errors.Is(err, ErrTapeEmpty) {
		t.Errorf("expected ErrTapeEmpty, got %v", err)
	}
}

func TestTape_State(t *testing.T) {
	disk := vfs.New()
	t1 := NewTape(disk, "A.DAT")
	_ = t1.Write("X")
	t1.Select("B.DAT")
	_ = disk.Write("B.DAT", []byte("1\n2\n"))
	_, _ = t1.Read()

	t2 := NewTape(disk, "")
	if err := t2.LoadState(t1.SaveState()); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if t2.Name() != "B.DAT" || t2.Position() != 1 {
		t.Errorf("state mismatch: %s @%d", t2.Name(), t2.Position())
	}
	if got, _ := t2.Read(); got != "2" {
		t.Errorf("restored tape should continue at record 2, got %q", got)
	}
}

var (
	_ StatefulDevice = (*Keyboard)(nil)
	_ StatefulDevice = (*Tape)(nil)
	_ RecordStore    = (*vfs.Disk)(nil)
)
