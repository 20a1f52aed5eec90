package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		ext      string
		expected string
		wantErr  bool
	}{
		{"game", "BAS", "GAME.BAS", false},
		{` "Game" `, "bas", "GAME.BAS", false},
		{"data.dat", "BAS", "DATA.DAT", false},
		{"TAPE", "", "TAPE", false},
		{"waytoolongname", "BAS", "", true},
		{"../passwd", "", "", true},
		{"", "BAS", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.name, tt.ext)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q): expected %q, got %q", tt.name, tt.expected, got)
			}
		})
	}
}

func TestDisk_Write(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		data         []byte
		err          error
		expectedUsed int
	}{
		{"Valid write", "TEST.DAT", []byte{1, 2, 3}, nil, 3},
		{"Lower case rejected", "test.dat", []byte{1}, ErrInvalidFilename, 0},
		{"Too long", "VERYLONGNAME.DAT", []byte{1}, ErrInvalidFilename, 0},
		{"Path traversal", "../X", []byte{1}, ErrInvalidFilename, 0},
		{"Quota exceeded", "BIG.BIN", make([]byte, MaxBytes+1), ErrQuotaExceeded, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			err := d.Write(tt.filename, tt.data)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Write() error = %v, expected %v", err, tt.err)
			}
			if d.Used() != tt.expectedUsed {
				t.Errorf("Used = %d, expected %d", d.Used(), tt.expectedUsed)
			}
			if tt.err == nil {
				got, _ := d.Read(tt.filename)
				if !reflect.DeepEqual(got, tt.data) {
					t.Errorf("Read: expected %v, got %v", tt.data, got)
				}
			}
		})
	}
}

func TestDisk_AppendAndOverwrite(t *testing.T) {
	d := New()
	if err := d.Append("TAPE.DAT", []byte("1\n")); err != nil {
		t.Fatal(err)
	}
	if err := d.Append("TAPE.DAT", []byte("2\n")); err != nil {
		t.Fatal(err)
	}
	got, _ := d.Read("TAPE.DAT")
	if string(got) != "1\n2\n" {
		t.Errorf("Append: got %q", got)
	}
	if d.Used() != 4 {
		t.Errorf("Used after append: expected 4, got %d", d.Used())
	}

	if err := d.Write("TAPE.DAT", []byte("X")); err != nil {
		t.Fatal(err)
	}
	if size, _ := d.Size("TAPE.DAT"); size != 1 || d.Used() != 1 {
		t.Errorf("overwrite: size %d used %d", size, d.Used())
	}
}

func TestDisk_DeepCopy(t *testing.T) {
	d := New()
	data := []byte{1, 2, 3}
	_ = d.Write("COPY.BIN", data)
	data[0] = 9

	got, _ := d.Read("COPY.BIN")
	if got[0] != 1 {
		t.Error("Write must copy its input")
	}
	got[1] = 9
	again, _ := d.Read("COPY.BIN")
	if again[1] != 2 {
		t.Error("Read must return a copy")
	}
}

func TestDisk_QuotaExact(t *testing.T) {
	d := New()
	if err := d.Write("A.BIN", make([]byte, MaxBytes-1)); err != nil {
		t.Fatal(err)
	}
	if err := d.Write("B.BIN", []byte{1}); err != nil {
		t.Errorf("filling the last byte should succeed: %v", err)
	}
	if err := d.Append("B.BIN", []byte{1}); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestDisk_Persistence(t *testing.T) {
	dir := t.TempDir()

	d, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = d.Write("KEEP.BAS", []byte("10 PRINT 1\n"))
	_ = d.Write("GONE.DAT", []byte("x"))
	if !d.Dirty() {
		t.Fatal("expected dirty after write")
	}
	if err := d.Sync(); err != nil {
		t.Fatal(err)
	}
	if d.Dirty() {
		t.Error("expected clean after sync")
	}

	if err := d.Delete("GONE.DAT"); err != nil {
		t.Fatal(err)
	}
	if err := d.Sync(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "GONE.DAT")); !os.IsNotExist(err) {
		t.Errorf("deleted file still on host: %v", err)
	}

	// Stray host files with invalid names are ignored on load.
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.List(); !reflect.DeepEqual(got, []string{"KEEP.BAS"}) {
		t.Errorf("List after reopen: got %v", got)
	}
	data, err := reopened.Read("KEEP.BAS")
	if err != nil || string(data) != "10 PRINT 1\n" {
		t.Errorf("Read after reopen: %q, %v", data, err)
	}
}

func TestDisk_MissingDirectory(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing directory should be an empty disk, got %v", err)
	}
	if len(d.List()) != 0 {
		t.Error("expected empty disk")
	}
	if _, err := d.Read("NONE.DAT"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
	if err := d.Delete("NONE.DAT"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
