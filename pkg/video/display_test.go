package video

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPrint(t *testing.T) {
	d := New()
	d.Print("HELLO", true)
	d.Print("A", false)
	d.Print("B\nC", true)

	want := []ScreenRow{{0, "HELLO"}, {1, "AB"}, {2, "C"}}
	if got := d.NonBlankRows(); !reflect.DeepEqual(got, want) {
		t.Errorf("NonBlankRows: expected %v, got %v", want, got)
	}
	if row, col := d.Cursor(); row != 3 || col != 0 {
		t.Errorf("Cursor: expected (3,0), got (%d,%d)", row, col)
	}
}

func TestPrint_WrapKeepsCharacter(t *testing.T) {
	d := New()
	d.Print(strings.Repeat("X", Cols)+"Y", false)

	if got := d.Row(0); got != strings.Repeat("X", Cols) {
		t.Errorf("row 0: got %q", got)
	}
	if got := d.Row(1); got != "Y" {
		t.Errorf("row 1: expected %q, got %q", "Y", got)
	}
}

func TestPrint_FullRowThenNewline(t *testing.T) {
	d := New()
	d.Print(strings.Repeat("X", Cols), true)
	if row, col := d.Cursor(); row != 1 || col != 0 {
		t.Errorf("a full row plus newline must advance exactly one row, got (%d,%d)", row, col)
	}
}

func TestScroll(t *testing.T) {
	d := New()
	d.Set(0, 3) // second text row of pixels
	d.Set(5, 0)
	for i := 0; i < Rows; i++ {
		d.Print(string(rune('A'+i)), true)
	}

	if got := d.Row(0); got != "B" {
		t.Errorf("row 0 after scroll: expected B, got %q", got)
	}
	if got := d.Row(Rows - 1); got != "" {
		t.Errorf("last row after scroll: expected blank, got %q", got)
	}
	if d.Point(0, 0) != 1 {
		t.Error("pixel (0,3) should have scrolled to (0,0)")
	}
	if d.Point(5, 0) != 0 || d.Point(5, 45) != 0 {
		t.Error("pixel (5,0) should have scrolled off")
	}
	if row, _ := d.Cursor(); row != Rows-1 {
		t.Errorf("cursor row: expected %d, got %d", Rows-1, row)
	}
}

func TestPrintAt_RestoresCursor(t *testing.T) {
	d := New()
	d.Print("AB", false)
	d.Poke(ScreenBase+Cols+2, 'Z')

	d.PrintAt(Cols, "HI", true)

	// Only the cells written are replaced.
	if got := d.Row(1); got != "HIZ" {
		t.Errorf("row 1: expected %q, got %q", "HIZ", got)
	}
	if row, col := d.Cursor(); row != 0 || col != 2 {
		t.Errorf("Cursor: expected (0,2), got (%d,%d)", row, col)
	}
	d.Print("C", false)
	if got := d.Row(0); got != "ABC" {
		t.Errorf("row 0: expected ABC, got %q", got)
	}
}

func TestBackspace(t *testing.T) {
	d := New()
	d.Print("AB", false)
	d.Backspace()
	if got := d.Row(0); got != "A" {
		t.Errorf("expected A, got %q", got)
	}

	d.SetCursor(1, 0)
	d.Backspace()
	if row, col := d.Cursor(); row != 0 || col != Cols-1 {
		t.Errorf("expected (0,%d), got (%d,%d)", Cols-1, row, col)
	}

	d.SetCursor(0, 0)
	d.Backspace()
	if row, col := d.Cursor(); row != 0 || col != 0 {
		t.Errorf("backspace at home must not move, got (%d,%d)", row, col)
	}
}

func TestPeekPoke(t *testing.T) {
	d := New()
	d.Print("A", false)

	tests := []struct {
		addr int
		want int
	}{
		{ScreenBase, 'A'},
		{ScreenBase + 1, ' '},
		{ScreenBase - 1, 0},
		{ScreenBase + ScreenSize, 0},
	}
	for _, tt := range tests {
		if got := d.Peek(tt.addr); got != tt.want {
			t.Errorf("Peek(%d): expected %d, got %d", tt.addr, tt.want, got)
		}
	}

	if !d.Poke(ScreenBase+ScreenSize-1, '*') {
		t.Error("Poke on last cell should land")
	}
	if got := d.Row(Rows - 1); got != strings.Repeat(" ", Cols-1)+"*" {
		t.Errorf("last row: got %q", got)
	}
	if d.Poke(100, 1) {
		t.Error("Poke outside the screen should be ignored")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := New()
	d.Print("SAVED", true)
	d.Set(10, 20)

	data, err := d.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	e := New()
	if err := e.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if e.Row(0) != "SAVED" || e.Point(10, 20) != 1 {
		t.Errorf("restored screen differs: %q point=%d", e.Row(0), e.Point(10, 20))
	}
	if err := e.UnmarshalBinary(data[:10]); err != ErrBadSnapshot {
		t.Errorf("expected ErrBadSnapshot, got %v", err)
	}
}

func TestSavePNG(t *testing.T) {
	d := New()
	d.Set(0, 0)
	d.PrintAt(Cols, "PNG", false)

	img := d.Image(2)
	if b := img.Bounds(); b.Dx() != Width*2 || b.Dy() != Height*2 {
		t.Fatalf("Image bounds: got %v", b)
	}
	if c := img.RGBAAt(0, 0); c != Phosphor {
		t.Errorf("lit pixel colour: got %v", c)
	}

	path := filepath.Join(t.TempDir(), "screen.png")
	if err := d.SavePNG(path, 2); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
}

func TestProperty_SetThenPoint(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)
	d := New()

	properties.Property("SET is visible to POINT immediately", prop.ForAll(
		func(x, y int) bool {
			d.Set(x, y)
			return d.Point(x, y) == 1
		},
		gen.IntRange(0, Width-1),
		gen.IntRange(0, Height-1),
	))

	properties.Property("RESET clears what SET lit", prop.ForAll(
		func(x, y int) bool {
			d.Set(x, y)
			d.Reset(x, y)
			return d.Point(x, y) == 0
		},
		gen.IntRange(0, Width-1),
		gen.IntRange(0, Height-1),
	))

	properties.Property("off-screen pixels read as 0", prop.ForAll(
		func(x int) bool {
			d.Set(Width+x, 0)
			return d.Point(Width+x, 0) == 0 && d.Point(-1-x, 0) == 0
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_PrintAtRestoresCursor(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("PRINT@ leaves the cursor where it was", prop.ForAll(
		func(row, col, pos int, s string) bool {
			d := New()
			d.SetCursor(row, col)
			d.PrintAt(pos, s, true)
			r, c := d.Cursor()
			return r == row && c == col
		},
		gen.IntRange(0, Rows-1),
		gen.IntRange(0, Cols-1),
		gen.IntRange(0, ScreenSize-1),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
