// Package video models the TRS-80 display: a 64x16 text plane and a 128x48
// block-graphics plane sharing one screen. Each text cell covers a 2x3 block
// of pixels, so scrolling one text row scrolls three pixel rows.
package video

import (
	"errors"
	"strings"

	"trs80/pkg/grid"
)

const (
	Cols   = 64
	Rows   = 16
	Width  = 128
	Height = 48

	// ScreenBase is the first address of the memory-mapped text plane.
	ScreenBase = 15360
	ScreenSize = Cols * Rows

	blank = ' '
)

var ErrBadSnapshot = errors.New("bad screen snapshot")

// Display holds both planes and the text cursor.
type Display struct {
	text   [Rows][Cols]byte
	pixels [Height][Width]bool
	row    int
	col    int
}

func New() *Display {
	d := &Display{}
	d.Clear()
	return d
}

// Clear blanks both planes and homes the cursor.
func (d *Display) Clear() {
	for r := range d.text {
		d.clearRow(r)
	}
	d.pixels = [Height][Width]bool{}
	d.row, d.col = 0, 0
}

func (d *Display) clearRow(r int) {
	for c := range d.text[r] {
		d.text[r][c] = blank
	}
}

// Cursor returns the 0-based row and column of the next character.
func (d *Display) Cursor() (row, col int) {
	return d.row, d.col
}

// SetCursor moves the cursor, clamped to the screen.
func (d *Display) SetCursor(row, col int) {
	d.row = clamp(row, 0, Rows-1)
	d.col = clamp(col, 0, Cols)
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

// scroll moves the text plane up one row and the pixel plane up three.
func (d *Display) scroll() {
	copy(d.text[:], d.text[1:])
	d.clearRow(Rows - 1)
	copy(d.pixels[:], d.pixels[3:])
	for y := Height - 3; y < Height; y++ {
		d.pixels[y] = [Width]bool{}
	}
}

// newline moves the cursor to the start of the next row, scrolling at the
// bottom.
func (d *Display) newline() {
	d.col = 0
	d.row++
	if d.row >= Rows {
		d.scroll()
		d.row = Rows - 1
	}
}

// putChar writes c at the cursor. A cursor parked past the last column wraps
// before the character is written.
func (d *Display) putChar(c byte) {
	if d.col >= Cols {
		d.newline()
	}
	d.text[d.row][d.col] = c
	d.col++
}

// Print writes s at the cursor, honouring embedded newlines, then ends the
// line when newline is set.
func (d *Display) Print(s string, newline bool) {
	for _, r := range s {
		if r == '\n' {
			d.newline()
			continue
		}
		d.putChar(toCell(r))
	}
	if newline {
		d.newline()
	}
}

func toCell(r rune) byte {
	if r < 0 || r > 0xFF {
		return '?'
	}
	return byte(r)
}

// PrintAt writes s starting at the 0-based cell pos and then puts the cursor
// back where it was. The cells about to be written are blanked first.
func (d *Display) PrintAt(pos int, s string, newline bool) {
	savedRow, savedCol := d.row, d.col

	pos = clamp(pos, 0, ScreenSize-1)
	col, row := grid.GetGridCoords(pos, Cols)
	d.row, d.col = row, col
	n := len([]rune(s))
	for c := col; c < Cols && c < col+n; c++ {
		d.text[row][c] = blank
	}
	d.Print(s, newline)

	d.row, d.col = savedRow, savedCol
}

// Backspace removes the character before the cursor, moving up a row from
// column 0.
func (d *Display) Backspace() {
	switch {
	case d.col > 0:
		d.col--
	case d.row > 0:
		d.row--
		d.col = Cols - 1
	default:
		return
	}
	d.text[d.row][d.col] = blank
}

// inPlane reports whether (x, y) lies on the pixel plane.
func inPlane(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// Set lights the pixel at 0-based (x, y). Off-screen coordinates are ignored.
func (d *Display) Set(x, y int) {
	if inPlane(x, y) {
		d.pixels[y][x] = true
	}
}

// Reset clears the pixel at 0-based (x, y).
func (d *Display) Reset(x, y int) {
	if inPlane(x, y) {
		d.pixels[y][x] = false
	}
}

// Point returns 1 when the pixel at 0-based (x, y) is lit, else 0.
func (d *Display) Point(x, y int) int {
	if inPlane(x, y) && d.pixels[y][x] {
		return 1
	}
	return 0
}

// Row returns text row r with trailing blanks removed.
func (d *Display) Row(r int) string {
	if r < 0 || r >= Rows {
		return ""
	}
	return strings.TrimRight(string(d.text[r][:]), " ")
}

// Lines returns every text row, trailing blanks removed.
func (d *Display) Lines() []string {
	lines := make([]string, Rows)
	for r := range lines {
		lines[r] = d.Row(r)
	}
	return lines
}

// ScreenRow is a non-blank text row and its 0-based index.
type ScreenRow struct {
	Row  int
	Text string
}

// NonBlankRows returns the rows that contain anything but spaces.
func (d *Display) NonBlankRows() []ScreenRow {
	var rows []ScreenRow
	for r := 0; r < Rows; r++ {
		if s := d.Row(r); s != "" {
			rows = append(rows, ScreenRow{Row: r, Text: s})
		}
	}
	return rows
}

// String renders the text plane as newline-separated rows.
func (d *Display) String() string {
	return strings.Join(d.Lines(), "\n")
}
