package video

import "trs80/pkg/grid"

// Contains reports whether addr falls in the memory-mapped text plane.
func Contains(addr int) bool {
	return addr >= ScreenBase && addr < ScreenBase+ScreenSize
}

// Peek returns the character code stored at a screen address, or 0 outside
// the screen.
func (d *Display) Peek(addr int) int {
	if !Contains(addr) {
		return 0
	}
	col, row := grid.GetGridCoords(addr-ScreenBase, Cols)
	return int(d.text[row][col])
}

// Poke stores the low byte of value at a screen address. Other addresses are
// ignored. It reports whether the write landed.
func (d *Display) Poke(addr, value int) bool {
	if !Contains(addr) {
		return false
	}
	col, row := grid.GetGridCoords(addr-ScreenBase, Cols)
	d.text[row][col] = byte(value)
	return true
}

// MarshalBinary encodes the text plane followed by one byte per pixel.
func (d *Display) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, ScreenSize+Width*Height)
	for r := range d.text {
		buf = append(buf, d.text[r][:]...)
	}
	for y := range d.pixels {
		for x := range d.pixels[y] {
			var b byte
			if d.pixels[y][x] {
				b = 1
			}
			buf = append(buf, b)
		}
	}
	return buf, nil
}

// UnmarshalBinary restores both planes from MarshalBinary output. The cursor
// is left alone.
func (d *Display) UnmarshalBinary(data []byte) error {
	if len(data) != ScreenSize+Width*Height {
		return ErrBadSnapshot
	}
	for i := 0; i < ScreenSize; i++ {
		col, row := grid.GetGridCoords(i, Cols)
		d.text[row][col] = data[i]
	}
	for i, b := range data[ScreenSize:] {
		x, y := grid.GetGridCoords(i, Width)
		d.pixels[y][x] = b != 0
	}
	return nil
}
