// Package grid converts between linear cell offsets and column/row
// coordinates of a row-major character grid.
package grid

// GetGridCoords returns the column and row of the index-th cell in a grid
// that is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// GetGridIndex is the inverse of GetGridCoords.
func GetGridIndex(x, y, cols int) int {
	return y*cols + x
}

// BlockCell maps a pixel of a 2x3 block-graphics plane to the character cell
// that holds it and the bit of that cell's block glyph.
func BlockCell(px, py int) (col, row, bit int) {
	col, row = px/2, py/3
	bit = (py%3)*2 + px%2
	return
}
