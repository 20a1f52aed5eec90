package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		name         string
		index, cols  int
		wantX, wantY int
	}{
		{"home", 0, 64, 0, 0},
		{"end of first row", 63, 64, 63, 0},
		{"wraps to second row", 64, 64, 0, 1},
		{"PRINT@ 100", 100, 64, 36, 1},
		{"last text cell", 1023, 64, 63, 15},
		{"pixel column 127", 127, 128, 127, 0},
		{"last pixel", 128*48 - 1, 128, 127, 47},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := GetGridCoords(tt.index, tt.cols)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("GetGridCoords(%d, %d): expected (%d, %d), got (%d, %d)", tt.index, tt.cols, tt.wantX, tt.wantY, x, y)
			}
		})
	}
}

func TestGetGridIndex(t *testing.T) {
	for _, cols := range []int{32, 64} {
		for i := 0; i < 1024; i++ {
			x, y := GetGridCoords(i, cols)
			if got := GetGridIndex(x, y, cols); got != i {
				t.Fatalf("GetGridIndex(%d, %d, %d) = %d; want %d", x, y, cols, got, i)
			}
		}
	}
}

func TestBlockCell(t *testing.T) {
	tests := []struct {
		px, py           int
		wantCol, wantRow int
		wantBit          int
	}{
		{0, 0, 0, 0, 0},
		{1, 0, 0, 0, 1},
		{0, 1, 0, 0, 2},
		{1, 2, 0, 0, 5},
		{2, 3, 1, 1, 0},
		{127, 47, 63, 15, 5},
	}

	for _, tc := range tests {
		col, row, bit := BlockCell(tc.px, tc.py)
		if col != tc.wantCol || row != tc.wantRow || bit != tc.wantBit {
			t.Errorf("BlockCell(%d, %d) = (%d, %d, %d); want (%d, %d, %d)",
				tc.px, tc.py, col, row, bit, tc.wantCol, tc.wantRow, tc.wantBit)
		}
	}
}
