package main

import (
	"image"
	"testing"
)

func TestGraphicBlocks(t *testing.T) {
	tests := []struct {
		ch       byte
		expected []image.Rectangle
	}{
		{'A', nil},
		{128, nil},
		{129, []image.Rectangle{image.Rect(0, 0, pixelW, pixelH)}},
		{128 + 32, []image.Rectangle{image.Rect(pixelW, 2*pixelH, 2*pixelW, 3*pixelH)}},
	}
	for _, tt := range tests {
		got := graphicBlocks(tt.ch)
		if len(got) != len(tt.expected) {
			t.Errorf("graphicBlocks(%d): expected %v, got %v", tt.ch, tt.expected, got)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("graphicBlocks(%d)[%d]: expected %v, got %v", tt.ch, i, tt.expected[i], got[i])
			}
		}
	}

	if n := len(graphicBlocks(191)); n != 6 {
		t.Errorf("graphicBlocks(191): expected all 6 blocks, got %d", n)
	}
}
