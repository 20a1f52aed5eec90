package video

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Phosphor is the foreground colour of lit pixels and text.
var Phosphor = color.RGBA{R: 0x33, G: 0xFF, B: 0x33, A: 0xFF}

// PixelsRGBA encodes the pixel plane as a Width*Height RGBA8888 byte slice,
// lit pixels in Phosphor and the rest opaque black.
func (d *Display) PixelsRGBA() []byte {
	pixels := make([]byte, Width*Height*4)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			i := (y*Width + x) * 4
			if d.pixels[y][x] {
				pixels[i+0] = Phosphor.R
				pixels[i+1] = Phosphor.G
				pixels[i+2] = Phosphor.B
			}
			pixels[i+3] = 0xFF
		}
	}
	return pixels
}

// Image renders the whole screen with each graphics pixel drawn as a
// scale x scale square and the text plane drawn on top.
func (d *Display) Image(scale int) *image.RGBA {
	scale = max(scale, 1)
	img := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	fg := image.NewUniform(Phosphor)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if d.pixels[y][x] {
				r := image.Rect(x*scale, y*scale, (x+1)*scale, (y+1)*scale)
				draw.Draw(img, r, fg, image.Point{}, draw.Src)
			}
		}
	}

	face := basicfont.Face7x13
	cellW, cellH := 2*scale, 3*scale
	drawer := &font.Drawer{Dst: img, Src: fg, Face: face}
	ascent := face.Metrics().Ascent
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			ch := d.text[r][c]
			if ch == blank || ch == 0 {
				continue
			}
			drawer.Dot = fixed.Point26_6{
				X: fixed.I(c * cellW),
				Y: fixed.I(r*cellH) + ascent,
			}
			drawer.DrawString(string(rune(ch)))
		}
	}
	return img
}

// SavePNG writes Image(scale) to filename.
func (d *Display) SavePNG(filename string, scale int) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, d.Image(scale))
}
