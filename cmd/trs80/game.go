package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"trs80/pkg/host"
	"trs80/pkg/machine"
	"trs80/pkg/video"
)

const (
	// One graphics pixel is pixelW x pixelH logical pixels, so a text cell
	// (2x3 graphics pixels) is 8x18 and fits a debug font glyph.
	pixelW = 4
	pixelH = 6
	cellW  = 2 * pixelW
	cellH  = 3 * pixelH

	textW   = video.Cols * cellW
	textH   = video.Rows * cellH
	statusH = 18
	screenW = textW
	screenH = textH + statusH

	frameBudget = 12 * time.Millisecond
	statusTTL   = 4 * time.Second

	askQuestion = "Review this program. Explain any bugs you find and give a corrected complete listing."
)

type reply struct {
	text string
	code string
	err  error
}

type Game struct {
	s      *host.Session
	pixels *ebiten.Image // Width x Height graphics plane
	block  *ebiten.Image // 1x1 phosphor pixel for graphics characters
	frame  int

	status   string
	statusAt time.Time

	asking  bool
	replies chan reply
}

func newGame(s *host.Session) *Game {
	return &Game{s: s, replies: make(chan reply, 1)}
}

// repeating is true on the first frame a key is down and then every few
// frames once it has been held.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= 30 && d%4 == 0)
}

func (g *Game) Update() error {
	g.frame++
	m := g.s.Machine

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		m.KeyPress(machine.KeyBreak)
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		m.KeyPress(r)
	}
	if repeating(ebiten.KeyEnter) || repeating(ebiten.KeyNumpadEnter) {
		m.KeyPress(machine.KeyEnter)
	}
	if repeating(ebiten.KeyBackspace) {
		m.KeyPress(machine.KeyBackspace)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.ask()
	case inpututil.IsKeyJustPressed(ebiten.KeyF2) && m.State() == machine.Idle:
		m.SubmitLine("LOAD")
	case inpututil.IsKeyJustPressed(ebiten.KeyF3) && m.State() == machine.Idle:
		m.SubmitLine("SAVE")
	case inpututil.IsKeyJustPressed(ebiten.KeyF6):
		if err := g.s.TogglePause(); err != nil {
			g.setStatus("NOTHING TO PAUSE")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF7) && m.State() != machine.AwaitingInput:
		m.StepOnce()
		g.setStatus("STEPPED TO %s", m.CurrentLabel())
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		if err := g.s.Hibernate(); err != nil {
			g.setStatus("HIBERNATE FAILED: %v", err)
		} else {
			g.setStatus("HIBERNATED")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		if err := g.s.Resume(); err != nil {
			g.setStatus("RESUME FAILED: %v", err)
		} else {
			g.setStatus("RESUMED AT %s - TYPE CONT", m.CurrentLabel())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		g.screenshot()
	}

	select {
	case r := <-g.replies:
		g.applyReply(r)
	default:
	}

	m.RunFor(frameBudget)
	return nil
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.statusAt = time.Now()
}

func (g *Game) ask() {
	if g.asking {
		return
	}
	g.asking = true
	g.setStatus("ASKING %s...", g.s.Config.Model)
	req := g.s.Request(askQuestion)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		text, code, err := g.s.Ask(ctx, req)
		g.replies <- reply{text: text, code: code, err: err}
	}()
}

func (g *Game) applyReply(r reply) {
	g.asking = false
	if r.err != nil {
		g.setStatus("ASSISTANT ERROR: %v", r.err)
		return
	}
	g.s.Log.Info().Msg("assistant: " + r.text)
	if r.code == "" {
		g.setStatus("ASSISTANT REPLIED WITHOUT BASIC CODE")
		return
	}
	n, err := g.s.ApplyCode(r.code)
	if err != nil {
		g.setStatus("ASSISTANT CODE NOT ENTERED: %v", err)
		return
	}
	g.setStatus("ASSISTANT ENTERED %d LINES", n)
}

func (g *Game) screenshot() {
	name := "trs80_" + time.Now().Format("20060102_150405") + ".png"
	if err := g.s.Machine.Screen.SavePNG(name, g.s.Config.Scale); err != nil {
		g.setStatus("SCREENSHOT FAILED: %v", err)
		return
	}
	g.setStatus("SAVED %s", name)
}

func (g *Game) Draw(screen *ebiten.Image) {
	m := g.s.Machine
	if g.pixels == nil {
		g.pixels = ebiten.NewImage(video.Width, video.Height)
		g.block = ebiten.NewImage(1, 1)
		g.block.Fill(video.Phosphor)
	}

	g.pixels.WritePixels(m.Screen.PixelsRGBA())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(pixelW, pixelH)
	screen.DrawImage(g.pixels, op)

	for r, line := range m.Screen.Lines() {
		for c := 0; c < len(line); c++ {
			ch := line[c]
			switch {
			case ch >= 128:
				g.drawGraphic(screen, ch, c*cellW, r*cellH)
			case ch > ' ' && ch < 127:
				ebitenutil.DebugPrintAt(screen, string(rune(ch)), c*cellW+1, r*cellH+1)
			}
		}
	}

	if g.cursorVisible() {
		row, col := m.Screen.Cursor()
		ebitenutil.DebugPrintAt(screen, "_", col*cellW+1, row*cellH+1)
	}

	screen.SubImage(image.Rect(0, textH, screenW, textH+1)).(*ebiten.Image).Fill(color.Gray{Y: 0x40})
	ebitenutil.DebugPrintAt(screen, g.statusLine(), 2, textH+1)
}

// drawGraphic paints a TRS-80 block graphics character at x, y.
func (g *Game) drawGraphic(screen *ebiten.Image, ch byte, x, y int) {
	for _, r := range graphicBlocks(ch) {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(r.Dx()), float64(r.Dy()))
		op.GeoM.Translate(float64(x+r.Min.X), float64(y+r.Min.Y))
		screen.DrawImage(g.block, op)
	}
}

// graphicBlocks returns the lit sub-cells of graphics character ch (128-191)
// relative to the cell origin. Bit 0 is top left, bit 5 bottom right.
func graphicBlocks(ch byte) []image.Rectangle {
	if ch < 128 {
		return nil
	}
	var out []image.Rectangle
	bits := ch & 0x3f
	for i := 0; i < 6; i++ {
		if bits&(1<<i) == 0 {
			continue
		}
		col, row := i%2, i/2
		out = append(out, image.Rect(col*pixelW, row*pixelH, (col+1)*pixelW, (row+1)*pixelH))
	}
	return out
}

func (g *Game) cursorVisible() bool {
	switch g.s.Machine.State() {
	case machine.Running:
		return false
	}
	return (g.frame/30)%2 == 0
}

func (g *Game) statusLine() string {
	m := g.s.Machine
	line := m.State().String()
	if label := m.CurrentLabel(); label != "" && m.State() != machine.Idle {
		line += " AT " + label
	}
	if g.status != "" && time.Since(g.statusAt) < statusTTL {
		line += "  " + g.status
	}
	return line + "  [ESC BRK F1 ASK F2/F3 LOAD/SAVE F5/F9 HIB F6 PAUSE F7 STEP F12 PNG]"
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}
