// Package termview renders a running world into a terminal with tcell.
// Each level cell is cellCols characters wide and each row is rowLines
// lines tall.
package termview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Garsondee/tank-gates/internal/game"
	"github.com/gdamore/tcell/v2"
)

const (
	cellCols = 6
	rowLines = 2
	sideGap  = 2 // columns between the playfield and the status panel
)

// View draws a world onto a tcell screen.
type View struct {
	screen tcell.Screen
	world  *game.World
}

// New binds a view to an initialised screen and a world.
func New(screen tcell.Screen, w *game.World) *View {
	return &View{screen: screen, world: w}
}

// SetWorld swaps the world after a restart.
func (v *View) SetWorld(w *game.World) { v.world = w }

// fieldSize returns the playfield size in characters.
func (v *View) fieldSize() (int, int) {
	_, h := v.screen.Size()
	return v.world.Tiles.Cols * cellCols, h
}

// topY is the world y drawn on screen line 0: the camera top, so the
// terminal follows the same view as the window.
func (v *View) topY() float64 {
	return v.world.Camera.Y
}

// Project maps a world point to screen coordinates. ok is false when the
// point falls outside the playfield.
func (v *View) Project(p game.Vec) (x, y int, ok bool) {
	fw, fh := v.fieldSize()
	x = int(math.Floor(p.X / game.CellWidth * cellCols))
	y = int(math.Floor((p.Y - v.topY()) / game.CellHeight * rowLines))
	return x, y, x >= 0 && x < fw && y >= 0 && y < fh
}

func (v *View) put(p game.Vec, r rune, st tcell.Style) {
	if x, y, ok := v.Project(p); ok {
		v.screen.SetContent(x, y, r, nil, st)
	}
}

func rgbStyle(c uint32) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c>>16&0xff), int32(c>>8&0xff), int32(c&0xff)))
}

// Draw renders one frame and shows it.
func (v *View) Draw() {
	s := v.screen
	w := v.world
	s.Clear()

	fw, fh := v.fieldSize()
	firstRow := int(math.Floor(v.topY() / game.CellHeight))
	lastRow := firstRow + fh/rowLines + 1

	ground := tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	endZone := tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	for row := firstRow; row <= lastRow; row++ {
		for col := 0; col < w.Tiles.Cols; col++ {
			origin := game.Vec{X: float64(col * game.CellWidth), Y: float64(row * game.CellHeight)}
			x, y, _ := v.Project(origin)
			glyph, st := '.', ground
			if w.Level.Speed(row) == 0 {
				st = endZone
			}
			switch w.Tiles.At(col, row) {
			case game.TilePlatform:
				glyph, st = '█', tcell.StyleDefault.Foreground(tcell.ColorGray)
			case game.TileSpike:
				glyph, st = '▲', tcell.StyleDefault.Foreground(tcell.ColorRed)
			}
			for dy := 0; dy < rowLines; dy++ {
				for dx := 0; dx < cellCols; dx++ {
					if y+dy < 0 || y+dy >= fh {
						continue
					}
					r := glyph
					if glyph == '.' && (dx != 0 || dy != 0) {
						r = ' '
					}
					s.SetContent(x+dx, y+dy, r, nil, st)
				}
			}
		}
	}

	for _, g := range w.Gates {
		v.drawGate(g)
	}
	for _, p := range w.Pills {
		v.put(p.Pos, pillRune(p.Type), tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}
	for _, e := range w.Enemies {
		v.drawTank(e)
	}
	v.drawTank(w.Player)

	bulletStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for _, t := range append(append([]*game.Tank(nil), w.Enemies...), w.Player) {
		for _, b := range t.Bullets.Snapshot() {
			v.put(b.Pos, '•', bulletStyle)
		}
	}

	v.drawStatus(fw + sideGap)
	s.Show()
}

func (v *View) drawGate(g *game.Gate) {
	d := g.End.Sub(g.Start)
	steps := int(math.Max(1, d.Len()/(game.CellWidth/cellCols)))
	glyph := '-'
	switch a := math.Mod(math.Abs(g.Rotation), math.Pi); {
	case math.Abs(a-math.Pi/2) < math.Pi/8:
		glyph = '|'
	case a > math.Pi/8 && a < math.Pi/2:
		glyph = '\\'
	case a > math.Pi/2 && a < math.Pi-math.Pi/8:
		glyph = '/'
	}
	st := rgbStyle(g.Tint())
	for i := 0; i <= steps; i++ {
		v.put(g.Start.Add(d.Scale(float64(i)/float64(steps))), glyph, st)
	}
	v.put(g.Center(), rune('0'+g.Multiplier%10), st.Bold(true))
}

func (v *View) drawTank(t *game.Tank) {
	if t.State == game.TankGone {
		return
	}
	r := 'E'
	if t.IsPlayer() {
		r = 'P'
	}
	st := rgbStyle(t.Color).Bold(true)
	if !t.IsAlive() {
		r, st = 'x', tcell.StyleDefault.Foreground(tcell.ColorGray)
	}
	v.put(t.Pos, r, st)
}

func pillRune(pt game.PillType) rune {
	switch pt {
	case game.PillHealth:
		return '+'
	case game.PillRecharge:
		return 'r'
	case game.PillTime:
		return 't'
	default:
		return '^'
	}
}

func (v *View) drawStatus(x int) {
	w := v.world
	p := w.Player
	lines := []string{
		"TANK GATES",
		fmt.Sprintf("tick   %d", w.Tick),
		fmt.Sprintf("state  %s", w.State),
		fmt.Sprintf("row    %d (x%.1f)", w.RowCurr, w.Level.Speed(w.RowCurr)),
		fmt.Sprintf("hp     %.0f/%.0f", p.Health.Value(), p.Health.Max()),
		fmt.Sprintf("fire   %.0f/%.0f", p.Fire.Value(), p.Fire.Max()),
		fmt.Sprintf("tier   %d", int(p.Type)+1),
		fmt.Sprintf("enemy  %d", w.AliveEnemies()),
		fmt.Sprintf("shots  %d", w.BulletCount()),
		"",
		"q quit  p pause",
	}
	for i, l := range lines {
		for j, r := range l {
			v.screen.SetContent(x+j, i, r, nil, tcell.StyleDefault)
		}
	}
}

// Runner drives a world at the fixed tick rate and redraws it, reading
// keys from the screen on a separate goroutine. The world itself is only
// touched from the Run goroutine.
type Runner struct {
	View    *View
	Restart func() (*game.World, error) // called after a scene change; nil stops instead
	Paused  bool
}

// Run blocks until ctx is cancelled, the user quits, or a scene change
// occurs with no Restart hook.
func (r *Runner) Run(ctx context.Context) error {
	keys := make(chan *tcell.EventKey, 8)
	go func() {
		for {
			ev := r.View.screen.PollEvent()
			if ev == nil {
				close(keys)
				return
			}
			if k, ok := ev.(*tcell.EventKey); ok {
				select {
				case keys <- k:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	ticker := time.NewTicker(time.Second / game.TicksPerSecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			switch {
			case k.Key() == tcell.KeyEscape || k.Key() == tcell.KeyCtrlC || k.Rune() == 'q':
				return nil
			case k.Rune() == 'p':
				r.Paused = !r.Paused
			}
		case <-ticker.C:
			if !r.Paused {
				r.View.world.Update()
			}
			if r.View.world.SceneChanged {
				if r.Restart == nil {
					r.View.Draw()
					return nil
				}
				w, err := r.Restart()
				if err != nil {
					return err
				}
				r.View.SetWorld(w)
			}
			r.View.Draw()
		}
	}
}
