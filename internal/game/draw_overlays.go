package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// drawOverlays renders the F1 debug layers: row grid, streaming window,
// collider radii, gate arrows and last tick's contacts.
func (g *Game) drawOverlays(screen *ebiten.Image) {
	g.drawRowGrid(screen)
	g.drawStreamWindow(screen)
	g.drawColliders(screen)
	g.drawGateArrows(screen)
	g.drawContacts(screen)
}

// drawRowGrid labels each visible row with its index and scroll speed.
func (g *Game) drawRowGrid(screen *ebiten.Image) {
	w := g.world
	cam := w.Camera
	first := max(0, int(math.Floor(cam.Y/platformHeight)))
	last := min(len(w.Level.Rows)-1, int(math.Floor((cam.Y+cam.Height)/platformHeight)))
	for row := first; row <= last; row++ {
		_, y := g.toScreen(Vec{0, float64(row * platformHeight)})
		lineCol := color.RGBA{R: 60, G: 60, B: 80, A: 120}
		if row == w.RowCurr {
			lineCol = color.RGBA{R: 136, G: 255, B: 255, A: 160}
		}
		vector.StrokeLine(screen, float32(g.offX), y, float32(g.offX+g.gameWidth), y, 1, lineCol, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("r%d x%.1f", row, w.Level.Speed(row)), g.offX+4, int(y)+2)
	}
}

// drawStreamWindow marks the spawn line ahead of the player and the
// despawn line behind it.
func (g *Game) drawStreamWindow(screen *ebiten.Image) {
	w := g.world
	tu := w.Tuning
	spawnRow := w.RowCurr - tu.TankCreateNumRowsAhead
	_, sy := g.toScreen(Vec{0, float64(spawnRow * platformHeight)})
	_, dy := g.toScreen(Vec{0, w.Player.Pos.Y + float64(tu.TankDestroyNumRowsBehind*platformHeight)})
	x0 := float32(g.offX)
	x1 := float32(g.offX + g.gameWidth)
	vector.StrokeLine(screen, x0, sy, x1, sy, 2, color.RGBA{R: 120, G: 255, B: 120, A: 140}, false)
	vector.StrokeLine(screen, x0, dy, x1, dy, 2, color.RGBA{R: 255, G: 120, B: 120, A: 140}, false)
}

// drawColliders outlines tank, bullet and pill hit circles.
func (g *Game) drawColliders(screen *ebiten.Image) {
	w := g.world
	ring := color.RGBA{R: 255, G: 255, B: 0, A: 110}
	for _, t := range w.allTanks() {
		if !t.IsAlive() {
			continue
		}
		x, y := g.toScreen(t.Pos)
		vector.StrokeCircle(screen, x, y, float32(t.Radius), 1, ring, true)
		if g.inspector.selected == t.ID {
			vector.StrokeCircle(screen, x, y, float32(t.Radius)+6, 2, color.RGBA{R: 255, G: 255, B: 255, A: 200}, true)
		}
		for _, b := range t.Bullets.Snapshot() {
			bx, by := g.toScreen(b.Pos)
			vector.StrokeCircle(screen, bx, by, float32(w.Tuning.BulletRadius), 1, ring, true)
		}
	}
	for _, p := range w.Pills {
		x, y := g.toScreen(p.Pos)
		vector.StrokeCircle(screen, x, y, float32(w.Tuning.PillRadius), 1, ring, true)
	}
}

// drawGateArrows shows where a shot from the player's turret would leave
// each gate, plus the gate multiplier.
func (g *Game) drawGateArrows(screen *ebiten.Image) {
	const arrowLen = 40
	for _, gt := range g.world.Gates {
		c := gt.Center()
		cx, cy := g.toScreen(c)
		tip := c.Add(polar(arrowLen, gt.ArrowAngle))
		tx, ty := g.toScreen(tip)
		col := RGBA(gt.Color, 220)
		vector.StrokeLine(screen, cx, cy, tx, ty, 2, col, true)
		for _, side := range []float64{-1, 1} {
			wing := tip.Add(polar(10, gt.ArrowAngle+math.Pi+side*math.Pi/6))
			wx, wy := g.toScreen(wing)
			vector.StrokeLine(screen, tx, ty, wx, wy, 2, col, true)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s x%d", gt.Type, gt.Multiplier), int(cx)+6, int(cy)+6)
	}
}

// drawContacts marks every contact resolved on the last tick.
func (g *Game) drawContacts(screen *ebiten.Image) {
	for _, ev := range g.world.Events {
		var at Vec
		col := color.RGBA{R: 255, G: 80, B: 255, A: 220}
		switch ev.Kind {
		case HitBulletTank, HitBulletPlatform:
			at = ev.Bullet.Pos
		case HitBulletBullet:
			at = ev.Bullet.Pos.Add(ev.OtherBullet.Pos).Scale(0.5)
		case HitTankPlatform:
			at = CellCenter(ev.Col, ev.Row)
			col = color.RGBA{R: 255, G: 160, B: 40, A: 220}
		case HitTankTank:
			at = ev.Tank.Pos.Add(ev.Target.Pos).Scale(0.5)
		case HitTankPill:
			at = ev.Pill.Pos
			col = color.RGBA{R: 80, G: 255, B: 80, A: 220}
		default:
			continue
		}
		x, y := g.toScreen(at)
		vector.StrokeLine(screen, x-6, y-6, x+6, y+6, 2, col, false)
		vector.StrokeLine(screen, x-6, y+6, x+6, y-6, 2, col, false)
	}
}
