package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at inspScale.
const (
	inspScale = 2   // scale factor for inspector text rendering
	inspBufW  = 200 // buffer width in pixels
	inspBufH  = 190 // buffer height in pixels
	inspPad   = 4   // padding in buffer-space pixels
	inspLineH = 13  // line height in buffer-space pixels
)

// Inspector holds the selected tank and view toggle state.
type Inspector struct {
	selected int  // tank ID, 0 = none
	rawView  bool // false = curated, true = raw dump
	buf      *ebiten.Image
}

// handleInspectorClick selects the tank under the cursor. Returns true if a
// tank was hit; a click on empty ground clears the selection.
func (g *Game) handleInspectorClick(mx, my int) bool {
	at := g.world.Camera.ScreenToWorld(Vec{float64(mx - g.offX), float64(my - g.offY)})
	g.inspector.selected = 0
	if t := g.world.tankAt(at, 16); t != nil {
		g.inspector.selected = t.ID
		return true
	}
	return false
}

// tankAt returns the alive tank whose hull is nearest p within slack of
// its radius.
func (w *World) tankAt(p Vec, slack float64) *Tank {
	var hit *Tank
	best := 0.0
	for _, t := range w.allTanks() {
		if !t.IsAlive() {
			continue
		}
		d := t.Pos.Dist(p)
		if d <= t.Radius+slack && (hit == nil || d < best) {
			hit, best = t, d
		}
	}
	return hit
}

// drawInspector renders the inspector panel for the selected tank.
func (g *Game) drawInspector(screen *ebiten.Image) {
	if g.inspector.selected == 0 {
		return
	}
	t := g.world.tankByID(g.inspector.selected)
	if t == nil {
		g.inspector.selected = 0
		return
	}
	if g.inspector.buf == nil {
		g.inspector.buf = ebiten.NewImage(inspBufW, inspBufH)
	}
	buf := g.inspector.buf
	buf.Clear()

	bw := float32(inspBufW)
	bh := float32(inspBufH)
	panelBorder := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, color.RGBA{R: 14, G: 16, B: 14, A: 230}, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, panelBorder, false)

	lx, ly := inspPad, inspPad
	side := "ENEMY"
	if t.IsPlayer() {
		side = "PLAYER"
	}
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("[ %s %s #%d ]", side, t.Label(), t.ID), lx, ly)
	ly += inspLineH + 2

	viewName := "CURATED"
	if g.inspector.rawView {
		viewName = "RAW"
	}
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("view: %s  [I] toggle", viewName), lx, ly)
	ly += inspLineH + 4
	vector.StrokeLine(buf, float32(lx), float32(ly), bw-inspPad, float32(ly), 1.0, panelBorder, false)
	ly += 4

	var lines []string
	if g.inspector.rawView {
		lines = inspectRaw(t)
	} else {
		lines = inspectCurated(g.world, t)
	}
	for _, l := range lines {
		ebitenutil.DebugPrintAt(buf, l, lx, ly)
		ly += inspLineH
	}

	px := g.offX + g.gameWidth - inspBufW*inspScale - 8
	py := g.offY + g.gameHeight - inspBufH*inspScale - 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(inspScale, inspScale)
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}

// inspectBar renders v in [0,1] as a fixed-width text bar.
func inspectBar(label string, v float64) string {
	const width = 12
	filled := int(clamp(v, 0, 1) * width)
	return fmt.Sprintf("%-6s %s%s %3.0f%%", label,
		strings.Repeat("#", filled), strings.Repeat(".", width-filled), v*100)
}

func inspectCurated(w *World, t *Tank) []string {
	lines := []string{
		fmt.Sprintf("tier: %d/%d  barrels: %d", int(t.Type)+1, int(TankBoxTriple)+1, t.Type.Barrels()),
		fmt.Sprintf("state: %s  move: %s", t.State, t.Move),
		inspectBar("health", t.Health.Percent()),
		inspectBar("fire", t.Fire.Percent()),
		fmt.Sprintf("bullets: %d/%d", t.Bullets.Len(), t.BulletCap),
		fmt.Sprintf("cooldown: %d ticks", t.FireMinUpdatesBetween),
	}
	if !t.IsPlayer() {
		lines = append(lines, fmt.Sprintf("row: %d  dist: %.0f", t.RowIndex, t.Pos.Dist(w.Player.Pos)))
	} else {
		lines = append(lines, fmt.Sprintf("row: %d  speed x%.1f", w.RowCurr, w.Level.Speed(w.RowCurr)))
	}
	return lines
}

func inspectRaw(t *Tank) []string {
	return []string{
		fmt.Sprintf("type=%s", t.Type),
		fmt.Sprintf("pos=%s vel=%s", t.Pos, t.Vel),
		fmt.Sprintf("body=%.2f turret=%.2f", t.BodyRotation, t.TurretRotation),
		fmt.Sprintf("muzzle=%s", t.Muzzle),
		fmt.Sprintf("hp=%.1f/%.1f fire=%.1f/%.1f", t.Health.Value(), t.Health.Max(), t.Fire.Value(), t.Fire.Max()),
		fmt.Sprintf("cost=%.1f regen=%.2f", t.FireCost, t.FireReplenishRate),
		fmt.Sprintf("lastFire=%d snd=%.2f", t.FireLastUpdateIndex, t.FireSoundRate),
		fmt.Sprintf("r=%.0f scale=%.2f died=%d", t.Radius, t.Scale, t.DiedAt),
	}
}
