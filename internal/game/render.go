package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// explosionTicks is how long a blast ring stays on screen.
const explosionTicks = 24

// Explosion is a short-lived expanding ring.
type Explosion struct {
	Pos   Vec
	Scale float64
	Age   int
}

// Effects is the window's VisualSink. It keeps blast rings and the current
// tint of every spawned entity so drawing never reaches into the simulation
// for colour.
type Effects struct {
	Explosions []Explosion
	tints      map[EntityRef]uint32
	live       map[EntityRef]bool
}

// NewEffects creates an empty effects layer.
func NewEffects() *Effects {
	e := &Effects{}
	e.Reset()
	return e
}

// Reset drops all effects, used when the world restarts.
func (e *Effects) Reset() {
	e.Explosions = e.Explosions[:0]
	e.tints = make(map[EntityRef]uint32)
	e.live = make(map[EntityRef]bool)
}

func (e *Effects) Spawned(ref EntityRef) { e.live[ref] = true }

func (e *Effects) Removed(ref EntityRef) {
	delete(e.live, ref)
	delete(e.tints, ref)
}

func (e *Effects) Tinted(ref EntityRef, rgb uint32) { e.tints[ref] = rgb }

func (e *Effects) Explosion(at Vec, scale float64) {
	e.Explosions = append(e.Explosions, Explosion{Pos: at, Scale: scale})
}

// Tint returns the last tint pushed for ref.
func (e *Effects) Tint(ref EntityRef) (uint32, bool) {
	c, ok := e.tints[ref]
	return c, ok
}

// Live reports how many entities the sink currently tracks.
func (e *Effects) Live() int { return len(e.live) }

// Update ages effects and drops expired ones.
func (e *Effects) Update() {
	alive := e.Explosions[:0]
	for _, x := range e.Explosions {
		x.Age++
		if x.Age < explosionTicks {
			alive = append(alive, x)
		}
	}
	e.Explosions = alive
}

// toScreen maps a world point into window pixels.
func (g *Game) toScreen(p Vec) (float32, float32) {
	s := g.world.Camera.WorldToScreen(p)
	return float32(s.X) + float32(g.offX), float32(s.Y) + float32(g.offY)
}

// drawWorld renders the playfield from the back layer to the front.
func (g *Game) drawWorld(screen *ebiten.Image) {
	w := g.world
	cam := w.Camera

	// Row bands, darker in the end zone.
	firstRow := max(0, int(math.Floor(cam.Y/platformHeight)))
	lastRow := min(w.Tiles.Rows-1, int(math.Floor((cam.Y+cam.Height)/platformHeight)))
	for row := firstRow; row <= lastRow; row++ {
		_, y := g.toScreen(Vec{0, float64(row * platformHeight)})
		band := color.RGBA{R: 22, G: 26, B: 30, A: 255}
		if row%2 == 1 {
			band = color.RGBA{R: 26, G: 30, B: 34, A: 255}
		}
		if w.Level.Speed(row) == 0 {
			band = color.RGBA{R: 18, G: 32, B: 22, A: 255}
		}
		vector.FillRect(screen, float32(g.offX), y, float32(g.gameWidth), float32(platformHeight), band, false)
		for col := 0; col < w.Tiles.Cols; col++ {
			tk := w.Tiles.At(col, row)
			if tk == TileEmpty {
				continue
			}
			x0, y0 := g.toScreen(Vec{float64(col * platformWidth), float64(row * platformHeight)})
			drawTile(screen, tk, x0, y0)
		}
	}

	for _, p := range w.Pills {
		if !cam.OnScreenPadded(p.Pos, w.Tuning.PillRadius) {
			continue
		}
		x, y := g.toScreen(p.Pos)
		r := float32(w.Tuning.PillRadius)
		vector.FillCircle(screen, x, y, r, pillColor(p.Type), true)
		vector.StrokeCircle(screen, x, y, r, 1.5, color.White, true)
	}

	for _, gt := range w.Gates {
		x0, y0 := g.toScreen(gt.Start)
		x1, y1 := g.toScreen(gt.End)
		c := gt.Tint()
		if t, ok := g.effects.Tint(EntityRef{Kind: EntityGate, ID: gt.ID}); ok {
			c = t
		}
		vector.StrokeLine(screen, x0, y0, x1, y1, 6, RGBA(c, 255), true)
	}

	for _, t := range w.Enemies {
		g.drawTank(screen, t)
	}
	g.drawTank(screen, w.Player)

	for _, t := range w.allTanks() {
		bc := RGBA(SaturateColor(t.Color, 1.4), 255)
		for _, b := range t.Bullets.Snapshot() {
			if !cam.OnScreenPadded(b.Pos, w.Tuning.GameBoundaryExtraPadding) {
				continue
			}
			x, y := g.toScreen(b.Pos)
			vector.FillCircle(screen, x, y, float32(w.Tuning.BulletRadius), bc, true)
		}
	}

	for _, e := range g.effects.Explosions {
		x, y := g.toScreen(e.Pos)
		frac := float32(e.Age) / explosionTicks
		r := float32(e.Scale) * (10 + 50*frac)
		a := uint8(255 * (1 - frac))
		vector.FillCircle(screen, x, y, r*0.6, color.RGBA{R: 255, G: 190, B: 60, A: a / 2}, true)
		vector.StrokeCircle(screen, x, y, r, 3, color.RGBA{R: 255, G: 120, B: 40, A: a}, true)
	}
}

func drawTile(screen *ebiten.Image, tk TileKind, x, y float32) {
	switch tk {
	case TilePlatform:
		vector.FillRect(screen, x, y, platformWidth, platformHeight, color.RGBA{R: 70, G: 74, B: 86, A: 255}, false)
		vector.StrokeRect(screen, x, y, platformWidth, platformHeight, 1, color.RGBA{R: 110, G: 114, B: 126, A: 255}, false)
	case TileSpike:
		vector.FillRect(screen, x, y, platformWidth, platformHeight, color.RGBA{R: 80, G: 30, B: 34, A: 255}, false)
		// Teeth along the bottom edge.
		const teeth = 5
		tw := float32(platformWidth) / teeth
		for i := 0; i < teeth; i++ {
			bx := x + float32(i)*tw
			vector.StrokeLine(screen, bx, y+platformHeight, bx+tw/2, y+platformHeight-18, 2, color.RGBA{R: 230, G: 70, B: 70, A: 255}, true)
			vector.StrokeLine(screen, bx+tw/2, y+platformHeight-18, bx+tw, y+platformHeight, 2, color.RGBA{R: 230, G: 70, B: 70, A: 255}, true)
		}
	}
}

func pillColor(pt PillType) color.RGBA {
	switch pt {
	case PillHealth:
		return color.RGBA{R: 90, G: 220, B: 110, A: 255}
	case PillRecharge:
		return color.RGBA{R: 80, G: 170, B: 255, A: 255}
	case PillTime:
		return color.RGBA{R: 240, G: 210, B: 70, A: 255}
	default:
		return color.RGBA{R: 220, G: 110, B: 255, A: 255}
	}
}

// drawTank draws hull, turret barrels and the two bars.
func (g *Game) drawTank(screen *ebiten.Image, t *Tank) {
	if t.State == TankGone || !g.world.Camera.OnScreenPadded(t.Pos, t.Radius*2) {
		return
	}
	x, y := g.toScreen(t.Pos)
	r := float32(t.Radius)

	hull := RGBA(t.Color, 255)
	if !t.IsAlive() {
		hull = color.RGBA{R: 60, G: 60, B: 60, A: 200}
	}

	// Hull as a rotated square: a butt-capped stroke as wide as it is long.
	fwd := polar(t.Radius, t.BodyRotation)
	hx0, hy0 := g.toScreen(t.Pos.Sub(fwd))
	hx1, hy1 := g.toScreen(t.Pos.Add(fwd))
	vector.StrokeLine(screen, hx0, hy0, hx1, hy1, 2*r, hull, true)

	if !t.IsAlive() {
		return
	}

	heading := t.TurretRotation - math.Pi/2
	turret := color.RGBA{R: 30, G: 30, B: 36, A: 255}
	for _, m := range barrelPositions(t.Muzzle, heading, t.Type) {
		mx, my := g.toScreen(m)
		base := m.Sub(polar(muzzleReach*t.Scale*0.5, heading))
		bx, by := g.toScreen(base)
		vector.StrokeLine(screen, bx, by, mx, my, 5, turret, true)
	}
	if t.Type == TankCircleSingle {
		vector.FillCircle(screen, x, y, r*0.55, turret, true)
	} else {
		vector.FillRect(screen, x-r*0.5, y-r*0.5, r, r, turret, false)
	}

	drawGauge(screen, g, t.Health, color.RGBA{R: 80, G: 220, B: 90, A: 255})
	drawGauge(screen, g, t.Fire, color.RGBA{R: 240, G: 170, B: 50, A: 255})
}

func drawGauge(screen *ebiten.Image, g *Game, gg *Gauge, c color.RGBA) {
	if !gg.Visible {
		return
	}
	const barW, barH = 50, 5
	x, y := g.toScreen(gg.Pos)
	vector.FillRect(screen, x-barW/2, y, barW, barH, color.RGBA{R: 20, G: 20, B: 20, A: 200}, false)
	vector.FillRect(screen, x-barW/2, y, barW*float32(gg.Percent()), barH, c, false)
}
