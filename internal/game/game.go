package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the playfield.
const borderWidth = 24

// hudScale is the integer upscale factor applied to HUD text.
const hudScale = 2

// hudFace is the fixed-width face used for all on-screen text.
var hudFace = text.NewGoXFace(basicfont.Face7x13)

// Options configures a windowed Game.
type Options struct {
	Level     *Level // nil loads the embedded demo level
	Tuning    Tuning
	Seed      int64 // 0 picks a time-based seed
	Scheme    ControlScheme
	Audio     AudioSink
	Logger    zerolog.Logger
	Metrics   *Metrics
	SoundTest bool
}

// Game is the ebiten adapter around a World.
type Game struct {
	opts  Options
	world *World

	width      int
	height     int
	gameWidth  int
	gameHeight int
	offX       int
	offY       int

	eventLog *EventLog
	effects  *Effects
	reporter *SimReporter

	showOverlay bool
	showHUD     bool
	status      string // transient message shown in the HUD
	statusUntil int

	inspector Inspector
	hudBuf    *ebiten.Image

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64 // fractional tick accumulator for sub-1x speeds

	restarts int
}

// New builds the window adapter and its first world.
func New(opts Options) (*Game, error) {
	if opts.Tuning.GameWidth == 0 {
		opts.Tuning = DefaultTuning()
	}
	if opts.Level == nil && !opts.SoundTest {
		l, err := LoadLevel("demo.lvl")
		if err != nil {
			return nil, err
		}
		opts.Level = l
	}
	if opts.Audio == nil {
		opts.Audio = nopAudio{}
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics()
	}

	gw := int(opts.Tuning.GameWidth)
	gh := int(opts.Tuning.GameHeightBox)
	g := &Game{
		opts:       opts,
		width:      borderWidth + gw + borderWidth + logPanelWidth,
		height:     borderWidth + gh + borderWidth,
		gameWidth:  gw,
		gameHeight: gh,
		offX:       borderWidth,
		offY:       borderWidth,
		eventLog:   NewEventLog(),
		effects:    NewEffects(),
		showHUD:    true,
		simSpeed:   1,
	}
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// reset starts a fresh world with the configured options.
func (g *Game) reset() error {
	seed := g.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	wopts := []WorldOption{
		WithTuning(g.opts.Tuning),
		WithSeed(seed),
		WithLogger(g.opts.Logger),
		WithMetrics(g.opts.Metrics),
		WithAudio(g.opts.Audio),
		WithVisual(g.effects),
		WithInput(g.inputSource()),
		WithSimLog(NewSimLog(false)),
		WithSceneChangeListener(func(final GameState) {
			g.flash(fmt.Sprintf("%s - restarting", final), 120)
			g.restarts++
		}),
	}

	var (
		w   *World
		err error
	)
	if g.opts.SoundTest {
		w, err = NewSoundTestWorld(wopts...)
	} else {
		w, err = NewWorld(g.opts.Level, wopts...)
	}
	if err != nil {
		return err
	}
	g.world = w
	g.eventLog = NewEventLog()
	g.effects.Reset()
	g.reporter = NewSimReporter(reportWindowTicks, false)
	g.inspector.selected = 0
	return nil
}

// inputSource picks the control adapter for the configured scheme.
func (g *Game) inputSource() InputSource {
	if g.opts.Scheme == SchemeAutopilot {
		return NewAutopilot()
	}
	return InputFunc(g.pollDevices)
}

// pollDevices turns keyboard and mouse state into sticks. The move stick
// reads WASD or arrows; the aim stick points from the player to the cursor.
func (g *Game) pollDevices() ControlInput {
	var in ControlInput
	threshold := g.world.Tuning.StickThreshold

	dx, dy := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy++
	}
	if dx != 0 || dy != 0 {
		in.Move = Stick{Angle: math.Atan2(dy, dx), Radius: threshold}
	}

	mx, my := ebiten.CursorPosition()
	cursor := g.world.Camera.ScreenToWorld(Vec{float64(mx - g.offX), float64(my - g.offY)})
	if d := cursor.Sub(g.world.Player.Pos); !d.IsZero() {
		in.Aim = Stick{Angle: d.Angle(), Radius: math.Min(d.Len(), threshold)}
	}
	if g.opts.Scheme == SchemeSingleStick && in.Move.Active() {
		in.Aim = in.Move
	}

	in.Fire = ebiten.IsKeyPressed(ebiten.KeySpace) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	return in
}

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()

	if g.world.SceneChanged {
		if err := g.reset(); err != nil {
			return err
		}
	}

	if g.simSpeed <= 0 {
		g.effects.Update()
		return nil
	}

	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick()
	}
	return nil
}

// simTick runs one world tick plus the adapter bookkeeping.
func (g *Game) simTick() {
	g.world.Update()
	g.effects.Update()
	g.eventLog.Mirror(g.world.SimLog)
	if g.world.Tick%TicksPerSecond == 0 {
		g.reporter.Collect(g.world)
	}
}

// handleInput processes edge-triggered debug keys.
func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.showOverlay = !g.showOverlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.reset(); err != nil {
			g.flash("restart failed: "+err.Error(), 180)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := clipboard.WriteAll(g.debugReport(reportWindowTicks)); err != nil {
			g.flash("clipboard: "+err.Error(), 180)
		} else {
			g.flash("debug report copied", 90)
		}
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		for i, s := range speeds {
			if s <= g.simSpeed && i < len(speeds)-1 && speeds[i+1] > g.simSpeed {
				g.simSpeed = speeds[i+1]
				break
			}
		}
	}

	// Right click: select a tank for the inspector.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		mx, my := ebiten.CursorPosition()
		g.handleInspectorClick(mx, my)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.inspector.rawView = !g.inspector.rawView
	}
}

// flash shows msg in the HUD for the given number of ticks.
func (g *Game) flash(msg string, ticks int) {
	g.status = msg
	g.statusUntil = g.world.Tick + ticks
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 10, G: 10, B: 14, A: 255})

	g.drawWorld(screen)
	if g.showOverlay {
		g.drawOverlays(screen)
	}

	// Playfield frame, drawn over the world edge.
	ox := float32(g.offX)
	oy := float32(g.offY)
	gw := float32(g.gameWidth)
	gh := float32(g.gameHeight)
	vector.FillRect(screen, 0, 0, float32(g.width), oy, color.RGBA{R: 10, G: 10, B: 14, A: 255}, false)
	vector.FillRect(screen, 0, oy+gh, float32(g.width), oy, color.RGBA{R: 10, G: 10, B: 14, A: 255}, false)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 70, G: 70, B: 110, A: 255}, false)

	logX := g.offX + g.gameWidth + g.offX
	g.eventLog.Draw(screen, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawBanner(screen)
	g.drawInspector(screen)
}

// drawHUD renders the status block into hudBuf and blits it at hudScale.
func (g *Game) drawHUD(screen *ebiten.Image) {
	w := g.world
	p := w.Player

	speedStr := "1x"
	switch {
	case g.simSpeed == 0:
		speedStr = "PAUSED"
	case g.simSpeed != 1:
		speedStr = fmt.Sprintf("%.1fx", g.simSpeed)
	}

	lines := []string{
		fmt.Sprintf("T=%d  %s  row %d  speed %.1f", w.Tick, w.State, w.RowCurr, w.Level.Speed(w.RowCurr)),
		fmt.Sprintf("hp %.0f/%.0f  fire %.0f/%.0f", p.Health.Value(), p.Health.Max(), p.Fire.Value(), p.Fire.Max()),
		fmt.Sprintf("%s  bullets %d/%d", p.Type, p.Bullets.Len(), p.BulletCap),
		fmt.Sprintf("enemies %d  total bullets %d", w.AliveEnemies(), w.BulletCount()),
		fmt.Sprintf("SIM %s  P pause  ,/. speed  R restart", speedStr),
		"F1 overlays  C copy report  RMB inspect  H hud",
	}
	if g.status != "" && w.Tick < g.statusUntil {
		lines = append(lines, g.status)
	}

	const lineH = 14
	const padX = 5
	const padY = 4
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*7 + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(g.offX/hudScale + 4)
	by := float32(g.offY/hudScale + 4)

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 6, B: 12, A: 200}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 80, G: 80, B: 140, A: 180}, false)
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(bx)+padX, float64(by)+padY+float64(i*lineH))
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(g.hudBuf, line, hudFace, op)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(hudScale, hudScale)
	screen.DrawImage(g.hudBuf, opts)
}

// drawBanner announces the terminal state across the playfield.
func (g *Game) drawBanner(screen *ebiten.Image) {
	var msg string
	var c color.Color
	switch g.world.State {
	case StateWin:
		msg, c = "LEVEL CLEARED", color.RGBA{R: 136, G: 255, B: 136, A: 255}
	case StateLose:
		msg, c = "DESTROYED", color.RGBA{R: 255, G: 80, B: 80, A: 255}
	default:
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Scale(4, 4)
	op.GeoM.Translate(float64(g.offX+g.gameWidth/2-len(msg)*14), float64(g.offY+g.gameHeight/2-26))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, msg, hudFace, op)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Size returns the window size in pixels.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}

// World exposes the running world for tools.
func (g *Game) World() *World {
	return g.world
}
