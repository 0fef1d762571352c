package game

import "math"

// GateType picks the angle rule applied to a bullet crossing the gate.
type GateType int

const (
	GateNormal  GateType = iota // bullets keep their heading
	GateMirror                  // reflect about the gate line
	GateRefract                 // reflect about the gate normal
)

func (gt GateType) String() string {
	switch gt {
	case GateNormal:
		return "normal"
	case GateMirror:
		return "mirror"
	case GateRefract:
		return "refract"
	default:
		return "unknown"
	}
}

// Gate colour ramps, low multiplier to high.
var gateColorRamp = map[GateType][2]uint32{
	GateMirror:  {0x22ccff, 0x2288ff},
	GateNormal:  {0xff0022, 0xff2244},
	GateRefract: {0x22aa22, 0x44ff44},
}

const (
	gateColorDead  = 0x888888 // multiplier 0 swallows bullets
	gateFlashOK    = 0xffffff
	gateFlashLimit = 0x000000
)

// GateColor returns the resting tint for a gate type and multiplier.
func GateColor(gt GateType, multiplier int) uint32 {
	if multiplier == 0 {
		return gateColorDead
	}
	ramp := gateColorRamp[gt]
	// 1/(m+1) is always inside (0,1) for m >= 1, so the error path is unreachable.
	c, _ := InterpolateColor(ramp[0], ramp[1], 1/float64(multiplier+1))
	return c
}

// Gate is a line segment that transforms and multiplies bullets crossing it.
type Gate struct {
	ID         int
	Type       GateType
	Multiplier int
	Start      Vec
	End        Vec
	Rotation   float64 // atan2 of End-Start

	Color      uint32
	Flashing   bool
	FlashColor uint32

	// ArrowAngle is the heading a bullet fired from the player's turret
	// would leave this gate with; drawn as a hint.
	ArrowAngle float64

	SoundRate     float64
	SoundVolume   float64
	lastSoundTick int
}

// NewGate builds a gate and derives its rotation, colour and tone.
func NewGate(id int, gt GateType, start, end Vec, multiplier int, scale Scale, noteOffset int) *Gate {
	g := &Gate{
		ID:            id,
		Type:          gt,
		Multiplier:    multiplier,
		Color:         GateColor(gt, multiplier),
		SoundRate:     scale.Rate(multiplier, noteOffset),
		SoundVolume:   VolumeFromMultiplier(multiplier),
		lastSoundTick: math.MinInt32,
	}
	g.Reposition(start, end)
	return g
}

// Reposition moves the gate and recomputes its rotation.
func (g *Gate) Reposition(start, end Vec) {
	g.Start = start
	g.End = end
	g.Rotation = end.Sub(start).Angle()
}

// Center returns the midpoint of the gate segment.
func (g *Gate) Center() Vec {
	return Vec{(g.Start.X + g.End.X) / 2, (g.Start.Y + g.End.Y) / 2}
}

// Tint returns the colour the gate should be drawn with right now.
func (g *Gate) Tint() uint32 {
	if g.Flashing {
		return g.FlashColor
	}
	return g.Color
}

// flash starts a flash. A gate already flashing ignores the request.
func (g *Gate) flash(c uint32) bool {
	if g.Flashing {
		return false
	}
	g.Flashing = true
	g.FlashColor = c
	return true
}

// Cross tests a swept bullet segment against the gate.
func (g *Gate) Cross(from, to Vec) (Vec, bool) {
	return SegmentIntersection(from, to, g.Start, g.End)
}
