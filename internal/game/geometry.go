package game

import (
	"fmt"
	"math"
)

// Vec is a 2D world-space point or vector.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec) Angle() float64 { return math.Atan2(v.Y, v.X) }
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }
func (v Vec) String() string { return fmt.Sprintf("(%.1f,%.1f)", v.X, v.Y) }
func polar(r, rad float64) Vec { return Vec{r * math.Cos(rad), r * math.Sin(rad)} }
func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
func lerp(a, b, t float64) float64 { return a + (b-a)*t }
func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

// SegmentIntersection returns the point where segment p1-p2 crosses p3-p4.
// Parallel and collinear segments never intersect: the denominator is
// compared against exactly zero.
func SegmentIntersection(p1, p2, p3, p4 Vec) (Vec, bool) {
	den := (p1.X-p2.X)*(p3.Y-p4.Y) - (p1.Y-p2.Y)*(p3.X-p4.X)
	if den == 0 {
		return Vec{}, false
	}

	t := ((p1.X-p3.X)*(p3.Y-p4.Y) - (p1.Y-p3.Y)*(p3.X-p4.X)) / den
	u := -((p1.X-p2.X)*(p1.Y-p3.Y) - (p1.Y-p2.Y)*(p1.X-p3.X)) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Vec{}, false
	}

	return Vec{p1.X + t*(p2.X-p1.X), p1.Y + t*(p2.Y-p1.Y)}, true
}

// OffsetPoint returns origin moved dist along angleDeg (0 = +X, clockwise
// in screen space since +Y points down).
func OffsetPoint(origin Vec, dist, angleDeg float64) Vec {
	return origin.Add(polar(dist, degToRad(angleDeg)))
}

// NormalizeAngleDeg folds a single overshoot back into [-180, 180].
func NormalizeAngleDeg(deg float64) float64 {
	if deg > 180 {
		return deg - 360
	}
	if deg < -180 {
		return deg + 360
	}
	return deg
}

// WrapAngle maps rad into (-π, π].
func WrapAngle(rad float64) float64 {
	w := math.Mod(rad+math.Pi, 2*math.Pi)
	if w <= 0 {
		w += 2 * math.Pi
	}
	return w - math.Pi
}

// wrapPositive maps rad into [0, 2π).
func wrapPositive(rad float64) float64 {
	w := math.Mod(rad, 2*math.Pi)
	if w < 0 {
		w += 2 * math.Pi
	}
	return w
}

// ReflectAngle mirrors incident about a surface running at surface radians.
func ReflectAngle(incident, surface float64) float64 {
	return WrapAngle(surface*2 - incident)
}

// RefractAngle mirrors incident about the surface normal.
func RefractAngle(incident, surface float64) float64 {
	return ReflectAngle(incident, surface+math.Pi/2)
}

// AverageAngle is the circular mean of a and b, in [0, 2π).
func AverageAngle(a, b float64) float64 {
	a = wrapPositive(a)
	b = wrapPositive(b)

	avg := (a + b) / 2
	if math.Abs(a-b) > math.Pi {
		avg += math.Pi
		if avg > 2*math.Pi {
			avg -= 2 * math.Pi
		}
	}
	return wrapPositive(avg)
}

// FanOutAngles spreads count angles evenly across [base-spread, base+spread].
// A single angle is returned as base unchanged.
func FanOutAngles(base float64, count int, spread float64) []float64 {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []float64{base}
	}
	out := make([]float64, count)
	step := 2 * spread / float64(count-1)
	for i := range out {
		out[i] = base - spread + float64(i)*step
	}
	return out
}

// FanOutAnglesAlternating places angles a fixed spread apart. Even counts
// straddle base; odd counts keep base first and alternate outward.
func FanOutAnglesAlternating(base float64, count int, spread float64) []float64 {
	if count <= 0 {
		return nil
	}
	out := make([]float64, count)
	if count%2 == 0 {
		for i := range out {
			out[i] = base + (float64(i)-float64(count)/2)*spread
		}
		return out
	}
	for i := range out {
		side := 1.0
		if i%2 != 0 {
			side = -1
		}
		out[i] = base + float64(i/2)*spread*side
	}
	return out
}

// GateTransformAngle applies the gate's pass, mirror or refract rule to an
// incident angle.
func GateTransformAngle(incident float64, gt GateType, gateRotation float64) float64 {
	switch gt {
	case GateMirror:
		return ReflectAngle(incident, gateRotation)
	case GateRefract:
		return RefractAngle(incident, gateRotation)
	default:
		return incident
	}
}

// GateBulletAngle returns the outgoing angle of duplicate index out of count.
func GateBulletAngle(incident float64, gt GateType, gateRotation float64, index, count int, spread float64) (float64, error) {
	if index < 0 || index >= count {
		return 0, fmt.Errorf("bullet index %d outside [0,%d)", index, count)
	}
	base := GateTransformAngle(incident, gt, gateRotation)
	if count == 1 {
		return base, nil
	}
	return base - spread + float64(index)*(2*spread/float64(count-1)), nil
}

// segmentAABBHitT returns the first segment parameter t in [0,1] where the
// segment a->b enters the box. The bool is false when no hit exists.
func segmentAABBHitT(a, b Vec, minX, minY, maxX, maxY float64) (float64, bool) {
	d := b.Sub(a)
	tMin := 0.0
	tMax := 1.0

	// X slab
	if math.Abs(d.X) < 1e-12 {
		if a.X < minX || a.X > maxX {
			return 0, false
		}
	} else {
		t1 := (minX - a.X) / d.X
		t2 := (maxX - a.X) / d.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	// Y slab
	if math.Abs(d.Y) < 1e-12 {
		if a.Y < minY || a.Y > maxY {
			return 0, false
		}
	} else {
		t1 := (minY - a.Y) / d.Y
		t2 := (maxY - a.Y) / d.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, false
	}
	return math.Max(tMin, 0), true
}
