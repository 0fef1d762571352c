package game

import (
	"fmt"
	"image/color"
)

// Colors are packed 0xRRGGBB, the same way levels and tuning specify them.

func splitRGB(c uint32) (r, g, b uint32) {
	return (c >> 16) & 0xff, (c >> 8) & 0xff, c & 0xff
}

func packRGB(r, g, b uint32) uint32 {
	return (r << 16) | (g << 8) | b
}

// InterpolateColor blends a toward b by t. t must lie in [0,1].
func InterpolateColor(a, b uint32, t float64) (uint32, error) {
	if t < 0 || t > 1 {
		return 0, fmt.Errorf("interpolate color: t=%.3f outside [0,1]", t)
	}
	r1, g1, b1 := splitRGB(a)
	r2, g2, b2 := splitRGB(b)
	mix := func(x, y uint32) uint32 {
		return uint32(float64(x) + t*(float64(y)-float64(x)))
	}
	return packRGB(mix(r1, r2), mix(g1, g2), mix(b1, b2)), nil
}

// SaturateColor scales each channel by factor, capped at 255.
func SaturateColor(c uint32, factor float64) uint32 {
	r, g, b := splitRGB(c)
	sat := func(x uint32) uint32 {
		v := float64(x) * factor
		if v > 255 {
			return 255
		}
		return uint32(v)
	}
	return packRGB(sat(r), sat(g), sat(b))
}

// ColorGradient darkens c to the given fraction of its brightness.
// pct is clamped to [0,1].
func ColorGradient(c uint32, pct float64) uint32 {
	pct = clamp(pct, 0, 1)
	r, g, b := splitRGB(c)
	return packRGB(
		uint32(float64(r)*pct),
		uint32(float64(g)*pct),
		uint32(float64(b)*pct),
	)
}

// RGBA converts a packed colour for ebiten drawing.
func RGBA(c uint32, alpha uint8) color.RGBA {
	r, g, b := splitRGB(c)
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: alpha}
}
