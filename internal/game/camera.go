package game

// Camera is the visible window onto the world. It tracks the player
// vertically only; X is pinned to the level width.
type Camera struct {
	X, Y          float64 // top-left in world space
	Width, Height float64
	originDown    float64 // player sits this fraction down the view
	larp          float64
}

// NewCamera creates a camera already settled on followY.
func NewCamera(tu Tuning, followY float64) *Camera {
	c := &Camera{
		Width:      tu.GameWidth,
		Height:     tu.GameHeightBox,
		originDown: tu.PlayerOriginDownScreen,
		larp:       tu.CameraLarping,
	}
	c.Y = c.targetY(followY)
	return c
}

func (c *Camera) targetY(followY float64) float64 {
	return followY - c.Height*c.originDown
}

// Follow eases the view toward keeping followY at its origin line.
func (c *Camera) Follow(followY float64) {
	c.Y = lerp(c.Y, c.targetY(followY), c.larp)
}

// OnScreen reports whether p lies inside the view.
func (c *Camera) OnScreen(p Vec) bool {
	return c.OnScreenPadded(p, 0)
}

// OnScreenPadded reports whether p lies inside the view grown by pad on
// every side.
func (c *Camera) OnScreenPadded(p Vec, pad float64) bool {
	return p.X >= c.X-pad && p.X <= c.X+c.Width+pad &&
		p.Y >= c.Y-pad && p.Y <= c.Y+c.Height+pad
}

// WorldToScreen converts a world point to view-relative pixels.
func (c *Camera) WorldToScreen(p Vec) Vec {
	return Vec{p.X - c.X, p.Y - c.Y}
}

// ScreenToWorld converts view-relative pixels to a world point.
func (c *Camera) ScreenToWorld(p Vec) Vec {
	return Vec{p.X + c.X, p.Y + c.Y}
}
