// Package camera maps the bounded arena, in metres with y up, onto the
// screen, in pixels with y down.
package camera

// Camera controls the viewport into the arena.
type Camera struct {
	// Position is the camera center in world coordinates (metres)
	X, Y float32

	// Zoom multiplies the fit scale (1.0 = whole arena plus margin visible)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Arena dimensions and the border kept visible around it at zoom 1
	WorldW, WorldH float32
	Margin         float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	fit float32 // pixels per metre at zoom 1
}

// New creates a camera centered on the arena with the whole arena in view.
func New(viewportW, viewportH, worldW, worldH, margin float32) *Camera {
	c := &Camera{
		Zoom:    1.0,
		WorldW:  worldW,
		WorldH:  worldH,
		Margin:  margin,
		MinZoom: 1.0,
		MaxZoom: 6.0,
	}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// Scale returns the current pixels per metre.
func (c *Camera) Scale() float32 {
	return c.fit * c.Zoom
}

// Length converts a world distance to pixels.
func (c *Camera) Length(m float32) float32 {
	return m * c.Scale()
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewportW/2 + (wx-c.X)*s
	sy = c.ViewportH/2 - (wy-c.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := c.Scale()
	wx = c.X + (sx-c.ViewportW/2)/s
	wy = c.Y - (sy-c.ViewportH/2)/s
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX &&
		wy+radius >= minY && wy-radius <= maxY
}

// Resize updates viewport dimensions and recomputes the fit scale.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.fit = min(viewportW/(c.WorldW+2*c.Margin), viewportH/(c.WorldH+2*c.Margin))
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels. The center
// stays over the arena.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X += dx / s
	c.Y -= dy / s
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	s := c.Scale()
	halfW := c.ViewportW / (2 * s)
	halfH := c.ViewportH / (2 * s)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

func (c *Camera) clampCenter() {
	c.X = clamp(c.X, 0, c.WorldW)
	c.Y = clamp(c.Y, 0, c.WorldH)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
