package render

import "math"

// Camera maps image pixels to screen pixels for the viewer: a centre point
// in image space plus a zoom factor.
type Camera struct {
	X, Y    float64 // image point shown at the screen centre
	Zoom    float64
	MinZoom float64
	MaxZoom float64
	ScreenW int
	ScreenH int
	Speed   float64 // keyboard pan speed, screen pixels per second
}

func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:    1.0,
		MinZoom: 0.125,
		MaxZoom: 16,
		ScreenW: screenW,
		ScreenH: screenH,
		Speed:   600,
	}
}

// Resize updates the viewport after a window size change.
func (c *Camera) Resize(w, h int) {
	c.ScreenW, c.ScreenH = w, h
}

// Pan moves the view by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
}

func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt scales the zoom by factor, keeping the image point under
// (screenX, screenY) in place.
func (c *Camera) ZoomAt(factor float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom * factor)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	c.X += wx - wx2
	c.Y += wy - wy2
}

func (c *Camera) CenterOn(x, y float64) {
	c.X, c.Y = x, y
}

// Fit centres a w×h image and picks the largest power-of-two zoom that
// shows all of it.
func (c *Camera) Fit(w, h int) {
	c.CenterOn(float64(w)/2, float64(h)/2)
	if w <= 0 || h <= 0 {
		c.SetZoom(1)
		return
	}
	z := math.Min(float64(c.ScreenW)/float64(w), float64(c.ScreenH)/float64(h))
	c.SetZoom(math.Pow(2, math.Floor(math.Log2(z))))
}

func (c *Camera) WorldToScreen(x, y float64) (float64, float64) {
	sx := (x-c.X)*c.Zoom + float64(c.ScreenW)/2
	sy := (y-c.Y)*c.Zoom + float64(c.ScreenH)/2
	return sx, sy
}

func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	x := (float64(sx)-float64(c.ScreenW)/2)/c.Zoom + c.X
	y := (float64(sy)-float64(c.ScreenH)/2)/c.Zoom + c.Y
	return x, y
}

// Transform returns the affine map screen = image*scale + (tx, ty).
func (c *Camera) Transform() (scale, tx, ty float64) {
	tx, ty = c.WorldToScreen(0, 0)
	return c.Zoom, tx, ty
}
