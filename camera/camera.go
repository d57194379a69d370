// Package camera provides the perspective camera looking at the particle field.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pointfield/interaction"
)

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	// Position is the eye in world coordinates
	Position mgl32.Vec3

	// FOV is the vertical field of view in radians
	FOV float32

	// Clip planes
	Near, Far float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32
}

// New creates a camera at distance z from the field plane.
func New(viewportW, viewportH, fovDeg, z, near, far float32) *Camera {
	return &Camera{
		Position:  mgl32.Vec3{0, 0, z},
		FOV:       mgl32.DegToRad(fovDeg),
		Near:      near,
		Far:       far,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
}

// Aspect returns the viewport aspect ratio.
func (c *Camera) Aspect() float32 {
	if c.ViewportH == 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, c.Aspect(), c.Near, c.Far)
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	target := mgl32.Vec3{c.Position.X(), c.Position.Y(), 0}
	return mgl32.LookAtV(c.Position, target, mgl32.Vec3{0, 1, 0})
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// FovHeight returns the world-space height visible at the z=0 plane.
func (c *Camera) FovHeight() float32 {
	return 2 * float32(math.Tan(float64(c.FOV)/2)) * c.Position.Z()
}

// Ray implements interaction.Caster. The ray starts at the eye and passes
// through the given normalized device coordinate.
func (c *Camera) Ray(ndc mgl32.Vec2) interaction.Ray {
	inv := c.ViewProjection().Inv()
	p := inv.Mul4x1(mgl32.Vec4{ndc.X(), ndc.Y(), 0.5, 1})
	if p.W() != 0 {
		p = p.Mul(1 / p.W())
	}
	dir := p.Vec3().Sub(c.Position).Normalize()
	return interaction.Ray{Origin: c.Position, Dir: dir}
}

// WorldToScreen projects a world point to screen pixels, y down.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip.W() == 0 {
		return 0, 0
	}
	nx := clip.X() / clip.W()
	ny := clip.Y() / clip.W()
	sx = (nx + 1) / 2 * c.ViewportW
	sy = (1 - ny) / 2 * c.ViewportH
	return sx, sy
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}
