package interaction

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line in world space. Dir is expected to be normalized.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Hit describes a ray intersection with a target.
type Hit struct {
	Target   Target
	Distance float32
	Point    mgl32.Vec3 // world space
	UV       mgl32.Vec2 // surface coordinates, origin top-left
}

// Target is anything the pointer ray can be tested against.
// Implementations must be comparable; hover identity uses ==.
type Target interface {
	Intersect(r Ray) (Hit, bool)
}

// Rect is a viewport rectangle in device pixels.
type Rect struct {
	X, Y, Width, Height float32
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// NDC maps device coordinates to normalized device coordinates, y up.
func (r Rect) NDC(x, y float32) mgl32.Vec2 {
	return mgl32.Vec2{
		(x-r.X)/r.Width*2 - 1,
		-(y-r.Y)/r.Height*2 + 1,
	}
}

// Plane is an invisible axis-aligned rectangle in the z = Z plane, centred on
// the origin. It is the hit-test proxy for a particle field.
type Plane struct {
	Width, Height float32 // unscaled size, in field pixels
	Scale         float32
	Z             float32
}

// NewPlane creates a plane sized to a width×height field.
func NewPlane(width, height int) *Plane {
	return &Plane{Width: float32(width), Height: float32(height), Scale: 1}
}

// Intersect implements Target. UV (0,0) is the top-left corner.
func (p *Plane) Intersect(r Ray) (Hit, bool) {
	dz := r.Dir.Z()
	if float32(math.Abs(float64(dz))) < 1e-6 {
		return Hit{}, false
	}
	t := (p.Z - r.Origin.Z()) / dz
	if t < 0 {
		return Hit{}, false
	}
	pt := r.At(t)

	halfW := p.Width * p.Scale / 2
	halfH := p.Height * p.Scale / 2
	if halfW <= 0 || halfH <= 0 {
		return Hit{}, false
	}
	if pt.X() < -halfW || pt.X() > halfW || pt.Y() < -halfH || pt.Y() > halfH {
		return Hit{}, false
	}

	uv := mgl32.Vec2{
		(pt.X() + halfW) / (2 * halfW),
		(halfH - pt.Y()) / (2 * halfH),
	}
	return Hit{Target: p, Distance: t, Point: pt, UV: uv}, true
}

// PixelOf converts a UV on p to field pixel coordinates.
func (p *Plane) PixelOf(uv mgl32.Vec2) (x, y float64) {
	return float64(uv.X() * p.Width), float64(uv.Y() * p.Height)
}
