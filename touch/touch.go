// Package touch implements the displacement texture fed to the particle shader.
//
// The texture is a square grid of heat values in [0,1]. Every frame the whole
// grid decays multiplicatively, then the pointer samples gathered since the
// previous frame are stamped on top as radial falloffs.
package touch

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Cells below this are snapped to zero so the texture settles exactly.
const epsilon = 1.0 / 255.0

// Options configures a Texture.
type Options struct {
	Size     int     // Square resolution
	Radius   float32 // Stamp radius as a fraction of Size
	Decay    float32 // Per-frame multiplier in (0,1)
	MinForce float32 // Floor on speed-scaled intensity; 1 disables speed scaling
}

// DefaultOptions mirrors config/defaults.yaml.
func DefaultOptions() Options {
	return Options{Size: 64, Radius: 0.1, Decay: 0.96, MinForce: 0.2}
}

// Texture is the displacement buffer. It is owned and mutated by a single
// writer; readers take Data() once per frame.
type Texture struct {
	opts Options
	data []float32

	last    mgl32.Vec2
	hasLast bool
	dirty   bool
}

// New creates a zeroed texture. Out-of-range options fall back to defaults.
func New(opts Options) *Texture {
	def := DefaultOptions()
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	if opts.Radius <= 0 {
		opts.Radius = def.Radius
	}
	if opts.Decay <= 0 || opts.Decay >= 1 {
		opts.Decay = def.Decay
	}
	if opts.MinForce <= 0 || opts.MinForce > 1 {
		opts.MinForce = 1
	}
	return &Texture{
		opts: opts,
		data: make([]float32, opts.Size*opts.Size),
	}
}

// Size returns the texture resolution.
func (t *Texture) Size() int {
	return t.opts.Size
}

// Data returns the backing buffer, row-major, row 0 at the top.
func (t *Texture) Data() []float32 {
	return t.data
}

// At returns the heat at cell (x, y), or 0 outside the texture.
func (t *Texture) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= t.opts.Size || y >= t.opts.Size {
		return 0
	}
	return t.data[y*t.opts.Size+x]
}

// Dirty reports whether the buffer changed since the last ClearDirty.
func (t *Texture) Dirty() bool {
	return t.dirty
}

// ClearDirty marks the current contents as uploaded.
func (t *Texture) ClearDirty() {
	t.dirty = false
}

// Reset zeroes the texture and forgets the previous sample.
func (t *Texture) Reset() {
	for i := range t.data {
		t.data[i] = 0
	}
	t.hasLast = false
	t.dirty = true
}

// Update ages the texture by one decay step, then stamps touches in order.
// Touches are surface UVs in [0,1]², origin top-left; others are ignored.
func (t *Texture) Update(touches []mgl32.Vec2) {
	t.decay()
	for _, uv := range touches {
		t.stamp(uv)
	}
	if len(touches) == 0 {
		t.hasLast = false
	}
}

func (t *Texture) decay() {
	for i, v := range t.data {
		if v == 0 {
			continue
		}
		v *= t.opts.Decay
		if v < epsilon {
			v = 0
		}
		t.data[i] = v
		t.dirty = true
	}
}

// force scales intensity by pointer speed between consecutive samples.
func (t *Texture) force(uv mgl32.Vec2) float32 {
	if t.opts.MinForce >= 1 {
		return 1
	}
	if !t.hasLast {
		return 1
	}
	d := uv.Sub(t.last).Len()
	f := d / t.opts.Radius
	if f < t.opts.MinForce {
		f = t.opts.MinForce
	}
	if f > 1 {
		f = 1
	}
	return f
}

func (t *Texture) stamp(uv mgl32.Vec2) {
	if uv.X() < 0 || uv.X() > 1 || uv.Y() < 0 || uv.Y() > 1 {
		return
	}
	intensity := t.force(uv)
	t.last = uv
	t.hasLast = true

	size := float32(t.opts.Size)
	radius := t.opts.Radius * size
	cx := uv.X() * size
	cy := uv.Y() * size

	x0 := clampInt(int(math.Floor(float64(cx-radius))), 0, t.opts.Size-1)
	x1 := clampInt(int(math.Ceil(float64(cx+radius))), 0, t.opts.Size-1)
	y0 := clampInt(int(math.Floor(float64(cy-radius))), 0, t.opts.Size-1)
	y1 := clampInt(int(math.Ceil(float64(cy+radius))), 0, t.opts.Size-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			// Sample at the cell centre
			dx := float32(x) + 0.5 - cx
			dy := float32(y) + 0.5 - cy
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if d >= radius {
				continue
			}
			v := intensity * falloff(d/radius)
			i := y*t.opts.Size + x
			if v > t.data[i] {
				t.data[i] = mgl32.Clamp(v, 0, 1)
				t.dirty = true
			}
		}
	}
}

// falloff eases from 1 at the centre to 0 at the rim.
func falloff(r float32) float32 {
	s := 1 - r
	return s * s * (3 - 2*s)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
