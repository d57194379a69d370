// Package renderer draws the particle field with raylib.
package renderer

import (
	_ "embed"
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pointfield/instances"
	"github.com/pthm-cable/pointfield/pixels"
	"github.com/pthm-cable/pointfield/scene"
)

//go:embed shaders/points.vs
var pointsVS string

//go:embed shaders/points.fs
var pointsFS string

// gpuTexture is an uploaded texture.
type gpuTexture struct {
	tex  rl.Texture2D
	size int // square side for touch textures, 0 otherwise
}

// gpuInstances holds per-instance transforms. Translation carries the grid
// offset, M3 the angle and M7 the pixel index.
type gpuInstances struct {
	transforms []rl.Matrix
}

// Device implements scene.Device on top of raylib. It must be created after
// the window is open and used from the render thread only.
type Device struct {
	next      scene.Handle
	textures  map[scene.Handle]*gpuTexture
	instances map[scene.Handle]*gpuInstances

	// scratch for touch uploads
	touchPix []color.RGBA
}

// NewDevice creates an empty raylib device.
func NewDevice() *Device {
	return &Device{
		textures:  make(map[scene.Handle]*gpuTexture),
		instances: make(map[scene.Handle]*gpuInstances),
	}
}

func (d *Device) handle() scene.Handle {
	d.next++
	return d.next
}

// CreateImageTexture uploads f as an RGBA texture.
func (d *Device) CreateImageTexture(f *pixels.Field) (scene.Handle, error) {
	if f == nil || f.Len() == 0 {
		return 0, pixels.ErrEmptyImage
	}

	img := rl.GenImageColor(f.Width, f.Height, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if !rl.IsTextureValid(tex) {
		return 0, fmt.Errorf("loading %dx%d texture failed", f.Width, f.Height)
	}
	rl.SetTextureFilter(tex, rl.FilterPoint)

	pix := make([]color.RGBA, f.Len())
	for i := range pix {
		r, g, b, a := f.RGBA(i)
		pix[i] = color.RGBA{R: r, G: g, B: b, A: a}
	}
	rl.UpdateTexture(tex, pix)

	h := d.handle()
	d.textures[h] = &gpuTexture{tex: tex}
	return h, nil
}

// CreateInstances packs set into instance transforms.
func (d *Device) CreateInstances(set *instances.Set) (scene.Handle, error) {
	gi := &gpuInstances{transforms: make([]rl.Matrix, set.Len())}
	for i := range gi.transforms {
		gi.transforms[i] = packInstance(set, i)
	}
	h := d.handle()
	d.instances[h] = gi
	return h, nil
}

// packInstance encodes instance i of set. The pixel index is exact in a
// float32 up to 2^24 pixels.
func packInstance(set *instances.Set, i int) rl.Matrix {
	m := rl.MatrixTranslate(set.Offsets[i*3], set.Offsets[i*3+1], set.Offsets[i*3+2])
	m.M3 = set.Angles[i]
	m.M7 = float32(set.Indices[i])
	return m
}

// CreateTouchTexture allocates a size×size texture, red channel only.
func (d *Device) CreateTouchTexture(size int) (scene.Handle, error) {
	if size <= 0 {
		return 0, fmt.Errorf("touch texture size must be positive, got %d", size)
	}
	img := rl.GenImageColor(size, size, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if !rl.IsTextureValid(tex) {
		return 0, fmt.Errorf("loading %dx%d touch texture failed", size, size)
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapClamp)

	h := d.handle()
	d.textures[h] = &gpuTexture{tex: tex, size: size}
	return h, nil
}

// UpdateTouchTexture uploads heat values in [0,1].
func (d *Device) UpdateTouchTexture(h scene.Handle, data []float32) error {
	t, ok := d.textures[h]
	if !ok || t.size == 0 {
		return fmt.Errorf("update touch texture %d: %w", h, scene.ErrUnknownHandle)
	}
	if len(data) != t.size*t.size {
		return fmt.Errorf("touch data has %d values, want %d", len(data), t.size*t.size)
	}

	if cap(d.touchPix) < len(data) {
		d.touchPix = make([]color.RGBA, len(data))
	}
	pix := d.touchPix[:len(data)]
	for i, v := range data {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		pix[i] = color.RGBA{R: uint8(v * 255), A: 255}
	}
	rl.UpdateTexture(t.tex, pix)
	return nil
}

// Release frees the resource behind h.
func (d *Device) Release(h scene.Handle) {
	if t, ok := d.textures[h]; ok {
		rl.UnloadTexture(t.tex)
		delete(d.textures, h)
		return
	}
	delete(d.instances, h)
}

// Live returns the number of live resources.
func (d *Device) Live() int {
	return len(d.textures) + len(d.instances)
}

// Unload frees every remaining resource.
func (d *Device) Unload() {
	for h := range d.textures {
		d.Release(h)
	}
	for h := range d.instances {
		d.Release(h)
	}
}
