// Package input adapts per-frame pointer samples to the interaction layer.
//
// The window loop reads the pointer once per frame into a Sample and hands it
// to Surface.Feed, which turns state changes into bound handler calls. Only
// the device family chosen at Bind time is dispatched.
package input

import (
	"runtime"

	"github.com/pthm-cable/pointfield/interaction"
)

// Sample is the pointer state observed in one frame.
type Sample struct {
	// Mouse
	MouseX, MouseY float32
	OnScreen       bool
	ButtonDown     bool

	// Touch, first contact only
	Touches        int
	TouchX, TouchY float32
}

// Surface implements interaction.Surface for a window.
type Surface struct {
	width, height float32
	touchCapable  bool

	device   interaction.Device
	handlers *interaction.PointerHandlers
	gen      uint32

	// last dispatched state
	down     bool
	onScreen bool
	lastX    float32
	lastY    float32
	hasLast  bool
}

// NewSurface creates a surface for a width×height window. Touch capability
// defaults to the mobile platforms raylib supports.
func NewSurface(width, height float32) *Surface {
	return &Surface{
		width:        width,
		height:       height,
		touchCapable: runtime.GOOS == "android" || runtime.GOOS == "ios",
	}
}

// SetTouchCapable overrides platform detection.
func (s *Surface) SetTouchCapable(v bool) {
	s.touchCapable = v
}

// Resize updates the window bounds.
func (s *Surface) Resize(width, height float32) {
	s.width = width
	s.height = height
}

func (s *Surface) TouchCapable() bool {
	return s.touchCapable
}

func (s *Surface) Bounds() interaction.Rect {
	return interaction.Rect{Width: s.width, Height: s.height}
}

type binding struct {
	s   *Surface
	gen uint32
}

func (b binding) Unbind() {
	if b.s.gen == b.gen {
		b.s.handlers = nil
	}
}

// Bind replaces any previous binding.
func (s *Surface) Bind(device interaction.Device, h interaction.PointerHandlers) interaction.Binding {
	s.gen++
	s.device = device
	s.handlers = &h
	s.down = false
	s.hasLast = false
	s.onScreen = false
	return binding{s: s, gen: s.gen}
}

// Bound reports whether handlers are bound.
func (s *Surface) Bound() bool {
	return s.handlers != nil
}

// Device returns the device family of the current binding.
func (s *Surface) Device() interaction.Device {
	return s.device
}

// Feed dispatches the changes between the previous sample and smp.
func (s *Surface) Feed(smp Sample) {
	if s.handlers == nil {
		return
	}
	if s.device == interaction.DeviceTouch {
		s.feedTouch(smp)
		return
	}
	s.feedMouse(smp)
}

func (s *Surface) feedMouse(smp Sample) {
	h := s.handlers
	if !smp.OnScreen {
		if s.onScreen && h.Leave != nil {
			h.Leave()
		}
		s.onScreen = false
		s.down = false
		s.hasLast = false
		return
	}
	s.onScreen = true

	x, y := smp.MouseX, smp.MouseY
	if !s.hasLast || x != s.lastX || y != s.lastY {
		s.lastX, s.lastY, s.hasLast = x, y, true
		call2(h.Move, x, y)
	}

	// Handlers may unbind while dispatching
	if s.handlers == nil {
		return
	}
	switch {
	case smp.ButtonDown && !s.down:
		s.down = true
		call2(h.Down, x, y)
	case !smp.ButtonDown && s.down:
		s.down = false
		call0(h.Up)
	}
}

func (s *Surface) feedTouch(smp Sample) {
	h := s.handlers
	if smp.Touches == 0 {
		if s.down {
			s.down = false
			s.hasLast = false
			call0(h.Up)
		}
		return
	}

	x, y := smp.TouchX, smp.TouchY
	if !s.down {
		s.down = true
		s.lastX, s.lastY, s.hasLast = x, y, true
		call2(h.Down, x, y)
		return
	}
	if x != s.lastX || y != s.lastY {
		s.lastX, s.lastY = x, y
		call2(h.Move, x, y)
	}
}

func call0(fn func()) {
	if fn != nil {
		fn()
	}
}

func call2(fn func(x, y float32), x, y float32) {
	if fn != nil {
		fn(x, y)
	}
}
