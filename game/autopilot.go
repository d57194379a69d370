package game

import (
	"math"

	"github.com/pthm-cable/pointfield/input"
)

// Autopilot synthesizes pointer samples for headless runs. The pointer traces
// a Lissajous curve over the middle of the screen and holds the button for
// the first PressFraction of every Period seconds.
type Autopilot struct {
	Width, Height float32
	Period        float32
	PressFraction float32

	t float32
}

// NewAutopilot creates an autopilot for a width×height screen.
func NewAutopilot(width, height float32) *Autopilot {
	return &Autopilot{Width: width, Height: height, Period: 2, PressFraction: 0.25}
}

// Step advances by dt seconds and returns the pointer state.
func (a *Autopilot) Step(dt float32) input.Sample {
	a.t += dt
	t := float64(a.t)
	cx, cy := a.Width/2, a.Height/2
	x := cx + a.Width*0.3*float32(math.Sin(t*0.9))
	y := cy + a.Height*0.3*float32(math.Sin(t*1.3+math.Pi/4))

	down := false
	if a.Period > 0 {
		phase := float32(math.Mod(t, float64(a.Period))) / a.Period
		down = phase < a.PressFraction
	}
	return input.Sample{MouseX: x, MouseY: y, OnScreen: true, ButtonDown: down}
}

// Resize updates the screen bounds.
func (a *Autopilot) Resize(width, height float32) {
	a.Width = width
	a.Height = height
}
