package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pointfield/input"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) || rl.IsKeyPressed(rl.KeyRight) {
		if err := g.Next(); err != nil {
			g.logger.Error("advance failed", "error", err)
		}
	}

	// Number keys jump straight to a sample
	for k := int32(rl.KeyOne); k <= rl.KeyNine; k++ {
		if rl.IsKeyPressed(k) {
			if err := g.Goto(int(k - rl.KeyOne)); err != nil {
				g.logger.Warn("goto failed", "error", err)
			}
		}
	}

	if g.overlays != nil {
		g.overlays.HandleKeys()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
}

// Resize propagates new window dimensions to the camera, pointer surface,
// interaction viewport, field scale and renderers.
func (g *Game) Resize(w, h float32) {
	if w <= 0 || h <= 0 || (w == g.screenWidth && h == g.screenHeight) {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.surface.Resize(w, h)
	g.interaction.ResetRect()
	g.field.Resize(g.camera.FovHeight())

	if g.autopilot != nil {
		g.autopilot.Resize(w, h)
	}
	if g.background != nil {
		g.background.Resize(w, h)
	}
	if g.perfPanel != nil {
		g.perfPanel.SetPosition(int32(w)-250, 10)
	}
	if g.touchPanel != nil {
		g.touchPanel.SetPosition(int32(w)-250, 120)
	}
	g.logger.Debug("resized", "width", w, "height", h, "scale", g.field.Scale())
}

// readPointer samples the mouse and first touch contact.
func readPointer() input.Sample {
	m := rl.GetMousePosition()
	s := input.Sample{
		MouseX:     m.X,
		MouseY:     m.Y,
		OnScreen:   rl.IsCursorOnScreen(),
		ButtonDown: rl.IsMouseButtonDown(rl.MouseButtonLeft),
		Touches:    int(rl.GetTouchPointCount()),
	}
	if s.Touches > 0 {
		t := rl.GetTouchPosition(0)
		s.TouchX, s.TouchY = t.X, t.Y
	}
	return s
}
