package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pointfield/telemetry"
	"github.com/pthm-cable/pointfield/ui"
)

const controlsText = "[Space/Right] Next  [1-9] Jump  [H] HUD  [P] Points  [T] Touch  [F] Timing  [F11] Fullscreen"

// Draw renders the frame and closes the frame timing opened by Update.
func (g *Game) Draw() {
	g.timer.Phase(telemetry.PhaseDraw)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.background.Draw(g.time)
	g.points.Draw(g.gpu, g.scene, g.camera)

	if g.overlays.IsEnabled(ui.OverlayPoints) {
		g.drawInteractivePoints()
	}
	if g.overlays.IsEnabled(ui.OverlayHUD) {
		g.drawHUD()
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.drawPerf()
	}
	if g.overlays.IsEnabled(ui.OverlayTouch) {
		t := g.field.Touch()
		g.touchPanel.Draw(t.Data(), t.Size(), telemetry.MeanHeat(t.Data()))
	}

	rl.EndDrawing()

	g.timer.End()
	g.timer.Present()
}

func (g *Game) drawHUD() {
	primary, secondary := g.field.Counts()
	g.hud.Draw(ui.HUDData{
		Title:         g.cfg.Screen.Title,
		Source:        g.field.Current(),
		Index:         g.playlist.Index(),
		Total:         g.playlist.Len(),
		Primary:       primary,
		Interactive:   secondary,
		Queued:        g.field.Queued(),
		Transitioning: g.field.Transitioning(),
		Device:        g.surface.Device().String(),
		Hovered:       g.interaction.Hovered() != nil,
		Down:          g.interaction.IsDown(),
		Activations:   g.activations,
		FPS:           rl.GetFPS(),
	})
	g.hud.DrawControls(int32(g.screenHeight), controlsText)
}

func (g *Game) drawPerf() {
	snap := g.timer.Snapshot()
	times := make(map[string]time.Duration, len(snap.Phases))
	for name, pt := range snap.Phases {
		times[name] = pt.Mean
	}
	g.perfPanel.Draw(ui.PerfPanelData{
		PhaseTimes: times,
		Phases:     telemetry.Phases,
		Total:      snap.Mean.Round(time.Microsecond),
		FPS:        snap.FPS,
	})
}

// drawInteractivePoints marks each interactive point and its activation radius.
func (g *Game) drawInteractivePoints() {
	reg := g.field.Points()
	scale := g.field.Scale()
	if reg == nil || scale <= 0 {
		return
	}
	w, h := g.field.Size()
	radius := float32(g.cfg.Field.ProximityRadius) * scale
	for _, p := range reg.Points() {
		wx := (float32(p.X) - float32(w)/2) * scale
		wy := (float32(h)/2 - float32(p.Y)) * scale
		sx, sy := g.camera.WorldToScreen(mgl32.Vec3{wx, wy, 0})
		ex, _ := g.camera.WorldToScreen(mgl32.Vec3{wx + radius, wy, 0})
		rl.DrawCircleLines(int32(sx), int32(sy), ex-sx, rl.Yellow)
		rl.DrawCircle(int32(sx), int32(sy), 2, rl.Yellow)
	}
}
