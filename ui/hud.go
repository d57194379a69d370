package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Source        string
	Index, Total  int
	Primary       int
	Interactive   int
	Queued        int
	Transitioning bool
	Device        string
	Hovered       bool
	Down          bool
	Activations   int
	FPS           int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	source := data.Source
	if source == "" {
		source = "(none)"
	}
	rl.DrawText(
		fmt.Sprintf("Image %d/%d: %s | Points: %d | Interactive: %d", data.Index+1, data.Total, source, data.Primary, data.Interactive),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Input: %s | Activations: %d | FPS: %d", data.Device, data.Activations, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status := "Ready"
	switch {
	case data.Transitioning && data.Queued > 0:
		status = fmt.Sprintf("Loading (+%d queued)", data.Queued)
	case data.Transitioning:
		status = "Loading"
	case data.Down:
		status = "Pressed"
	case data.Hovered:
		status = "Hover"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Phases     []string // display order
	Total      time.Duration
	FPS        float64
}

// PerfPanel renders the frame phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	r := p.renderer
	width := int32(240)
	height := r.Theme.Padding*2 + r.Theme.LineHeight*int32(len(data.Phases)+3)
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, p.y+r.Theme.Padding, "Frame Timing")
	y = r.DrawLabelValue(x, y, "Total", fmt.Sprintf("%s (%.0f fps)", data.Total.Round(time.Microsecond), data.FPS))

	for _, name := range data.Phases {
		avg := data.PhaseTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct), x, y, r.Theme.FontSize, color)
		y += r.Theme.LineHeight
	}
}

// TouchPanel draws the displacement texture as a heat map.
type TouchPanel struct {
	renderer *Renderer
	x, y     int32
	cell     int32
}

// NewTouchPanel creates a touch panel whose cells are cell pixels wide.
func NewTouchPanel(x, y, cell int32) *TouchPanel {
	return &TouchPanel{renderer: NewRenderer(), x: x, y: y, cell: cell}
}

// SetPosition updates the panel position.
func (t *TouchPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Draw renders a size×size grid of heat values in [0,1].
func (t *TouchPanel) Draw(data []float32, size int, meanHeat float64) {
	if size <= 0 || len(data) < size*size {
		return
	}
	r := t.renderer
	pad := r.Theme.Padding
	side := int32(size) * t.cell
	r.DrawPanel(t.x, t.y, side+pad*2, side+pad*2+r.Theme.LineHeight*2)

	y := r.DrawSectionHeader(t.x+pad, t.y+pad, "Touch")
	for cy := 0; cy < size; cy++ {
		for cx := 0; cx < size; cx++ {
			v := data[cy*size+cx]
			if v <= 0 {
				continue
			}
			c := rl.ColorAlpha(rl.Red, v)
			rl.DrawRectangle(t.x+pad+int32(cx)*t.cell, y+int32(cy)*t.cell, t.cell, t.cell, c)
		}
	}
	rl.DrawText(fmt.Sprintf("mean %.4f", meanHeat), t.x+pad, y+side+2, r.Theme.FontSize, r.Theme.LabelColor)
}
