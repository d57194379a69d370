// Field preview tool - tune sampling threshold and interactive point
// selection against an image with sliders.
//
// Usage: go run ./cmd/fieldpreview [-image path|builtin:name]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pointfield/config"
	"github.com/pthm-cable/pointfield/game"
	"github.com/pthm-cable/pointfield/instances"
	"github.com/pthm-cable/pointfield/pixels"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = 600
	panelWidth   = windowWidth - previewSize - 30
)

// PreviewParams holds the sampling parameters being tuned.
type PreviewParams struct {
	Threshold    int
	SparseTarget int
	SparseStride int // 0 = auto
}

func defaults(cfg *config.Config) PreviewParams {
	return PreviewParams{
		Threshold:    cfg.Sampler.Threshold,
		SparseTarget: cfg.Field.SparseTarget,
		SparseStride: cfg.Field.SparseStride,
	}
}

// selection holds the sets built for the current parameters.
type selection struct {
	visible int
	dense   *instances.Set
	sparse  *instances.Set
	stride  int
}

func build(f *pixels.Field, p PreviewParams) (selection, error) {
	visible := pixels.Visible(f, p.Threshold)
	dense, err := instances.Build(f.Width, f.Height, visible, instances.Dense(), nil)
	if err != nil {
		return selection{}, err
	}
	stride := p.SparseStride
	if stride == 0 && dense.Len() > p.SparseTarget {
		stride = dense.Len()/p.SparseTarget - 1
	}
	sparse, err := instances.Build(f.Width, f.Height, visible, instances.Sparse(p.SparseTarget, stride), nil)
	if err != nil {
		return selection{}, err
	}
	return selection{visible: dense.Len(), dense: dense, sparse: sparse, stride: stride}, nil
}

// maskPixels dims every pixel the sampler rejects.
func maskPixels(f *pixels.Field, threshold int) []color.RGBA {
	visible := pixels.Visible(f, threshold)
	out := make([]color.RGBA, f.Len())
	for i := range out {
		r, g, b, _ := f.RGBA(i)
		if visible(i) {
			out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
		} else {
			out[i] = color.RGBA{R: r / 6, G: g / 6, B: b / 6, A: 255}
		}
	}
	return out
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	imagePath := flag.String("image", "builtin:rings", "Image path or builtin:<name>")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	src, err := game.ResolveSource(*imagePath)
	if err != nil {
		slog.Error("bad image", "error", err)
		os.Exit(1)
	}
	f, err := src.Decode()
	if err != nil {
		slog.Error("failed to decode image", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(f.Width, f.Height, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	rl.SetTextureFilter(texture, rl.FilterPoint)

	params := defaults(cfg)
	var sel selection
	needsRegen := true

	// Fit the image into the preview square
	scale := float32(previewSize) / float32(max(f.Width, f.Height))
	drawW := float32(f.Width) * scale
	drawH := float32(f.Height) * scale

	for !rl.WindowShouldClose() {
		if needsRegen {
			sel, err = build(f, params)
			if err != nil {
				slog.Error("build failed", "error", err)
			}
			rl.UpdateTexture(texture, maskPixels(f, params.Threshold))
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(f.Width), Height: float32(f.Height)},
			rl.Rectangle{X: 10, Y: 10, Width: drawW, Height: drawH},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, int32(drawW), int32(drawH), rl.DarkGray)

		if sel.sparse != nil {
			radius := float32(cfg.Field.ProximityRadius) * scale
			for i := 0; i < sel.sparse.Len(); i++ {
				p := sel.sparse.Point(i)
				cx := 10 + (float32(p.X)+0.5)*scale
				cy := 10 + (float32(p.Y)+0.5)*scale
				rl.DrawCircleLines(int32(cx), int32(cy), radius, rl.Yellow)
				rl.DrawCircle(int32(cx), int32(cy), 3, rl.Red)
			}
		}

		// Draw stats
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("%s  %dx%d", src.Name(), f.Width, f.Height), 15, statsY, 16, rl.DarkGray)
		if sel.sparse != nil {
			rl.DrawText(fmt.Sprintf("Visible: %d  Dense: %d  Interactive: %d  Stride: %d",
				sel.visible, sel.dense.Len(), sel.sparse.Len(), sel.stride), 15, statsY+20, 16, rl.DarkGray)
		}

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Sampling Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Threshold (red channel cutoff)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newThreshold := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "255",
			float32(params.Threshold), 0, 255,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Threshold), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newThreshold) != params.Threshold {
			params.Threshold = int(newThreshold)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Interactive target count", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newTarget := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "100",
			float32(params.SparseTarget), 1, 100,
		)
		rl.DrawText(fmt.Sprintf("%d", params.SparseTarget), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newTarget) != params.SparseTarget {
			params.SparseTarget = int(newTarget)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Min stride (0 = auto)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newStride := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "5000",
			float32(params.SparseStride), 0, 5000,
		)
		rl.DrawText(fmt.Sprintf("%d", params.SparseStride), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newStride) != params.SparseStride {
			params.SparseStride = int(newStride)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults(cfg)
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := configYAML(params)
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func configYAML(p PreviewParams) string {
	return fmt.Sprintf("sampler:\n  threshold: %d\nfield:\n  sparse_target: %d\n  sparse_stride: %d",
		p.Threshold, p.SparseTarget, p.SparseStride)
}
