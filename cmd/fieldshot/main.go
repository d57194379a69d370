// Field snapshot tool - renders one frame of a field to a PNG file.
//
// Usage: go run ./cmd/fieldshot -image builtin:rings -at 1.5 -out shot.png
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pointfield/camera"
	"github.com/pthm-cable/pointfield/config"
	"github.com/pthm-cable/pointfield/field"
	"github.com/pthm-cable/pointfield/game"
	"github.com/pthm-cable/pointfield/interaction"
	"github.com/pthm-cable/pointfield/renderer"
	"github.com/pthm-cable/pointfield/scene"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	imagePath := flag.String("image", "builtin:rings", "Image path or builtin:<name>")
	outPath := flag.String("out", "field.png", "Output PNG path")
	at := flag.Float64("at", 1.5, "Seconds of animation to run before capturing")
	width := flag.Int("width", 1280, "Render width")
	height := flag.Int("height", 720, "Render height")
	seed := flag.Int64("seed", 1, "Angle RNG seed")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	src, err := game.ResolveSource(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad image: %v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Field Snapshot")
	defer rl.CloseWindow()

	w, h := float32(*width), float32(*height)
	cam := camera.New(w, h, float32(cfg.Camera.FOV), float32(cfg.Camera.Z), float32(cfg.Camera.Near), float32(cfg.Camera.Far))
	dev := renderer.NewDevice()
	defer dev.Unload()
	sc := scene.New()

	fc, err := field.New(field.Options{
		Device:       dev,
		Scene:        sc,
		Interaction:  interaction.New(cam, interaction.Options{}),
		Threshold:    int(cfg.Derived.Threshold8),
		SparseTarget: cfg.Field.SparseTarget,
		StrideFor:    cfg.SparseStride,
		ShowDuration: cfg.Derived.ShowSec,
		HideDuration: cfg.Derived.HideSec,
		Angles:       rand.New(rand.NewSource(*seed)),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create field: %v\n", err)
		os.Exit(1)
	}
	defer fc.Close()

	fc.Resize(cam.FovHeight())
	if err := fc.Load(src); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", src.Name(), err)
		os.Exit(1)
	}
	const step = 1.0 / 60.0
	for t := 0.0; t < *at; t += step {
		fc.Update(step)
	}

	points := renderer.NewPointRenderer()
	points.Init()
	defer points.Unload()
	background := renderer.NewBackgroundRenderer(int32(*width), int32(*height), 10, 12, 20)
	background.Init()
	defer background.Unload()

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	background.Draw(float32(*at))
	points.Draw(dev, sc, cam)
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		primary, secondary := fc.Counts()
		fmt.Printf("Field %s rendered to: %s (%dx%d, %d points, %d interactive)\n",
			src.Name(), *outPath, *width, *height, primary, secondary)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
