package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pointfield/config"
	"github.com/pthm-cable/pointfield/game"
)

// imageList collects repeated -image flags.
type imageList []string

func (l *imageList) String() string {
	return strings.Join(*l, ",")
}

func (l *imageList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics, driving the pointer automatically")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Angle RNG seed (0 = config or time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	advance := flag.Float64("advance", 0, "Advance to the next image every N seconds (0 = manual)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	var images imageList
	flag.Var(&images, "image", "Image to show (repeatable, overrides config samples; builtin:<name> for a pattern)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := game.Options{
		Images:         images,
		Seed:           *seed,
		Headless:       *headless,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		AutoAdvanceSec: *advance,
		Logger:         logger,
	}

	if *headless {
		if opts.AutoAdvanceSec <= 0 && *maxFrames == 0 {
			slog.Warn("headless run without -max-frames never stops")
		}

		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless run",
			"max_frames", *maxFrames,
			"advance", *advance,
		)

		for {
			g.UpdateHeadless()

			if *maxFrames > 0 && g.Frame() >= *maxFrames {
				slog.Info("max frames reached", "frame", g.Frame())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxFrames > 0 && g.Frame() >= *maxFrames {
			break
		}
	}
}
