// Package game wires the particle field, interaction, audio and telemetry
// into a frame loop, either in a raylib window or headless.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pointfield/audio"
	"github.com/pthm-cable/pointfield/camera"
	"github.com/pthm-cable/pointfield/config"
	"github.com/pthm-cable/pointfield/field"
	"github.com/pthm-cable/pointfield/input"
	"github.com/pthm-cable/pointfield/interaction"
	"github.com/pthm-cable/pointfield/renderer"
	"github.com/pthm-cable/pointfield/scene"
	"github.com/pthm-cable/pointfield/telemetry"
	"github.com/pthm-cable/pointfield/touch"
	"github.com/pthm-cable/pointfield/ui"
)

// HeadlessDT is the fixed frame step of headless runs.
const HeadlessDT = 1.0 / 60.0

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil uses config.Cfg()
	Images         []string       // overrides config samples when non-empty
	Seed           int64          // angle RNG seed, 0 = config or clock
	Headless       bool
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	AutoAdvanceSec float64      // advance to the next image every N seconds, 0 = manual
	Spawn          func(func()) // decode job runner, nil = goroutine
	Logger         *slog.Logger
}

// Game holds the complete application state.
type Game struct {
	cfg      *config.Config
	logger   *slog.Logger
	headless bool

	scene       *scene.Scene
	device      scene.Device
	gpu         *renderer.Device
	camera      *camera.Camera
	surface     *input.Surface
	interaction *interaction.Controller
	field       *field.Controller
	playlist    *Playlist
	cues        *audio.Cues
	autopilot   *Autopilot

	// Rendering
	points     *renderer.PointRenderer
	background *renderer.BackgroundRenderer
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	touchPanel *ui.TouchPanel
	overlays   *ui.OverlayRegistry

	// Telemetry
	collector     *telemetry.Collector
	timer         *telemetry.FrameTimer
	outputManager *telemetry.OutputManager
	logStats      bool
	installs      int

	// State
	frame        int
	time         float32
	activations  int
	autoAdvance  float32
	sinceAdvance float32

	screenWidth  float32
	screenHeight float32
}

// NewGameWithOptions builds a game. In windowed mode the raylib window must
// already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Game{
		cfg:          cfg,
		logger:       logger,
		headless:     opts.Headless,
		scene:        scene.New(),
		logStats:     opts.LogStats,
		autoAdvance:  float32(opts.AutoAdvanceSec),
		screenWidth:  cfg.Derived.ScreenW32,
		screenHeight: cfg.Derived.ScreenH32,
	}

	if !g.headless {
		g.screenWidth = float32(rl.GetScreenWidth())
		g.screenHeight = float32(rl.GetScreenHeight())
		g.gpu = renderer.NewDevice()
		g.device = g.gpu
	} else {
		g.device = scene.NewHeadlessDevice()
		g.autopilot = NewAutopilot(g.screenWidth, g.screenHeight)
	}

	g.camera = camera.New(g.screenWidth, g.screenHeight,
		float32(cfg.Camera.FOV), float32(cfg.Camera.Z), float32(cfg.Camera.Near), float32(cfg.Camera.Far))

	g.surface = input.NewSurface(g.screenWidth, g.screenHeight)
	g.interaction = interaction.New(g.camera, interaction.Options{
		Device:          interaction.ParseDevice(cfg.Input.Device),
		ProximityRadius: cfg.Field.ProximityRadius,
		Logger:          logger,
	})

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow)
	g.timer = telemetry.NewFrameTimer()

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, err
		}
		g.outputManager = om
	}

	g.cues = audio.New(audio.Options{
		Enabled:  cfg.Audio.Enabled && !g.headless,
		Volume:   cfg.Audio.Volume,
		Voices:   cfg.Audio.Voices,
		BaseFreq: cfg.Audio.BaseFreq,
		Duration: time.Duration(cfg.Audio.DurationMS) * time.Millisecond,
		Logger:   logger,
	})
	if err := g.cues.Init(); err != nil {
		logger.Warn("audio disabled", "error", err)
	}

	g.wireListeners()

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Field.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	fc, err := field.New(field.Options{
		Device:       g.device,
		Scene:        g.scene,
		Interaction:  g.interaction,
		Surface:      g.surface,
		Threshold:    int(cfg.Derived.Threshold8),
		SparseTarget: cfg.Field.SparseTarget,
		StrideFor:    cfg.SparseStride,
		Touch: touch.Options{
			Size:     cfg.Touch.Size,
			Radius:   cfg.Derived.TouchRadius,
			Decay:    cfg.Derived.TouchDecay,
			MinForce: float32(cfg.Touch.MinForce),
		},
		ShowDuration: cfg.Derived.ShowSec,
		HideDuration: cfg.Derived.HideSec,
		Angles:       rand.New(rand.NewSource(seed)),
		Spawn:        opts.Spawn,
		OnError:      g.onLoadError,
		OnInstall:    g.onInstall,
		Logger:       logger,
	})
	if err != nil {
		g.Unload()
		return nil, err
	}
	g.field = fc
	g.field.Resize(g.camera.FovHeight())

	entries := opts.Images
	if len(entries) == 0 {
		entries = cfg.Samples
	}
	g.playlist, err = NewPlaylist(entries)
	if err != nil {
		g.Unload()
		return nil, err
	}

	if !g.headless {
		g.points = renderer.NewPointRenderer()
		g.points.Init()
		g.background = renderer.NewBackgroundRenderer(int32(g.screenWidth), int32(g.screenHeight), 10, 12, 20)
		g.background.Init()
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-250, 10)
		g.touchPanel = ui.NewTouchPanel(int32(g.screenWidth)-250, 120, 3)
		g.overlays = ui.NewOverlayRegistry()
	}

	logger.Info("game initialized",
		"headless", g.headless,
		"samples", g.playlist.Len(),
		"seed", seed,
		"device", cfg.Input.Device,
	)

	if g.playlist.Len() > 0 {
		if err := g.Goto(0); err != nil {
			g.Unload()
			return nil, err
		}
	}
	return g, nil
}

// wireListeners counts interaction events and plays a cue per activation.
func (g *Game) wireListeners() {
	for _, k := range []interaction.Kind{interaction.Enter, interaction.Move, interaction.Exit, interaction.Press, interaction.Release} {
		g.interaction.On(k, func(e interaction.Event) {
			g.collector.RecordEvent(e.Kind)
		})
	}
	g.interaction.OnActivate(func(a interaction.Activation) {
		g.activations++
		g.collector.RecordActivation()
		g.cues.Play(a.Index)
		g.logger.Debug("point activated", "index", a.Index, "x", a.Point.X, "y", a.Point.Y)
	})
}

func (g *Game) onLoadError(source string, err error) {
	g.collector.RecordLoadError()
	g.logger.Error("image load failed", "source", source, "error", err)
}

// onInstall logs a field becoming live and records it for telemetry.
func (g *Game) onInstall(in field.Install) {
	rec := telemetry.NewInstallRecord(g.installs, float64(g.time), in)
	g.installs++
	g.collector.RecordInstall(in)
	g.logger.Info("image shown", "frame", g.frame, "install", rec)
	if err := g.outputManager.WriteInstall(rec); err != nil {
		g.logger.Error("failed to write install", "error", err)
	}
}

// Goto queues sample i.
func (g *Game) Goto(i int) error {
	src, err := g.playlist.Goto(i)
	if err != nil {
		return err
	}
	g.sinceAdvance = 0
	return g.field.Advance(src)
}

// Next queues the following sample, wrapping after the last.
func (g *Game) Next() error {
	src, err := g.playlist.Next()
	if err != nil {
		return err
	}
	g.sinceAdvance = 0
	return g.field.Advance(src)
}

// Update runs one windowed frame: input, field, telemetry. Draw closes the
// frame's timing.
func (g *Game) Update() {
	dt := rl.GetFrameTime()
	g.timer.Begin()

	g.timer.Phase(telemetry.PhaseInput)
	g.handleInput()
	g.surface.Feed(readPointer())

	g.step(dt)
}

// UpdateHeadless runs one fixed-step frame driven by the autopilot.
func (g *Game) UpdateHeadless() {
	g.timer.Begin()

	g.timer.Phase(telemetry.PhaseInput)
	g.surface.Feed(g.autopilot.Step(HeadlessDT))

	g.step(HeadlessDT)
	g.timer.End()
}

func (g *Game) step(dt float32) {
	g.timer.Phase(telemetry.PhaseField)
	g.field.Update(dt)
	g.time += dt
	g.frame++

	if g.autoAdvance > 0 && !g.field.Transitioning() {
		g.sinceAdvance += dt
		if g.sinceAdvance >= g.autoAdvance {
			if err := g.Next(); err != nil {
				g.logger.Error("advance failed", "error", err)
			}
		}
	}

	g.timer.Phase(telemetry.PhaseTelemetry)
	g.collector.RecordFrame(dt)
	g.flushTelemetry()
}

// Frame returns the number of frames run.
func (g *Game) Frame() int {
	return g.frame
}

// Field returns the field controller.
func (g *Game) Field() *field.Controller {
	return g.field
}

// Interaction returns the interaction controller.
func (g *Game) Interaction() *interaction.Controller {
	return g.interaction
}

// Playlist returns the sample list.
func (g *Game) Playlist() *Playlist {
	return g.playlist
}

// Installs returns the number of fields installed so far.
func (g *Game) Installs() int {
	return g.installs
}

// Activations returns the number of point activations so far.
func (g *Game) Activations() int {
	return g.activations
}

// Unload releases every resource. Safe on a partially built game.
func (g *Game) Unload() {
	if g.field != nil {
		g.field.Close()
	}
	if g.cues != nil {
		g.cues.Close()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			g.logger.Error("closing output", "error", err)
		}
		g.outputManager = nil
	}
	if g.points != nil {
		g.points.Unload()
	}
	if g.background != nil {
		g.background.Unload()
	}
	if g.gpu != nil {
		g.gpu.Unload()
	}
}
