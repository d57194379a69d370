package telemetry

import (
	"github.com/pthm-cable/pointfield/field"
	"github.com/pthm-cable/pointfield/interaction"
)

// FieldState is the field snapshot attached to a window at flush time.
type FieldState struct {
	Source      string
	Primary     int
	Interactive int
	TouchHeat   float64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	window      int
	elapsed     float64
	windowStart float64
	frameMS     []float64

	// Event counters for current window
	events      [5]int
	activations int
	transitions int
	prepareMS   []float64
	loadErrors  int
}

// NewCollector creates a collector flushing every windowDurationSec seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 5
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordFrame records one frame of dt seconds.
func (c *Collector) RecordFrame(dt float32) {
	c.elapsed += float64(dt)
	c.frameMS = append(c.frameMS, float64(dt)*1000)
}

// RecordEvent records an interaction event.
func (c *Collector) RecordEvent(kind interaction.Kind) {
	if int(kind) < len(c.events) {
		c.events[kind]++
	}
}

// RecordActivation records a point activation.
func (c *Collector) RecordActivation() {
	c.activations++
}

// RecordInstall records a field becoming live and how long it took to
// decode and build.
func (c *Collector) RecordInstall(in field.Install) {
	c.transitions++
	c.prepareMS = append(c.prepareMS, ms(in.Decode+in.Build))
}

// RecordLoadError records a failed load.
func (c *Collector) RecordLoadError() {
	c.loadErrors++
}

// ShouldFlush returns true if the window duration has elapsed.
func (c *Collector) ShouldFlush() bool {
	return c.elapsed-c.windowStart >= c.windowDurationSec
}

// Elapsed returns the total recorded time in seconds.
func (c *Collector) Elapsed() float64 {
	return c.elapsed
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(state FieldState) WindowStats {
	mean, std, p95 := ComputeFrameStats(c.frameMS)
	prepare, _, _ := ComputeFrameStats(c.prepareMS)
	var fps float64
	if span := c.elapsed - c.windowStart; span > 0 {
		fps = float64(len(c.frameMS)) / span
	}

	stats := WindowStats{
		Window:  c.window,
		TimeSec: c.elapsed,
		Source:  state.Source,

		Frames:      len(c.frameMS),
		FPS:         fps,
		FrameMeanMS: mean,
		FrameStdMS:  std,
		FrameP95MS:  p95,

		Enters:      c.events[interaction.Enter],
		Moves:       c.events[interaction.Move],
		Exits:       c.events[interaction.Exit],
		Presses:     c.events[interaction.Press],
		Releases:    c.events[interaction.Release],
		Activations: c.activations,

		Transitions: c.transitions,
		PrepareMS:   prepare,
		LoadErrors:  c.loadErrors,

		Primary:     state.Primary,
		Interactive: state.Interactive,
		TouchHeat:   state.TouchHeat,
	}

	// Reset for next window
	c.window++
	c.windowStart = c.elapsed
	c.frameMS = c.frameMS[:0]
	c.events = [5]int{}
	c.activations = 0
	c.transitions = 0
	c.prepareMS = c.prepareMS[:0]
	c.loadErrors = 0

	return stats
}
