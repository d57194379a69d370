// Package telemetry aggregates per-window frame and interaction statistics
// and writes them to CSV.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	Window  int     `csv:"window"`
	TimeSec float64 `csv:"time"`
	Source  string  `csv:"source"`

	// Frame timing
	Frames      int     `csv:"frames"`
	FPS         float64 `csv:"fps"`
	FrameMeanMS float64 `csv:"frame_mean_ms"`
	FrameStdMS  float64 `csv:"frame_std_ms"`
	FrameP95MS  float64 `csv:"frame_p95_ms"`

	// Interaction events during window
	Enters      int `csv:"enters"`
	Moves       int `csv:"moves"`
	Exits       int `csv:"exits"`
	Presses     int `csv:"presses"`
	Releases    int `csv:"releases"`
	Activations int `csv:"activations"`

	// Field lifecycle during window
	Transitions int     `csv:"transitions"`
	PrepareMS   float64 `csv:"prepare_ms"` // mean decode+build time of those transitions
	LoadErrors  int     `csv:"load_errors"`

	// Field state at window end
	Primary     int     `csv:"primary"`
	Interactive int     `csv:"interactive"`
	TouchHeat   float64 `csv:"touch_heat"` // mean displacement texture value
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFrameStats returns the mean, sample standard deviation and 95th
// percentile of frame durations.
func ComputeFrameStats(values []float64) (mean, std, p95 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	p95 = Percentile(sorted, 0.95)

	return mean, std, p95
}

// MeanHeat returns the mean of a displacement texture.
func MeanHeat(data []float32) float64 {
	if len(data) == 0 {
		return 0
	}
	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = float64(v)
	}
	return stat.Mean(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window", s.Window),
		slog.Float64("time", s.TimeSec),
		slog.String("source", s.Source),
		slog.Int("frames", s.Frames),
		slog.Float64("fps", s.FPS),
		slog.Float64("frame_mean_ms", s.FrameMeanMS),
		slog.Float64("frame_std_ms", s.FrameStdMS),
		slog.Float64("frame_p95_ms", s.FrameP95MS),
		slog.Int("enters", s.Enters),
		slog.Int("moves", s.Moves),
		slog.Int("exits", s.Exits),
		slog.Int("presses", s.Presses),
		slog.Int("releases", s.Releases),
		slog.Int("activations", s.Activations),
		slog.Int("transitions", s.Transitions),
		slog.Float64("prepare_ms", s.PrepareMS),
		slog.Int("load_errors", s.LoadErrors),
		slog.Int("primary", s.Primary),
		slog.Int("interactive", s.Interactive),
		slog.Float64("touch_heat", s.TouchHeat),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window", s.Window,
		"time", s.TimeSec,
		"source", s.Source,
		"fps", int(s.FPS),
		"frame_p95_ms", s.FrameP95MS,
		"presses", s.Presses,
		"activations", s.Activations,
		"transitions", s.Transitions,
		"primary", s.Primary,
		"interactive", s.Interactive,
	)
}
