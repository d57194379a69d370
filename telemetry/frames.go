package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one frame.
const (
	PhaseInput     = "input"
	PhaseField     = "field"
	PhaseDraw      = "draw"
	PhaseTelemetry = "telemetry"
)

// Phases lists the frame phases in the order a frame runs them.
var Phases = []string{PhaseInput, PhaseField, PhaseDraw, PhaseTelemetry}

// PhaseTiming summarizes one phase over a window.
type PhaseTiming struct {
	Mean  time.Duration
	P95   time.Duration
	Share float64 // percent of the mean frame
}

// FrameTiming summarizes the frames of one stats window.
type FrameTiming struct {
	Window int
	Frames int
	Mean   time.Duration
	P95    time.Duration
	FPS    float64 // presented frames per second, 0 when nothing was presented
	Phases map[string]PhaseTiming
}

type phaseSeries struct {
	total time.Duration
	us    []float64
}

// FrameTimer splits each frame into named phases and aggregates them per
// stats window. Phases run back to back: starting one ends the previous.
type FrameTimer struct {
	window int
	frames []float64 // µs
	total  time.Duration
	phases map[string]*phaseSeries

	open       bool
	frameStart time.Time
	phaseStart time.Time
	phase      string
	current    map[string]time.Duration

	lastPresent time.Time
	presented   time.Duration
}

// NewFrameTimer creates an empty timer.
func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		phases:  make(map[string]*phaseSeries),
		current: make(map[string]time.Duration),
	}
}

// Begin opens a frame. An unfinished frame is discarded.
func (t *FrameTimer) Begin() {
	now := time.Now()
	t.open = true
	t.frameStart = now
	t.phaseStart = now
	t.phase = ""
	clear(t.current)
}

// Phase ends the running phase and starts name.
func (t *FrameTimer) Phase(name string) {
	if !t.open {
		return
	}
	now := time.Now()
	t.closePhase(now)
	t.phase = name
}

func (t *FrameTimer) closePhase(now time.Time) {
	if t.phase != "" {
		t.current[t.phase] += now.Sub(t.phaseStart)
	}
	t.phaseStart = now
}

// End closes the frame and adds it to the window.
func (t *FrameTimer) End() {
	if !t.open {
		return
	}
	now := time.Now()
	t.closePhase(now)
	t.open = false

	d := now.Sub(t.frameStart)
	t.total += d
	t.frames = append(t.frames, float64(d.Microseconds()))

	for name, pd := range t.current {
		s := t.phases[name]
		if s == nil {
			s = &phaseSeries{}
			t.phases[name] = s
		}
		// Frames that skipped this phase count as zero
		for len(s.us) < len(t.frames)-1 {
			s.us = append(s.us, 0)
		}
		s.total += pd
		s.us = append(s.us, float64(pd.Microseconds()))
	}
}

// Present marks a frame shown on screen.
func (t *FrameTimer) Present() {
	now := time.Now()
	if !t.lastPresent.IsZero() {
		t.presented = now.Sub(t.lastPresent)
	}
	t.lastPresent = now
}

// Frames returns the number of frames in the open window.
func (t *FrameTimer) Frames() int {
	return len(t.frames)
}

// Snapshot returns the means of the open window without percentiles.
func (t *FrameTimer) Snapshot() FrameTiming {
	return t.summarize(false)
}

// Flush summarizes the open window, including percentiles, and starts the
// next one.
func (t *FrameTimer) Flush() FrameTiming {
	ft := t.summarize(true)
	t.window++
	t.frames = t.frames[:0]
	t.total = 0
	clear(t.phases)
	return ft
}

func (t *FrameTimer) summarize(percentiles bool) FrameTiming {
	ft := FrameTiming{
		Window: t.window,
		Frames: len(t.frames),
		Phases: make(map[string]PhaseTiming, len(t.phases)),
	}
	if t.presented > 0 {
		ft.FPS = float64(time.Second) / float64(t.presented)
	}
	n := len(t.frames)
	if n == 0 {
		return ft
	}
	ft.Mean = t.total / time.Duration(n)
	if percentiles {
		_, _, p95 := ComputeFrameStats(t.frames)
		ft.P95 = time.Duration(p95) * time.Microsecond
	}

	for name, s := range t.phases {
		pt := PhaseTiming{Mean: s.total / time.Duration(n)}
		if ft.Mean > 0 {
			pt.Share = float64(pt.Mean) / float64(ft.Mean) * 100
		}
		if percentiles {
			us := s.us
			for len(us) < n {
				us = append(us, 0)
			}
			_, _, p95 := ComputeFrameStats(us)
			pt.P95 = time.Duration(p95) * time.Microsecond
		}
		ft.Phases[name] = pt
	}
	return ft
}

// LogValue implements slog.LogValuer for structured logging.
func (ft FrameTiming) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("window", ft.Window),
		slog.Int("frames", ft.Frames),
		slog.Int64("frame_mean_us", ft.Mean.Microseconds()),
		slog.Int64("frame_p95_us", ft.P95.Microseconds()),
	}
	if ft.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", ft.FPS))
	}
	for _, name := range Phases {
		if pt, ok := ft.Phases[name]; ok {
			attrs = append(attrs, slog.Group(name,
				slog.Int64("mean_us", pt.Mean.Microseconds()),
				slog.Int64("p95_us", pt.P95.Microseconds()),
				slog.Float64("pct", pt.Share),
			))
		}
	}
	return slog.GroupValue(attrs...)
}

// TimingRow is one timing.csv record.
type TimingRow struct {
	Window         int     `csv:"window"`
	Frames         int     `csv:"frames"`
	FrameMeanUS    int64   `csv:"frame_mean_us"`
	FrameP95US     int64   `csv:"frame_p95_us"`
	FPS            float64 `csv:"fps"`
	InputP95US     int64   `csv:"input_p95_us"`
	FieldMeanUS    int64   `csv:"field_mean_us"`
	FieldP95US     int64   `csv:"field_p95_us"`
	DrawMeanUS     int64   `csv:"draw_mean_us"`
	DrawP95US      int64   `csv:"draw_p95_us"`
	TelemetryP95US int64   `csv:"telemetry_p95_us"`
}

// Row flattens the timing for CSV.
func (ft FrameTiming) Row() TimingRow {
	p := ft.Phases
	return TimingRow{
		Window:         ft.Window,
		Frames:         ft.Frames,
		FrameMeanUS:    ft.Mean.Microseconds(),
		FrameP95US:     ft.P95.Microseconds(),
		FPS:            ft.FPS,
		InputP95US:     p[PhaseInput].P95.Microseconds(),
		FieldMeanUS:    p[PhaseField].Mean.Microseconds(),
		FieldP95US:     p[PhaseField].P95.Microseconds(),
		DrawMeanUS:     p[PhaseDraw].Mean.Microseconds(),
		DrawP95US:      p[PhaseDraw].P95.Microseconds(),
		TelemetryP95US: p[PhaseTelemetry].P95.Microseconds(),
	}
}
