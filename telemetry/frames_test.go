package telemetry

import (
	"testing"
	"time"
)

func TestFrameTimerPhases(t *testing.T) {
	ft := NewFrameTimer()

	for i := 0; i < 5; i++ {
		ft.Begin()
		ft.Phase(PhaseField)
		time.Sleep(100 * time.Microsecond)
		ft.Phase(PhaseDraw)
		time.Sleep(400 * time.Microsecond)
		ft.End()
	}

	snap := ft.Snapshot()
	if snap.Frames != 5 || snap.Mean <= 0 {
		t.Fatalf("expected 5 timed frames, got %+v", snap)
	}
	field, draw := snap.Phases[PhaseField], snap.Phases[PhaseDraw]
	if draw.Share <= field.Share {
		t.Errorf("draw (%.1f%%) should outweigh field (%.1f%%)", draw.Share, field.Share)
	}
	if field.P95 != 0 {
		t.Error("snapshot should not compute percentiles")
	}
	if ft.Frames() != 5 {
		t.Error("snapshot must not reset the window")
	}
}

func TestFrameTimerFlush(t *testing.T) {
	ft := NewFrameTimer()

	// field runs every frame, input only on the last
	for i := 0; i < 20; i++ {
		ft.Begin()
		if i == 19 {
			ft.Phase(PhaseInput)
			time.Sleep(2 * time.Millisecond)
		}
		ft.Phase(PhaseField)
		ft.End()
	}

	w := ft.Flush()
	if w.Window != 0 || w.Frames != 20 {
		t.Fatalf("unexpected window %d with %d frames", w.Window, w.Frames)
	}
	if w.P95 <= 0 || w.Phases[PhaseInput].P95 <= 0 {
		t.Errorf("flush should fill percentiles: frame %v input %v", w.P95, w.Phases[PhaseInput].P95)
	}
	in := w.Phases[PhaseInput]
	if in.Mean <= 0 || in.Mean > 2*time.Millisecond {
		t.Errorf("a phase seen once should average over all frames, got %v", in.Mean)
	}

	next := ft.Flush()
	if next.Window != 1 || next.Frames != 0 || len(next.Phases) != 0 {
		t.Errorf("flush should start an empty window: %+v", next)
	}
}

func TestFrameTimerUnopenedFrame(t *testing.T) {
	ft := NewFrameTimer()
	ft.Phase(PhaseDraw)
	ft.End()
	if ft.Frames() != 0 {
		t.Error("phases outside Begin/End should be ignored")
	}
}

func TestFrameTimerPresent(t *testing.T) {
	ft := NewFrameTimer()
	ft.Present()
	time.Sleep(16 * time.Millisecond)
	ft.Present()

	fps := ft.Snapshot().FPS
	if fps < 30 || fps > 70 {
		t.Errorf("expected about 60 fps with 16ms frames, got %v", fps)
	}
}

func TestTimingRow(t *testing.T) {
	ft := FrameTiming{
		Window: 3,
		Mean:   2 * time.Millisecond,
		Phases: map[string]PhaseTiming{
			PhaseField: {Mean: 800 * time.Microsecond, P95: time.Millisecond},
			PhaseDraw:  {Mean: time.Millisecond},
		},
	}
	row := ft.Row()
	if row.Window != 3 || row.FrameMeanUS != 2000 {
		t.Errorf("unexpected frame fields: %+v", row)
	}
	if row.FieldMeanUS != 800 || row.FieldP95US != 1000 || row.DrawMeanUS != 1000 || row.InputP95US != 0 {
		t.Errorf("unexpected phase fields: %+v", row)
	}
}
