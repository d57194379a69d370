package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/pointfield/field"
	"github.com/pthm-cable/pointfield/interaction"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1)

	// 1/32 s frames sum exactly
	for i := 0; i < 16; i++ {
		c.RecordFrame(0.03125)
	}
	if c.ShouldFlush() {
		t.Fatal("window should not be full after 0.5s")
	}

	c.RecordEvent(interaction.Enter)
	c.RecordEvent(interaction.Move)
	c.RecordEvent(interaction.Move)
	c.RecordEvent(interaction.Press)
	c.RecordActivation()
	c.RecordInstall(field.Install{Decode: 3 * time.Millisecond, Build: time.Millisecond})
	c.RecordInstall(field.Install{Decode: 5 * time.Millisecond, Build: 3 * time.Millisecond})
	c.RecordLoadError()

	for i := 0; i < 16; i++ {
		c.RecordFrame(0.03125)
	}
	if !c.ShouldFlush() {
		t.Fatal("window should be full after 1s")
	}

	s := c.Flush(FieldState{Source: "a.png", Primary: 100, Interactive: 10, TouchHeat: 0.25})
	if s.Window != 0 || s.Frames != 32 {
		t.Errorf("expected window 0 with 32 frames, got %d/%d", s.Window, s.Frames)
	}
	if s.FPS != 32 {
		t.Errorf("expected 32 fps, got %v", s.FPS)
	}
	if s.FrameMeanMS != 31.25 || s.FrameStdMS != 0 {
		t.Errorf("expected constant 31.25ms frames, got %v ± %v", s.FrameMeanMS, s.FrameStdMS)
	}
	if s.Enters != 1 || s.Moves != 2 || s.Presses != 1 || s.Exits != 0 {
		t.Errorf("unexpected event counts: %+v", s)
	}
	if s.Activations != 1 || s.Transitions != 2 || s.LoadErrors != 1 {
		t.Errorf("unexpected lifecycle counts: %+v", s)
	}
	if s.PrepareMS != 6 {
		t.Errorf("expected 6ms mean prepare time, got %v", s.PrepareMS)
	}
	if s.Primary != 100 || s.Interactive != 10 || s.Source != "a.png" {
		t.Errorf("field state not carried: %+v", s)
	}

	next := c.Flush(FieldState{})
	if next.Window != 1 || next.Frames != 0 || next.Presses != 0 || next.Activations != 0 || next.PrepareMS != 0 {
		t.Errorf("counters should reset after flush: %+v", next)
	}
	if c.ShouldFlush() {
		t.Error("a fresh window should not be full")
	}
}
