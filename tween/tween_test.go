package tween

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestFromToLinear(t *testing.T) {
	tl := NewTimeline()
	var v float32 = 99

	tl.FromTo(&v, 0, 10, 1)
	if v != 0 {
		t.Fatalf("FromTo should apply the start value immediately, got %f", v)
	}

	tl.Update(0.25)
	if !near(v, 2.5) {
		t.Errorf("expected 2.5 at quarter time, got %f", v)
	}
	tl.Update(1)
	if v != 10 {
		t.Errorf("expected exact end value 10, got %f", v)
	}
	if tl.Active() != 0 {
		t.Errorf("expected no active tweens, got %d", tl.Active())
	}
}

func TestCompletionFiresOnce(t *testing.T) {
	tl := NewTimeline()
	var v float32
	calls := 0

	tl.To(&v, 5, 0.5, OnComplete(func() { calls++ }))
	for i := 0; i < 10; i++ {
		tl.Update(0.1)
	}
	if calls != 1 {
		t.Errorf("expected completion once, got %d", calls)
	}
	if v != 5 {
		t.Errorf("expected value 5, got %f", v)
	}
}

func TestEasing(t *testing.T) {
	tl := NewTimeline()
	var v float32

	tl.FromTo(&v, 0, 1, 1, WithEase(QuadIn))
	tl.Update(0.5)
	if !near(v, 0.25) {
		t.Errorf("quad-in at half time should be 0.25, got %f", v)
	}

	for _, e := range []EaseFunc{Linear, QuadIn, QuadOut, QuadInOut} {
		if e(0) != 0 || !near(e(1), 1) {
			t.Errorf("easing must map 0->0 and 1->1")
		}
	}
}

func TestReplaceKillsWithoutCompleting(t *testing.T) {
	tl := NewTimeline()
	var v float32
	completed := false

	tl.To(&v, 10, 1, OnComplete(func() { completed = true }))
	tl.Update(0.5)
	tl.To(&v, -10, 1)
	tl.Update(2)

	if completed {
		t.Error("replaced tween should not complete")
	}
	if v != -10 {
		t.Errorf("expected replacement end value -10, got %f", v)
	}
}

func TestCallbackMayStartTween(t *testing.T) {
	tl := NewTimeline()
	var a, b float32

	tl.To(&a, 1, 0.1, OnComplete(func() {
		tl.FromTo(&b, 0, 4, 1)
	}))
	tl.Update(0.2)
	if tl.Active() != 1 {
		t.Fatalf("expected chained tween active, got %d", tl.Active())
	}
	if b != 0 {
		t.Errorf("chained tween should not advance in the same update, got %f", b)
	}
	tl.Update(0.5)
	if !near(b, 2) {
		t.Errorf("expected 2 after half duration, got %f", b)
	}
}

func TestZeroDuration(t *testing.T) {
	tl := NewTimeline()
	var v float32
	done := false
	tl.To(&v, 3, 0, OnComplete(func() { done = true }))
	tl.Update(0)
	if v != 3 || !done {
		t.Errorf("zero duration tween should finish on first update (v=%f done=%v)", v, done)
	}
}
