package renderer

import (
	"testing"

	"github.com/pthm-cable/pointfield/instances"
)

type fixedAngle float32

func (a fixedAngle) Float32() float32 { return float32(a) }

func TestPackInstance(t *testing.T) {
	// 3x2 grid, every pixel but index 1 visible
	set, err := instances.Build(3, 2, func(i int) bool { return i != 1 }, instances.Dense(), fixedAngle(0.5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := 0; i < set.Len(); i++ {
		m := packInstance(set, i)
		p := set.Point(i)
		if m.M12 != float32(p.X) || m.M13 != float32(p.Y) || m.M14 != 0 {
			t.Errorf("instance %d: translation (%v,%v,%v), want (%d,%d,0)", i, m.M12, m.M13, m.M14, p.X, p.Y)
		}
		if m.M3 != set.Angles[i] {
			t.Errorf("instance %d: angle %v, want %v", i, m.M3, set.Angles[i])
		}
		if m.M7 != float32(set.Indices[i]) {
			t.Errorf("instance %d: pixel index %v, want %d", i, m.M7, set.Indices[i])
		}
	}
	if last := packInstance(set, set.Len()-1); last.M7 != 5 {
		t.Errorf("last instance should carry pixel 5, got %v", last.M7)
	}
}
