package scene

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pointfield/instances"
	"github.com/pthm-cable/pointfield/pixels"
)

func TestAddRemove(t *testing.T) {
	s := New()
	u := &Uniforms{Size: 1}

	a := s.Add(Object{Kind: KindPrimary, Count: 4}, Material{Uniforms: u, Visible: true})
	b := s.Add(Object{Kind: KindSecondary, Count: 2}, Material{Uniforms: u})
	if s.Len() != 2 {
		t.Fatalf("expected 2 objects, got %d", s.Len())
	}

	s.SetScale(a, 2, 3)
	_, tr, _ := s.Get(a)
	if tr.ScaleX != 2 || tr.ScaleY != 3 {
		t.Errorf("expected scale (2,3), got (%f,%f)", tr.ScaleX, tr.ScaleY)
	}

	s.Remove(a)
	s.Remove(a)
	if s.Len() != 1 {
		t.Errorf("expected 1 object after removal, got %d", s.Len())
	}
	if s.Contains(a) || !s.Contains(b) {
		t.Error("contains does not reflect removal")
	}
	s.SetScale(a, 5, 5)
	s.Remove(ecs.Entity{})
}

func TestEach(t *testing.T) {
	s := New()
	s.Add(Object{Kind: KindPrimary, Count: 10}, Material{Visible: true})
	s.Add(Object{Kind: KindSecondary, Count: 3}, Material{Visible: true})

	total := 0
	kinds := map[Kind]int{}
	s.Each(func(_ ecs.Entity, obj *Object, tr *Transform, _ *Material) {
		total += obj.Count
		kinds[obj.Kind]++
		if tr.ScaleX != 1 || tr.ScaleY != 1 {
			t.Errorf("new objects should have unit scale")
		}
	})
	if total != 13 {
		t.Errorf("expected 13 instances, got %d", total)
	}
	if kinds[KindPrimary] != 1 || kinds[KindSecondary] != 1 {
		t.Errorf("expected one object per kind, got %v", kinds)
	}
}

func TestHeadlessDevice(t *testing.T) {
	d := NewHeadlessDevice()
	field := &pixels.Field{Width: 1, Height: 1, Pix: []uint8{1, 2, 3, 255}}

	img, err := d.CreateImageTexture(field)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	inst, err := d.CreateInstances(&instances.Set{})
	if err != nil {
		t.Fatalf("create instances: %v", err)
	}
	touch, err := d.CreateTouchTexture(8)
	if err != nil {
		t.Fatalf("create touch: %v", err)
	}
	if img == 0 || inst == 0 || touch == 0 {
		t.Error("handles must be non-zero")
	}
	if d.LiveTotal() != 3 {
		t.Errorf("expected 3 live resources, got %d", d.LiveTotal())
	}

	if err := d.UpdateTouchTexture(touch, make([]float32, 64)); err != nil {
		t.Errorf("update touch: %v", err)
	}
	if err := d.UpdateTouchTexture(img, nil); err == nil {
		t.Error("updating a non-touch handle should fail")
	}

	d.Release(img)
	d.Release(img)
	d.Release(inst)
	if d.Live(ResourceTouch) != 1 || d.LiveTotal() != 1 {
		t.Errorf("expected only the touch texture live, got %d", d.LiveTotal())
	}
	if d.Uploads() != 1 {
		t.Errorf("expected 1 upload, got %d", d.Uploads())
	}

	if _, err := d.CreateImageTexture(&pixels.Field{}); err == nil {
		t.Error("empty field should not upload")
	}
}

func TestHeadlessDeviceFailAfter(t *testing.T) {
	d := NewHeadlessDevice()
	d.FailAfter = 2
	if _, err := d.CreateTouchTexture(4); err != nil {
		t.Fatalf("first create should succeed: %v", err)
	}
	if _, err := d.CreateTouchTexture(4); err == nil {
		t.Error("second create should fail")
	}
}
