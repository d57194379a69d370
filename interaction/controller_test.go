package interaction

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pointfield/instances"
)

// orthoCaster shoots rays straight down -Z; NDC maps to world x,y in [-100,100].
type orthoCaster struct{}

func (orthoCaster) Ray(ndc mgl32.Vec2) Ray {
	return Ray{
		Origin: mgl32.Vec3{ndc.X() * 100, ndc.Y() * 100, 50},
		Dir:    mgl32.Vec3{0, 0, -1},
	}
}

// stripTarget is hit when world x lies in [minX, maxX).
type stripTarget struct {
	name       string
	minX, maxX float32
	z          float32
}

func (s *stripTarget) Intersect(r Ray) (Hit, bool) {
	t := (s.z - r.Origin.Z()) / r.Dir.Z()
	p := r.At(t)
	if p.X() < s.minX || p.X() >= s.maxX {
		return Hit{}, false
	}
	return Hit{Target: s, Distance: t, Point: p, UV: mgl32.Vec2{0.5, 0.5}}, true
}

type fakeBinding struct {
	surface *fakeSurface
}

func (b *fakeBinding) Unbind() {
	b.surface.bound = nil
	b.surface.unbinds++
}

type fakeSurface struct {
	touch   bool
	bounds  Rect
	bound   *PointerHandlers
	device  Device
	binds   int
	unbinds int
}

func (s *fakeSurface) TouchCapable() bool { return s.touch }
func (s *fakeSurface) Bounds() Rect       { return s.bounds }
func (s *fakeSurface) Bind(d Device, h PointerHandlers) Binding {
	s.bound = &h
	s.device = d
	s.binds++
	return &fakeBinding{surface: s}
}

// recorder collects events as "kind:target" strings.
type recorder struct {
	log []string
}

func name(t Target) string {
	if t == nil {
		return "nil"
	}
	if s, ok := t.(*stripTarget); ok {
		return s.name
	}
	return "?"
}

func (r *recorder) listen(c *Controller) {
	for k := Enter; k < numKinds; k++ {
		c.On(k, func(e Event) {
			r.log = append(r.log, e.Kind.String()+":"+name(e.Target))
		})
	}
}

func newTestController() (*Controller, *fakeSurface, *stripTarget, *stripTarget) {
	a := &stripTarget{name: "A", minX: -100, maxX: 0}
	b := &stripTarget{name: "B", minX: 0, maxX: 50}
	c := New(orthoCaster{}, Options{})
	c.AddTarget(a)
	c.AddTarget(b)
	s := &fakeSurface{bounds: Rect{Width: 200, Height: 200}}
	return c, s, a, b
}

func equalLog(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s (all: %v)", i, want[i], got[i], got)
		}
	}
}

func TestHoverSequence(t *testing.T) {
	c, s, _, _ := newTestController()
	c.Attach(s)
	rec := &recorder{}
	rec.listen(c)

	// Device x 0..200 maps to world x -100..100
	c.PointerMove(20, 100)  // A
	c.PointerMove(40, 100)  // A
	c.PointerMove(120, 100) // B
	c.PointerMove(130, 100) // B
	c.PointerMove(190, 100) // nothing

	equalLog(t, rec.log, []string{
		"enter:A", "move:A",
		"exit:A", "enter:B", "move:B",
		"exit:B",
	})
	if c.Hovered() != nil {
		t.Error("expected no hovered target at the end")
	}
}

func TestNeverDoubleEnter(t *testing.T) {
	c, s, _, _ := newTestController()
	c.Attach(s)

	inside := false
	c.On(Enter, func(Event) {
		if inside {
			t.Fatal("two enters without an exit")
		}
		inside = true
	})
	c.On(Exit, func(Event) {
		if !inside {
			t.Fatal("exit without enter")
		}
		inside = false
	})

	xs := []float32{10, 120, 20, 190, 110, 30, 199, 5}
	for _, x := range xs {
		c.PointerMove(x, 100)
	}
}

func TestNearestTargetWins(t *testing.T) {
	c := New(orthoCaster{}, Options{})
	far := &stripTarget{name: "far", minX: -100, maxX: 100, z: -10}
	near := &stripTarget{name: "near", minX: -100, maxX: 100, z: 10}
	c.AddTarget(far)
	c.AddTarget(near)
	c.Resize(Rect{Width: 200, Height: 200})

	c.PointerMove(100, 100)
	if c.Hovered() != near {
		t.Errorf("expected nearest target hovered, got %s", name(c.Hovered()))
	}
}

func TestEmptyTargetsNoEvents(t *testing.T) {
	c := New(orthoCaster{}, Options{})
	c.Resize(Rect{Width: 200, Height: 200})
	rec := &recorder{}
	rec.listen(c)

	c.PointerMove(100, 100)
	c.PointerMove(150, 10)
	if len(rec.log) != 0 {
		t.Errorf("expected no events without targets, got %v", rec.log)
	}
}

func TestPressReleaseAndSelection(t *testing.T) {
	c, s, a, b := newTestController()
	c.Attach(s)

	var presses []Event
	c.On(Press, func(e Event) { presses = append(presses, e) })
	rec := &recorder{}
	rec.listen(c)

	c.PointerDown(20, 100)
	if !c.IsDown() {
		t.Error("expected pointer down")
	}
	c.PointerUp()
	c.PointerDown(120, 100)

	equalLog(t, rec.log, []string{
		"enter:A", "press:A", "release:A",
		"exit:A", "enter:B", "press:B",
	})
	if presses[0].Previous != nil {
		t.Errorf("first press should have no previous selection")
	}
	if presses[1].Previous != a {
		t.Errorf("second press should report A as previous, got %s", name(presses[1].Previous))
	}
	if presses[1].Hit == nil || presses[1].Hit.Target != b {
		t.Errorf("second press should carry hit data for B")
	}
	if c.Selected() != b {
		t.Errorf("expected B selected, got %s", name(c.Selected()))
	}
}

func TestLeaveIsReleaseThenExit(t *testing.T) {
	c, s, _, _ := newTestController()
	c.Attach(s)
	rec := &recorder{}
	rec.listen(c)

	c.PointerDown(20, 100)
	s.bound.Leave()

	equalLog(t, rec.log, []string{"enter:A", "press:A", "release:A", "exit:A"})
	if c.IsDown() {
		t.Error("leave should release the pointer")
	}
}

func TestAttachDeviceModes(t *testing.T) {
	c := New(orthoCaster{}, Options{})

	mouse := &fakeSurface{}
	c.Attach(mouse)
	if mouse.device != DeviceMouse || mouse.bound.Leave == nil {
		t.Errorf("expected mouse binding with leave handler")
	}

	touch := &fakeSurface{touch: true}
	c.Attach(touch)
	if mouse.unbinds != 1 {
		t.Errorf("re-attaching should unbind the previous surface")
	}
	if touch.device != DeviceTouch {
		t.Errorf("expected touch binding on touch-capable surface")
	}
	if touch.bound.Leave != nil {
		t.Errorf("touch binding should not carry a leave handler")
	}

	forced := New(orthoCaster{}, Options{Device: DeviceMouse})
	forced.Attach(touch)
	if touch.device != DeviceMouse {
		t.Errorf("explicit device should override capability")
	}
}

func TestDetachIdempotent(t *testing.T) {
	c, s, _, _ := newTestController()
	c.Detach()

	c.Attach(s)
	if !c.Attached() {
		t.Fatal("expected attached")
	}
	c.Detach()
	c.Detach()
	if c.Attached() {
		t.Error("expected detached")
	}
	if s.unbinds != 1 {
		t.Errorf("expected exactly one unbind, got %d", s.unbinds)
	}
}

func TestViewportFallsBackToSurface(t *testing.T) {
	c, s, _, _ := newTestController()
	c.Attach(s)

	if c.Viewport() != s.bounds {
		t.Errorf("expected surface bounds %v, got %v", s.bounds, c.Viewport())
	}
	r := Rect{X: 10, Y: 10, Width: 50, Height: 50}
	c.Resize(r)
	if c.Viewport() != r {
		t.Errorf("expected explicit rect %v, got %v", r, c.Viewport())
	}
	c.ResetRect()
	if c.Viewport() != s.bounds {
		t.Errorf("expected surface bounds after reset, got %v", c.Viewport())
	}
}

func TestRemoveHandle(t *testing.T) {
	c, s, _, _ := newTestController()
	c.Attach(s)

	count := 0
	h := c.On(Enter, func(Event) { count++ })
	c.PointerMove(20, 100)
	h.Remove()
	h.Remove()
	c.PointerMove(190, 100)
	c.PointerMove(20, 100)

	if count != 1 {
		t.Errorf("expected 1 enter before removal, got %d", count)
	}
}

func TestPointActivation(t *testing.T) {
	// A 100x100 field on a plane filling the ortho view exactly
	plane := NewPlane(200, 200)

	set := &instances.Set{
		Width: 100, Height: 100,
		Indices: []uint32{10*100 + 10, 50*100 + 60},
		Offsets: []float32{10, 10, 0, 60, 50, 0},
		Angles:  []float32{0, 0},
	}
	reg := instances.NewRegistry(set)

	c := New(orthoCaster{}, Options{})
	c.AddTarget(plane)
	c.Resize(Rect{Width: 200, Height: 200})
	c.SetInteractivePoints(reg, 100, 100)

	var got []int
	c.OnActivate(func(a Activation) { got = append(got, a.Index) })

	// Device (121, 101) -> uv (0.605, 0.505) -> field pixel (60.5, 50.5)
	c.PointerDown(121, 101)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected activation [1], got %v", got)
	}

	got = nil
	c.PointerUp()
	c.PointerDown(180, 20)
	if len(got) != 0 {
		t.Errorf("expected no activation away from points, got %v", got)
	}

	// Moving over a point without pressing never activates
	got = nil
	c.PointerUp()
	c.PointerMove(21, 21)
	if len(got) != 0 {
		t.Errorf("move should not activate, got %v", got)
	}
}

func TestPlaneUV(t *testing.T) {
	p := NewPlane(40, 20)
	p.Scale = 2

	ray := Ray{Origin: mgl32.Vec3{-40, 20, 10}, Dir: mgl32.Vec3{0, 0, -1}}
	hit, ok := p.Intersect(ray)
	if !ok {
		t.Fatal("expected hit at the top-left corner")
	}
	if hit.UV.X() != 0 || hit.UV.Y() != 0 {
		t.Errorf("expected uv (0,0) at top-left, got %v", hit.UV)
	}
	x, y := p.PixelOf(mgl32.Vec2{0.5, 0.25})
	if x != 20 || y != 5 {
		t.Errorf("expected pixel (20,5), got (%f,%f)", x, y)
	}

	if _, ok := p.Intersect(Ray{Origin: mgl32.Vec3{0, 0, 10}, Dir: mgl32.Vec3{1, 0, 0}}); ok {
		t.Error("parallel ray should miss")
	}
	if _, ok := p.Intersect(Ray{Origin: mgl32.Vec3{0, 0, 10}, Dir: mgl32.Vec3{0, 0, 1}}); ok {
		t.Error("ray pointing away should miss")
	}
}
