package input

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pointfield/interaction"
)

type orthoCaster struct{}

func (orthoCaster) Ray(ndc mgl32.Vec2) interaction.Ray {
	return interaction.Ray{
		Origin: mgl32.Vec3{ndc.X() * 100, ndc.Y() * 100, 50},
		Dir:    mgl32.Vec3{0, 0, -1},
	}
}

type recorder struct {
	events []string
}

func (l *recorder) handlers(leave bool) interaction.PointerHandlers {
	h := interaction.PointerHandlers{
		Down: func(x, y float32) { l.events = append(l.events, "down") },
		Move: func(x, y float32) { l.events = append(l.events, "move") },
		Up:   func() { l.events = append(l.events, "up") },
	}
	if leave {
		h.Leave = func() { l.events = append(l.events, "leave") }
	}
	return h
}

func (l *recorder) String() string {
	return strings.Join(l.events, ",")
}

func TestMouseFeed(t *testing.T) {
	s := NewSurface(100, 100)
	l := &recorder{}
	s.Bind(interaction.DeviceMouse, l.handlers(true))

	s.Feed(Sample{MouseX: 10, MouseY: 10, OnScreen: true})
	s.Feed(Sample{MouseX: 10, MouseY: 10, OnScreen: true})
	s.Feed(Sample{MouseX: 12, MouseY: 10, OnScreen: true, ButtonDown: true})
	s.Feed(Sample{MouseX: 12, MouseY: 10, OnScreen: true, ButtonDown: true})
	s.Feed(Sample{MouseX: 12, MouseY: 10, OnScreen: true})
	s.Feed(Sample{OnScreen: false})
	s.Feed(Sample{OnScreen: false})

	want := "move,move,down,up,leave"
	if l.String() != want {
		t.Errorf("expected %s, got %s", want, l.String())
	}
}

func TestTouchFeed(t *testing.T) {
	s := NewSurface(100, 100)
	l := &recorder{}
	s.Bind(interaction.DeviceTouch, l.handlers(false))

	// Mouse data is ignored in touch mode
	s.Feed(Sample{MouseX: 50, MouseY: 50, OnScreen: true, ButtonDown: true})
	s.Feed(Sample{Touches: 1, TouchX: 5, TouchY: 5})
	s.Feed(Sample{Touches: 1, TouchX: 5, TouchY: 5})
	s.Feed(Sample{Touches: 2, TouchX: 6, TouchY: 5})
	s.Feed(Sample{Touches: 0})

	want := "down,move,up"
	if l.String() != want {
		t.Errorf("expected %s, got %s", want, l.String())
	}
}

func TestUnbind(t *testing.T) {
	s := NewSurface(100, 100)
	l := &recorder{}
	b := s.Bind(interaction.DeviceMouse, l.handlers(true))
	b.Unbind()
	s.Feed(Sample{MouseX: 1, MouseY: 1, OnScreen: true})
	if len(l.events) != 0 {
		t.Errorf("unbound surface should not dispatch, got %s", l.String())
	}

	// A stale binding must not clear a newer one
	l2 := &recorder{}
	s.Bind(interaction.DeviceMouse, l2.handlers(true))
	b.Unbind()
	if !s.Bound() {
		t.Error("stale unbind removed the current binding")
	}
}

func TestWithController(t *testing.T) {
	s := NewSurface(200, 200)
	plane := interaction.NewPlane(200, 200)
	c := interaction.New(orthoCaster{}, interaction.Options{Device: interaction.DeviceMouse})
	c.AddTarget(plane)
	c.Attach(s)

	if c.Viewport() != s.Bounds() {
		t.Errorf("controller should use surface bounds, got %v", c.Viewport())
	}

	var kinds []string
	for k := interaction.Enter; k <= interaction.Release; k++ {
		c.On(k, func(e interaction.Event) { kinds = append(kinds, e.Kind.String()) })
	}

	s.Feed(Sample{MouseX: 100, MouseY: 100, OnScreen: true})
	s.Feed(Sample{MouseX: 100, MouseY: 100, OnScreen: true, ButtonDown: true})
	s.Feed(Sample{OnScreen: false})

	got := strings.Join(kinds, ",")
	want := "enter,move,press,release,exit"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
