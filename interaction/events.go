package interaction

import "github.com/pthm-cable/pointfield/instances"

// Kind identifies an interaction event.
type Kind uint8

const (
	Enter Kind = iota
	Move
	Exit
	Press
	Release
	numKinds
)

func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Move:
		return "move"
	case Exit:
		return "exit"
	case Press:
		return "press"
	case Release:
		return "release"
	}
	return "unknown"
}

// Event is delivered synchronously to listeners and not retained.
//
// Target is the hovered target (nil when nothing is hovered). Previous is the
// previously selected target for Press, and nil otherwise. Hit is set when the
// pointer ray currently hits Target.
type Event struct {
	Kind     Kind
	Target   Target
	Previous Target
	Hit      *Hit
}

// Activation reports a press that landed near an interactive point.
type Activation struct {
	Index int
	Point instances.Point
	Hit   Hit
}

type eventHandler struct {
	id uint32
	fn func(Event)
}

type activationHandler struct {
	id uint32
	fn func(Activation)
}

// registry keeps listeners per kind, in registration order.
type registry struct {
	events      [numKinds][]eventHandler
	activations []activationHandler
	nextID      uint32
}

// Handle removes a registered listener.
type Handle struct {
	id         uint32
	reg        *registry
	kind       Kind
	activation bool
}

// Remove unregisters the listener. Removing twice is a no-op.
func (h Handle) Remove() {
	if h.reg == nil {
		return
	}
	if h.activation {
		h.reg.activations = removeActivation(h.reg.activations, h.id)
		return
	}
	h.reg.events[h.kind] = removeEvent(h.reg.events[h.kind], h.id)
}

func (r *registry) on(kind Kind, fn func(Event)) Handle {
	r.nextID++
	r.events[kind] = append(r.events[kind], eventHandler{id: r.nextID, fn: fn})
	return Handle{id: r.nextID, reg: r, kind: kind}
}

func (r *registry) onActivate(fn func(Activation)) Handle {
	r.nextID++
	r.activations = append(r.activations, activationHandler{id: r.nextID, fn: fn})
	return Handle{id: r.nextID, reg: r, activation: true}
}

func (r *registry) emit(e Event) {
	hs := r.events[e.Kind]
	// Snapshot so listeners may remove themselves while being called
	snapshot := make([]eventHandler, len(hs))
	copy(snapshot, hs)
	for _, h := range snapshot {
		h.fn(e)
	}
}

func (r *registry) emitActivation(a Activation) {
	snapshot := make([]activationHandler, len(r.activations))
	copy(snapshot, r.activations)
	for _, h := range snapshot {
		h.fn(a)
	}
}

func removeEvent(s []eventHandler, id uint32) []eventHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = eventHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeActivation(s []activationHandler, id uint32) []activationHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = activationHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}
