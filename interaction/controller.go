// Package interaction turns raw pointer input into semantic hover, press and
// point-activation events by casting rays against hit-test targets.
package interaction

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pointfield/instances"
)

// DefaultProximityRadius is the activation radius in field pixels.
const DefaultProximityRadius = 2.0

// Device selects which family of pointer events a surface delivers.
type Device uint8

const (
	DeviceAuto Device = iota // touch if the surface supports it, mouse otherwise
	DeviceMouse
	DeviceTouch
)

// ParseDevice maps a config string to a Device. Unknown values mean auto.
func ParseDevice(s string) Device {
	switch s {
	case "mouse":
		return DeviceMouse
	case "touch":
		return DeviceTouch
	}
	return DeviceAuto
}

func (d Device) String() string {
	switch d {
	case DeviceMouse:
		return "mouse"
	case DeviceTouch:
		return "touch"
	}
	return "auto"
}

// PointerHandlers receive device coordinates from a Surface.
type PointerHandlers struct {
	Down  func(x, y float32)
	Move  func(x, y float32)
	Up    func()
	Leave func()
}

// Binding undoes Surface.Bind.
type Binding interface {
	Unbind()
}

// Surface is the platform side of pointer input.
type Surface interface {
	// TouchCapable reports whether the device delivers touch events.
	TouchCapable() bool
	// Bounds is the full window rectangle.
	Bounds() Rect
	// Bind delivers events of one device family only (never DeviceAuto).
	Bind(device Device, h PointerHandlers) Binding
}

// Caster builds a world ray through a point in normalized device coordinates.
type Caster interface {
	Ray(ndc mgl32.Vec2) Ray
}

// Options configures a Controller.
type Options struct {
	Device          Device
	ProximityRadius float64
	Logger          *slog.Logger
}

// Controller tracks hover and press state for one pointer.
//
// Hover is driven only by ray intersection and is independent of press state.
// All methods must be called from the frame loop goroutine.
type Controller struct {
	caster Caster
	opts   Options
	logger *slog.Logger
	reg    registry

	targets []Target

	surface Surface
	binding Binding
	device  Device

	rect         Rect
	explicitRect bool

	hovered  Target
	selected Target
	hit      *Hit
	down     bool

	points       *instances.Registry
	pointsWidth  int
	pointsHeight int
}

// New creates a detached controller.
func New(caster Caster, opts Options) *Controller {
	if opts.ProximityRadius <= 0 {
		opts.ProximityRadius = DefaultProximityRadius
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		caster: caster,
		opts:   opts,
		logger: logger,
	}
}

// On registers fn for events of kind. Listeners run in registration order.
func (c *Controller) On(kind Kind, fn func(Event)) Handle {
	return c.reg.on(kind, fn)
}

// OnActivate registers fn for point-activation signals.
func (c *Controller) OnActivate(fn func(Activation)) Handle {
	return c.reg.onActivate(fn)
}

// AddTarget registers a hit-test target. Adding a target twice is a no-op.
func (c *Controller) AddTarget(t Target) {
	for _, existing := range c.targets {
		if existing == t {
			return
		}
	}
	c.targets = append(c.targets, t)
}

// RemoveTarget unregisters t. If t was hovered or selected, that state is
// dropped without emitting events.
func (c *Controller) RemoveTarget(t Target) {
	for i, existing := range c.targets {
		if existing == t {
			c.targets = append(c.targets[:i], c.targets[i+1:]...)
			break
		}
	}
	if c.hovered == t {
		c.hovered = nil
		c.hit = nil
	}
	if c.selected == t {
		c.selected = nil
	}
}

// Targets returns the number of registered targets.
func (c *Controller) Targets() int {
	return len(c.targets)
}

// SetInteractivePoints shares the interactive point registry of a width×height
// field. Passing nil clears it.
func (c *Controller) SetInteractivePoints(points *instances.Registry, width, height int) {
	c.points = points
	c.pointsWidth = width
	c.pointsHeight = height
}

// Attach binds pointer listeners on s. Only one device family is bound. If
// already attached, the previous binding is removed first.
func (c *Controller) Attach(s Surface) {
	c.Detach()

	device := c.opts.Device
	if device == DeviceAuto {
		device = DeviceMouse
		if s.TouchCapable() {
			device = DeviceTouch
		}
	}

	h := PointerHandlers{
		Down: c.PointerDown,
		Move: c.PointerMove,
		Up:   c.PointerUp,
	}
	if device == DeviceMouse {
		h.Leave = c.PointerLeave
	}

	c.surface = s
	c.device = device
	c.binding = s.Bind(device, h)
	c.logger.Debug("interaction attached", "device", device.String())
}

// Detach removes pointer listeners. Safe to call when not attached.
func (c *Controller) Detach() {
	if c.binding == nil {
		return
	}
	c.binding.Unbind()
	c.binding = nil
	c.down = false
	c.logger.Debug("interaction detached", "device", c.device.String())
}

// Attached reports whether listeners are bound.
func (c *Controller) Attached() bool {
	return c.binding != nil
}

// Resize sets an explicit viewport rectangle.
func (c *Controller) Resize(r Rect) {
	c.rect = r
	c.explicitRect = true
}

// ResetRect drops the explicit rectangle so the surface bounds are used.
func (c *Controller) ResetRect() {
	c.rect = Rect{}
	c.explicitRect = false
}

// Viewport returns the rectangle used for NDC conversion.
func (c *Controller) Viewport() Rect {
	if c.explicitRect || c.surface == nil {
		return c.rect
	}
	return c.surface.Bounds()
}

// Hovered returns the currently hovered target, or nil.
func (c *Controller) Hovered() Target {
	return c.hovered
}

// Selected returns the target hovered at the last press, or nil.
func (c *Controller) Selected() Target {
	return c.selected
}

// IsDown reports whether the pointer is pressed.
func (c *Controller) IsDown() bool {
	return c.down
}

// PointerMove handles a pointer position in device coordinates.
func (c *Controller) PointerMove(x, y float32) {
	hit, ok := c.cast(x, y)
	if !ok {
		c.hit = nil
		if c.hovered != nil {
			prev := c.hovered
			c.hovered = nil
			c.reg.emit(Event{Kind: Exit, Target: prev})
		}
		return
	}

	c.hit = &hit
	if hit.Target != c.hovered {
		if c.hovered != nil {
			c.reg.emit(Event{Kind: Exit, Target: c.hovered})
		}
		c.hovered = hit.Target
		c.reg.emit(Event{Kind: Enter, Target: hit.Target, Hit: c.hitCopy()})
		return
	}
	c.reg.emit(Event{Kind: Move, Target: hit.Target, Hit: c.hitCopy()})
}

// PointerDown handles a press at device coordinates.
func (c *Controller) PointerDown(x, y float32) {
	c.down = true
	c.PointerMove(x, y)

	prev := c.selected
	c.reg.emit(Event{Kind: Press, Target: c.hovered, Previous: prev, Hit: c.hitCopy()})
	c.selected = c.hovered

	if c.hit != nil {
		c.activate(*c.hit)
	}
}

// PointerUp handles a release.
func (c *Controller) PointerUp() {
	c.down = false
	c.reg.emit(Event{Kind: Release, Target: c.hovered})
}

// PointerLeave handles the pointer leaving the surface: an implicit release
// followed by an implicit exit.
func (c *Controller) PointerLeave() {
	c.PointerUp()
	if c.hovered != nil {
		prev := c.hovered
		c.hovered = nil
		c.hit = nil
		c.reg.emit(Event{Kind: Exit, Target: prev})
	}
}

// cast finds the nearest hit under device point (x, y).
func (c *Controller) cast(x, y float32) (Hit, bool) {
	if len(c.targets) == 0 || c.caster == nil {
		return Hit{}, false
	}
	rect := c.Viewport()
	if rect.Empty() {
		return Hit{}, false
	}

	ray := c.caster.Ray(rect.NDC(x, y))

	var best Hit
	found := false
	for _, t := range c.targets {
		h, ok := t.Intersect(ray)
		if !ok {
			continue
		}
		if !found || h.Distance < best.Distance {
			best = h
			found = true
		}
	}
	return best, found
}

// activate signals every interactive point near the hit.
func (c *Controller) activate(hit Hit) {
	if c.points.Len() == 0 {
		return
	}
	px := float64(hit.UV.X()) * float64(c.pointsWidth)
	py := float64(hit.UV.Y()) * float64(c.pointsHeight)
	for _, idx := range c.points.Match(px, py, c.opts.ProximityRadius) {
		c.logger.Debug("interactive point activated", "index", idx, "x", px, "y", py)
		c.reg.emitActivation(Activation{Index: idx, Point: c.points.At(idx), Hit: hit})
	}
}

func (c *Controller) hitCopy() *Hit {
	if c.hit == nil {
		return nil
	}
	h := *c.hit
	return &h
}
