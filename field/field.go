// Package field orchestrates one displayed image: sampling, instance sets,
// the shared touch texture, interaction wiring and animated transitions.
package field

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pointfield/instances"
	"github.com/pthm-cable/pointfield/interaction"
	"github.com/pthm-cable/pointfield/pixels"
	"github.com/pthm-cable/pointfield/scene"
	"github.com/pthm-cable/pointfield/touch"
	"github.com/pthm-cable/pointfield/tween"
)

var (
	// ErrTransitionInProgress is returned by Load while an Advance is running.
	ErrTransitionInProgress = errors.New("field transition in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("field controller closed")
)

// Default animation durations in seconds.
const (
	DefaultShowDuration = 1.0
	DefaultHideDuration = 0.8
	DefaultSparseTarget = 10
)

// Options configures a Controller. Device, Scene and Interaction are required.
type Options struct {
	Device      scene.Device
	Scene       *scene.Scene
	Interaction *interaction.Controller
	Surface     interaction.Surface // listeners are bound here on Show; nil skips binding

	Threshold    int
	SparseTarget int
	StrideFor    func(visible int) int // min stride for the sparse set; nil spreads evenly
	Touch        touch.Options
	ShowDuration float32
	HideDuration float32

	Angles    instances.AngleSource // nil seeds math/rand from the clock
	Spawn     func(func())          // runs a decode job; nil uses a goroutine
	OnError   func(source string, err error)
	OnInstall func(Install)
	Logger    *slog.Logger
}

// Install describes a field that just became live.
type Install struct {
	Source      string
	Advance     bool // false when installed by Load
	Width       int
	Height      int
	Primary     int
	Interactive int
	Stride      int

	Decode time.Duration
	Build  time.Duration
	Upload time.Duration
	Wait   time.Duration // request to install, including queueing and the exit animation
}

type state uint8

const (
	stateIdle state = iota
	stateDecoding
	stateHiding
)

// set is one uploaded instance set.
type set struct {
	data      *instances.Set
	instances scene.Handle
	entity    ecs.Entity
	uniforms  *scene.Uniforms
}

// live is the currently installed image.
type live struct {
	name      string
	pixels    *pixels.Field
	image     scene.Handle
	primary   set
	secondary set
	points    *instances.Registry
	plane     *interaction.Plane

	moveHandle interaction.Handle
	listening  bool
}

// prepared is a decoded and built image awaiting installation.
type prepared struct {
	name      string
	pixels    *pixels.Field
	primary   *instances.Set
	secondary *instances.Set
	stride    int

	requested time.Time
	decode    time.Duration
	build     time.Duration
}

// request is one queued Advance.
type request struct {
	src Source
	at  time.Time
}

// exit is the continuation of an in-flight exit animation. It runs exactly
// once, either when the animation completes or when a lifecycle call cuts
// the animation short.
type exit struct {
	field   *live
	destroy bool
	done    func()
}

type decodeResult struct {
	prep *prepared
	name string
	err  error
}

// Controller owns the live field and every device handle it creates.
// All methods except the decode job must be called from the frame loop.
type Controller struct {
	opts   Options
	logger *slog.Logger

	timeline *tween.Timeline
	touch    *touch.Texture
	touchTex scene.Handle
	samples  []mgl32.Vec2

	cur       *live
	installs  int
	fovHeight float32

	state   state
	queue   []request
	pending *prepared
	exit    *exit
	results chan decodeResult
	closed  bool
}

// New creates a controller with an allocated touch texture and no live field.
func New(opts Options) (*Controller, error) {
	if opts.Device == nil || opts.Scene == nil || opts.Interaction == nil {
		return nil, errors.New("field: device, scene and interaction are required")
	}
	if opts.SparseTarget <= 0 {
		opts.SparseTarget = DefaultSparseTarget
	}
	if opts.ShowDuration <= 0 {
		opts.ShowDuration = DefaultShowDuration
	}
	if opts.HideDuration <= 0 {
		opts.HideDuration = DefaultHideDuration
	}
	if opts.Angles == nil {
		opts.Angles = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Spawn == nil {
		opts.Spawn = func(job func()) { go job() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tex := touch.New(opts.Touch)
	handle, err := opts.Device.CreateTouchTexture(tex.Size())
	if err != nil {
		return nil, fmt.Errorf("creating touch texture: %w", err)
	}

	return &Controller{
		opts:     opts,
		logger:   logger,
		timeline: tween.NewTimeline(),
		touch:    tex,
		touchTex: handle,
		results:  make(chan decodeResult, 1),
	}, nil
}

// Live reports whether a field is installed.
func (c *Controller) Live() bool {
	return c.cur != nil
}

// Current returns the name of the installed source, or "".
func (c *Controller) Current() string {
	if c.cur == nil {
		return ""
	}
	return c.cur.name
}

// Installs returns how many fields have been installed so far.
func (c *Controller) Installs() int {
	return c.installs
}

// Transitioning reports whether an Advance is decoding or hiding.
func (c *Controller) Transitioning() bool {
	return c.state != stateIdle
}

// Queued returns the number of Advance requests waiting to start.
func (c *Controller) Queued() int {
	return len(c.queue)
}

// Counts returns the primary and secondary instance counts of the live field.
func (c *Controller) Counts() (primary, secondary int) {
	if c.cur == nil {
		return 0, 0
	}
	return c.cur.primary.data.Len(), c.cur.secondary.data.Len()
}

// Size returns the pixel dimensions of the live field.
func (c *Controller) Size() (width, height int) {
	if c.cur == nil {
		return 0, 0
	}
	return c.cur.pixels.Width, c.cur.pixels.Height
}

// Points returns the interactive point registry of the live field.
func (c *Controller) Points() *instances.Registry {
	if c.cur == nil {
		return nil
	}
	return c.cur.points
}

// Uniforms returns the uniform blocks of the live field.
func (c *Controller) Uniforms() (primary, secondary *scene.Uniforms) {
	if c.cur == nil {
		return nil, nil
	}
	return c.cur.primary.uniforms, c.cur.secondary.uniforms
}

// Touch returns the displacement texture.
func (c *Controller) Touch() *touch.Texture {
	return c.touch
}

// Load decodes, builds and installs src synchronously, replacing the live
// field without an exit animation. On error the live field is untouched.
func (c *Controller) Load(src Source) error {
	if c.closed {
		return ErrClosed
	}
	if c.Transitioning() {
		return ErrTransitionInProgress
	}
	p, err := c.prepare(src, time.Now())
	if err != nil {
		return err
	}
	start := time.Now()
	next, err := c.upload(p)
	if err != nil {
		return err
	}
	uploaded := time.Since(start)
	c.Dispose()
	c.install(next)
	c.Show(c.opts.ShowDuration)
	c.report(p, uploaded, false)
	return nil
}

// Advance queues src. Requests run strictly in order: each decodes in the
// background, then the live field (if any) animates out and is disposed
// before src is installed and animated in. A decode failure leaves the
// live field in place and moves on to the next request.
func (c *Controller) Advance(src Source) error {
	if c.closed {
		return ErrClosed
	}
	c.queue = append(c.queue, request{src: src, at: time.Now()})
	if !c.Transitioning() {
		c.startNext()
	}
	return nil
}

func (c *Controller) startNext() {
	if len(c.queue) == 0 {
		c.state = stateIdle
		return
	}
	req := c.queue[0]
	c.queue[0] = request{}
	c.queue = c.queue[1:]
	src := req.src
	c.state = stateDecoding

	c.logger.Debug("field decode started", "source", src.Name(), "queued", len(c.queue))
	results := c.results
	c.opts.Spawn(func() {
		p, err := c.prepare(src, req.at)
		results <- decodeResult{prep: p, name: src.Name(), err: err}
	})
}

// prepare decodes and builds both instance sets. It touches no controller
// state besides the angle source, which only one job uses at a time.
func (c *Controller) prepare(src Source, requested time.Time) (*prepared, error) {
	start := time.Now()
	f, err := src.Decode()
	if err != nil {
		var de *pixels.DecodeError
		if !errors.As(err, &de) {
			err = &pixels.DecodeError{Source: src.Name(), Err: err}
		}
		return nil, err
	}

	decoded := time.Now()

	visible := pixels.Visible(f, c.opts.Threshold)
	primary, err := instances.Build(f.Width, f.Height, visible, instances.Dense(), c.opts.Angles)
	if err != nil {
		return nil, fmt.Errorf("building primary set for %s: %w", src.Name(), err)
	}

	stride := c.stride(primary.Len())
	secondary, err := instances.Build(f.Width, f.Height, visible,
		instances.Sparse(c.opts.SparseTarget, stride), c.opts.Angles)
	if err != nil {
		return nil, fmt.Errorf("building interactive set for %s: %w", src.Name(), err)
	}

	return &prepared{
		name:      src.Name(),
		pixels:    f,
		primary:   primary,
		secondary: secondary,
		stride:    stride,
		requested: requested,
		decode:    decoded.Sub(start),
		build:     time.Since(decoded),
	}, nil
}

func (c *Controller) stride(visible int) int {
	if c.opts.StrideFor != nil {
		if s := c.opts.StrideFor(visible); s >= 0 {
			return s
		}
		return 0
	}
	if visible <= c.opts.SparseTarget {
		return 0
	}
	return visible/c.opts.SparseTarget - 1
}

// drain handles at most one finished decode job.
func (c *Controller) drain() {
	select {
	case res := <-c.results:
		c.finishDecode(res)
	default:
	}
}

func (c *Controller) finishDecode(res decodeResult) {
	if c.closed {
		return
	}
	if res.err != nil {
		c.fail(res.name, res.err)
		c.startNext()
		return
	}

	if c.cur == nil {
		c.installPrepared(res.prep)
		c.startNext()
		return
	}

	c.state = stateHiding
	c.pending = res.prep
	c.Hide(true, c.opts.HideDuration, func() {
		p := c.pending
		c.pending = nil
		c.installPrepared(p)
		c.startNext()
	})
}

func (c *Controller) installPrepared(p *prepared) {
	if p == nil || c.closed {
		return
	}
	start := time.Now()
	next, err := c.upload(p)
	if err != nil {
		c.fail(p.name, err)
		return
	}
	uploaded := time.Since(start)
	c.install(next)
	c.Show(c.opts.ShowDuration)
	c.report(p, uploaded, true)
}

func (c *Controller) report(p *prepared, upload time.Duration, advance bool) {
	if c.opts.OnInstall == nil {
		return
	}
	c.opts.OnInstall(Install{
		Source:      p.name,
		Advance:     advance,
		Width:       p.pixels.Width,
		Height:      p.pixels.Height,
		Primary:     p.primary.Len(),
		Interactive: p.secondary.Len(),
		Stride:      p.stride,
		Decode:      p.decode,
		Build:       p.build,
		Upload:      upload,
		Wait:        time.Since(p.requested),
	})
}

func (c *Controller) fail(name string, err error) {
	c.logger.Warn("field load failed", "source", name, "error", err)
	if c.opts.OnError != nil {
		c.opts.OnError(name, err)
	}
}

// upload creates every device resource of p. On error nothing is left behind.
func (c *Controller) upload(p *prepared) (l *live, err error) {
	dev := c.opts.Device
	var created []scene.Handle
	defer func() {
		if err != nil {
			for _, h := range created {
				dev.Release(h)
			}
		}
	}()

	image, err := dev.CreateImageTexture(p.pixels)
	if err != nil {
		return nil, fmt.Errorf("uploading image %s: %w", p.name, err)
	}
	created = append(created, image)

	primary, err := dev.CreateInstances(p.primary)
	if err != nil {
		return nil, fmt.Errorf("uploading primary set %s: %w", p.name, err)
	}
	created = append(created, primary)

	secondary, err := dev.CreateInstances(p.secondary)
	if err != nil {
		return nil, fmt.Errorf("uploading interactive set %s: %w", p.name, err)
	}

	w, h := float32(p.pixels.Width), float32(p.pixels.Height)
	return &live{
		name:   p.name,
		pixels: p.pixels,
		image:  image,
		primary: set{
			data:      p.primary,
			instances: primary,
			uniforms:  &scene.Uniforms{Random: 1, Depth: 2, Size: 0, TextureW: w, TextureH: h},
		},
		secondary: set{
			data:      p.secondary,
			instances: secondary,
			uniforms:  &scene.Uniforms{Random: 1, Depth: 2, Size: 6, TextureW: w, TextureH: h},
		},
		points: instances.NewRegistry(p.secondary),
		plane:  interaction.NewPlane(p.pixels.Width, p.pixels.Height),
	}, nil
}

// install attaches an uploaded field to the scene and the interaction layer.
func (c *Controller) install(l *live) {
	sc := c.opts.Scene
	l.primary.entity = sc.Add(scene.Object{
		Kind:      scene.KindPrimary,
		Instances: l.primary.instances,
		Texture:   l.image,
		Touch:     c.touchTex,
		Count:     l.primary.data.Len(),
	}, scene.Material{Uniforms: l.primary.uniforms, Visible: true})
	l.secondary.entity = sc.Add(scene.Object{
		Kind:      scene.KindSecondary,
		Instances: l.secondary.instances,
		Texture:   l.image,
		Touch:     c.touchTex,
		Count:     l.secondary.data.Len(),
	}, scene.Material{Uniforms: l.secondary.uniforms, Visible: true})

	ic := c.opts.Interaction
	ic.AddTarget(l.plane)
	ic.SetInteractivePoints(l.points, l.pixels.Width, l.pixels.Height)

	c.cur = l
	c.installs++
	c.touch.Reset()
	c.applyScale()

	c.logger.Info("field installed",
		"source", l.name,
		"width", l.pixels.Width,
		"height", l.pixels.Height,
		"primary", l.primary.data.Len(),
		"interactive", l.secondary.data.Len(),
	)
}

// Show runs the entrance animation over d seconds and binds listeners.
// Show during an exit finishes that exit first; if the exit installed a new
// field, that field is already showing and Show returns.
func (c *Controller) Show(d float32) {
	prev := c.cur
	c.finishExit()
	l := c.cur
	if l == nil || l != prev {
		return
	}
	tl := c.timeline
	p, s := l.primary.uniforms, l.secondary.uniforms

	tl.FromTo(&p.Size, 0.5, 1.5, d)
	tl.To(&p.Random, 2, d)
	tl.FromTo(&p.Depth, 40, 4, d*1.5)

	tl.FromTo(&s.Size, 0.5, 6, d)
	tl.To(&s.Random, 2, d)
	tl.FromTo(&s.Depth, 40, 4, d*1.5)

	c.addListeners()
}

// Hide runs the exit animation over d seconds and unbinds listeners
// immediately. When the animation completes, the field is disposed if
// destroy is set and then done is called once. Without a live field, done
// runs immediately. An exit already in flight is finished first.
func (c *Controller) Hide(destroy bool, d float32, done func()) {
	c.finishExit()
	l := c.cur
	if l == nil {
		if done != nil {
			done()
		}
		return
	}
	c.removeListeners()

	e := &exit{field: l, destroy: destroy, done: done}
	c.exit = e

	tl := c.timeline
	p, s := l.primary.uniforms, l.secondary.uniforms

	tl.To(&p.Random, 5, d, tween.OnComplete(func() {
		if c.exit == e {
			c.finishExit()
		}
	}))
	tl.To(&p.Depth, -20, d, tween.WithEase(tween.QuadIn))
	tl.To(&p.Size, 0, d*0.8)

	tl.To(&s.Random, 5, d)
	tl.To(&s.Depth, -20, d, tween.WithEase(tween.QuadIn))
	tl.To(&s.Size, 0, d*0.8)
}

// finishExit runs the pending exit continuation, if any.
func (c *Controller) finishExit() {
	e := c.exit
	if e == nil {
		return
	}
	c.exit = nil
	if e.destroy && c.cur == e.field {
		c.dispose()
	}
	if e.done != nil {
		e.done()
	}
}

func (c *Controller) addListeners() {
	l := c.cur
	if l == nil || l.listening {
		return
	}
	ic := c.opts.Interaction
	plane := l.plane
	l.moveHandle = ic.On(interaction.Move, func(e interaction.Event) {
		if e.Target != plane || e.Hit == nil {
			return
		}
		c.samples = append(c.samples, e.Hit.UV)
	})
	if c.opts.Surface != nil {
		ic.Attach(c.opts.Surface)
	}
	l.listening = true
}

func (c *Controller) removeListeners() {
	l := c.cur
	if l == nil || !l.listening {
		return
	}
	l.moveHandle.Remove()
	c.opts.Interaction.Detach()
	c.samples = c.samples[:0]
	l.listening = false
}

// Update drains a finished decode, advances animations and the clock
// uniforms, then ages and restamps the touch texture.
func (c *Controller) Update(dt float32) {
	if c.closed {
		return
	}
	c.drain()
	c.timeline.Update(dt)

	if l := c.cur; l != nil {
		l.primary.uniforms.Time += dt
		l.secondary.uniforms.Time += dt
	}

	c.touch.Update(c.samples)
	c.samples = c.samples[:0]
	if c.touch.Dirty() {
		if err := c.opts.Device.UpdateTouchTexture(c.touchTex, c.touch.Data()); err != nil {
			c.logger.Warn("touch texture upload failed", "error", err)
		}
		c.touch.ClearDirty()
	}
}

// Resize fits the field to a view whose visible height at the field plane
// is fovHeight world units.
func (c *Controller) Resize(fovHeight float32) {
	if fovHeight <= 0 {
		return
	}
	c.fovHeight = fovHeight
	c.applyScale()
}

// Scale returns the world units per field pixel of the live field, or 0.
func (c *Controller) Scale() float32 {
	if c.cur == nil || c.fovHeight <= 0 {
		return 0
	}
	return c.fovHeight / float32(c.cur.pixels.Height)
}

func (c *Controller) applyScale() {
	l := c.cur
	scale := c.Scale()
	if l == nil || scale <= 0 {
		return
	}
	c.opts.Scene.SetScale(l.primary.entity, scale, scale)
	c.opts.Scene.SetScale(l.secondary.entity, scale, scale)
	l.plane.Scale = scale
}

// Dispose releases every resource of the live field and unbinds its
// listeners. It is a no-op without a live field. During an Advance exit the
// exit finishes at once: the outgoing field is released, the incoming field
// installs and stays live, and the queue moves on.
func (c *Controller) Dispose() {
	l := c.cur
	c.finishExit()
	if c.cur == l {
		c.dispose()
	}
}

func (c *Controller) dispose() {
	l := c.cur
	if l == nil {
		return
	}
	c.removeListeners()

	for _, u := range []*scene.Uniforms{l.primary.uniforms, l.secondary.uniforms} {
		c.timeline.Kill(&u.Size)
		c.timeline.Kill(&u.Random)
		c.timeline.Kill(&u.Depth)
	}

	ic := c.opts.Interaction
	ic.RemoveTarget(l.plane)
	ic.SetInteractivePoints(nil, 0, 0)

	c.opts.Scene.Remove(l.primary.entity)
	c.opts.Scene.Remove(l.secondary.entity)

	dev := c.opts.Device
	dev.Release(l.primary.instances)
	dev.Release(l.secondary.instances)
	dev.Release(l.image)

	c.cur = nil
	c.logger.Debug("field disposed", "source", l.name)
}

// Close disposes the live field, drops queued requests and frees the touch
// texture. The controller is unusable afterwards.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.queue = nil
	c.pending = nil
	c.exit = nil
	c.dispose()
	c.state = stateIdle
	c.opts.Device.Release(c.touchTex)
}
