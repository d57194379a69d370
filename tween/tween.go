// Package tween animates float32 parameters over time.
//
// Callers describe "animate P from A to B over D seconds" and advance the
// timeline once per frame; values and completion callbacks are applied from
// Update only, so everything stays on the frame loop goroutine.
package tween

// EaseFunc maps normalized progress in [0,1] to eased progress.
type EaseFunc func(t float32) float32

// Linear is the identity easing.
func Linear(t float32) float32 { return t }

// QuadIn accelerates from zero velocity.
func QuadIn(t float32) float32 { return t * t }

// QuadOut decelerates to zero velocity.
func QuadOut(t float32) float32 { return t * (2 - t) }

// QuadInOut accelerates then decelerates.
func QuadInOut(t float32) float32 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// Option configures a single tween.
type Option func(*tween)

// WithEase sets the easing curve (default Linear).
func WithEase(e EaseFunc) Option {
	return func(tw *tween) {
		if e != nil {
			tw.ease = e
		}
	}
}

// OnComplete registers fn to run once when the tween reaches its end value.
func OnComplete(fn func()) Option {
	return func(tw *tween) {
		tw.done = fn
	}
}

type tween struct {
	target   *float32
	from, to float32
	duration float32
	elapsed  float32
	ease     EaseFunc
	done     func()
}

// step advances the tween and reports whether it finished.
func (tw *tween) step(dt float32) bool {
	tw.elapsed += dt
	if tw.duration <= 0 || tw.elapsed >= tw.duration {
		*tw.target = tw.to
		return true
	}
	p := tw.ease(tw.elapsed / tw.duration)
	*tw.target = tw.from + (tw.to-tw.from)*p
	return false
}

// Timeline owns a set of running tweens.
type Timeline struct {
	tweens []*tween
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// To animates *target from its current value to `to`.
// A running tween on the same target is replaced without completing.
func (tl *Timeline) To(target *float32, to, duration float32, opts ...Option) {
	tl.FromTo(target, *target, to, duration, opts...)
}

// FromTo sets *target to `from` and animates it to `to`.
// A running tween on the same target is replaced without completing.
func (tl *Timeline) FromTo(target *float32, from, to, duration float32, opts ...Option) {
	tl.Kill(target)
	tw := &tween{
		target:   target,
		from:     from,
		to:       to,
		duration: duration,
		ease:     Linear,
	}
	for _, opt := range opts {
		opt(tw)
	}
	*target = from
	tl.tweens = append(tl.tweens, tw)
}

// Kill drops tweens driving target. Their completion callbacks never run.
func (tl *Timeline) Kill(target *float32) {
	kept := tl.tweens[:0]
	for _, tw := range tl.tweens {
		if tw.target != target {
			kept = append(kept, tw)
		}
	}
	for i := len(kept); i < len(tl.tweens); i++ {
		tl.tweens[i] = nil
	}
	tl.tweens = kept
}

// Update advances every tween by dt seconds, then runs the completion
// callbacks of tweens that finished, in start order. Callbacks may start new
// tweens; those first advance on the next Update.
func (tl *Timeline) Update(dt float32) {
	if len(tl.tweens) == 0 {
		return
	}
	running := tl.tweens
	tl.tweens = nil

	var alive []*tween
	var finished []func()
	for _, tw := range running {
		if tw.step(dt) {
			if tw.done != nil {
				finished = append(finished, tw.done)
			}
			continue
		}
		alive = append(alive, tw)
	}
	tl.tweens = alive

	for _, fn := range finished {
		fn()
	}
}

// Active returns the number of running tweens.
func (tl *Timeline) Active() int {
	return len(tl.tweens)
}
