// Package audio plays a short tone per point activation.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// scale holds pentatonic semitone offsets from the base frequency.
var scale = []float64{0, 2, 4, 7, 9, 12, 14, 16, 19, 21, 24}

// Options configures Cues.
type Options struct {
	Enabled  bool
	Volume   float64 // linear gain in [0,1]
	Voices   int     // activation index is taken modulo Voices
	BaseFreq float64
	Duration time.Duration
	Logger   *slog.Logger
}

// DefaultOptions mirrors config/defaults.yaml.
func DefaultOptions() Options {
	return Options{
		Enabled:  true,
		Volume:   0.2,
		Voices:   6,
		BaseFreq: 261.63,
		Duration: 400 * time.Millisecond,
	}
}

// Cues mixes one-shot tones into the speaker. Without a working audio
// device it stays silent and Play is a no-op.
type Cues struct {
	mu          sync.Mutex
	opts        Options
	logger      *slog.Logger
	mixer       *beep.Mixer
	initialized bool
	played      int
}

// New creates silent cues. Call Init to open the speaker.
func New(opts Options) *Cues {
	if opts.Voices <= 0 {
		opts.Voices = 1
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultOptions().Duration
	}
	if opts.BaseFreq <= 0 {
		opts.BaseFreq = DefaultOptions().BaseFreq
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cues{
		opts:   opts,
		logger: logger,
		mixer:  &beep.Mixer{},
	}
}

// Init opens the speaker. On error the cues stay silent.
func (c *Cues) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized || !c.opts.Enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Enabled reports whether Play produces sound.
func (c *Cues) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Voice maps an activation index to a voice.
func (c *Cues) Voice(index int) int {
	v := index % c.opts.Voices
	if v < 0 {
		v += c.opts.Voices
	}
	return v
}

// Frequency returns the pitch of voice v in Hz.
func (c *Cues) Frequency(v int) float64 {
	semis := scale[v%len(scale)] + 24*float64(v/len(scale))
	return c.opts.BaseFreq * math.Pow(2, semis/12)
}

// Streamer builds the tone for an activation index.
func (c *Cues) Streamer(index int) (beep.Streamer, error) {
	tone, err := generators.SineTone(sampleRate, c.Frequency(c.Voice(index)))
	if err != nil {
		return nil, fmt.Errorf("building tone: %w", err)
	}
	n := sampleRate.N(c.opts.Duration)
	shaped := &fade{streamer: beep.Take(n, tone), total: n}
	return gain(shaped, c.opts.Volume), nil
}

// Play starts the tone for an activation index and returns immediately.
func (c *Cues) Play(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	s, err := c.Streamer(index)
	if err != nil {
		c.logger.Warn("audio cue failed", "index", index, "error", err)
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
	c.played++
}

// Played returns the number of cues started.
func (c *Cues) Played() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played
}

// Close stops every playing cue.
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// fade ramps a stream down linearly to silence at its end.
type fade struct {
	streamer beep.Streamer
	position int
	total    int
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1 - float64(f.position)/float64(f.total)
		if vol < 0 {
			vol = 0
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }

// gain applies linear volume; zero or less is silent.
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
