package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/aquilax/go-perlin"

	"github.com/pthm-cable/pointfield/field"
	"github.com/pthm-cable/pointfield/pixels"
)

const builtinPrefix = "builtin:"

// Builtin pattern dimensions.
const (
	patternW = 160
	patternH = 100
)

// Playlist is the ordered set of images the viewer cycles through.
type Playlist struct {
	sources []field.Source
	index   int
}

// NewPlaylist resolves each entry to a source. Entries prefixed with
// "builtin:" name a generated pattern; everything else is a file path.
func NewPlaylist(entries []string) (*Playlist, error) {
	p := &Playlist{index: -1}
	for _, e := range entries {
		src, err := ResolveSource(e)
		if err != nil {
			return nil, err
		}
		p.sources = append(p.sources, src)
	}
	return p, nil
}

// Len returns the number of entries.
func (p *Playlist) Len() int {
	return len(p.sources)
}

// Index returns the current position, or -1 before the first Goto/Next.
func (p *Playlist) Index() int {
	return p.index
}

// Goto moves to entry i and returns its source.
func (p *Playlist) Goto(i int) (field.Source, error) {
	if i < 0 || i >= len(p.sources) {
		return nil, fmt.Errorf("sample %d out of range [0,%d)", i, len(p.sources))
	}
	p.index = i
	return p.sources[i], nil
}

// Next moves to the following entry, wrapping after the last.
func (p *Playlist) Next() (field.Source, error) {
	if len(p.sources) == 0 {
		return nil, fmt.Errorf("playlist is empty")
	}
	return p.Goto((p.index + 1) % len(p.sources))
}

// ResolveSource maps a playlist entry to a field source.
func ResolveSource(entry string) (field.Source, error) {
	name, ok := strings.CutPrefix(entry, builtinPrefix)
	if !ok {
		return field.FileSource(entry), nil
	}
	gen, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin pattern %q", name)
	}
	return field.FieldSource{Label: entry, Pixels: generate(patternW, patternH, gen)}, nil
}

// cloudNoise sums four octaves, each at half the amplitude and twice the
// frequency of the last.
var cloudNoise = perlin.NewPerlin(2, 2, 4, 1)

// patterns return a red intensity in [0,1] for normalized coordinates
// centred on the image, y down, aspect-corrected on x.
var patterns = map[string]func(x, y float64) float64{
	"rings": func(x, y float64) float64 {
		r := math.Hypot(x, y)
		if r > 1 {
			return 0
		}
		return 0.5 + 0.5*math.Cos(r*6*math.Pi)
	},
	"bars": func(x, y float64) float64 {
		if math.Abs(y) > 0.7 {
			return 0
		}
		return math.Max(0, math.Sin(x*5*math.Pi))
	},
	"clouds": func(x, y float64) float64 {
		v := cloudNoise.Noise2D(x*2.5+10, y*2.5+10)*0.85 + 0.5
		return v * math.Max(0, 1-math.Hypot(x, y)/1.6)
	},
	"disc": func(x, y float64) float64 {
		r := math.Hypot(x, y)
		if r > 0.9 {
			return 0
		}
		return 1 - r*r
	},
}

func generate(w, h int, fn func(x, y float64) float64) *pixels.Field {
	f := &pixels.Field{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
	aspect := float64(w) / float64(h)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			x := ((float64(px)+0.5)/float64(w)*2 - 1) * aspect
			y := (float64(py)+0.5)/float64(h)*2 - 1
			v := math.Max(0, math.Min(1, fn(x, y)))
			i := (py*w + px) * 4
			f.Pix[i] = uint8(v * 255)
			f.Pix[i+1] = uint8(v * 160)
			f.Pix[i+2] = uint8(v * 96)
			f.Pix[i+3] = 255
		}
	}
	return f
}
