// Package instances builds per-particle instance buffers from a pixel field.
//
// A single scan over the field feeds both the dense ambient set and the sparse
// interactive set; the selection policy is the only difference between them.
package instances

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/pointfield/pixels"
)

var (
	// ErrInvalidSelection is returned for sparse selections with a
	// non-positive target or a negative stride.
	ErrInvalidSelection = errors.New("invalid instance selection")

	// ErrFieldTooLarge is returned when pixel indices do not fit the uint32
	// instance attribute.
	ErrFieldTooLarge = errors.New("field too large for instance indices")
)

// Selection chooses which visible pixels become instances.
type Selection struct {
	TargetCount int // Max instances (sparse only)
	MinStride   int // Visible pixels skipped between picks (sparse only)
	sparse      bool
}

// Dense selects every visible pixel.
func Dense() Selection {
	return Selection{}
}

// Sparse selects at most targetCount visible pixels, skipping at least
// minStride visible candidates before each pick.
func Sparse(targetCount, minStride int) Selection {
	return Selection{TargetCount: targetCount, MinStride: minStride, sparse: true}
}

// IsSparse reports whether the selection is stride-filtered.
func (s Selection) IsSparse() bool {
	return s.sparse
}

func (s Selection) String() string {
	if !s.sparse {
		return "dense"
	}
	return fmt.Sprintf("sparse(target=%d, stride=%d)", s.TargetCount, s.MinStride)
}

// AngleSource supplies per-instance angles. *rand.Rand satisfies it.
type AngleSource interface {
	Float32() float32
}

// Point is a grid coordinate in field pixels.
type Point struct {
	X, Y int
}

// Set holds parallel per-instance arrays, ordered by scan order.
type Set struct {
	Width, Height int

	Indices []uint32  // pixel index
	Offsets []float32 // x, y, z per instance
	Angles  []float32 // [0, π)
}

// Len returns the instance count.
func (s *Set) Len() int {
	return len(s.Indices)
}

// Point returns the grid coordinate of instance i.
func (s *Set) Point(i int) Point {
	return Point{X: int(s.Offsets[i*3]), Y: int(s.Offsets[i*3+1])}
}

// Build scans width*height pixel indices in row-major order and collects the
// ones accepted by visible and sel. Output order is scan order. An empty set is
// a valid result.
func Build(width, height int, visible pixels.Predicate, sel Selection, angles AngleSource) (*Set, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("build instances: %dx%d: %w", width, height, pixels.ErrEmptyImage)
	}
	n := uint64(width) * uint64(height)
	if n > math.MaxUint32 {
		return nil, fmt.Errorf("build instances: %dx%d: %w", width, height, ErrFieldTooLarge)
	}
	if sel.sparse && (sel.TargetCount <= 0 || sel.MinStride < 0) {
		return nil, fmt.Errorf("build instances: %s: %w", sel, ErrInvalidSelection)
	}
	if visible == nil {
		visible = pixels.All()
	}

	indices := collect(int(n), visible, sel)

	set := &Set{
		Width:   width,
		Height:  height,
		Indices: indices,
		Offsets: make([]float32, len(indices)*3),
		Angles:  make([]float32, len(indices)),
	}
	for j, idx := range indices {
		i := int(idx)
		set.Offsets[j*3+0] = float32(i % width)
		set.Offsets[j*3+1] = float32(i / width)
		if angles != nil {
			set.Angles[j] = angle(angles)
		}
	}
	return set, nil
}

// collect runs the selection scan and returns the accepted pixel indices.
func collect(n int, visible pixels.Predicate, sel Selection) []uint32 {
	if !sel.sparse {
		// Count first so the buffer is allocated once at its final size
		out := make([]uint32, 0, pixels.Count(visible, n))
		for i := 0; i < n; i++ {
			if visible(i) {
				out = append(out, uint32(i))
			}
		}
		return out
	}

	out := make([]uint32, 0, sel.TargetCount)
	skipped := 0
	for i := 0; i < n && len(out) < sel.TargetCount; i++ {
		if !visible(i) {
			continue
		}
		if skipped < sel.MinStride {
			skipped++
			continue
		}
		out = append(out, uint32(i))
		skipped = 0
	}
	return out
}

// angle maps the source onto [0, π).
func angle(src AngleSource) float32 {
	a := src.Float32() * math.Pi
	if a >= math.Pi {
		a = math.Nextafter32(math.Pi, 0)
	}
	return a
}
