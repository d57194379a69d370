package instances

import "math"

// Registry lists the grid coordinates of the interactive instance set, in
// instance order. It is written once when the set is built and only read
// afterwards.
type Registry struct {
	points []Point
}

// NewRegistry captures the coordinates of every instance in set.
func NewRegistry(set *Set) *Registry {
	r := &Registry{}
	if set == nil {
		return r
	}
	r.points = make([]Point, set.Len())
	for i := range r.points {
		r.points[i] = set.Point(i)
	}
	return r
}

// Len returns the number of registered points.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.points)
}

// At returns point i.
func (r *Registry) At(i int) Point {
	return r.points[i]
}

// Points returns a copy of the registered points.
func (r *Registry) Points() []Point {
	if r == nil {
		return nil
	}
	out := make([]Point, len(r.points))
	copy(out, r.points)
	return out
}

// Match returns the indices of points strictly within radius of (px, py) on
// both axes, in registration order.
func (r *Registry) Match(px, py, radius float64) []int {
	if r == nil {
		return nil
	}
	var out []int
	for i, p := range r.points {
		if math.Abs(float64(p.X)-px) < radius && math.Abs(float64(p.Y)-py) < radius {
			out = append(out, i)
		}
	}
	return out
}
