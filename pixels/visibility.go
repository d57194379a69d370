package pixels

// Predicate reports whether pixel i takes part in the field.
type Predicate func(i int) bool

// Visible returns a predicate that keeps pixels whose red channel is strictly
// above threshold. The predicate reads the field on every call.
func Visible(f *Field, threshold int) Predicate {
	t := clampThreshold(threshold)
	return func(i int) bool {
		return int(f.Pix[i*4]) > t
	}
}

// All returns a predicate that keeps every pixel.
func All() Predicate {
	return func(int) bool { return true }
}

// CountVisible counts pixels passing the threshold without allocating.
func CountVisible(f *Field, threshold int) int {
	t := clampThreshold(threshold)
	n := 0
	for i := 0; i < len(f.Pix); i += 4 {
		if int(f.Pix[i]) > t {
			n++
		}
	}
	return n
}

// Count evaluates pred over n indices.
func Count(pred Predicate, n int) int {
	c := 0
	for i := 0; i < n; i++ {
		if pred(i) {
			c++
		}
	}
	return c
}

func clampThreshold(t int) int {
	if t < 0 {
		return 0
	}
	if t > 255 {
		return 255
	}
	return t
}
