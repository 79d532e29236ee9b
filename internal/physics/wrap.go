package physics

import "math"

// past this many spans the loop is replaced by an exact math.Mod
const wrapLoopLimit = 64

// Wrap folds v onto [0, span] by repeated correction: add span while v < 0,
// subtract it while v > span. A value equal to span is left in place.
func Wrap(v, span float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if math.Abs(v) > wrapLoopLimit*span {
		v = math.Mod(v, span)
	}
	for v < 0 {
		v += span
	}
	for v > span {
		v -= span
	}
	return v
}

// MinImage is the shortest distance along one axis of a torus between two
// coordinates d apart. A non-positive span leaves |d| unfolded.
func MinImage(d, span float64) float64 {
	d = math.Abs(d)
	if span > 0 && d > span/2 {
		d = span - d
	}
	return d
}
