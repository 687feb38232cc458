// Package math32 provides float32 vector kernels used by the score package.
// All accumulation happens in 32-bit floating point; magnitudes are preserved
// (no normalization at this layer).
package math32

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

// DotAt calculates the dot product restricted to the given dimension subset.
// Every index in dims must be a valid offset into both vectors.
func DotAt(dims []int, a, b []float32) float32 {
	var ret float32
	for _, j := range dims {
		ret += a[j] * b[j]
	}

	return ret
}

// GatedDot calculates the argument-gated dot product of q and v:
// dimension j contributes q[j]*v[j] only when vArg[j] == qArg[j].
func GatedDot(q []float32, qArg []int32, v []float32, vArg []int32) float32 {
	var ret float32
	for j := range q {
		if vArg[j] == qArg[j] {
			ret += q[j] * v[j]
		}
	}

	return ret
}

// GatedDotAt calculates the argument-gated dot product restricted to the
// given dimension subset.
func GatedDotAt(dims []int, q []float32, qArg []int32, v []float32, vArg []int32) float32 {
	var ret float32
	for _, j := range dims {
		if vArg[j] == qArg[j] {
			ret += q[j] * v[j]
		}
	}

	return ret
}

// SquaredL2 calculates the squared L2 distance between two vectors.
// Used by product quantization codebook training.
func SquaredL2(a, b []float32) float32 {
	var distance float32
	for i := range a {
		distance += (a[i] - b[i]) * (a[i] - b[i])
	}

	return distance
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}
