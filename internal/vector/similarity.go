// Package vector provides the numeric similarity kernel for embeddings.
package vector

import "math"

// Cosine returns the cosine similarity of a and b, accumulated in a single
// pass over the data. Mismatched lengths score 0.0 rather than failing the
// caller, and a zero-magnitude vector scores 0.0 (its direction is
// undefined, so it is treated as maximally dissimilar). The result is
// clamped to [-1, 1] to absorb float rounding.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, sumA, sumB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		sumA += av * av
		sumB += bv * bv
	}
	if sumA == 0 || sumB == 0 {
		return 0
	}
	score := dot / (math.Sqrt(sumA) * math.Sqrt(sumB))
	return math.Max(-1, math.Min(1, score))
}
