// Package embedding provides the text-embedding capability and the width
// normalization that fits native model vectors to the storage layer's fixed
// vector width.
package embedding

import (
	"context"
	"math"
)

// Embedder turns texts into comparable fixed-width vectors. Implementations
// must be deterministic: the same input always yields the same vector.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Width() int
}

// Normalize L2-normalizes vec, then pads with zeros or truncates to width.
// The operation is deterministic and idempotent at a fixed width: normalizing
// an already-normalized fixed-width vector returns it unchanged. Truncation is
// lossy; callers log a warning when it occurs.
func Normalize(vec []float32, width int) []float32 {
	out := make([]float32, width)
	n := min(len(vec), width)

	// truncate before normalizing so the stored vector is unit length and
	// re-normalization is a no-op
	var sum float64
	for _, v := range vec[:n] {
		sum += float64(v) * float64(v)
	}

	norm := math.Sqrt(sum)
	if sum == 0 || math.Abs(norm-1) < 1e-6 {
		copy(out, vec[:n])
		return out
	}

	for i := range n {
		out[i] = float32(float64(vec[i]) / norm)
	}
	return out
}
