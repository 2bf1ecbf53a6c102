package domain

import (
	"fmt"
	"math"
)

// CosineDistance returns 1 - cos(a, b), clamped to [0, 2].
// A zero vector is at distance 1 from everything.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1.0, nil
	}

	distance := 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	switch {
	case distance < 0:
		distance = 0
	case distance > 2:
		distance = 2
	}
	return distance, nil
}
