package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineDistance(t *testing.T) {
	d, err := CosineDistance([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-9)

	d, err = CosineDistance([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-9)

	d, err = CosineDistance([]float32{0, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-9)

	_, err = CosineDistance([]float32{1}, []float32{1, 0})
	assert.Error(t, err)
}

