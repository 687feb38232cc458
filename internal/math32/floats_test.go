package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{
			name:     "basic",
			a:        []float32{1, 2, 3},
			b:        []float32{4, 5, 6},
			expected: 32,
		},
		{
			name:     "with zeros",
			a:        []float32{0, 2, 0},
			b:        []float32{4, 5, 6},
			expected: 10,
		},
		{
			name:     "negative values",
			a:        []float32{-1, 2},
			b:        []float32{3, -4},
			expected: -11,
		},
		{
			name:     "empty",
			a:        nil,
			b:        nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dot(tt.a, tt.b))
		})
	}
}

func TestDotAt(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{5, 6, 7, 8}

	assert.Equal(t, float32(5+32), DotAt([]int{0, 3}, a, b))
	assert.Equal(t, float32(0), DotAt(nil, a, b))
	assert.Equal(t, Dot(a, b), DotAt([]int{0, 1, 2, 3}, a, b))
}

func TestGatedDot(t *testing.T) {
	q := []float32{1, 2, 3}
	v := []float32{4, 5, 6}

	tests := []struct {
		name     string
		qArg     []int32
		vArg     []int32
		expected float32
	}{
		{
			name:     "all gates open",
			qArg:     []int32{7, 7, 7},
			vArg:     []int32{7, 7, 7},
			expected: 32,
		},
		{
			name:     "all gates closed",
			qArg:     []int32{1, 1, 1},
			vArg:     []int32{2, 2, 2},
			expected: 0,
		},
		{
			name:     "middle dimension gated out",
			qArg:     []int32{1, 1, 1},
			vArg:     []int32{1, 2, 1},
			expected: 4 + 18,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GatedDot(q, tt.qArg, v, tt.vArg))
		})
	}
}

func TestGatedDotAt(t *testing.T) {
	q := []float32{1, 2, 3}
	qArg := []int32{1, 1, 1}
	v := []float32{4, 5, 6}
	vArg := []int32{1, 2, 1}

	// Dimension 1 is both excluded from dims and gated out; only dim 2 counts.
	assert.Equal(t, float32(18), GatedDotAt([]int{1, 2}, q, qArg, v, vArg))
	assert.Equal(t, GatedDot(q, qArg, v, vArg), GatedDotAt([]int{0, 1, 2}, q, qArg, v, vArg))
}

func TestSquaredL2(t *testing.T) {
	assert.Equal(t, float32(0), SquaredL2([]float32{1, 2}, []float32{1, 2}))
	assert.Equal(t, float32(25), SquaredL2([]float32{0, 3}, []float32{4, 0}))
}

func TestScaleInPlace(t *testing.T) {
	a := []float32{1, -2, 0.5}
	ScaleInPlace(a, 2)
	assert.Equal(t, []float32{2, -4, 1}, a)
}
