package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// buildObjective assembles a small dense problem with every coefficient row
// summing to 1, mirroring what Fit feeds the trainer.
func buildObjective(t *testing.T, n, nAnchors, dim int, reg float64, seed uint64) *localObjective {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	x := make([][]float64, n)
	y := make([]float64, n)
	coeff := make([][]float64, n)
	for i := 0; i < n; i++ {
		x[i] = make([]float64, dim)
		for j := range x[i] {
			x[i][j] = rng.Float64()*4 - 2
		}
		if rng.Float64() < 0.5 {
			y[i] = 1
		} else {
			y[i] = -1
		}
		coeff[i] = make([]float64, nAnchors)
		sum := 0.0
		for a := range coeff[i] {
			coeff[i][a] = rng.Float64()
			sum += coeff[i][a]
		}
		for a := range coeff[i] {
			coeff[i][a] /= sum
		}
	}
	return &localObjective{x: x, y: y, coeff: coeff, reg: reg, nAnchors: nAnchors, dim: dim}
}

// TestLocalObjective_GradientMatchesFiniteDifferences verifies the
// closed-form gradient against central differences at a random point.
func TestLocalObjective_GradientMatchesFiniteDifferences(t *testing.T) {
	obj := buildObjective(t, 12, 3, 4, 0.5, 3)
	rng := rand.New(rand.NewSource(4))

	w := make([]float64, obj.nAnchors*obj.dim)
	for i := range w {
		w[i] = rng.Float64()*2 - 1
	}

	grad := make([]float64, len(w))
	obj.grad(grad, w)

	const h = 1e-6
	for i := range w {
		orig := w[i]
		w[i] = orig + h
		up := obj.loss(w)
		w[i] = orig - h
		down := obj.loss(w)
		w[i] = orig

		numeric := (up - down) / (2 * h)
		assert.InDelta(t, numeric, grad[i], 1e-4, "gradient component %d", i)
	}
}

// TestLocalObjective_FlatRegion checks that samples with non-positive margin
// contribute nothing to loss or gradient.
func TestLocalObjective_FlatRegion(t *testing.T) {
	// One sample, one anchor, weights chosen so y*z = 2 > 1.
	obj := &localObjective{
		x:        [][]float64{{2, 0}},
		y:        []float64{1},
		coeff:    [][]float64{{1}},
		reg:      0,
		nAnchors: 1,
		dim:      2,
	}
	w := []float64{1, 5} // z = 2

	assert.Equal(t, 0.0, obj.loss(w))

	grad := make([]float64, 2)
	obj.grad(grad, w)
	assert.Equal(t, []float64{0, 0}, grad)
}

func TestLocalClassifierTrainer_Shapes(t *testing.T) {
	obj := buildObjective(t, 20, 4, 3, 0.1, 5)
	trainer := &LocalClassifierTrainer{
		Reg: 0.1, MaxIter: 50, Tol: 1e-4, FitBias: true, BiasScale: 1.0,
	}

	weights, biases, err := trainer.Train(obj.x, obj.y, obj.coeff, 4, rand.New(rand.NewSource(6)))
	require.NoError(t, err)
	require.Len(t, weights, 4)
	require.Len(t, biases, 4)
	for _, w := range weights {
		assert.Len(t, w, 3, "bias column must be split off the weight blocks")
	}
}

func TestLocalClassifierTrainer_NoBias(t *testing.T) {
	obj := buildObjective(t, 20, 2, 3, 0.1, 7)
	trainer := &LocalClassifierTrainer{Reg: 0.1, MaxIter: 50, Tol: 1e-4}

	weights, biases, err := trainer.Train(obj.x, obj.y, obj.coeff, 2, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	require.Len(t, weights, 2)
	for _, b := range biases {
		assert.Equal(t, 0.0, b)
	}
}

func TestAppendBiasColumn(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}}
	out := appendBiasColumn(X, 0.5)

	assert.Equal(t, [][]float64{{1, 2, 0.5}, {3, 4, 0.5}}, out)
	assert.Len(t, X[0], 2, "input rows must not be mutated")
}
