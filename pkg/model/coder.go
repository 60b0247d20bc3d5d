package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LocalCoder expresses a point as an affine combination of its nearest
// anchors (local coordinate coding). The coefficients sum to 1 and are
// nonzero only at the NNeighbors anchors closest to the point, which makes
// the coding a cheap piecewise-linear feature map.
//
// Coefficients are not constrained to be non-negative; depending on the
// neighborhood geometry they can dip below zero while still summing to 1.
type LocalCoder struct {
	NNeighbors int
	Reg        float64 // data-adaptive ridge added to the local Gram diagonal
}

// Code returns the local coordinate vector of x with respect to anchors.
// The result has len(anchors) entries, at most NNeighbors of them nonzero.
//
// The solve works on the Gram matrix of the (anchor - x) difference vectors
// of the selected neighbors. A ridge of Reg/k times the Gram trace keeps the
// system regular when neighbors are linearly dependent (duplicate anchors
// included) without breaking scale invariance of the coefficients.
func (c *LocalCoder) Code(x []float64, anchors [][]float64) ([]float64, error) {
	m := len(anchors)
	if m == 0 {
		return nil, fmt.Errorf("local coding: %w", ErrEmptyData)
	}
	if c.NNeighbors < 1 || c.NNeighbors > m {
		return nil, fmt.Errorf("local coding: %d neighbors with %d anchors: %w", c.NNeighbors, m, ErrBadConfig)
	}
	if len(x) != len(anchors[0]) {
		return nil, fmt.Errorf("local coding: point has %d features, anchors have %d: %w", len(x), len(anchors[0]), ErrDimensionMismatch)
	}

	d2 := make([]float64, m)
	for k := range anchors {
		d2[k] = euclidSquared(x, anchors[k])
	}

	// Stable sort so that distance ties resolve to the lowest anchor index.
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return d2[order[a]] < d2[order[b]] })
	nbrs := order[:c.NNeighbors]

	k := len(nbrs)
	p := len(x)
	diff := mat.NewDense(k, p, nil)
	for i, a := range nbrs {
		for j := 0; j < p; j++ {
			diff.Set(i, j, anchors[a][j]-x[j])
		}
	}

	gram := mat.NewDense(k, k, nil)
	gram.Mul(diff, diff.T())

	ridge := c.Reg * mat.Trace(gram) / float64(k)
	for i := 0; i < k; i++ {
		gram.Set(i, i, gram.At(i, i)+ridge)
	}

	ones := make([]float64, k)
	for i := range ones {
		ones[i] = 1
	}

	var w mat.VecDense
	if err := w.SolveVec(gram, mat.NewVecDense(k, ones)); err != nil {
		return nil, fmt.Errorf("local coding: gram solve failed (%v): %w", err, ErrSingularGram)
	}

	sum := floats.Sum(w.RawVector().Data)
	if sum == 0 {
		return nil, fmt.Errorf("local coding: coefficient sum is zero: %w", ErrSingularGram)
	}

	coeff := make([]float64, m)
	for i, a := range nbrs {
		coeff[a] = w.AtVec(i) / sum
	}
	return coeff, nil
}
