package model

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/yoshoku/rumale-svm/pkg/optim"
)

// LocalClassifierTrainer jointly learns one linear classifier per anchor for
// a single binary target vector. The anchors' weight blocks are optimized
// together as one flattened parameter vector under a squared-hinge loss with
// L2 weight regularization, minimized by a quasi-Newton solver.
type LocalClassifierTrainer struct {
	Reg       float64 // L2 penalty on the anchor weights
	MaxIter   int
	Tol       float64
	FitBias   bool
	BiasScale float64
}

// Train fits per-anchor weights for targets y in {+1, -1}. coeff is the
// cached local-coordinate matrix of X ([n][nAnchors], rows summing to 1).
// It returns a weight block per anchor ([nAnchors][nFeatures]) and one bias
// per anchor (all zero when FitBias is off).
func (t *LocalClassifierTrainer) Train(X [][]float64, y []float64, coeff [][]float64, nAnchors int, rng *rand.Rand) ([][]float64, []float64, error) {
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("local training: %w", ErrEmptyData)
	}

	p := len(X[0])
	dim := p
	xs := X
	if t.FitBias {
		// The bias is realized as an extra constant feature so the optimizer
		// sees a single homogeneous parameter vector.
		dim++
		xs = appendBiasColumn(X, t.BiasScale)
	}

	obj := &localObjective{
		x:        xs,
		y:        y,
		coeff:    coeff,
		reg:      t.Reg,
		nAnchors: nAnchors,
		dim:      dim,
	}

	w0 := make([]float64, nAnchors*dim)
	for i := range w0 {
		w0[i] = rng.Float64()*2 - 1
	}

	res, err := optim.NewLBFGS(t.MaxIter, t.Tol).Minimize(obj.loss, obj.grad, w0)
	if err != nil {
		return nil, nil, fmt.Errorf("local training: %w", err)
	}

	weights := make([][]float64, nAnchors)
	biases := make([]float64, nAnchors)
	for a := 0; a < nAnchors; a++ {
		block := res.X[a*dim : (a+1)*dim]
		if t.FitBias {
			weights[a] = append([]float64{}, block[:p]...)
			biases[a] = block[p] * t.BiasScale
		} else {
			weights[a] = append([]float64{}, block...)
		}
	}
	return weights, biases, nil
}

// localObjective evaluates the joint squared-hinge objective and its
// closed-form gradient over the flattened anchor weights.
//
// For sample i the local prediction is
//
//	z_i = sum_a coeff[i][a] * (x_i . w_a)
//
// and the objective is
//
//	0.5*reg*|W|^2 + (1/n) * sum_i max(0, 1 - y_i z_i)^2.
type localObjective struct {
	x        [][]float64 // [n][dim], bias column already appended when fit
	y        []float64   // [n], +1 or -1
	coeff    [][]float64 // [n][nAnchors], sparse rows stored densely
	reg      float64
	nAnchors int
	dim      int
}

func (o *localObjective) loss(w []float64) float64 {
	hinge := 0.0
	for i := range o.x {
		t := 1 - o.y[i]*o.score(w, i)
		if t > 0 {
			hinge += t * t
		}
	}
	return 0.5*o.reg*floats.Dot(w, w) + hinge/float64(len(o.x))
}

// grad writes reg*W + (2/n) * sum over margin-violating samples of
// (z_i - y_i) * coeff[i][a] * x_i into each anchor block. Samples with
// non-positive margin contribute nothing (flat region of the squared hinge).
func (o *localObjective) grad(g, w []float64) {
	copy(g, w)
	floats.Scale(o.reg, g)

	n := float64(len(o.x))
	for i := range o.x {
		z := o.score(w, i)
		if 1-o.y[i]*z <= 0 {
			continue
		}
		s := 2 * (z - o.y[i]) / n
		for a, c := range o.coeff[i] {
			if c == 0 {
				continue
			}
			base := a * o.dim
			floats.AddScaled(g[base:base+o.dim], s*c, o.x[i])
		}
	}
}

func (o *localObjective) score(w []float64, i int) float64 {
	z := 0.0
	for a, c := range o.coeff[i] {
		if c == 0 {
			continue
		}
		z += c * floats.Dot(o.x[i], w[a*o.dim:(a+1)*o.dim])
	}
	return z
}

// appendBiasColumn returns a copy of X with a constant column of value scale.
func appendBiasColumn(X [][]float64, scale float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row)+1)
		copy(r, row)
		r[len(row)] = scale
		out[i] = r
	}
	return out
}
