// Package optim wraps the numerical optimizers used by the models.
package optim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// Result holds the final iterate of a minimization run.
type Result struct {
	X         []float64 // best parameter vector found
	Loss      float64   // objective value at X
	Converged bool      // true when a convergence criterion fired, false on budget exhaustion
}

// LBFGS is a limited-memory quasi-Newton minimizer. Running out of the
// iteration budget is not an error: the best iterate found so far is
// returned with Converged set to false.
type LBFGS struct {
	MaxIter int
	Tol     float64 // gradient-norm threshold for convergence
}

// NewLBFGS returns an LBFGS minimizer with the given iteration budget and tolerance.
func NewLBFGS(maxIter int, tol float64) *LBFGS {
	return &LBFGS{MaxIter: maxIter, Tol: tol}
}

// Minimize runs the optimizer from x0 on the supplied objective and gradient.
// fn returns the scalar loss at x; grad writes the gradient at x into g.
func (o *LBFGS) Minimize(fn func(x []float64) float64, grad func(g, x []float64), x0 []float64) (*Result, error) {
	problem := optimize.Problem{
		Func: fn,
		Grad: grad,
	}
	settings := &optimize.Settings{
		MajorIterations:   o.MaxIter,
		GradientThreshold: o.Tol,
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if res == nil || res.X == nil {
		if err == nil {
			err = errors.New("no iterate produced")
		}
		return nil, fmt.Errorf("lbfgs: %w", err)
	}

	// Iteration and evaluation limits terminate gracefully with the best
	// iterate; only a run that produced no iterate at all is a failure.
	converged := res.Status == optimize.GradientThreshold ||
		res.Status == optimize.FunctionConvergence
	return &Result{X: res.X, Loss: res.F, Converged: converged}, nil
}
