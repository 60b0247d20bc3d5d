// Package stats provides feature preprocessing used ahead of the classifiers.
package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("stats: scaler not fitted, call Fit first")

// StandardScaler standardizes each column to zero mean and unit variance.
// Columns with zero variance are mapped to zero.
type StandardScaler struct {
	Mean []float64
	Std  []float64

	fitted bool
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fit learns per-column means and standard deviations from X.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return errors.New("stats: input data cannot be empty")
	}

	rows, cols := len(X), len(X[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = X[i][j]
		}
		s.Mean[j], s.Std[j] = stat.MeanStdDev(col, nil)
	}
	s.fitted = true
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}

	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.Mean) {
			return nil, fmt.Errorf("stats: row %d has %d features, scaler has %d", i, len(row), len(s.Mean))
		}
		r := make([]float64, len(row))
		for j, v := range row {
			if s.Std[j] != 0 {
				r[j] = (v - s.Mean[j]) / s.Std[j]
			}
		}
		out[i] = r
	}
	return out, nil
}

// FitTransform fits the scaler on X and returns the standardized data.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
