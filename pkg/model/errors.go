package model

import "errors"

// Sentinel errors returned by the estimators in this package. Callers can
// match them with errors.Is after any amount of wrapping.
var (
	// ErrEmptyData is returned when a training or prediction matrix has no rows.
	ErrEmptyData = errors.New("model: input data is empty")

	// ErrBadConfig is returned when hyperparameters fail validation.
	ErrBadConfig = errors.New("model: invalid configuration")

	// ErrBadInput is returned for malformed inputs, e.g. a label slice whose
	// length does not match the sample count.
	ErrBadInput = errors.New("model: invalid input")

	// ErrDimensionMismatch is returned when a query point's feature count does
	// not match the fitted model.
	ErrDimensionMismatch = errors.New("model: feature dimension mismatch")

	// ErrNotFitted is returned when inference is attempted on an untrained model.
	ErrNotFitted = errors.New("model: not fitted, call Fit first")

	// ErrSingularGram is returned when the regularized local Gram matrix cannot
	// be solved. This usually means NNeighbors or RegLocal is too small.
	ErrSingularGram = errors.New("model: singular local gram matrix")
)
