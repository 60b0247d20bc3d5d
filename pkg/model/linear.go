package model

import (
	"fmt"
	"sync"

	"golang.org/x/exp/rand"
)

// LinearSVCConfig holds the hyperparameters of the primal linear classifier.
type LinearSVCConfig struct {
	Reg       float64 // L2 penalty on the weights
	FitBias   bool
	BiasScale float64
	MaxIter   int
	Tol       float64
	Seed      uint64
}

// DefaultLinearSVCConfig returns the default hyperparameters.
func DefaultLinearSVCConfig() LinearSVCConfig {
	return LinearSVCConfig{
		Reg:       1.0,
		FitBias:   true,
		BiasScale: 1.0,
		MaxIter:   1000,
		Tol:       1e-4,
		Seed:      42,
	}
}

// Validate checks the configuration for consistency.
func (c LinearSVCConfig) Validate() error {
	if c.Reg < 0 {
		return fmt.Errorf("Reg must be non-negative: %w", ErrBadConfig)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("MaxIter must be positive: %w", ErrBadConfig)
	}
	return nil
}

// LinearSVC is a linear support vector classifier trained in the primal with
// a squared-hinge loss and L2 regularization. It reuses the local classifier
// objective with a single anchor and unit coefficients, so the whole model is
// one weight vector (plus bias) per class, one-vs-rest for multiclass.
type LinearSVC struct {
	cfg LinearSVCConfig
	rng *rand.Rand

	Classes []int
	W       [][]float64 // [nSlabs][nFeatures], nSlabs = 1 for binary
	B       []float64   // [nSlabs]

	fitted bool
}

// NewLinearSVC builds an untrained linear classifier from cfg.
func NewLinearSVC(cfg LinearSVCConfig) (*LinearSVC, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LinearSVC{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Config returns the model's hyperparameters.
func (m *LinearSVC) Config() LinearSVCConfig { return m.cfg }

// Fit trains one weight vector per class (a single one for binary problems),
// replacing any previous parameters.
func (m *LinearSVC) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return fmt.Errorf("fit: %w", ErrEmptyData)
	}
	if len(X) != len(y) {
		return fmt.Errorf("fit: %d samples with %d labels: %w", len(X), len(y), ErrBadInput)
	}

	classes := distinctSorted(y)
	if len(classes) < 2 {
		return fmt.Errorf("fit: need at least 2 classes, got %d: %w", len(classes), ErrBadInput)
	}

	// The trainer operates on anchor blocks; a linear model is the degenerate
	// case of one anchor whose coding coefficient is 1 for every sample.
	coeff := make([][]float64, len(X))
	for i := range coeff {
		coeff[i] = []float64{1}
	}
	trainer := &LocalClassifierTrainer{
		Reg:       m.cfg.Reg,
		MaxIter:   m.cfg.MaxIter,
		Tol:       m.cfg.Tol,
		FitBias:   m.cfg.FitBias,
		BiasScale: m.cfg.BiasScale,
	}

	nSlabs := len(classes)
	if nSlabs == 2 {
		nSlabs = 1
	}
	rngs := make([]*rand.Rand, nSlabs)
	for s := range rngs {
		rngs[s] = rand.New(rand.NewSource(m.rng.Uint64()))
	}

	ws := make([][]float64, nSlabs)
	bs := make([]float64, nSlabs)
	errs := make([]error, nSlabs)

	var wg sync.WaitGroup
	for s := 0; s < nSlabs; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			pos := classes[s]
			if len(classes) == 2 {
				pos = classes[1]
			}
			target := make([]float64, len(y))
			for i, label := range y {
				if label == pos {
					target[i] = 1
				} else {
					target[i] = -1
				}
			}
			weights, biases, err := trainer.Train(X, target, coeff, 1, rngs[s])
			if err != nil {
				errs[s] = err
				return
			}
			ws[s] = weights[0]
			bs[s] = biases[0]
		}(s)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	m.Classes = classes
	m.W = ws
	m.B = bs
	m.fitted = true
	return nil
}

// DecisionFunction returns raw scores for each row of X: one column per
// class, or a single column for binary models.
func (m *LinearSVC) DecisionFunction(X [][]float64) ([][]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("decision function: %w", ErrNotFitted)
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("decision function: %w", ErrEmptyData)
	}

	out := make([][]float64, len(X))
	for i, x := range X {
		if len(x) != len(m.W[0]) {
			return nil, fmt.Errorf("sample %d has %d features, model has %d: %w", i, len(x), len(m.W[0]), ErrDimensionMismatch)
		}
		scores := make([]float64, len(m.W))
		for s, w := range m.W {
			z := m.B[s]
			for j, v := range x {
				z += w[j] * v
			}
			scores[s] = z
		}
		out[i] = scores
	}
	return out, nil
}

// Predict returns the class label for each row of X.
func (m *LinearSVC) Predict(X [][]float64) ([]int, error) {
	scores, err := m.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(X))
	for i, row := range scores {
		if len(m.Classes) == 2 {
			if row[0] > 0 {
				out[i] = m.Classes[1]
			} else {
				out[i] = m.Classes[0]
			}
			continue
		}
		best := 0
		for s := 1; s < len(row); s++ {
			if row[s] > row[best] {
				best = s
			}
		}
		out[i] = m.Classes[best]
	}
	return out, nil
}

var (
	_ Classifier = (*LinearSVC)(nil)
	_ Scorer     = (*LinearSVC)(nil)
)
