package model

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// RandomRecursiveSVCConfig holds the hyperparameters of the recursive stack.
type RandomRecursiveSVCConfig struct {
	Linear  LinearSVCConfig
	NLayers int
	Scale   float64 // weight of the recursive feedback term
	Seed    uint64
}

// DefaultRandomRecursiveSVCConfig returns the default hyperparameters.
func DefaultRandomRecursiveSVCConfig() RandomRecursiveSVCConfig {
	return RandomRecursiveSVCConfig{
		Linear:  DefaultLinearSVCConfig(),
		NLayers: 2,
		Scale:   0.1,
		Seed:    42,
	}
}

// Validate checks the configuration for consistency.
func (c RandomRecursiveSVCConfig) Validate() error {
	if c.NLayers < 1 {
		return fmt.Errorf("NLayers must be positive, got %d: %w", c.NLayers, ErrBadConfig)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("Scale must be positive: %w", ErrBadConfig)
	}
	return c.Linear.Validate()
}

// RandomRecursiveSVC stacks linear classifiers recursively. The first layer
// sees the raw features; every later layer sees a sigmoid-squashed sum of the
// raw features and random projections of all earlier layers' decision values.
// The random projections move the data in label-informed directions, letting
// a stack of purely linear models carve a nonlinear boundary.
type RandomRecursiveSVC struct {
	cfg RandomRecursiveSVCConfig
	rng *rand.Rand

	// Layers and Projections are parallel: Projections[l] maps layer l's
	// decision values ([nSlabs]) back into feature space ([nSlabs][nFeatures]).
	Layers      []*LinearSVC
	Projections [][][]float64

	fitted bool
}

// NewRandomRecursiveSVC builds an untrained stack from cfg.
func NewRandomRecursiveSVC(cfg RandomRecursiveSVCConfig) (*RandomRecursiveSVC, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RandomRecursiveSVC{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Config returns the model's hyperparameters.
func (m *RandomRecursiveSVC) Config() RandomRecursiveSVCConfig { return m.cfg }

// Classes returns the sorted distinct training labels.
func (m *RandomRecursiveSVC) Classes() []int {
	if len(m.Layers) == 0 {
		return nil
	}
	return m.Layers[0].Classes
}

// Fit trains the stack layer by layer, replacing any previous parameters.
func (m *RandomRecursiveSVC) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return fmt.Errorf("fit: %w", ErrEmptyData)
	}
	if len(X) != len(y) {
		return fmt.Errorf("fit: %d samples with %d labels: %w", len(X), len(y), ErrBadInput)
	}

	p := len(X[0])
	layers := make([]*LinearSVC, 0, m.cfg.NLayers)
	projections := make([][][]float64, 0, m.cfg.NLayers)

	// feedback accumulates Scale * sum_j o_j . R_j over the layers built so far.
	feedback := make([][]float64, len(X))
	for i := range feedback {
		feedback[i] = make([]float64, p)
	}

	z := X
	for l := 0; l < m.cfg.NLayers; l++ {
		cfg := m.cfg.Linear
		cfg.Seed = m.rng.Uint64()
		svc, err := NewLinearSVC(cfg)
		if err != nil {
			return err
		}
		if err := svc.Fit(z, y); err != nil {
			return fmt.Errorf("layer %d: %w", l, err)
		}

		layers = append(layers, svc)
		if l == m.cfg.NLayers-1 {
			break
		}

		scores, err := svc.DecisionFunction(z)
		if err != nil {
			return fmt.Errorf("layer %d: %w", l, err)
		}
		proj := m.randomProjection(len(scores[0]), p)
		projections = append(projections, proj)

		accumulateFeedback(feedback, scores, proj, m.cfg.Scale)
		z = nextLayerInput(X, feedback)
	}

	m.Layers = layers
	m.Projections = projections
	m.fitted = true
	return nil
}

// randomProjection draws an [nSlabs][nFeatures] matrix of standard normals.
func (m *RandomRecursiveSVC) randomProjection(nSlabs, nFeatures int) [][]float64 {
	proj := make([][]float64, nSlabs)
	for s := range proj {
		proj[s] = make([]float64, nFeatures)
		for j := range proj[s] {
			proj[s][j] = m.rng.NormFloat64()
		}
	}
	return proj
}

// accumulateFeedback adds scale * scores . proj to the running feedback term.
func accumulateFeedback(feedback [][]float64, scores [][]float64, proj [][]float64, scale float64) {
	for i := range feedback {
		for s, o := range scores[i] {
			for j := range feedback[i] {
				feedback[i][j] += scale * o * proj[s][j]
			}
		}
	}
}

// nextLayerInput squashes raw features plus feedback through a sigmoid.
func nextLayerInput(X [][]float64, feedback [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		row := make([]float64, len(x))
		for j, v := range x {
			row[j] = 1 / (1 + math.Exp(-(v + feedback[i][j])))
		}
		out[i] = row
	}
	return out
}

// transformAll replays the stored projections on new data, returning the
// input of the final layer.
func (m *RandomRecursiveSVC) transformAll(X [][]float64) ([][]float64, error) {
	p := len(X[0])
	feedback := make([][]float64, len(X))
	for i := range feedback {
		feedback[i] = make([]float64, p)
	}

	z := X
	for l := 0; l < len(m.Layers)-1; l++ {
		scores, err := m.Layers[l].DecisionFunction(z)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		accumulateFeedback(feedback, scores, m.Projections[l], m.cfg.Scale)
		z = nextLayerInput(X, feedback)
	}
	return z, nil
}

// DecisionFunction returns the final layer's scores for each row of X.
func (m *RandomRecursiveSVC) DecisionFunction(X [][]float64) ([][]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("decision function: %w", ErrNotFitted)
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("decision function: %w", ErrEmptyData)
	}
	z, err := m.transformAll(X)
	if err != nil {
		return nil, err
	}
	return m.Layers[len(m.Layers)-1].DecisionFunction(z)
}

// Predict returns the class label for each row of X.
func (m *RandomRecursiveSVC) Predict(X [][]float64) ([]int, error) {
	if !m.fitted {
		return nil, fmt.Errorf("predict: %w", ErrNotFitted)
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("predict: %w", ErrEmptyData)
	}
	z, err := m.transformAll(X)
	if err != nil {
		return nil, err
	}
	return m.Layers[len(m.Layers)-1].Predict(z)
}

var (
	_ Classifier = (*RandomRecursiveSVC)(nil)
	_ Scorer     = (*RandomRecursiveSVC)(nil)
)
