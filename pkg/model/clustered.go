package model

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// ClusteredSVCConfig holds the hyperparameters of the clustering ensemble.
type ClusteredSVCConfig struct {
	Linear         LinearSVCConfig
	NClusters      int
	MaxClusterIter int
	ClusterTol     float64
	RegGlobal      float64 // pull of the per-cluster classifiers toward the shared one
	Seed           uint64
}

// DefaultClusteredSVCConfig returns the default hyperparameters.
func DefaultClusteredSVCConfig() ClusteredSVCConfig {
	return ClusteredSVCConfig{
		Linear:         DefaultLinearSVCConfig(),
		NClusters:      8,
		MaxClusterIter: 100,
		ClusterTol:     1e-4,
		RegGlobal:      1.0,
		Seed:           42,
	}
}

// Validate checks the configuration for consistency.
func (c ClusteredSVCConfig) Validate() error {
	if c.NClusters < 1 {
		return fmt.Errorf("NClusters must be positive, got %d: %w", c.NClusters, ErrBadConfig)
	}
	if c.MaxClusterIter < 1 {
		return fmt.Errorf("MaxClusterIter must be positive: %w", ErrBadConfig)
	}
	if c.RegGlobal <= 0 {
		return fmt.Errorf("RegGlobal must be positive: %w", ErrBadConfig)
	}
	return c.Linear.Validate()
}

// ClusteredSVC composes k-means clustering with a linear classifier. The data
// is clustered once; every sample is re-encoded block-sparse with one shared
// block (the raw features scaled by 1/sqrt(RegGlobal)) and one block per
// cluster holding the raw features at the sample's cluster position. A single
// LinearSVC on that encoding amounts to one classifier per cluster, each
// regularized toward a shared global one, so a stack of linear models can
// carve a piecewise-linear boundary.
type ClusteredSVC struct {
	cfg ClusteredSVCConfig
	rng *rand.Rand

	Centroids [][]float64
	svc       *LinearSVC

	fitted bool
}

// NewClusteredSVC builds an untrained ensemble from cfg.
func NewClusteredSVC(cfg ClusteredSVCConfig) (*ClusteredSVC, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ClusteredSVC{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Config returns the model's hyperparameters.
func (m *ClusteredSVC) Config() ClusteredSVCConfig { return m.cfg }

// Classes returns the sorted distinct training labels.
func (m *ClusteredSVC) Classes() []int {
	if m.svc == nil {
		return nil
	}
	return m.svc.Classes
}

// Fit clusters X, re-encodes it and trains the underlying linear classifier.
func (m *ClusteredSVC) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return fmt.Errorf("fit: %w", ErrEmptyData)
	}

	finder := NewAnchorFinder(m.cfg.NClusters, m.cfg.MaxClusterIter, m.cfg.ClusterTol)
	centroids, err := finder.FindAnchors(X, rand.New(rand.NewSource(m.rng.Uint64())))
	if err != nil {
		return err
	}
	m.Centroids = centroids

	z, err := m.Transform(X)
	if err != nil {
		return err
	}

	svc, err := NewLinearSVC(m.cfg.Linear)
	if err != nil {
		return err
	}
	if err := svc.Fit(z, y); err != nil {
		return err
	}

	m.svc = svc
	m.fitted = true
	return nil
}

// Transform re-encodes each row of X block-sparse: a shared block with the
// features scaled by 1/sqrt(RegGlobal), followed by NClusters blocks of which
// only the row's cluster block carries the features.
func (m *ClusteredSVC) Transform(X [][]float64) ([][]float64, error) {
	if m.Centroids == nil {
		return nil, fmt.Errorf("transform: %w", ErrNotFitted)
	}

	p := len(m.Centroids[0])
	shared := 1 / math.Sqrt(m.cfg.RegGlobal)

	out := make([][]float64, len(X))
	for i, x := range X {
		if len(x) != p {
			return nil, fmt.Errorf("sample %d has %d features, centroids have %d: %w", i, len(x), p, ErrDimensionMismatch)
		}
		best, bestD2 := 0, euclidSquared(x, m.Centroids[0])
		for k := 1; k < len(m.Centroids); k++ {
			if d2 := euclidSquared(x, m.Centroids[k]); d2 < bestD2 {
				bestD2 = d2
				best = k
			}
		}

		row := make([]float64, p*(1+len(m.Centroids)))
		for j, v := range x {
			row[j] = v * shared
			row[p*(1+best)+j] = v
		}
		out[i] = row
	}
	return out, nil
}

// DecisionFunction returns the underlying classifier's scores on the
// re-encoded features.
func (m *ClusteredSVC) DecisionFunction(X [][]float64) ([][]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("decision function: %w", ErrNotFitted)
	}
	z, err := m.Transform(X)
	if err != nil {
		return nil, err
	}
	return m.svc.DecisionFunction(z)
}

// Predict returns the class label for each row of X.
func (m *ClusteredSVC) Predict(X [][]float64) ([]int, error) {
	if !m.fitted {
		return nil, fmt.Errorf("predict: %w", ErrNotFitted)
	}
	z, err := m.Transform(X)
	if err != nil {
		return nil, err
	}
	return m.svc.Predict(z)
}

var (
	_ Classifier = (*ClusteredSVC)(nil)
	_ Scorer     = (*ClusteredSVC)(nil)
)
