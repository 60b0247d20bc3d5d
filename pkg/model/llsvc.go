package model

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// LocallyLinearSVCConfig enumerates every hyperparameter of the locally-linear
// support vector classifier with typed fields. A config is validated once at
// model construction and never mutated afterwards.
type LocallyLinearSVCConfig struct {
	Reg           float64 // L2 penalty on the anchor classifier weights
	RegLocal      float64 // ridge term of the local coordinate solve
	NAnchors      int     // number of representative points
	NNeighbors    int     // anchors participating in each local coding, <= NAnchors
	FitBias       bool    // learn a per-anchor bias term
	BiasScale     float64 // value of the constant feature realizing the bias
	MaxIter       int     // optimizer iteration budget per class
	Tol           float64 // optimizer convergence tolerance
	MaxAnchorIter int     // anchor refinement iteration budget
	AnchorTol     float64 // anchor refinement RMS-displacement threshold
	Seed          uint64  // seed of the model-owned random stream
}

// DefaultLocallyLinearSVCConfig returns the default hyperparameters.
func DefaultLocallyLinearSVCConfig() LocallyLinearSVCConfig {
	return LocallyLinearSVCConfig{
		Reg:           1.0,
		RegLocal:      1e-4,
		NAnchors:      128,
		NNeighbors:    10,
		FitBias:       true,
		BiasScale:     1.0,
		MaxIter:       100,
		Tol:           1e-4,
		MaxAnchorIter: 100,
		AnchorTol:     1e-4,
		Seed:          42,
	}
}

// Validate checks the configuration for consistency.
func (c LocallyLinearSVCConfig) Validate() error {
	if c.NAnchors < 1 {
		return fmt.Errorf("NAnchors must be positive, got %d: %w", c.NAnchors, ErrBadConfig)
	}
	if c.NNeighbors < 1 || c.NNeighbors > c.NAnchors {
		return fmt.Errorf("NNeighbors must be in [1, NAnchors], got %d with %d anchors: %w", c.NNeighbors, c.NAnchors, ErrBadConfig)
	}
	if c.Reg < 0 || c.RegLocal < 0 {
		return fmt.Errorf("regularization terms must be non-negative: %w", ErrBadConfig)
	}
	if c.MaxIter < 1 || c.MaxAnchorIter < 1 {
		return fmt.Errorf("iteration budgets must be positive: %w", ErrBadConfig)
	}
	return nil
}

// LocallyLinearSVC is a multiclass classifier that covers the data with a
// small set of anchor points, encodes every sample as an affine combination
// of its nearest anchors, and attaches one jointly-trained linear classifier
// to each anchor. Multiclass problems are handled one-vs-rest.
//
// The model has two states: untrained and trained. Fit transitions to
// trained, discarding any previous parameters; DecisionFunction and Predict
// return ErrNotFitted while untrained.
type LocallyLinearSVC struct {
	cfg    LocallyLinearSVCConfig
	logger *zap.Logger
	rng    *rand.Rand

	// Populated by Fit, read-only afterwards.
	Classes []int         // sorted distinct training labels
	Anchors [][]float64   // [NAnchors][nFeatures]
	Weights [][][]float64 // [nSlabs][NAnchors][nFeatures], nSlabs = 1 for binary
	Biases  [][]float64   // [nSlabs][NAnchors]

	fitted bool
}

// NewLocallyLinearSVC builds an untrained model from cfg.
func NewLocallyLinearSVC(cfg LocallyLinearSVCConfig) (*LocallyLinearSVC, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LocallyLinearSVC{
		cfg:    cfg,
		logger: zap.NewNop(),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Config returns the model's hyperparameters.
func (m *LocallyLinearSVC) Config() LocallyLinearSVCConfig { return m.cfg }

// SetLogger installs a logger for training diagnostics.
func (m *LocallyLinearSVC) SetLogger(lg *zap.Logger) {
	if lg != nil {
		m.logger = lg
	}
}

// forkRNG derives an independent child stream from the model-owned stream,
// so concurrent consumers stay reproducible regardless of scheduling.
func (m *LocallyLinearSVC) forkRNG() *rand.Rand {
	return rand.New(rand.NewSource(m.rng.Uint64()))
}

// Fit trains the model on X and integer labels y, replacing any previous
// parameters. It discovers the anchor set, caches the local coordinates of
// every training sample, and trains one classifier per class (a single one
// for binary problems).
func (m *LocallyLinearSVC) Fit(X [][]float64, y []int) error {
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

	finder := NewAnchorFinder(m.cfg.NAnchors, m.cfg.MaxAnchorIter, m.cfg.AnchorTol)
	finder.SetLogger(m.logger)
	anchors, err := finder.FindAnchors(X, m.forkRNG())
	if err != nil {
		return err
	}

	coeff, err := m.codeAll(X, anchors)
	if err != nil {
		return err
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

	// One independent optimization per slab. Streams are forked up front, in
	// class order, so parallel execution cannot change the result.
	rngs := make([]*rand.Rand, nSlabs)
	for s := range rngs {
		rngs[s] = m.forkRNG()
	}

	weights := make([][][]float64, nSlabs)
	biases := make([][]float64, nSlabs)
	errs := make([]error, nSlabs)

	var wg sync.WaitGroup
	for s := 0; s < nSlabs; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			pos := classes[s]
			if len(classes) == 2 {
				// Binary: single classifier, second class is the positive one.
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
			weights[s], biases[s], errs[s] = trainer.Train(X, target, coeff, m.cfg.NAnchors, rngs[s])
			m.logger.Debug("local classifier trained", zap.Int("slab", s), zap.Int("class", pos))
		}(s)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	m.Classes = classes
	m.Anchors = anchors
	m.Weights = weights
	m.Biases = biases
	m.fitted = true
	return nil
}

// codeAll computes the local coordinate matrix of X ([n][NAnchors]) in
// parallel. Each sample only reads the shared anchors and writes its own row.
func (m *LocallyLinearSVC) codeAll(X [][]float64, anchors [][]float64) ([][]float64, error) {
	coder := &LocalCoder{NNeighbors: m.cfg.NNeighbors, Reg: m.cfg.RegLocal}

	n := len(X)
	coeff := make([][]float64, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				coeff[i], errs[i] = coder.Code(X[i], anchors)
			}
		}(start, end)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return coeff, nil
}

// DecisionFunction returns raw scores for each row of X: one column per
// class, or a single column for binary models. Local coding is recomputed
// per query; the anchors are fixed but the queries vary.
func (m *LocallyLinearSVC) DecisionFunction(X [][]float64) ([][]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("decision function: %w", ErrNotFitted)
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("decision function: %w", ErrEmptyData)
	}

	coder := &LocalCoder{NNeighbors: m.cfg.NNeighbors, Reg: m.cfg.RegLocal}
	out := make([][]float64, len(X))
	for i, x := range X {
		scores, err := m.decideOne(coder, x)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = scores
	}
	return out, nil
}

func (m *LocallyLinearSVC) decideOne(coder *LocalCoder, x []float64) ([]float64, error) {
	coeff, err := coder.Code(x, m.Anchors)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(m.Weights))
	for s := range m.Weights {
		z := 0.0
		for a, c := range coeff {
			if c == 0 {
				continue
			}
			w := m.Weights[s][a]
			dot := m.Biases[s][a]
			for j, v := range x {
				dot += w[j] * v
			}
			z += c * dot
		}
		scores[s] = z
	}
	return scores, nil
}

// Predict returns the class label for each row of X. Binary models threshold
// the single score at zero (positive score maps to the second class);
// multiclass models take the first class achieving the maximum score.
func (m *LocallyLinearSVC) Predict(X [][]float64) ([]int, error) {
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

// distinctSorted returns the sorted set of distinct labels.
func distinctSorted(y []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, 8)
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

var (
	_ Classifier = (*LocallyLinearSVC)(nil)
	_ Scorer     = (*LocallyLinearSVC)(nil)
)
