package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/yoshoku/rumale-svm/pkg/data"
	"github.com/yoshoku/rumale-svm/pkg/model"
)

func TestLocallyLinearSVCConfig_Validate(t *testing.T) {
	cfg := model.DefaultLocallyLinearSVCConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.NNeighbors = bad.NAnchors + 1
	_, err := model.NewLocallyLinearSVC(bad)
	assert.ErrorIs(t, err, model.ErrBadConfig, "neighbor count above anchor count")

	bad = cfg
	bad.NAnchors = 0
	_, err = model.NewLocallyLinearSVC(bad)
	assert.ErrorIs(t, err, model.ErrBadConfig)

	bad = cfg
	bad.Reg = -1
	_, err = model.NewLocallyLinearSVC(bad)
	assert.ErrorIs(t, err, model.ErrBadConfig)
}

func TestLocallyLinearSVC_NotFitted(t *testing.T) {
	clf, err := model.NewLocallyLinearSVC(model.DefaultLocallyLinearSVCConfig())
	require.NoError(t, err)

	_, err = clf.Predict([][]float64{{0, 0}})
	assert.ErrorIs(t, err, model.ErrNotFitted)

	_, err = clf.DecisionFunction([][]float64{{0, 0}})
	assert.ErrorIs(t, err, model.ErrNotFitted)

	_, err = clf.DumpState()
	assert.ErrorIs(t, err, model.ErrNotFitted)
}

func TestLocallyLinearSVC_FitInputErrors(t *testing.T) {
	clf, err := model.NewLocallyLinearSVC(model.DefaultLocallyLinearSVCConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, clf.Fit(nil, nil), model.ErrEmptyData)

	X := [][]float64{{0, 0}, {1, 1}}
	assert.ErrorIs(t, clf.Fit(X, []int{0}), model.ErrBadInput, "label length mismatch")
	assert.ErrorIs(t, clf.Fit(X, []int{3, 3}), model.ErrBadInput, "single class")
}

// binaryBlobs is the separability scenario: two tight clusters at (0,0) and
// (10,10), 100 points each.
func binaryBlobs(seed uint64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	return data.MakeBlobs([][]float64{{0, 0}, {10, 10}}, 0.1, 100, rng)
}

func fitBinaryLLSVC(t *testing.T, seed uint64) (*model.LocallyLinearSVC, [][]float64, []int) {
	t.Helper()
	X, y := binaryBlobs(seed)

	cfg := model.DefaultLocallyLinearSVCConfig()
	cfg.NAnchors = 8
	cfg.NNeighbors = 4
	clf, err := model.NewLocallyLinearSVC(cfg)
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))
	return clf, X, y
}

// TestLocallyLinearSVC_BinarySeparable requires exact recovery of the
// training labels on linearly separable data.
func TestLocallyLinearSVC_BinarySeparable(t *testing.T) {
	clf, X, y := fitBinaryLLSVC(t, 1)

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, model.Accuracy(y, pred), "training accuracy must be exact")

	scores, err := clf.DecisionFunction(X)
	require.NoError(t, err)
	for i, row := range scores {
		require.Len(t, row, 1, "binary decision output has a single column")
		if y[i] == 1 {
			assert.Positive(t, row[0], "sample %d", i)
		} else {
			assert.LessOrEqual(t, row[0], 0.0, "sample %d", i)
		}
	}
}

func TestLocallyLinearSVC_BinaryShapes(t *testing.T) {
	clf, _, _ := fitBinaryLLSVC(t, 2)

	assert.Equal(t, []int{0, 1}, clf.Classes)
	require.Len(t, clf.Weights, 1, "binary collapses the class dimension")
	require.Len(t, clf.Weights[0], 8)
	assert.Len(t, clf.Weights[0][0], 2)
	require.Len(t, clf.Biases, 1)
	assert.Len(t, clf.Biases[0], 8)
}

// TestLocallyLinearSVC_DecisionIdempotent checks that inference is a pure
// function of the trained state.
func TestLocallyLinearSVC_DecisionIdempotent(t *testing.T) {
	clf, X, _ := fitBinaryLLSVC(t, 3)

	s1, err := clf.DecisionFunction(X[:20])
	require.NoError(t, err)
	s2, err := clf.DecisionFunction(X[:20])
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestLocallyLinearSVC_Multiclass(t *testing.T) {
	centers := [][]float64{{0, 0}, {12, 12}, {-12, 12}}
	rng := rand.New(rand.NewSource(4))
	X, y := data.MakeBlobs(centers, 0.3, 100, rng)

	cfg := model.DefaultLocallyLinearSVCConfig()
	cfg.NAnchors = 16
	cfg.NNeighbors = 4
	clf, err := model.NewLocallyLinearSVC(cfg)
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	require.Len(t, clf.Weights, 3, "one weight slab per class")
	require.Len(t, clf.Weights[0], 16)
	assert.Len(t, clf.Weights[0][0], 2)
	require.Len(t, clf.Biases, 3)
	assert.Len(t, clf.Biases[0], 16)

	// Held-out points near each blob center must take the blob's label.
	queries := [][]float64{{0.2, -0.1}, {11.8, 12.1}, {-11.9, 12.2}}
	pred, err := clf.Predict(queries)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, pred)

	scores, err := clf.DecisionFunction(queries)
	require.NoError(t, err)
	for _, row := range scores {
		assert.Len(t, row, 3, "multiclass decision output has one column per class")
	}
}

// TestLocallyLinearSVC_RegularizationShrinksWeights: a larger weight penalty
// must not enlarge the learned weights and must not beat the weaker
// regularization's training accuracy.
func TestLocallyLinearSVC_RegularizationShrinksWeights(t *testing.T) {
	X, y := binaryBlobs(5)

	norm := func(reg float64) (float64, float64) {
		cfg := model.DefaultLocallyLinearSVCConfig()
		cfg.NAnchors = 8
		cfg.NNeighbors = 4
		cfg.Reg = reg
		clf, err := model.NewLocallyLinearSVC(cfg)
		require.NoError(t, err)
		require.NoError(t, clf.Fit(X, y))

		s := 0.0
		for _, slab := range clf.Weights {
			for _, block := range slab {
				for _, w := range block {
					s += w * w
				}
			}
		}
		pred, err := clf.Predict(X)
		require.NoError(t, err)
		return math.Sqrt(s), model.Accuracy(y, pred)
	}

	weakNorm, weakAcc := norm(1e-4)
	strongNorm, strongAcc := norm(100)

	assert.Less(t, strongNorm, weakNorm)
	assert.LessOrEqual(t, strongAcc, weakAcc)
}

// TestLocallyLinearSVC_FullNeighborhood: NNeighbors equal to NAnchors is a
// legal boundary configuration.
func TestLocallyLinearSVC_FullNeighborhood(t *testing.T) {
	X, y := binaryBlobs(6)

	cfg := model.DefaultLocallyLinearSVCConfig()
	cfg.NAnchors = 6
	cfg.NNeighbors = 6
	clf, err := model.NewLocallyLinearSVC(cfg)
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, model.Accuracy(y, pred), 0.95)
}

// TestLocallyLinearSVC_Refit: a second Fit fully replaces the trained state.
func TestLocallyLinearSVC_Refit(t *testing.T) {
	clf, _, _ := fitBinaryLLSVC(t, 7)

	centers := [][]float64{{0, 0}, {5, 5}, {-5, 5}}
	rng := rand.New(rand.NewSource(8))
	X, y := data.MakeBlobs(centers, 0.2, 60, rng)
	require.NoError(t, clf.Fit(X, y))

	assert.Equal(t, []int{0, 1, 2}, clf.Classes)
	assert.Len(t, clf.Weights, 3)
}

func TestLocallyLinearSVC_StateRoundTrip(t *testing.T) {
	clf, X, _ := fitBinaryLLSVC(t, 9)

	blob, err := clf.DumpState()
	require.NoError(t, err)

	restored, err := model.NewLocallyLinearSVC(model.DefaultLocallyLinearSVCConfig())
	require.NoError(t, err)
	require.NoError(t, restored.LoadState(blob))

	assert.Equal(t, clf.Classes, restored.Classes)
	assert.Equal(t, clf.Config(), restored.Config())

	want, err := clf.DecisionFunction(X[:10])
	require.NoError(t, err)
	got, err := restored.DecisionFunction(X[:10])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocallyLinearSVC_LoadStateRejectsGarbage(t *testing.T) {
	clf, err := model.NewLocallyLinearSVC(model.DefaultLocallyLinearSVCConfig())
	require.NoError(t, err)
	assert.Error(t, clf.LoadState([]byte("not a snapshot")))
}
