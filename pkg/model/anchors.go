package model

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// AnchorFinder selects a fixed number of representative points ("anchors")
// from training data by Lloyd-style iterative refinement. Anchors play the
// role of cluster centroids: the locally-linear classifier attaches one
// linear model to each of them.
type AnchorFinder struct {
	NAnchors int
	MaxIter  int
	Tol      float64 // root-mean-squared anchor displacement threshold

	logger *zap.Logger
}

// NewAnchorFinder creates an AnchorFinder with the given anchor budget,
// iteration limit and convergence tolerance.
func NewAnchorFinder(nAnchors, maxIter int, tol float64) *AnchorFinder {
	return &AnchorFinder{NAnchors: nAnchors, MaxIter: maxIter, Tol: tol, logger: zap.NewNop()}
}

// SetLogger installs a logger for per-iteration diagnostics.
func (f *AnchorFinder) SetLogger(lg *zap.Logger) {
	if lg != nil {
		f.logger = lg
	}
}

// FindAnchors returns NAnchors representative points for X.
//
// Anchors are initialized by sampling rows uniformly at random with
// replacement from the supplied generator, then refined for up to MaxIter
// rounds: every sample is assigned to its nearest anchor (squared Euclidean
// distance, first minimum wins), each anchor moves to the mean of its
// assigned samples (anchors with no assignments keep their position), and
// iteration stops early once the root-mean-squared displacement of all
// anchors falls to Tol or below.
func (f *AnchorFinder) FindAnchors(X [][]float64, rng *rand.Rand) ([][]float64, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, fmt.Errorf("find anchors: %w", ErrEmptyData)
	}
	if f.NAnchors < 1 {
		return nil, fmt.Errorf("find anchors: anchor count %d: %w", f.NAnchors, ErrBadConfig)
	}

	n, p := len(X), len(X[0])

	anchors := make([][]float64, f.NAnchors)
	for k := range anchors {
		anchors[k] = append([]float64{}, X[rng.Intn(n)]...)
	}

	assign := make([]int, n)
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	for it := 0; it < f.MaxIter; it++ {
		// === Parallel Assignment Step ===
		// Each sample goes to its nearest anchor. Samples only read the shared
		// anchor slice and write their own slot, so no synchronization beyond
		// the WaitGroup is needed.
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
					best, bestD2 := 0, math.MaxFloat64
					for k := range anchors {
						d2 := euclidSquared(X[i], anchors[k])
						if d2 < bestD2 {
							bestD2 = d2
							best = k
						}
					}
					assign[i] = best
				}
			}(start, end)
		}
		wg.Wait()

		// === Update Step ===
		// Each anchor moves to the mean of its assigned samples. Anchors that
		// attracted nothing stay where they are.
		sums := make([][]float64, f.NAnchors)
		counts := make([]int, f.NAnchors)
		for k := range sums {
			sums[k] = make([]float64, p)
		}
		for i := 0; i < n; i++ {
			k := assign[i]
			counts[k]++
			for j := 0; j < p; j++ {
				sums[k][j] += X[i][j]
			}
		}

		shift := 0.0
		for k := 0; k < f.NAnchors; k++ {
			if counts[k] == 0 {
				continue
			}
			for j := 0; j < p; j++ {
				next := sums[k][j] / float64(counts[k])
				d := next - anchors[k][j]
				shift += d * d
				anchors[k][j] = next
			}
		}
		shift = math.Sqrt(shift / float64(f.NAnchors))

		f.logger.Debug("anchor refinement",
			zap.Int("iter", it), zap.Float64("rms_shift", shift))

		if shift <= f.Tol {
			break
		}
	}
	return anchors, nil
}

// euclidSquared computes the squared Euclidean distance between two vectors.
// Squared distance avoids the square root where only comparisons matter.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
