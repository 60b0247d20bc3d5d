package data

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// MakeBlobs samples isotropic Gaussian clusters, perCluster points around
// each center with the given standard deviation. Labels are the center
// indices. The supplied generator makes the dataset reproducible.
func MakeBlobs(centers [][]float64, std float64, perCluster int, rng *rand.Rand) ([][]float64, []int) {
	noise := distuv.Normal{Mu: 0, Sigma: std, Src: rng}

	X := make([][]float64, 0, len(centers)*perCluster)
	y := make([]int, 0, len(centers)*perCluster)
	for label, center := range centers {
		for i := 0; i < perCluster; i++ {
			row := make([]float64, len(center))
			for j, c := range center {
				row[j] = c + noise.Rand()
			}
			X = append(X, row)
			y = append(y, label)
		}
	}
	return X, y
}
